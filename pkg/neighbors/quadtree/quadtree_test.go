package quadtree

import (
	"math"
	"math/rand"
	"sort"
	"testing"
)

func TestBoundingBox(t *testing.T) {
	xs := []float32{1, -2, 5, 0}
	ys := []float32{3, 4, -1, 2}

	minX, minY, maxX, maxY := BoundingBox(xs, ys)
	if minX != -2 || maxX != 5 || minY != -1 || maxY != 4 {
		t.Errorf("BoundingBox = (%v,%v,%v,%v), want (-2,-1,5,4)", minX, minY, maxX, maxY)
	}
}

func TestFindNearestNeighborsSinglePoint(t *testing.T) {
	tree := New(0, 0, 10, 10)
	tree.Insert(5, 5, 42)

	found := tree.FindNearestNeighbors(5, 5, 0)
	if len(found) != 1 {
		t.Fatalf("expected 1 result, got %d", len(found))
	}
	if found[0].Value != 42 || found[0].Distance != 0 {
		t.Errorf("got %+v, want value=42 distance=0", found[0])
	}
}

func TestFindNearestNeighborsOrdering(t *testing.T) {
	tree := New(0, 0, 10, 10)
	points := []struct {
		x, y  float32
		value uint16
	}{
		{0, 0, 0},
		{3, 0, 1},
		{0, 4, 2},
		{9, 9, 3},
	}
	for _, p := range points {
		tree.Insert(p.x, p.y, p.value)
	}

	found := tree.FindNearestNeighbors(0, 0, 3)
	if len(found) != 4 {
		t.Fatalf("expected 4 results (k+1), got %d", len(found))
	}
	for i := 1; i < len(found); i++ {
		if found[i].Distance < found[i-1].Distance {
			t.Fatalf("results not sorted ascending: %+v", found)
		}
	}
	if found[0].Value != 0 || found[0].Distance != 0 {
		t.Errorf("nearest to (0,0) should be itself, got %+v", found[0])
	}
}

func TestFindNearestNeighborsCoincidentPoints(t *testing.T) {
	tree := New(0, 0, 10, 10)
	tree.Insert(5, 5, 1)
	tree.Insert(5, 5, 2)
	tree.Insert(5, 5, 3)

	found := tree.FindNearestNeighbors(5, 5, 2)
	if len(found) != 3 {
		t.Fatalf("expected 3 coincident results, got %d", len(found))
	}
	for _, f := range found {
		if f.Distance != 0 {
			t.Errorf("coincident point distance = %v, want 0", f.Distance)
		}
	}
}

func TestQuadtreeAgreesWithBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	const n = 128

	type pt struct{ x, y float32 }
	pts := make([]pt, n)
	xs := make([]float32, n)
	ys := make([]float32, n)
	for i := range pts {
		pts[i] = pt{x: float32(rng.Float64() * 100), y: float32(rng.Float64() * 100)}
		xs[i] = pts[i].x
		ys[i] = pts[i].y
	}

	minX, minY, maxX, maxY := BoundingBox(xs, ys)
	tree := New(minX, minY, maxX, maxY)
	for i, p := range pts {
		tree.Insert(p.x, p.y, uint16(i))
	}

	for i, q := range pts {
		found := tree.FindNearestNeighbors(q.x, q.y, n-1)
		if len(found) != n {
			t.Fatalf("query %d: got %d results, want %d", i, len(found), n)
		}

		type bf struct {
			value    uint16
			distance float32
		}
		brute := make([]bf, n)
		for j, p := range pts {
			d := float32(math.Hypot(float64(q.x-p.x), float64(q.y-p.y)))
			brute[j] = bf{value: uint16(j), distance: d}
		}
		sort.Slice(brute, func(a, b int) bool { return brute[a].distance < brute[b].distance })

		for rank := range found {
			if math.Abs(float64(found[rank].Distance-brute[rank].distance)) > 1e-4 {
				t.Fatalf("query %d rank %d: quadtree distance %v, brute force %v",
					i, rank, found[rank].Distance, brute[rank].distance)
			}
		}
	}
}

func TestFindNearestNeighborsCapacityBoundsResultCount(t *testing.T) {
	tree := New(0, 0, 10, 10)
	for i := 0; i < 10; i++ {
		tree.Insert(float32(i), float32(i), uint16(i))
	}

	found := tree.FindNearestNeighbors(0, 0, 2)
	if len(found) != 3 {
		t.Fatalf("k=2 should return k+1=3 results, got %d", len(found))
	}
}
