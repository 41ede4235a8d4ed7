package kernel

import (
	"github.com/therealutkarshpriyadarshi/neighbors-engine/internal/workerpool"
	"github.com/therealutkarshpriyadarshi/neighbors-engine/pkg/neighbors"
	"github.com/therealutkarshpriyadarshi/neighbors-engine/pkg/neighbors/quadtree"
)

// bruteForceThreshold is the dataset size at or below which building a
// quadtree costs more than it saves; small rows are answered directly.
const bruteForceThreshold = 4

// Euclidean2D answers every row with a k-nearest-neighbor query (k = N-1,
// i.e. every other point) against a single quadtree built once over the
// whole dataset and shared read-only across workers. Datasets of at most
// bruteForceThreshold points are brute-forced instead.
func Euclidean2D(positions []neighbors.Position2D, pairs []neighbors.DistanceIndexPair, ranks []neighbors.Index, workers int) {
	n := len(positions)

	if n <= bruteForceThreshold {
		workerpool.RunWithWorkers(n, workers, func(r workerpool.RowRange) {
			for i := r.Start; i < r.End; i++ {
				row := neighbors.PairRow(pairs[i*n : i*n+n])
				a := positions[i]
				bruteForceRow(n, func(j int) float32 {
					return neighbors.Euclidean2D(a, positions[j])
				}, row)
				neighbors.FillRanks(row, ranks[i*n:i*n+n])
			}
		})
		return
	}

	xs := make([]float32, n)
	ys := make([]float32, n)
	for i, p := range positions {
		xs[i] = p.X
		ys[i] = p.Y
	}
	minX, minY, maxX, maxY := quadtree.BoundingBox(xs, ys)

	tree := quadtree.New(minX, minY, maxX, maxY)
	for i, p := range positions {
		tree.Insert(p.X, p.Y, uint16(i))
	}

	workerpool.RunWithWorkers(n, workers, func(r workerpool.RowRange) {
		for i := r.Start; i < r.End; i++ {
			p := positions[i]
			found := tree.FindNearestNeighbors(p.X, p.Y, n-1)

			row := neighbors.PairRow(pairs[i*n : i*n+n])
			for j, nb := range found {
				row[j] = neighbors.DistanceIndexPair{
					Index:    neighbors.Index(nb.Value),
					Distance: nb.Distance,
				}
			}
			neighbors.FillRanks(row, ranks[i*n:i*n+n])
		}
	})
}
