// Package quadtree implements the 2D region quadtree backing the
// Euclidean 2D kernel's k-nearest-neighbor queries.
//
// The original source modeled this as a class hierarchy (an abstract
// QuadtreeNode with QuadtreeLeafNode and QuadtreeInnerNode subclasses,
// individually heap-allocated and linked by pointer). This port instead
// stores every node in a single arena slice and refers to nodes by integer
// handle (nodeID), the same shape
// missinglink-simplefeatures/rtree.RTree uses for its node storage: no
// per-node heap allocation, no pointer chasing, and destruction is freeing
// one slice. A leaf-to-inner promotion rewrites the node's arena slot in
// place instead of allocating a replacement and asking the caller to
// rebind its child pointer.
package quadtree

import "math"

// epsilon is the tolerance used to decide two points coincide, matching
// the spec's QuadtreePoint::EPSILON.
const epsilon = 1e-7

// Point is a location in the plane.
type Point struct {
	X, Y float32
}

func (p Point) equals(o Point) bool {
	return math.Abs(float64(p.X-o.X)) < epsilon && math.Abs(float64(p.Y-o.Y)) < epsilon
}

func (p Point) distance(o Point) float32 {
	return float32(math.Hypot(float64(p.X-o.X), float64(p.Y-o.Y)))
}

func center(a, b Point) Point {
	return Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

// boundingBoxDistance returns the Euclidean distance from p to the nearest
// point of the axis-aligned box [leftTop, rightBottom], via the standard
// clamp-to-box construction.
func boundingBoxDistance(p Point, leftTop, rightBottom Point) float32 {
	targetX := clamp(p.X, leftTop.X, rightBottom.X)
	targetY := clamp(p.Y, leftTop.Y, rightBottom.Y)
	return p.distance(Point{X: targetX, Y: targetY})
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// nodeID is an arena handle: an index into Tree.nodes. Slot 0 is always
// the root.
type nodeID uint32

// kind tags which variant a node slot currently holds.
type kind uint8

const (
	kindLeaf kind = iota
	kindInner
)

// node is a tagged-variant arena slot: every node, leaf or inner, carries
// its bounding box; the kind-specific fields below it are only valid for
// the matching kind.
type node struct {
	kind        kind
	leftTop     Point
	rightBottom Point

	// leaf fields
	hasPoint bool
	point    Point
	values   []uint16

	// inner fields
	center   Point
	children [4]nodeID
}

// Tree is an arena-backed 2D region quadtree over a fixed bounding box.
type Tree struct {
	nodes []node
	root  nodeID
	size  int
}

// New creates an empty quadtree spanning [minX, minY] to [maxX, maxY].
// Every point later inserted must lie within this box.
func New(minX, minY, maxX, maxY float32) *Tree {
	t := &Tree{}
	t.root = t.newLeaf(Point{X: minX, Y: minY}, Point{X: maxX, Y: maxY})
	return t
}

func (t *Tree) newLeaf(leftTop, rightBottom Point) nodeID {
	t.nodes = append(t.nodes, node{
		kind:        kindLeaf,
		leftTop:     leftTop,
		rightBottom: rightBottom,
	})
	return nodeID(len(t.nodes) - 1)
}

// Len returns the number of points inserted so far.
func (t *Tree) Len() int { return t.size }

// Insert adds a point with an associated value (typically its datapoint
// index) to the tree.
func (t *Tree) Insert(x, y float32, value uint16) {
	t.insert(t.root, Point{X: x, Y: y}, value)
	t.size++
}

func (t *Tree) insert(id nodeID, p Point, value uint16) {
	n := &t.nodes[id]
	if n.kind == kindInner {
		child := n.children[childIndexFor(n.center, p)]
		t.insert(child, p, value)
		return
	}

	// Leaf.
	if !n.hasPoint {
		n.hasPoint = true
		n.point = p
		n.values = append(n.values, value)
		return
	}
	if n.point.equals(p) {
		n.values = append(n.values, value)
		return
	}

	// Coincident points exhausted: split this leaf into an inner node,
	// rewriting the slot in place, then reinsert the displaced point(s)
	// and the new one.
	leftTop, rightBottom := n.leftTop, n.rightBottom
	displacedPoint := n.point
	displacedValues := n.values

	c := center(leftTop, rightBottom)
	children := [4]nodeID{
		t.newLeaf(leftTop, c),
		t.newLeaf(Point{X: c.X, Y: leftTop.Y}, Point{X: rightBottom.X, Y: c.Y}),
		t.newLeaf(Point{X: leftTop.X, Y: c.Y}, Point{X: c.X, Y: rightBottom.Y}),
		t.newLeaf(c, rightBottom),
	}

	// n may be invalidated by the newLeaf appends above (slice growth),
	// so re-fetch before mutating.
	n = &t.nodes[id]
	*n = node{
		kind:        kindInner,
		leftTop:     leftTop,
		rightBottom: rightBottom,
		center:      c,
		children:    children,
	}

	for _, v := range displacedValues {
		t.insert(id, displacedPoint, v)
	}
	t.insert(id, p, value)
}

// childIndexFor returns which of the 4 children a point belongs under, per
// the spec's split rule: y <= center.y picks the top row, x <= center.x
// picks the left column, ties going to the lower-indexed (upper/left)
// child.
func childIndexFor(c, p Point) int {
	if p.Y <= c.Y {
		if p.X <= c.X {
			return 0
		}
		return 1
	}
	if p.X <= c.X {
		return 2
	}
	return 3
}

// FindNearestNeighbors returns up to k+1 neighbors nearest to (x, y) —
// including the query point itself, if it was inserted — ordered closest
// first by distance.
func (t *Tree) FindNearestNeighbors(x, y float32, k int) []Neighbor {
	p := Point{X: x, Y: y}
	h := newBoundedMaxHeap(k + 1)
	t.search(t.root, p, h)
	return h.drainAscending()
}

func (t *Tree) search(id nodeID, p Point, h *boundedMaxHeap) {
	n := &t.nodes[id]
	if n.kind == kindLeaf {
		if !n.hasPoint {
			return
		}
		d := n.point.distance(p)
		for _, v := range n.values {
			h.pushOrReject(heapEntry{Distance: d, Value: v})
		}
		return
	}

	closest := childIndexFor(n.center, p)
	t.search(n.children[closest], p, h)

	for i, child := range n.children {
		if i == closest {
			continue
		}
		cn := &t.nodes[child]
		if !h.isFull() {
			t.search(child, p, h)
			continue
		}
		minDist := boundingBoxDistance(p, cn.leftTop, cn.rightBottom)
		if minDist < h.top().Distance {
			t.search(child, p, h)
		}
	}
}

// BoundingBox scans min/max x and y over a set of planar points, as used
// to size a quadtree covering the whole dataset.
func BoundingBox(xs, ys []float32) (minX, minY, maxX, maxY float32) {
	minX, maxX = xs[0], xs[0]
	minY, maxY = ys[0], ys[0]
	for i := 1; i < len(xs); i++ {
		if xs[i] < minX {
			minX = xs[i]
		}
		if xs[i] > maxX {
			maxX = xs[i]
		}
		if ys[i] < minY {
			minY = ys[i]
		}
		if ys[i] > maxY {
			maxY = ys[i]
		}
	}
	return minX, minY, maxX, maxY
}
