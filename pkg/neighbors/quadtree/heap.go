package quadtree

import "container/heap"

// Neighbor is one result of a k-nearest-neighbor query: a datapoint value
// and its distance from the query point.
type Neighbor struct {
	Value    uint16
	Distance float32
}

// heapEntry is one candidate in the bounded max-heap.
type heapEntry = Neighbor

// entryHeap is a max-heap of heapEntry ordered by descending distance, so
// that the farthest candidate is always at the root and can be evicted in
// O(log k) when a closer one arrives. This is the textbook "keep the k
// smallest seen so far" construction: a max-heap over the kept set lets
// pushOrReject test and evict the current worst candidate in O(log k).
type entryHeap []heapEntry

func (h entryHeap) Len() int            { return len(h) }
func (h entryHeap) Less(i, j int) bool  { return h[i].Distance > h[j].Distance }
func (h entryHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *entryHeap) Push(x interface{}) { *h = append(*h, x.(heapEntry)) }
func (h *entryHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// boundedMaxHeap is a priority queue of fixed capacity k+1: pushOrReject
// only replaces the current maximum when the candidate is strictly
// smaller, which is how the quadtree's k-NN search keeps only the k+1
// closest points seen so far.
type boundedMaxHeap struct {
	capacity int
	h        entryHeap
}

func newBoundedMaxHeap(capacity int) *boundedMaxHeap {
	if capacity < 1 {
		capacity = 1
	}
	return &boundedMaxHeap{capacity: capacity}
}

func (b *boundedMaxHeap) isFull() bool {
	return len(b.h) == b.capacity
}

func (b *boundedMaxHeap) top() heapEntry {
	return b.h[0]
}

// pushOrReject accepts e if the heap has spare capacity, or if e is
// strictly closer than the current farthest entry (which is then
// evicted). It rejects otherwise.
func (b *boundedMaxHeap) pushOrReject(e heapEntry) bool {
	if len(b.h) < b.capacity {
		heap.Push(&b.h, e)
		return true
	}
	if e.Distance < b.h[0].Distance {
		heap.Pop(&b.h)
		heap.Push(&b.h, e)
		return true
	}
	return false
}

// drainAscending empties the heap and returns every entry it held, sorted
// by ascending distance (closest first). The source's KnnHeap drains in
// descending order and then keeps only the first k of the k+1 entries,
// dropping the last one popped (the closest), because the 2D Euclidean
// kernel always passes a self-inclusive heap. Here all k+1 entries are
// returned in ascending order and the caller decides how many it needs.
func (b *boundedMaxHeap) drainAscending() []Neighbor {
	descending := make([]Neighbor, len(b.h))
	for i := len(b.h) - 1; i >= 0; i-- {
		descending[i] = heap.Pop(&b.h).(heapEntry)
	}
	return descending
}
