package kernel

import (
	"github.com/therealutkarshpriyadarshi/neighbors-engine/pkg/neighbors"
	"github.com/therealutkarshpriyadarshi/neighbors-engine/internal/workerpool"
)

// Euclidean768D computes, for every row i, all N Euclidean distances from
// point i, sorts them, and derives the rank row — brute force, since the
// spec gives no spatial index for 768 dimensions. Each worker owns a
// contiguous, disjoint range of rows, so no synchronization beyond the
// pool's terminal join is needed.
func Euclidean768D(positions []neighbors.Position768D, pairs []neighbors.DistanceIndexPair, ranks []neighbors.Index, workers int) {
	n := len(positions)
	workerpool.RunWithWorkers(n, workers, func(r workerpool.RowRange) {
		for i := r.Start; i < r.End; i++ {
			row := neighbors.PairRow(pairs[i*n : i*n+n])
			a := &positions[i]
			bruteForceRow(n, func(j int) float32 {
				return neighbors.Euclidean768D(a, &positions[j])
			}, row)
			neighbors.FillRanks(row, ranks[i*n:i*n+n])
		}
	})
}
