package kernel

import (
	"github.com/therealutkarshpriyadarshi/neighbors-engine/pkg/neighbors"
	"github.com/therealutkarshpriyadarshi/neighbors-engine/internal/workerpool"
)

// Cosine768D is Euclidean768D's structural twin with the cosine distance
// substituted — brute force is the only viable strategy in 768 dimensions,
// since the 2D angular-sweep optimization (see Cosine2D) does not
// generalize past the plane.
func Cosine768D(positions []neighbors.Position768D, pairs []neighbors.DistanceIndexPair, ranks []neighbors.Index, workers int) {
	n := len(positions)
	workerpool.RunWithWorkers(n, workers, func(r workerpool.RowRange) {
		for i := r.Start; i < r.End; i++ {
			row := neighbors.PairRow(pairs[i*n : i*n+n])
			a := &positions[i]
			bruteForceRow(n, func(j int) float32 {
				return neighbors.Cosine768D(a, &positions[j])
			}, row)
			neighbors.FillRanks(row, ranks[i*n:i*n+n])
		}
	})
}
