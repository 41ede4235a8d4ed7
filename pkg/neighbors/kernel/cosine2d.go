package kernel

import (
	"sort"

	"github.com/therealutkarshpriyadarshi/neighbors-engine/internal/workerpool"
	"github.com/therealutkarshpriyadarshi/neighbors-engine/pkg/neighbors"
)

// angleEntry pairs an original datapoint index with its polar angle, after
// the dataset has been stably sorted by angle ascending.
type angleEntry struct {
	originalIndex neighbors.Index
	angle         float64
}

// Cosine2D exploits the fact that in 2D, cosine distance is monotone in
// angular difference: rather than sorting N distances per row, it walks
// outward from each point's position in angle-sorted order with two
// cursors, producing an already-sorted row in Θ(N) distance evaluations
// and no comparison sort.
//
// All indices recorded into pairs/ranks are original dataset indices. The
// angle-sorted order and the two cursors are purely an internal traversal
// device — the source's thread handler conflates sorted-order position
// with dataset index when assigning row numbers and recorded indices; this
// port keeps them distinct throughout; see DESIGN.md.
func Cosine2D(positions []neighbors.Position2D, pairs []neighbors.DistanceIndexPair, ranks []neighbors.Index, workers int) {
	n := len(positions)
	sorted := make([]angleEntry, n)
	for i, p := range positions {
		sorted[i] = angleEntry{originalIndex: neighbors.Index(i), angle: neighbors.Angle2D(p)}
	}
	sort.SliceStable(sorted, func(a, b int) bool { return sorted[a].angle < sorted[b].angle })

	workerpool.RunWithWorkers(n, workers, func(r workerpool.RowRange) {
		for i := r.Start; i < r.End; i++ {
			originalI := sorted[i].originalIndex
			queryPos := positions[originalI]
			row := neighbors.PairRow(pairs[int(originalI)*n : int(originalI)*n+n])

			left := i
			right := (i + 1) % n
			for j := 0; j < n; j++ {
				leftAngle := sorted[left].angle
				rightAngle := sorted[right].angle
				var chosen int
				if neighbors.RelativeAngle(leftAngle, sorted[i].angle) < neighbors.RelativeAngle(rightAngle, sorted[i].angle) {
					chosen = left
					if left == 0 {
						left = n - 1
					} else {
						left--
					}
				} else {
					chosen = right
					right = (right + 1) % n
				}

				candidateIndex := sorted[chosen].originalIndex
				distance := neighbors.Cosine2D(queryPos, positions[candidateIndex])
				row[j] = neighbors.DistanceIndexPair{Index: candidateIndex, Distance: distance}
			}

			neighbors.FillRanks(row, ranks[int(originalI)*n:int(originalI)*n+n])
		}
	})
}
