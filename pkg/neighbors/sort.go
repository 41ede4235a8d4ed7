package neighbors

import "sort"

// PairRow is one row of the neighbors matrix: the N distance/index pairs
// for a single query point, in the order they were produced.
type PairRow []DistanceIndexPair

// compareDistance implements the sign-of-difference total order the
// original C qsort comparator used: (d_a - d_b > 0) - (d_a - d_b < 0).
// Using the sign of the subtraction rather than a direct a < b comparison
// keeps the ordering identical to the source across NaN-free inputs.
func compareDistance(a, b float32) int {
	diff := a - b
	switch {
	case diff > 0:
		return 1
	case diff < 0:
		return -1
	default:
		return 0
	}
}

// Len, Less, and Swap make PairRow sortable with sort.Stable, which is
// required: ties must break by the row's original insertion order (the
// order points were scanned in), not by any arbitrary pivot choice.
func (r PairRow) Len() int      { return len(r) }
func (r PairRow) Swap(i, j int) { r[i], r[j] = r[j], r[i] }
func (r PairRow) Less(i, j int) bool {
	return compareDistance(r[i].Distance, r[j].Distance) < 0
}

// StableSortByDistance sorts a row of pairs into non-decreasing distance
// order, breaking ties by stable (insertion) order.
func StableSortByDistance(row PairRow) {
	sort.Stable(row)
}

// FillRanks derives the rank table entries for a single row from its
// already-sorted pairs: ranks[pairs[j].Index] = j for every position j.
func FillRanks(row PairRow, ranksRow []Index) {
	for j, pair := range row {
		ranksRow[pair.Index] = Index(j)
	}
}
