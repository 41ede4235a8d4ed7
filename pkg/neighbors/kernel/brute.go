package kernel

import "github.com/therealutkarshpriyadarshi/neighbors-engine/pkg/neighbors"

// bruteForceRow fills row[j] with (j, distance(j)) for every j in [0, n),
// then stable-sorts it by ascending distance. distance(j) is expected to
// be the caller's closure over a fixed query point i and the dataset.
func bruteForceRow(n int, distance func(j int) float32, row neighbors.PairRow) {
	for j := 0; j < n; j++ {
		row[j] = neighbors.DistanceIndexPair{
			Index:    neighbors.Index(j),
			Distance: distance(j),
		}
	}
	neighbors.StableSortByDistance(row)
}
