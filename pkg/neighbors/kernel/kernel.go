// Package kernel implements the four neighbor-computation kernels selected
// by (DistanceMetric, Dimensions): Euclidean/Cosine crossed with 2D/768D.
package kernel

import (
	"fmt"

	"github.com/therealutkarshpriyadarshi/neighbors-engine/internal/workerpool"
	"github.com/therealutkarshpriyadarshi/neighbors-engine/pkg/neighbors"
)

// UnsupportedCombinationError reports a (metric, dimensions) pair no kernel
// implements.
type UnsupportedCombinationError struct {
	Metric     neighbors.DistanceMetric
	Dimensions neighbors.Dimensions
}

func (e *UnsupportedCombinationError) Error() string {
	return fmt.Sprintf("neighbors: no kernel for metric %q at %d dimensions", e.Metric.String(), e.Dimensions)
}

// Run dispatches to the kernel matching params, reading positions out of
// positions2D or positions768D (selected by params.Dimensions; the other
// may be nil) and writing pairs/ranks in place. workers bounds the worker
// pool's parallelism; 0 lets the pool pick runtime.NumCPU().
func Run(params neighbors.Parameters, positions2D []neighbors.Position2D, positions768D []neighbors.Position768D, pairs []neighbors.DistanceIndexPair, ranks []neighbors.Index, workers int) error {
	if workers <= 0 {
		workers = workerpool.DefaultWorkers()
	}
	switch {
	case params.DistanceMetric == neighbors.EuclideanMetric && params.Dimensions == neighbors.Dim2:
		Euclidean2D(positions2D, pairs, ranks, workers)
	case params.DistanceMetric == neighbors.CosineMetric && params.Dimensions == neighbors.Dim2:
		Cosine2D(positions2D, pairs, ranks, workers)
	case params.DistanceMetric == neighbors.EuclideanMetric && params.Dimensions == neighbors.Dim768:
		Euclidean768D(positions768D, pairs, ranks, workers)
	case params.DistanceMetric == neighbors.CosineMetric && params.Dimensions == neighbors.Dim768:
		Cosine768D(positions768D, pairs, ranks, workers)
	default:
		return &UnsupportedCombinationError{Metric: params.DistanceMetric, Dimensions: params.Dimensions}
	}
	return nil
}
