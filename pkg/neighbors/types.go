// Package neighbors implements the all-pairs nearest-neighbor kernels, the
// distance primitives they share, and the packed binary layout of the
// shared-memory segment the engine reads from and writes back to.
package neighbors

import "fmt"

// DistanceMetric selects which distance function a kernel uses. The wire
// encoding matches the single-byte values the Parameters header carries.
type DistanceMetric int8

const (
	// EuclideanMetric is the 'e' byte value for Euclidean distance.
	EuclideanMetric DistanceMetric = 'e'
	// CosineMetric is the 'c' byte value for cosine distance.
	CosineMetric DistanceMetric = 'c'
)

// Valid reports whether m is one of the distance metrics this engine
// supports.
func (m DistanceMetric) Valid() bool {
	return m == EuclideanMetric || m == CosineMetric
}

func (m DistanceMetric) String() string {
	switch m {
	case EuclideanMetric:
		return "euclidean"
	case CosineMetric:
		return "cosine"
	default:
		return fmt.Sprintf("unknown(%d)", int8(m))
	}
}

// Dimensions is the declared vector dimensionality of a run. Only 2 and 768
// are valid.
type Dimensions uint16

const (
	// Dim2 is the 2D point-cloud case (quadtree-eligible).
	Dim2 Dimensions = 2
	// Dim768 is the high-dimensional embedding case (brute force only).
	Dim768 Dimensions = 768
)

// Valid reports whether d is one of the dimensionalities this engine
// supports.
func (d Dimensions) Valid() bool {
	return d == Dim2 || d == Dim768
}

// Index identifies a datapoint. Valid range is [0, N) for a run of N
// points; the wire encoding is a 16-bit unsigned integer.
type Index = uint16

// Position2D is a point in the plane, packed as two little-endian float32s
// with no padding — the same layout the producer writes into the shared
// segment.
type Position2D struct {
	X float32
	Y float32
}

// Position768D is a single 768-dimensional embedding, packed as 768
// consecutive float32s with no padding.
type Position768D [768]float32

// DistanceIndexPair is one entry of a neighbor row: the index of the other
// point and its distance from the row's query point. The wire encoding is
// 2 bytes of index immediately followed by 4 bytes of distance.
type DistanceIndexPair struct {
	Index    Index
	Distance float32
}

// Parameters is the header at the start of the shared segment. Its wire
// encoding is packed: 1 byte metric, 2 bytes datapoint count, 2 bytes
// dimensions, 5 bytes total. This is deliberately the layout without a `k`
// field — see the spec's open question on the two divergent header
// variants found in the original source.
type Parameters struct {
	DistanceMetric  DistanceMetric
	DatapointAmount Index
	Dimensions      Dimensions
}

// Sizes of the packed regions, in bytes.
const (
	ParametersSize        = 5 // 1 + 2 + 2, packed
	Position2DSize        = 8 // 4 + 4
	Position768DSize      = 3072
	DistanceIndexPairSize = 6 // 2 + 4
	RankSize              = 2
)

// PositionSize returns the packed byte size of a single position for the
// given dimensionality.
func (d Dimensions) PositionSize() int {
	switch d {
	case Dim2:
		return Position2DSize
	case Dim768:
		return Position768DSize
	default:
		return 0
	}
}

// Layout describes the byte offsets of the four regions of a shared
// segment for a given (N, dimensions) pair, relative to the start of the
// segment (i.e. including the Parameters header at offset 0).
type Layout struct {
	N          int
	Dimensions Dimensions

	ParametersOffset int
	PositionsOffset  int
	PairsOffset      int
	RanksOffset      int
	TotalSize        int
}

// NewLayout computes the region offsets for n datapoints of the given
// dimensionality, per the shared-segment layout in the data model.
func NewLayout(n int, dim Dimensions) Layout {
	positionsOffset := ParametersSize
	positionsBytes := n * dim.PositionSize()
	pairsOffset := positionsOffset + positionsBytes
	pairsBytes := n * n * DistanceIndexPairSize
	ranksOffset := pairsOffset + pairsBytes
	ranksBytes := n * n * RankSize

	return Layout{
		N:                n,
		Dimensions:       dim,
		ParametersOffset: 0,
		PositionsOffset:  positionsOffset,
		PairsOffset:      pairsOffset,
		RanksOffset:      ranksOffset,
		TotalSize:        ranksOffset + ranksBytes,
	}
}
