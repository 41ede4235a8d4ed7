// Package shm attaches the engine to the caller-provided System V shared
// memory segment and exposes it as a typed View: bounds-checked Parameters,
// Positions, Pairs and Ranks slices decoded from the attached bytes (Pairs
// and Ranks are written back with Flush), so the rest of the engine never
// touches a raw pointer or does its own offset arithmetic.
package shm

import (
	"encoding/binary"
	"fmt"
	"math"

	"golang.org/x/sys/unix"

	"github.com/therealutkarshpriyadarshi/neighbors-engine/pkg/neighbors"
)

// Segment is an attached System V shared memory region.
type Segment struct {
	id   int
	data []byte
}

// Attach looks up the segment identified by key (already created by the
// producer process) and attaches it read-write into this process's address
// space. size must match the producer's declared segment size exactly.
func Attach(key, size int) (*Segment, error) {
	id, err := unix.SysvShmGet(key, size, 0)
	if err != nil {
		return nil, fmt.Errorf("shm: shmget key=%d size=%d: %w", key, size, err)
	}

	data, err := unix.SysvShmAttach(id, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("shm: shmat id=%d: %w", id, err)
	}

	return &Segment{id: id, data: data}, nil
}

// Detach releases this process's mapping of the segment. It does not mark
// the segment for destruction — the producer owns its lifecycle.
func (s *Segment) Detach() error {
	if err := unix.SysvShmDetach(s.data); err != nil {
		return fmt.Errorf("shm: shmdt id=%d: %w", s.id, err)
	}
	return nil
}

// ReadParameters decodes the 5-byte header at the start of the segment
// without requiring the full View (whose Positions/Pairs/Ranks slice sizes
// depend on the header's own DatapointAmount and Dimensions fields).
func (s *Segment) ReadParameters() (neighbors.Parameters, error) {
	if len(s.data) < neighbors.ParametersSize {
		return neighbors.Parameters{}, fmt.Errorf("shm: segment of %d bytes too small for a %d-byte header", len(s.data), neighbors.ParametersSize)
	}
	return neighbors.Parameters{
		DistanceMetric:  neighbors.DistanceMetric(int8(s.data[0])),
		DatapointAmount: binary.LittleEndian.Uint16(s.data[1:3]),
		Dimensions:      neighbors.Dimensions(binary.LittleEndian.Uint16(s.data[3:5])),
	}, nil
}

// View is a typed, bounds-checked decoding of the segment's four regions.
// Its slices are copies allocated by NewView and do not alias the
// segment's bytes: writes to Pairs and Ranks reach the segment only when
// Flush is called, and the slices stay valid after the Segment's Detach.
type View struct {
	Parameters neighbors.Parameters
	Layout     neighbors.Layout

	// Exactly one of Positions2D / Positions768D is populated, selected by
	// Parameters.Dimensions.
	Positions2D   []neighbors.Position2D
	Positions768D []neighbors.Position768D

	Pairs []neighbors.DistanceIndexPair
	Ranks []neighbors.Index
}

// NewView decodes the header, computes the region layout it implies, checks
// the segment is large enough to hold it, and materializes typed slices
// over each region.
func (s *Segment) NewView() (*View, error) {
	params, err := s.ReadParameters()
	if err != nil {
		return nil, err
	}
	if !params.Dimensions.Valid() {
		return nil, fmt.Errorf("shm: unsupported dimensions %d", params.Dimensions)
	}

	n := int(params.DatapointAmount)
	layout := neighbors.NewLayout(n, params.Dimensions)
	if len(s.data) < layout.TotalSize {
		return nil, fmt.Errorf("shm: segment of %d bytes too small for layout requiring %d", len(s.data), layout.TotalSize)
	}

	v := &View{Parameters: params, Layout: layout}

	switch params.Dimensions {
	case neighbors.Dim2:
		v.Positions2D = decodePositions2D(s.data[layout.PositionsOffset:layout.PairsOffset], n)
	case neighbors.Dim768:
		v.Positions768D = decodePositions768D(s.data[layout.PositionsOffset:layout.PairsOffset], n)
	}

	v.Pairs = decodePairs(s.data[layout.PairsOffset:layout.RanksOffset], n*n)
	v.Ranks = decodeRanks(s.data[layout.RanksOffset:layout.TotalSize], n*n)

	return v, nil
}

func decodePositions2D(region []byte, n int) []neighbors.Position2D {
	out := make([]neighbors.Position2D, n)
	for i := 0; i < n; i++ {
		off := i * neighbors.Position2DSize
		out[i] = neighbors.Position2D{
			X: decodeFloat32(region[off : off+4]),
			Y: decodeFloat32(region[off+4 : off+8]),
		}
	}
	return out
}

func decodePositions768D(region []byte, n int) []neighbors.Position768D {
	out := make([]neighbors.Position768D, n)
	for i := 0; i < n; i++ {
		base := i * neighbors.Position768DSize
		for d := 0; d < 768; d++ {
			off := base + d*4
			out[i][d] = decodeFloat32(region[off : off+4])
		}
	}
	return out
}

func decodePairs(region []byte, count int) []neighbors.DistanceIndexPair {
	out := make([]neighbors.DistanceIndexPair, count)
	for i := 0; i < count; i++ {
		off := i * neighbors.DistanceIndexPairSize
		out[i] = neighbors.DistanceIndexPair{
			Index:    binary.LittleEndian.Uint16(region[off : off+2]),
			Distance: decodeFloat32(region[off+2 : off+6]),
		}
	}
	return out
}

func decodeRanks(region []byte, count int) []neighbors.Index {
	out := make([]neighbors.Index, count)
	for i := 0; i < count; i++ {
		off := i * neighbors.RankSize
		out[i] = binary.LittleEndian.Uint16(region[off : off+2])
	}
	return out
}

func decodeFloat32(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}

func encodeFloat32(b []byte, f float32) {
	binary.LittleEndian.PutUint32(b, math.Float32bits(f))
}

// Flush re-encodes View.Pairs and View.Ranks back into the segment's
// backing bytes, at the offsets View.Layout already computed. Positions are
// the producer's input and are never written back; Parameters is the
// header the producer wrote and the engine only reads.
func (v *View) Flush(s *Segment) {
	pairsRegion := s.data[v.Layout.PairsOffset:v.Layout.RanksOffset]
	for i, pair := range v.Pairs {
		off := i * neighbors.DistanceIndexPairSize
		binary.LittleEndian.PutUint16(pairsRegion[off:off+2], pair.Index)
		encodeFloat32(pairsRegion[off+2:off+6], pair.Distance)
	}

	ranksRegion := s.data[v.Layout.RanksOffset:v.Layout.TotalSize]
	for i, rank := range v.Ranks {
		off := i * neighbors.RankSize
		binary.LittleEndian.PutUint16(ranksRegion[off:off+2], rank)
	}
}
