package neighbors

import "math"

// Euclidean2D returns the Euclidean distance between two planar points,
// computed via a hypot-style combination so that large coordinate
// magnitudes don't overflow the intermediate squares.
func Euclidean2D(a, b Position2D) float32 {
	return float32(math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y)))
}

// Euclidean768D returns the Euclidean distance between two 768-dimensional
// embeddings.
func Euclidean768D(a, b *Position768D) float32 {
	var sum float32
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return float32(math.Sqrt(float64(sum)))
}

// Cosine2D returns the cosine distance (1 - cosine similarity) between two
// planar points. The caller guarantees neither point is the zero vector.
func Cosine2D(a, b Position2D) float32 {
	dotAA := a.X*a.X + a.Y*a.Y
	dotBB := b.X*b.X + b.Y*b.Y
	dotAB := a.X*b.X + a.Y*b.Y
	return 1.0 - dotAB/float32(math.Sqrt(float64(dotAA*dotBB)))
}

// Cosine768D returns the cosine distance between two 768-dimensional
// embeddings. The caller guarantees neither vector is the zero vector.
func Cosine768D(a, b *Position768D) float32 {
	var dotAA, dotBB, dotAB float32
	for i := range a {
		dotAA += a[i] * a[i]
		dotBB += b[i] * b[i]
		dotAB += a[i] * b[i]
	}
	return 1.0 - dotAB/float32(math.Sqrt(float64(dotAA*dotBB)))
}

// Angle2D returns atan2(y, x) for a planar point, used by the 2D cosine
// angular-sweep kernel. The producer guarantees every point is non-zero;
// atan2(0, 0) would otherwise collapse to angle 0 and break the sweep.
func Angle2D(p Position2D) float64 {
	return math.Atan2(float64(p.Y), float64(p.X))
}

// RelativeAngle returns the shorter arc between two angles on the unit
// circle, i.e. min(|a-b|, 2*pi-|a-b|).
func RelativeAngle(a, b float64) float64 {
	diff := math.Abs(a - b)
	if diff > math.Pi {
		diff = 2*math.Pi - diff
	}
	return diff
}
