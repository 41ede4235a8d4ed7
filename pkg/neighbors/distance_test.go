package neighbors

import (
	"math"
	"testing"
)

const epsilon = 1e-6

func almostEqual(a, b float32) bool {
	return math.Abs(float64(a-b)) < epsilon
}

func vec768(fill func(i int) float32) *Position768D {
	var v Position768D
	for i := range v {
		v[i] = fill(i)
	}
	return &v
}

func unitVector768(axis int) *Position768D {
	return vec768(func(i int) float32 {
		if i == axis {
			return 1
		}
		return 0
	})
}

func TestEuclidean2D(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Position2D
		expected float32
	}{
		{"identical points", Position2D{X: 1, Y: 2}, Position2D{X: 1, Y: 2}, 0},
		{"unit distance", Position2D{X: 0, Y: 0}, Position2D{X: 1, Y: 0}, 1},
		{"3-4-5 triangle", Position2D{X: 0, Y: 0}, Position2D{X: 3, Y: 4}, 5},
		{"negative coordinates", Position2D{X: -1, Y: -1}, Position2D{X: 1, Y: 1}, float32(math.Sqrt(8))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Euclidean2D(tt.a, tt.b); !almostEqual(got, tt.expected) {
				t.Errorf("Euclidean2D(%v, %v) = %v, expected %v", tt.a, tt.b, got, tt.expected)
			}
		})
	}
}

func TestEuclidean2DSymmetric(t *testing.T) {
	a := Position2D{X: 3.5, Y: -2.25}
	b := Position2D{X: -7, Y: 9}
	if !almostEqual(Euclidean2D(a, b), Euclidean2D(b, a)) {
		t.Errorf("Euclidean2D is not symmetric for %v, %v", a, b)
	}
}

func TestEuclidean768D(t *testing.T) {
	a := unitVector768(0)
	b := unitVector768(1)

	if got := Euclidean768D(a, a); !almostEqual(got, 0) {
		t.Errorf("self distance = %v, expected 0", got)
	}

	expected := float32(math.Sqrt(2))
	if got := Euclidean768D(a, b); !almostEqual(got, expected) {
		t.Errorf("Euclidean768D(e0, e1) = %v, expected %v", got, expected)
	}
}

func TestCosine2D(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Position2D
		expected float32
	}{
		{"identical", Position2D{X: 1, Y: 0}, Position2D{X: 1, Y: 0}, 0},
		{"orthogonal", Position2D{X: 1, Y: 0}, Position2D{X: 0, Y: 1}, 1},
		{"opposite", Position2D{X: 1, Y: 0}, Position2D{X: -1, Y: 0}, 2},
		{"scaled, same direction", Position2D{X: 2, Y: 0}, Position2D{X: 5, Y: 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Cosine2D(tt.a, tt.b); !almostEqual(got, tt.expected) {
				t.Errorf("Cosine2D(%v, %v) = %v, expected %v", tt.a, tt.b, got, tt.expected)
			}
		})
	}
}

func TestCosine2DRangeIsZeroToTwo(t *testing.T) {
	pts := []Position2D{{X: 1, Y: 0}, {X: 0.5, Y: 0.5}, {X: -3, Y: 1}, {X: 0, Y: -2}}
	for _, a := range pts {
		for _, b := range pts {
			d := Cosine2D(a, b)
			if d < -epsilon || d > 2+epsilon {
				t.Errorf("Cosine2D(%v, %v) = %v out of [0,2]", a, b, d)
			}
		}
	}
}

func TestCosine768D(t *testing.T) {
	a := unitVector768(0)
	if got := Cosine768D(a, a); !almostEqual(got, 0) {
		t.Errorf("self cosine distance = %v, expected 0", got)
	}

	b := unitVector768(1)
	if got := Cosine768D(a, b); !almostEqual(got, 1) {
		t.Errorf("orthogonal cosine distance = %v, expected 1", got)
	}
}

func TestRelativeAngle(t *testing.T) {
	tests := []struct {
		a, b     float64
		expected float64
	}{
		{0, 0, 0},
		{0, math.Pi / 2, math.Pi / 2},
		{-math.Pi + 0.1, math.Pi - 0.1, 0.2},
	}
	for _, tt := range tests {
		got := RelativeAngle(tt.a, tt.b)
		if math.Abs(got-tt.expected) > 1e-9 {
			t.Errorf("RelativeAngle(%v, %v) = %v, expected %v", tt.a, tt.b, got, tt.expected)
		}
	}
}
