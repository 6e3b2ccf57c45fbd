package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Vector helpers. r2.Unit returns NaN for a zero vector, so every
// normalization in this package goes through unit.

// unit returns v scaled to length 1, or the zero vector when v is degenerate.
func unit(v r2.Vec) r2.Vec {
	n := r2.Norm(v)
	if n < 1e-12 || math.IsNaN(n) || math.IsInf(n, 0) {
		return r2.Vec{}
	}
	return r2.Scale(1/n, v)
}

// isZero reports whether v contributes nothing.
func isZero(v r2.Vec) bool {
	return v.X == 0 && v.Y == 0
}

// finite reports whether both components are real numbers.
func finite(v r2.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

// clampLength limits the magnitude of v to maxLen.
func clampLength(v r2.Vec, maxLen float64) r2.Vec {
	n := r2.Norm(v)
	if n <= maxLen || n == 0 {
		return v
	}
	return r2.Scale(maxLen/n, v)
}

// fromAngle returns the unit vector at angle radians.
func fromAngle(angle float64) r2.Vec {
	sin, cos := math.Sincos(angle)
	return r2.Vec{X: cos, Y: sin}
}

// heading returns the angle of v, or 0 for a zero vector.
func heading(v r2.Vec) float64 {
	if isZero(v) {
		return 0
	}
	return math.Atan2(v.Y, v.X)
}

// Angle normalization functions

// normalizeAngle wraps an angle to [-Pi, Pi].
func normalizeAngle(angle float64) float64 {
	angle = math.Mod(angle, 2*math.Pi)
	if angle > math.Pi {
		angle -= 2 * math.Pi
	} else if angle < -math.Pi {
		angle += 2 * math.Pi
	}
	return angle
}

// clampFloat clamps a value between minVal and maxVal.
func clampFloat(v, minVal, maxVal float64) float64 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// lerp interpolates between a and b.
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
