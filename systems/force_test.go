package systems

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func vecNear(a, b r2.Vec, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol
}

func TestBlend(t *testing.T) {
	tests := []struct {
		name      string
		cs        []Contribution
		vel       r2.Vec
		reflected bool
		speed     float64
		want      r2.Vec
	}{
		{
			name:  "no contributions",
			speed: 1,
			want:  r2.Vec{},
		},
		{
			name: "all zero forces",
			cs: []Contribution{
				{Force: r2.Vec{}, Weight: 0.5},
				{Force: r2.Vec{}, Weight: 2},
			},
			speed: 0.75,
			want:  r2.Vec{},
		},
		{
			name:  "single force scaled by speed",
			cs:    []Contribution{{Force: r2.Vec{X: 0, Y: 0.5}, Weight: 0.5}},
			speed: 2,
			want:  r2.Vec{X: 0, Y: 1},
		},
		{
			name: "zero force does not dilute",
			cs: []Contribution{
				{Force: r2.Vec{X: 1}, Weight: 0.3},
				{Force: r2.Vec{}, Weight: 0.7},
			},
			speed: 1,
			want:  r2.Vec{X: 1},
		},
		{
			name: "zero weight is skipped",
			cs: []Contribution{
				{Force: r2.Vec{X: 1}, Weight: 0},
			},
			speed: 1,
			want:  r2.Vec{},
		},
		{
			name: "weighted average",
			cs: []Contribution{
				{Force: r2.Vec{X: 1}, Weight: 1},
				{Force: r2.Vec{Y: 1}, Weight: 3},
			},
			speed: 1,
			want:  r2.Vec{X: 0.25, Y: 0.75},
		},
		{
			name:      "reflected opposing force damped",
			cs:        []Contribution{{Force: r2.Vec{X: -1}, Weight: 1}},
			vel:       r2.Vec{X: 2},
			reflected: true,
			speed:     1,
			want:      r2.Vec{X: -ReflectDamping},
		},
		{
			name:      "reflected aligned force unscaled",
			cs:        []Contribution{{Force: r2.Vec{X: 1, Y: 1}, Weight: 1}},
			vel:       r2.Vec{X: 2},
			reflected: true,
			speed:     1,
			want:      r2.Vec{X: 1, Y: 1},
		},
		{
			name:      "reflected perpendicular force unscaled",
			cs:        []Contribution{{Force: r2.Vec{Y: 1}, Weight: 1}},
			vel:       r2.Vec{X: 2},
			reflected: true,
			speed:     1,
			want:      r2.Vec{Y: 1},
		},
		{
			name:  "non-reflected opposing force unscaled",
			cs:    []Contribution{{Force: r2.Vec{X: -1}, Weight: 1}},
			vel:   r2.Vec{X: 2},
			speed: 1,
			want:  r2.Vec{X: -1},
		},
		{
			name: "nan force ignored",
			cs: []Contribution{
				{Force: r2.Vec{X: math.NaN()}, Weight: 1},
				{Force: r2.Vec{Y: 1}, Weight: 1},
			},
			speed: 1,
			want:  r2.Vec{Y: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Blend(tt.cs, tt.vel, tt.reflected, tt.speed)
			if !vecNear(got, tt.want, 1e-12) {
				t.Errorf("Blend() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUnitGuardsZero(t *testing.T) {
	if got := unit(r2.Vec{}); got != (r2.Vec{}) {
		t.Errorf("unit(0) = %v, want zero", got)
	}
	if got := unit(r2.Vec{X: 3, Y: 4}); !vecNear(got, r2.Vec{X: 0.6, Y: 0.8}, 1e-12) {
		t.Errorf("unit(3,4) = %v", got)
	}
}

func TestNormalizeAngle(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{math.Pi / 2, math.Pi / 2},
		{3 * math.Pi, math.Pi},
		{-3 * math.Pi / 2, math.Pi / 2},
		{5 * math.Pi / 2, math.Pi / 2},
	}
	for _, tt := range tests {
		if got := normalizeAngle(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("normalizeAngle(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
