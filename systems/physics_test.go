package systems

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/swarmpaint/components"
	"github.com/pthm-cable/swarmpaint/config"
)

func TestWrap(t *testing.T) {
	b := Bounds{Width: 500, Height: 400}
	tests := []struct {
		name    string
		p       r2.Vec
		want    r2.Vec
		wrapped bool
	}{
		{"inside", r2.Vec{X: 10, Y: 20}, r2.Vec{X: 10, Y: 20}, false},
		{"left edge", r2.Vec{X: 0, Y: 5}, r2.Vec{X: 0, Y: 5}, false},
		{"just left", r2.Vec{X: -1, Y: 5}, r2.Vec{X: 499, Y: 5}, true},
		{"right edge", r2.Vec{X: 500, Y: 5}, r2.Vec{X: 0, Y: 5}, true},
		{"past bottom", r2.Vec{X: 5, Y: 401.5}, r2.Vec{X: 5, Y: 1.5}, true},
		{"far negative", r2.Vec{X: -1001, Y: -1}, r2.Vec{X: 499, Y: 399}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, wrapped := Wrap(tt.p, b)
			if !vecNear(got, tt.want, 1e-9) || wrapped != tt.wrapped {
				t.Errorf("Wrap(%v) = %v, %v; want %v, %v", tt.p, got, wrapped, tt.want, tt.wrapped)
			}
			// Wrapping again never moves the point.
			again, wrappedAgain := Wrap(got, b)
			if again != got || wrappedAgain {
				t.Errorf("Wrap is not idempotent: %v -> %v", got, again)
			}
			wantX := math.Mod(math.Mod(tt.p.X, b.Width)+b.Width, b.Width)
			if math.Abs(got.X-wantX) > 1e-9 {
				t.Errorf("x = %v, want (x+w) mod w = %v", got.X, wantX)
			}
		})
	}
}

func TestApplyBoundary(t *testing.T) {
	b := Bounds{Width: 100, Height: 100}
	tests := []struct {
		name    string
		policy  string
		pos     components.Position
		vel     components.Velocity
		want    BoundaryResult
		wantPos components.Position
		wantVel components.Velocity
	}{
		{
			name: "wrap", policy: config.BoundaryWrap,
			pos: components.Position{X: 101, Y: 50}, vel: components.Velocity{X: 2},
			want: BoundaryWrapped, wantPos: components.Position{X: 1, Y: 50}, wantVel: components.Velocity{X: 2},
		},
		{
			name: "reflect right", policy: config.BoundaryReflect,
			pos: components.Position{X: 101, Y: 50}, vel: components.Velocity{X: 2, Y: 1},
			want: BoundaryReflected, wantPos: components.Position{X: 100, Y: 50}, wantVel: components.Velocity{X: -2, Y: 1},
		},
		{
			name: "reflect corner", policy: config.BoundaryReflect,
			pos: components.Position{X: -1, Y: -2}, vel: components.Velocity{X: -1, Y: -1},
			want: BoundaryReflected, wantPos: components.Position{}, wantVel: components.Velocity{X: 1, Y: 1},
		},
		{
			name: "stop", policy: config.BoundaryStop,
			pos: components.Position{X: 50, Y: 103}, vel: components.Velocity{Y: 3},
			want: BoundaryStopped, wantPos: components.Position{X: 50, Y: 100}, wantVel: components.Velocity{},
		},
		{
			name: "travel off", policy: config.BoundaryTravelOff,
			pos: components.Position{X: -0.5, Y: 50}, vel: components.Velocity{X: -1},
			want: BoundaryExited, wantPos: components.Position{X: -0.5, Y: 50}, wantVel: components.Velocity{X: -1},
		},
		{
			name: "inside untouched", policy: config.BoundaryReflect,
			pos: components.Position{X: 50, Y: 50}, vel: components.Velocity{X: 1},
			want: BoundaryInside, wantPos: components.Position{X: 50, Y: 50}, wantVel: components.Velocity{X: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, vel := tt.pos, tt.vel
			got := ApplyBoundary(tt.policy, b, &pos, &vel)
			if got != tt.want {
				t.Errorf("result = %v, want %v", got, tt.want)
			}
			if pos != tt.wantPos || vel != tt.wantVel {
				t.Errorf("pos, vel = %v, %v; want %v, %v", pos, vel, tt.wantPos, tt.wantVel)
			}
		})
	}
}

func TestGrowTrailCutsOnWrap(t *testing.T) {
	var tr components.Trail
	s := &config.TrailSettings{}
	GrowTrail(&tr, r2.Vec{X: 98}, false, s)
	GrowTrail(&tr, r2.Vec{X: 99}, false, s)
	GrowTrail(&tr, r2.Vec{X: 0.5}, true, s)
	GrowTrail(&tr, r2.Vec{X: 1.5}, false, s)

	if len(tr.Segments) != 2 {
		t.Fatalf("segments = %d, want 2", len(tr.Segments))
	}
	if len(tr.Segments[0]) != 2 || len(tr.Segments[1]) != 2 {
		t.Errorf("segment sizes = %d, %d", len(tr.Segments[0]), len(tr.Segments[1]))
	}
}

func TestGrowTrailSimplifiesAndCaps(t *testing.T) {
	var tr components.Trail
	s := &config.TrailSettings{SimplifyAfter: 10, SimplifyTolerance: 0.1, MaxPoints: 50}
	// A straight line collapses to its endpoints.
	for i := 0; i < 40; i++ {
		GrowTrail(&tr, r2.Vec{X: float64(i)}, false, s)
	}
	if n := tr.Len(); n >= 40 {
		t.Errorf("straight trail kept %d points, expected simplification", n)
	}
	last := tr.Segments[len(tr.Segments)-1]
	if last[len(last)-1] != (r2.Vec{X: 39}) {
		t.Errorf("newest point lost: %v", last[len(last)-1])
	}

	// A zigzag cannot simplify, so the cap applies.
	tr.Reset()
	for i := 0; i < 200; i++ {
		GrowTrail(&tr, r2.Vec{X: float64(i), Y: float64(i%2) * 10}, false, s)
	}
	if n := tr.Len(); n > 50 {
		t.Errorf("trail has %d points, cap is 50", n)
	}
}

func TestSpatialGridQuery(t *testing.T) {
	tests := []struct {
		name string
		wrap bool
		want int
	}{
		{"wrapping sees across the seam", true, 2},
		{"bounded does not", false, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewSpatialGrid(100, 100, 10, tt.wrap)
			g.Insert(0, r2.Vec{X: 1, Y: 50})
			g.Insert(1, r2.Vec{X: 5, Y: 50})
			g.Insert(2, r2.Vec{X: 98, Y: 50})
			g.Insert(3, r2.Vec{X: 50, Y: 50})

			got := g.QueryRadiusInto(nil, r2.Vec{X: 1, Y: 50}, 6, 0)
			if len(got) != tt.want {
				t.Errorf("found %d neighbors, want %d: %+v", len(got), tt.want, got)
			}
			for _, n := range got {
				if n.Index == 2 && !vecNear(n.D, r2.Vec{X: -3}, 1e-9) {
					t.Errorf("seam delta = %v, want (-3, 0)", n.D)
				}
			}
		})
	}
}

func TestSpatialGridSeamWithUnevenCells(t *testing.T) {
	// 1000/80 does not divide evenly; the seam neighbor is 48 away.
	g := NewSpatialGrid(1000, 400, 80, true)
	g.Insert(0, r2.Vec{X: 5, Y: 100})
	g.Insert(1, r2.Vec{X: 957, Y: 100})

	got := g.QueryRadiusInto(nil, r2.Vec{X: 5, Y: 100}, 50, 0)
	if len(got) != 1 || got[0].Index != 1 {
		t.Fatalf("QueryRadiusInto = %+v, want the agent across the seam", got)
	}
	if !vecNear(got[0].D, r2.Vec{X: -48}, 1e-9) {
		t.Errorf("seam delta = %v, want (-48, 0)", got[0].D)
	}
	if n, ok := g.Nearest(r2.Vec{X: 5, Y: 100}, 50, 0, nil); !ok || n.Index != 1 {
		t.Errorf("Nearest = %+v, %v", n, ok)
	}
}

func TestSpatialGridDenseQueries(t *testing.T) {
	g := NewSpatialGrid(400, 400, 80, false)
	// A dense ring far from the query point, scanned before the close agent.
	for i := 0; i < 2*MaxQueryResults; i++ {
		g.Insert(i, r2.Vec{X: 130 + float64(i%10), Y: 130 + float64(i/10)})
	}
	nearIdx := 2 * MaxQueryResults
	g.Insert(nearIdx, r2.Vec{X: 201, Y: 200})

	p := r2.Vec{X: 200, Y: 200}
	got := g.QueryRadiusInto(nil, p, 100, -1)
	if len(got) != MaxQueryResults {
		t.Fatalf("len = %d, want cap %d", len(got), MaxQueryResults)
	}
	if got[0].Index != nearIdx {
		t.Errorf("capped query dropped the nearest agent; first = %+v", got[0])
	}

	n, ok := g.Nearest(p, 100, -1, nil)
	if !ok || n.Index != nearIdx {
		t.Errorf("Nearest = %+v, want index %d", n, nearIdx)
	}
	n, ok = g.Nearest(p, 100, -1, func(n Neighbor) bool { return n.Index != nearIdx })
	if !ok || n.Index == nearIdx {
		t.Errorf("Nearest ignored accept: %+v", n)
	}
}
