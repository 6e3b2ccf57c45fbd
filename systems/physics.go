package systems

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/simplify"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/swarmpaint/components"
	"github.com/pthm-cable/swarmpaint/config"
)

// Bounds represents the canvas bounds.
type Bounds struct {
	Width, Height float64
}

// BoundaryResult reports what the boundary policy did to an agent.
type BoundaryResult uint8

const (
	BoundaryInside BoundaryResult = iota
	BoundaryWrapped
	BoundaryReflected
	BoundaryStopped
	BoundaryExited
)

// Wrap moves p back onto the canvas modulo its size. It is idempotent for
// points already inside.
func Wrap(p r2.Vec, b Bounds) (r2.Vec, bool) {
	x, y := wrapCoord(p.X, b.Width), wrapCoord(p.Y, b.Height)
	return r2.Vec{X: x, Y: y}, x != p.X || y != p.Y
}

func wrapCoord(v, size float64) float64 {
	if size <= 0 || (v >= 0 && v < size) {
		return v
	}
	v = math.Mod(v, size)
	if v < 0 {
		v += size
	}
	// Mod can round a tiny negative up to size.
	if v >= size {
		v = 0
	}
	return v
}

// ApplyBoundary enforces the configured policy on an agent that has just moved.
func ApplyBoundary(policy string, b Bounds, pos *components.Position, vel *components.Velocity) BoundaryResult {
	p := r2.Vec(*pos)
	switch policy {
	case config.BoundaryReflect:
		bounced := false
		if p.X < 0 {
			p.X, vel.X, bounced = 0, math.Abs(vel.X), true
		} else if p.X > b.Width {
			p.X, vel.X, bounced = b.Width, -math.Abs(vel.X), true
		}
		if p.Y < 0 {
			p.Y, vel.Y, bounced = 0, math.Abs(vel.Y), true
		} else if p.Y > b.Height {
			p.Y, vel.Y, bounced = b.Height, -math.Abs(vel.Y), true
		}
		*pos = components.Position(p)
		if bounced {
			return BoundaryReflected
		}
	case config.BoundaryStop:
		if outside(p, b) {
			p.X = clampFloat(p.X, 0, b.Width)
			p.Y = clampFloat(p.Y, 0, b.Height)
			*pos = components.Position(p)
			*vel = components.Velocity{}
			return BoundaryStopped
		}
	case config.BoundaryTravelOff:
		if outside(p, b) {
			return BoundaryExited
		}
	default:
		if w, wrapped := Wrap(p, b); wrapped {
			*pos = components.Position(w)
			return BoundaryWrapped
		}
	}
	return BoundaryInside
}

func outside(p r2.Vec, b Bounds) bool {
	return p.X < 0 || p.Y < 0 || p.X > b.Width || p.Y > b.Height
}

// GrowTrail appends p to the trail, or starts a new segment at p after a
// wrap. The newest segment is simplified once simplify_after unsettled points
// accumulate, and the total point count is capped.
func GrowTrail(t *components.Trail, p r2.Vec, cut bool, s *config.TrailSettings) {
	t.Hidden = false
	if cut {
		t.Cut(p)
	} else {
		t.Append(p)
	}

	last := len(t.Segments) - 1
	seg := t.Segments[last]
	if s.SimplifyAfter > 0 && len(seg)-t.Settled > s.SimplifyAfter {
		start := max(t.Settled-1, 0)
		simplified := simplifyPath(seg[start:], s.SimplifyTolerance)
		t.Segments[last] = append(seg[:start], simplified...)
		t.Settled = len(t.Segments[last])
	}
	t.Trim(s.MaxPoints)
}

func simplifyPath(pts []r2.Vec, tolerance float64) []r2.Vec {
	if tolerance <= 0 || len(pts) < 3 {
		return append([]r2.Vec(nil), pts...)
	}
	ls := make(orb.LineString, len(pts))
	for i, p := range pts {
		ls[i] = orb.Point{p.X, p.Y}
	}
	out, ok := simplify.DouglasPeucker(tolerance).Simplify(ls).(orb.LineString)
	if !ok {
		return append([]r2.Vec(nil), pts...)
	}
	res := make([]r2.Vec, len(out))
	for i, p := range out {
		res[i] = r2.Vec{X: p[0], Y: p[1]}
	}
	return res
}
