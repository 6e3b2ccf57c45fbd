// Package components defines ECS components for the simulation.
package components

import (
	"image/color"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"
)

// State is an agent's lifecycle state.
type State uint8

const (
	StateActive  State = iota // integrated every frame
	StateFrozen               // timed freeze under paint mode; reactivated when painting stops
	StateStopped              // halted by the stop boundary policy
	StateStuck                // permanently bonded by DLA or aggregation
	StateSeed                 // DLA anchor

	NumStates = int(StateSeed) + 1
)

var stateNames = [...]string{"active", "frozen", "stopped", "stuck", "seed"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Moving reports whether the state takes part in force integration.
func (s State) Moving() bool {
	return s == StateActive
}

// Anchored reports whether the state is a permanent DLA attachment point.
func (s State) Anchored() bool {
	return s == StateStuck || s == StateSeed
}

// Agent holds identity, lifecycle and colors.
type Agent struct {
	ID     uint32
	State  State
	BornAt float64 // simulation seconds
	Stroke color.RGBA
	Fill   color.RGBA
}

// Position represents an agent's canvas position.
type Position r2.Vec

// Velocity represents an agent's velocity, carried frame to frame.
type Velocity r2.Vec

// Trail is an append-only polyline of past positions.
// A wrap-around cut starts a new segment so no line crosses the seam.
type Trail struct {
	Segments [][]r2.Vec
	Hidden   bool
	Settled  int // leading points of the last segment already simplified
}

// Append adds a point to the current segment.
func (t *Trail) Append(p r2.Vec) {
	if len(t.Segments) == 0 {
		t.Segments = append(t.Segments, nil)
	}
	last := len(t.Segments) - 1
	t.Segments[last] = append(t.Segments[last], p)
}

// Cut starts a new segment at p.
func (t *Trail) Cut(p r2.Vec) {
	t.Segments = append(t.Segments, []r2.Vec{p})
	t.Settled = 0
}

// Reset drops all points.
func (t *Trail) Reset() {
	t.Segments = t.Segments[:0]
	t.Settled = 0
}

// Trim drops the oldest points until at most limit remain. limit <= 0 keeps everything.
func (t *Trail) Trim(limit int) {
	if limit <= 0 {
		return
	}
	excess := t.Len() - limit
	for excess > 0 && len(t.Segments) > 0 {
		first := t.Segments[0]
		if len(first) <= excess {
			excess -= len(first)
			t.Segments = t.Segments[1:]
			if len(t.Segments) == 0 {
				t.Settled = 0
			}
			continue
		}
		t.Segments[0] = first[excess:]
		if len(t.Segments) == 1 {
			t.Settled = max(0, t.Settled-excess)
		}
		excess = 0
	}
}

// Len returns the total number of points.
func (t *Trail) Len() int {
	n := 0
	for _, s := range t.Segments {
		n += len(s)
	}
	return n
}

// Motion is boundary and reflection bookkeeping owned by the updater.
type Motion struct {
	Reflected      bool
	ReflectedSpeed float64 // speed locked at the bounce
	ReflectedAt    float64
	BounceUntil    float64 // steering is skipped until this time
}

// Steering holds per-agent random seeds. Each field is written once by its
// module's ensure step and reused on later frames.
type Steering struct {
	WanderSeeded   bool
	WanderAngle    float64
	ExternalSeeded bool
	ExternalOffset float64 // radians
	StickSeeded    bool
	StickFactor    float64 // scales dla.stick_probability, drawn in [0.5, 1)
}

// Bond holds aggregation connections. Links always mirror the peer's Links.
type Bond struct {
	Links  []ecs.Entity
	Branch int // 0 = none
}

// Linked reports whether e is among the links.
func (b *Bond) Linked(e ecs.Entity) bool {
	for _, l := range b.Links {
		if l == e {
			return true
		}
	}
	return false
}

// Unlink removes e from the links and clears the branch when none remain.
func (b *Bond) Unlink(e ecs.Entity) {
	for i, l := range b.Links {
		if l == e {
			b.Links = append(b.Links[:i], b.Links[i+1:]...)
			break
		}
	}
	if len(b.Links) == 0 {
		b.Branch = 0
	}
}
