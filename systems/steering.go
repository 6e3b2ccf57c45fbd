package systems

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/swarmpaint/components"
	"github.com/pthm-cable/swarmpaint/config"
)

// Wander steers toward a point on a circle projected ahead of the agent.
// The point's angle follows a per-agent bounded random walk.
type Wander struct{}

func (Wander) Name() string { return "wander" }
func (Wander) Enabled(s *config.Settings) bool { return s.Wander.Enabled }
func (Wander) Weight(s *config.Settings) float64 { return s.Wander.Strength }

// Ensure draws the initial wander angle.
func (Wander) Ensure(st *components.Steering, _ *config.Settings, rng *rand.Rand) {
	if st.WanderSeeded {
		return
	}
	st.WanderAngle = rng.Float64() * 2 * math.Pi
	st.WanderSeeded = true
}

// Calculate advances the wander angle and returns a unit vector toward the target.
func (Wander) Calculate(a *AgentRef, f *Frame) r2.Vec {
	s := &f.Settings.Wander
	st := a.Steering
	st.WanderAngle = normalizeAngle(st.WanderAngle + (2*f.Rng.Float64()-1)*s.Speed)

	h := heading(a.Vel)
	center := r2.Scale(s.Distance, fromAngle(h))
	target := r2.Add(center, r2.Scale(s.Radius, fromAngle(h+st.WanderAngle)))
	return unit(target)
}

// External is a constant wind with a fixed per-agent angular deviation.
type External struct{}

func (External) Name() string { return "external" }
func (External) Enabled(s *config.Settings) bool { return s.External.Enabled }
func (External) Weight(s *config.Settings) float64 { return s.External.Strength }

// Ensure draws the agent's deviation within ±random_range degrees.
func (External) Ensure(st *components.Steering, s *config.Settings, rng *rand.Rand) {
	if st.ExternalSeeded {
		return
	}
	st.ExternalOffset = config.Radians((2*rng.Float64() - 1) * s.External.RandomRange)
	st.ExternalSeeded = true
}

// Calculate returns the wind vector scaled by strength.
func (External) Calculate(a *AgentRef, f *Frame) r2.Vec {
	s := &f.Settings.External
	angle := config.Radians(s.Angle)
	if a.Steering != nil {
		angle += a.Steering.ExternalOffset
	}
	return r2.Scale(s.Strength, fromAngle(angle))
}

// Magnetism pulls toward the nearest agent, blended with a fixed field
// direction and limited in how fast it can turn the heading.
type Magnetism struct{}

func (Magnetism) Name() string { return "magnetism" }
func (Magnetism) Enabled(s *config.Settings) bool { return s.Magnetism.Enabled }
func (Magnetism) Weight(s *config.Settings) float64 { return s.Magnetism.Strength }

const (
	magnetAttraction = 0.7
	magnetField      = 0.3
)

// Calculate returns the attraction toward the nearest agent within range.
func (Magnetism) Calculate(a *AgentRef, f *Frame) r2.Vec {
	s := &f.Settings.Magnetism
	if s.Distance <= 0 {
		return r2.Vec{}
	}

	// Frozen and stuck agents still attract.
	nearest, ok := f.Nearest(a, s.Distance, func(n Neighbor) bool { return n.DistSq > 0 })
	if !ok {
		return r2.Vec{}
	}

	dist := math.Sqrt(nearest.DistSq)
	attract := r2.Scale(1/dist, nearest.D)
	field := fromAngle(config.Radians(s.FieldAngle))
	dir := unit(r2.Add(r2.Scale(magnetAttraction, attract), r2.Scale(magnetField, field)))
	if isZero(dir) {
		return r2.Vec{}
	}

	if !isZero(a.Vel) && s.TurnRate > 0 {
		h := heading(a.Vel)
		turn := normalizeAngle(heading(dir) - h)
		maxTurn := config.Radians(s.TurnRate)
		dir = fromAngle(h + clampFloat(turn, -maxTurn, maxTurn))
	}

	falloff := 1 - dist/s.Distance
	return r2.Scale(falloff*s.Strength, dir)
}

// ColorField turns background brightness at a point ahead of the agent into
// a direction. It is exempt from the bounce cooldown.
type ColorField struct{}

func (ColorField) Name() string { return "color_field" }
func (ColorField) Enabled(s *config.Settings) bool { return s.ColorField.ForceEnabled }
func (ColorField) Weight(s *config.Settings) float64 { return s.ColorField.ForceStrength }

// Direction samples the background and returns the unit direction for a.
// ok is false when there is no sample.
func (ColorField) Direction(a *AgentRef, f *Frame) (r2.Vec, bool) {
	if f.Background == nil {
		return r2.Vec{}, false
	}
	s := &f.Settings.ColorField
	p := r2.Add(a.Pos, r2.Scale(s.SampleDistance, fromAngle(heading(a.Vel))))
	b, ok := f.Background.Brightness(p.X, p.Y)
	if !ok {
		return r2.Vec{}, false
	}
	angle := config.Radians(lerp(s.MinAngle, s.MaxAngle, b))
	return fromAngle(angle), true
}

// Calculate returns the color-field force scaled by strength.
func (c ColorField) Calculate(a *AgentRef, f *Frame) r2.Vec {
	dir, ok := c.Direction(a, f)
	if !ok {
		return r2.Vec{}
	}
	return r2.Scale(f.Settings.ColorField.ForceStrength, dir)
}

// Displacement returns the positional offset applied once per frame when
// displacement is enabled.
func (c ColorField) Displacement(a *AgentRef, f *Frame) r2.Vec {
	if !f.Settings.ColorField.DisplacementEnabled {
		return r2.Vec{}
	}
	dir, ok := c.Direction(a, f)
	if !ok {
		return r2.Vec{}
	}
	return r2.Scale(f.Settings.ColorField.DisplacementStrength, dir)
}
