package systems

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/swarmpaint/config"
	"github.com/pthm-cable/swarmpaint/obstacles"
)

// Avoidance pushes agents out of and away from obstacles. It is added after
// the weighted blend rather than taking part in it.
type Avoidance struct{}

func (Avoidance) Name() string { return "avoidance" }
func (Avoidance) Enabled(s *config.Settings) bool { return s.Avoidance.Enabled }
func (Avoidance) Weight(s *config.Settings) float64 { return s.Avoidance.Strength }

// Calculate sums the push from every obstacle and clamps it to max_force.
func (Avoidance) Calculate(a *AgentRef, f *Frame) r2.Vec {
	s := &f.Settings.Avoidance
	var total r2.Vec
	for _, o := range f.Obstacles {
		total = r2.Add(total, avoidOne(o, a.Pos, s))
	}
	if s.MaxForce > 0 {
		total = clampLength(total, s.MaxForce)
	}
	return total
}

func avoidOne(o *obstacles.Obstacle, p r2.Vec, s *config.AvoidanceSettings) r2.Vec {
	if !o.Near(p, s.Distance) {
		return r2.Vec{}
	}
	b := o.NearestBoundaryPoint(p)
	if o.Contains(p) {
		// Linear push along the penetration vector.
		return r2.Scale(s.PushMultiplier*s.Strength, r2.Sub(b, p))
	}
	if s.Distance <= 0 {
		return r2.Vec{}
	}
	away := r2.Sub(p, b)
	d := r2.Norm(away)
	if d >= s.Distance || d == 0 {
		return r2.Vec{}
	}
	falloff := 1 - d/s.Distance
	return r2.Scale(falloff*falloff*s.Strength/d, away)
}
