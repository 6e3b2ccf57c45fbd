package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/swarmpaint/components"
	"github.com/pthm-cable/swarmpaint/config"
)

// Flocking computes separation, cohesion and alignment in one neighbor pass
// and exposes them as three blendable forces.
type Flocking struct {
	tick  uint64
	index int
	valid bool

	sep, coh, ali r2.Vec
}

// NewFlocking creates the flocking module.
func NewFlocking() *Flocking {
	return &Flocking{}
}

// Forces returns the three sub-forces, each weighted by its own setting.
func (m *Flocking) Forces() []Force {
	return []Force{separation{m}, cohesion{m}, alignment{m}}
}

// Compute returns unit separation, cohesion and alignment vectors for a.
// Any of them is zero when no eligible neighbor is in range.
func (m *Flocking) Compute(a *AgentRef, f *Frame) (sep, coh, ali r2.Vec) {
	if m.valid && m.tick == f.Tick && m.index == a.Index {
		return m.sep, m.coh, m.ali
	}
	s := &f.Settings.Flocking
	radius := math.Max(s.SeparationDistance, math.Max(s.CohesionDistance, s.AlignmentDistance))

	dir := unit(a.Vel)
	cosCone := math.Cos(config.Radians(s.SensorAngle))
	coneLimited := !isZero(dir) && s.SensorAngle < 180

	var sepSum, cohSum, aliSum r2.Vec
	cohN, aliN := 0, 0
	for _, n := range f.Neighbors(a, radius) {
		other := &f.Agents[n.Index]
		if other.State != components.StateActive {
			continue
		}
		d := math.Sqrt(n.DistSq)
		if d == 0 {
			continue
		}
		if coneLimited && r2.Dot(dir, r2.Scale(1/d, n.D)) < cosCone {
			continue
		}
		if d < s.SeparationDistance {
			push := r2.Scale(-(s.SeparationDistance-d)/(s.SeparationDistance*d), n.D)
			sepSum = r2.Add(sepSum, push)
		}
		if d < s.CohesionDistance {
			cohSum = r2.Add(cohSum, n.D)
			cohN++
		}
		if d < s.AlignmentDistance {
			aliSum = r2.Add(aliSum, other.Vel)
			aliN++
		}
	}

	sep = unit(sepSum)
	if cohN > 0 {
		// Offset to the neighbors' centroid.
		coh = unit(r2.Scale(1/float64(cohN), cohSum))
	}
	if aliN > 0 {
		ali = unit(r2.Scale(1/float64(aliN), aliSum))
	}

	m.tick, m.index, m.valid = f.Tick, a.Index, true
	m.sep, m.coh, m.ali = sep, coh, ali
	return sep, coh, ali
}

type separation struct{ m *Flocking }

func (separation) Name() string { return "separation" }
func (separation) Enabled(s *config.Settings) bool { return s.Flocking.Enabled }
func (separation) Weight(s *config.Settings) float64 { return s.Flocking.Separation }
func (x separation) Calculate(a *AgentRef, f *Frame) r2.Vec {
	v, _, _ := x.m.Compute(a, f)
	return v
}

type cohesion struct{ m *Flocking }

func (cohesion) Name() string { return "cohesion" }
func (cohesion) Enabled(s *config.Settings) bool { return s.Flocking.Enabled }
func (cohesion) Weight(s *config.Settings) float64 { return s.Flocking.Cohesion }
func (x cohesion) Calculate(a *AgentRef, f *Frame) r2.Vec {
	_, v, _ := x.m.Compute(a, f)
	return v
}

type alignment struct{ m *Flocking }

func (alignment) Name() string { return "alignment" }
func (alignment) Enabled(s *config.Settings) bool { return s.Flocking.Enabled }
func (alignment) Weight(s *config.Settings) float64 { return s.Flocking.Alignment }
func (x alignment) Calculate(a *AgentRef, f *Frame) r2.Vec {
	_, _, v := x.m.Compute(a, f)
	return v
}
