package systems

import (
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/swarmpaint/components"
	"github.com/pthm-cable/swarmpaint/config"
)

// Force is a steering module. Calculate returns the zero vector for
// "no contribution"; Weight is the blend weight the module claims.
type Force interface {
	Name() string
	Enabled(s *config.Settings) bool
	Weight(s *config.Settings) float64
	Calculate(a *AgentRef, f *Frame) r2.Vec
}

// Seeder is implemented by modules that keep per-agent random state.
// Ensure must be idempotent: once a value is drawn it is reused.
type Seeder interface {
	Ensure(st *components.Steering, s *config.Settings, rng *rand.Rand)
}

// Contribution is one evaluated force and its weight.
type Contribution struct {
	Force  r2.Vec
	Weight float64
}

// ReflectDamping scales forces opposing the heading of a reflected agent.
const ReflectDamping = 0.3

// Blend computes the weighted average of the contributions and scales it by
// speed. Zero forces and zero weights are skipped; with nothing left the
// result is zero. When reflected, forces opposing vel are damped.
func Blend(cs []Contribution, vel r2.Vec, reflected bool, speed float64) r2.Vec {
	var sum r2.Vec
	total := 0.0
	dir := unit(vel)
	for _, c := range cs {
		if isZero(c.Force) || c.Weight == 0 || !finite(c.Force) {
			continue
		}
		force := c.Force
		if reflected && r2.Dot(force, dir) < 0 {
			force = r2.Scale(ReflectDamping, force)
		}
		sum = r2.Add(sum, r2.Scale(c.Weight, force))
		total += c.Weight
	}
	if total == 0 {
		return r2.Vec{}
	}
	return r2.Scale(speed/total, sum)
}
