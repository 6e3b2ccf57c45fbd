package game

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/swarmpaint/components"
	"github.com/pthm-cable/swarmpaint/config"
)

// SpawnAt drops one brush dab of spawn.count agents scattered within
// spawn.brush_radius of p. Points off the canvas or inside obstacles are
// skipped. It returns the number of agents created.
func (g *Game) SpawnAt(p r2.Vec) int {
	s := &g.settings
	speed := s.Spawn.InitialSpeed * s.Motion.Speed
	created := 0

	for i := 0; i < s.Spawn.Count; i++ {
		// Uniform over the disc.
		r := s.Spawn.BrushRadius * math.Sqrt(g.rng.Float64())
		pos := r2.Add(p, r2.Scale(r, unitAt(g.rng.Float64()*2*math.Pi)))
		if !onCanvas(pos, s) {
			continue
		}

		colors := g.palette.Pick(g.rng, pos.X/s.Canvas.Width)
		e, ok := g.store.Create(pos, colors, false)
		if !ok {
			continue
		}
		v, _ := g.store.Get(e)
		*v.Vel = components.Velocity(r2.Scale(speed, unitAt(g.rng.Float64()*2*math.Pi)))
		v.Trail.Hidden = !s.Motion.PaintMode
		created++
	}

	g.collector.RecordSpawn(created)
	return created
}

// SpawnRandom scatters n agents over the whole canvas.
func (g *Game) SpawnRandom(n int) int {
	s := &g.settings
	created := 0
	for i := 0; i < n; i++ {
		p := r2.Vec{X: g.rng.Float64() * s.Canvas.Width, Y: g.rng.Float64() * s.Canvas.Height}
		e, ok := g.store.Create(p, g.palette.Pick(g.rng, p.X/s.Canvas.Width), false)
		if !ok {
			continue
		}
		v, _ := g.store.Get(e)
		*v.Vel = components.Velocity(r2.Scale(s.Spawn.InitialSpeed*s.Motion.Speed, unitAt(g.rng.Float64()*2*math.Pi)))
		v.Trail.Hidden = !s.Motion.PaintMode
		created++
	}
	g.collector.RecordSpawn(created)
	return created
}

// EraseAt removes every agent within spawn.erase_radius of p.
func (g *Game) EraseAt(p r2.Vec) int {
	n := g.store.RemoveNear(p, g.settings.Spawn.EraseRadius)
	g.collector.RecordErase(n)
	return n
}

// Clear removes every agent. Obstacles stay.
func (g *Game) Clear() int {
	n := g.store.RemoveAll()
	g.collector.RecordErase(n)
	return n
}

func onCanvas(p r2.Vec, s *config.Settings) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < s.Canvas.Width && p.Y < s.Canvas.Height
}

func unitAt(angle float64) r2.Vec {
	sin, cos := math.Sincos(angle)
	return r2.Vec{X: cos, Y: sin}
}
