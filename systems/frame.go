package systems

import (
	"math/rand"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/swarmpaint/agents"
	"github.com/pthm-cable/swarmpaint/background"
	"github.com/pthm-cable/swarmpaint/components"
	"github.com/pthm-cable/swarmpaint/config"
	"github.com/pthm-cable/swarmpaint/obstacles"
)

// AgentRef is one agent as seen by force modules: position, velocity and
// state as of the end of the previous frame, plus the live per-agent state
// that modules are allowed to mutate.
type AgentRef struct {
	Index  int
	Entity ecs.Entity
	ID     uint32
	State  components.State
	Pos    r2.Vec
	Vel    r2.Vec

	Steering *components.Steering
	Bond     *components.Bond
}

// Frame is the read-only world a tick's force modules evaluate against.
type Frame struct {
	Tick       uint64
	Now        float64
	Settings   *config.Settings
	Agents     []AgentRef
	Obstacles  []*obstacles.Obstacle
	Background background.Sampler
	Rng        *rand.Rand

	grid      *SpatialGrid
	byEntity  map[ecs.Entity]int
	neighbors []Neighbor
}

// build fills the frame from the store. Component pointers captured here stay
// valid until the store's next structural change.
func (f *Frame) build(store *agents.Store, entities []ecs.Entity) {
	f.Agents = f.Agents[:0]
	if f.byEntity == nil {
		f.byEntity = make(map[ecs.Entity]int, len(entities))
	}
	clear(f.byEntity)

	s := f.Settings
	cell := s.MaxNeighborRadius()
	wrap := s.Motion.Boundary == config.BoundaryWrap
	if f.grid == nil || !f.grid.Matches(s.Canvas.Width, s.Canvas.Height, cell, wrap) {
		f.grid = NewSpatialGrid(s.Canvas.Width, s.Canvas.Height, cell, wrap)
	}
	f.grid.Clear()

	for _, e := range entities {
		v, ok := store.Get(e)
		if !ok {
			continue
		}
		i := len(f.Agents)
		f.Agents = append(f.Agents, AgentRef{
			Index:    i,
			Entity:   e,
			ID:       v.Agent.ID,
			State:    v.Agent.State,
			Pos:      r2.Vec(*v.Pos),
			Vel:      r2.Vec(*v.Vel),
			Steering: v.Steering,
			Bond:     v.Bond,
		})
		f.byEntity[e] = i
		f.grid.Insert(i, r2.Vec(*v.Pos))
	}
}

// Ref returns the snapshot of e, if it was alive at frame start.
func (f *Frame) Ref(e ecs.Entity) (*AgentRef, bool) {
	i, ok := f.byEntity[e]
	if !ok {
		return nil, false
	}
	return &f.Agents[i], true
}

// Neighbors returns agents within radius of a, excluding a itself. The
// returned slice is reused by the next call.
func (f *Frame) Neighbors(a *AgentRef, radius float64) []Neighbor {
	if f.grid == nil || radius <= 0 {
		return nil
	}
	f.neighbors = f.grid.QueryRadiusInto(f.neighbors[:0], a.Pos, radius, a.Index)
	return f.neighbors
}

// Nearest returns the closest agent to a within radius that accept admits,
// scanning every agent in range.
func (f *Frame) Nearest(a *AgentRef, radius float64, accept func(Neighbor) bool) (Neighbor, bool) {
	if f.grid == nil || radius <= 0 {
		return Neighbor{}, false
	}
	return f.grid.Nearest(a.Pos, radius, a.Index, accept)
}

// Delta returns the vector from a to b, across the seam when wrapping.
func (f *Frame) Delta(a, b r2.Vec) r2.Vec {
	if f.grid != nil {
		return f.grid.delta(a, b)
	}
	return r2.Sub(b, a)
}
