package systems

import (
	"math/rand"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/swarmpaint/agents"
	"github.com/pthm-cable/swarmpaint/components"
	"github.com/pthm-cable/swarmpaint/config"
)

// seedPlacementTries bounds the search for a free spot for a new seed.
const seedPlacementTries = 32

// DLA implements diffusion-limited aggregation: a pool of fixed seeds, and
// moving agents that stick permanently when they touch a seed or a stuck agent.
type DLA struct {
	store  *agents.Store
	lines  lineSet
	active bool

	scratch []ecs.Entity
}

// NewDLA creates the module. It is the only module allowed to create agents.
func NewDLA(store *agents.Store) *DLA {
	m := &DLA{store: store, lines: newLineSet()}
	store.OnRemove(func(e ecs.Entity, _ *components.Agent) {
		m.lines.dropAgent(e)
	})
	return m
}

// Ensure draws the agent's sticking factor.
func (*DLA) Ensure(st *components.Steering, _ *config.Settings, rng *rand.Rand) {
	if st.StickSeeded {
		return
	}
	st.StickFactor = 0.5 + 0.5*rng.Float64()
	st.StickSeeded = true
}

// Prepare runs at tick start. Disabling DLA drops its lines; stuck agents and
// seeds stay where they are.
func (m *DLA) Prepare(s *config.Settings) {
	if s.DLA.Enabled {
		m.active = true
		return
	}
	if m.active {
		m.lines.clear()
		m.active = false
	}
}

// MaintainSeeds tops the seed pool up to seed_count, converting active agents
// first and creating new ones at free positions otherwise. Returns the number
// of seeds added.
func (m *DLA) MaintainSeeds(s *config.Settings, rng *rand.Rand, colors func() agents.Colors) int {
	if !s.DLA.Enabled {
		return 0
	}
	missing := s.DLA.SeedCount - m.store.CountByState()[components.StateSeed]
	if missing <= 0 {
		return 0
	}

	added := 0
	m.scratch = m.scratch[:0]
	m.store.ForEach(func(v agents.View) {
		if v.Agent.State == components.StateActive {
			m.scratch = append(m.scratch, v.Entity)
		}
	})
	rng.Shuffle(len(m.scratch), func(i, j int) {
		m.scratch[i], m.scratch[j] = m.scratch[j], m.scratch[i]
	})
	for _, e := range m.scratch {
		if added == missing {
			return added
		}
		v, _ := m.store.Get(e)
		v.Agent.State = components.StateSeed
		*v.Vel = components.Velocity{}
		added++
	}

	if colors == nil {
		colors = func() agents.Colors { return agents.Colors{} }
	}
	for added < missing {
		placed := false
		for try := 0; try < seedPlacementTries; try++ {
			p := r2.Vec{X: rng.Float64() * s.Canvas.Width, Y: rng.Float64() * s.Canvas.Height}
			if _, ok := m.store.Create(p, colors(), true); ok {
				placed = true
				break
			}
		}
		if !placed {
			break
		}
		added++
	}
	return added
}

// TryStick checks a moving agent against nearby seeds and stuck agents and,
// if the per-agent probability gate passes, freezes it permanently.
func (m *DLA) TryStick(a *AgentRef, v agents.View, f *Frame) bool {
	s := &f.Settings.DLA
	if s.StickDistance <= 0 {
		return false
	}

	n, ok := f.Nearest(a, s.StickDistance, func(n Neighbor) bool {
		return f.Agents[n.Index].State.Anchored()
	})
	if !ok {
		return false
	}
	anchor := &f.Agents[n.Index]

	chance := s.StickProbability * a.Steering.StickFactor
	if f.Rng.Float64() >= chance {
		return false
	}

	v.Agent.State = components.StateStuck
	*v.Vel = components.Velocity{}
	if s.DrawLines {
		m.lines.add(a.Entity, anchor.Entity, a.ID, anchor.ID, a.Pos, anchor.Pos, 0)
	}
	return true
}

// Sync refreshes line endpoints and drops lines to removed agents.
func (m *DLA) Sync() {
	for k, l := range m.lines.lines {
		va, okA := m.store.Get(l.A)
		vb, okB := m.store.Get(l.B)
		if !okA || !okB {
			m.lines.remove(k)
			continue
		}
		l.From, l.To = r2.Vec(*va.Pos), r2.Vec(*vb.Pos)
	}
}

// Lines returns the sticking lines ordered by agent pair.
func (m *DLA) Lines() []Line {
	return m.lines.sorted()
}
