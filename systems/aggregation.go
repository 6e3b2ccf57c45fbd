package systems

import (
	"cmp"
	"math"
	"slices"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/swarmpaint/agents"
	"github.com/pthm-cable/swarmpaint/components"
	"github.com/pthm-cable/swarmpaint/config"
)

// Line is a persistent visual link between two agents.
type Line struct {
	A, B     ecs.Entity
	From, To r2.Vec
	Branch   int
}

type pairKey struct{ lo, hi uint32 }

func makePairKey(a, b uint32) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a, b}
}

// lineSet keeps one line per unordered agent pair. ids holds an entry only
// for agents with at least one line; refs counts those lines.
type lineSet struct {
	lines map[pairKey]*Line
	ids   map[ecs.Entity]uint32
	refs  map[ecs.Entity]int
}

func newLineSet() lineSet {
	return lineSet{lines: map[pairKey]*Line{}, ids: map[ecs.Entity]uint32{}, refs: map[ecs.Entity]int{}}
}

func (s *lineSet) add(a, b ecs.Entity, idA, idB uint32, from, to r2.Vec, branch int) bool {
	k := makePairKey(idA, idB)
	if _, ok := s.lines[k]; ok {
		return false
	}
	s.lines[k] = &Line{A: a, B: b, From: from, To: to, Branch: branch}
	s.ids[a], s.ids[b] = idA, idB
	s.refs[a]++
	s.refs[b]++
	return true
}

// remove deletes the line under k and forgets endpoints left without lines.
func (s *lineSet) remove(k pairKey) {
	l, ok := s.lines[k]
	if !ok {
		return
	}
	delete(s.lines, k)
	for _, e := range [2]ecs.Entity{l.A, l.B} {
		s.refs[e]--
		if s.refs[e] <= 0 {
			delete(s.refs, e)
			delete(s.ids, e)
		}
	}
}

// dropAgent removes every line touching e.
func (s *lineSet) dropAgent(e ecs.Entity) {
	id, ok := s.ids[e]
	if !ok {
		return
	}
	for k := range s.lines {
		if k.lo == id || k.hi == id {
			s.remove(k)
		}
	}
}

func (s *lineSet) clear() {
	clear(s.lines)
	clear(s.ids)
	clear(s.refs)
}

func (s *lineSet) sorted() []Line {
	keys := make([]pairKey, 0, len(s.lines))
	for k := range s.lines {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b pairKey) int {
		if c := cmp.Compare(a.lo, b.lo); c != 0 {
			return c
		}
		return cmp.Compare(a.hi, b.hi)
	})
	out := make([]Line, len(keys))
	for i, k := range keys {
		out[i] = *s.lines[k]
	}
	return out
}

// Aggregation forms symmetric branch connections between nearby agents,
// holds connected agents at a target spacing and keeps unconnected ones apart.
type Aggregation struct {
	store      *agents.Store
	lines      lineSet
	nextBranch int
	active     bool
}

// NewAggregation creates the module and hooks agent removal so lines never
// outlive their agents.
func NewAggregation(store *agents.Store) *Aggregation {
	m := &Aggregation{store: store, lines: newLineSet(), nextBranch: 1}
	store.OnRemove(func(e ecs.Entity, _ *components.Agent) {
		m.lines.dropAgent(e)
	})
	return m
}

func (*Aggregation) Name() string { return "aggregation" }
func (*Aggregation) Enabled(s *config.Settings) bool { return s.Aggregation.Enabled }
func (*Aggregation) Weight(s *config.Settings) float64 { return s.Aggregation.Strength }

// Prepare runs at tick start. Turning aggregation off tears down every
// connection and line.
func (m *Aggregation) Prepare(s *config.Settings) {
	if s.Aggregation.Enabled {
		m.active = true
		return
	}
	if m.active {
		m.store.ClearBonds()
		m.lines.clear()
		m.active = false
	}
}

// Calculate connects a to agents within the connect distance, then returns
// the spring force toward linked agents plus repulsion from unlinked ones.
func (m *Aggregation) Calculate(a *AgentRef, f *Frame) r2.Vec {
	s := &f.Settings.Aggregation
	radius := math.Max(s.Distance, s.RepulsionDistance)

	for _, n := range f.Neighbors(a, s.Distance) {
		if n.DistSq > s.Distance*s.Distance {
			continue
		}
		m.connect(a, &f.Agents[n.Index], f)
	}

	var force r2.Vec
	for _, peer := range a.Bond.Links {
		ref, ok := f.Ref(peer)
		if !ok {
			continue
		}
		d := f.Delta(a.Pos, ref.Pos)
		dist := r2.Norm(d)
		if dist == 0 {
			continue
		}
		stretch := dist - s.Spacing
		force = r2.Add(force, r2.Scale(stretch*s.SpringStrength/dist, d))
	}

	if s.RepulsionDistance > 0 {
		for _, n := range f.Neighbors(a, radius) {
			other := &f.Agents[n.Index]
			if n.DistSq == 0 || n.DistSq > s.RepulsionDistance*s.RepulsionDistance {
				continue
			}
			if a.Bond.Linked(other.Entity) {
				continue
			}
			dist := math.Sqrt(n.DistSq)
			push := (1 - dist/s.RepulsionDistance) * s.RepulsionStrength
			force = r2.Add(force, r2.Scale(-push/dist, n.D))
		}
	}
	return force
}

func (m *Aggregation) connect(a, b *AgentRef, f *Frame) {
	s := &f.Settings.Aggregation
	if a.Bond.Linked(b.Entity) {
		return
	}
	if s.MaxLinks > 0 && (len(a.Bond.Links) >= s.MaxLinks || len(b.Bond.Links) >= s.MaxLinks) {
		return
	}
	if !m.store.Connect(a.Entity, b.Entity) {
		return
	}

	switch {
	case a.Bond.Branch == 0 && b.Bond.Branch == 0:
		a.Bond.Branch = m.nextBranch
		b.Bond.Branch = m.nextBranch
		m.nextBranch++
	case a.Bond.Branch == 0:
		a.Bond.Branch = b.Bond.Branch
	case b.Bond.Branch == 0:
		b.Bond.Branch = a.Bond.Branch
	case a.Bond.Branch != b.Bond.Branch:
		m.relabel(b.Entity, b.Bond.Branch, a.Bond.Branch)
	}

	m.lines.add(a.Entity, b.Entity, a.ID, b.ID, a.Pos, b.Pos, a.Bond.Branch)

	if s.StickOnConnect {
		m.pin(a.Entity)
		m.pin(b.Entity)
	}
}

// relabel moves every agent reachable from start off branch from onto to.
func (m *Aggregation) relabel(start ecs.Entity, from, to int) {
	queue := []ecs.Entity{start}
	for len(queue) > 0 {
		e := queue[0]
		queue = queue[1:]
		v, ok := m.store.Get(e)
		if !ok || v.Bond.Branch != from {
			continue
		}
		v.Bond.Branch = to
		queue = append(queue, v.Bond.Links...)
	}
}

func (m *Aggregation) pin(e ecs.Entity) {
	v, ok := m.store.Get(e)
	if !ok || v.Agent.State == components.StateSeed {
		return
	}
	v.Agent.State = components.StateStuck
	*v.Vel = components.Velocity{}
}

// Sync refreshes line endpoints from current positions and drops lines
// whose connection no longer exists.
func (m *Aggregation) Sync() {
	for k, l := range m.lines.lines {
		va, okA := m.store.Get(l.A)
		vb, okB := m.store.Get(l.B)
		if !okA || !okB || !va.Bond.Linked(l.B) {
			m.lines.remove(k)
			continue
		}
		l.From, l.To = r2.Vec(*va.Pos), r2.Vec(*vb.Pos)
		l.Branch = va.Bond.Branch
	}
}

// Lines returns the connection lines ordered by agent pair.
func (m *Aggregation) Lines() []Line {
	return m.lines.sorted()
}

// LineCount returns the number of connection lines.
func (m *Aggregation) LineCount() int {
	return len(m.lines.lines)
}

// Branches returns the number of distinct branch ids in use.
func (m *Aggregation) Branches() int {
	seen := map[int]struct{}{}
	m.store.ForEach(func(v agents.View) {
		if v.Bond.Branch != 0 {
			seen[v.Bond.Branch] = struct{}{}
		}
	})
	return len(seen)
}
