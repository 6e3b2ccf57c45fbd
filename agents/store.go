// Package agents owns agent lifetime on top of an ark ECS world.
package agents

import (
	"cmp"
	"slices"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/swarmpaint/components"
)

// Blocker reports whether a point is inside an obstacle.
type Blocker interface {
	AnyContains(p r2.Vec) bool
}

// View bundles the components of one agent. Pointers are valid until the
// next structural change (create or remove).
type View struct {
	Entity   ecs.Entity
	Agent    *components.Agent
	Pos      *components.Position
	Vel      *components.Velocity
	Trail    *components.Trail
	Motion   *components.Motion
	Steering *components.Steering
	Bond     *components.Bond
}

// Store is the single owner of agent lifetime. Force modules mutate component
// data through views but never create or remove entities.
type Store struct {
	world   *ecs.World
	blocker Blocker

	mapper *ecs.Map7[
		components.Agent,
		components.Position,
		components.Velocity,
		components.Trail,
		components.Motion,
		components.Steering,
		components.Bond,
	]
	filter *ecs.Filter7[
		components.Agent,
		components.Position,
		components.Velocity,
		components.Trail,
		components.Motion,
		components.Steering,
		components.Bond,
	]
	bondMap *ecs.Map1[components.Bond]

	nextID   uint32
	now      float64
	onRemove []func(e ecs.Entity, a *components.Agent)
	scratch  []ecs.Entity
}

// NewStore creates an empty store. blocker may be nil.
func NewStore(blocker Blocker) *Store {
	world := ecs.NewWorld()
	return &Store{
		world:   world,
		blocker: blocker,
		mapper: ecs.NewMap7[
			components.Agent,
			components.Position,
			components.Velocity,
			components.Trail,
			components.Motion,
			components.Steering,
			components.Bond,
		](world),
		filter: ecs.NewFilter7[
			components.Agent,
			components.Position,
			components.Velocity,
			components.Trail,
			components.Motion,
			components.Steering,
			components.Bond,
		](world),
		bondMap: ecs.NewMap1[components.Bond](world),
		nextID:  1,
	}
}

// SetTime sets the simulation clock used for creation timestamps.
func (s *Store) SetTime(t float64) {
	s.now = t
}

// Now returns the simulation clock.
func (s *Store) Now() float64 {
	return s.now
}

// OnRemove registers a hook run before an agent is removed, while its
// components are still readable.
func (s *Store) OnRemove(fn func(e ecs.Entity, a *components.Agent)) {
	s.onRemove = append(s.onRemove, fn)
}

// Create adds an agent at pos. It returns false when pos lies inside an obstacle.
func (s *Store) Create(pos r2.Vec, colors Colors, isSeed bool) (ecs.Entity, bool) {
	if s.blocker != nil && s.blocker.AnyContains(pos) {
		return ecs.Entity{}, false
	}

	agent := components.Agent{
		ID:     s.nextID,
		State:  components.StateActive,
		BornAt: s.now,
		Stroke: colors.Stroke,
		Fill:   colors.Fill,
	}
	if isSeed {
		agent.State = components.StateSeed
	}
	s.nextID++

	p := components.Position(pos)
	vel := components.Velocity{}
	trail := components.Trail{}
	motion := components.Motion{}
	steer := components.Steering{}
	bond := components.Bond{}

	e := s.mapper.NewEntity(&agent, &p, &vel, &trail, &motion, &steer, &bond)
	return e, true
}

// Alive reports whether e is a live agent.
func (s *Store) Alive(e ecs.Entity) bool {
	return s.world.Alive(e)
}

// Get returns the components of e.
func (s *Store) Get(e ecs.Entity) (View, bool) {
	if !s.world.Alive(e) {
		return View{}, false
	}
	a, p, v, t, m, st, b := s.mapper.Get(e)
	return View{Entity: e, Agent: a, Pos: p, Vel: v, Trail: t, Motion: m, Steering: st, Bond: b}, true
}

// ForEach calls fn for every agent. fn must not create or remove agents.
func (s *Store) ForEach(fn func(v View)) {
	query := s.filter.Query()
	for query.Next() {
		a, p, v, t, m, st, b := query.Get()
		fn(View{Entity: query.Entity(), Agent: a, Pos: p, Vel: v, Trail: t, Motion: m, Steering: st, Bond: b})
	}
}

// Entities appends every live agent to dst, ordered by agent ID.
// The result is safe to iterate while removing agents.
func (s *Store) Entities(dst []ecs.Entity) []ecs.Entity {
	start := len(dst)
	query := s.filter.Query()
	for query.Next() {
		dst = append(dst, query.Entity())
	}
	s.sortByID(dst[start:])
	return dst
}

// Count returns the number of live agents.
func (s *Store) Count() int {
	n := 0
	query := s.filter.Query()
	for query.Next() {
		n++
	}
	return n
}

// CountByState returns the number of agents in each state, indexed by State.
func (s *Store) CountByState() [components.NumStates]int {
	var counts [components.NumStates]int
	query := s.filter.Query()
	for query.Next() {
		a, _, _, _, _, _, _ := query.Get()
		if int(a.State) < components.NumStates {
			counts[a.State]++
		}
	}
	return counts
}

// Remove deletes e. Peers drop their links to e before it goes, so no
// surviving agent references a dead handle.
func (s *Store) Remove(e ecs.Entity) bool {
	if !s.world.Alive(e) {
		return false
	}
	a, _, _, _, _, _, bond := s.mapper.Get(e)
	for _, fn := range s.onRemove {
		fn(e, a)
	}
	for _, peer := range bond.Links {
		if s.world.Alive(peer) {
			s.bondMap.Get(peer).Unlink(e)
		}
	}
	bond.Links = nil
	s.world.RemoveEntity(e)
	return true
}

// RemoveNear deletes every agent within radius of p and returns how many went.
func (s *Store) RemoveNear(p r2.Vec, radius float64) int {
	r2sq := radius * radius
	s.scratch = s.scratch[:0]
	query := s.filter.Query()
	for query.Next() {
		_, pos, _, _, _, _, _ := query.Get()
		if r2.Norm2(r2.Sub(r2.Vec(*pos), p)) <= r2sq {
			s.scratch = append(s.scratch, query.Entity())
		}
	}
	n := 0
	for _, e := range s.scratch {
		if s.Remove(e) {
			n++
		}
	}
	return n
}

// RemoveAll deletes every agent.
func (s *Store) RemoveAll() int {
	s.scratch = s.Entities(s.scratch[:0])
	n := 0
	for _, e := range s.scratch {
		if s.Remove(e) {
			n++
		}
	}
	return n
}

// Connect links a and b symmetrically. It fails if either is dead, they are
// the same agent, or they are already linked.
func (s *Store) Connect(a, b ecs.Entity) bool {
	if a == b || !s.world.Alive(a) || !s.world.Alive(b) {
		return false
	}
	ba, bb := s.bondMap.Get(a), s.bondMap.Get(b)
	if ba.Linked(b) {
		return false
	}
	ba.Links = append(ba.Links, b)
	bb.Links = append(bb.Links, a)
	return true
}

// Disconnect removes the link between a and b from both sides.
func (s *Store) Disconnect(a, b ecs.Entity) {
	if s.world.Alive(a) {
		s.bondMap.Get(a).Unlink(b)
	}
	if s.world.Alive(b) {
		s.bondMap.Get(b).Unlink(a)
	}
}

// ClearBonds drops every link and branch id.
func (s *Store) ClearBonds() {
	query := s.filter.Query()
	for query.Next() {
		_, _, _, _, _, _, b := query.Get()
		b.Links = nil
		b.Branch = 0
	}
}

func (s *Store) sortByID(es []ecs.Entity) {
	slices.SortFunc(es, func(a, b ecs.Entity) int {
		return cmp.Compare(s.idOf(a), s.idOf(b))
	})
}

func (s *Store) idOf(e ecs.Entity) uint32 {
	a, _, _, _, _, _, _ := s.mapper.Get(e)
	return a.ID
}
