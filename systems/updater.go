package systems

import (
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/swarmpaint/agents"
	"github.com/pthm-cable/swarmpaint/background"
	"github.com/pthm-cable/swarmpaint/components"
	"github.com/pthm-cable/swarmpaint/config"
	"github.com/pthm-cable/swarmpaint/obstacles"
)

// TickStats counts what happened during one tick.
type TickStats struct {
	Moved       int
	Wrapped     int
	Bounced     int
	Stopped     int
	Exited      int
	Frozen      int
	Reactivated int
	Stuck       int
	SeedsAdded  int
	Neutral     int // agents whose state went non-finite and was reset
}

// TickInput is everything a tick reads besides the store.
type TickInput struct {
	Tick       uint64
	Now        float64
	Settings   config.Settings
	Background background.Sampler
	Rng        *rand.Rand
	Colors     func() agents.Colors
	// Phase, when set, is called as each tick phase starts.
	Phase func(name string)
}

// Tick phases reported through TickInput.Phase.
const (
	PhasePrepare  = "prepare"
	PhaseSnapshot = "snapshot"
	PhaseAgents   = "agents"
	PhaseCleanup  = "cleanup"
)

func (in *TickInput) phase(name string) {
	if in.Phase != nil {
		in.Phase(name)
	}
}

// Updater runs the per-agent state machine once per tick.
type Updater struct {
	store     *agents.Store
	obstacles *obstacles.Registry

	flocking    *Flocking
	aggregation *Aggregation
	dla         *DLA
	wander      Wander
	external    External
	magnetism   Magnetism
	avoidance   Avoidance
	colorField  ColorField

	blended []Force
	seeders []seeded

	frame    Frame
	entities []ecs.Entity
	exited   []ecs.Entity
	contribs []Contribution
}

type seeded struct {
	enabled func(s *config.Settings) bool
	seeder  Seeder
}

// NewUpdater wires the force modules to the store and obstacle registry.
func NewUpdater(store *agents.Store, reg *obstacles.Registry) *Updater {
	u := &Updater{
		store:       store,
		obstacles:   reg,
		flocking:    NewFlocking(),
		aggregation: NewAggregation(store),
		dla:         NewDLA(store),
	}
	u.blended = append(u.blended, u.flocking.Forces()...)
	u.blended = append(u.blended, u.wander, u.external, u.magnetism, u.aggregation, u.colorField)
	u.seeders = []seeded{
		{u.wander.Enabled, u.wander},
		{u.external.Enabled, u.external},
		{func(s *config.Settings) bool { return s.DLA.Enabled }, u.dla},
	}
	return u
}

// Aggregation returns the aggregation module, for reading its lines.
func (u *Updater) Aggregation() *Aggregation {
	return u.aggregation
}

// DLA returns the DLA module, for reading its lines.
func (u *Updater) DLA() *DLA {
	return u.dla
}

// Tick advances every agent by one frame.
func (u *Updater) Tick(in TickInput) TickStats {
	var st TickStats
	s := &in.Settings
	u.store.SetTime(in.Now)

	in.phase(PhasePrepare)
	u.aggregation.Prepare(s)
	u.dla.Prepare(s)
	u.applyPaintMode(s, in.Rng, &st)
	st.SeedsAdded = u.dla.MaintainSeeds(s, in.Rng, in.Colors)

	in.phase(PhaseSnapshot)
	// Snapshot frame N-1. No structural change happens until the loop ends.
	u.entities = u.store.Entities(u.entities[:0])
	f := &u.frame
	f.Tick, f.Now, f.Settings, f.Background, f.Rng = in.Tick, in.Now, s, in.Background, in.Rng
	f.Obstacles = nil
	if u.obstacles != nil {
		f.Obstacles = u.obstacles.AllClosedRegions()
	}
	f.build(u.store, u.entities)

	in.phase(PhaseAgents)
	u.exited = u.exited[:0]
	for i := range f.Agents {
		u.updateAgent(&f.Agents[i], f, &st)
	}

	in.phase(PhaseCleanup)
	for _, e := range u.exited {
		u.store.Remove(e)
	}
	u.aggregation.Sync()
	u.dla.Sync()
	return st
}

// applyPaintMode freezes agents whose active time ran out while painting and
// thaws them, clearing trails, once painting stops.
func (u *Updater) applyPaintMode(s *config.Settings, rng *rand.Rand, st *TickStats) {
	now := u.store.Now()
	speed := s.Motion.Speed
	if s.Motion.PaintMode {
		if s.Motion.ActiveDuration <= 0 {
			return
		}
		u.store.ForEach(func(v agents.View) {
			if v.Agent.State == components.StateActive && now-v.Agent.BornAt >= s.Motion.ActiveDuration {
				v.Agent.State = components.StateFrozen
				*v.Vel = components.Velocity{}
				st.Frozen++
			}
		})
		return
	}
	u.store.ForEach(func(v agents.View) {
		if len(v.Trail.Segments) > 0 {
			v.Trail.Reset()
		}
		v.Trail.Hidden = true
		if v.Agent.State == components.StateFrozen {
			v.Agent.State = components.StateActive
			v.Agent.BornAt = now
			*v.Vel = components.Velocity(r2.Scale(speed*0.5, fromAngle(rng.Float64()*2*math.Pi)))
			st.Reactivated++
		}
	})
}

func (u *Updater) updateAgent(a *AgentRef, f *Frame, st *TickStats) {
	v, ok := u.store.Get(a.Entity)
	if !ok || v.Agent.State != components.StateActive {
		return
	}
	s := f.Settings

	for _, sd := range u.seeders {
		if sd.enabled(s) {
			sd.seeder.Ensure(v.Steering, s, f.Rng)
		}
	}

	if s.DLA.Enabled && u.dla.TryStick(a, v, f) {
		st.Stuck++
		return
	}

	m := v.Motion
	if m.Reflected && f.Now-m.ReflectedAt > s.Motion.ReflectHold {
		m.Reflected = false
	}
	coasting := f.Now < m.BounceUntil

	u.contribs = u.contribs[:0]
	for _, force := range u.blended {
		if !force.Enabled(s) {
			continue
		}
		// Only the color field keeps steering during a bounce cooldown.
		if coasting && force.Name() != u.colorField.Name() {
			continue
		}
		u.contribs = append(u.contribs, Contribution{
			Force:  force.Calculate(a, f),
			Weight: force.Weight(s),
		})
	}
	net := Blend(u.contribs, a.Vel, m.Reflected, s.Motion.Speed)
	if u.avoidance.Enabled(s) {
		net = r2.Add(net, u.avoidance.Calculate(a, f))
	}

	// Aggregation may have pinned this agent while connecting.
	if v.Agent.State != components.StateActive {
		*v.Vel = components.Velocity{}
		st.Stuck++
		return
	}

	prevPos, prevVel := r2.Vec(*v.Pos), r2.Vec(*v.Vel)
	vel := prevVel
	if m.Reflected {
		if !isZero(net) {
			vel = clampLength(r2.Scale(m.ReflectedSpeed, unit(r2.Scale(-1, net))), s.Motion.Speed)
		}
	} else {
		vel = clampLength(r2.Add(vel, net), s.Motion.Speed)
	}

	pos := r2.Add(prevPos, vel)
	pos = r2.Add(pos, u.colorField.Displacement(a, f))
	if !finite(pos) || !finite(vel) {
		*v.Pos = components.Position(prevPos)
		*v.Vel = components.Velocity{}
		st.Neutral++
		return
	}
	*v.Pos, *v.Vel = components.Position(pos), components.Velocity(vel)
	st.Moved++

	bounds := Bounds{Width: s.Canvas.Width, Height: s.Canvas.Height}
	result := ApplyBoundary(s.Motion.Boundary, bounds, v.Pos, v.Vel)
	switch result {
	case BoundaryWrapped:
		st.Wrapped++
	case BoundaryReflected:
		m.Reflected = true
		m.ReflectedSpeed = r2.Norm(r2.Vec(*v.Vel))
		m.ReflectedAt = f.Now
		m.BounceUntil = f.Now + s.Motion.BounceCooldown
		st.Bounced++
	case BoundaryStopped:
		v.Agent.State = components.StateStopped
		st.Stopped++
	case BoundaryExited:
		u.exited = append(u.exited, a.Entity)
		st.Exited++
		return
	}

	if s.Motion.PaintMode && v.Agent.State == components.StateActive {
		GrowTrail(v.Trail, r2.Vec(*v.Pos), result == BoundaryWrapped, &s.Trail)
	}
}
