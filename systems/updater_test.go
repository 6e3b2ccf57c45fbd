package systems

import (
	"math/rand"
	"testing"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/swarmpaint/agents"
	"github.com/pthm-cable/swarmpaint/components"
	"github.com/pthm-cable/swarmpaint/config"
	"github.com/pthm-cable/swarmpaint/obstacles"
)

type harness struct {
	store   *agents.Store
	updater *Updater
	rng     *rand.Rand
	tick    uint64
}

func newHarness() *harness {
	reg := obstacles.NewRegistry(obstacles.Options{MinPoints: 3})
	store := agents.NewStore(reg)
	return &harness{store: store, updater: NewUpdater(store, reg), rng: rand.New(rand.NewSource(7))}
}

func (h *harness) spawn(t *testing.T, p, v r2.Vec) ecs.Entity {
	t.Helper()
	e, ok := h.store.Create(p, agents.Colors{}, false)
	if !ok {
		t.Fatalf("Create(%v) failed", p)
	}
	view, _ := h.store.Get(e)
	*view.Vel = components.Velocity(v)
	return e
}

func (h *harness) step(s config.Settings) TickStats {
	h.tick++
	return h.updater.Tick(TickInput{Tick: h.tick, Now: float64(h.tick) * s.TickSeconds(), Settings: s, Rng: h.rng})
}

func (h *harness) view(t *testing.T, e ecs.Entity) agents.View {
	t.Helper()
	v, ok := h.store.Get(e)
	if !ok {
		t.Fatal("agent vanished")
	}
	return v
}

func TestAggregationConnectsPair(t *testing.T) {
	h := newHarness()
	s := quietSettings()
	s.Aggregation.Enabled = true
	s.Aggregation.Distance = 12
	a := h.spawn(t, r2.Vec{X: 100, Y: 100}, r2.Vec{})
	b := h.spawn(t, r2.Vec{X: 108, Y: 100}, r2.Vec{})

	h.step(s)

	va, vb := h.view(t, a), h.view(t, b)
	if !va.Bond.Linked(b) || !vb.Bond.Linked(a) {
		t.Fatalf("links not mutual: a=%v b=%v", va.Bond.Links, vb.Bond.Links)
	}
	if va.Bond.Branch == 0 || va.Bond.Branch != vb.Bond.Branch {
		t.Errorf("branches = %d, %d; want equal and non-zero", va.Bond.Branch, vb.Bond.Branch)
	}
	if n := h.updater.Aggregation().LineCount(); n != 1 {
		t.Errorf("lines = %d, want 1", n)
	}

	h.step(s)
	if n := h.updater.Aggregation().LineCount(); n != 1 {
		t.Errorf("lines after second tick = %d, want 1", n)
	}

	// Removing one side tears down the link and its line.
	h.store.Remove(a)
	vb = h.view(t, b)
	if vb.Bond.Linked(a) || len(vb.Bond.Links) != 0 || vb.Bond.Branch != 0 {
		t.Errorf("survivor keeps bond state: %+v", *vb.Bond)
	}
	if n := h.updater.Aggregation().LineCount(); n != 0 {
		t.Errorf("lines after removal = %d, want 0", n)
	}
}

func TestLineSetForgetsAgentsWithoutLines(t *testing.T) {
	w := ecs.NewWorld()
	a, b, c := w.NewEntity(), w.NewEntity(), w.NewEntity()
	s := newLineSet()
	s.add(a, b, 1, 2, r2.Vec{}, r2.Vec{}, 1)
	s.add(b, c, 2, 3, r2.Vec{}, r2.Vec{}, 1)
	if s.add(b, a, 2, 1, r2.Vec{}, r2.Vec{}, 1) {
		t.Error("duplicate pair accepted")
	}

	s.remove(makePairKey(1, 2))
	if _, ok := s.ids[a]; ok {
		t.Error("a kept an id entry with no lines left")
	}
	if _, ok := s.ids[b]; !ok {
		t.Error("b lost its id entry while still linked to c")
	}

	s.dropAgent(c)
	if len(s.lines) != 0 || len(s.ids) != 0 || len(s.refs) != 0 {
		t.Errorf("after dropping c: lines=%d ids=%d refs=%d, want all empty", len(s.lines), len(s.ids), len(s.refs))
	}
}

func TestAggregationChurnLeavesNoStaleIDs(t *testing.T) {
	h := newHarness()
	s := quietSettings()
	s.Aggregation.Enabled = true
	s.Aggregation.Distance = 12
	keep := h.spawn(t, r2.Vec{X: 300, Y: 300}, r2.Vec{})
	for i := 0; i < 20; i++ {
		a := h.spawn(t, r2.Vec{X: 100, Y: 100}, r2.Vec{})
		b := h.spawn(t, r2.Vec{X: 108, Y: 100}, r2.Vec{})
		h.step(s)
		if n := h.updater.Aggregation().LineCount(); n != 1 {
			t.Fatalf("round %d: lines = %d, want 1", i, n)
		}
		h.store.Remove(a)
		h.store.Remove(b)
		h.step(s)
	}
	agg := h.updater.Aggregation()
	if agg.LineCount() != 0 || len(agg.lines.ids) != 0 || len(agg.lines.refs) != 0 {
		t.Errorf("lines=%d ids=%d refs=%d after churn, want all zero", agg.LineCount(), len(agg.lines.ids), len(agg.lines.refs))
	}
	if len(h.view(t, keep).Bond.Links) != 0 {
		t.Error("distant agent picked up links")
	}
}

func TestAggregationToggleOffClears(t *testing.T) {
	h := newHarness()
	s := quietSettings()
	s.Aggregation.Enabled = true
	s.Aggregation.Distance = 12
	a := h.spawn(t, r2.Vec{X: 100, Y: 100}, r2.Vec{})
	h.spawn(t, r2.Vec{X: 105, Y: 100}, r2.Vec{})
	h.step(s)

	s.Aggregation.Enabled = false
	h.step(s)
	if len(h.view(t, a).Bond.Links) != 0 {
		t.Error("links survived toggling aggregation off")
	}
	if n := h.updater.Aggregation().LineCount(); n != 0 {
		t.Errorf("lines = %d, want 0", n)
	}
}

func TestAggregationMergesBranches(t *testing.T) {
	h := newHarness()
	s := quietSettings()
	s.Aggregation.Enabled = true
	s.Aggregation.Distance = 6
	s.Aggregation.MaxLinks = 0
	// Two pairs, then a bridge agent touching both.
	e := []ecs.Entity{
		h.spawn(t, r2.Vec{X: 100, Y: 100}, r2.Vec{}),
		h.spawn(t, r2.Vec{X: 105, Y: 100}, r2.Vec{}),
		h.spawn(t, r2.Vec{X: 115, Y: 100}, r2.Vec{}),
		h.spawn(t, r2.Vec{X: 120, Y: 100}, r2.Vec{}),
	}
	h.step(s)
	if h.view(t, e[0]).Bond.Branch == h.view(t, e[3]).Bond.Branch {
		t.Fatal("separate pairs share a branch")
	}

	h.spawn(t, r2.Vec{X: 110, Y: 100}, r2.Vec{})
	h.step(s)
	want := h.view(t, e[0]).Bond.Branch
	for _, x := range e {
		if got := h.view(t, x).Bond.Branch; got != want {
			t.Errorf("branch = %d, want merged %d", got, want)
		}
	}
	if n := h.updater.Aggregation().Branches(); n != 1 {
		t.Errorf("branches = %d, want 1", n)
	}
}

func TestReflectBoundary(t *testing.T) {
	h := newHarness()
	s := quietSettings()
	s.Motion.Boundary = config.BoundaryReflect
	s.Motion.BounceCooldown = 0
	s.Motion.ReflectHold = 10
	e := h.spawn(t, r2.Vec{X: 499.5, Y: 200}, r2.Vec{X: 1})

	stats := h.step(s)
	if stats.Bounced != 1 {
		t.Fatalf("Bounced = %d, want 1", stats.Bounced)
	}
	v := h.view(t, e)
	if v.Pos.X != 500 || v.Vel.X != -1 {
		t.Errorf("pos, vel = %v, %v; want x=500, vx=-1", *v.Pos, *v.Vel)
	}
	if !v.Motion.Reflected || v.Motion.ReflectedSpeed != 1 {
		t.Errorf("motion = %+v", *v.Motion)
	}

	// A wind pushing back into the wall is damped and then negated.
	s.External = config.ExternalSettings{Enabled: true, Angle: 0, Strength: 1}
	h.step(s)
	v = h.view(t, e)
	if !vecNear(r2.Vec(*v.Vel), r2.Vec{X: -1}, 1e-9) {
		t.Errorf("reflected velocity = %v, want (-1, 0)", *v.Vel)
	}
}

func TestBounceCooldownCoasts(t *testing.T) {
	h := newHarness()
	s := quietSettings()
	s.Motion.Boundary = config.BoundaryReflect
	s.Motion.BounceCooldown = 1
	s.Motion.ReflectHold = 0
	e := h.spawn(t, r2.Vec{X: 499.8, Y: 200}, r2.Vec{X: 0.5})
	h.step(s)

	s.External = config.ExternalSettings{Enabled: true, Angle: 90, Strength: 1}
	h.step(s)
	if v := h.view(t, e); v.Vel.Y != 0 {
		t.Errorf("steering applied during cooldown: vel = %v", *v.Vel)
	}
}

func TestStopAndTravelOff(t *testing.T) {
	t.Run("stop", func(t *testing.T) {
		h := newHarness()
		s := quietSettings()
		s.Motion.Boundary = config.BoundaryStop
		e := h.spawn(t, r2.Vec{X: 5, Y: 0.5}, r2.Vec{Y: -1})
		h.step(s)
		v := h.view(t, e)
		if v.Agent.State != components.StateStopped || *v.Vel != (components.Velocity{}) || v.Pos.Y != 0 {
			t.Errorf("state %v pos %v vel %v", v.Agent.State, *v.Pos, *v.Vel)
		}
		h.step(s)
		if v := h.view(t, e); *v.Pos != (components.Position{X: 5, Y: 0}) {
			t.Errorf("stopped agent moved to %v", *v.Pos)
		}
	})
	t.Run("travel off", func(t *testing.T) {
		h := newHarness()
		s := quietSettings()
		s.Motion.Boundary = config.BoundaryTravelOff
		s.Aggregation.Enabled = true
		s.Aggregation.Distance = 5
		leaver := h.spawn(t, r2.Vec{X: 0.5, Y: 100}, r2.Vec{X: -1})
		stayer := h.spawn(t, r2.Vec{X: 3, Y: 100}, r2.Vec{})
		h.store.Connect(leaver, stayer)

		stats := h.step(s)
		if stats.Exited != 1 || h.store.Alive(leaver) {
			t.Fatalf("Exited = %d, leaver alive = %v", stats.Exited, h.store.Alive(leaver))
		}
		if v := h.view(t, stayer); v.Bond.Linked(leaver) {
			t.Error("dangling link to removed agent")
		}
	})
}

func TestPaintModeFreezeAndThaw(t *testing.T) {
	h := newHarness()
	s := quietSettings()
	s.Motion.PaintMode = true
	s.Motion.ActiveDuration = 0.05
	e := h.spawn(t, r2.Vec{X: 100, Y: 100}, r2.Vec{X: 0.5})

	for i := 0; i < 5; i++ {
		h.step(s)
	}
	v := h.view(t, e)
	if v.Agent.State != components.StateFrozen || *v.Vel != (components.Velocity{}) {
		t.Fatalf("state = %v, vel = %v; want frozen and still", v.Agent.State, *v.Vel)
	}
	if v.Trail.Len() == 0 {
		t.Error("trail should persist while frozen")
	}

	s.Motion.PaintMode = false
	stats := h.step(s)
	v = h.view(t, e)
	if stats.Reactivated != 1 || v.Agent.State != components.StateActive {
		t.Errorf("Reactivated = %d, state = %v", stats.Reactivated, v.Agent.State)
	}
	if v.Trail.Len() != 0 || !v.Trail.Hidden {
		t.Error("trail should be cleared and hidden when painting stops")
	}
}

func TestDLASeedsAndSticking(t *testing.T) {
	h := newHarness()
	s := quietSettings()
	s.DLA = config.DLASettings{Enabled: true, SeedCount: 3, StickDistance: 6, StickProbability: 1, DrawLines: true}

	stats := h.step(s)
	if stats.SeedsAdded != 3 {
		t.Fatalf("SeedsAdded = %d, want 3", stats.SeedsAdded)
	}
	if got := h.store.CountByState()[components.StateSeed]; got != 3 {
		t.Fatalf("seeds = %d, want 3", got)
	}

	var seedPos r2.Vec
	h.store.ForEach(func(v agents.View) {
		if v.Agent.State == components.StateSeed {
			seedPos = r2.Vec(*v.Pos)
		}
	})
	// Place a walker right next to a seed. Stick factor >= 0.5 with p=1
	// sticks on the first or second attempt for this seed.
	walker := h.spawn(t, r2.Add(seedPos, r2.Vec{X: 2}), r2.Vec{})
	for i := 0; i < 20 && h.view(t, walker).Agent.State == components.StateActive; i++ {
		h.step(s)
	}
	v := h.view(t, walker)
	if v.Agent.State != components.StateStuck || *v.Vel != (components.Velocity{}) {
		t.Fatalf("walker state = %v, vel = %v", v.Agent.State, *v.Vel)
	}
	if n := len(h.updater.DLA().Lines()); n != 1 {
		t.Errorf("dla lines = %d, want 1", n)
	}

	// The pool stays topped up without adding more seeds.
	if stats := h.step(s); stats.SeedsAdded != 0 {
		t.Errorf("SeedsAdded = %d on a full pool", stats.SeedsAdded)
	}
}

func TestTickDeterminism(t *testing.T) {
	run := func() []r2.Vec {
		h := newHarness()
		s := quietSettings()
		s.Flocking.Enabled = true
		s.Wander.Enabled = true
		s.External = config.ExternalSettings{Enabled: true, Angle: 45, Strength: 0.3, RandomRange: 20}
		init := rand.New(rand.NewSource(3))
		for i := 0; i < 30; i++ {
			h.spawn(t, r2.Vec{X: init.Float64() * 500, Y: init.Float64() * 400}, r2.Vec{X: init.Float64() - 0.5, Y: init.Float64() - 0.5})
		}
		for i := 0; i < 20; i++ {
			h.step(s)
		}
		var out []r2.Vec
		for _, e := range h.store.Entities(nil) {
			v := h.view(t, e)
			out = append(out, r2.Vec(*v.Pos), r2.Vec(*v.Vel))
		}
		return out
	}

	a, b := run(), run()
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("run diverged at %d: %v vs %v", i, a[i], b[i])
		}
	}
}
