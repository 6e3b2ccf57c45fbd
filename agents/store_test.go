package agents

import (
	"math/rand"
	"testing"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/swarmpaint/components"
	"github.com/pthm-cable/swarmpaint/obstacles"
)

func TestCreateRejectsObstacleInterior(t *testing.T) {
	reg := obstacles.NewRegistry(obstacles.Options{MinPoints: 3})
	reg.AddRectangle(r2.Vec{X: 100, Y: 100}, r2.Vec{X: 40, Y: 40})
	s := NewStore(reg)

	tests := []struct {
		name string
		p    r2.Vec
		want bool
	}{
		{"inside", r2.Vec{X: 100, Y: 100}, false},
		{"inside near edge", r2.Vec{X: 119, Y: 100}, false},
		{"one unit outside", r2.Vec{X: 121, Y: 100}, true},
		{"far outside", r2.Vec{X: 10, Y: 10}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := s.Create(tt.p, Colors{}, false)
			if ok != tt.want {
				t.Errorf("Create(%v) ok = %v, want %v", tt.p, ok, tt.want)
			}
		})
	}
	if got := s.Count(); got != 2 {
		t.Errorf("Count = %d, want 2", got)
	}
}

func TestCreateAssignsUniqueIDs(t *testing.T) {
	s := NewStore(nil)
	s.SetTime(3)
	seen := map[uint32]bool{}
	for i := 0; i < 20; i++ {
		e, _ := s.Create(r2.Vec{X: float64(i)}, Colors{}, false)
		v, _ := s.Get(e)
		if seen[v.Agent.ID] {
			t.Fatalf("duplicate id %d", v.Agent.ID)
		}
		seen[v.Agent.ID] = true
		if v.Agent.BornAt != 3 {
			t.Errorf("BornAt = %v, want 3", v.Agent.BornAt)
		}
	}

	seed, _ := s.Create(r2.Vec{}, Colors{}, true)
	v, _ := s.Get(seed)
	if v.Agent.State != components.StateSeed {
		t.Errorf("seed state = %v", v.Agent.State)
	}
}

func TestConnectionsStaySymmetric(t *testing.T) {
	s := NewStore(nil)
	a, _ := s.Create(r2.Vec{X: 0}, Colors{}, false)
	b, _ := s.Create(r2.Vec{X: 5}, Colors{}, false)
	c, _ := s.Create(r2.Vec{X: 10}, Colors{}, false)

	if !s.Connect(a, b) || !s.Connect(b, c) {
		t.Fatal("Connect failed")
	}
	if s.Connect(b, a) {
		t.Error("duplicate Connect should fail")
	}
	if s.Connect(a, a) {
		t.Error("self Connect should fail")
	}
	assertSymmetric(t, s)

	var removed []ecs.Entity
	s.OnRemove(func(e ecs.Entity, _ *components.Agent) { removed = append(removed, e) })

	s.Remove(b)
	assertSymmetric(t, s)
	for _, e := range []ecs.Entity{a, c} {
		v, _ := s.Get(e)
		if v.Bond.Linked(b) {
			t.Errorf("survivor still references removed agent")
		}
		if v.Bond.Branch != 0 {
			t.Errorf("agent with no links kept branch %d", v.Bond.Branch)
		}
	}
	if len(removed) != 1 || removed[0] != b {
		t.Errorf("OnRemove saw %v", removed)
	}
}

func assertSymmetric(t *testing.T, s *Store) {
	t.Helper()
	s.ForEach(func(v View) {
		for _, peer := range v.Bond.Links {
			pv, ok := s.Get(peer)
			if !ok {
				t.Errorf("agent %d links to dead handle", v.Agent.ID)
				continue
			}
			if !pv.Bond.Linked(v.Entity) {
				t.Errorf("link %d -> %d is not mirrored", v.Agent.ID, pv.Agent.ID)
			}
		}
	})
}

func TestRemoveNearAndAll(t *testing.T) {
	s := NewStore(nil)
	for i := 0; i < 10; i++ {
		s.Create(r2.Vec{X: float64(i * 10)}, Colors{}, false)
	}
	if got := s.RemoveNear(r2.Vec{X: 0}, 25); got != 3 {
		t.Errorf("RemoveNear removed %d, want 3", got)
	}
	if got := s.Count(); got != 7 {
		t.Errorf("Count = %d, want 7", got)
	}
	if got := s.RemoveAll(); got != 7 {
		t.Errorf("RemoveAll removed %d, want 7", got)
	}
	if s.Count() != 0 {
		t.Error("store not empty")
	}
}

func TestRemoveEndsLifetime(t *testing.T) {
	s := NewStore(nil)
	a, _ := s.Create(r2.Vec{X: 1}, Colors{}, false)
	b, _ := s.Create(r2.Vec{X: 2}, Colors{}, false)
	s.Connect(a, b)

	if !s.Remove(a) {
		t.Fatal("first Remove failed")
	}
	if s.Alive(a) {
		t.Error("removed agent still alive")
	}
	if _, ok := s.Get(a); ok {
		t.Error("Get found a removed agent")
	}
	if s.Remove(a) {
		t.Error("second Remove reported success")
	}
	vb, _ := s.Get(b)
	if len(vb.Bond.Links) != 0 {
		t.Errorf("survivor still links to removed agent: %v", vb.Bond.Links)
	}

	// Churn must not leave empty entities behind.
	used := s.world.Stats().Entities.Used
	for i := 0; i < 100; i++ {
		e, _ := s.Create(r2.Vec{X: float64(i)}, Colors{}, false)
		s.Remove(e)
	}
	if got := s.world.Stats().Entities.Used; got != used {
		t.Errorf("live entities = %d after churn, want %d", got, used)
	}
	if s.Count() != 1 {
		t.Errorf("Count = %d after churn, want 1", s.Count())
	}
}

func TestEntitiesOrderedByID(t *testing.T) {
	s := NewStore(nil)
	var es []ecs.Entity
	for i := 0; i < 8; i++ {
		e, _ := s.Create(r2.Vec{X: float64(i)}, Colors{}, false)
		es = append(es, e)
	}
	s.Remove(es[2])
	s.Remove(es[5])

	got := s.Entities(nil)
	var last uint32
	for _, e := range got {
		v, _ := s.Get(e)
		if v.Agent.ID <= last {
			t.Fatalf("entities not ordered: %d after %d", v.Agent.ID, last)
		}
		last = v.Agent.ID
	}
	if len(got) != 6 {
		t.Errorf("len = %d, want 6", len(got))
	}
}

func TestCountByState(t *testing.T) {
	s := NewStore(nil)
	s.Create(r2.Vec{}, Colors{}, false)
	s.Create(r2.Vec{}, Colors{}, true)
	e, _ := s.Create(r2.Vec{}, Colors{}, false)
	v, _ := s.Get(e)
	v.Agent.State = components.StateFrozen

	counts := s.CountByState()
	if counts[components.StateActive] != 1 || counts[components.StateSeed] != 1 || counts[components.StateFrozen] != 1 {
		t.Errorf("CountByState = %v", counts)
	}
}

func TestPalette(t *testing.T) {
	if _, err := NewPalette([]string{"#zzzzzz"}, ColorRandom); err == nil {
		t.Error("invalid hex accepted")
	}

	p, err := NewPalette([]string{"#ff0000", "#0000ff"}, ColorGradient)
	if err != nil {
		t.Fatal(err)
	}
	rng := rand.New(rand.NewSource(1))
	start := p.Pick(rng, 0)
	end := p.Pick(rng, 1)
	if start.Stroke.R != 255 || start.Stroke.B != 0 {
		t.Errorf("gradient start = %v, want red", start.Stroke)
	}
	if end.Stroke.B != 255 || end.Stroke.R != 0 {
		t.Errorf("gradient end = %v, want blue", end.Stroke)
	}
	if start.Stroke.A != 255 {
		t.Errorf("stroke alpha = %d", start.Stroke.A)
	}

	sw := p.Swatches()
	if len(sw) != 2 || sw[0] != start.Stroke || sw[1] != end.Stroke {
		t.Errorf("Swatches() = %v", sw)
	}
}
