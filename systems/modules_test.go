package systems

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/swarmpaint/agents"
	"github.com/pthm-cable/swarmpaint/components"
	"github.com/pthm-cable/swarmpaint/config"
	"github.com/pthm-cable/swarmpaint/obstacles"
)

// quietSettings returns defaults with every force module off.
func quietSettings() config.Settings {
	s := config.Default().Settings
	s.Canvas = config.CanvasSettings{Width: 500, Height: 400}
	s.Motion.Speed = 1
	s.Motion.PaintMode = false
	s.Motion.ActiveDuration = 0
	s.Flocking.Enabled = false
	s.Wander.Enabled = false
	s.External.Enabled = false
	s.Avoidance.Enabled = false
	s.Magnetism.Enabled = false
	s.Aggregation.Enabled = false
	s.DLA.Enabled = false
	s.ColorField.ForceEnabled = false
	s.ColorField.DisplacementEnabled = false
	return s
}

// frameFor builds a frame over the given agents. Entities come from a
// throwaway store so Steering and Bond pointers are real.
func frameFor(t *testing.T, s *config.Settings, pos, vel []r2.Vec) (*Frame, *agents.Store) {
	t.Helper()
	store := agents.NewStore(nil)
	for i, p := range pos {
		e, _ := store.Create(p, agents.Colors{}, false)
		v, _ := store.Get(e)
		if i < len(vel) {
			*v.Vel = components.Velocity(vel[i])
		}
	}
	f := &Frame{Tick: 1, Settings: s, Rng: rand.New(rand.NewSource(1))}
	f.build(store, store.Entities(nil))
	return f, store
}

func TestExternalForce(t *testing.T) {
	s := quietSettings()
	s.External = config.ExternalSettings{Enabled: true, Angle: 90, Strength: 0.5}
	f, _ := frameFor(t, &s, []r2.Vec{{X: 10, Y: 10}}, nil)
	a := &f.Agents[0]

	var ext External
	ext.Ensure(a.Steering, &s, f.Rng)
	got := ext.Calculate(a, f)
	if !vecNear(got, r2.Vec{X: 0, Y: 0.5}, 1e-12) {
		t.Errorf("Calculate = %v, want (0, 0.5)", got)
	}
}

func TestExternalOffsetDrawnOnce(t *testing.T) {
	s := quietSettings()
	s.External = config.ExternalSettings{Enabled: true, Angle: 0, Strength: 1, RandomRange: 30}
	f, _ := frameFor(t, &s, []r2.Vec{{X: 10, Y: 10}}, nil)
	a := &f.Agents[0]

	var ext External
	ext.Ensure(a.Steering, &s, f.Rng)
	first := a.Steering.ExternalOffset
	for i := 0; i < 5; i++ {
		ext.Ensure(a.Steering, &s, f.Rng)
	}
	if a.Steering.ExternalOffset != first {
		t.Error("Ensure redrew the offset")
	}
	if math.Abs(first) > config.Radians(30) {
		t.Errorf("offset %v outside ±30°", first)
	}
	got := ext.Calculate(a, f)
	if math.Abs(r2.Norm(got)-1) > 1e-12 {
		t.Errorf("|force| = %v, want strength 1", r2.Norm(got))
	}
}

func TestWanderReturnsUnitVector(t *testing.T) {
	s := quietSettings()
	s.Wander = config.WanderSettings{Enabled: true, Strength: 1, Speed: 0.3, Radius: 8, Distance: 16}
	f, _ := frameFor(t, &s, []r2.Vec{{X: 10, Y: 10}}, []r2.Vec{{X: 1}})
	a := &f.Agents[0]

	var w Wander
	w.Ensure(a.Steering, &s, f.Rng)
	for i := 0; i < 20; i++ {
		before := a.Steering.WanderAngle
		got := w.Calculate(a, f)
		if math.Abs(r2.Norm(got)-1) > 1e-9 {
			t.Fatalf("|wander| = %v, want 1", r2.Norm(got))
		}
		// Radius < distance keeps the target ahead of the agent.
		if got.X <= 0 {
			t.Errorf("wander target behind the agent: %v", got)
		}
		if step := math.Abs(normalizeAngle(a.Steering.WanderAngle - before)); step > s.Wander.Speed+1e-12 {
			t.Errorf("wander angle moved %v, limit %v", step, s.Wander.Speed)
		}
	}
}

func TestFlockingSubForces(t *testing.T) {
	s := quietSettings()
	s.Flocking = config.FlockingSettings{
		Enabled: true, Separation: 1, Cohesion: 1, Alignment: 1,
		SeparationDistance: 10, CohesionDistance: 50, AlignmentDistance: 50, SensorAngle: 180,
	}
	pos := []r2.Vec{{X: 100, Y: 100}, {X: 105, Y: 100}, {X: 130, Y: 100}}
	vel := []r2.Vec{{X: 1}, {Y: 1}, {Y: 1}}
	f, _ := frameFor(t, &s, pos, vel)

	sep, coh, ali := NewFlocking().Compute(&f.Agents[0], f)
	if !vecNear(sep, r2.Vec{X: -1}, 1e-9) {
		t.Errorf("separation = %v, want (-1, 0)", sep)
	}
	if !vecNear(coh, r2.Vec{X: 1}, 1e-9) {
		t.Errorf("cohesion = %v, want (1, 0)", coh)
	}
	if !vecNear(ali, r2.Vec{Y: 1}, 1e-9) {
		t.Errorf("alignment = %v, want (0, 1)", ali)
	}
}

func TestFlockingIgnoresFrozenAndConeExcluded(t *testing.T) {
	s := quietSettings()
	s.Flocking = config.FlockingSettings{
		Enabled: true, Separation: 1, Cohesion: 1, Alignment: 1,
		SeparationDistance: 20, CohesionDistance: 20, AlignmentDistance: 20, SensorAngle: 90,
	}
	pos := []r2.Vec{{X: 100, Y: 100}, {X: 90, Y: 100}, {X: 110, Y: 100}}
	vel := []r2.Vec{{X: 1}, {Y: 1}, {Y: 1}}
	f, _ := frameFor(t, &s, pos, vel)
	// The agent behind is outside the forward cone; the one ahead is frozen.
	f.Agents[2].State = components.StateFrozen

	sep, coh, ali := NewFlocking().Compute(&f.Agents[0], f)
	if sep != (r2.Vec{}) || coh != (r2.Vec{}) || ali != (r2.Vec{}) {
		t.Errorf("expected no influence, got %v %v %v", sep, coh, ali)
	}
}

func TestAvoidance(t *testing.T) {
	reg := obstacles.NewRegistry(obstacles.Options{MinPoints: 3})
	reg.AddRectangle(r2.Vec{X: 100, Y: 100}, r2.Vec{X: 40, Y: 40})
	s := quietSettings()
	s.Avoidance = config.AvoidanceSettings{Enabled: true, Distance: 10, Strength: 1, PushMultiplier: 0.5, MaxForce: 100}

	tests := []struct {
		name string
		p    r2.Vec
		want r2.Vec
	}{
		{"far away", r2.Vec{X: 300, Y: 300}, r2.Vec{}},
		{"outside in range", r2.Vec{X: 125, Y: 100}, r2.Vec{X: 0.25}},
		{"inside", r2.Vec{X: 116, Y: 100}, r2.Vec{X: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, _ := frameFor(t, &s, []r2.Vec{tt.p}, nil)
			f.Obstacles = reg.AllClosedRegions()
			got := Avoidance{}.Calculate(&f.Agents[0], f)
			if !vecNear(got, tt.want, 1e-9) {
				t.Errorf("Calculate(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}

	s.Avoidance.MaxForce = 1
	f, _ := frameFor(t, &s, []r2.Vec{{X: 100, Y: 100}}, nil)
	f.Obstacles = reg.AllClosedRegions()
	if got := r2.Norm(Avoidance{}.Calculate(&f.Agents[0], f)); got > 1+1e-9 {
		t.Errorf("|avoidance| = %v exceeds max_force 1", got)
	}
}

func TestMagnetismTurnLimit(t *testing.T) {
	s := quietSettings()
	s.Magnetism = config.MagnetismSettings{Enabled: true, Strength: 1, Distance: 100, FieldAngle: 90, TurnRate: 10}
	// Neighbor straight behind the moving agent.
	f, _ := frameFor(t, &s, []r2.Vec{{X: 100, Y: 100}, {X: 50, Y: 100}}, []r2.Vec{{X: 1}})

	got := Magnetism{}.Calculate(&f.Agents[0], f)
	if isZero(got) {
		t.Fatal("expected attraction")
	}
	turn := math.Abs(heading(got))
	if turn > config.Radians(10)+1e-9 {
		t.Errorf("turned %v rad, limit %v", turn, config.Radians(10))
	}
	if want := 0.5; math.Abs(r2.Norm(got)-want) > 1e-9 {
		t.Errorf("|force| = %v, want falloff %v", r2.Norm(got), want)
	}

	// Nothing in range.
	f, _ = frameFor(t, &s, []r2.Vec{{X: 100, Y: 100}, {X: 300, Y: 300}}, nil)
	if got := (Magnetism{}).Calculate(&f.Agents[0], f); !isZero(got) {
		t.Errorf("out of range = %v, want zero", got)
	}
}

type constSampler float64

func (c constSampler) Brightness(x, y float64) (float64, bool) {
	if x < 0 || y < 0 {
		return 0, false
	}
	return float64(c), true
}

func TestColorField(t *testing.T) {
	s := quietSettings()
	s.ColorField = config.ColorFieldSettings{
		ForceEnabled: true, ForceStrength: 2,
		DisplacementEnabled: true, DisplacementStrength: 0.5,
		MinAngle: 0, MaxAngle: 180, SampleDistance: 4,
	}
	f, _ := frameFor(t, &s, []r2.Vec{{X: 10, Y: 10}}, []r2.Vec{{X: 1}})
	a := &f.Agents[0]
	var cf ColorField

	if got := cf.Calculate(a, f); !isZero(got) {
		t.Errorf("no background = %v, want zero", got)
	}

	f.Background = constSampler(0.5)
	if got := cf.Calculate(a, f); !vecNear(got, r2.Vec{Y: 2}, 1e-9) {
		t.Errorf("force = %v, want (0, 2)", got)
	}
	if got := cf.Displacement(a, f); !vecNear(got, r2.Vec{Y: 0.5}, 1e-9) {
		t.Errorf("displacement = %v, want (0, 0.5)", got)
	}

	// The sample point lands out of bounds.
	a.Pos = r2.Vec{X: -10, Y: 10}
	if got := cf.Calculate(a, f); !isZero(got) {
		t.Errorf("out of bounds = %v, want zero", got)
	}
}
