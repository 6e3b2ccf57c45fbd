// Package config provides configuration loading and access for the simulation.
package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

//go:embed schema.json
var schemaJSON []byte

// Boundary policies.
const (
	BoundaryWrap      = "wrap-around"
	BoundaryReflect   = "reflect"
	BoundaryStop      = "stop"
	BoundaryTravelOff = "travel-off"
)

// Boundaries lists the boundary policies in display order.
var Boundaries = []string{BoundaryWrap, BoundaryReflect, BoundaryStop, BoundaryTravelOff}

// Background kinds.
const (
	BackgroundNone    = "none"
	BackgroundImage   = "image"
	BackgroundSimplex = "simplex"
	BackgroundPerlin  = "perlin"
)

// Config holds all configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Background BackgroundConfig `yaml:"background"`
	Obstacles  ObstacleConfig   `yaml:"obstacles"`
	Settings   Settings         `yaml:"settings"`
}

// ScreenConfig holds display settings for the interactive viewers.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// BackgroundConfig selects the brightness source used by the color field.
type BackgroundConfig struct {
	Kind      string  `yaml:"kind"`       // none, image, simplex, perlin
	ImagePath string  `yaml:"image_path"` // used when kind=image
	Scale     float64 `yaml:"scale"`      // noise frequency per canvas unit
	Seed      int64   `yaml:"seed"`
}

// ObstacleConfig holds interactive obstacle construction parameters.
type ObstacleConfig struct {
	MinPoints         int     `yaml:"min_points"`
	CloseDistance     float64 `yaml:"close_distance"`
	SmoothIterations  int     `yaml:"smooth_iterations"`
	SimplifyTolerance float64 `yaml:"simplify_tolerance"`
}

// Settings is the per-frame snapshot read by every force module.
// It is a plain value: copying it gives a tick its own immutable view.
type Settings struct {
	Canvas      CanvasSettings      `yaml:"canvas"`
	Motion      MotionSettings      `yaml:"motion"`
	Trail       TrailSettings       `yaml:"trail"`
	Spawn       SpawnSettings       `yaml:"spawn"`
	Flocking    FlockingSettings    `yaml:"flocking"`
	Wander      WanderSettings      `yaml:"wander"`
	External    ExternalSettings    `yaml:"external"`
	Avoidance   AvoidanceSettings   `yaml:"avoidance"`
	Magnetism   MagnetismSettings   `yaml:"magnetism"`
	Aggregation AggregationSettings `yaml:"aggregation"`
	DLA         DLASettings         `yaml:"dla"`
	ColorField  ColorFieldSettings  `yaml:"color_field"`
}

// CanvasSettings holds the simulated canvas bounds.
type CanvasSettings struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// MotionSettings holds integration and lifecycle parameters.
type MotionSettings struct {
	Speed          float64 `yaml:"speed"`           // global speed multiplier and velocity cap
	DT             float64 `yaml:"dt"`              // seconds per tick for timers
	PaintMode      bool    `yaml:"paint_mode"`      // trails drawn, timed freezing enabled
	ActiveDuration float64 `yaml:"active_duration"` // seconds before a painting agent freezes (0 = never)
	Boundary       string  `yaml:"boundary"`        // wrap-around, reflect, stop, travel-off
	BounceCooldown float64 `yaml:"bounce_cooldown"` // seconds of coasting after a reflection
	ReflectHold    float64 `yaml:"reflect_hold"`    // seconds the reflected state damps opposing forces
}

// TrailSettings controls trail growth.
type TrailSettings struct {
	SimplifyAfter     int     `yaml:"simplify_after"`     // points in a segment before simplification
	SimplifyTolerance float64 `yaml:"simplify_tolerance"` // Douglas-Peucker threshold
	MaxPoints         int     `yaml:"max_points"`         // total points kept per agent (0 = unlimited)
}

// SpawnSettings controls brush spawning.
type SpawnSettings struct {
	Count        int      `yaml:"count"`         // agents per brush dab
	BrushRadius  float64  `yaml:"brush_radius"`  // scatter radius around the pointer
	InitialSpeed float64  `yaml:"initial_speed"` // fraction of motion.speed for the random start velocity
	EraseRadius  float64  `yaml:"erase_radius"`
	Palette      []string `yaml:"palette"`    // hex colors
	ColorMode    string   `yaml:"color_mode"` // random, gradient
}

// FlockingSettings holds separation/cohesion/alignment weights and radii.
type FlockingSettings struct {
	Enabled            bool    `yaml:"enabled"`
	Separation         float64 `yaml:"separation"`
	Cohesion           float64 `yaml:"cohesion"`
	Alignment          float64 `yaml:"alignment"`
	SeparationDistance float64 `yaml:"separation_distance"`
	CohesionDistance   float64 `yaml:"cohesion_distance"`
	AlignmentDistance  float64 `yaml:"alignment_distance"`
	SensorAngle        float64 `yaml:"sensor_angle"` // half-angle in degrees
}

// WanderSettings holds wander steering parameters.
type WanderSettings struct {
	Enabled  bool    `yaml:"enabled"`
	Strength float64 `yaml:"strength"`
	Speed    float64 `yaml:"speed"`    // max wander angle change per frame (radians)
	Radius   float64 `yaml:"radius"`   // wander circle radius
	Distance float64 `yaml:"distance"` // wander circle distance ahead
}

// ExternalSettings holds the directional wind force.
type ExternalSettings struct {
	Enabled     bool    `yaml:"enabled"`
	Angle       float64 `yaml:"angle"` // degrees
	Strength    float64 `yaml:"strength"`
	RandomRange float64 `yaml:"random_range"` // per-agent deviation in degrees
}

// AvoidanceSettings holds obstacle avoidance parameters.
type AvoidanceSettings struct {
	Enabled        bool    `yaml:"enabled"`
	Distance       float64 `yaml:"distance"`
	Strength       float64 `yaml:"strength"`
	PushMultiplier float64 `yaml:"push_multiplier"`
	MaxForce       float64 `yaml:"max_force"`
}

// MagnetismSettings holds nearest-neighbor attraction parameters.
type MagnetismSettings struct {
	Enabled    bool    `yaml:"enabled"`
	Strength   float64 `yaml:"strength"`
	Distance   float64 `yaml:"distance"`
	FieldAngle float64 `yaml:"field_angle"` // degrees
	TurnRate   float64 `yaml:"turn_rate"`   // degrees per frame
}

// AggregationSettings holds branch-forming parameters.
type AggregationSettings struct {
	Enabled           bool    `yaml:"enabled"`
	Strength          float64 `yaml:"strength"`
	Distance          float64 `yaml:"distance"` // connect threshold
	Spacing           float64 `yaml:"spacing"`  // spring rest length
	SpringStrength    float64 `yaml:"spring_strength"`
	RepulsionDistance float64 `yaml:"repulsion_distance"`
	RepulsionStrength float64 `yaml:"repulsion_strength"`
	MaxLinks          int     `yaml:"max_links"` // 0 = unlimited
	StickOnConnect    bool    `yaml:"stick_on_connect"`
}

// DLASettings holds diffusion-limited aggregation parameters.
type DLASettings struct {
	Enabled          bool    `yaml:"enabled"`
	SeedCount        int     `yaml:"seed_count"`
	StickDistance    float64 `yaml:"stick_distance"`
	StickProbability float64 `yaml:"stick_probability"`
	DrawLines        bool    `yaml:"draw_lines"`
}

// ColorFieldSettings holds the background color field parameters.
type ColorFieldSettings struct {
	ForceEnabled         bool    `yaml:"force_enabled"`
	ForceStrength        float64 `yaml:"force_strength"`
	DisplacementEnabled  bool    `yaml:"displacement_enabled"`
	DisplacementStrength float64 `yaml:"displacement_strength"`
	MinAngle             float64 `yaml:"min_angle"` // degrees at brightness 0
	MaxAngle             float64 `yaml:"max_angle"` // degrees at brightness 1
	SampleDistance       float64 `yaml:"sample_distance"`
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used. The merged document is
// validated against the embedded schema.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration against the embedded JSON schema.
func (c *Config) Validate() error {
	sch, err := compileSchema()
	if err != nil {
		return err
	}

	// Round-trip through YAML and JSON so the validator sees plain JSON values.
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("re-reading config: %w", err)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding config as json: %w", err)
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("decoding config json: %w", err)
	}

	if err := sch.Validate(v); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

func compileSchema() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema.json", bytes.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("loading schema: %w", err)
	}
	sch, err := c.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return sch, nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// MaxNeighborRadius returns the largest query radius any enabled module needs.
// The spatial grid uses it as its cell size.
func (s *Settings) MaxNeighborRadius() float64 {
	r := 0.0
	if s.Flocking.Enabled {
		r = math.Max(r, s.Flocking.SeparationDistance)
		r = math.Max(r, s.Flocking.CohesionDistance)
		r = math.Max(r, s.Flocking.AlignmentDistance)
	}
	if s.Magnetism.Enabled {
		r = math.Max(r, s.Magnetism.Distance)
	}
	if s.Aggregation.Enabled {
		r = math.Max(r, s.Aggregation.Distance)
		r = math.Max(r, s.Aggregation.RepulsionDistance)
	}
	if s.DLA.Enabled {
		r = math.Max(r, s.DLA.StickDistance)
	}
	// Clamp to a minimum of 10 to avoid tiny grids or div by zero
	return math.Max(r, 10)
}

// TickSeconds returns the duration of a tick, defaulting to 1/60s.
func (s *Settings) TickSeconds() float64 {
	if s.Motion.DT <= 0 {
		return 1.0 / 60.0
	}
	return s.Motion.DT
}
