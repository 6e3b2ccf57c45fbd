package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}

	s := cfg.Settings
	if s.Canvas.Width != 1280 || s.Canvas.Height != 800 {
		t.Errorf("canvas = %vx%v, want 1280x800", s.Canvas.Width, s.Canvas.Height)
	}
	if s.Motion.Boundary != BoundaryWrap {
		t.Errorf("boundary = %q, want %q", s.Motion.Boundary, BoundaryWrap)
	}
	if !s.Flocking.Enabled {
		t.Error("flocking should be enabled by default")
	}
	if len(s.Spawn.Palette) == 0 {
		t.Error("default palette is empty")
	}
}

func TestLoadOverlaysUserFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "user.yaml")
	data := []byte("settings:\n  canvas:\n    width: 500\n    height: 400\n  motion:\n    boundary: reflect\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error = %v", err)
	}
	if cfg.Settings.Canvas.Width != 500 || cfg.Settings.Canvas.Height != 400 {
		t.Errorf("canvas = %vx%v, want 500x400", cfg.Settings.Canvas.Width, cfg.Settings.Canvas.Height)
	}
	if cfg.Settings.Motion.Boundary != BoundaryReflect {
		t.Errorf("boundary = %q, want reflect", cfg.Settings.Motion.Boundary)
	}
	// Untouched fields keep their defaults.
	if cfg.Settings.Motion.Speed != 0.75 {
		t.Errorf("speed = %v, want default 0.75", cfg.Settings.Motion.Speed)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown boundary", "settings:\n  motion:\n    boundary: bounce\n"},
		{"negative speed", "settings:\n  motion:\n    speed: -1\n"},
		{"bad palette entry", "settings:\n  spawn:\n    palette: [\"red\"]\n"},
		{"probability above one", "settings:\n  dla:\n    stick_probability: 1.5\n"},
		{"unknown background", "background:\n  kind: video\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Errorf("Load(%s) succeeded, want validation error", tt.name)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Settings.External.Enabled = true
	cfg.Settings.External.Angle = 45

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load error = %v", err)
	}
	if !loaded.Settings.External.Enabled || loaded.Settings.External.Angle != 45 {
		t.Errorf("external = %+v, want enabled at 45", loaded.Settings.External)
	}
}

func TestMaxNeighborRadius(t *testing.T) {
	s := Default().Settings
	s.Flocking.Enabled = false
	s.Magnetism.Enabled = false
	s.Aggregation.Enabled = false
	s.DLA.Enabled = false
	if got := s.MaxNeighborRadius(); got != 10 {
		t.Errorf("MaxNeighborRadius with nothing enabled = %v, want 10", got)
	}

	s.Magnetism.Enabled = true
	s.Magnetism.Distance = 120
	if got := s.MaxNeighborRadius(); got != 120 {
		t.Errorf("MaxNeighborRadius = %v, want 120", got)
	}
}

func TestRadians(t *testing.T) {
	if got := Radians(180); math.Abs(got-math.Pi) > 1e-12 {
		t.Errorf("Radians(180) = %v, want pi", got)
	}
}
