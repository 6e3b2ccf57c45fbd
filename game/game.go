// Package game drives the simulation: ticking, settings hand-off, pointer
// tools, canvas commands and telemetry.
package game

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/pthm-cable/swarmpaint/agents"
	"github.com/pthm-cable/swarmpaint/background"
	"github.com/pthm-cable/swarmpaint/config"
	"github.com/pthm-cable/swarmpaint/obstacles"
	"github.com/pthm-cable/swarmpaint/systems"
	"github.com/pthm-cable/swarmpaint/telemetry"
)

// Options configures a Game beyond what the config file holds.
type Options struct {
	Seed           int64
	LogStats       bool
	StatsWindowSec float64 // 0 = use config
	OutputDir      string  // CSV logs and config snapshot; empty disables
	// Background overrides the sampler built from the config.
	Background background.Sampler
	// StatsCallback receives every flushed stats window.
	StatsCallback func(telemetry.WindowStats)
}

// Game holds the complete simulation state.
type Game struct {
	cfg  *config.Config
	rng  *rand.Rand
	seed int64

	settings config.Settings
	pending  *config.Settings

	store      *agents.Store
	obstacles  *obstacles.Registry
	updater    *systems.Updater
	palette    *agents.Palette
	background background.Sampler

	// State
	tick      uint64
	simTime   float64
	paused    bool
	lastStats systems.TickStats

	// Pointer tools
	tool    Tool
	pointer pointerState

	// Telemetry
	collector     *telemetry.Collector
	perf          *telemetry.PerfCollector
	output        *telemetry.OutputManager
	logStats      bool
	statsCallback func(telemetry.WindowStats)
}

// New creates a game over an empty canvas.
func New(cfg *config.Config, opts Options) (*Game, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	s := cfg.Settings

	palette, err := agents.NewPalette(s.Spawn.Palette, s.Spawn.ColorMode)
	if err != nil {
		return nil, err
	}

	bg := opts.Background
	if bg == nil {
		bg, err = background.FromConfig(cfg.Background, s.Canvas)
		if err != nil {
			return nil, fmt.Errorf("building background: %w", err)
		}
	}

	reg := obstacles.NewRegistry(obstacles.OptionsFromConfig(cfg.Obstacles))
	store := agents.NewStore(reg)

	statsWindow := cfg.Telemetry.StatsWindow
	if opts.StatsWindowSec > 0 {
		statsWindow = opts.StatsWindowSec
	}

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := output.WriteConfig(cfg); err != nil {
		output.Close()
		return nil, fmt.Errorf("writing config snapshot: %w", err)
	}

	g := &Game{
		cfg:           cfg,
		rng:           rand.New(rand.NewSource(opts.Seed)),
		seed:          opts.Seed,
		settings:      s,
		store:         store,
		obstacles:     reg,
		updater:       systems.NewUpdater(store, reg),
		palette:       palette,
		background:    bg,
		tool:          ToolPaint,
		collector:     telemetry.NewCollector(statsWindow, s.TickSeconds()),
		perf:          telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		output:        output,
		logStats:      opts.LogStats,
		statsCallback: opts.StatsCallback,
	}
	return g, nil
}

// Update runs one tick unless paused.
func (g *Game) Update() {
	if g.paused {
		return
	}
	g.Step()
}

// Step runs exactly one tick, even while paused.
func (g *Game) Step() systems.TickStats {
	g.perf.StartTick()
	g.perf.StartPhase(telemetry.PhaseInput)
	g.applyPending()

	g.tick++
	g.simTime += g.settings.TickSeconds()
	st := g.updater.Tick(systems.TickInput{
		Tick:       g.tick,
		Now:        g.simTime,
		Settings:   g.settings,
		Background: g.background,
		Rng:        g.rng,
		Colors:     g.randomColors,
		Phase:      g.perf.StartPhase,
	})
	g.lastStats = st

	g.perf.StartPhase(telemetry.PhaseTelemetry)
	g.collector.RecordTick(st)
	g.flushTelemetry()
	g.perf.EndTick(g.store.Count())
	return st
}

// SetSettings validates s and queues it for the start of the next tick.
func (g *Game) SetSettings(s config.Settings) error {
	c := *g.cfg
	c.Settings = s
	if err := c.Validate(); err != nil {
		return err
	}
	g.pending = &s
	return nil
}

// applyPending swaps in queued settings so every module sees one copy per tick.
func (g *Game) applyPending() {
	if g.pending == nil {
		return
	}
	next := *g.pending
	g.pending = nil

	if !samePalette(g.settings.Spawn, next.Spawn) {
		p, err := agents.NewPalette(next.Spawn.Palette, next.Spawn.ColorMode)
		if err != nil {
			slog.Warn("keeping previous palette", "error", err)
		} else {
			g.palette = p
		}
	}
	g.settings = next
}

func samePalette(a, b config.SpawnSettings) bool {
	if a.ColorMode != b.ColorMode || len(a.Palette) != len(b.Palette) {
		return false
	}
	for i := range a.Palette {
		if a.Palette[i] != b.Palette[i] {
			return false
		}
	}
	return true
}

// Settings returns the settings in effect, or the queued ones if a change is pending.
func (g *Game) Settings() config.Settings {
	if g.pending != nil {
		return *g.pending
	}
	return g.settings
}

// Pause stops Update from advancing the simulation.
func (g *Game) Pause() { g.paused = true }

// Resume lets Update advance the simulation again.
func (g *Game) Resume() { g.paused = false }

// TogglePause flips the paused state.
func (g *Game) TogglePause() { g.paused = !g.paused }

// Paused reports whether Update is a no-op.
func (g *Game) Paused() bool { return g.paused }

// Tick returns the number of ticks run so far.
func (g *Game) Tick() uint64 { return g.tick }

// SimTime returns simulation seconds elapsed.
func (g *Game) SimTime() float64 { return g.simTime }

// LastStats returns the counters of the most recent tick.
func (g *Game) LastStats() systems.TickStats { return g.lastStats }

// Store returns the agent store, for renderers.
func (g *Game) Store() *agents.Store { return g.store }

// Obstacles returns the obstacle registry, for renderers.
func (g *Game) Obstacles() *obstacles.Registry { return g.obstacles }

// Background returns the color field sampler, which may be nil.
func (g *Game) Background() background.Sampler { return g.background }

// Lines returns the aggregation lines followed by the DLA lines.
func (g *Game) Lines() []systems.Line {
	lines := g.updater.Aggregation().Lines()
	return append(lines, g.updater.DLA().Lines()...)
}

// Branches returns the number of distinct aggregation branches.
func (g *Game) Branches() int { return g.updater.Aggregation().Branches() }

// Palette returns the palette new agents are colored from.
func (g *Game) Palette() *agents.Palette { return g.palette }

// Perf returns the tick timing collector.
func (g *Game) Perf() *telemetry.PerfCollector { return g.perf }

// Unload flushes and closes telemetry output.
func (g *Game) Unload() {
	if err := g.output.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}

// randomColors picks colors for agents the engine creates on its own.
func (g *Game) randomColors() agents.Colors {
	return g.palette.Pick(g.rng, g.rng.Float64())
}
