package telemetry

import (
	"github.com/pthm-cable/swarmpaint/components"
	"github.com/pthm-cable/swarmpaint/systems"
)

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks uint64
	dt                  float64

	// Current window tracking
	windowStartTick uint64

	// Event counters for current window
	spawned int
	erased  int
	ticks   systems.TickStats
}

// Sample is the swarm state measured at flush time.
type Sample struct {
	Counts      [components.NumStates]int
	Speeds      []float64 // speeds of moving agents
	Lines       int
	Branches    int
	Obstacles   int
	TrailPoints int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec, dt float64) *Collector {
	ticksPerWindow := uint64(1)
	if dt > 0 && windowDurationSec > dt {
		ticksPerWindow = uint64(windowDurationSec / dt)
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// RecordTick adds one tick's counters to the window.
func (c *Collector) RecordTick(st systems.TickStats) {
	c.ticks.Moved += st.Moved
	c.ticks.Wrapped += st.Wrapped
	c.ticks.Bounced += st.Bounced
	c.ticks.Stopped += st.Stopped
	c.ticks.Exited += st.Exited
	c.ticks.Frozen += st.Frozen
	c.ticks.Reactivated += st.Reactivated
	c.ticks.Stuck += st.Stuck
	c.ticks.SeedsAdded += st.SeedsAdded
	c.ticks.Neutral += st.Neutral
}

// RecordSpawn records agents created by a brush or command.
func (c *Collector) RecordSpawn(n int) {
	c.spawned += n
}

// RecordErase records agents removed by the eraser or a clear.
func (c *Collector) RecordErase(n int) {
	c.erased += n
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick uint64) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick uint64, sample Sample) WindowStats {
	mean, std, p10, p50, p90 := ComputeDistribution(sample.Speeds)

	agents := 0
	for _, n := range sample.Counts {
		agents += n
	}

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt,

		Agents:  agents,
		Active:  sample.Counts[components.StateActive],
		Frozen:  sample.Counts[components.StateFrozen],
		Stopped: sample.Counts[components.StateStopped],
		Stuck:   sample.Counts[components.StateStuck],
		Seeds:   sample.Counts[components.StateSeed],

		Spawned:     c.spawned,
		Erased:      c.erased,
		Wrapped:     c.ticks.Wrapped,
		Bounced:     c.ticks.Bounced,
		StoppedAt:   c.ticks.Stopped,
		Exited:      c.ticks.Exited,
		Froze:       c.ticks.Frozen,
		Reactivated: c.ticks.Reactivated,
		StuckEvents: c.ticks.Stuck,
		SeedsAdded:  c.ticks.SeedsAdded,
		Neutralized: c.ticks.Neutral,

		SpeedMean: mean,
		SpeedStd:  std,
		SpeedP10:  p10,
		SpeedP50:  p50,
		SpeedP90:  p90,

		Lines:       sample.Lines,
		Branches:    sample.Branches,
		Obstacles:   sample.Obstacles,
		TrailPoints: sample.TrailPoints,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.spawned = 0
	c.erased = 0
	c.ticks = systems.TickStats{}

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() uint64 {
	return c.windowDurationTicks
}
