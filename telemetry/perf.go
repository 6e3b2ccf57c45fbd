package telemetry

import (
	"log/slog"
	"time"

	"github.com/pthm-cable/swarmpaint/systems"
)

// Phase names for the simulation step.
const (
	PhaseInput     = "input"
	PhasePrepare   = systems.PhasePrepare
	PhaseSnapshot  = systems.PhaseSnapshot
	PhaseAgents    = systems.PhaseAgents
	PhaseCleanup   = systems.PhaseCleanup
	PhaseTelemetry = "telemetry"
)

// Phases lists every phase in tick order.
var Phases = []string{PhaseInput, PhasePrepare, PhaseSnapshot, PhaseAgents, PhaseCleanup, PhaseTelemetry}

// perfSample is one tick. phases is indexed like PerfCollector.names.
type perfSample struct {
	tick   time.Duration
	phases []time.Duration
	agents int
}

// PerfCollector keeps a ring of per-tick timings and the live agent count
// of each tick, so cost per agent can be reported alongside phase times.
type PerfCollector struct {
	window  []perfSample
	next    int
	filled  int
	names   []string       // phase names in first-seen order
	index   map[string]int // name -> position in names
	current perfSample

	tickStart  time.Time
	phaseStart time.Time
	phase      int // -1 when no phase is open

	lastFrame time.Time
	frame     time.Duration
}

// NewPerfCollector creates a collector averaging over windowSize ticks
// (60 when windowSize < 1). The known phases are pre-registered.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	p := &PerfCollector{
		window: make([]perfSample, windowSize),
		index:  make(map[string]int, len(Phases)),
		phase:  -1,
	}
	for _, name := range Phases {
		p.phaseIndex(name)
	}
	return p
}

func (p *PerfCollector) phaseIndex(name string) int {
	if i, ok := p.index[name]; ok {
		return i
	}
	p.index[name] = len(p.names)
	p.names = append(p.names, name)
	return len(p.names) - 1
}

// StartTick begins timing a new simulation tick.
func (p *PerfCollector) StartTick() {
	p.tickStart = time.Now()
	p.phase = -1
	p.current = perfSample{phases: make([]time.Duration, len(p.names))}
}

// StartPhase closes the open phase, if any, and opens phase.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	p.closePhase(now)
	p.phase = p.phaseIndex(phase)
	p.phaseStart = now
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.phase < 0 {
		return
	}
	for len(p.current.phases) <= p.phase {
		p.current.phases = append(p.current.phases, 0)
	}
	p.current.phases[p.phase] += now.Sub(p.phaseStart)
	p.phase = -1
}

// EndTick closes the tick. agents is the number of live agents it updated.
func (p *PerfCollector) EndTick(agents int) {
	now := time.Now()
	p.closePhase(now)
	p.current.tick = now.Sub(p.tickStart)
	p.current.agents = agents

	p.window[p.next] = p.current
	p.next = (p.next + 1) % len(p.window)
	if p.filled < len(p.window) {
		p.filled++
	}
}

// RecordFrame marks a rendered frame; the interval between calls gives FPS.
func (p *PerfCollector) RecordFrame() {
	now := time.Now()
	if !p.lastFrame.IsZero() {
		p.frame = now.Sub(p.lastFrame)
	}
	p.lastFrame = now
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration

	// Per phase average duration and share of the average tick.
	PhaseAvg map[string]time.Duration
	PhasePct map[string]float64

	TicksPerSecond float64

	// AvgAgents is the mean live agent count; AgentCost is the agents phase
	// time divided by that count.
	AvgAgents float64
	AgentCost time.Duration

	FrameDuration time.Duration
	FPS           float64
}

// Stats aggregates the current window.
func (p *PerfCollector) Stats() PerfStats {
	st := PerfStats{
		PhaseAvg:      make(map[string]time.Duration),
		PhasePct:      make(map[string]float64),
		FrameDuration: p.frame,
	}
	if p.frame > 0 {
		st.FPS = float64(time.Second) / float64(p.frame)
	}
	if p.filled == 0 {
		return st
	}

	var total time.Duration
	var agents int
	sums := make([]time.Duration, len(p.names))
	for i, s := range p.window[:p.filled] {
		total += s.tick
		agents += s.agents
		if i == 0 || s.tick < st.MinTickDuration {
			st.MinTickDuration = s.tick
		}
		st.MaxTickDuration = max(st.MaxTickDuration, s.tick)
		for j, d := range s.phases {
			sums[j] += d
		}
	}

	n := time.Duration(p.filled)
	st.AvgTickDuration = total / n
	st.AvgAgents = float64(agents) / float64(p.filled)
	for j, sum := range sums {
		if sum == 0 {
			continue
		}
		name := p.names[j]
		st.PhaseAvg[name] = sum / n
		if st.AvgTickDuration > 0 {
			st.PhasePct[name] = float64(st.PhaseAvg[name]) / float64(st.AvgTickDuration) * 100
		}
	}
	if st.AvgTickDuration > 0 {
		st.TicksPerSecond = float64(time.Second) / float64(st.AvgTickDuration)
	}
	if st.AvgAgents > 0 {
		st.AgentCost = time.Duration(float64(st.PhaseAvg[PhaseAgents]) / st.AvgAgents)
	}
	return st
}

// LogStats logs performance statistics.
func (s PerfStats) LogStats() {
	slog.Info("perf", "stats", s)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("min_tick_us", s.MinTickDuration.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTickDuration.Microseconds()),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
		slog.Float64("avg_agents", s.AvgAgents),
		slog.Int64("agent_cost_ns", s.AgentCost.Nanoseconds()),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}
	for _, phase := range Phases {
		if pct, ok := s.PhasePct[phase]; ok && pct > 0.1 {
			attrs = append(attrs, slog.Float64(phase+"_pct", float64(int(pct*10))/10))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is one perf row in perf.csv.
type PerfStatsCSV struct {
	WindowEnd    uint64  `csv:"window_end"`
	AvgTickUS    int64   `csv:"avg_tick_us"`
	MinTickUS    int64   `csv:"min_tick_us"`
	MaxTickUS    int64   `csv:"max_tick_us"`
	TicksPerSec  float64 `csv:"ticks_per_sec"`
	FPS          float64 `csv:"fps"`
	AvgAgents    float64 `csv:"avg_agents"`
	AgentCostNS  int64   `csv:"agent_cost_ns"`
	InputPct     float64 `csv:"input_pct"`
	PreparePct   float64 `csv:"prepare_pct"`
	SnapshotPct  float64 `csv:"snapshot_pct"`
	AgentsPct    float64 `csv:"agents_pct"`
	CleanupPct   float64 `csv:"cleanup_pct"`
	TelemetryPct float64 `csv:"telemetry_pct"`
}

// ToCSV flattens s into a CSV row.
func (s PerfStats) ToCSV(windowEnd uint64) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:    windowEnd,
		AvgTickUS:    s.AvgTickDuration.Microseconds(),
		MinTickUS:    s.MinTickDuration.Microseconds(),
		MaxTickUS:    s.MaxTickDuration.Microseconds(),
		TicksPerSec:  s.TicksPerSecond,
		FPS:          s.FPS,
		AvgAgents:    s.AvgAgents,
		AgentCostNS:  s.AgentCost.Nanoseconds(),
		InputPct:     s.PhasePct[PhaseInput],
		PreparePct:   s.PhasePct[PhasePrepare],
		SnapshotPct:  s.PhasePct[PhaseSnapshot],
		AgentsPct:    s.PhasePct[PhaseAgents],
		CleanupPct:   s.PhasePct[PhaseCleanup],
		TelemetryPct: s.PhasePct[PhaseTelemetry],
	}
}
