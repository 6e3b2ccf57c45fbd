// Package telemetry provides windowed swarm statistics, CSV output,
// tick timing and JSON state snapshots.
package telemetry

import (
	"log/slog"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick uint64  `csv:"-"`
	WindowEndTick   uint64  `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Population at window end
	Agents  int `csv:"agents"`
	Active  int `csv:"active"`
	Frozen  int `csv:"frozen"`
	Stopped int `csv:"stopped"`
	Stuck   int `csv:"stuck"`
	Seeds   int `csv:"seeds"`

	// Events during window
	Spawned     int `csv:"spawned"`
	Erased      int `csv:"erased"`
	Wrapped     int `csv:"wrapped"`
	Bounced     int `csv:"bounced"`
	StoppedAt   int `csv:"stopped_events"`
	Exited      int `csv:"exited"`
	Froze       int `csv:"froze"`
	Reactivated int `csv:"reactivated"`
	StuckEvents int `csv:"stuck_events"`
	SeedsAdded  int `csv:"seeds_added"`
	Neutralized int `csv:"neutralized"`

	// Speed distribution over moving agents
	SpeedMean float64 `csv:"speed_mean"`
	SpeedStd  float64 `csv:"speed_std"`
	SpeedP10  float64 `csv:"speed_p10"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`

	// Structure
	Lines       int `csv:"lines"`
	Branches    int `csv:"branches"`
	Obstacles   int `csv:"obstacles"`
	TrailPoints int `csv:"trail_points"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeDistribution calculates mean, population std and percentiles.
func ComputeDistribution(values []float64) (mean, std, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0, 0
	}

	mean, variance := stat.PopMeanVariance(values, nil)
	if variance > 0 {
		std = math.Sqrt(variance)
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, std, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("window_start", s.WindowStartTick),
		slog.Uint64("window_end", s.WindowEndTick),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("agents", s.Agents),
		slog.Int("active", s.Active),
		slog.Int("frozen", s.Frozen),
		slog.Int("stopped", s.Stopped),
		slog.Int("stuck", s.Stuck),
		slog.Int("seeds", s.Seeds),
		slog.Int("spawned", s.Spawned),
		slog.Int("erased", s.Erased),
		slog.Int("wrapped", s.Wrapped),
		slog.Int("bounced", s.Bounced),
		slog.Int("stopped_events", s.StoppedAt),
		slog.Int("exited", s.Exited),
		slog.Int("froze", s.Froze),
		slog.Int("reactivated", s.Reactivated),
		slog.Int("stuck_events", s.StuckEvents),
		slog.Int("seeds_added", s.SeedsAdded),
		slog.Int("neutralized", s.Neutralized),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_std", s.SpeedStd),
		slog.Float64("speed_p10", s.SpeedP10),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Int("lines", s.Lines),
		slog.Int("branches", s.Branches),
		slog.Int("obstacles", s.Obstacles),
		slog.Int("trail_points", s.TrailPoints),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"agents", s.Agents,
		"active", s.Active,
		"frozen", s.Frozen,
		"stuck", s.Stuck,
		"seeds", s.Seeds,
		"spawned", s.Spawned,
		"erased", s.Erased,
		"bounced", s.Bounced,
		"exited", s.Exited,
		"speed_mean", s.SpeedMean,
		"speed_p50", s.SpeedP50,
		"lines", s.Lines,
		"branches", s.Branches,
		"trail_points", s.TrailPoints,
	)
}
