package game

import (
	"fmt"
	"image/color"
	"log/slog"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/swarmpaint/agents"
	"github.com/pthm-cable/swarmpaint/systems"
	"github.com/pthm-cable/swarmpaint/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and writes it out.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	stats := g.collector.Flush(g.tick, g.sample())
	perfStats := g.perf.Stats()

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if g.output != nil {
		if err := g.output.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := g.output.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
}

// sample measures the swarm for a stats window.
func (g *Game) sample() telemetry.Sample {
	s := telemetry.Sample{
		Counts:    g.store.CountByState(),
		Lines:     g.updater.Aggregation().LineCount() + len(g.updater.DLA().Lines()),
		Branches:  g.updater.Aggregation().Branches(),
		Obstacles: g.obstacles.Len(),
	}
	g.store.ForEach(func(v agents.View) {
		s.TrailPoints += v.Trail.Len()
		if v.Agent.State.Moving() {
			s.Speeds = append(s.Speeds, r2.Norm(r2.Vec(*v.Vel)))
		}
	})
	return s
}

// Export writes a JSON snapshot of agents, trails, lines and obstacles to path.
func (g *Game) Export(path string) error {
	if err := telemetry.SaveSnapshot(g.createSnapshot(), path); err != nil {
		return err
	}
	slog.Info("exported snapshot", "path", path, "tick", g.tick, "agents", g.store.Count())
	return nil
}

// ExportTick writes a snapshot named after the current tick into the output
// directory, or the working directory when output is disabled.
func (g *Game) ExportTick() (string, error) {
	path := g.output.SnapshotPath(g.tick)
	if path == "" {
		path = fmt.Sprintf("snapshot_%d.json", g.tick)
	}
	return path, g.Export(path)
}

// createSnapshot captures the current canvas.
func (g *Game) createSnapshot() *telemetry.Snapshot {
	snap := &telemetry.Snapshot{
		Version:  telemetry.SnapshotVersion,
		RNGSeed:  g.seed,
		Tick:     g.tick,
		SimTime:  g.simTime,
		Settings: g.settings,
	}

	for _, e := range g.store.Entities(nil) {
		v, ok := g.store.Get(e)
		if !ok {
			continue
		}
		a := telemetry.AgentState{
			ID:     v.Agent.ID,
			State:  v.Agent.State.String(),
			X:      v.Pos.X,
			Y:      v.Pos.Y,
			VelX:   v.Vel.X,
			VelY:   v.Vel.Y,
			BornAt: v.Agent.BornAt,
			Stroke: hexColor(v.Agent.Stroke),
			Fill:   hexColor(v.Agent.Fill),
			Branch: v.Bond.Branch,
		}
		for _, peer := range v.Bond.Links {
			if pv, ok := g.store.Get(peer); ok {
				a.Links = append(a.Links, pv.Agent.ID)
			}
		}
		if !v.Trail.Hidden {
			for _, seg := range v.Trail.Segments {
				a.Trail = append(a.Trail, points(seg))
			}
		}
		snap.Agents = append(snap.Agents, a)
	}

	snap.Lines = append(snap.Lines, lineStates(g.updater.Aggregation().Lines(), "aggregation", g)...)
	snap.Lines = append(snap.Lines, lineStates(g.updater.DLA().Lines(), "dla", g)...)

	for _, o := range g.obstacles.All() {
		snap.Obstacles = append(snap.Obstacles, telemetry.ObstacleState{
			ID:         o.ID,
			Kind:       o.Kind.String(),
			IsObstacle: o.IsObstacle,
			Points:     points(o.Points()),
		})
	}
	return snap
}

func lineStates(lines []systems.Line, kind string, g *Game) []telemetry.LineState {
	out := make([]telemetry.LineState, 0, len(lines))
	for _, l := range lines {
		va, okA := g.store.Get(l.A)
		vb, okB := g.store.Get(l.B)
		if !okA || !okB {
			continue
		}
		out = append(out, telemetry.LineState{
			A:      va.Agent.ID,
			B:      vb.Agent.ID,
			From:   [2]float64{l.From.X, l.From.Y},
			To:     [2]float64{l.To.X, l.To.Y},
			Branch: l.Branch,
			Kind:   kind,
		})
	}
	return out
}

func points(ps []r2.Vec) [][2]float64 {
	out := make([][2]float64, len(ps))
	for i, p := range ps {
		out[i] = [2]float64{p.X, p.Y}
	}
	return out
}

func hexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
