package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/swarmpaint/config"
	"github.com/pthm-cable/swarmpaint/game"
	"github.com/pthm-cable/swarmpaint/renderer"
	"github.com/pthm-cable/swarmpaint/terminal"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	term := flag.Bool("terminal", false, "Run a character-cell preview in the terminal")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	logFile := flag.String("log-file", "", "Write logs to this file (terminal mode discards logs otherwise)")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs, snapshots and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Uint64("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	spawn := flag.Int("spawn", 0, "Agents to scatter over the canvas at start")
	bgKind := flag.String("background", "", "Override background kind: none, image, simplex, perlin")
	exportPath := flag.String("export", "", "Write a final JSON snapshot here on exit")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	if *bgKind != "" {
		cfg.Background.Kind = *bgKind
		if err := cfg.Validate(); err != nil {
			slog.Error("invalid background override", "error", err)
			os.Exit(1)
		}
	}

	// Set up slog (JSON to stdout for structured logging)
	var out io.Writer = os.Stdout
	switch {
	case *logFile != "":
		f, err := os.Create(*logFile)
		if err != nil {
			slog.Error("failed to open log file", "error", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	case *term:
		out = io.Discard
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(out, nil)))

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	g, err := game.New(cfg, game.Options{
		Seed:           rngSeed,
		LogStats:       *logStats,
		StatsWindowSec: *statsWindow,
		OutputDir:      *outputDir,
	})
	if err != nil {
		slog.Error("failed to create game", "error", err)
		os.Exit(1)
	}
	defer g.Unload()

	if *spawn > 0 {
		n := g.SpawnRandom(*spawn)
		slog.Info("spawned agents", "requested", *spawn, "created", n)
	}

	slog.Info("starting simulation",
		"seed", rngSeed,
		"headless", *headless,
		"terminal", *term,
		"max_ticks", *maxTicks,
	)

	switch {
	case *headless:
		runHeadless(g, *maxTicks)
	case *term:
		if err := runTerminal(g, *maxTicks); err != nil {
			slog.Error("terminal preview failed", "error", err)
		}
	default:
		runWindow(g, cfg, *maxTicks)
	}

	if *exportPath != "" {
		if err := g.Export(*exportPath); err != nil {
			slog.Error("export failed", "error", err)
			return
		}
		slog.Info("exported snapshot", "path", *exportPath, "tick", g.Tick())
	}
}

// runHeadless is a pure CPU loop with no raylib or terminal.
func runHeadless(g *game.Game, maxTicks uint64) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	for ctx.Err() == nil {
		g.Update()
		if maxTicks > 0 && g.Tick() >= maxTicks {
			slog.Info("max ticks reached", "tick", g.Tick())
			return
		}
	}
	slog.Info("interrupted", "tick", g.Tick())
}

func runWindow(g *game.Game, cfg *config.Config, maxTicks uint64) {
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Swarm Paint")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	w := renderer.NewWindow(g, "Swarm Paint")
	defer w.Unload()
	w.Run(maxTicks)
}

func runTerminal(g *game.Game, maxTicks uint64) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = terminal.New(screen, g).Run(ctx, maxTicks)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
