package renderer

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/swarmpaint/camera"
	"github.com/pthm-cable/swarmpaint/game"
	"github.com/pthm-cable/swarmpaint/systems"
	"github.com/pthm-cable/swarmpaint/ui"
)

const (
	controlsWidth = 300
	sidePanelW    = 240
	margin        = 10
)

// Window is the interactive raylib viewer. Create it after rl.InitWindow.
type Window struct {
	g        *game.Game
	cam      *camera.Camera
	canvas   *Canvas
	input    *Input
	controls *ui.ControlsPanel
	hud      *ui.HUD
	perf     *ui.PerfPanel
	legend   *ui.OverlayPanel
	layers   *ui.OverlayRegistry
	registry *systems.SystemRegistry
	title    string
}

// NewWindow builds the viewer for g on the current raylib window.
func NewWindow(g *game.Game, title string) *Window {
	screenW, screenH := float32(rl.GetScreenWidth()), float32(rl.GetScreenHeight())
	s := g.Settings()

	cam := camera.New(controlsWidth, 0, screenW-controlsWidth, screenH, float32(s.Canvas.Width), float32(s.Canvas.Height))
	controls := ui.NewControlsPanel(0, 0, controlsWidth)
	layers := ui.NewOverlayRegistry()

	w := &Window{
		g:        g,
		cam:      cam,
		canvas:   NewCanvas(cam),
		input:    NewInput(cam, controls, layers),
		controls: controls,
		hud:      ui.NewHUD(sidePanelW),
		perf:     ui.NewPerfPanel(0, 0),
		legend:   ui.NewOverlayPanel(sidePanelW),
		layers:   layers,
		registry: systems.NewSystemRegistry(),
		title:    title,
	}
	w.canvas.SetBackground(g.Background(), s.Canvas.Width, s.Canvas.Height)
	return w
}

// Run drives the frame loop until the window closes or maxTicks (0 = unlimited) is reached.
func (w *Window) Run(maxTicks uint64) {
	for !rl.WindowShouldClose() {
		w.Frame()
		if maxTicks > 0 && w.g.Tick() >= maxTicks {
			slog.Info("max ticks reached", "tick", w.g.Tick())
			return
		}
	}
}

// Frame handles input, advances the simulation and draws one frame.
func (w *Window) Frame() {
	w.g.Perf().RecordFrame()
	w.layoutViewport()

	for _, cmd := range w.input.Handle(w.g) {
		w.run(cmd)
	}
	w.g.Update()

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	w.canvas.Draw(w.g, w.layers, w.input.Pointer())
	w.drawPanels()

	rl.EndDrawing()
}

// layoutViewport gives the canvas whatever the controls panel leaves free.
func (w *Window) layoutViewport() {
	left := float32(0)
	if w.controls.IsVisible() {
		left = controlsWidth
	}
	w.cam.ViewportX = left
	w.cam.Resize(float32(rl.GetScreenWidth())-left, float32(rl.GetScreenHeight()))
}

func (w *Window) run(cmd game.Command) {
	if err := w.g.Do(cmd); err != nil {
		slog.Error("command failed", "command", cmd.String(), "error", err)
	}
}

func (w *Window) drawPanels() {
	screenW, screenH := int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight())
	g := w.g

	tools := game.Tools()
	names := make([]string, len(tools))
	for i, t := range tools {
		names[i] = t.String()
	}
	res := w.controls.Draw(ui.ControlsState{
		Settings: g.Settings(),
		Tools:    names,
		Tool:     g.Tool().String(),
		Paused:   g.Paused(),
	}, screenH)
	if res.Tool != "" {
		if t, err := game.ParseTool(res.Tool); err == nil {
			g.SetTool(t)
		}
	}
	if res.Changed {
		if err := g.SetSettings(res.Settings); err != nil {
			slog.Warn("rejected settings", "error", err)
		}
	}
	if res.Command != game.CmdNone {
		w.run(res.Command)
	}

	data := ui.HUDData{
		Title:    w.title,
		Counts:   g.Store().CountByState(),
		Lines:    len(g.Lines()),
		Branches: g.Branches(),
		Shapes:   g.Obstacles().Len(),
		Tick:     g.Tick(),
		SimTime:  g.SimTime(),
		FPS:      rl.GetFPS(),
		Paused:   g.Paused(),
		Tool:     g.Tool().String(),
		Palette:  g.Palette().Swatches(),
	}
	if o, ok := g.Selected(); ok {
		data.Selected = describeObstacle(o)
	}
	x, y := ui.Anchor(ui.AnchorTopRight, sidePanelW, w.hud.Height(), screenW, screenH, margin)
	w.hud.Draw(x, y, data)

	y += w.hud.Height() + margin
	w.legend.Draw(x, y, w.layers)

	if w.layers.IsEnabled(ui.OverlayPerf) {
		ps := g.Perf().Stats()
		w.perf.SetPosition(x, y+w.legend.Height(w.layers)+margin)
		w.perf.Draw(ui.PerfPanelData{
			PhaseTimes:     ps.PhaseAvg,
			Total:          ps.AvgTickDuration,
			TicksPerSecond: ps.TicksPerSecond,
			AgentCost:      ps.AgentCost,
			Registry:       w.registry,
		})
	}

	w.hud.DrawControls(int32(w.cam.ViewportX)+margin, screenH, controlsLegend)
}

// Unload frees GPU resources.
func (w *Window) Unload() {
	w.canvas.Unload()
}
