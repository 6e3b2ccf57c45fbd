package game

import (
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/swarmpaint/config"
)

func TestCommandsOnSelection(t *testing.T) {
	g := newTestGame(t, testConfig(), 1)

	// Selection commands without a selection do nothing.
	for _, c := range []Command{CmdDeleteSelected, CmdToggleSelectedFill, CmdGrowSelected, CmdRotateSelectedLeft} {
		if err := g.Do(c); err != nil {
			t.Errorf("%v without selection: %v", c, err)
		}
	}

	o := g.AddRectangle(r2.Vec{X: 200, Y: 200}, r2.Vec{X: 40, Y: 20})
	g.SetTool(ToolSelect)
	g.PointerDown(r2.Vec{X: 200, Y: 200})
	g.PointerUp(r2.Vec{X: 200, Y: 200})
	if sel, ok := g.Selected(); !ok || sel.ID != o.ID {
		t.Fatal("rectangle not selected")
	}

	if err := g.Do(CmdGrowSelected); err != nil {
		t.Fatal(err)
	}
	if !g.Obstacles().AnyContains(r2.Vec{X: 221, Y: 200}) {
		t.Error("grow did not enlarge the shape")
	}
	if err := g.Do(CmdShrinkSelected); err != nil {
		t.Fatal(err)
	}
	if g.Obstacles().AnyContains(r2.Vec{X: 221, Y: 200}) {
		t.Error("shrink did not restore the shape")
	}

	if err := g.Do(CmdRotateSelectedRight); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		g.Do(CmdRotateSelectedRight)
	}
	// Six 15 degree turns stand the rectangle on end.
	if !g.Obstacles().AnyContains(r2.Vec{X: 200, Y: 218}) || g.Obstacles().AnyContains(r2.Vec{X: 218, Y: 200}) {
		t.Error("rotation by commands did not reach 90 degrees")
	}

	g.Do(CmdToggleSelectedFill)
	if g.Obstacles().AnyContains(r2.Vec{X: 200, Y: 200}) {
		t.Error("toggled shape still blocks")
	}

	g.Do(CmdDeleteSelected)
	if g.Obstacles().Len() != 0 {
		t.Error("delete left the shape")
	}
	if _, ok := g.Selected(); ok {
		t.Error("selection survived delete")
	}
}

func TestCommandsSimulation(t *testing.T) {
	g := newTestGame(t, testConfig(), 1)
	g.SpawnRandom(10)

	g.Do(CmdTogglePause)
	if !g.Paused() {
		t.Fatal("not paused")
	}
	g.Do(CmdStep)
	if g.Tick() != 1 {
		t.Errorf("step while paused: tick = %d", g.Tick())
	}

	paint := g.Settings().Motion.PaintMode
	if err := g.Do(CmdTogglePaintMode); err != nil {
		t.Fatal(err)
	}
	if g.Settings().Motion.PaintMode == paint {
		t.Error("paint mode not toggled")
	}

	tests := []struct{ from, want string }{
		{config.BoundaryWrap, config.BoundaryReflect},
		{config.BoundaryReflect, config.BoundaryStop},
		{config.BoundaryStop, config.BoundaryTravelOff},
		{config.BoundaryTravelOff, config.BoundaryWrap},
		{"bogus", config.BoundaryWrap},
	}
	for _, tt := range tests {
		if got := nextBoundary(tt.from); got != tt.want {
			t.Errorf("nextBoundary(%q) = %q, want %q", tt.from, got, tt.want)
		}
	}
	before := g.Settings().Motion.Boundary
	g.Do(CmdNextBoundary)
	if got := g.Settings().Motion.Boundary; got != nextBoundary(before) {
		t.Errorf("boundary %q after %q", got, before)
	}

	g.Do(CmdClear)
	if g.Store().Count() != 0 {
		t.Error("clear left agents")
	}

	g.AddRectangle(r2.Vec{X: 50, Y: 50}, r2.Vec{X: 10, Y: 10})
	g.Do(CmdClearObstacles)
	if g.Obstacles().Len() != 0 {
		t.Error("clear-obstacles left shapes")
	}

	if err := g.Do(Command(200)); err == nil {
		t.Error("unknown command accepted")
	}
	if Command(200).String() != "command(200)" || CmdExport.String() != "export" {
		t.Error("command names")
	}
}

func TestExportCommand(t *testing.T) {
	dir := t.TempDir()
	g, err := New(testConfig(), Options{Seed: 1, OutputDir: dir})
	if err != nil {
		t.Fatal(err)
	}
	defer g.Unload()

	if err := g.Do(CmdExport); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "snapshot_0.json")); err != nil {
		t.Errorf("snapshot missing: %v", err)
	}
}

func TestToolsOrder(t *testing.T) {
	tools := Tools()
	if len(tools) != 5 || tools[0] != ToolPaint || tools[4] != ToolSelect {
		t.Errorf("Tools() = %v", tools)
	}
}
