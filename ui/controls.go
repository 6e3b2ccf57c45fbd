package ui

import (
	"fmt"
	"slices"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/swarmpaint/config"
	"github.com/pthm-cable/swarmpaint/game"
)

// ControlsState is what the panel shows.
type ControlsState struct {
	Settings config.Settings
	Tools    []string
	Tool     string
	Paused   bool
}

// ControlsResult is what the user changed this frame.
type ControlsResult struct {
	Settings config.Settings
	Changed  bool
	Tool     string // non-empty when a tool button was pressed
	Command  game.Command
}

var controlPages = []string{"Motion", "Flocking", "Steering", "Forms", "Field"}

// ControlsPanel renders the settings sliders, tool buttons and commands.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
	page     int
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		visible:  true,
	}
}

// SetVisible shows or hides the panel.
func (c *ControlsPanel) SetVisible(visible bool) {
	c.visible = visible
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Contains reports whether the screen point lies on the panel, so canvas
// input can ignore clicks meant for widgets.
func (c *ControlsPanel) Contains(x, y float32) bool {
	return c.visible && x >= float32(c.x) && x < float32(c.x+c.width) && y >= float32(c.y)
}

// Draw renders the panel and returns the user's edits.
func (c *ControlsPanel) Draw(state ControlsState, height int32) ControlsResult {
	res := ControlsResult{Settings: state.Settings}
	if !c.visible {
		return res
	}

	r := c.renderer
	padding := float32(r.Theme.Padding)
	r.DrawPanel(c.x, c.y, c.width, height)

	f := &form{
		r: r,
		x: float32(c.x) + padding,
		y: float32(c.y) + padding,
		w: float32(c.width) - 2*padding,
	}

	// Tools
	f.header("Tools")
	bw := (f.w - 4*4) / float32(len(state.Tools))
	for i, name := range state.Tools {
		label := name
		if name == state.Tool {
			label = "[" + name + "]"
		}
		if gui.Button(rl.Rectangle{X: f.x + float32(i)*(bw+4), Y: f.y, Width: bw, Height: 22}, label) {
			res.Tool = name
		}
	}
	f.y += 28

	// Commands
	half := (f.w - 6) / 2
	if gui.Button(rl.Rectangle{X: f.x, Y: f.y, Width: half, Height: 22}, toggleText(state.Paused, "Resume", "Pause")) {
		res.Command = game.CmdTogglePause
	}
	if gui.Button(rl.Rectangle{X: f.x + half + 6, Y: f.y, Width: half, Height: 22}, "Step") {
		res.Command = game.CmdStep
	}
	f.y += 26
	third := (f.w - 12) / 3
	if gui.Button(rl.Rectangle{X: f.x, Y: f.y, Width: third, Height: 22}, "Clear") {
		res.Command = game.CmdClear
	}
	if gui.Button(rl.Rectangle{X: f.x + third + 6, Y: f.y, Width: third, Height: 22}, "Clear shapes") {
		res.Command = game.CmdClearObstacles
	}
	if gui.Button(rl.Rectangle{X: f.x + 2*(third+6), Y: f.y, Width: third, Height: 22}, "Export") {
		res.Command = game.CmdExport
	}
	f.y += 34

	// Page selector
	pw := (f.w - float32(len(controlPages)-1)*3) / float32(len(controlPages))
	for i, name := range controlPages {
		label := name
		if i == c.page {
			label = "> " + name
		}
		if gui.Button(rl.Rectangle{X: f.x + float32(i)*(pw+3), Y: f.y, Width: pw, Height: 20}, label) {
			c.page = i
		}
	}
	f.y += 30

	s := &res.Settings
	switch controlPages[c.page] {
	case "Motion":
		f.header("Motion")
		f.slider("Speed", &s.Motion.Speed, 0, 5)
		f.check("Paint mode", &s.Motion.PaintMode)
		f.slider("Active (s)", &s.Motion.ActiveDuration, 0, 30)
		f.cycle("Boundary", &s.Motion.Boundary, config.Boundaries)
		f.header("Spawn")
		f.intSlider("Count", &s.Spawn.Count, 1, 50)
		f.slider("Brush", &s.Spawn.BrushRadius, 1, 100)
		f.slider("Erase", &s.Spawn.EraseRadius, 1, 100)
		f.slider("Start speed", &s.Spawn.InitialSpeed, 0, 1)
		f.header("Trail")
		f.intSlider("Max points", &s.Trail.MaxPoints, 0, 5000)
	case "Flocking":
		f.header("Flocking")
		f.check("Enabled", &s.Flocking.Enabled)
		f.slider("Separation", &s.Flocking.Separation, 0, 1)
		f.slider("Cohesion", &s.Flocking.Cohesion, 0, 1)
		f.slider("Alignment", &s.Flocking.Alignment, 0, 1)
		f.slider("Sep. dist", &s.Flocking.SeparationDistance, 1, 200)
		f.slider("Coh. dist", &s.Flocking.CohesionDistance, 1, 200)
		f.slider("Align dist", &s.Flocking.AlignmentDistance, 1, 200)
		f.slider("Sensor", &s.Flocking.SensorAngle, 0, 180)
	case "Steering":
		f.header("Wander")
		f.check("Enabled", &s.Wander.Enabled)
		f.slider("Strength", &s.Wander.Strength, 0, 1)
		f.slider("Rate", &s.Wander.Speed, 0, 1)
		f.header("External")
		f.check("Enabled", &s.External.Enabled)
		f.slider("Angle", &s.External.Angle, 0, 360)
		f.slider("Strength", &s.External.Strength, 0, 1)
		f.slider("Random", &s.External.RandomRange, 0, 180)
		f.header("Avoidance")
		f.check("Enabled", &s.Avoidance.Enabled)
		f.slider("Distance", &s.Avoidance.Distance, 1, 100)
		f.slider("Strength", &s.Avoidance.Strength, 0, 5)
		f.header("Magnetism")
		f.check("Enabled", &s.Magnetism.Enabled)
		f.slider("Strength", &s.Magnetism.Strength, 0, 1)
		f.slider("Distance", &s.Magnetism.Distance, 1, 200)
		f.slider("Turn rate", &s.Magnetism.TurnRate, 0, 30)
	case "Forms":
		f.header("Aggregation")
		f.check("Enabled", &s.Aggregation.Enabled)
		f.slider("Strength", &s.Aggregation.Strength, 0, 1)
		f.slider("Distance", &s.Aggregation.Distance, 1, 100)
		f.slider("Spacing", &s.Aggregation.Spacing, 1, 100)
		f.intSlider("Max links", &s.Aggregation.MaxLinks, 0, 8)
		f.check("Stick on connect", &s.Aggregation.StickOnConnect)
		f.header("DLA")
		f.check("Enabled", &s.DLA.Enabled)
		f.intSlider("Seeds", &s.DLA.SeedCount, 0, 20)
		f.slider("Stick dist", &s.DLA.StickDistance, 1, 50)
		f.slider("Stick prob", &s.DLA.StickProbability, 0, 1)
		f.check("Draw lines", &s.DLA.DrawLines)
	case "Field":
		f.header("Color field")
		f.check("Force", &s.ColorField.ForceEnabled)
		f.slider("Force str.", &s.ColorField.ForceStrength, 0, 1)
		f.check("Displacement", &s.ColorField.DisplacementEnabled)
		f.slider("Disp. str.", &s.ColorField.DisplacementStrength, 0, 5)
		f.slider("Min angle", &s.ColorField.MinAngle, 0, 360)
		f.slider("Max angle", &s.ColorField.MaxAngle, 0, 360)
		f.slider("Lookahead", &s.ColorField.SampleDistance, 0, 50)
	}

	res.Changed = f.changed
	return res
}

// form lays widgets out top to bottom and records whether any value moved.
type form struct {
	r       *Renderer
	x, y, w float32
	changed bool
}

func (f *form) header(title string) {
	f.y = float32(f.r.DrawSectionHeader(int32(f.x), int32(f.y), title)) + 2
}

func (f *form) slider(label string, v *float64, lo, hi float32) {
	th := f.r.Theme
	rl.DrawText(label, int32(f.x), int32(f.y)+2, th.FontSize, th.LabelColor)
	bounds := rl.Rectangle{X: f.x + float32(th.LabelWidth), Y: f.y, Width: f.w - float32(th.LabelWidth) - 48, Height: 16}
	next := gui.SliderBar(bounds, "", "", float32(*v), lo, hi)
	rl.DrawText(fmt.Sprintf("%.2f", *v), int32(bounds.X+bounds.Width)+6, int32(f.y)+2, th.FontSize, th.ValueColor)
	if next != float32(*v) {
		*v = float64(next)
		f.changed = true
	}
	f.y += 20
}

func (f *form) intSlider(label string, v *int, lo, hi int) {
	x := float64(*v)
	before := f.changed
	f.changed = false
	f.slider(label, &x, float32(lo), float32(hi))
	if f.changed && int(x+0.5) != *v {
		*v = int(x + 0.5)
	} else {
		f.changed = false
	}
	f.changed = f.changed || before
}

func (f *form) check(label string, v *bool) {
	next := gui.CheckBox(rl.Rectangle{X: f.x, Y: f.y, Width: 14, Height: 14}, label, *v)
	if next != *v {
		*v = next
		f.changed = true
	}
	f.y += 20
}

// cycle shows a button that steps v through options.
func (f *form) cycle(label string, v *string, options []string) {
	th := f.r.Theme
	rl.DrawText(label, int32(f.x), int32(f.y)+3, th.FontSize, th.LabelColor)
	bounds := rl.Rectangle{X: f.x + float32(th.LabelWidth), Y: f.y, Width: f.w - float32(th.LabelWidth), Height: 18}
	if gui.Button(bounds, *v) {
		*v = NextOption(options, *v)
		f.changed = true
	}
	f.y += 22
}

// NextOption returns the option after cur, wrapping around. An unknown cur
// yields the first option.
func NextOption(options []string, cur string) string {
	if len(options) == 0 {
		return cur
	}
	i := slices.Index(options, cur)
	return options[(i+1)%len(options)]
}

func toggleText(on bool, onText, offText string) string {
	if on {
		return onText
	}
	return offText
}
