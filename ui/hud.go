package ui

import (
	"cmp"
	"fmt"
	"image/color"
	"slices"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/swarmpaint/components"
	"github.com/pthm-cable/swarmpaint/systems"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title    string
	Counts   [components.NumStates]int
	Lines    int
	Branches int
	Shapes   int
	Tick     uint64
	SimTime  float64
	FPS      int32
	Paused   bool
	Tool     string
	Palette  []color.RGBA
	Selected string // description of the selected shape, empty when none
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
	width    int32
}

// NewHUD creates a new HUD renderer.
func NewHUD(width int32) *HUD {
	return &HUD{
		renderer: NewRenderer(),
		width:    width,
	}
}

// Height returns the HUD panel height.
func (h *HUD) Height() int32 {
	th := h.renderer.Theme
	return th.LineHeight*13 + th.Padding*2
}

// Draw renders the HUD with its top-left corner at (x, y).
func (h *HUD) Draw(x, y int32, data HUDData) {
	r := h.renderer
	padding := r.Theme.Padding
	r.DrawPanel(x, y, h.width, h.Height())

	inner := h.width - padding*2
	x += padding
	y += padding

	rl.DrawText(data.Title, x, y, 16, rl.White)
	y += r.Theme.LineHeight + 4

	total := 0
	for _, n := range data.Counts {
		total += n
	}
	y = r.DrawLabelValue(x, y, "Agents", fmt.Sprintf("%d", total))
	y = r.DrawBar(x, y, "Active", data.Counts[components.StateActive], total, inner, r.Theme.ActiveColor)
	y = r.DrawBar(x, y, "Frozen", data.Counts[components.StateFrozen], total, inner, r.Theme.BarFill)
	y = r.DrawBar(x, y, "Stuck", data.Counts[components.StateStuck]+data.Counts[components.StateSeed], total, inner, rl.Orange)
	y = r.DrawLabelValue(x, y, "Lines", fmt.Sprintf("%d in %d branches", data.Lines, data.Branches))
	y = r.DrawLabelValue(x, y, "Shapes", fmt.Sprintf("%d", data.Shapes))
	y = r.DrawLabelValue(x, y, "Tick", fmt.Sprintf("%d (%.1fs)", data.Tick, data.SimTime))
	y = r.DrawLabelValue(x, y, "FPS", fmt.Sprintf("%d", data.FPS))
	y = r.DrawLabelValue(x, y, "Tool", data.Tool)
	if len(data.Palette) > 0 {
		y = r.DrawSwatches(x, y, "Palette", data.Palette)
	}
	if data.Selected != "" {
		y = r.DrawLabelValue(x, y, "Selected", data.Selected)
	}

	status := "Running"
	if data.Paused {
		status = "PAUSED"
	}
	rl.DrawText(status, x, y, r.Theme.HeaderFontSize, rl.Yellow)
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(x, screenHeight int32, controls string) {
	rl.DrawText(controls, x, screenHeight-25, 14, rl.Gray)
}

// PerfPanelData holds performance metrics for display.
type PerfPanelData struct {
	PhaseTimes     map[string]time.Duration
	Total          time.Duration
	TicksPerSecond float64
	AgentCost      time.Duration // agents phase time per live agent
	Registry       *systems.SystemRegistry
}

// PerfPanel renders the tick phase performance panel.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel, slowest phase first.
func (p *PerfPanel) Draw(data PerfPanelData) {
	x := p.x
	y := p.y

	rl.DrawText("Tick Performance", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("Total: %s (%.0f ticks/s)", data.Total.Round(time.Microsecond), data.TicksPerSecond), x, y, 14, rl.Yellow)
	y += 16
	if data.AgentCost > 0 {
		rl.DrawText(fmt.Sprintf("Per agent: %s", data.AgentCost), x, y, 14, rl.LightGray)
		y += 16
	}

	names := make([]string, 0, len(data.PhaseTimes))
	for name := range data.PhaseTimes {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		return cmp.Compare(data.PhaseTimes[b], data.PhaseTimes[a])
	})

	for _, name := range names {
		avg := data.PhaseTimes[name]
		pct := float64(0)
		if data.Total > 0 {
			pct = float64(avg) / float64(data.Total) * 100
		}

		col := rl.LightGray
		if pct > 50 {
			col = rl.Red
		} else if pct > 25 {
			col = rl.Orange
		}

		displayName := name
		if data.Registry != nil {
			displayName = data.Registry.GetName(name)
		}

		rl.DrawText(
			fmt.Sprintf("%-12s %8s %5.1f%%", displayName, avg.Round(time.Microsecond), pct),
			x, y, 12, col,
		)
		y += 14
	}
}
