package game

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Tool selects what pointer input does on the canvas.
type Tool uint8

const (
	ToolPaint Tool = iota
	ToolErase
	ToolRectangle
	ToolFreehand
	ToolSelect
)

var toolNames = [...]string{"paint", "erase", "rectangle", "freehand", "select"}

func (t Tool) String() string {
	if int(t) < len(toolNames) {
		return toolNames[t]
	}
	return fmt.Sprintf("tool(%d)", t)
}

// ParseTool maps a tool name to its Tool.
func ParseTool(name string) (Tool, error) {
	for i, n := range toolNames {
		if n == name {
			return Tool(i), nil
		}
	}
	return 0, fmt.Errorf("unknown tool %q", name)
}

// minRectSize is the smallest drag, per side, that creates a rectangle.
const minRectSize = 2.0

type pointerState struct {
	down     bool
	start    r2.Vec // where the drag began
	last     r2.Vec // previous pointer position
	lastDab  r2.Vec // where the paint tool last spawned
	selected int    // obstacle ID held by the select tool, 0 = none
}

// SetTool switches tools, finishing any drag in progress.
func (g *Game) SetTool(t Tool) {
	if g.pointer.down {
		g.PointerUp(g.pointer.last)
	}
	g.tool = t
}

// Tool returns the active tool.
func (g *Game) Tool() Tool { return g.tool }

// PointerDown starts a press at p.
func (g *Game) PointerDown(p r2.Vec) {
	g.pointer.down = true
	g.pointer.start, g.pointer.last = p, p

	switch g.tool {
	case ToolPaint:
		g.SpawnAt(p)
		g.pointer.lastDab = p
	case ToolErase:
		g.EraseAt(p)
	case ToolFreehand:
		g.obstacles.BeginFreehand(p)
	case ToolSelect:
		g.pointer.selected = 0
		if o, ok := g.obstacles.HitTest(p); ok {
			g.pointer.selected = o.ID
		}
	}
}

// PointerMove reports the pointer at p. Moves without a press are ignored.
func (g *Game) PointerMove(p r2.Vec) {
	if !g.pointer.down {
		return
	}
	prev := g.pointer.last
	g.pointer.last = p

	switch g.tool {
	case ToolPaint:
		// Space dabs half a brush apart so a slow drag does not pile agents up.
		spacing := math.Max(g.settings.Spawn.BrushRadius/2, 1)
		if r2.Norm(r2.Sub(p, g.pointer.lastDab)) >= spacing {
			g.SpawnAt(p)
			g.pointer.lastDab = p
		}
	case ToolErase:
		g.EraseAt(p)
	case ToolFreehand:
		if o := g.obstacles.ExtendFreehand(p); o != nil {
			// The path closed on itself; the press is spent.
			g.pointer.down = false
		}
	case ToolSelect:
		if g.pointer.selected != 0 {
			g.obstacles.Move(g.pointer.selected, r2.Sub(p, prev))
		}
	}
}

// PointerUp ends the press at p.
func (g *Game) PointerUp(p r2.Vec) {
	if !g.pointer.down {
		return
	}
	g.PointerMove(p)
	if !g.pointer.down {
		return
	}
	g.pointer.down = false

	switch g.tool {
	case ToolRectangle:
		size := r2.Sub(p, g.pointer.start)
		if math.Abs(size.X) >= minRectSize && math.Abs(size.Y) >= minRectSize {
			center := r2.Scale(0.5, r2.Add(p, g.pointer.start))
			g.obstacles.AddRectangle(center, size)
		}
	case ToolFreehand:
		g.obstacles.EndFreehand()
	}
}

// DragRect returns the rectangle being dragged, for preview drawing.
func (g *Game) DragRect() (lo, hi r2.Vec, ok bool) {
	if !g.pointer.down || g.tool != ToolRectangle {
		return r2.Vec{}, r2.Vec{}, false
	}
	a, b := g.pointer.start, g.pointer.last
	return r2.Vec{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y)},
		r2.Vec{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y)}, true
}

// FreehandDraft returns the freehand path being traced.
func (g *Game) FreehandDraft() []r2.Vec {
	if !g.obstacles.Drafting() {
		return nil
	}
	return g.obstacles.Draft()
}
