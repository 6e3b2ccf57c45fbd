// Package terminal renders a character-cell preview of the canvas with tcell
// and maps keys and mouse clicks onto game tools and commands.
package terminal

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"time"

	"github.com/gdamore/tcell/v2"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/swarmpaint/agents"
	"github.com/pthm-cable/swarmpaint/components"
	"github.com/pthm-cable/swarmpaint/game"
)

// DefaultFrame is the frame interval, about 30 FPS.
const DefaultFrame = 33 * time.Millisecond

var stateRunes = [components.NumStates]rune{
	components.StateActive:  '●',
	components.StateFrozen:  '○',
	components.StateStopped: '■',
	components.StateStuck:   '◆',
	components.StateSeed:    '@',
}

var (
	obstacleStyle   = tcell.StyleDefault.Foreground(tcell.ColorIndianRed)
	decorativeStyle = tcell.StyleDefault.Foreground(tcell.ColorGray)
	lineStyle       = tcell.StyleDefault.Foreground(tcell.ColorSilver)
	statusStyle     = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorSilver)
)

// Preview draws the game onto a tcell screen. The last row is a status line.
type Preview struct {
	screen tcell.Screen
	g      *game.Game
	frame  time.Duration

	cursorX, cursorY int  // cell the keyboard paints at
	mouseDown        bool // button 1 held on the canvas
	message          string
}

// New creates a preview on an initialized screen.
func New(screen tcell.Screen, g *game.Game) *Preview {
	screen.EnableMouse()
	cols, rows := screen.Size()
	return &Preview{
		screen:  screen,
		g:       g,
		frame:   DefaultFrame,
		cursorX: cols / 2,
		cursorY: max(rows-1, 1) / 2,
	}
}

// SetFrame changes the frame interval.
func (p *Preview) SetFrame(d time.Duration) {
	if d > 0 {
		p.frame = d
	}
}

// Run polls events on a goroutine and ticks, draws and handles input on the
// calling goroutine until ctx ends, the user quits or maxTicks (0 = unlimited)
// is reached.
func (p *Preview) Run(ctx context.Context, maxTicks uint64) error {
	ticker := time.NewTicker(p.frame)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := p.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	p.Draw()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-events:
			if !p.HandleEvent(ev) {
				return nil
			}
		case <-ticker.C:
			p.g.Update()
			p.Draw()
			if maxTicks > 0 && p.g.Tick() >= maxTicks {
				slog.Info("max ticks reached", "tick", p.g.Tick())
				return nil
			}
		}
	}
}

// grid maps canvas coordinates to cells.
type grid struct {
	cols, rows int
	sx, sy     float64 // canvas units per cell
}

func (p *Preview) grid() grid {
	cols, rows := p.screen.Size()
	rows-- // status line
	s := p.g.Settings()
	gr := grid{cols: max(cols, 0), rows: max(rows, 0)}
	if gr.cols > 0 && gr.rows > 0 {
		gr.sx = s.Canvas.Width / float64(gr.cols)
		gr.sy = s.Canvas.Height / float64(gr.rows)
	}
	return gr
}

func (gr grid) cell(v r2.Vec) (int, int, bool) {
	if gr.sx == 0 || gr.sy == 0 {
		return 0, 0, false
	}
	x := int(math.Floor(v.X / gr.sx))
	y := int(math.Floor(v.Y / gr.sy))
	return x, y, x >= 0 && y >= 0 && x < gr.cols && y < gr.rows
}

func (gr grid) center(x, y int) r2.Vec {
	return r2.Vec{X: (float64(x) + 0.5) * gr.sx, Y: (float64(y) + 0.5) * gr.sy}
}

// Draw renders one frame.
func (p *Preview) Draw() {
	p.screen.Clear()
	gr := p.grid()
	if gr.cols > 0 && gr.rows > 0 {
		p.drawObstacles(gr)
		p.drawTrails(gr)
		p.drawLines(gr)
		p.drawAgents(gr)
		p.drawCursor(gr)
	}
	p.drawStatus()
	p.screen.Show()
}

func (p *Preview) drawObstacles(gr grid) {
	if p.g.Obstacles().Len() == 0 {
		return
	}
	for y := 0; y < gr.rows; y++ {
		for x := 0; x < gr.cols; x++ {
			o, ok := p.g.ObstacleAt(gr.center(x, y))
			if !ok {
				continue
			}
			if o.IsObstacle {
				p.screen.SetContent(x, y, '▓', nil, obstacleStyle)
			} else {
				p.screen.SetContent(x, y, '░', nil, decorativeStyle)
			}
		}
	}
}

func (p *Preview) drawTrails(gr grid) {
	p.g.Store().ForEach(func(v agents.View) {
		if v.Trail.Hidden {
			return
		}
		style := tcell.StyleDefault.Foreground(rgb(v.Agent.Stroke))
		for _, seg := range v.Trail.Segments {
			for _, pt := range seg {
				if x, y, ok := gr.cell(pt); ok {
					p.screen.SetContent(x, y, '·', nil, style)
				}
			}
		}
	})
}

func (p *Preview) drawLines(gr grid) {
	for _, l := range p.g.Lines() {
		d := r2.Sub(l.To, l.From)
		steps := int(math.Ceil(math.Max(math.Abs(d.X)/gr.sx, math.Abs(d.Y)/gr.sy)))
		for i := 0; i <= steps; i++ {
			t := 0.0
			if steps > 0 {
				t = float64(i) / float64(steps)
			}
			if x, y, ok := gr.cell(r2.Add(l.From, r2.Scale(t, d))); ok {
				p.screen.SetContent(x, y, '∙', nil, lineStyle)
			}
		}
	}
}

func (p *Preview) drawAgents(gr grid) {
	p.g.Store().ForEach(func(v agents.View) {
		x, y, ok := gr.cell(r2.Vec(*v.Pos))
		if !ok {
			return
		}
		r := '?'
		if int(v.Agent.State) < len(stateRunes) {
			r = stateRunes[v.Agent.State]
		}
		p.screen.SetContent(x, y, r, nil, tcell.StyleDefault.Foreground(rgb(v.Agent.Stroke)))
	})
}

func (p *Preview) drawCursor(gr grid) {
	p.clampCursor(gr)
	mainc, combc, style, _ := p.screen.GetContent(p.cursorX, p.cursorY)
	if mainc == 0 {
		mainc = ' '
	}
	p.screen.SetContent(p.cursorX, p.cursorY, mainc, combc, style.Reverse(true))
}

func (p *Preview) drawStatus() {
	cols, rows := p.screen.Size()
	if rows < 1 {
		return
	}
	counts := p.g.Store().CountByState()
	state := "running"
	if p.g.Paused() {
		state = "paused"
	}
	text := fmt.Sprintf(" tick %d | %s | %s | active %d frozen %d stuck %d | shapes %d | %s",
		p.g.Tick(), state, p.g.Tool(),
		counts[components.StateActive], counts[components.StateFrozen],
		counts[components.StateStuck]+counts[components.StateSeed],
		p.g.Obstacles().Len(), p.message)

	y := rows - 1
	for x := 0; x < cols; x++ {
		p.screen.SetContent(x, y, ' ', nil, statusStyle)
	}
	x := 0
	for _, r := range text {
		if x >= cols {
			break
		}
		p.screen.SetContent(x, y, r, nil, statusStyle)
		x++
	}
}

func (p *Preview) clampCursor(gr grid) {
	p.cursorX = min(max(p.cursorX, 0), max(gr.cols-1, 0))
	p.cursorY = min(max(p.cursorY, 0), max(gr.rows-1, 0))
}

func rgb(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
