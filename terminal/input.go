package terminal

import (
	"log/slog"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/swarmpaint/game"
)

// runeCommands binds printable keys to game commands.
var runeCommands = map[rune]game.Command{
	' ': game.CmdTogglePause,
	'n': game.CmdStep,
	'c': game.CmdClear,
	'x': game.CmdClearObstacles,
	'd': game.CmdDeleteSelected,
	'f': game.CmdToggleSelectedFill,
	'=': game.CmdGrowSelected,
	'-': game.CmdShrinkSelected,
	'[': game.CmdRotateSelectedLeft,
	']': game.CmdRotateSelectedRight,
	'i': game.CmdTogglePaintMode,
	'k': game.CmdNextBoundary,
	'e': game.CmdExport,
}

// HandleEvent applies one terminal event and reports whether the preview
// should keep running.
func (p *Preview) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return p.handleKey(ev)
	case *tcell.EventMouse:
		p.handleMouse(ev)
	case *tcell.EventResize:
		p.screen.Sync()
		p.Draw()
	}
	return true
}

func (p *Preview) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyUp:
		p.cursorY--
	case tcell.KeyDown:
		p.cursorY++
	case tcell.KeyLeft:
		p.cursorX--
	case tcell.KeyRight:
		p.cursorX++
	case tcell.KeyEnter:
		pt := p.grid().center(p.cursorX, p.cursorY)
		p.g.PointerDown(pt)
		p.g.PointerUp(pt)
	case tcell.KeyRune:
		return p.handleRune(ev.Rune())
	}
	p.clampCursor(p.grid())
	return true
}

func (p *Preview) handleRune(r rune) bool {
	if r == 'q' {
		return false
	}
	if r >= '1' && r <= '9' {
		tools := game.Tools()
		if i := int(r - '1'); i < len(tools) {
			p.g.SetTool(tools[i])
			p.message = tools[i].String()
		}
		return true
	}
	if cmd, ok := runeCommands[r]; ok {
		p.message = cmd.String()
		if cmd == game.CmdExport {
			path, err := p.g.ExportTick()
			if err != nil {
				slog.Error("export failed", "error", err)
				p.message = "export failed"
			} else {
				p.message = path
			}
			return true
		}
		if err := p.g.Do(cmd); err != nil {
			slog.Error("command failed", "command", cmd.String(), "error", err)
		}
	}
	return true
}

// handleMouse turns button 1 presses, drags and releases into pointer calls.
func (p *Preview) handleMouse(ev *tcell.EventMouse) {
	gr := p.grid()
	x, y := ev.Position()
	onCanvas := x >= 0 && y >= 0 && x < gr.cols && y < gr.rows
	pt := gr.center(x, y)
	down := ev.Buttons()&tcell.Button1 != 0

	switch {
	case down && !p.mouseDown && onCanvas:
		p.mouseDown = true
		p.cursorX, p.cursorY = x, y
		p.g.PointerDown(pt)
	case down && p.mouseDown:
		p.cursorX, p.cursorY = x, y
		p.clampCursor(gr)
		p.g.PointerMove(pt)
	case !down && p.mouseDown:
		p.mouseDown = false
		p.g.PointerUp(pt)
	}
}
