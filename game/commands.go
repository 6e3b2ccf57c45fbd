package game

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/swarmpaint/config"
)

// Command is a one-shot canvas command bound to a key or button.
type Command uint8

const (
	CmdNone Command = iota
	CmdTogglePause
	CmdStep
	CmdClear
	CmdClearObstacles
	CmdDeleteSelected
	CmdToggleSelectedFill
	CmdGrowSelected
	CmdShrinkSelected
	CmdRotateSelectedLeft
	CmdRotateSelectedRight
	CmdTogglePaintMode
	CmdNextBoundary
	CmdExport
)

var commandNames = [...]string{
	"none", "toggle-pause", "step", "clear", "clear-obstacles",
	"delete-selected", "toggle-selected-fill", "grow-selected", "shrink-selected",
	"rotate-selected-left", "rotate-selected-right", "toggle-paint-mode",
	"next-boundary", "export",
}

func (c Command) String() string {
	if int(c) < len(commandNames) {
		return commandNames[c]
	}
	return fmt.Sprintf("command(%d)", c)
}

const (
	resizeStep = 1.1
	rotateStep = 15.0 // degrees
)

// Do runs a command. Commands on the selection are no-ops without one.
func (g *Game) Do(c Command) error {
	switch c {
	case CmdNone:
	case CmdTogglePause:
		g.TogglePause()
	case CmdStep:
		g.Step()
	case CmdClear:
		g.Clear()
	case CmdClearObstacles:
		g.ClearObstacles()
	case CmdDeleteSelected:
		if o, ok := g.Selected(); ok {
			g.DeleteObstacle(o.ID)
		}
	case CmdToggleSelectedFill:
		if o, ok := g.Selected(); ok {
			g.SetObstacleFill(o.ID, !o.IsObstacle)
		}
	case CmdGrowSelected, CmdShrinkSelected:
		if o, ok := g.Selected(); ok {
			f := resizeStep
			if c == CmdShrinkSelected {
				f = 1 / resizeStep
			}
			g.ResizeObstacle(o.ID, f)
		}
	case CmdRotateSelectedLeft, CmdRotateSelectedRight:
		if o, ok := g.Selected(); ok {
			deg := rotateStep
			if c == CmdRotateSelectedLeft {
				deg = -rotateStep
			}
			g.RotateObstacle(o.ID, deg)
		}
	case CmdTogglePaintMode:
		s := g.Settings()
		s.Motion.PaintMode = !s.Motion.PaintMode
		return g.SetSettings(s)
	case CmdNextBoundary:
		s := g.Settings()
		s.Motion.Boundary = nextBoundary(s.Motion.Boundary)
		return g.SetSettings(s)
	case CmdExport:
		if _, err := g.ExportTick(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown command %d", c)
	}
	slog.Debug("command", "command", c.String(), "tick", g.tick)
	return nil
}

func nextBoundary(cur string) string {
	for i, b := range config.Boundaries {
		if b == cur {
			return config.Boundaries[(i+1)%len(config.Boundaries)]
		}
	}
	return config.Boundaries[0]
}

// Tools lists every tool in display order.
func Tools() []Tool {
	out := make([]Tool, len(toolNames))
	for i := range out {
		out[i] = Tool(i)
	}
	return out
}
