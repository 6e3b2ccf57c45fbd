package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/swarmpaint/camera"
	"github.com/pthm-cable/swarmpaint/game"
	"github.com/pthm-cable/swarmpaint/ui"
)

// keyCommands binds keys to game commands.
var keyCommands = map[int32]game.Command{
	rl.KeySpace:        game.CmdTogglePause,
	rl.KeyN:            game.CmdStep,
	rl.KeyC:            game.CmdClear,
	rl.KeyX:            game.CmdClearObstacles,
	rl.KeyDelete:       game.CmdDeleteSelected,
	rl.KeyBackspace:    game.CmdDeleteSelected,
	rl.KeyF:            game.CmdToggleSelectedFill,
	rl.KeyEqual:        game.CmdGrowSelected,
	rl.KeyMinus:        game.CmdShrinkSelected,
	rl.KeyLeftBracket:  game.CmdRotateSelectedLeft,
	rl.KeyRightBracket: game.CmdRotateSelectedRight,
	rl.KeyI:            game.CmdTogglePaintMode,
	rl.KeyK:            game.CmdNextBoundary,
	rl.KeyE:            game.CmdExport,
}

// keyTools binds the number row to tools in display order.
var keyTools = map[int32]game.Tool{
	rl.KeyOne:   game.ToolPaint,
	rl.KeyTwo:   game.ToolErase,
	rl.KeyThree: game.ToolRectangle,
	rl.KeyFour:  game.ToolFreehand,
	rl.KeyFive:  game.ToolSelect,
}

// controlsLegend is shown along the bottom of the window.
const controlsLegend = "1-5 tools | Space pause | N step | C clear | X clear shapes | E export | I paint | K boundary | [ ] rotate | -/= size | F fill | Tab panel | RMB pan | wheel zoom | Home reset"

// Input maps mouse and keyboard state onto game pointer calls and commands.
type Input struct {
	cam      *camera.Camera
	controls *ui.ControlsPanel
	layers   *ui.OverlayRegistry

	pressed bool // left button went down on the canvas
	pointer r2.Vec
}

// NewInput creates an input mapper.
func NewInput(cam *camera.Camera, controls *ui.ControlsPanel, layers *ui.OverlayRegistry) *Input {
	return &Input{cam: cam, controls: controls, layers: layers}
}

// Pointer returns the mouse position in canvas coordinates.
func (in *Input) Pointer() r2.Vec {
	return in.pointer
}

// Handle polls raylib input for one frame and forwards it to the game.
// It returns the commands triggered by keys.
func (in *Input) Handle(g *game.Game) []game.Command {
	mouse := rl.GetMousePosition()
	wx, wy := in.cam.ScreenToWorld(mouse.X, mouse.Y)
	in.pointer = r2.Vec{X: float64(wx), Y: float64(wy)}

	in.handleView(mouse)
	in.handlePointer(g, mouse)
	return in.handleKeys(g)
}

func (in *Input) handleView(mouse rl.Vector2) {
	if !in.cam.InViewport(mouse.X, mouse.Y) || in.controls.Contains(mouse.X, mouse.Y) {
		return
	}
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		in.cam.ZoomAt(float32(math.Pow(1.1, float64(wheel))), mouse.X, mouse.Y)
	}
	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		d := rl.GetMouseDelta()
		in.cam.Pan(-d.X, -d.Y)
	}
}

func (in *Input) handlePointer(g *game.Game, mouse rl.Vector2) {
	overCanvas := in.cam.InViewport(mouse.X, mouse.Y) && !in.controls.Contains(mouse.X, mouse.Y)

	switch {
	case rl.IsMouseButtonPressed(rl.MouseButtonLeft) && overCanvas:
		in.pressed = true
		g.PointerDown(in.pointer)
	case in.pressed && rl.IsMouseButtonReleased(rl.MouseButtonLeft):
		in.pressed = false
		g.PointerUp(in.pointer)
	case in.pressed:
		g.PointerMove(in.pointer)
	}
}

func (in *Input) handleKeys(g *game.Game) []game.Command {
	var cmds []game.Command
	for key := rl.GetKeyPressed(); key != 0; key = rl.GetKeyPressed() {
		if cmd, ok := keyCommands[key]; ok {
			cmds = append(cmds, cmd)
			continue
		}
		if tool, ok := keyTools[key]; ok {
			g.SetTool(tool)
			continue
		}
		switch key {
		case rl.KeyTab:
			in.controls.Toggle()
		case rl.KeyHome:
			in.cam.Reset()
		default:
			in.layers.HandleKeyPress(key)
		}
	}
	return cmds
}
