// Package renderer draws the simulation: a raylib window with pan/zoom and
// panels, and a tcell terminal preview.
package renderer

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/swarmpaint/agents"
	"github.com/pthm-cable/swarmpaint/background"
	"github.com/pthm-cable/swarmpaint/camera"
	"github.com/pthm-cable/swarmpaint/components"
	"github.com/pthm-cable/swarmpaint/game"
	"github.com/pthm-cable/swarmpaint/obstacles"
	"github.com/pthm-cable/swarmpaint/ui"
)

// maxBackgroundSide caps the rasterized background texture resolution.
const maxBackgroundSide = 512

var (
	canvasColor     = rl.Color{R: 12, G: 14, B: 18, A: 255}
	canvasBorder    = rl.Color{R: 60, G: 70, B: 80, A: 255}
	obstacleColor   = rl.Color{R: 220, G: 90, B: 80, A: 255}
	decorativeColor = rl.Color{R: 140, G: 140, B: 150, A: 255}
	selectedColor   = rl.Yellow
	previewColor    = rl.Color{R: 255, G: 255, B: 255, A: 160}
	dlaLineColor    = rl.Color{R: 230, G: 230, B: 240, A: 200}
)

// Canvas draws the game state in canvas coordinates through a camera.
type Canvas struct {
	cam *camera.Camera

	bgTex    rl.Texture2D
	hasBg    bool
	bgSource background.Sampler
}

// NewCanvas creates a canvas renderer viewing through cam.
func NewCanvas(cam *camera.Camera) *Canvas {
	return &Canvas{cam: cam}
}

// SetBackground rasterizes the sampler into a texture. Calling it again with
// the same sampler is a no-op.
func (c *Canvas) SetBackground(s background.Sampler, canvasW, canvasH float64) {
	if s == c.bgSource && (c.hasBg || s == nil) {
		return
	}
	c.unloadBackground()
	c.bgSource = s
	if s == nil {
		return
	}

	w, h := textureSize(canvasW, canvasH)
	gray := background.Rasterize(scaledSampler{s, canvasW / float64(w), canvasH / float64(h)}, w, h)

	pixels := make([]color.RGBA, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := gray.Pix[y*gray.Stride+x]
			pixels[y*w+x] = color.RGBA{R: v, G: v, B: v, A: 255}
		}
	}

	img := rl.GenImageColor(w, h, rl.Black)
	c.bgTex = rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	rl.SetTextureFilter(c.bgTex, rl.FilterBilinear)
	rl.UpdateTexture(c.bgTex, pixels)
	c.hasBg = true
}

// textureSize scales the canvas down so its longer side fits maxBackgroundSide.
func textureSize(canvasW, canvasH float64) (int, int) {
	scale := 1.0
	if m := max(canvasW, canvasH); m > maxBackgroundSide {
		scale = maxBackgroundSide / m
	}
	return max(1, int(canvasW*scale)), max(1, int(canvasH*scale))
}

// scaledSampler samples s at texel centers of a downscaled grid.
type scaledSampler struct {
	s      background.Sampler
	sx, sy float64
}

func (s scaledSampler) Brightness(x, y float64) (float64, bool) {
	return s.s.Brightness((x+0.5)*s.sx, (y+0.5)*s.sy)
}

func (c *Canvas) unloadBackground() {
	if c.hasBg {
		rl.UnloadTexture(c.bgTex)
		c.hasBg = false
	}
}

// Unload frees resources.
func (c *Canvas) Unload() {
	c.unloadBackground()
}

func (c *Canvas) camera2D() rl.Camera2D {
	return rl.Camera2D{
		Offset: rl.Vector2{X: c.cam.ViewportX + c.cam.ViewportW/2, Y: c.cam.ViewportY + c.cam.ViewportH/2},
		Target: rl.Vector2{X: c.cam.X, Y: c.cam.Y},
		Zoom:   c.cam.Zoom,
	}
}

// Draw renders every enabled layer plus tool previews.
func (c *Canvas) Draw(g *game.Game, layers *ui.OverlayRegistry, pointer r2.Vec) {
	s := g.Settings()
	w, h := float32(s.Canvas.Width), float32(s.Canvas.Height)
	px := 1 / c.cam.Zoom // one screen pixel in canvas units

	rl.BeginScissorMode(int32(c.cam.ViewportX), int32(c.cam.ViewportY), int32(c.cam.ViewportW), int32(c.cam.ViewportH))
	rl.BeginMode2D(c.camera2D())

	rl.DrawRectangleRec(rl.Rectangle{Width: w, Height: h}, canvasColor)
	if c.hasBg && layers.IsEnabled(ui.OverlayBackground) {
		src := rl.Rectangle{Width: float32(c.bgTex.Width), Height: float32(c.bgTex.Height)}
		rl.DrawTexturePro(c.bgTex, src, rl.Rectangle{Width: w, Height: h}, rl.Vector2{}, 0, rl.Color{R: 255, G: 255, B: 255, A: 90})
	}
	rl.DrawRectangleLinesEx(rl.Rectangle{Width: w, Height: h}, px, canvasBorder)

	if layers.IsEnabled(ui.OverlayObstacles) {
		c.drawObstacles(g, px)
	}
	if layers.IsEnabled(ui.OverlayTrails) {
		c.drawTrails(g.Store())
	}
	if layers.IsEnabled(ui.OverlayLines) {
		c.drawLines(g)
	}
	if layers.IsEnabled(ui.OverlayAgents) {
		c.drawAgents(g.Store(), px, layers.IsEnabled(ui.OverlayHeadings))
	}
	c.drawPreviews(g, px, pointer)

	rl.EndMode2D()
	rl.EndScissorMode()
}

func (c *Canvas) drawObstacles(g *game.Game, px float32) {
	for _, o := range g.Obstacles().All() {
		col, thick := decorativeColor, px
		if o.IsObstacle {
			col, thick = obstacleColor, 2*px
		}
		drawRing(o.Points(), thick, col)
	}
	if o, ok := g.Selected(); ok {
		drawRing(o.Points(), 3*px, selectedColor)
		ctr := vec(o.Centroid())
		rl.DrawCircleV(ctr, 3*px, selectedColor)
	}
}

func (c *Canvas) drawTrails(store *agents.Store) {
	store.ForEach(func(v agents.View) {
		if v.Trail.Hidden {
			return
		}
		col := rl.Color(v.Agent.Stroke)
		for _, seg := range v.Trail.Segments {
			for i := 1; i < len(seg); i++ {
				rl.DrawLineV(vec(seg[i-1]), vec(seg[i]), col)
			}
		}
	})
}

func (c *Canvas) drawLines(g *game.Game) {
	for _, l := range g.Lines() {
		col := dlaLineColor
		if l.Branch != 0 {
			col = branchColor(l.Branch)
		}
		rl.DrawLineV(vec(l.From), vec(l.To), col)
	}
}

// branchColor spreads branch ids around the hue wheel.
func branchColor(branch int) rl.Color {
	hue := float64((branch * 47) % 360)
	r, g, b := colorful.Hsv(hue, 0.55, 0.95).RGB255()
	return rl.Color{R: r, G: g, B: b, A: 220}
}

func (c *Canvas) drawAgents(store *agents.Store, px float32, headings bool) {
	store.ForEach(func(v agents.View) {
		p := vec(r2.Vec(*v.Pos))
		radius := 3 * px
		if v.Agent.State == components.StateSeed {
			radius = 5 * px
		}
		if !c.cam.IsVisible(p.X, p.Y, radius) {
			return
		}
		rl.DrawCircleV(p, radius, rl.Color(v.Agent.Fill))
		rl.DrawCircleLinesV(p, radius, rl.Color(v.Agent.Stroke))
		if headings && v.Agent.State.Moving() {
			tip := r2.Add(r2.Vec(*v.Pos), r2.Scale(10, r2.Vec(*v.Vel)))
			rl.DrawLineV(p, vec(tip), previewColor)
		}
	})
}

func (c *Canvas) drawPreviews(g *game.Game, px float32, pointer r2.Vec) {
	if lo, hi, ok := g.DragRect(); ok {
		rect := rl.Rectangle{X: float32(lo.X), Y: float32(lo.Y), Width: float32(hi.X - lo.X), Height: float32(hi.Y - lo.Y)}
		rl.DrawRectangleLinesEx(rect, px, previewColor)
	}
	if draft := g.FreehandDraft(); len(draft) > 1 {
		for i := 1; i < len(draft); i++ {
			rl.DrawLineV(vec(draft[i-1]), vec(draft[i]), previewColor)
		}
	}

	s := g.Settings()
	switch g.Tool() {
	case game.ToolPaint:
		rl.DrawCircleLinesV(vec(pointer), float32(s.Spawn.BrushRadius), previewColor)
	case game.ToolErase:
		rl.DrawCircleLinesV(vec(pointer), float32(s.Spawn.EraseRadius), obstacleColor)
	}
}

func drawRing(pts []r2.Vec, thick float32, col rl.Color) {
	for i := range pts {
		next := pts[(i+1)%len(pts)]
		rl.DrawLineEx(vec(pts[i]), vec(next), thick, col)
	}
}

func vec(p r2.Vec) rl.Vector2 {
	return rl.Vector2{X: float32(p.X), Y: float32(p.Y)}
}

// describeObstacle is a one-line summary for the HUD.
func describeObstacle(o *obstacles.Obstacle) string {
	kind := o.Kind.String()
	if !o.IsObstacle {
		kind += " (decor)"
	}
	return kind
}
