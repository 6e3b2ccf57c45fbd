package agents

import (
	"fmt"
	"image/color"
	"math/rand"

	"github.com/lucasb-eyer/go-colorful"
)

// Color modes for spawned agents.
const (
	ColorRandom   = "random"
	ColorGradient = "gradient"
)

// Colors are the stroke (trail and marker outline) and fill of an agent.
type Colors struct {
	Stroke color.RGBA
	Fill   color.RGBA
}

// Palette picks agent colors from a list of hex colors.
type Palette struct {
	colors []colorful.Color
	mode   string
}

// NewPalette parses hex colors such as "#ff8800".
func NewPalette(hexes []string, mode string) (*Palette, error) {
	p := &Palette{mode: mode}
	for _, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			return nil, fmt.Errorf("parsing palette color %q: %w", h, err)
		}
		p.colors = append(p.colors, c)
	}
	if len(p.colors) == 0 {
		p.colors = []colorful.Color{{R: 1, G: 1, B: 1}}
	}
	return p, nil
}

// Pick returns colors for a new agent. t in [0, 1] places the agent along
// the palette in gradient mode and is ignored in random mode.
func (p *Palette) Pick(rng *rand.Rand, t float64) Colors {
	var c colorful.Color
	switch {
	case len(p.colors) == 1:
		c = p.colors[0]
	case p.mode == ColorGradient:
		c = p.gradient(t)
	default:
		c = p.colors[rng.Intn(len(p.colors))]
	}
	fill := c.BlendLab(colorful.Color{R: 1, G: 1, B: 1}, 0.35)
	return Colors{Stroke: toRGBA(c, 255), Fill: toRGBA(fill, 200)}
}

func (p *Palette) gradient(t float64) colorful.Color {
	if t <= 0 {
		return p.colors[0]
	}
	if t >= 1 {
		return p.colors[len(p.colors)-1]
	}
	pos := t * float64(len(p.colors)-1)
	i := int(pos)
	return p.colors[i].BlendLab(p.colors[i+1], pos-float64(i)).Clamped()
}

func toRGBA(c colorful.Color, a uint8) color.RGBA {
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: a}
}

// Swatches returns the palette's stroke colors in order.
func (p *Palette) Swatches() []color.RGBA {
	out := make([]color.RGBA, len(p.colors))
	for i, c := range p.colors {
		out[i] = toRGBA(c, 255)
	}
	return out
}
