// Package background provides the brightness fields sampled by the color-field forces.
package background

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"math"
	"os"

	"github.com/aquilax/go-perlin"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/ojrac/opensimplex-go"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/pthm-cable/swarmpaint/config"
)

// Sampler returns brightness in [0, 1] at a canvas position.
// ok is false when the position is outside the field or no data exists there.
type Sampler interface {
	Brightness(x, y float64) (b float64, ok bool)
}

// ImageField samples an image stretched over the canvas.
type ImageField struct {
	img           image.Image
	width, height float64
}

// NewImageField maps img onto a canvas of the given size.
func NewImageField(img image.Image, width, height float64) *ImageField {
	return &ImageField{img: img, width: width, height: height}
}

// LoadImageField decodes an image file (png, jpeg, bmp or webp).
func LoadImageField(path string, width, height float64) (*ImageField, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening background image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding background image: %w", err)
	}
	return NewImageField(img, width, height), nil
}

// Image returns the underlying image.
func (f *ImageField) Image() image.Image {
	return f.img
}

// Brightness returns the perceptual lightness of the pixel under (x, y).
func (f *ImageField) Brightness(x, y float64) (float64, bool) {
	if f == nil || f.img == nil {
		return 0, false
	}
	if x < 0 || y < 0 || x >= f.width || y >= f.height {
		return 0, false
	}
	b := f.img.Bounds()
	px := b.Min.X + int(x/f.width*float64(b.Dx()))
	py := b.Min.Y + int(y/f.height*float64(b.Dy()))
	if !(image.Point{X: px, Y: py}.In(b)) {
		return 0, false
	}
	return Lightness(f.img.At(px, py))
}

// Lightness converts a color to CIE L* in [0, 1]. Fully transparent pixels yield ok=false.
func Lightness(c interface{ RGBA() (r, g, b, a uint32) }) (float64, bool) {
	col, ok := colorful.MakeColor(c)
	if !ok {
		return 0, false
	}
	l, _, _ := col.Lab()
	return clamp01(l), true
}

// SimplexField is an OpenSimplex noise field.
type SimplexField struct {
	noise         opensimplex.Noise
	scale         float64
	width, height float64
}

// NewSimplexField creates a normalized simplex field.
func NewSimplexField(seed int64, scale, width, height float64) *SimplexField {
	return &SimplexField{
		noise:  opensimplex.NewNormalized(seed),
		scale:  scale,
		width:  width,
		height: height,
	}
}

// Brightness samples the noise at (x, y).
func (f *SimplexField) Brightness(x, y float64) (float64, bool) {
	if x < 0 || y < 0 || x >= f.width || y >= f.height {
		return 0, false
	}
	return clamp01(f.noise.Eval2(x*f.scale, y*f.scale)), true
}

// PerlinField is a classic Perlin noise field.
type PerlinField struct {
	noise         *perlin.Perlin
	scale         float64
	width, height float64
}

// NewPerlinField creates a Perlin field with three octaves.
func NewPerlinField(seed int64, scale, width, height float64) *PerlinField {
	return &PerlinField{
		noise:  perlin.NewPerlin(2, 2, 3, seed),
		scale:  scale,
		width:  width,
		height: height,
	}
}

// Brightness samples the noise at (x, y), mapped from [-1, 1] to [0, 1].
func (f *PerlinField) Brightness(x, y float64) (float64, bool) {
	if x < 0 || y < 0 || x >= f.width || y >= f.height {
		return 0, false
	}
	return clamp01(f.noise.Noise2D(x*f.scale, y*f.scale)*0.5 + 0.5), true
}

// FromConfig builds the sampler selected by the config. A nil sampler means
// no background. An image that is unset, missing or undecodable yields a nil
// sampler and a warning, so the color field contributes nothing.
func FromConfig(bg config.BackgroundConfig, canvas config.CanvasSettings) (Sampler, error) {
	w, h := canvas.Width, canvas.Height
	switch bg.Kind {
	case "", config.BackgroundNone:
		return nil, nil
	case config.BackgroundImage:
		if bg.ImagePath == "" {
			slog.Warn("background image not set, color field disabled")
			return nil, nil
		}
		f, err := LoadImageField(bg.ImagePath, w, h)
		if err != nil {
			slog.Warn("background image unavailable, color field disabled", "path", bg.ImagePath, "error", err)
			return nil, nil
		}
		return f, nil
	case config.BackgroundSimplex:
		return NewSimplexField(bg.Seed, bg.Scale, w, h), nil
	case config.BackgroundPerlin:
		return NewPerlinField(bg.Seed, bg.Scale, w, h), nil
	default:
		return nil, fmt.Errorf("unknown background kind %q", bg.Kind)
	}
}

// Rasterize renders a sampler into a grayscale image, for viewers that need a texture.
func Rasterize(s Sampler, width, height int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	if s == nil {
		return img
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			b, ok := s.Brightness(float64(x), float64(y))
			if !ok {
				continue
			}
			img.Pix[y*img.Stride+x] = uint8(math.Round(b * 255))
		}
	}
	return img
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
