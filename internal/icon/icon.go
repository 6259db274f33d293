// Package icon renders the extension's toolbar and store icons: a
// blue-to-purple gradient tile with rounded corners and a white "क" in the
// middle.
package icon

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/kabirdoha/dohakit/internal/extension"
	"github.com/pterm/pterm"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

const (
	// Glyph is drawn centred on every icon
	Glyph = "क"

	// FallbackGlyph is drawn when no available font covers Glyph
	FallbackGlyph = "K"

	glyphScale = 0.6

	// The glyph is lifted by size/glyphLift pixels so it sits optically
	// centred. The lift scales with the tile instead of a fixed 2px, which
	// leaves 16 and 48 px icons unshifted and moves 128 px up by 2.
	glyphLift = 64
)

var (
	GradientStart = color.NRGBA{R: 102, G: 126, B: 234, A: 255}
	GradientEnd   = color.NRGBA{R: 118, G: 75, B: 162, A: 255}
)

// Options tweaks rendering. The zero value draws the standard icon.
type Options struct {
	// Source, if set, is scaled onto the tile instead of the gradient and glyph.
	Source image.Image
	// Fonts overrides DefaultFonts.
	Fonts []FontCandidate
	// Out receives progress lines; nil means stdout.
	Out io.Writer
}

// Render draws a size×size icon.
func Render(size int, opts Options) (*image.NRGBA, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid icon size %d", size)
	}

	rect := image.Rect(0, 0, size, size)
	canvas := image.NewNRGBA(rect)
	if opts.Source != nil {
		draw.CatmullRom.Scale(canvas, rect, opts.Source, opts.Source.Bounds(), draw.Over, nil)
	} else {
		fillGradient(canvas)
		drawGlyph(canvas, opts.fonts())
	}

	// The mask goes on last so nothing drawn above can leak into the corners.
	out := image.NewNRGBA(rect)
	draw.DrawMask(out, rect, canvas, image.Point{}, roundedMask(size, size/5), image.Point{}, draw.Src)
	return out, nil
}

// Generate writes icon<N>.png into dir for every size and returns the paths
// written. dir is created if needed.
func Generate(dir string, sizes []int, opts Options) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create icon directory: %w", err)
	}

	success := pterm.Success
	if opts.Out != nil {
		success = *pterm.Success.WithWriter(opts.Out)
	}

	var written []string
	for _, size := range sizes {
		img, err := Render(size, opts)
		if err != nil {
			return written, err
		}
		path := filepath.Join(dir, extension.IconFileName(size))
		if err := savePNG(path, img); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", path, err)
		}
		success.Printf("Created %s (%dx%d)\n", filepath.Base(path), size, size)
		written = append(written, path)
	}
	return written, nil
}

// LoadSource decodes a PNG or JPEG logo to scale into icons.
func LoadSource(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return img, nil
}

func (o Options) fonts() []FontCandidate {
	if o.Fonts != nil {
		return o.Fonts
	}
	return DefaultFonts
}

func savePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// fillGradient paints a left-to-right blend from GradientStart to GradientEnd.
func fillGradient(img *image.NRGBA) {
	size := img.Bounds().Dx()
	for x := 0; x < size; x++ {
		c := color.NRGBA{
			R: lerp(GradientStart.R, GradientEnd.R, x, size),
			G: lerp(GradientStart.G, GradientEnd.G, x, size),
			B: lerp(GradientStart.B, GradientEnd.B, x, size),
			A: 255,
		}
		for y := 0; y < size; y++ {
			img.SetNRGBA(x, y, c)
		}
	}
}

func lerp(a, b uint8, i, n int) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*float64(i)/float64(n))
}

func drawGlyph(img *image.NRGBA, fonts []FontCandidate) {
	size := img.Bounds().Dx()
	face, text, name := resolveFace(fonts, Glyph, math.Max(1, float64(int(float64(size)*glyphScale))))
	defer face.Close()
	pterm.Debug.Printf("Drawing %q at %dpx with %s\n", text, size, name)

	b, _ := font.BoundString(face, text)
	w, h := b.Max.X-b.Min.X, b.Max.Y-b.Min.Y
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.White),
		Face: face,
		Dot: fixed.Point26_6{
			X: (fixed.I(size)-w)/2 - b.Min.X,
			Y: (fixed.I(size)-h)/2 - b.Min.Y - fixed.I(size/glyphLift),
		},
	}
	d.DrawString(text)
}

// roundedMask returns an opaque rounded rectangle covering the whole tile. A
// pixel is inside when its centre is within radius of the nearest point of
// the inner rectangle.
func roundedMask(size, radius int) *image.Alpha {
	mask := image.NewAlpha(image.Rect(0, 0, size, size))
	r := float64(radius)
	lo, hi := r, float64(size)-r
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			px, py := float64(x)+0.5, float64(y)+0.5
			dx := px - math.Min(math.Max(px, lo), hi)
			dy := py - math.Min(math.Max(py, lo), hi)
			if dx*dx+dy*dy <= r*r {
				mask.SetAlpha(x, y, color.Alpha{A: 255})
			}
		}
	}
	return mask
}
