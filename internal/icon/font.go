package icon

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

var errNoGlyph = errors.New("font has no glyph")

// FontCandidate is one entry of the font fallback chain. Exactly one of Path
// or Data is set.
type FontCandidate struct {
	Name string
	Path string
	Data []byte
}

// DefaultFonts is tried in order. Platform fonts that cover Devanagari come
// first, then the Arial paths the extension's icons were first drawn with,
// then the Go font that ships with x/image.
var DefaultFonts = []FontCandidate{
	{Name: "Devanagari Sangam MN", Path: "/System/Library/Fonts/Supplemental/Devanagari Sangam MN.ttc"},
	{Name: "Kohinoor Devanagari", Path: "/System/Library/Fonts/Kohinoor.ttc"},
	{Name: "Noto Sans Devanagari", Path: "/usr/share/fonts/truetype/noto/NotoSansDevanagari-Regular.ttf"},
	{Name: "Lohit Devanagari", Path: "/usr/share/fonts/truetype/lohit-devanagari/Lohit-Devanagari.ttf"},
	{Name: "Nirmala UI", Path: `C:\Windows\Fonts\Nirmala.ttf`},
	{Name: "Mangal", Path: `C:\Windows\Fonts\mangal.ttf`},
	{Name: "Arial", Path: "/System/Library/Fonts/Arial.ttf"},
	{Name: "Arial", Path: "arial.ttf"},
	{Name: "Go Regular", Data: goregular.TTF},
}

func (c FontCandidate) parse() (*opentype.Font, error) {
	data := c.Data
	if data == nil {
		var err error
		if data, err = os.ReadFile(c.Path); err != nil {
			return nil, err
		}
	}
	if strings.HasSuffix(strings.ToLower(c.Path), ".ttc") {
		coll, err := opentype.ParseCollection(data)
		if err != nil {
			return nil, err
		}
		return coll.Font(0)
	}
	return opentype.Parse(data)
}

func hasGlyphs(f *opentype.Font, text string) bool {
	var buf sfnt.Buffer
	for _, r := range text {
		idx, err := f.GlyphIndex(&buf, r)
		if err != nil || idx == 0 {
			return false
		}
	}
	return true
}

func newFace(f *opentype.Font, px float64) (font.Face, error) {
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    px,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// resolveFace walks the candidates and returns a face able to draw glyph at px
// pixels, along with the text it should draw. When no candidate covers glyph,
// the first font that loaded draws FallbackGlyph instead, and when nothing
// loaded at all the built-in bitmap face is used. It never fails.
func resolveFace(candidates []FontCandidate, glyph string, px float64) (font.Face, string, string) {
	var latin *opentype.Font
	var latinName string

	for _, c := range candidates {
		f, err := c.parse()
		if err != nil {
			pterm.Debug.Printf("Font %s unavailable: %v\n", c.label(), err)
			continue
		}
		if !hasGlyphs(f, glyph) {
			pterm.Debug.Printf("Font %s: %v for %q\n", c.label(), errNoGlyph, glyph)
			if latin == nil && hasGlyphs(f, FallbackGlyph) {
				latin, latinName = f, c.Name
			}
			continue
		}
		face, err := newFace(f, px)
		if err != nil {
			pterm.Debug.Printf("Font %s: %v\n", c.label(), err)
			continue
		}
		return face, glyph, c.Name
	}

	if latin != nil {
		if face, err := newFace(latin, px); err == nil {
			return face, FallbackGlyph, latinName
		}
	}
	return basicfont.Face7x13, FallbackGlyph, "basicfont 7x13"
}

func (c FontCandidate) label() string {
	if c.Path == "" {
		return c.Name
	}
	return fmt.Sprintf("%s (%s)", c.Name, c.Path)
}
