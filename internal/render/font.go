package render

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/gogpu/gg/text"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
)

// DefaultFont is the font a fresh context starts with.
const DefaultFont = "10px sans-serif"

// FontStyle selects a face variant within a family.
type FontStyle int

const (
	// FontStyleRegular is the upright, normal-weight face.
	FontStyleRegular FontStyle = iota
	// FontStyleBold is the bold face.
	FontStyleBold
	// FontStyleItalic is the italic face.
	FontStyleItalic
	// FontStyleBoldItalic is the bold italic face.
	FontStyleBoldItalic
)

// String returns the string representation of a FontStyle.
func (fs FontStyle) String() string {
	switch fs {
	case FontStyleRegular:
		return "regular"
	case FontStyleBold:
		return "bold"
	case FontStyleItalic:
		return "italic"
	case FontStyleBoldItalic:
		return "bold-italic"
	default:
		return "unknown"
	}
}

// Font is a parsed CSS font shorthand.
type Font struct {
	Italic   bool
	Weight   int
	Size     float64
	Families []string
	source   string
}

// Style maps the weight and slant onto a face variant.
func (f Font) Style() FontStyle {
	bold := f.Weight >= 600
	switch {
	case bold && f.Italic:
		return FontStyleBoldItalic
	case bold:
		return FontStyleBold
	case f.Italic:
		return FontStyleItalic
	}
	return FontStyleRegular
}

// String returns the shorthand the font was parsed from.
func (f Font) String() string {
	return f.source
}

// ParseFont parses a CSS font shorthand of the form
// "[style] [variant] [weight] size[/line-height] family[, family...]".
func ParseFont(s string) (Font, error) {
	s = strings.TrimSpace(s)
	f := Font{Weight: 400, source: s}
	fields := strings.Fields(s)

	i := 0
	for ; i < len(fields); i++ {
		tok := strings.ToLower(fields[i])
		switch tok {
		case "normal", "small-caps":
			continue
		case "italic", "oblique":
			f.Italic = true
			continue
		case "bold", "bolder":
			f.Weight = 700
			continue
		case "lighter":
			f.Weight = 300
			continue
		}
		if w, err := strconv.Atoi(tok); err == nil && w >= 1 && w <= 1000 {
			f.Weight = w
			continue
		}
		break
	}
	if i >= len(fields) {
		return Font{}, fmt.Errorf("%w: missing size in %q", ErrInvalidFont, s)
	}

	sizeTok, _, _ := strings.Cut(fields[i], "/")
	size, err := parseFontSize(sizeTok)
	if err != nil {
		return Font{}, fmt.Errorf("%w: %q: %w", ErrInvalidFont, s, err)
	}
	f.Size = size

	rest := strings.Join(fields[i+1:], " ")
	for _, fam := range strings.Split(rest, ",") {
		fam = strings.Trim(strings.TrimSpace(fam), `"'`)
		if fam != "" {
			f.Families = append(f.Families, fam)
		}
	}
	if len(f.Families) == 0 {
		return Font{}, fmt.Errorf("%w: missing family in %q", ErrInvalidFont, s)
	}
	return f, nil
}

func parseFontSize(tok string) (float64, error) {
	tok = strings.ToLower(tok)
	units := []struct {
		suffix string
		scale  float64
	}{
		{"px", 1},
		{"pt", 4.0 / 3.0},
		{"rem", 10},
		{"em", 10},
		{"%", 0.1},
	}
	for _, u := range units {
		if num, ok := strings.CutSuffix(tok, u.suffix); ok {
			v, err := strconv.ParseFloat(num, 64)
			if err != nil || v <= 0 {
				return 0, fmt.Errorf("bad size %q", tok)
			}
			return v * u.scale, nil
		}
	}
	return 0, fmt.Errorf("bad size %q", tok)
}

// FontFamily holds the face sources of one family keyed by style.
type FontFamily struct {
	name  string
	fonts map[FontStyle]*text.FontSource
}

// Name returns the family name.
func (ff *FontFamily) Name() string {
	return ff.name
}

func (ff *FontFamily) source(style FontStyle) *text.FontSource {
	if src, ok := ff.fonts[style]; ok {
		return src
	}
	if style == FontStyleBoldItalic {
		if src, ok := ff.fonts[FontStyleBold]; ok {
			return src
		}
	}
	return ff.fonts[FontStyleRegular]
}

// FontManager resolves CSS family names to font sources.
type FontManager struct {
	mu       sync.RWMutex
	families map[string]*FontFamily
	fallback string
}

var (
	defaultFontsOnce sync.Once
	defaultFonts     *FontManager
)

// DefaultFontManager returns the shared manager holding the embedded Go fonts.
func DefaultFontManager() *FontManager {
	defaultFontsOnce.Do(func() {
		defaultFonts = NewFontManager()
	})
	return defaultFonts
}

// NewFontManager creates a manager with the embedded Go fonts registered
// under their own names and the generic CSS families.
func NewFontManager() *FontManager {
	fm := &FontManager{
		families: make(map[string]*FontFamily),
		fallback: "go",
	}

	sans := map[FontStyle][]byte{
		FontStyleRegular:    goregular.TTF,
		FontStyleBold:       gobold.TTF,
		FontStyleItalic:     goitalic.TTF,
		FontStyleBoldItalic: gobolditalic.TTF,
	}
	mono := map[FontStyle][]byte{
		FontStyleRegular:    gomono.TTF,
		FontStyleBold:       gomonobold.TTF,
		FontStyleItalic:     gomonoitalic.TTF,
		FontStyleBoldItalic: gomonobolditalic.TTF,
	}
	for style, data := range sans {
		fm.mustRegister("go", style, data)
	}
	for style, data := range mono {
		fm.mustRegister("go mono", style, data)
	}
	for _, alias := range []string{"sans-serif", "serif", "system-ui", "cursive", "fantasy", "gosans"} {
		fm.families[alias] = fm.families["go"]
	}
	for _, alias := range []string{"monospace", "gomono"} {
		fm.families[alias] = fm.families["go mono"]
	}
	return fm
}

func (fm *FontManager) mustRegister(family string, style FontStyle, data []byte) {
	if err := fm.Register(family, style, data); err != nil {
		panic(fmt.Sprintf("embedded font %s/%s: %v", family, style, err))
	}
}

// Register parses font data and adds it to a family under the given style.
func (fm *FontManager) Register(family string, style FontStyle, data []byte) error {
	src, err := text.NewFontSource(data)
	if err != nil {
		return fmt.Errorf("parse font %s: %w", family, err)
	}

	key := strings.ToLower(family)
	fm.mu.Lock()
	defer fm.mu.Unlock()
	ff, ok := fm.families[key]
	if !ok {
		ff = &FontFamily{name: family, fonts: make(map[FontStyle]*text.FontSource)}
		fm.families[key] = ff
	}
	ff.fonts[style] = src
	return nil
}

// RegisterFile loads a TrueType or OpenType file into a family.
func (fm *FontManager) RegisterFile(family string, style FontStyle, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read font %s: %w", path, err)
	}
	return fm.Register(family, style, data)
}

// Face returns a face for the font at size*scale pixels, walking the
// family list and falling back to the Go font.
func (fm *FontManager) Face(f Font, scale float64) text.Face {
	fm.mu.RLock()
	defer fm.mu.RUnlock()

	size := f.Size * scale
	if size <= 0 {
		size = 10
	}
	for _, name := range f.Families {
		if ff, ok := fm.families[strings.ToLower(name)]; ok {
			if src := ff.source(f.Style()); src != nil {
				return src.Face(size)
			}
		}
	}
	return fm.families[fm.fallback].source(f.Style()).Face(size)
}
