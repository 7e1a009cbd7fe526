package render

import (
	"fmt"
	"os"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"

	"github.com/rezonia/invoice-generator/internal/model"
)

// EmbeddedFontName identifies the font compiled into the binary
const EmbeddedFontName = "embedded:goregular"

// maxWriterRune is the last code point the PDF writer can encode
const maxWriterRune = 0xFFFF

// DefaultFontPaths lists Unicode TrueType fonts commonly installed on
// Linux, macOS and Windows, in order of preference
var DefaultFontPaths = []string{
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/TTF/DejaVuSans.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/noto/NotoSans-Regular.ttf",
	"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
	"/Library/Fonts/Arial Unicode.ttf",
	"/System/Library/Fonts/Supplemental/Arial Unicode.ttf",
	`C:\Windows\Fonts\arial.ttf`,
}

// Font is a parsed TrueType font
type Font struct {
	Name string
	Data []byte

	parsed *sfnt.Font
}

// LoadFont reads and parses a TrueType font file
func LoadFont(path string) (*Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, model.ErrFontUnavailable(fmt.Sprintf("cannot read font %s", path), err)
	}
	return ParseFont(path, data)
}

// ParseFont parses TrueType font data
func ParseFont(name string, data []byte) (*Font, error) {
	parsed, err := sfnt.Parse(data)
	if err != nil {
		return nil, model.ErrFontUnavailable(fmt.Sprintf("cannot parse font %s", name), err)
	}
	return &Font{Name: name, Data: data, parsed: parsed}, nil
}

// EmbeddedFont returns the Go Regular font, which covers Latin, Greek and
// Cyrillic scripts
func EmbeddedFont() *Font {
	f, err := ParseFont(EmbeddedFontName, goregular.TTF)
	if err != nil {
		panic(err)
	}
	return f
}

// Missing returns the first printable rune of texts that the font has no
// glyph for
func (f *Font) Missing(texts ...string) (rune, bool) {
	var buf sfnt.Buffer
	for _, s := range texts {
		for _, r := range s {
			if unicode.IsSpace(r) || unicode.IsControl(r) {
				continue
			}
			if r > maxWriterRune {
				return r, true
			}
			idx, err := f.parsed.GlyphIndex(&buf, r)
			if err != nil || idx == 0 {
				return r, true
			}
		}
	}
	return 0, false
}

// CheckFont reports the font that would be used for inv, or
// FONT_UNAVAILABLE if no candidate can print every character
func (r *Renderer) CheckFont(inv *model.Invoice) (string, error) {
	f, err := r.resolveFont(BuildView(inv).Texts())
	if err != nil {
		return "", err
	}
	return f.Name, nil
}

// resolveFont picks the first candidate font that has a glyph for every
// rune of texts. An explicitly configured font is the only candidate.
func (r *Renderer) resolveFont(texts []string) (*Font, error) {
	if r.fontFile != "" {
		f, err := LoadFont(r.fontFile)
		if err != nil {
			return nil, err
		}
		if missing, ok := f.Missing(texts...); ok {
			return nil, errMissingGlyph(f.Name, missing)
		}
		return f, nil
	}

	var lastMissing rune
	for _, path := range r.searchPaths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		f, err := LoadFont(path)
		if err != nil {
			r.logger.Debug("skipping unusable font", zap.String("path", path), zap.Error(err))
			continue
		}
		missing, ok := f.Missing(texts...)
		if !ok {
			return f, nil
		}
		lastMissing = missing
	}

	f := EmbeddedFont()
	missing, ok := f.Missing(texts...)
	if !ok {
		return f, nil
	}
	if lastMissing == 0 {
		lastMissing = missing
	}
	return nil, errMissingGlyph("any available font", lastMissing)
}

func errMissingGlyph(font string, r rune) error {
	return model.ErrFontUnavailable(fmt.Sprintf("%s has no glyph for %q (U+%04X)", font, r, r), nil)
}
