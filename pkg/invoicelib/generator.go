package invoicelib

import (
	"context"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/rezonia/invoice-generator/internal/codec"
	"github.com/rezonia/invoice-generator/internal/model"
	"github.com/rezonia/invoice-generator/internal/render"
	"github.com/rezonia/invoice-generator/internal/sequence"
)

// Options configures a Generator
type Options struct {
	// FontFile forces a TrueType font; empty means automatic selection
	FontFile string
	// FontSearchPaths replaces the system fonts tried before the built-in
	// font. Nil keeps the defaults.
	FontSearchPaths []string

	LogoPolicy LogoPolicy
	// LogoWidth and LogoMaxHeight are in points
	LogoWidth     float64
	LogoMaxHeight float64

	// Sequence issues invoice numbers (default: in-memory, starting at 1)
	Sequence Sequence
	Logger   *zap.Logger
	Now      func() time.Time
}

// DefaultOptions returns default generator options
func DefaultOptions() Options {
	return Options{
		LogoPolicy:    LogoSkip,
		LogoWidth:     render.DefaultLogoWidth,
		LogoMaxHeight: render.DefaultLogoMaxHeight,
	}
}

// Generator creates, reads, writes and renders invoices
type Generator struct {
	seq      sequence.Generator
	decoder  *codec.Decoder
	renderer *render.Renderer
	now      func() time.Time
}

// NewGenerator creates a generator with the given options
func NewGenerator(opts Options) *Generator {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	seq := opts.Sequence
	if seq == nil {
		seq = sequence.NewMemory()
	}

	renderOpts := []render.Option{
		render.WithLogoPolicy(opts.LogoPolicy),
		render.WithLogger(opts.Logger),
	}
	if opts.FontFile != "" {
		renderOpts = append(renderOpts, render.WithFontFile(opts.FontFile))
	}
	if opts.FontSearchPaths != nil {
		renderOpts = append(renderOpts, render.WithFontSearchPaths(opts.FontSearchPaths...))
	}
	if opts.LogoWidth > 0 {
		renderOpts = append(renderOpts, render.WithLogoSize(opts.LogoWidth, opts.LogoMaxHeight))
	}

	return &Generator{
		seq:      seq,
		decoder:  &codec.Decoder{Now: now},
		renderer: render.New(renderOpts...),
		now:      now,
	}
}

// NewDefaultGenerator creates a generator with default options
func NewDefaultGenerator() *Generator {
	return NewGenerator(DefaultOptions())
}

// New returns an empty invoice with the next number and today's date
func (g *Generator) New(ctx context.Context) (*Invoice, error) {
	n, err := g.seq.Next(ctx)
	if err != nil {
		return nil, err
	}
	return model.New(sequence.Format(n), g.now()), nil
}

// Decode parses an invoice document
func (g *Generator) Decode(data []byte) (*Invoice, error) {
	return g.decoder.Decode(data)
}

// Read parses an invoice document from r
func (g *Generator) Read(r io.Reader) (*Invoice, error) {
	return g.decoder.Read(r)
}

// Load reads the invoice document at path
func (g *Generator) Load(path string) (*Invoice, error) {
	return g.decoder.Load(path)
}

// Encode serializes an invoice document
func (g *Generator) Encode(inv *Invoice) ([]byte, error) {
	return codec.Encode(inv)
}

// Save writes the invoice document to path
func (g *Generator) Save(path string, inv *Invoice) error {
	return codec.Save(path, inv)
}

// Totals computes subtotal, VAT and grand total
func (g *Generator) Totals(inv *Invoice) Totals {
	return inv.ComputeTotals()
}

// Render writes inv as a PDF to w
func (g *Generator) Render(inv *Invoice, w io.Writer) (*RenderResult, error) {
	return g.renderer.Render(inv, w)
}

// RenderFile writes inv as a PDF to path
func (g *Generator) RenderFile(inv *Invoice, path string) (*RenderResult, error) {
	return g.renderer.RenderFile(inv, path)
}
