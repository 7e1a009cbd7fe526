// Package render exports invoices as fixed-layout A4 PDF documents.
//
// Every string is checked against the selected font before anything is
// drawn, so a document never silently loses characters. Files are written
// atomically: a failed export leaves no output behind.
package render

import (
	"bytes"
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"

	"github.com/rezonia/invoice-generator/internal/atomicfile"
	"github.com/rezonia/invoice-generator/internal/model"
)

// Default logo geometry in points
const (
	DefaultLogoWidth     = 100.0
	DefaultLogoMaxHeight = 150.0
)

// Renderer turns invoices into PDF documents
type Renderer struct {
	fontFile      string
	searchPaths   []string
	logoPolicy    LogoPolicy
	logoWidth     float64
	logoMaxHeight float64
	verify        bool
	logger        *zap.Logger
}

// Option configures a Renderer
type Option func(*Renderer)

// WithFontFile forces a specific TrueType font file
func WithFontFile(path string) Option {
	return func(r *Renderer) {
		r.fontFile = path
	}
}

// WithFontSearchPaths replaces the list of system fonts that are tried
// before the embedded font
func WithFontSearchPaths(paths ...string) Option {
	return func(r *Renderer) {
		r.searchPaths = paths
	}
}

// WithLogoPolicy sets the behaviour for unreadable logos
func WithLogoPolicy(p LogoPolicy) Option {
	return func(r *Renderer) {
		r.logoPolicy = p
	}
}

// WithLogoSize sets the printed logo width and the height limit
func WithLogoSize(width, maxHeight float64) Option {
	return func(r *Renderer) {
		r.logoWidth = width
		r.logoMaxHeight = maxHeight
	}
}

// WithVerify enables or disables validating the generated PDF
func WithVerify(verify bool) Option {
	return func(r *Renderer) {
		r.verify = verify
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates a renderer
func New(opts ...Option) *Renderer {
	r := &Renderer{
		searchPaths:   DefaultFontPaths,
		logoPolicy:    LogoSkip,
		logoWidth:     DefaultLogoWidth,
		logoMaxHeight: DefaultLogoMaxHeight,
		verify:        true,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Result describes a produced document
type Result struct {
	Pages     int      `json:"pages"`
	Size      int      `json:"size"`
	Font      string   `json:"font"`
	LogoDrawn bool     `json:"logo_drawn"`
	Warnings  []string `json:"warnings,omitempty"`
}

// Render writes the invoice as a PDF to w. Nothing is written unless the
// whole document was generated successfully.
func (r *Renderer) Render(inv *model.Invoice, w io.Writer) (*Result, error) {
	var buf bytes.Buffer
	res, err := r.render(inv, &buf)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return nil, model.ErrIOFailure("", err)
	}
	return res, nil
}

// RenderFile writes the invoice as a PDF to path.
// On failure no file is created and an existing file is left untouched.
func (r *Renderer) RenderFile(inv *model.Invoice, path string) (*Result, error) {
	var res *Result
	err := atomicfile.Write(path, 0o644, func(w io.Writer) error {
		var err error
		res, err = r.Render(inv, w)
		return err
	})
	if err != nil {
		if model.ErrorCode(err) != "" {
			return nil, err
		}
		return nil, model.ErrIOFailure(path, err)
	}
	return res, nil
}

func (r *Renderer) render(inv *model.Invoice, out *bytes.Buffer) (res *Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			res = nil
			err = model.ErrRenderFailure(fmt.Errorf("%v", p))
		}
	}()

	view := BuildView(inv)

	font, err := r.resolveFont(view.Texts())
	if err != nil {
		return nil, err
	}
	res = &Result{Font: font.Name}

	var lg *logo
	if inv.LogoPath != "" {
		lg, err = loadLogo(inv.LogoPath)
		if err != nil {
			if r.logoPolicy == LogoFail {
				return nil, err
			}
			r.logger.Warn("skipping unreadable logo",
				zap.String("path", inv.LogoPath),
				zap.Error(err))
			res.Warnings = append(res.Warnings, err.Error())
			lg = nil
		}
	}

	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(marginLeft, marginTop, marginRight)
	pdf.SetAutoPageBreak(false, marginBottom)
	pdf.SetTitle(view.Title, true)
	pdf.SetCreator("invoice-generator", true)
	pdf.AddUTF8FontFromBytes(fontFamily, "", font.Data)
	if pdf.Err() {
		return nil, model.ErrFontUnavailable(fmt.Sprintf("cannot embed font %s", font.Name), pdf.Error())
	}

	pdf.AddPage()
	pdf.SetFont(fontFamily, "", bodyFontSize)
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.SetFillColor(211, 211, 211)

	lay := newLayout(pdf)

	if lg != nil {
		w, h := ScaleLogo(lg.width, lg.height, r.logoWidth, r.logoMaxHeight)
		lay.image(lg, w, h)
		res.LogoDrawn = true
	}

	lay.title(view.Title)
	lay.line(view.Date)
	lay.spacer()

	lay.table(view.Parties, partyWidths, partyAligns, false, false)
	lay.spacer()

	lay.row(view.Header, itemWidths, headerAligns, true, true)
	lay.table(view.Rows, itemWidths, itemAligns, true, false)
	for _, s := range view.Summary {
		lay.row([]string{"", "", s[0], s[1]}, itemWidths, itemAligns, true, false)
	}

	if pdf.Err() {
		return nil, model.ErrRenderFailure(pdf.Error())
	}
	res.Pages = pdf.PageNo()

	if err := pdf.Output(out); err != nil {
		return nil, model.ErrRenderFailure(err)
	}

	if r.verify {
		if err := Validate(out.Bytes()); err != nil {
			return nil, model.ErrRenderFailure(fmt.Errorf("generated PDF is invalid: %w", err))
		}
	}
	res.Size = out.Len()

	r.logger.Debug("invoice rendered",
		zap.String("invoice_number", inv.Number),
		zap.Int("items", len(inv.Items)),
		zap.Int("pages", res.Pages),
		zap.String("font", res.Font),
		zap.Bool("logo", res.LogoDrawn))

	return res, nil
}
