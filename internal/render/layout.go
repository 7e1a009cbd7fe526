package render

import (
	"bytes"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// Page geometry in points (A4 is 595.28 x 841.89)
const (
	marginLeft   = 27.0
	marginTop    = 36.0
	marginRight  = 27.0
	marginBottom = 36.0

	fontFamily    = "InvoiceSans"
	bodyFontSize  = 10.0
	titleFontSize = 18.0
	lineHeight    = 12.0
	cellPadding   = 3.0
	spacerHeight  = 12.0
)

// Column widths in points
var (
	partyWidths = []float64{50, 450}
	itemWidths  = []float64{300, 80, 80, 80}
)

var (
	partyAligns  = []string{"LM", "LM"}
	headerAligns = []string{"LM", "LM", "LM", "LM"}
	itemAligns   = []string{"LM", "RM", "RM", "RM"}
)

// layout places blocks top to bottom, starting a new page when a block
// would cross the bottom margin
type layout struct {
	pdf   *gofpdf.Fpdf
	pageH float64
	width float64
}

func newLayout(pdf *gofpdf.Fpdf) *layout {
	pageW, pageH := pdf.GetPageSize()
	return &layout{
		pdf:   pdf,
		pageH: pageH,
		width: pageW - marginLeft - marginRight,
	}
}

func (l *layout) ensureSpace(h float64) {
	if l.pdf.GetY()+h > l.pageH-marginBottom {
		l.pdf.AddPage()
	}
}

func (l *layout) spacer() {
	l.pdf.Ln(spacerHeight)
}

// image draws a registered-on-demand image centred horizontally
func (l *layout) image(lg *logo, w, h float64) {
	opts := gofpdf.ImageOptions{ImageType: lg.imageType}
	l.pdf.RegisterImageOptionsReader(lg.path, opts, bytes.NewReader(lg.data))

	l.ensureSpace(h)
	x := marginLeft + (l.width-w)/2
	y := l.pdf.GetY()
	l.pdf.ImageOptions(lg.path, x, y, w, h, false, opts, 0, "")
	l.pdf.SetY(y + h)
	l.spacer()
}

func (l *layout) title(text string) {
	l.pdf.SetFontSize(titleFontSize)
	h := titleFontSize * 1.5
	l.ensureSpace(h)
	l.pdf.CellFormat(l.width, h, text, "", 1, "CM", false, 0, "")
	l.pdf.SetFontSize(bodyFontSize)
}

func (l *layout) line(text string) {
	l.ensureSpace(lineHeight)
	l.pdf.CellFormat(l.width, lineHeight, text, "", 1, "LM", false, 0, "")
}

// table draws rows of cells; every row is as tall as its longest wrapped cell
func (l *layout) table(rows [][]string, widths []float64, aligns []string, grid, fill bool) {
	for _, row := range rows {
		l.row(row, widths, aligns, grid, fill)
	}
}

// row draws one table row. A row taller than a page sets the document error
// instead of running past the bottom edge.
func (l *layout) row(cells []string, widths []float64, aligns []string, grid, fill bool) {
	lines := make([][]string, len(cells))
	n := 1
	for i, cell := range cells {
		lines[i] = l.wrap(cell, widths[i])
		if len(lines[i]) > n {
			n = len(lines[i])
		}
	}

	h := float64(n)*lineHeight + 2*cellPadding
	if room := l.pageH - marginTop - marginBottom; h > room {
		l.pdf.SetErrorf("table row of %d lines does not fit on one page (%.0fpt > %.0fpt)", n, h, room)
		return
	}
	l.ensureSpace(h)

	x, y := marginLeft, l.pdf.GetY()
	for i := range cells {
		switch {
		case grid && fill:
			l.pdf.Rect(x, y, widths[i], h, "FD")
		case grid:
			l.pdf.Rect(x, y, widths[i], h, "D")
		case fill:
			l.pdf.Rect(x, y, widths[i], h, "F")
		}
		for k, text := range lines[i] {
			l.pdf.SetXY(x, y+cellPadding+float64(k)*lineHeight)
			l.pdf.CellFormat(widths[i], lineHeight, text, "", 0, aligns[i], false, 0, "")
		}
		x += widths[i]
	}
	l.pdf.SetXY(marginLeft, y+h)
}

func (l *layout) wrap(text string, w float64) []string {
	var out []string
	for _, para := range strings.Split(text, "\n") {
		lines := l.pdf.SplitText(para, w)
		if len(lines) == 0 {
			lines = []string{""}
		}
		out = append(out, lines...)
	}
	return out
}
