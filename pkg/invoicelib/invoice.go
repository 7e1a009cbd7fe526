// Package invoicelib provides a public API for creating invoices and
// printing them as A4 PDF documents.
//
// Example usage:
//
//	gen := invoicelib.NewGenerator(invoicelib.DefaultOptions())
//	inv, err := gen.New(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	idx := inv.AddItem()
//	inv.SetItemField(idx, invoicelib.FieldQuantity, "3")
//	inv.SetItemField(idx, invoicelib.FieldUnitPrice, "10,00")
//	if _, err := gen.RenderFile(inv, "invoice.pdf"); err != nil {
//	    log.Fatal(err)
//	}
package invoicelib

import (
	"github.com/rezonia/invoice-generator/internal/model"
	"github.com/rezonia/invoice-generator/internal/render"
	"github.com/rezonia/invoice-generator/internal/sequence"
)

// Re-export core types for public API
type (
	Invoice  = model.Invoice
	LineItem = model.LineItem
	Totals   = model.Totals
	Field    = model.Field
)

// Re-export item fields
const (
	FieldDescription = model.FieldDescription
	FieldQuantity    = model.FieldQuantity
	FieldUnitPrice   = model.FieldUnitPrice
)

// Re-export rendering types
type (
	RenderResult = render.Result
	LogoPolicy   = render.LogoPolicy
)

// Re-export logo policies
const (
	LogoSkip = render.LogoSkip
	LogoFail = render.LogoFail
)

// Re-export invoice number sequences
type (
	Sequence = sequence.Generator
)

// Re-export error type and codes
type (
	InvoiceError = model.InvoiceError
)

const (
	ErrCodeOutOfRange         = model.ErrCodeOutOfRange
	ErrCodeMalformedDocument  = model.ErrCodeMalformedDocument
	ErrCodeIOFailure          = model.ErrCodeIOFailure
	ErrCodeResourceUnreadable = model.ErrCodeResourceUnreadable
	ErrCodeFontUnavailable    = model.ErrCodeFontUnavailable
	ErrCodeRenderFailure      = model.ErrCodeRenderFailure
)

// ErrorCode returns the code carried by err, or "" if it has none
func ErrorCode(err error) string {
	return model.ErrorCode(err)
}
