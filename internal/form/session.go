// Package form holds the state behind an invoice editing form.
//
// A Session owns exactly one invoice. Every operation returns a Status that
// can be shown to the user as is; failures are logged and reported in the
// status instead of being returned as errors.
package form

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/rezonia/invoice-generator/internal/codec"
	"github.com/rezonia/invoice-generator/internal/model"
	"github.com/rezonia/invoice-generator/internal/render"
	"github.com/rezonia/invoice-generator/internal/sequence"
)

// Status is the outcome of a session operation
type Status struct {
	OK      bool
	Message string
}

func ok(format string, args ...any) Status {
	return Status{OK: true, Message: fmt.Sprintf(format, args...)}
}

func failed(format string, args ...any) Status {
	return Status{OK: false, Message: fmt.Sprintf(format, args...)}
}

func (s Status) String() string {
	return s.Message
}

// Exporter produces the printable document for an invoice
type Exporter interface {
	RenderFile(inv *model.Invoice, path string) (*render.Result, error)
}

// Session is the editing state of one invoice
type Session struct {
	inv      *model.Invoice
	seq      sequence.Generator
	decoder  *codec.Decoder
	exporter Exporter
	logger   *zap.Logger
	now      func() time.Time

	lastExport *render.Result
}

// Option configures a Session
type Option func(*Session)

// WithLogger sets the session logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the wall clock used for issue dates
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
			s.decoder.Now = now
		}
	}
}

// NewSession creates a session holding an empty, unnumbered invoice.
// Call NewInvoice to reserve a number. A nil seq numbers invoices from 1
// within this session only.
func NewSession(seq sequence.Generator, exporter Exporter, opts ...Option) *Session {
	if seq == nil {
		seq = sequence.NewMemory()
	}
	s := &Session{
		seq:      seq,
		decoder:  codec.NewDecoder(),
		exporter: exporter,
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.inv = model.New("", s.now())
	return s
}

// Invoice returns the invoice being edited
func (s *Session) Invoice() *model.Invoice {
	return s.inv
}

// LastExport returns the result of the most recent successful export
func (s *Session) LastExport() *render.Result {
	return s.lastExport
}

// NewInvoice replaces the current invoice with an empty one carrying the
// next number and today's date
func (s *Session) NewInvoice(ctx context.Context) Status {
	n, err := s.seq.Next(ctx)
	if err != nil {
		s.logger.Error("reserve invoice number", zap.Error(err))
		return failed("Could not reserve an invoice number: %v", err)
	}
	s.inv = model.New(sequence.Format(n), s.now())
	s.logger.Debug("new invoice", zap.Int64("number", n))
	return ok("New invoice No. %d", n)
}

// SetSeller sets the issuing company
func (s *Session) SetSeller(name, address string) Status {
	s.inv.SellerName = name
	s.inv.SellerAddress = address
	return ok("Seller updated")
}

// SetBuyer sets the client
func (s *Session) SetBuyer(name, address string) Status {
	s.inv.BuyerName = name
	s.inv.BuyerAddress = address
	return ok("Client updated")
}

// SetNumber overrides the invoice number
func (s *Session) SetNumber(number string) Status {
	s.inv.Number = number
	return ok("Invoice number set to %s", number)
}

// SetDate sets the issue date from dd.MM.yyyy text
func (s *Session) SetDate(text string) Status {
	d, err := model.ParseDate(text)
	if err != nil {
		return failed("Invalid date %q, expected dd.mm.yyyy", text)
	}
	s.inv.IssueDate = d
	return ok("Date set to %s", s.inv.FormatDate())
}

// SetVATRate sets the VAT percentage, clamped to the allowed range
func (s *Session) SetVATRate(p int) Status {
	s.inv.SetVATRate(p)
	if s.inv.VATRatePercent != p {
		return ok("VAT rate clamped to %d%%", s.inv.VATRatePercent)
	}
	return ok("VAT rate set to %d%%", p)
}

// AddItem appends an empty line item
func (s *Session) AddItem() Status {
	idx := s.inv.AddItem()
	s.logger.Debug("item added", zap.Int("index", idx))
	return ok("New item added")
}

// RemoveItem deletes the item at index. A negative index means no row is
// selected.
func (s *Session) RemoveItem(index int) Status {
	if index < 0 {
		return failed("Select a row to delete")
	}
	if err := s.inv.RemoveItem(index); err != nil {
		s.logger.Warn("remove item", zap.Int("index", index), zap.Error(err))
		return failed("No item at row %d", index+1)
	}
	return ok("Item removed")
}

// SetItemField updates one column of an item; totals follow immediately
func (s *Session) SetItemField(index int, field model.Field, raw string) Status {
	if err := s.inv.SetItemField(index, field, raw); err != nil {
		s.logger.Warn("set item field", zap.Int("index", index),
			zap.Stringer("field", field), zap.Error(err))
		return failed("No item at row %d", index+1)
	}
	return ok("Row %d total %s", index+1, s.inv.Items[index].TotalText)
}

// SetLogo sets the logo image path. An empty path removes the logo.
func (s *Session) SetLogo(path string) Status {
	if path == "" {
		s.inv.LogoPath = ""
		return ok("Logo removed")
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		s.logger.Warn("logo not usable", zap.String("path", path), zap.Error(err))
		return failed("Logo not found: %s", path)
	}
	s.inv.LogoPath = path
	return ok("Logo loaded: %s", filepath.Base(path))
}

// Totals returns the current totals
func (s *Session) Totals() (model.Totals, Status) {
	t := s.inv.ComputeTotals()
	return t, ok("Total due %s", t.GrandTotal.StringFixed(2))
}

// Save writes the invoice document to path
func (s *Session) Save(path string) Status {
	if err := codec.Save(path, s.inv); err != nil {
		s.logger.Error("save invoice", zap.String("path", path), zap.Error(err))
		return failed("Could not save %s: %v", filepath.Base(path), err)
	}
	return ok("Data saved")
}

// Load replaces the invoice with the document at path. On failure the
// current invoice is left unchanged.
func (s *Session) Load(path string) Status {
	inv, err := s.decoder.Load(path)
	if err != nil {
		s.logger.Error("load invoice", zap.String("path", path), zap.Error(err))
		if model.HasCode(err, model.ErrCodeMalformedDocument) {
			return failed("%s is not a valid invoice file", filepath.Base(path))
		}
		return failed("Could not open %s: %v", filepath.Base(path), err)
	}
	s.inv = inv
	return ok("Data loaded")
}

// Export renders the invoice as a PDF at path
func (s *Session) Export(path string) Status {
	res, err := s.exporter.RenderFile(s.inv, path)
	if err != nil {
		s.logger.Error("export invoice", zap.String("path", path),
			zap.String("code", model.ErrorCode(err)), zap.Error(err))
		return failed("Could not create PDF: %v", err)
	}
	for _, w := range res.Warnings {
		s.logger.Warn("export warning", zap.String("path", path), zap.String("warning", w))
	}
	s.lastExport = res
	if len(res.Warnings) > 0 {
		return ok("PDF saved with warnings: %s", res.Warnings[0])
	}
	return ok("PDF saved")
}
