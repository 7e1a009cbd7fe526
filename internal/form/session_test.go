package form_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rezonia/invoice-generator/internal/form"
	"github.com/rezonia/invoice-generator/internal/model"
	"github.com/rezonia/invoice-generator/internal/render"
	"github.com/rezonia/invoice-generator/internal/sequence"
)

var fixedNow = func() time.Time {
	return time.Date(2026, 10, 15, 14, 30, 0, 0, time.UTC)
}

type stubExporter struct {
	result *render.Result
	err    error
	calls  int
}

func (e *stubExporter) RenderFile(inv *model.Invoice, path string) (*render.Result, error) {
	e.calls++
	return e.result, e.err
}

type failingSequence struct{}

func (failingSequence) Next(ctx context.Context) (int64, error) {
	return 0, errors.New("database down")
}

func (failingSequence) Peek(ctx context.Context) (int64, error) {
	return 0, errors.New("database down")
}

func newSession(exporter form.Exporter) *form.Session {
	return form.NewSession(sequence.NewMemory(), exporter,
		form.WithLogger(zap.NewNop()), form.WithClock(fixedNow))
}

func TestSession_NewInvoiceNumbersIncrease(t *testing.T) {
	ctx := context.Background()
	s := newSession(&stubExporter{})

	st := s.NewInvoice(ctx)
	require.True(t, st.OK)
	assert.Equal(t, "1", s.Invoice().Number)
	assert.Equal(t, "15.10.2026", s.Invoice().FormatDate())
	assert.Empty(t, s.Invoice().Items)

	s.AddItem()
	st = s.NewInvoice(ctx)
	require.True(t, st.OK)
	assert.Equal(t, "New invoice No. 2", st.Message)
	assert.Equal(t, "2", s.Invoice().Number)
	assert.Empty(t, s.Invoice().Items)
}

func TestSession_NewInvoiceSequenceFailure(t *testing.T) {
	s := form.NewSession(failingSequence{}, &stubExporter{}, form.WithClock(fixedNow))
	before := s.Invoice()

	st := s.NewInvoice(context.Background())
	assert.False(t, st.OK)
	assert.Contains(t, st.Message, "database down")
	assert.Same(t, before, s.Invoice())
}

func TestSession_Items(t *testing.T) {
	s := newSession(&stubExporter{})

	assert.Equal(t, "New item added", s.AddItem().Message)
	s.AddItem()

	st := s.SetItemField(0, model.FieldQuantity, "3")
	require.True(t, st.OK)
	st = s.SetItemField(0, model.FieldUnitPrice, "10,00")
	require.True(t, st.OK)
	assert.Equal(t, "Row 1 total 30.00", st.Message)

	st = s.SetItemField(5, model.FieldQuantity, "1")
	assert.False(t, st.OK)

	st = s.RemoveItem(-1)
	assert.False(t, st.OK)
	assert.Equal(t, "Select a row to delete", st.Message)

	st = s.RemoveItem(7)
	assert.False(t, st.OK)
	assert.Len(t, s.Invoice().Items, 2)

	st = s.RemoveItem(1)
	assert.True(t, st.OK)
	assert.Len(t, s.Invoice().Items, 1)
}

func TestSession_Totals(t *testing.T) {
	s := newSession(&stubExporter{})
	s.SetVATRate(20)
	s.AddItem()
	s.SetItemField(0, model.FieldQuantity, "2")
	s.SetItemField(0, model.FieldUnitPrice, "50")

	totals, st := s.Totals()
	require.True(t, st.OK)
	assert.Equal(t, "100.00", totals.Subtotal.StringFixed(2))
	assert.Equal(t, "20.00", totals.VATAmount.StringFixed(2))
	assert.Equal(t, "120.00", totals.GrandTotal.StringFixed(2))
	assert.Equal(t, "Total due 120.00", st.Message)
}

func TestSession_HeaderFields(t *testing.T) {
	s := newSession(&stubExporter{})

	s.SetSeller("Seller", "Seller St")
	s.SetBuyer("Buyer", "Buyer Ave")
	s.SetNumber("A-7")
	assert.True(t, s.SetDate("01.02.2026").OK)
	assert.False(t, s.SetDate("2026-02-01").OK)

	st := s.SetVATRate(150)
	assert.Equal(t, "VAT rate clamped to 100%", st.Message)

	inv := s.Invoice()
	assert.Equal(t, "Seller", inv.SellerName)
	assert.Equal(t, "Buyer Ave", inv.BuyerAddress)
	assert.Equal(t, "A-7", inv.Number)
	assert.Equal(t, "01.02.2026", inv.FormatDate())
	assert.Equal(t, 100, inv.VATRatePercent)
}

func TestSession_SetLogo(t *testing.T) {
	dir := t.TempDir()
	logo := filepath.Join(dir, "logo.png")
	require.NoError(t, os.WriteFile(logo, []byte("png"), 0o644))

	s := newSession(&stubExporter{})

	st := s.SetLogo(logo)
	require.True(t, st.OK)
	assert.Equal(t, "Logo loaded: logo.png", st.Message)
	assert.Equal(t, logo, s.Invoice().LogoPath)

	st = s.SetLogo(filepath.Join(dir, "missing.png"))
	assert.False(t, st.OK)
	assert.Equal(t, logo, s.Invoice().LogoPath)

	st = s.SetLogo("")
	assert.True(t, st.OK)
	assert.Empty(t, s.Invoice().LogoPath)
}

func TestSession_SaveAndLoad(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "invoice.json")

	s := newSession(&stubExporter{})
	s.NewInvoice(ctx)
	s.SetSeller("Seller", "Seller St")
	s.AddItem()
	s.SetItemField(0, model.FieldDescription, "Widget")
	s.SetItemField(0, model.FieldQuantity, "1,5")

	st := s.Save(path)
	require.True(t, st.OK, st.Message)

	other := newSession(&stubExporter{})
	st = other.Load(path)
	require.True(t, st.OK, st.Message)
	assert.Equal(t, "Data loaded", st.Message)
	assert.Equal(t, "1", other.Invoice().Number)
	assert.Equal(t, "Seller", other.Invoice().SellerName)
	require.Len(t, other.Invoice().Items, 1)
	assert.Equal(t, "Widget", other.Invoice().Items[0].Description)
	assert.Equal(t, "1,5", other.Invoice().Items[0].QuantityText)
}

func TestSession_LoadFailureKeepsState(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"items": 5`), 0o644))

	s := newSession(&stubExporter{})
	s.SetNumber("42")
	s.AddItem()
	before := s.Invoice()

	st := s.Load(bad)
	assert.False(t, st.OK)
	assert.Equal(t, "bad.json is not a valid invoice file", st.Message)
	assert.Same(t, before, s.Invoice())

	st = s.Load(filepath.Join(dir, "missing.json"))
	assert.False(t, st.OK)
	assert.Contains(t, st.Message, "Could not open missing.json")
	assert.Equal(t, "42", s.Invoice().Number)
	assert.Len(t, s.Invoice().Items, 1)
}

func TestSession_Export(t *testing.T) {
	exporter := &stubExporter{result: &render.Result{Pages: 1}}
	s := newSession(exporter)

	st := s.Export("out.pdf")
	require.True(t, st.OK)
	assert.Equal(t, "PDF saved", st.Message)
	assert.Equal(t, 1, s.LastExport().Pages)

	exporter.result = &render.Result{Pages: 1, Warnings: []string{"logo skipped"}}
	st = s.Export("out.pdf")
	require.True(t, st.OK)
	assert.Equal(t, "PDF saved with warnings: logo skipped", st.Message)

	exporter.err = model.ErrFontUnavailable("no glyph for U+682A", nil)
	st = s.Export("out.pdf")
	assert.False(t, st.OK)
	assert.Contains(t, st.Message, "Could not create PDF")
	assert.Contains(t, st.Message, "U+682A")
	assert.Equal(t, 3, exporter.calls)
}

func TestSession_ExportWithRenderer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invoice.pdf")
	s := newSession(render.New(render.WithFontSearchPaths()))
	s.NewInvoice(context.Background())
	s.SetSeller("Seller", "Seller St")
	s.AddItem()
	s.SetItemField(0, model.FieldDescription, "Консультация")

	st := s.Export(path)
	require.True(t, st.OK, st.Message)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	pages, err := render.PageCount(data)
	require.NoError(t, err)
	assert.Equal(t, 1, pages)
}
