// Package codec saves and loads invoices as human-readable JSON documents.
//
// Documents use a flat layout shared with the desktop invoice form:
//
//	{
//	  "company": "...", "address": "...",
//	  "client": "...", "client_address": "...",
//	  "invoice_no": "1", "date": "15.10.2026", "vat": 20,
//	  "logo": null,
//	  "items": [["description", "qty", "price", "total"]]
//	}
//
// Item cells are stored as the exact text that was entered, never
// re-formatted.
package codec

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/rezonia/invoice-generator/internal/atomicfile"
	"github.com/rezonia/invoice-generator/internal/model"
)

// ItemColumns is the number of cells stored per line item
const ItemColumns = 4

// document is the on-disk shape of an invoice
type document struct {
	Company       string      `json:"company"`
	Address       string      `json:"address"`
	Client        string      `json:"client"`
	ClientAddress string      `json:"client_address"`
	InvoiceNo     string      `json:"invoice_no"`
	Date          string      `json:"date"`
	VAT           json.Number `json:"vat"`
	Logo          *string     `json:"logo"`
	Items         [][]string  `json:"items"`
}

// Decoder reconstructs invoices from documents
type Decoder struct {
	// Now supplies the issue date used when the document's date is missing
	// or unparseable. Defaults to time.Now.
	Now func() time.Time
}

// NewDecoder creates a decoder using the wall clock
func NewDecoder() *Decoder {
	return &Decoder{Now: time.Now}
}

// Encode serializes an invoice into its document form
func Encode(inv *model.Invoice) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, inv); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write serializes an invoice to w
func Write(w io.Writer, inv *model.Invoice) error {
	doc := document{
		Company:       inv.SellerName,
		Address:       inv.SellerAddress,
		Client:        inv.BuyerName,
		ClientAddress: inv.BuyerAddress,
		InvoiceNo:     inv.Number,
		Date:          inv.FormatDate(),
		VAT:           json.Number(strconv.Itoa(inv.VATRatePercent)),
		Items:         make([][]string, 0, len(inv.Items)),
	}
	if inv.LogoPath != "" {
		logo := inv.LogoPath
		doc.Logo = &logo
	}
	for _, item := range inv.Items {
		doc.Items = append(doc.Items, []string{
			item.Description,
			item.QuantityText,
			item.PriceText,
			item.TotalText,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return model.ErrIOFailure("", err)
	}
	return nil
}

// Decode parses a document with the default decoder
func Decode(data []byte) (*model.Invoice, error) {
	return NewDecoder().Decode(data)
}

// Decode parses a document into a new invoice.
// Missing fields take their zero defaults; a document that is not a JSON
// object of the expected shape fails as a whole.
func (d *Decoder) Decode(data []byte) (*model.Invoice, error) {
	data = bytes.TrimPrefix(bytes.TrimSpace(data), []byte("\xef\xbb\xbf"))
	if len(data) == 0 || data[0] != '{' {
		return nil, model.ErrMalformedDocument("document is not a JSON object", nil)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, model.ErrMalformedDocument("invalid invoice document", err)
	}

	vat := 0
	if doc.VAT != "" {
		v, err := doc.VAT.Int64()
		if err != nil {
			return nil, model.NewInvoiceError(model.ErrCodeMalformedDocument, "vat", "VAT rate must be an integer", err)
		}
		vat = clampInt(v)
	}

	now := time.Now
	if d.Now != nil {
		now = d.Now
	}

	inv := model.New(doc.InvoiceNo, now())
	if date, err := model.ParseDate(doc.Date); err == nil {
		inv.IssueDate = date
	}

	inv.SellerName = doc.Company
	inv.SellerAddress = doc.Address
	inv.BuyerName = doc.Client
	inv.BuyerAddress = doc.ClientAddress
	inv.VATRatePercent = vat
	if doc.Logo != nil {
		inv.LogoPath = *doc.Logo
	}

	for _, row := range doc.Items {
		cells := make([]string, ItemColumns)
		copy(cells, row)

		item := model.NewLineItem()
		item.Description = cells[0]
		item.QuantityText = cells[1]
		item.PriceText = cells[2]
		item.TotalText = cells[3]
		item.Calculate()
		inv.Items = append(inv.Items, item)
	}

	return inv, nil
}

// Read parses a document from r
func (d *Decoder) Read(r io.Reader) (*model.Invoice, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, model.ErrIOFailure("", err)
	}
	return d.Decode(data)
}

// Load reads and parses the document at path
func (d *Decoder) Load(path string) (*model.Invoice, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, model.ErrIOFailure(path, err)
	}
	return d.Decode(data)
}

// Save writes the invoice document to path, replacing it atomically
func Save(path string, inv *model.Invoice) error {
	data, err := Encode(inv)
	if err != nil {
		return err
	}
	if err := atomicfile.WriteBytes(path, 0o644, data); err != nil {
		return model.ErrIOFailure(path, err)
	}
	return nil
}

func clampInt(v int64) int {
	if v < 0 {
		return 0
	}
	if v > model.MaxVATRate {
		return model.MaxVATRate
	}
	return int(v)
}

