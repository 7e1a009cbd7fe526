package model

import (
	"time"

	"github.com/shopspring/decimal"

	money "github.com/rezonia/invoice-generator/internal/decimal"
)

// DateLayout is the day.month.year form used in documents and on the page
const DateLayout = "02.01.2006"

// MaxVATRate is the upper bound of the VAT percentage
const MaxVATRate = 100

// Field identifies an editable column of a line item
type Field int

const (
	FieldDescription Field = iota
	FieldQuantity
	FieldUnitPrice
)

func (f Field) String() string {
	switch f {
	case FieldDescription:
		return "description"
	case FieldQuantity:
		return "quantity"
	case FieldUnitPrice:
		return "unit_price"
	default:
		return "unknown"
	}
}

// ParseField maps a column name to a Field
func ParseField(name string) (Field, bool) {
	switch name {
	case "description", "desc":
		return FieldDescription, true
	case "quantity", "qty":
		return FieldQuantity, true
	case "unit_price", "price":
		return FieldUnitPrice, true
	default:
		return 0, false
	}
}

// Invoice is the invoice being edited
type Invoice struct {
	// Header
	Number    string    `json:"number"`
	IssueDate time.Time `json:"issue_date"`

	// Parties
	SellerName    string `json:"seller_name"`
	SellerAddress string `json:"seller_address"`
	BuyerName     string `json:"buyer_name"`
	BuyerAddress  string `json:"buyer_address"`

	VATRatePercent int    `json:"vat_rate_percent"`
	LogoPath       string `json:"logo_path,omitempty"` // empty means no logo

	// Printed in this order
	Items []LineItem `json:"items"`
}

// LineItem is one row of the items table.
//
// The *Text fields hold exactly what was entered (or, for TotalText, what
// was last displayed); the decimal fields are parsed from them.
type LineItem struct {
	Description  string `json:"description"`
	QuantityText string `json:"quantity_text"`
	PriceText    string `json:"price_text"`
	TotalText    string `json:"total_text"`

	// Calculated
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"` // Quantity * UnitPrice, 2 places
}

// Totals are the derived amounts of an invoice
type Totals struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	VATAmount  decimal.Decimal `json:"vat_amount"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}

// New creates an empty invoice with the given number, dated on date's day
func New(number string, date time.Time) *Invoice {
	return &Invoice{
		Number:    number,
		IssueDate: DateOf(date),
		Items:     []LineItem{},
	}
}

// DateOf strips the time of day, keeping the calendar date in UTC
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a day.month.year date
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// FormatDate renders the issue date as day.month.year
func (inv *Invoice) FormatDate() string {
	return inv.IssueDate.Format(DateLayout)
}

// SetVATRate sets the VAT percentage, clamped into [0,100]
func (inv *Invoice) SetVATRate(p int) {
	inv.VATRatePercent = ClampVATRate(p)
}

// ClampVATRate forces a VAT percentage into [0,100]
func ClampVATRate(p int) int {
	if p < 0 {
		return 0
	}
	if p > MaxVATRate {
		return MaxVATRate
	}
	return p
}

// AddItem appends an empty line item and returns its index
func (inv *Invoice) AddItem() int {
	inv.Items = append(inv.Items, NewLineItem())
	return len(inv.Items) - 1
}

// RemoveItem removes the line item at index
func (inv *Invoice) RemoveItem(index int) error {
	if err := inv.checkIndex(index); err != nil {
		return err
	}
	inv.Items = append(inv.Items[:index], inv.Items[index+1:]...)
	return nil
}

// SetItemField stores raw text into one column of an item.
// Quantity and price are parsed leniently and the line total is
// recomputed before returning.
func (inv *Invoice) SetItemField(index int, field Field, raw string) error {
	if err := inv.checkIndex(index); err != nil {
		return err
	}

	item := &inv.Items[index]
	switch field {
	case FieldDescription:
		item.Description = raw
		return nil
	case FieldQuantity:
		item.QuantityText = raw
	case FieldUnitPrice:
		item.PriceText = raw
	default:
		return NewInvoiceError(ErrCodeOutOfRange, "field", "unknown item field", nil)
	}

	item.Calculate()
	item.TotalText = money.Format2(item.LineTotal)
	return nil
}

func (inv *Invoice) checkIndex(index int) error {
	if index < 0 || index >= len(inv.Items) {
		return ErrOutOfRange(index, len(inv.Items))
	}
	return nil
}

// ComputeTotals computes subtotal, VAT and grand total from the items.
// It does not modify the invoice.
func (inv *Invoice) ComputeTotals() Totals {
	lines := make([]decimal.Decimal, len(inv.Items))
	for i, item := range inv.Items {
		lines[i] = item.Total()
	}
	subtotal := money.Sum(lines)

	vat := money.CalculateVAT(subtotal, inv.VATRatePercent)

	return Totals{
		Subtotal:   subtotal,
		VATAmount:  vat,
		GrandTotal: subtotal.Add(vat),
	}
}

// Clone returns a deep copy of the invoice
func (inv *Invoice) Clone() *Invoice {
	out := *inv
	out.Items = make([]LineItem, len(inv.Items))
	copy(out.Items, inv.Items)
	return &out
}

// Texts returns every free-text value that is printed on the document
func (inv *Invoice) Texts() []string {
	texts := []string{
		inv.Number,
		inv.SellerName,
		inv.SellerAddress,
		inv.BuyerName,
		inv.BuyerAddress,
	}
	for _, item := range inv.Items {
		texts = append(texts, item.Description)
	}
	return texts
}

// NewLineItem creates an empty line item
func NewLineItem() LineItem {
	var li LineItem
	li.Calculate()
	return li
}

// Calculate parses quantity and price text and computes the line total
func (li *LineItem) Calculate() {
	li.Quantity = money.ParseOrZero(li.QuantityText)
	li.UnitPrice = money.ParseOrZero(li.PriceText)
	li.LineTotal = money.CalculateLineTotal(li.Quantity, li.UnitPrice)
}

// Total re-derives the line total from the raw text, so an item whose
// decimal fields were never calculated still contributes correctly.
func (li LineItem) Total() decimal.Decimal {
	return money.CalculateLineTotal(money.ParseOrZero(li.QuantityText), money.ParseOrZero(li.PriceText))
}
