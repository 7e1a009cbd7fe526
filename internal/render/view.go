package render

import (
	"fmt"

	money "github.com/rezonia/invoice-generator/internal/decimal"
	"github.com/rezonia/invoice-generator/internal/model"
)

// Labels printed on the document
const (
	LabelTitle       = "Invoice No. "
	LabelDate        = "Date: "
	LabelFrom        = "From:"
	LabelTo          = "To:"
	LabelDescription = "Description"
	LabelQuantity    = "Qty"
	LabelPrice       = "Price"
	LabelTotal       = "Total"
	LabelSubtotal    = "Subtotal:"
	LabelVAT         = "VAT %d%%:"
	LabelGrandTotal  = "Total due:"
)

// PageView holds every string placed on the document, already formatted
type PageView struct {
	Title   string
	Date    string
	Parties [][]string // label, value
	Header  []string
	Rows    [][]string // description, quantity, price, total
	Summary [][]string // label, value
}

// BuildView formats an invoice for printing
func BuildView(inv *model.Invoice) PageView {
	v := PageView{
		Title: LabelTitle + inv.Number,
		Date:  LabelDate + inv.FormatDate(),
		Parties: [][]string{
			{LabelFrom, inv.SellerName},
			{"", inv.SellerAddress},
			{LabelTo, inv.BuyerName},
			{"", inv.BuyerAddress},
		},
		Header: []string{LabelDescription, LabelQuantity, LabelPrice, LabelTotal},
		Rows:   make([][]string, 0, len(inv.Items)),
	}

	for _, item := range inv.Items {
		v.Rows = append(v.Rows, []string{
			item.Description,
			money.FormatPlain(money.ParseOrZero(item.QuantityText)),
			money.Format2(money.ParseOrZero(item.PriceText)),
			money.Format2(item.Total()),
		})
	}

	totals := inv.ComputeTotals()
	v.Summary = [][]string{
		{LabelSubtotal, money.Format2(totals.Subtotal)},
		{fmt.Sprintf(LabelVAT, inv.VATRatePercent), money.Format2(totals.VATAmount)},
		{LabelGrandTotal, money.Format2(totals.GrandTotal)},
	}

	return v
}

// Texts returns all strings of the view
func (v PageView) Texts() []string {
	texts := []string{v.Title, v.Date}
	for _, group := range [][][]string{v.Parties, {v.Header}, v.Rows, v.Summary} {
		for _, row := range group {
			texts = append(texts, row...)
		}
	}
	return texts
}
