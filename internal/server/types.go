package server

import (
	money "github.com/rezonia/invoice-generator/internal/decimal"
	"github.com/rezonia/invoice-generator/internal/model"
)

// TotalsResponse is the response for totals endpoint
type TotalsResponse struct {
	Number     string `json:"invoice_no"`
	Items      int    `json:"items"`
	VATRate    int    `json:"vat"`
	Subtotal   string `json:"subtotal"`
	VATAmount  string `json:"vat_amount"`
	GrandTotal string `json:"grand_total"`
}

func newTotalsResponse(inv *model.Invoice) TotalsResponse {
	t := inv.ComputeTotals()
	return TotalsResponse{
		Number:     inv.Number,
		Items:      len(inv.Items),
		VATRate:    inv.VATRatePercent,
		Subtotal:   money.Format2(t.Subtotal),
		VATAmount:  money.Format2(t.VATAmount),
		GrandTotal: money.Format2(t.GrandTotal),
	}
}

// NextNumberResponse is the response for next endpoint
type NextNumberResponse struct {
	Number string `json:"invoice_no"`
}

// ValidationResponse is the response for validate endpoint
type ValidationResponse struct {
	Valid    bool     `json:"valid"`
	Font     string   `json:"font,omitempty"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings,omitempty"`
}

// ErrorResponse is the standard error response
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}
