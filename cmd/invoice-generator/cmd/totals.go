package cmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rezonia/invoice-generator/internal/codec"
	money "github.com/rezonia/invoice-generator/internal/decimal"
)

var totalsCmd = &cobra.Command{
	Use:   "totals [files...]",
	Short: "Show subtotal, VAT and total of invoices",
	Long: `Compute the totals of one or more invoice documents.

Examples:
  invoice-generator totals invoice.json
  invoice-generator totals *.json -f table
  invoice-generator totals *.json -f csv > totals.csv`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTotals,
}

func init() {
	rootCmd.AddCommand(totalsCmd)
}

// TotalsResult holds the totals of a single document
type TotalsResult struct {
	File       string `json:"file"`
	Number     string `json:"invoice_no,omitempty"`
	Date       string `json:"date,omitempty"`
	Items      int    `json:"items"`
	VATRate    int    `json:"vat"`
	Subtotal   string `json:"subtotal,omitempty"`
	VATAmount  string `json:"vat_amount,omitempty"`
	GrandTotal string `json:"grand_total,omitempty"`
	Error      string `json:"error,omitempty"`
}

func runTotals(cmd *cobra.Command, args []string) error {
	decoder := codec.NewDecoder()

	results := make([]*TotalsResult, 0, len(args))
	failed := 0
	for _, path := range args {
		printVerbose("Reading %s\n", path)

		inv, err := decoder.Load(path)
		if err != nil {
			results = append(results, &TotalsResult{File: path, Error: err.Error()})
			failed++
			continue
		}

		t := inv.ComputeTotals()
		results = append(results, &TotalsResult{
			File:       path,
			Number:     inv.Number,
			Date:       inv.FormatDate(),
			Items:      len(inv.Items),
			VATRate:    inv.VATRatePercent,
			Subtotal:   money.Format2(t.Subtotal),
			VATAmount:  money.Format2(t.VATAmount),
			GrandTotal: money.Format2(t.GrandTotal),
		})
	}

	if err := outputTotals(os.Stdout, results); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files could not be read", failed, len(args))
	}
	return nil
}

func outputTotals(w io.Writer, results []*TotalsResult) error {
	switch outputFormat {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(results)
	case "table":
		return outputTotalsTable(w, results)
	case "csv":
		return outputTotalsCSV(w, results)
	default:
		return fmt.Errorf("unsupported output format: %s", outputFormat)
	}
}

func outputTotalsTable(w io.Writer, results []*TotalsResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "FILE\tNUMBER\tDATE\tITEMS\tSUBTOTAL\tVAT\tTOTAL\t")

	for _, r := range results {
		if r.Error != "" {
			fmt.Fprintf(tw, "%s\tERROR: %s\t\t\t\t\t\t\n", r.File, r.Error)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s (%d%%)\t%s\t\n",
			r.File, r.Number, r.Date, r.Items,
			r.Subtotal, r.VATAmount, r.VATRate, r.GrandTotal)
	}

	return tw.Flush()
}

func outputTotalsCSV(w io.Writer, results []*TotalsResult) error {
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"file", "invoice_no", "date", "items", "vat", "subtotal", "vat_amount", "grand_total", "error"})

	for _, r := range results {
		_ = cw.Write([]string{
			r.File,
			r.Number,
			r.Date,
			fmt.Sprint(r.Items),
			fmt.Sprint(r.VATRate),
			r.Subtotal,
			r.VATAmount,
			r.GrandTotal,
			r.Error,
		})
	}

	cw.Flush()
	return cw.Error()
}
