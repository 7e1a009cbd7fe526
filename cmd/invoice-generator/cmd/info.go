package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rezonia/invoice-generator/internal/codec"
	money "github.com/rezonia/invoice-generator/internal/decimal"
	"github.com/rezonia/invoice-generator/internal/render"
)

var infoCmd = &cobra.Command{
	Use:   "info [files...]",
	Short: "Show information about invoice documents and PDFs",
	Long: `Display information about invoice files.

Shows:
  - For JSON documents: number, date, parties, items, totals and logo
  - For PDF files: validity and page count
  - File metadata

Examples:
  invoice-generator info invoice.json
  invoice-generator info invoice.json invoice.pdf`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	for _, file := range args {
		printFileInfo(file)
		fmt.Println()
	}
	return nil
}

func printFileInfo(filePath string) {
	fmt.Printf("File: %s\n", filePath)

	info, err := os.Stat(filePath)
	if err != nil {
		fmt.Printf("  Error: %v\n", err)
		return
	}

	fmt.Printf("  Size: %d bytes\n", info.Size())
	fmt.Printf("  Modified: %s\n", info.ModTime().Format("2006-01-02 15:04:05"))

	data, err := os.ReadFile(filePath)
	if err != nil {
		fmt.Printf("  Error reading file: %v\n", err)
		return
	}

	if bytes.HasPrefix(data, []byte("%PDF-")) {
		printPDFInfo(data)
		return
	}
	printDocumentInfo(data)
}

func printPDFInfo(data []byte) {
	fmt.Printf("  Format: PDF\n")

	if err := render.Validate(data); err != nil {
		fmt.Printf("  Valid: no (%v)\n", err)
		return
	}
	fmt.Printf("  Valid: yes\n")

	pages, err := render.PageCount(data)
	if err != nil {
		fmt.Printf("  Pages: unknown (%v)\n", err)
		return
	}
	fmt.Printf("  Pages: %d\n", pages)
}

func printDocumentInfo(data []byte) {
	inv, err := codec.Decode(data)
	if err != nil {
		fmt.Printf("  Format: Unknown\n")
		fmt.Printf("  Error: %v\n", err)
		return
	}

	fmt.Printf("  Format: Invoice document\n")
	fmt.Printf("  Number: %s\n", inv.Number)
	fmt.Printf("  Date: %s\n", inv.FormatDate())
	fmt.Printf("  From: %s\n", inv.SellerName)
	fmt.Printf("  To: %s\n", inv.BuyerName)
	fmt.Printf("  Items: %d\n", len(inv.Items))

	t := inv.ComputeTotals()
	fmt.Printf("  Subtotal: %s\n", money.Format2(t.Subtotal))
	fmt.Printf("  VAT %d%%: %s\n", inv.VATRatePercent, money.Format2(t.VATAmount))
	fmt.Printf("  Total due: %s\n", money.Format2(t.GrandTotal))

	if inv.LogoPath != "" {
		status := "found"
		if _, err := os.Stat(inv.LogoPath); err != nil {
			status = "missing"
		}
		fmt.Printf("  Logo: %s (%s)\n", filepath.Base(inv.LogoPath), status)
	}

	if fontFile != "" {
		printVerbose("  Font override: %s\n", fontFile)
	}
	renderer, err := newRenderer()
	if err != nil {
		return
	}
	if font, err := renderer.CheckFont(inv); err != nil {
		fmt.Printf("  Printable: no (%v)\n", err)
	} else {
		fmt.Printf("  Printable: yes (font %s)\n", font)
	}
}
