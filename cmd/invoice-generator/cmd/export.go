package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export <file.json>",
	Short: "Export an invoice as an A4 PDF",
	Long: `Render an invoice document as a single-language A4 PDF.

The font is the one given by --font, otherwise the first installed Unicode
font that covers every character, otherwise the built-in font. Export fails
without writing anything if no font can print the invoice.

Examples:
  invoice-generator export invoice.json
  invoice-generator export invoice.json -o out/invoice-12.pdf
  invoice-generator export invoice.json --font /usr/share/fonts/noto/NotoSans-Regular.ttf
  invoice-generator export invoice.json --logo-policy fail`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output PDF file (default: input name with .pdf)")
}

func runExport(cmd *cobra.Command, args []string) error {
	path := args[0]

	out := exportOutput
	if out == "" {
		out = strings.TrimSuffix(path, filepath.Ext(path)) + ".pdf"
	}

	session, err := loadSession(path)
	if err != nil {
		return err
	}
	if err := check(session.Export(out)); err != nil {
		return err
	}

	res := session.LastExport()
	for _, w := range res.Warnings {
		fmt.Printf("Warning: %s\n", w)
	}
	printVerbose("Font: %s\n", res.Font)
	fmt.Printf("Saved %s (%d page(s), %d bytes)\n", out, res.Pages, res.Size)
	return nil
}
