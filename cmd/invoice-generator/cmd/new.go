package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rezonia/invoice-generator/internal/sequence"
)

var (
	newForce  bool
	newDryRun bool
	newFields headerFlags
)

var newCmd = &cobra.Command{
	Use:   "new <file.json>",
	Short: "Create a new invoice document",
	Long: `Create an empty invoice with the next number from the invoice sequence
and today's date, and save it as a JSON document.

Examples:
  invoice-generator new invoice.json
  invoice-generator new invoice.json --dry-run
  invoice-generator new invoice.json --company "Acme" --address "Main St 1" --vat 20
  invoice-generator new invoice.json --database-url postgres://localhost/invoices`,
	Args: cobra.ExactArgs(1),
	RunE: runNew,
}

func init() {
	rootCmd.AddCommand(newCmd)

	newCmd.Flags().BoolVar(&newForce, "force", false, "Overwrite an existing file")
	newCmd.Flags().BoolVar(&newDryRun, "dry-run", false, "Show the next invoice number without reserving it")
	newFields.register(newCmd)
}

func runNew(cmd *cobra.Command, args []string) error {
	path := args[0]
	if _, err := os.Stat(path); err == nil && !newForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	ctx := cmd.Context()
	seq, release, err := openSequence(ctx)
	if err != nil {
		return err
	}
	defer release()

	if newDryRun {
		n, err := seq.Peek(ctx)
		if err != nil {
			return fmt.Errorf("read invoice sequence: %w", err)
		}
		fmt.Printf("Next invoice No. %s would be saved in %s\n", sequence.Format(n), path)
		return nil
	}

	session, err := newSession(seq)
	if err != nil {
		return err
	}
	if err := check(session.NewInvoice(ctx)); err != nil {
		return err
	}
	if err := newFields.apply(cmd, session); err != nil {
		return err
	}
	if err := check(session.Save(path)); err != nil {
		return err
	}

	inv := session.Invoice()
	fmt.Printf("Created invoice No. %s dated %s in %s\n", inv.Number, inv.FormatDate(), path)
	return nil
}
