package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rezonia/invoice-generator/internal/form"
	"github.com/rezonia/invoice-generator/internal/model"
)

var (
	itemDescription string
	itemQuantity    string
	itemPrice       string
)

var itemCmd = &cobra.Command{
	Use:   "item",
	Short: "Add, remove or change line items",
	Long: `Manage the line items of an invoice document. Rows are numbered from 1.

Quantities and prices accept a comma or a dot as decimal separator; text
that is not a number counts as 0.

Examples:
  invoice-generator item add invoice.json --desc "Consulting" --qty 3 --price 10,00
  invoice-generator item set invoice.json 1 price 12.50
  invoice-generator item remove invoice.json 2`,
}

var itemAddCmd = &cobra.Command{
	Use:   "add <file.json>",
	Short: "Append a line item",
	Args:  cobra.ExactArgs(1),
	RunE:  runItemAdd,
}

var itemRemoveCmd = &cobra.Command{
	Use:   "remove <file.json> <row>",
	Short: "Delete a line item",
	Args:  cobra.ExactArgs(2),
	RunE:  runItemRemove,
}

var itemSetCmd = &cobra.Command{
	Use:   "set <file.json> <row> <field> <value>",
	Short: "Change one field of a line item",
	Long: `Change one field of a line item. Field is one of description (desc),
quantity (qty) or unit_price (price). The row total is recalculated.`,
	Args: cobra.ExactArgs(4),
	RunE: runItemSet,
}

func init() {
	rootCmd.AddCommand(itemCmd)
	itemCmd.AddCommand(itemAddCmd, itemRemoveCmd, itemSetCmd)

	itemAddCmd.Flags().StringVar(&itemDescription, "desc", "", "Item description")
	itemAddCmd.Flags().StringVar(&itemQuantity, "qty", "", "Quantity")
	itemAddCmd.Flags().StringVar(&itemPrice, "price", "", "Unit price")
}

func runItemAdd(cmd *cobra.Command, args []string) error {
	path := args[0]

	session, err := loadSession(path)
	if err != nil {
		return err
	}
	if err := check(session.AddItem()); err != nil {
		return err
	}

	row := len(session.Invoice().Items) - 1
	for _, st := range []form.Status{
		session.SetItemField(row, model.FieldDescription, itemDescription),
		session.SetItemField(row, model.FieldQuantity, itemQuantity),
		session.SetItemField(row, model.FieldUnitPrice, itemPrice),
	} {
		if err := check(st); err != nil {
			return err
		}
	}
	if err := check(session.Save(path)); err != nil {
		return err
	}

	item := session.Invoice().Items[row]
	fmt.Printf("Row %d: %s x %s = %s\n", row+1, item.QuantityText, item.PriceText, item.TotalText)
	return nil
}

func runItemRemove(cmd *cobra.Command, args []string) error {
	path := args[0]
	row, err := parseRow(args[1])
	if err != nil {
		return err
	}

	session, err := loadSession(path)
	if err != nil {
		return err
	}
	if err := check(session.RemoveItem(row)); err != nil {
		return err
	}
	return check(session.Save(path))
}

func runItemSet(cmd *cobra.Command, args []string) error {
	path := args[0]
	row, err := parseRow(args[1])
	if err != nil {
		return err
	}
	field, ok := model.ParseField(args[2])
	if !ok {
		return fmt.Errorf("unknown field %q (use description, quantity or unit_price)", args[2])
	}

	session, err := loadSession(path)
	if err != nil {
		return err
	}
	st := session.SetItemField(row, field, args[3])
	if err := check(st); err != nil {
		return err
	}
	if err := check(session.Save(path)); err != nil {
		return err
	}

	fmt.Println(st.Message)
	return nil
}

// parseRow converts a 1-based row number into an item index
func parseRow(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid row %q: rows are numbered from 1", s)
	}
	return n - 1, nil
}
