package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rezonia/invoice-generator/internal/form"
)

// headerFlags are the invoice header fields settable from the command line
type headerFlags struct {
	company       string
	address       string
	client        string
	clientAddress string
	number        string
	date          string
	vat           int
	logo          string
}

func (h *headerFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&h.company, "company", "", "Company (seller) name")
	cmd.Flags().StringVar(&h.address, "address", "", "Company address")
	cmd.Flags().StringVar(&h.client, "client", "", "Client (buyer) name")
	cmd.Flags().StringVar(&h.clientAddress, "client-address", "", "Client address")
	cmd.Flags().StringVar(&h.number, "number", "", "Invoice number")
	cmd.Flags().StringVar(&h.date, "date", "", "Issue date (dd.mm.yyyy)")
	cmd.Flags().IntVar(&h.vat, "vat", 0, "VAT rate in percent (0-100)")
	cmd.Flags().StringVar(&h.logo, "logo", "", "Logo image (PNG or JPEG); empty removes it")
}

var headerFlagNames = []string{"company", "address", "client", "client-address", "number", "date", "vat", "logo"}

func (h *headerFlags) anyChanged(cmd *cobra.Command) bool {
	for _, name := range headerFlagNames {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

// apply sets the fields whose flags were given explicitly
func (h *headerFlags) apply(cmd *cobra.Command, session *form.Session) error {
	changed := cmd.Flags().Changed
	inv := session.Invoice()

	var statuses []form.Status
	if changed("company") || changed("address") {
		name, address := inv.SellerName, inv.SellerAddress
		if changed("company") {
			name = h.company
		}
		if changed("address") {
			address = h.address
		}
		statuses = append(statuses, session.SetSeller(name, address))
	}
	if changed("client") || changed("client-address") {
		name, address := inv.BuyerName, inv.BuyerAddress
		if changed("client") {
			name = h.client
		}
		if changed("client-address") {
			address = h.clientAddress
		}
		statuses = append(statuses, session.SetBuyer(name, address))
	}
	if changed("number") {
		statuses = append(statuses, session.SetNumber(h.number))
	}
	if changed("date") {
		statuses = append(statuses, session.SetDate(h.date))
	}
	if changed("vat") {
		statuses = append(statuses, session.SetVATRate(h.vat))
	}
	if changed("logo") {
		statuses = append(statuses, session.SetLogo(h.logo))
	}

	for _, st := range statuses {
		if err := check(st); err != nil {
			return err
		}
	}
	return nil
}

var setFields headerFlags

var setCmd = &cobra.Command{
	Use:   "set <file.json>",
	Short: "Change invoice header fields",
	Long: `Change the seller, client, number, date, VAT rate or logo of an
invoice document. Only the given flags are changed.

Examples:
  invoice-generator set invoice.json --client "Buyer GmbH" --client-address "Straße 5"
  invoice-generator set invoice.json --vat 20 --date 15.10.2026
  invoice-generator set invoice.json --logo logo.png`,
	Args: cobra.ExactArgs(1),
	RunE: runSet,
}

func init() {
	rootCmd.AddCommand(setCmd)
	setFields.register(setCmd)
}

func runSet(cmd *cobra.Command, args []string) error {
	path := args[0]

	if !setFields.anyChanged(cmd) {
		return fmt.Errorf("nothing to change: give at least one field flag")
	}

	session, err := loadSession(path)
	if err != nil {
		return err
	}
	if err := setFields.apply(cmd, session); err != nil {
		return err
	}
	return check(session.Save(path))
}
