package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/invoice-generator/internal/codec"
	"github.com/rezonia/invoice-generator/internal/render"
)

// execute runs one command line. Flag variables are package-level, so every
// run starts from the flag defaults.
func execute(t *testing.T, args ...string) error {
	t.Helper()
	resetFlags(rootCmd)
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.PersistentFlags().VisitAll(reset)
	c.Flags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func TestParseRow(t *testing.T) {
	idx, err := parseRow("1")
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	for _, s := range []string{"0", "-2", "x"} {
		_, err := parseRow(s)
		assert.Error(t, err, s)
	}
}

func TestWorkflow(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "invoice.json")
	seqFile := filepath.Join(dir, "sequence.json")
	pdf := filepath.Join(dir, "invoice.pdf")

	require.NoError(t, execute(t, "new", doc, "--sequence-file", seqFile,
		"--company", "Acme", "--address", "Main St 1", "--vat", "20"))
	require.Error(t, execute(t, "new", doc, "--sequence-file", seqFile))

	require.NoError(t, execute(t, "item", "add", doc, "--desc", "Consulting", "--qty", "3", "--price", "10,00"))
	require.NoError(t, execute(t, "item", "add", doc, "--desc", "Extra", "--qty", "1"))

	inv, err := codec.NewDecoder().Load(doc)
	require.NoError(t, err)
	require.Len(t, inv.Items, 2)
	assert.Equal(t, "", inv.Items[1].PriceText)
	assert.Equal(t, "0.00", inv.Items[1].TotalText)

	require.NoError(t, execute(t, "item", "set", doc, "2", "price", "6"))
	require.NoError(t, execute(t, "set", doc, "--client", "Buyer GmbH", "--date", "15.10.2026"))
	require.Error(t, execute(t, "item", "remove", doc, "5"))

	inv, err = codec.NewDecoder().Load(doc)
	require.NoError(t, err)
	assert.Equal(t, "1", inv.Number)
	assert.Equal(t, "15.10.2026", inv.FormatDate())
	assert.Equal(t, "Acme", inv.SellerName)
	assert.Equal(t, "Buyer GmbH", inv.BuyerName)
	assert.Equal(t, 20, inv.VATRatePercent)
	require.Len(t, inv.Items, 2)
	assert.Equal(t, "6.00", inv.Items[1].TotalText)
	assert.Equal(t, "43.20", inv.ComputeTotals().GrandTotal.StringFixed(2))

	require.NoError(t, execute(t, "item", "remove", doc, "2"))
	require.NoError(t, execute(t, "export", doc, "-o", pdf))

	data, err := os.ReadFile(pdf)
	require.NoError(t, err)
	pages, err := render.PageCount(data)
	require.NoError(t, err)
	assert.Equal(t, 1, pages)
}

func TestNew_DryRunDoesNotReserve(t *testing.T) {
	dir := t.TempDir()
	seqFile := filepath.Join(dir, "sequence.json")
	first := filepath.Join(dir, "first.json")
	second := filepath.Join(dir, "second.json")

	require.NoError(t, execute(t, "new", first, "--sequence-file", seqFile))
	require.NoError(t, execute(t, "new", second, "--sequence-file", seqFile, "--dry-run"))
	assert.NoFileExists(t, second)

	require.NoError(t, execute(t, "new", second, "--sequence-file", seqFile))
	inv, err := codec.NewDecoder().Load(second)
	require.NoError(t, err)
	assert.Equal(t, "2", inv.Number)
}

func TestItemAdd_FlagsDoNotLeakBetweenRuns(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "invoice.json")

	require.NoError(t, execute(t, "new", doc, "--sequence-file", filepath.Join(dir, "sequence.json")))
	require.NoError(t, execute(t, "item", "add", doc, "--desc", "First", "--qty", "2", "--price", "5"))
	require.NoError(t, execute(t, "item", "add", doc))

	inv, err := codec.NewDecoder().Load(doc)
	require.NoError(t, err)
	require.Len(t, inv.Items, 2)
	assert.Equal(t, "10.00", inv.Items[0].TotalText)
	assert.Empty(t, inv.Items[1].Description)
	assert.Empty(t, inv.Items[1].QuantityText)
	assert.Equal(t, "0.00", inv.Items[1].TotalText)
}
