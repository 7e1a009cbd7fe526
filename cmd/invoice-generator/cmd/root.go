package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rezonia/invoice-generator/internal/form"
	"github.com/rezonia/invoice-generator/internal/render"
	"github.com/rezonia/invoice-generator/internal/sequence"
)

var (
	version = "1.0.0"

	// Global flags
	verbose      bool
	outputFormat string
	fontFile     string
	sequenceFile string
	databaseURL  string
	logoPolicy   string

	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "invoice-generator",
	Short: "Create invoices and export them as A4 PDF",
	Long: `Invoice Generator keeps invoices as small JSON documents and prints
them as single-language A4 PDF files.

Invoice numbers come from a shared sequence: a state file by default, or a
PostgreSQL table when --database-url is set.

Examples:
  # Start a new invoice
  invoice-generator new invoice.json --company "Acme" --client "Buyer" --vat 20

  # Add a line item
  invoice-generator item add invoice.json --desc "Consulting" --qty 3 --price 10,00

  # Show totals
  invoice-generator totals invoice.json -f table

  # Export to PDF
  invoice-generator export invoice.json -o invoice.pdf`,
	Version: version,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "json", "Output format (json, csv, table)")
	rootCmd.PersistentFlags().StringVar(&fontFile, "font", "", "TrueType font used for PDF export (env: INVOICE_FONT)")
	rootCmd.PersistentFlags().StringVar(&sequenceFile, "sequence-file", "", "Invoice number state file (env: INVOICE_SEQUENCE_FILE)")
	rootCmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "PostgreSQL URL for shared invoice numbers (env: DATABASE_URL)")
	rootCmd.PersistentFlags().StringVar(&logoPolicy, "logo-policy", "", "What to do with an unreadable logo: skip or fail (env: INVOICE_LOGO_POLICY)")

	// Load from .env and environment variables if not set via flags
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: could not load .env: %v\n", err)
	}

	if fontFile == "" {
		fontFile = os.Getenv("INVOICE_FONT")
	}
	if sequenceFile == "" {
		sequenceFile = os.Getenv("INVOICE_SEQUENCE_FILE")
	}
	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if logoPolicy == "" {
		logoPolicy = os.Getenv("INVOICE_LOGO_POLICY")
	}

	if l, err := newLogger(verbose); err == nil {
		logger = l
	} else {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	cfg.Encoding = "console"
	return cfg.Build()
}

func printVerbose(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

func renderOptions() ([]render.Option, error) {
	policy, err := render.ParseLogoPolicy(logoPolicy)
	if err != nil {
		return nil, err
	}
	opts := []render.Option{
		render.WithLogoPolicy(policy),
		render.WithLogger(logger),
	}
	if fontFile != "" {
		opts = append(opts, render.WithFontFile(fontFile))
	}
	return opts, nil
}

func newRenderer() (*render.Renderer, error) {
	opts, err := renderOptions()
	if err != nil {
		return nil, err
	}
	return render.New(opts...), nil
}

// openSequence returns the configured number generator and a function
// releasing its resources
func openSequence(ctx context.Context) (sequence.Generator, func(), error) {
	if databaseURL != "" {
		pool, err := sequence.Connect(ctx, databaseURL)
		if err != nil {
			return nil, nil, err
		}
		seq := sequence.NewPostgres(pool, "")
		if err := seq.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		printVerbose("Using PostgreSQL invoice sequence\n")
		return seq, pool.Close, nil
	}

	path := sequenceFile
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, nil, fmt.Errorf("locate config directory: %w", err)
		}
		path = filepath.Join(dir, "invoice-generator", "sequence.json")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create sequence directory: %w", err)
	}
	seq := sequence.NewFile(path)
	printVerbose("Using invoice sequence file %s\n", seq.Path())
	return seq, func() {}, nil
}

// newSession creates a session; seq may be nil for commands that never
// issue numbers
func newSession(seq sequence.Generator) (*form.Session, error) {
	renderer, err := newRenderer()
	if err != nil {
		return nil, err
	}
	return form.NewSession(seq, renderer, form.WithLogger(logger)), nil
}

// loadSession opens the invoice document at path
func loadSession(path string) (*form.Session, error) {
	session, err := newSession(nil)
	if err != nil {
		return nil, err
	}
	if err := check(session.Load(path)); err != nil {
		return nil, err
	}
	return session, nil
}

// check turns a failed status into an error and reports successful ones
// in verbose mode
func check(st form.Status) error {
	if !st.OK {
		return errors.New(st.Message)
	}
	printVerbose("%s\n", st.Message)
	return nil
}
