package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rezonia/invoice-generator/internal/server"
)

var (
	serverAddr      string
	serverDebug     bool
	allowLocalLogos bool
	readTimeout     time.Duration
	writeTimeout    time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP API server for invoice documents.

The API provides endpoints for:
  - POST /api/v1/invoices/new       - New document with the next number
  - POST /api/v1/invoices/totals    - Subtotal, VAT and total
  - POST /api/v1/invoices/validate  - Check a document before export
  - POST /api/v1/invoices/render    - Render a document as PDF
  - GET  /health                    - Health check

Examples:
  # Start server on default port
  invoice-generator serve

  # Share invoice numbers through PostgreSQL
  invoice-generator serve --database-url postgres://localhost/invoices

  # Start in debug mode
  invoice-generator serve --debug`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverAddr, "address", ":8080", "Server listen address")
	serveCmd.Flags().BoolVar(&serverDebug, "debug", false, "Enable debug mode")
	serveCmd.Flags().BoolVar(&allowLocalLogos, "allow-local-logos", false, "Let documents reference logo files on this machine")
	serveCmd.Flags().DurationVar(&readTimeout, "read-timeout", 30*time.Second, "HTTP read timeout")
	serveCmd.Flags().DurationVar(&writeTimeout, "write-timeout", 2*time.Minute, "HTTP write timeout")
}

func runServe(cmd *cobra.Command, args []string) error {
	seq, release, err := openSequence(cmd.Context())
	if err != nil {
		return err
	}
	defer release()

	renderOpts, err := renderOptions()
	if err != nil {
		return err
	}

	config := &server.Config{
		Address:         serverAddr,
		ReadTimeout:     readTimeout,
		WriteTimeout:    writeTimeout,
		Debug:           serverDebug,
		AllowLocalLogos: allowLocalLogos,
		Logger:          logger,
		Sequence:        seq,
		RenderOptions:   renderOpts,
	}

	srv := server.NewServer(config)

	// Handle graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		fmt.Println("\nShutting down server...")
		release()
		os.Exit(0)
	}()

	fmt.Printf("Starting server on %s\n", serverAddr)
	if databaseURL != "" {
		fmt.Println("Invoice numbers shared through PostgreSQL")
	}

	return srv.Run()
}
