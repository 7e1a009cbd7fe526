package server

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rezonia/invoice-generator/internal/codec"
	"github.com/rezonia/invoice-generator/internal/model"
	"github.com/rezonia/invoice-generator/internal/render"
	"github.com/rezonia/invoice-generator/internal/sequence"
)

// DefaultMaxBodyBytes limits the size of uploaded invoice documents
const DefaultMaxBodyBytes = 1 << 20

// Config holds server configuration
type Config struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Debug        bool
	MaxBodyBytes int64

	// AllowLocalLogos lets documents reference logo files on the server's
	// file system. When false the logo field is ignored.
	AllowLocalLogos bool

	Logger        *zap.Logger
	Sequence      sequence.Generator
	RenderOptions []render.Option
	Now           func() time.Time
}

// Server represents the HTTP API server
type Server struct {
	config   *Config
	router   *gin.Engine
	logger   *zap.Logger
	seq      sequence.Generator
	decoder  *codec.Decoder
	renderer *render.Renderer
}

// NewServer creates a new API server
func NewServer(config *Config) *Server {
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	seq := config.Sequence
	if seq == nil {
		seq = sequence.NewMemory()
	}
	now := config.Now
	if now == nil {
		now = time.Now
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestID())
	router.Use(RequestLogger(logger))

	renderOpts := append([]render.Option{render.WithLogger(logger)}, config.RenderOptions...)

	s := &Server{
		config:   config,
		router:   router,
		logger:   logger,
		seq:      seq,
		decoder:  &codec.Decoder{Now: now},
		renderer: render.New(renderOpts...),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		invoices := v1.Group("/invoices")
		invoices.GET("/next", s.handleNext)
		invoices.POST("/new", s.handleNew)
		invoices.POST("/totals", s.handleTotals)
		invoices.POST("/validate", s.handleValidate)
		invoices.POST("/render", s.handleRender)
	}
}

// Run starts the HTTP server
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:         s.config.Address,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	s.logger.Info("listening", zap.String("address", s.config.Address))
	return srv.ListenAndServe()
}

// Handler returns the http.Handler for use with custom servers
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// handleNext reports the number the next new invoice will get, without
// reserving it
func (s *Server) handleNext(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	n, err := s.seq.Peek(ctx)
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error:     "could not read the invoice sequence",
			RequestID: GetRequestID(c),
		})
		return
	}
	c.JSON(http.StatusOK, NextNumberResponse{Number: sequence.Format(n)})
}

// handleNew issues a fresh document with the next invoice number. An
// optional body acts as a template: its seller, VAT rate and logo carry over.
func (s *Server) handleNew(c *gin.Context) {
	body, ok := s.readBody(c, true)
	if !ok {
		return
	}

	var tmpl *model.Invoice
	if len(body) > 0 {
		var err error
		if tmpl, err = s.decoder.Decode(body); err != nil {
			s.respondError(c, err)
			return
		}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	n, err := s.seq.Next(ctx)
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error:     "could not reserve an invoice number",
			RequestID: GetRequestID(c),
		})
		return
	}

	inv := model.New(sequence.Format(n), s.decoder.Now())
	if tmpl != nil {
		inv.SellerName = tmpl.SellerName
		inv.SellerAddress = tmpl.SellerAddress
		inv.VATRatePercent = tmpl.VATRatePercent
		inv.LogoPath = tmpl.LogoPath
	}

	data, err := codec.Encode(inv)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

func (s *Server) handleTotals(c *gin.Context) {
	inv, ok := s.readInvoice(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newTotalsResponse(inv))
}

func (s *Server) handleValidate(c *gin.Context) {
	body, ok := s.readBody(c, false)
	if !ok {
		return
	}

	inv, err := s.decoder.Decode(body)
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusUnprocessableEntity, ValidationResponse{
			Valid:  false,
			Errors: []string{err.Error()},
		})
		return
	}

	errs, warnings := validateInvoice(inv)

	font, err := s.renderer.CheckFont(inv)
	if err != nil {
		errs = append(errs, err.Error())
	}
	if inv.LogoPath != "" && !s.config.AllowLocalLogos {
		warnings = append(warnings, "logo is ignored by this server")
	}

	c.JSON(http.StatusOK, ValidationResponse{
		Valid:    len(errs) == 0,
		Font:     font,
		Errors:   errs,
		Warnings: warnings,
	})
}

func (s *Server) handleRender(c *gin.Context) {
	inv, ok := s.readInvoice(c)
	if !ok {
		return
	}

	var warnings []string
	if inv.LogoPath != "" && !s.config.AllowLocalLogos {
		warnings = append(warnings, "logo is ignored by this server")
		inv.LogoPath = ""
	}

	var buf bytes.Buffer
	res, err := s.renderer.Render(inv, &buf)
	if err != nil {
		s.respondError(c, err)
		return
	}
	warnings = append(warnings, res.Warnings...)

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, pdfFilename(inv.Number)))
	c.Header("X-Invoice-Pages", strconv.Itoa(res.Pages))
	c.Header("X-Invoice-Font", res.Font)
	for _, w := range warnings {
		c.Writer.Header().Add("X-Invoice-Warning", w)
	}
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// readBody reads the request body, rejecting oversized bodies and, unless
// allowEmpty, empty ones
func (s *Server) readBody(c *gin.Context, allowEmpty bool) ([]byte, bool) {
	limit := s.config.MaxBodyBytes
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

	body, err := c.GetRawData()
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{
			Error:     "failed to read request body",
			RequestID: GetRequestID(c),
		})
		return nil, false
	}

	if len(body) == 0 && !allowEmpty {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:     "empty request body",
			Code:      model.ErrCodeMalformedDocument,
			RequestID: GetRequestID(c),
		})
		return nil, false
	}
	return body, true
}

func (s *Server) readInvoice(c *gin.Context) (*model.Invoice, bool) {
	body, ok := s.readBody(c, false)
	if !ok {
		return nil, false
	}
	inv, err := s.decoder.Decode(body)
	if err != nil {
		s.respondError(c, err)
		return nil, false
	}
	return inv, true
}

func (s *Server) respondError(c *gin.Context, err error) {
	c.Error(err)
	code := model.ErrorCode(err)
	c.JSON(statusFor(code), ErrorResponse{
		Error:     err.Error(),
		Code:      code,
		RequestID: GetRequestID(c),
	})
}

func statusFor(code string) int {
	switch code {
	case model.ErrCodeMalformedDocument, model.ErrCodeOutOfRange:
		return http.StatusBadRequest
	case model.ErrCodeFontUnavailable, model.ErrCodeResourceUnreadable:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Helper functions

func pdfFilename(number string) string {
	var b strings.Builder
	for _, r := range number {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "invoice.pdf"
	}
	return "invoice-" + b.String() + ".pdf"
}

func validateInvoice(inv *model.Invoice) ([]string, []string) {
	errors := []string{}
	var warnings []string

	if strings.TrimSpace(inv.Number) == "" {
		errors = append(errors, "missing invoice number")
	}
	if strings.TrimSpace(inv.SellerName) == "" {
		errors = append(errors, "missing company name")
	}
	if strings.TrimSpace(inv.BuyerName) == "" {
		errors = append(errors, "missing client name")
	}

	if len(inv.Items) == 0 {
		warnings = append(warnings, "invoice has no items")
	}
	for i, item := range inv.Items {
		if strings.TrimSpace(item.Description) == "" {
			warnings = append(warnings, fmt.Sprintf("item %d has no description", i+1))
		}
		if item.Total().IsZero() {
			warnings = append(warnings, fmt.Sprintf("item %d total is zero", i+1))
		}
	}

	return errors, warnings
}
