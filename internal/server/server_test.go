package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rezonia/invoice-generator/internal/render"
	"github.com/rezonia/invoice-generator/internal/sequence"
	"github.com/rezonia/invoice-generator/internal/server"
)

const sampleDocument = `{
  "company": "ООО Рога & Копыта",
  "address": "ул. Главная, 1",
  "client": "Buyer GmbH",
  "client_address": "Straße 5, München",
  "invoice_no": "12",
  "date": "15.10.2026",
  "vat": 20,
  "logo": null,
  "items": [
    ["Консультация", "3", "10,00", "30.00"],
    ["Support", "1.5", "4", "6.00"]
  ]
}`

func newTestServer() *server.Server {
	config := &server.Config{
		Address:       ":8080",
		Debug:         true,
		Logger:        zap.NewNop(),
		Sequence:      sequence.NewMemory(),
		RenderOptions: []render.Option{render.WithFontSearchPaths()},
		Now: func() time.Time {
			return time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
		},
	}
	return server.NewServer(config)
}

func post(srv *server.Server, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(http.MethodPost, path, nil)
	} else {
		req = httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	}
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, "ok", response["status"])
	assert.NotEmpty(t, response["time"])
}

func TestRequestID(t *testing.T) {
	srv := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	assert.Len(t, w.Header().Get(server.RequestIDHeader), 36)

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(server.RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(server.RequestIDHeader))
}

func TestNewEndpoint(t *testing.T) {
	srv := newTestServer()

	w := post(srv, "/api/v1/invoices/new", "")
	require.Equal(t, http.StatusOK, w.Code)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "1", doc["invoice_no"])
	assert.Equal(t, "15.10.2026", doc["date"])
	assert.Equal(t, []interface{}{}, doc["items"])

	w = post(srv, "/api/v1/invoices/new", sampleDocument)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "2", doc["invoice_no"])
	assert.Equal(t, "ООО Рога & Копыта", doc["company"])
	assert.Equal(t, "", doc["client"])
	assert.Equal(t, float64(20), doc["vat"])
	assert.Equal(t, []interface{}{}, doc["items"])
}

func TestNextEndpoint(t *testing.T) {
	srv := newTestServer()

	get := func() server.NextNumberResponse {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/invoices/next", nil)
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		var resp server.NextNumberResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		return resp
	}

	assert.Equal(t, "1", get().Number)
	assert.Equal(t, "1", get().Number)

	require.Equal(t, http.StatusOK, post(srv, "/api/v1/invoices/new", "").Code)
	assert.Equal(t, "2", get().Number)
}

func TestTotalsEndpoint(t *testing.T) {
	srv := newTestServer()

	w := post(srv, "/api/v1/invoices/totals", sampleDocument)
	require.Equal(t, http.StatusOK, w.Code)

	var response server.TotalsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "12", response.Number)
	assert.Equal(t, 2, response.Items)
	assert.Equal(t, 20, response.VATRate)
	assert.Equal(t, "36.00", response.Subtotal)
	assert.Equal(t, "7.20", response.VATAmount)
	assert.Equal(t, "43.20", response.GrandTotal)
}

func TestTotalsEndpoint_Errors(t *testing.T) {
	srv := newTestServer()

	tests := []struct {
		name     string
		body     string
		expCode  int
		expError string
	}{
		{"empty body", "", http.StatusBadRequest, "MALFORMED_DOCUMENT"},
		{"not json", "hello", http.StatusBadRequest, "MALFORMED_DOCUMENT"},
		{"array", "[1,2]", http.StatusBadRequest, "MALFORMED_DOCUMENT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(srv, "/api/v1/invoices/totals", tt.body)
			assert.Equal(t, tt.expCode, w.Code)

			var response server.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, tt.expError, response.Code)
			assert.NotEmpty(t, response.RequestID)
		})
	}
}

func TestValidateEndpoint(t *testing.T) {
	srv := newTestServer()

	w := post(srv, "/api/v1/invoices/validate", sampleDocument)
	require.Equal(t, http.StatusOK, w.Code)

	var response server.ValidationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(t, response.Valid)
	assert.Empty(t, response.Errors)
	assert.Equal(t, render.EmbeddedFontName, response.Font)

	w = post(srv, "/api/v1/invoices/validate", `{"invoice_no": "", "client": "株式会社", "logo": "/etc/logo.png"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.False(t, response.Valid)
	assert.Contains(t, response.Errors, "missing invoice number")
	assert.Contains(t, response.Errors, "missing company name")
	require.Len(t, response.Errors, 3)
	assert.Contains(t, response.Errors[2], "FONT_UNAVAILABLE")
	assert.Contains(t, response.Warnings, "invoice has no items")
	assert.Contains(t, response.Warnings, "logo is ignored by this server")
}

func TestValidateEndpoint_Malformed(t *testing.T) {
	srv := newTestServer()

	w := post(srv, "/api/v1/invoices/validate", `{"vat": "twenty"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var response server.ValidationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.False(t, response.Valid)
	require.Len(t, response.Errors, 1)
}

func TestRenderEndpoint(t *testing.T) {
	srv := newTestServer()

	w := post(srv, "/api/v1/invoices/render", sampleDocument)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="invoice-12.pdf"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "1", w.Header().Get("X-Invoice-Pages"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))

	pages, err := render.PageCount(w.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 1, pages)
}

func TestRenderEndpoint_IgnoresLocalLogo(t *testing.T) {
	srv := newTestServer()

	doc := strings.Replace(sampleDocument, `"logo": null`, `"logo": "/etc/passwd"`, 1)
	w := post(srv, "/api/v1/invoices/render", doc)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"logo is ignored by this server"}, w.Header().Values("X-Invoice-Warning"))
}

func TestRenderEndpoint_FontUnavailable(t *testing.T) {
	srv := newTestServer()

	doc := strings.Replace(sampleDocument, "Buyer GmbH", "株式会社", 1)
	w := post(srv, "/api/v1/invoices/render", doc)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var response server.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "FONT_UNAVAILABLE", response.Code)
}

func TestRenderEndpoint_BodyTooLarge(t *testing.T) {
	srv := server.NewServer(&server.Config{
		Debug:         true,
		MaxBodyBytes:  64,
		RenderOptions: []render.Option{render.WithFontSearchPaths()},
	})

	w := post(srv, "/api/v1/invoices/render", sampleDocument)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
