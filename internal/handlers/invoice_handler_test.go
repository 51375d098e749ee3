package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"invoice-ledger-backend/internal/config"
	"invoice-ledger-backend/internal/middleware"
	"invoice-ledger-backend/internal/models"
	"invoice-ledger-backend/internal/routes"
	"invoice-ledger-backend/internal/testdb"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	routes.RegisterRoutes(r, testdb.Open(t), &config.Config{DefaultCurrency: models.CurrencyUSD}, zap.NewNop())
	return r
}

func do(t *testing.T, r *gin.Engine, method, path, owner string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if owner != "" {
		req.Header.Set(middleware.OwnerHeader, owner)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]any
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func amount(t *testing.T, v any) decimal.Decimal {
	t.Helper()
	s, ok := v.(string)
	require.True(t, ok, "amount %v is not a string", v)
	return decimal.RequireFromString(s)
}

func createInvoice(t *testing.T, r *gin.Engine, owner string) string {
	t.Helper()
	w, body := do(t, r, http.MethodPost, "/api/invoices", owner, map[string]any{
		"invoice_number": "INV-100",
		"customer_name":  "Acme Corp",
		"issue_date":     "2026-02-01",
		"due_date":       "2026-03-01",
		"tax_percent":    "10",
		"line_items": []map[string]any{
			{"description": "Design", "quantity": "1", "unit_price": "100"},
			{"description": "Hosting", "quantity": "2", "unit_price": "25"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	inv := body["invoice"].(map[string]any)
	return inv["id"].(string)
}

func TestCreateAndFetchInvoice(t *testing.T) {
	r := newRouter(t)
	id := createInvoice(t, r, "owner-1")

	w, body := do(t, r, http.MethodGet, "/api/invoices/"+id, "owner-1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	inv := body["invoice"].(map[string]any)
	assert.Equal(t, "DRAFT", inv["status"])
	assert.Equal(t, "USD", inv["currency"])
	totals := body["totals"].(map[string]any)
	assert.True(t, amount(t, totals["total"]).Equal(decimal.NewFromInt(165)))
	assert.Len(t, body["line_items"], 2)
	assert.Empty(t, body["payments"])

	w, body = do(t, r, http.MethodGet, "/api/invoices", "owner-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, body["count"])
}

func TestCreateInvoiceValidation(t *testing.T) {
	r := newRouter(t)

	w, body := do(t, r, http.MethodPost, "/api/invoices", "owner-1", map[string]any{
		"invoice_number": "INV-1",
		"customer_name":  "Acme",
		"issue_date":     "2026-02-01",
		"due_date":       "2026-03-01",
		"line_items":     []any{},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation_error", body["error"])
	assert.Equal(t, "line_items", body["field"])

	w, _ = do(t, r, http.MethodPost, "/api/invoices", "owner-1", map[string]any{
		"customer_name": "Acme",
		"issue_date":    "first of feb",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPaymentFlow(t *testing.T) {
	r := newRouter(t)
	id := createInvoice(t, r, "owner-1")
	path := "/api/invoices/" + id + "/payments"

	w, body := do(t, r, http.MethodPost, path, "owner-1", map[string]any{"amount": "100", "method": "wire"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	inv := body["invoice"].(map[string]any)
	assert.True(t, amount(t, inv["balance_due"]).Equal(decimal.NewFromInt(65)))

	w, body = do(t, r, http.MethodPost, path, "owner-1", map[string]any{"amount": "65.01"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "overpayment", body["error"])

	w, body = do(t, r, http.MethodPost, path, "owner-1", map[string]any{"amount": "65"})
	require.Equal(t, http.StatusCreated, w.Code)
	inv = body["invoice"].(map[string]any)
	assert.Equal(t, "PAID", inv["status"])

	w, body = do(t, r, http.MethodPost, path, "owner-1", map[string]any{"amount": "0"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "amount", body["field"])
}

func TestOwnershipAndExistence(t *testing.T) {
	r := newRouter(t)
	id := createInvoice(t, r, "owner-1")

	w, _ := do(t, r, http.MethodGet, "/api/invoices/"+id, "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, body := do(t, r, http.MethodGet, "/api/invoices/"+id, "intruder", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "forbidden", body["error"])

	w, body = do(t, r, http.MethodGet, "/api/invoices/00000000-0000-0000-0000-000000000001", "intruder", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", body["error"])

	w, _ = do(t, r, http.MethodGet, "/api/invoices/not-a-uuid", "owner-1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestArchiveRestoreAndDelete(t *testing.T) {
	r := newRouter(t)
	id := createInvoice(t, r, "owner-1")

	w, body := do(t, r, http.MethodPost, "/api/invoices/archive", "owner-1", map[string]any{"id": id})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, body["invoice"].(map[string]any)["is_archived"])

	w, body = do(t, r, http.MethodPost, "/api/invoices/"+id+"/payments", "owner-1", map[string]any{"amount": "1"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "invalid_state", body["error"])
	assert.Nil(t, body["retryable"])

	w, body = do(t, r, http.MethodGet, "/api/invoices?archived=archived", "owner-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, body["count"])

	w, _ = do(t, r, http.MethodPost, "/api/invoices/"+id+"/restore", "owner-1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = do(t, r, http.MethodDelete, "/api/invoices/"+id, "owner-1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = do(t, r, http.MethodGet, "/api/invoices/"+id, "owner-1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRenderHTML(t *testing.T) {
	r := newRouter(t)
	id := createInvoice(t, r, "owner-1")

	w, _ := do(t, r, http.MethodGet, "/api/invoices/"+id+"/html", "owner-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "INV-100")
	assert.Contains(t, w.Body.String(), "$165.00")
}

func TestHealth(t *testing.T) {
	r := newRouter(t)
	w, body := do(t, r, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
}
