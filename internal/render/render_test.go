package render

import (
	"strings"
	"testing"
	"time"

	"invoice-ledger-backend/internal/models"
	"invoice-ledger-backend/internal/services/ledger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sampleDetail() *ledger.Detail {
	paidAt := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	inv := &models.Invoice{
		ID:            uuid.New(),
		InvoiceNumber: "INV-7",
		CustomerName:  "Widgets <Ltd>",
		IssueDate:     time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		DueDate:       time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Currency:      models.CurrencyEUR,
		TaxPercent:    d("7.5"),
		Status:        models.InvoiceStatusPaid,
		PaidAt:        &paidAt,
	}
	lines := []models.LineItem{
		{Description: "Consulting", Quantity: d("1.5"), UnitPrice: d("33.333"), LineTotal: d("49.9995")},
	}
	payments := []models.Payment{
		{Amount: d("53.7494625"), PaymentDate: paidAt, Metadata: datatypes.JSONMap{"method": "card"}},
	}
	return &ledger.Detail{
		Invoice:   inv,
		LineItems: lines,
		Payments:  payments,
		Totals:    ledger.ComputeTotals(inv.TaxPercent, lines, payments),
	}
}

func TestFromDetailRoundsOnlyForDisplay(t *testing.T) {
	view := FromDetail(sampleDetail())

	assert.Equal(t, "INV-7", view.InvoiceNumber)
	assert.Equal(t, "PAID", view.Status)
	assert.Equal(t, "2026-02-01", view.IssueDate)
	assert.Equal(t, "2026-03-02", view.PaidAt)
	assert.Equal(t, "7.5%", view.TaxPercent)
	assert.Equal(t, "€50.00", view.Subtotal)
	assert.Equal(t, "€3.75", view.TaxAmount)
	assert.Equal(t, "€53.75", view.Total)
	assert.Equal(t, "€0.00", view.BalanceDue)

	require.Len(t, view.Items, 1)
	assert.Equal(t, "1.5", view.Items[0].Quantity)
	assert.Equal(t, "€33.33", view.Items[0].UnitPrice)

	require.Len(t, view.Payments, 1)
	assert.Equal(t, "card", view.Payments[0].Method)
	assert.Empty(t, view.Payments[0].Reference)
}

func TestHTMLRendererEscapesAndIncludesTotals(t *testing.T) {
	html, err := NewHTMLRenderer().Render(FromDetail(sampleDetail()))
	require.NoError(t, err)

	assert.Contains(t, html, "<title>Invoice INV-7</title>")
	assert.Contains(t, html, "Widgets &lt;Ltd&gt;")
	assert.NotContains(t, html, "Widgets <Ltd>")
	assert.Contains(t, html, "€53.75")
	assert.Contains(t, html, "card")
	assert.Equal(t, 1, strings.Count(html, "Consulting"))
}

func TestNewPDFRendererDefaults(t *testing.T) {
	r := NewPDFRenderer(nil, "", 0)
	assert.NotNil(t, r.html)
	assert.Equal(t, defaultPDFTimeout, r.timeout)
}
