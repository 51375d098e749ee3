package ledger

import (
	"time"

	"invoice-ledger-backend/internal/models"

	"github.com/shopspring/decimal"
)

// Totals is the derived financial state of an invoice.
type Totals struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	TaxAmount  decimal.Decimal `json:"tax_amount"`
	Total      decimal.Decimal `json:"total"`
	AmountPaid decimal.Decimal `json:"amount_paid"`
	BalanceDue decimal.Decimal `json:"balance_due"`
}

// ComputeTotals derives totals from scratch. No rounding is applied: tax is
// subtotal * taxPercent shifted two places, which is exact.
func ComputeTotals(taxPercent decimal.Decimal, lines []models.LineItem, payments []models.Payment) Totals {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.LineTotal)
	}

	paid := decimal.Zero
	for _, p := range payments {
		paid = paid.Add(p.Amount)
	}

	tax := subtotal.Mul(taxPercent).Shift(-2)
	total := subtotal.Add(tax)

	return Totals{
		Subtotal:   subtotal,
		TaxAmount:  tax,
		Total:      total,
		AmountPaid: paid,
		BalanceDue: total.Sub(paid),
	}
}

// TotalsOf reads the cached totals off an invoice.
func TotalsOf(inv *models.Invoice) Totals {
	return Totals{
		Subtotal:   inv.Subtotal,
		TaxAmount:  inv.TaxAmount,
		Total:      inv.Total,
		AmountPaid: inv.AmountPaid,
		BalanceDue: inv.BalanceDue,
	}
}

func (t Totals) Equal(o Totals) bool {
	return t.Subtotal.Equal(o.Subtotal) &&
		t.TaxAmount.Equal(o.TaxAmount) &&
		t.Total.Equal(o.Total) &&
		t.AmountPaid.Equal(o.AmountPaid) &&
		t.BalanceDue.Equal(o.BalanceDue)
}

// apply copies totals onto the invoice and moves it to PAID when the
// balance is exactly zero. It never moves an invoice back to DRAFT.
// It reports whether anything changed.
func (t Totals) apply(inv *models.Invoice, now func() time.Time) bool {
	changed := !t.Equal(TotalsOf(inv))
	if changed {
		inv.Subtotal = t.Subtotal
		inv.TaxAmount = t.TaxAmount
		inv.Total = t.Total
		inv.AmountPaid = t.AmountPaid
		inv.BalanceDue = t.BalanceDue
	}

	if t.BalanceDue.IsZero() && inv.Status != models.InvoiceStatusPaid {
		paidAt := now().UTC()
		inv.Status = models.InvoiceStatusPaid
		inv.PaidAt = &paidAt
		changed = true
	}
	return changed
}
