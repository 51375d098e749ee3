// Package render turns an invoice detail into a printable document.
package render

import (
	"time"

	"invoice-ledger-backend/internal/models"
	"invoice-ledger-backend/internal/services/ledger"

	"github.com/shopspring/decimal"
)

// DocumentView is the presentation input for an invoice document. Every
// amount is already formatted; templates do no arithmetic.
type DocumentView struct {
	InvoiceID     string
	InvoiceNumber string
	CustomerName  string
	Status        string
	Archived      bool
	IssueDate     string
	DueDate       string
	PaidAt        string
	Currency      string
	TaxPercent    string

	Items    []LineItemView
	Payments []PaymentView

	Subtotal   string
	TaxAmount  string
	Total      string
	AmountPaid string
	BalanceDue string
}

type LineItemView struct {
	Description string
	Quantity    string
	UnitPrice   string
	Amount      string
}

type PaymentView struct {
	Date      string
	Amount    string
	Method    string
	Reference string
}

// FromDetail builds the view. Amounts are rounded to two places here and
// nowhere else.
func FromDetail(detail *ledger.Detail) DocumentView {
	inv := detail.Invoice
	money := moneyFormatter(inv.Currency)

	view := DocumentView{
		InvoiceID:     inv.ID.String(),
		InvoiceNumber: inv.InvoiceNumber,
		CustomerName:  inv.CustomerName,
		Status:        string(inv.Status),
		Archived:      inv.IsArchived,
		IssueDate:     formatDate(inv.IssueDate),
		DueDate:       formatDate(inv.DueDate),
		Currency:      string(inv.Currency),
		TaxPercent:    inv.TaxPercent.String() + "%",
		Subtotal:      money(detail.Totals.Subtotal),
		TaxAmount:     money(detail.Totals.TaxAmount),
		Total:         money(detail.Totals.Total),
		AmountPaid:    money(detail.Totals.AmountPaid),
		BalanceDue:    money(detail.Totals.BalanceDue),
	}
	if inv.PaidAt != nil {
		view.PaidAt = formatDate(*inv.PaidAt)
	}

	for _, line := range detail.LineItems {
		view.Items = append(view.Items, LineItemView{
			Description: line.Description,
			Quantity:    line.Quantity.String(),
			UnitPrice:   money(line.UnitPrice),
			Amount:      money(line.LineTotal),
		})
	}
	for _, p := range detail.Payments {
		view.Payments = append(view.Payments, PaymentView{
			Date:      formatDate(p.PaymentDate),
			Amount:    money(p.Amount),
			Method:    metaString(p.Metadata, "method"),
			Reference: metaString(p.Metadata, "reference"),
		})
	}
	return view
}

func moneyFormatter(currency models.Currency) func(decimal.Decimal) string {
	symbol := currency.Symbol()
	return func(v decimal.Decimal) string {
		if v.IsNegative() {
			return "-" + symbol + v.Neg().StringFixed(2)
		}
		return symbol + v.StringFixed(2)
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format("2006-01-02")
}

func metaString(meta map[string]any, key string) string {
	if v, ok := meta[key].(string); ok {
		return v
	}
	return ""
}
