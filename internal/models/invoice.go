package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type InvoiceStatus string

const (
	InvoiceStatusDraft InvoiceStatus = "DRAFT"
	InvoiceStatusPaid  InvoiceStatus = "PAID"
)

type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyINR Currency = "INR"
	CurrencyEUR Currency = "EUR"
)

// ParseCurrency normalizes a currency code and reports whether it is supported.
func ParseCurrency(code string) (Currency, bool) {
	c := Currency(strings.ToUpper(strings.TrimSpace(code)))
	return c, c.Valid()
}

func (c Currency) Valid() bool {
	switch c {
	case CurrencyUSD, CurrencyINR, CurrencyEUR:
		return true
	}
	return false
}

// Symbol is used only when rendering documents.
func (c Currency) Symbol() string {
	switch c {
	case CurrencyINR:
		return "₹"
	case CurrencyEUR:
		return "€"
	default:
		return "$"
	}
}

// Invoice is the root financial record. The derived amounts are a cached
// projection of the invoice's line items and payments and are only written by
// the ledger engine.
type Invoice struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID       string    `gorm:"index;not null" json:"owner_id"`
	InvoiceNumber string    `gorm:"index" json:"invoice_number"`
	CustomerName  string    `json:"customer_name"`
	IssueDate     time.Time `json:"issue_date"`
	DueDate       time.Time `json:"due_date"`
	Currency      Currency  `gorm:"type:varchar(3)" json:"currency"`

	TaxPercent decimal.Decimal `gorm:"type:numeric" json:"tax_percent"`
	Subtotal   decimal.Decimal `gorm:"type:numeric" json:"subtotal"`
	TaxAmount  decimal.Decimal `gorm:"type:numeric" json:"tax_amount"`
	Total      decimal.Decimal `gorm:"type:numeric" json:"total"`
	AmountPaid decimal.Decimal `gorm:"type:numeric" json:"amount_paid"`
	BalanceDue decimal.Decimal `gorm:"type:numeric" json:"balance_due"`

	Status     InvoiceStatus `gorm:"type:varchar(16);index" json:"status"`
	IsArchived bool          `gorm:"index" json:"is_archived"`
	PaidAt     *time.Time    `json:"paid_at,omitempty"`

	// Version is bumped on every save and guards against lost updates.
	Version   int64     `gorm:"not null;default:0" json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
