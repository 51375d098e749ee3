package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItem is immutable once created. LineTotal is fixed at creation time.
type LineItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;index;not null" json:"invoice_id"`
	Position    int             `json:"position"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `gorm:"type:numeric" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric" json:"unit_price"`
	LineTotal   decimal.Decimal `gorm:"type:numeric" json:"line_total"`
	CreatedAt   time.Time       `json:"created_at"`
}
