package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Payment is append-only. Metadata carries optional caller details such as
// the payment method or an external reference.
type Payment struct {
	ID          uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	InvoiceID   uuid.UUID         `gorm:"type:uuid;index;not null" json:"invoice_id"`
	Amount      decimal.Decimal   `gorm:"type:numeric" json:"amount"`
	PaymentDate time.Time         `gorm:"column:payment_date;index" json:"payment_date"`
	Metadata    datatypes.JSONMap `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}
