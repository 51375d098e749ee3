package repository

import (
	"context"
	"time"

	"invoice-ledger-backend/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

func (r *GormRepository) ListPayments(ctx context.Context, invoiceID uuid.UUID) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("payment_date ASC, created_at ASC").
		Find(&payments).Error
	return payments, translate(err)
}

func (r *GormRepository) InsertPayment(
	ctx context.Context,
	invoiceID uuid.UUID,
	amount decimal.Decimal,
	date time.Time,
	metadata map[string]any,
) (*models.Payment, error) {
	payment := &models.Payment{
		ID:          uuid.New(),
		InvoiceID:   invoiceID,
		Amount:      amount,
		PaymentDate: date,
	}
	if len(metadata) > 0 {
		payment.Metadata = datatypes.JSONMap(metadata)
	}

	if err := r.db.WithContext(ctx).Create(payment).Error; err != nil {
		return nil, translate(err)
	}
	return payment, nil
}

func (r *GormRepository) DeletePayments(ctx context.Context, invoiceID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Delete(&models.Payment{})
	return result.RowsAffected, translate(result.Error)
}
