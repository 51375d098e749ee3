package repository

import (
	"context"

	"invoice-ledger-backend/internal/models"

	"github.com/google/uuid"
)

func (r *GormRepository) ListLineItems(ctx context.Context, invoiceID uuid.UUID) ([]models.LineItem, error) {
	var items []models.LineItem
	err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("position ASC").
		Find(&items).Error
	return items, translate(err)
}

// InsertLineItems creates all items in one statement. LineTotal is computed
// here and never changes afterwards.
func (r *GormRepository) InsertLineItems(ctx context.Context, invoiceID uuid.UUID, specs []LineItemSpec) ([]models.LineItem, error) {
	if len(specs) == 0 {
		return nil, nil
	}

	items := make([]models.LineItem, 0, len(specs))
	for i, spec := range specs {
		items = append(items, models.LineItem{
			ID:          uuid.New(),
			InvoiceID:   invoiceID,
			Position:    i,
			Description: spec.Description,
			Quantity:    spec.Quantity,
			UnitPrice:   spec.UnitPrice,
			LineTotal:   spec.Quantity.Mul(spec.UnitPrice),
		})
	}

	if err := r.db.WithContext(ctx).Create(&items).Error; err != nil {
		return nil, translate(err)
	}
	return items, nil
}

func (r *GormRepository) DeleteLineItems(ctx context.Context, invoiceID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Delete(&models.LineItem{})
	return result.RowsAffected, translate(result.Error)
}
