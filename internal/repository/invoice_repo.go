package repository

import (
	"context"
	"time"

	"invoice-ledger-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FindInvoice fetch a single invoice by ID
func (r *GormRepository) FindInvoice(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := r.db.WithContext(ctx).First(&invoice, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &invoice, nil
}

func (r *GormRepository) FindInvoiceForUpdate(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&invoice, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &invoice, nil
}

// ListInvoices returns the owner's invoices, newest first.
func (r *GormRepository) ListInvoices(ctx context.Context, ownerID string, archived ArchivedFilter) ([]models.Invoice, error) {
	var invoices []models.Invoice

	query := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC")

	switch archived {
	case ArchivedOnly:
		query = query.Where("is_archived = ?", true)
	case ArchivedAll:
	default:
		query = query.Where("is_archived = ?", false)
	}

	err := query.Find(&invoices).Error
	return invoices, translate(err)
}

func (r *GormRepository) CreateInvoice(ctx context.Context, inv *models.Invoice) error {
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	return translate(r.db.WithContext(ctx).Create(inv).Error)
}

// SaveInvoice writes the mutable fields of the invoice. The update only
// applies if nobody saved the invoice since it was read; otherwise
// ErrConflict is returned and inv is left as it was.
func (r *GormRepository) SaveInvoice(ctx context.Context, inv *models.Invoice) error {
	prev := inv.Version
	now := time.Now().UTC()

	result := r.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Where("id = ? AND version = ?", inv.ID, prev).
		Updates(map[string]interface{}{
			"subtotal":    inv.Subtotal,
			"tax_amount":  inv.TaxAmount,
			"total":       inv.Total,
			"amount_paid": inv.AmountPaid,
			"balance_due": inv.BalanceDue,
			"status":      inv.Status,
			"is_archived": inv.IsArchived,
			"paid_at":     inv.PaidAt,
			"version":     prev + 1,
			"updated_at":  now,
		})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrConflict
	}

	inv.Version = prev + 1
	inv.UpdatedAt = now
	return nil
}

func (r *GormRepository) DeleteInvoice(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Invoice{}, "id = ?", id)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepository) DeleteOrphans(ctx context.Context) (int64, int64, error) {
	invoiceIDs := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&models.Invoice{}).Select("id")
	}

	lines := r.db.WithContext(ctx).
		Where("invoice_id NOT IN (?)", invoiceIDs()).
		Delete(&models.LineItem{})
	if lines.Error != nil {
		return 0, 0, translate(lines.Error)
	}

	payments := r.db.WithContext(ctx).
		Where("invoice_id NOT IN (?)", invoiceIDs()).
		Delete(&models.Payment{})
	if payments.Error != nil {
		return lines.RowsAffected, 0, translate(payments.Error)
	}

	return lines.RowsAffected, payments.RowsAffected, nil
}
