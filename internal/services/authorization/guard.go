// Package authorization decides whether a caller may operate on an invoice.
package authorization

import (
	"context"
	"errors"
	"strings"

	"invoice-ledger-backend/internal/models"
	"invoice-ledger-backend/internal/repository"

	"github.com/google/uuid"
)

// InvoiceLoader reads an invoice by id. Callers pass either a plain or a
// locking read.
type InvoiceLoader func(ctx context.Context, id uuid.UUID) (*models.Invoice, error)

type Guard struct{}

func NewGuard() *Guard {
	return &Guard{}
}

// Authorize loads the invoice and checks that ownerID owns it. A missing
// invoice is reported as ErrNotFound whoever the caller is, so it always
// wins over ErrForbidden.
func (g *Guard) Authorize(ctx context.Context, load InvoiceLoader, ownerID string, invoiceID uuid.UUID) (*models.Invoice, error) {
	inv, err := load(ctx, invoiceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" || inv.OwnerID != ownerID {
		return nil, ErrForbidden
	}
	return inv, nil
}

// RequireActive rejects archived invoices.
func (g *Guard) RequireActive(inv *models.Invoice) error {
	if inv.IsArchived {
		return ErrArchived
	}
	return nil
}
