package authorization

import (
	"context"
	"errors"
	"testing"

	"invoice-ledger-backend/internal/models"
	"invoice-ledger-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loaderFor(invoices ...*models.Invoice) InvoiceLoader {
	byID := make(map[uuid.UUID]*models.Invoice, len(invoices))
	for _, inv := range invoices {
		byID[inv.ID] = inv
	}
	return func(_ context.Context, id uuid.UUID) (*models.Invoice, error) {
		if inv, ok := byID[id]; ok {
			return inv, nil
		}
		return nil, repository.ErrNotFound
	}
}

func TestAuthorizeOwner(t *testing.T) {
	inv := &models.Invoice{ID: uuid.New(), OwnerID: "alice"}
	got, err := NewGuard().Authorize(context.Background(), loaderFor(inv), "alice", inv.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.ID, got.ID)
}

func TestAuthorizeRejectsOtherOwner(t *testing.T) {
	inv := &models.Invoice{ID: uuid.New(), OwnerID: "alice"}
	_, err := NewGuard().Authorize(context.Background(), loaderFor(inv), "mallory", inv.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = NewGuard().Authorize(context.Background(), loaderFor(inv), "  ", inv.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAuthorizeMissingInvoiceIsNotFoundForEveryone(t *testing.T) {
	guard := NewGuard()
	for _, caller := range []string{"alice", "mallory", ""} {
		_, err := guard.Authorize(context.Background(), loaderFor(), caller, uuid.New())
		assert.ErrorIs(t, err, ErrNotFound, "caller %q", caller)
	}
}

func TestAuthorizePassesStorageErrorsThrough(t *testing.T) {
	boom := errors.New("connection reset")
	load := func(context.Context, uuid.UUID) (*models.Invoice, error) { return nil, boom }

	_, err := NewGuard().Authorize(context.Background(), load, "alice", uuid.New())
	assert.ErrorIs(t, err, boom)
}

func TestRequireActive(t *testing.T) {
	guard := NewGuard()
	assert.NoError(t, guard.RequireActive(&models.Invoice{}))
	assert.ErrorIs(t, guard.RequireActive(&models.Invoice{IsArchived: true}), ErrArchived)
}
