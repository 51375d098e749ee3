package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"invoice-ledger-backend/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("repository: record not found")
	ErrConflict = errors.New("repository: concurrent modification")
)

// LineItemSpec is the caller-supplied part of a line item.
type LineItemSpec struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
}

type ArchivedFilter string

const (
	ArchivedExclude ArchivedFilter = "active"
	ArchivedOnly    ArchivedFilter = "archived"
	ArchivedAll     ArchivedFilter = "all"
)

// Repository is the read/write contract the ledger engine needs over
// invoices, line items and payments. Reads observe writes made earlier
// through the same Repository value; SaveInvoice is last-write-wins on the
// derived fields, guarded by the invoice version.
type Repository interface {
	FindInvoice(ctx context.Context, id uuid.UUID) (*models.Invoice, error)
	// FindInvoiceForUpdate reads the invoice and locks its row until the
	// surrounding transaction ends, where the database supports it.
	FindInvoiceForUpdate(ctx context.Context, id uuid.UUID) (*models.Invoice, error)
	ListInvoices(ctx context.Context, ownerID string, archived ArchivedFilter) ([]models.Invoice, error)
	CreateInvoice(ctx context.Context, inv *models.Invoice) error
	SaveInvoice(ctx context.Context, inv *models.Invoice) error
	DeleteInvoice(ctx context.Context, id uuid.UUID) error

	ListLineItems(ctx context.Context, invoiceID uuid.UUID) ([]models.LineItem, error)
	InsertLineItems(ctx context.Context, invoiceID uuid.UUID, specs []LineItemSpec) ([]models.LineItem, error)
	DeleteLineItems(ctx context.Context, invoiceID uuid.UUID) (int64, error)

	ListPayments(ctx context.Context, invoiceID uuid.UUID) ([]models.Payment, error)
	InsertPayment(ctx context.Context, invoiceID uuid.UUID, amount decimal.Decimal, date time.Time, metadata map[string]any) (*models.Payment, error)
	DeletePayments(ctx context.Context, invoiceID uuid.UUID) (int64, error)

	// DeleteOrphans removes line items and payments whose invoice is gone.
	DeleteOrphans(ctx context.Context) (lineItems int64, payments int64, err error)

	// Transaction runs fn against a Repository bound to a single database
	// transaction. Any error returned by fn rolls the transaction back.
	Transaction(ctx context.Context, fn func(Repository) error) error
}

// GormRepository implements Repository on top of gorm.
type GormRepository struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// WithLockTimeout bounds how long a transaction waits on a row lock
// (postgres only).
func (r *GormRepository) WithLockTimeout(d time.Duration) *GormRepository {
	r.lockTimeout = d
	return r
}

func (r *GormRepository) Transaction(ctx context.Context, fn func(Repository) error) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if r.lockTimeout > 0 && tx.Dialector.Name() == "postgres" {
			stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeout.Milliseconds())
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}
		return fn(&GormRepository{db: tx, lockTimeout: r.lockTimeout})
	})
	return translate(err)
}

// Migrate creates or updates the ledger tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Invoice{},
		&models.LineItem{},
		&models.Payment{},
	)
}

// postgres: serialization_failure, deadlock_detected, lock_not_available
var conflictCodes = map[string]bool{
	"40001": true,
	"40P01": true,
	"55P03": true,
}

// translate maps driver errors onto ErrNotFound / ErrConflict and leaves
// everything else untouched.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && conflictCodes[pgErr.Code] {
		return fmt.Errorf("%w: %s", ErrConflict, pgErr.Message)
	}
	return err
}
