// Package ledger keeps invoice totals consistent with their line items and
// payments and admits payments against the outstanding balance.
package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"invoice-ledger-backend/internal/models"
	"invoice-ledger-backend/internal/repository"
	"invoice-ledger-backend/internal/services/authorization"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type Options struct {
	DefaultCurrency models.Currency
	Logger          *zap.Logger
	// Now is overridable in tests.
	Now func() time.Time
}

type Service struct {
	repo            repository.Repository
	guard           *authorization.Guard
	locks           *invoiceLocks
	log             *zap.Logger
	tracer          trace.Tracer
	defaultCurrency models.Currency
	now             func() time.Time
}

func NewService(repo repository.Repository, guard *authorization.Guard, opts Options) *Service {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	currency := opts.DefaultCurrency
	if !currency.Valid() {
		currency = models.CurrencyUSD
	}
	if guard == nil {
		guard = authorization.NewGuard()
	}

	return &Service{
		repo:            repo,
		guard:           guard,
		locks:           newInvoiceLocks(),
		log:             log.Named("ledger"),
		tracer:          otel.Tracer("invoice-ledger-backend/ledger"),
		defaultCurrency: currency,
		now:             now,
	}
}

type CreatedInvoice struct {
	Invoice   *models.Invoice   `json:"invoice"`
	LineItems []models.LineItem `json:"line_items"`
}

type PaymentReceipt struct {
	Payment *models.Payment `json:"payment"`
	Invoice *models.Invoice `json:"invoice"`
}

type Detail struct {
	Invoice   *models.Invoice   `json:"invoice"`
	LineItems []models.LineItem `json:"line_items"`
	Payments  []models.Payment  `json:"payments"`
	Totals    Totals            `json:"totals"`
}

type snapshot struct {
	totals   Totals
	lines    []models.LineItem
	payments []models.Payment
}

// Recompute refreshes the derived fields of an invoice from its line items
// and payments. Calling it again without an intervening change writes
// nothing.
func (s *Service) Recompute(ctx context.Context, invoiceID uuid.UUID) (totals Totals, err error) {
	const op = "Recompute"
	ctx, span := s.startSpan(ctx, op, invoiceID)
	defer func() { endSpan(span, err) }()

	err = s.exclusive(ctx, invoiceID, func(repo repository.Repository) error {
		inv, err := repo.FindInvoiceForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		snap, err := s.recompute(ctx, repo, inv)
		if err != nil {
			return err
		}
		totals = snap.totals
		return nil
	})
	if err != nil {
		return Totals{}, classify(op, err)
	}
	return totals, nil
}

// CreateInvoice stores a DRAFT invoice with its line items and computes its
// totals, all in one transaction.
func (s *Service) CreateInvoice(ctx context.Context, ownerID string, header InvoiceHeader, items []LineItemInput) (created *CreatedInvoice, err error) {
	const op = "CreateInvoice"
	ctx, span := s.startSpan(ctx, op, uuid.Nil)
	defer func() { endSpan(span, err) }()

	specs, currency, err := s.validateCreate(op, ownerID, &header, items)
	if err != nil {
		return nil, err
	}

	err = s.repo.Transaction(ctx, func(repo repository.Repository) error {
		inv := &models.Invoice{
			ID:            uuid.New(),
			OwnerID:       strings.TrimSpace(ownerID),
			InvoiceNumber: header.InvoiceNumber,
			CustomerName:  header.CustomerName,
			IssueDate:     header.IssueDate.UTC(),
			DueDate:       header.DueDate.UTC(),
			Currency:      currency,
			TaxPercent:    header.TaxPercent,
			Status:        models.InvoiceStatusDraft,
		}
		if err := repo.CreateInvoice(ctx, inv); err != nil {
			return err
		}
		if _, err := repo.InsertLineItems(ctx, inv.ID, specs); err != nil {
			return err
		}
		snap, err := s.recompute(ctx, repo, inv)
		if err != nil {
			return err
		}
		created = &CreatedInvoice{Invoice: inv, LineItems: snap.lines}
		return nil
	})
	if err != nil {
		return nil, classify(op, err)
	}

	s.log.Info("invoice created",
		zap.String("invoice_id", created.Invoice.ID.String()),
		zap.String("owner_id", created.Invoice.OwnerID),
		zap.Int("line_items", len(created.LineItems)),
		zap.String("total", created.Invoice.Total.String()),
	)
	return created, nil
}

// GetInvoiceDetail recomputes the invoice and returns it with its children.
func (s *Service) GetInvoiceDetail(ctx context.Context, ownerID string, invoiceID uuid.UUID) (detail *Detail, err error) {
	const op = "GetInvoiceDetail"
	ctx, span := s.startSpan(ctx, op, invoiceID)
	defer func() { endSpan(span, err) }()

	err = s.exclusive(ctx, invoiceID, func(repo repository.Repository) error {
		inv, err := s.guard.Authorize(ctx, repo.FindInvoiceForUpdate, ownerID, invoiceID)
		if err != nil {
			return err
		}
		snap, err := s.recompute(ctx, repo, inv)
		if err != nil {
			return err
		}
		detail = &Detail{
			Invoice:   inv,
			LineItems: snap.lines,
			Payments:  snap.payments,
			Totals:    snap.totals,
		}
		return nil
	})
	if err != nil {
		return nil, classify(op, err)
	}
	return detail, nil
}

// ListInvoices returns the caller's invoices, newest first, with their
// cached totals.
func (s *Service) ListInvoices(ctx context.Context, ownerID string, archived repository.ArchivedFilter) ([]models.Invoice, error) {
	const op = "ListInvoices"

	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, validationError(op, "owner_id", "caller identity is required")
	}
	switch archived {
	case "":
		archived = repository.ArchivedExclude
	case repository.ArchivedExclude, repository.ArchivedOnly, repository.ArchivedAll:
	default:
		return nil, validationError(op, "archived", "must be one of active, archived, all")
	}

	invoices, err := s.repo.ListInvoices(ctx, ownerID, archived)
	if err != nil {
		return nil, classify(op, err)
	}
	return invoices, nil
}

// AddPayment admits a payment if it does not exceed the balance due. The
// balance check and the insert run under the invoice lock and inside one
// transaction, so concurrent payments cannot jointly overpay.
func (s *Service) AddPayment(ctx context.Context, ownerID string, invoiceID uuid.UUID, in PaymentInput) (receipt *PaymentReceipt, err error) {
	const op = "AddPayment"
	ctx, span := s.startSpan(ctx, op, invoiceID)
	defer func() { endSpan(span, err) }()

	date, metadata, err := s.validatePayment(op, in)
	if err != nil {
		return nil, err
	}

	err = s.exclusive(ctx, invoiceID, func(repo repository.Repository) error {
		inv, err := s.guard.Authorize(ctx, repo.FindInvoiceForUpdate, ownerID, invoiceID)
		if err != nil {
			return err
		}
		if err := s.guard.RequireActive(inv); err != nil {
			return &Error{Kind: ErrInvalidState, Op: op, Err: fmt.Errorf("archived invoices reject payments: %w", err)}
		}

		before, err := s.recompute(ctx, repo, inv)
		if err != nil {
			return err
		}
		if in.Amount.GreaterThan(before.totals.BalanceDue) {
			return &Error{
				Kind: ErrOverpayment,
				Op:   op,
				Err:  fmt.Errorf("amount %s exceeds balance due %s", in.Amount, before.totals.BalanceDue),
			}
		}

		payment, err := repo.InsertPayment(ctx, inv.ID, in.Amount, date, metadata)
		if err != nil {
			return err
		}
		if _, err := s.recompute(ctx, repo, inv); err != nil {
			return err
		}
		receipt = &PaymentReceipt{Payment: payment, Invoice: inv}
		return nil
	})
	if err != nil {
		err = classify(op, err)
		s.log.Debug("payment rejected",
			zap.String("invoice_id", invoiceID.String()),
			zap.String("amount", in.Amount.String()),
			zap.Error(err),
		)
		return nil, err
	}

	s.log.Info("payment admitted",
		zap.String("invoice_id", invoiceID.String()),
		zap.String("payment_id", receipt.Payment.ID.String()),
		zap.String("amount", in.Amount.String()),
		zap.String("balance_due", receipt.Invoice.BalanceDue.String()),
	)
	return receipt, nil
}

func (s *Service) Archive(ctx context.Context, ownerID string, invoiceID uuid.UUID) (*models.Invoice, error) {
	return s.setArchived(ctx, "Archive", ownerID, invoiceID, true)
}

func (s *Service) Restore(ctx context.Context, ownerID string, invoiceID uuid.UUID) (*models.Invoice, error) {
	return s.setArchived(ctx, "Restore", ownerID, invoiceID, false)
}

// setArchived toggles the archive flag only; totals and status are left as
// they are.
func (s *Service) setArchived(ctx context.Context, op string, ownerID string, invoiceID uuid.UUID, archived bool) (inv *models.Invoice, err error) {
	ctx, span := s.startSpan(ctx, op, invoiceID)
	defer func() { endSpan(span, err) }()

	err = s.exclusive(ctx, invoiceID, func(repo repository.Repository) error {
		found, err := s.guard.Authorize(ctx, repo.FindInvoiceForUpdate, ownerID, invoiceID)
		if err != nil {
			return err
		}
		if found.IsArchived != archived {
			found.IsArchived = archived
			if err := repo.SaveInvoice(ctx, found); err != nil {
				return err
			}
		}
		inv = found
		return nil
	})
	if err != nil {
		return nil, classify(op, err)
	}
	return inv, nil
}

// DeleteInvoice removes the invoice, its line items and its payments in one
// transaction. On failure nothing is deleted.
func (s *Service) DeleteInvoice(ctx context.Context, ownerID string, invoiceID uuid.UUID) (err error) {
	const op = "DeleteInvoice"
	ctx, span := s.startSpan(ctx, op, invoiceID)
	defer func() { endSpan(span, err) }()

	var lines, payments int64
	err = s.exclusive(ctx, invoiceID, func(repo repository.Repository) error {
		inv, err := s.guard.Authorize(ctx, repo.FindInvoiceForUpdate, ownerID, invoiceID)
		if err != nil {
			return err
		}
		if lines, err = repo.DeleteLineItems(ctx, inv.ID); err != nil {
			return err
		}
		if payments, err = repo.DeletePayments(ctx, inv.ID); err != nil {
			return err
		}
		return repo.DeleteInvoice(ctx, inv.ID)
	})
	if err != nil {
		return classify(op, err)
	}

	s.log.Info("invoice deleted",
		zap.String("invoice_id", invoiceID.String()),
		zap.Int64("line_items", lines),
		zap.Int64("payments", payments),
	)
	return nil
}

// exclusive runs fn holding the in-process invoice lock and a database
// transaction.
func (s *Service) exclusive(ctx context.Context, invoiceID uuid.UUID, fn func(repository.Repository) error) error {
	unlock, err := s.locks.Lock(ctx, invoiceID)
	if err != nil {
		return err
	}
	defer unlock()
	return s.repo.Transaction(ctx, fn)
}

func (s *Service) recompute(ctx context.Context, repo repository.Repository, inv *models.Invoice) (snapshot, error) {
	lines, err := repo.ListLineItems(ctx, inv.ID)
	if err != nil {
		return snapshot{}, err
	}
	payments, err := repo.ListPayments(ctx, inv.ID)
	if err != nil {
		return snapshot{}, err
	}

	totals := ComputeTotals(inv.TaxPercent, lines, payments)
	wasPaid := inv.Status == models.InvoiceStatusPaid
	if totals.apply(inv, s.now) {
		if err := repo.SaveInvoice(ctx, inv); err != nil {
			return snapshot{}, err
		}
		if !wasPaid && inv.Status == models.InvoiceStatusPaid {
			s.log.Info("invoice paid", zap.String("invoice_id", inv.ID.String()))
		}
	}

	return snapshot{totals: totals, lines: lines, payments: payments}, nil
}

func (s *Service) startSpan(ctx context.Context, op string, invoiceID uuid.UUID) (context.Context, trace.Span) {
	ctx, span := s.tracer.Start(ctx, "ledger."+op)
	if invoiceID != uuid.Nil {
		span.SetAttributes(attribute.String("invoice.id", invoiceID.String()))
	}
	return ctx, span
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, KindOf(err).Error())
	}
	span.End()
}
