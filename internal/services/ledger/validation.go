package ledger

import (
	"strings"
	"time"

	"invoice-ledger-backend/internal/models"
	"invoice-ledger-backend/internal/repository"

	"github.com/shopspring/decimal"
)

// InvoiceHeader holds the descriptive fields of a new invoice. An empty
// Currency falls back to the configured default; a zero TaxPercent means
// no tax.
type InvoiceHeader struct {
	InvoiceNumber string
	CustomerName  string
	IssueDate     time.Time
	DueDate       time.Time
	Currency      string
	TaxPercent    decimal.Decimal
}

type LineItemInput struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
}

type PaymentInput struct {
	Amount decimal.Decimal
	// PaymentDate defaults to now.
	PaymentDate *time.Time
	Method      string
	Reference   string
}

func (s *Service) validateCreate(op, ownerID string, header *InvoiceHeader, items []LineItemInput) ([]repository.LineItemSpec, models.Currency, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, "", validationError(op, "owner_id", "caller identity is required")
	}

	header.InvoiceNumber = strings.TrimSpace(header.InvoiceNumber)
	header.CustomerName = strings.TrimSpace(header.CustomerName)
	switch {
	case header.InvoiceNumber == "":
		return nil, "", validationError(op, "invoice_number", "is required")
	case header.CustomerName == "":
		return nil, "", validationError(op, "customer_name", "is required")
	case header.IssueDate.IsZero():
		return nil, "", validationError(op, "issue_date", "is required")
	case header.DueDate.IsZero():
		return nil, "", validationError(op, "due_date", "is required")
	case header.TaxPercent.IsNegative():
		return nil, "", validationError(op, "tax_percent", "must not be negative")
	}

	currency := s.defaultCurrency
	if strings.TrimSpace(header.Currency) != "" {
		c, ok := models.ParseCurrency(header.Currency)
		if !ok {
			return nil, "", validationError(op, "currency", "unsupported currency "+header.Currency)
		}
		currency = c
	}

	if len(items) == 0 {
		return nil, "", validationError(op, "line_items", "at least one line item is required")
	}

	specs := make([]repository.LineItemSpec, 0, len(items))
	for _, item := range items {
		desc := strings.TrimSpace(item.Description)
		switch {
		case desc == "":
			return nil, "", validationError(op, "line_items.description", "is required")
		case !item.Quantity.IsPositive():
			return nil, "", validationError(op, "line_items.quantity", "must be greater than 0")
		case item.UnitPrice.IsNegative():
			return nil, "", validationError(op, "line_items.unit_price", "must not be negative")
		}
		specs = append(specs, repository.LineItemSpec{
			Description: desc,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}
	return specs, currency, nil
}

func (s *Service) validatePayment(op string, in PaymentInput) (time.Time, map[string]any, error) {
	if !in.Amount.IsPositive() {
		return time.Time{}, nil, validationError(op, "amount", "must be greater than 0")
	}

	now := s.now().UTC()
	date := now
	if in.PaymentDate != nil && !in.PaymentDate.IsZero() {
		if in.PaymentDate.After(now) {
			return time.Time{}, nil, validationError(op, "payment_date", "must not be in the future")
		}
		date = in.PaymentDate.UTC()
	}

	metadata := map[string]any{}
	if m := strings.TrimSpace(in.Method); m != "" {
		metadata["method"] = m
	}
	if r := strings.TrimSpace(in.Reference); r != "" {
		metadata["reference"] = r
	}
	return date, metadata, nil
}
