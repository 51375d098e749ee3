package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"invoice-ledger-backend/internal/middleware"
	"invoice-ledger-backend/internal/render"
	"invoice-ledger-backend/internal/repository"
	"invoice-ledger-backend/internal/services/ledger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type InvoiceHandler struct {
	ledger *ledger.Service
	html   *render.HTMLRenderer
	pdf    *render.PDFRenderer
	log    *zap.Logger
}

func NewInvoiceHandler(l *ledger.Service, html *render.HTMLRenderer, pdf *render.PDFRenderer, log *zap.Logger) *InvoiceHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &InvoiceHandler{ledger: l, html: html, pdf: pdf, log: log.Named("handler")}
}

type lineItemPayload struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

type createInvoicePayload struct {
	InvoiceNumber string            `json:"invoice_number"`
	CustomerName  string            `json:"customer_name"`
	IssueDate     string            `json:"issue_date"`
	DueDate       string            `json:"due_date"`
	Currency      string            `json:"currency"`
	TaxPercent    *decimal.Decimal  `json:"tax_percent"`
	LineItems     []lineItemPayload `json:"line_items"`
}

type paymentPayload struct {
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate string          `json:"payment_date"`
	Method      string          `json:"method"`
	Reference   string          `json:"reference"`
}

func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	var payload createInvoicePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, "invalid payload: "+err.Error())
		return
	}

	issueDate, err := parseDate(payload.IssueDate)
	if err != nil {
		badRequest(c, "invalid issue_date: "+err.Error())
		return
	}
	dueDate, err := parseDate(payload.DueDate)
	if err != nil {
		badRequest(c, "invalid due_date: "+err.Error())
		return
	}

	header := ledger.InvoiceHeader{
		InvoiceNumber: payload.InvoiceNumber,
		CustomerName:  payload.CustomerName,
		IssueDate:     issueDate,
		DueDate:       dueDate,
		Currency:      payload.Currency,
	}
	if payload.TaxPercent != nil {
		header.TaxPercent = *payload.TaxPercent
	}

	items := make([]ledger.LineItemInput, 0, len(payload.LineItems))
	for _, item := range payload.LineItems {
		items = append(items, ledger.LineItemInput{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}

	created, err := h.ledger.CreateInvoice(c.Request.Context(), middleware.OwnerID(c), header, items)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "invoice created",
		"invoice":    created.Invoice,
		"line_items": created.LineItems,
	})
}

func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	filter := repository.ArchivedFilter(c.DefaultQuery("archived", string(repository.ArchivedExclude)))

	invoices, err := h.ledger.ListInvoices(c.Request.Context(), middleware.OwnerID(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": invoices, "count": len(invoices)})
}

func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	id, ok := invoiceID(c)
	if !ok {
		return
	}

	detail, err := h.ledger.GetInvoiceDetail(c.Request.Context(), middleware.OwnerID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *InvoiceHandler) AddPayment(c *gin.Context) {
	id, ok := invoiceID(c)
	if !ok {
		return
	}

	var payload paymentPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, "invalid payload: "+err.Error())
		return
	}

	input := ledger.PaymentInput{
		Amount:    payload.Amount,
		Method:    payload.Method,
		Reference: payload.Reference,
	}
	if strings.TrimSpace(payload.PaymentDate) != "" {
		date, err := parseDate(payload.PaymentDate)
		if err != nil {
			badRequest(c, "invalid payment_date: "+err.Error())
			return
		}
		input.PaymentDate = &date
	}

	receipt, err := h.ledger.AddPayment(c.Request.Context(), middleware.OwnerID(c), id, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "payment recorded",
		"payment": receipt.Payment,
		"invoice": receipt.Invoice,
	})
}

func (h *InvoiceHandler) Archive(c *gin.Context) {
	id, ok := invoiceIDFromParamOrBody(c)
	if !ok {
		return
	}

	inv, err := h.ledger.Archive(c.Request.Context(), middleware.OwnerID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "invoice archived", "invoice": inv})
}

func (h *InvoiceHandler) Restore(c *gin.Context) {
	id, ok := invoiceIDFromParamOrBody(c)
	if !ok {
		return
	}

	inv, err := h.ledger.Restore(c.Request.Context(), middleware.OwnerID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "invoice restored", "invoice": inv})
}

func (h *InvoiceHandler) DeleteInvoice(c *gin.Context) {
	id, ok := invoiceID(c)
	if !ok {
		return
	}

	if err := h.ledger.DeleteInvoice(c.Request.Context(), middleware.OwnerID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "invoice deleted", "id": id.String()})
}

func (h *InvoiceHandler) RenderHTML(c *gin.Context) {
	view, ok := h.documentView(c)
	if !ok {
		return
	}

	html, err := h.html.Render(view)
	if err != nil {
		h.renderFailed(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

func (h *InvoiceHandler) RenderPDF(c *gin.Context) {
	view, ok := h.documentView(c)
	if !ok {
		return
	}

	pdf, err := h.pdf.Render(c.Request.Context(), view)
	if err != nil {
		h.renderFailed(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="invoice-%s.pdf"`, safeFilename(view.InvoiceNumber)))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// documentView fetches a freshly recomputed detail and turns it into a
// render view.
func (h *InvoiceHandler) documentView(c *gin.Context) (render.DocumentView, bool) {
	id, ok := invoiceID(c)
	if !ok {
		return render.DocumentView{}, false
	}

	detail, err := h.ledger.GetInvoiceDetail(c.Request.Context(), middleware.OwnerID(c), id)
	if err != nil {
		respondError(c, err)
		return render.DocumentView{}, false
	}
	return render.FromDetail(detail), true
}

func (h *InvoiceHandler) renderFailed(c *gin.Context, err error) {
	h.log.Error("render invoice", zap.Error(err))
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "render_failed", "message": "could not render invoice"})
}

func invoiceID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid invoice ID")
		return uuid.Nil, false
	}
	return id, true
}

func invoiceIDFromParamOrBody(c *gin.Context) (uuid.UUID, bool) {
	if c.Param("id") != "" {
		return invoiceID(c)
	}

	var payload struct {
		ID string `json:"id"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, "invalid payload")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(payload.ID)
	if err != nil {
		badRequest(c, "invalid invoice ID")
		return uuid.Nil, false
	}
	return id, true
}

var dateLayouts = []string{"2006-01-02", time.RFC3339, "02-01-2006"}

func parseDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("expected YYYY-MM-DD or RFC3339, got %q", v)
}

func safeFilename(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, s)
}
