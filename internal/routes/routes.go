package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"invoice-ledger-backend/internal/config"
	handler "invoice-ledger-backend/internal/handlers"
	"invoice-ledger-backend/internal/middleware"
	"invoice-ledger-backend/internal/render"
	"invoice-ledger-backend/internal/repository"
	"invoice-ledger-backend/internal/services/authorization"
	"invoice-ledger-backend/internal/services/ledger"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config, log *zap.Logger) {
	repo := repository.NewGormRepository(db).WithLockTimeout(cfg.LockTimeout)

	ledgerService := ledger.NewService(repo, authorization.NewGuard(), ledger.Options{
		DefaultCurrency: cfg.DefaultCurrency,
		Logger:          log,
	})

	htmlRenderer := render.NewHTMLRenderer()
	pdfRenderer := render.NewPDFRenderer(htmlRenderer, cfg.PDFChromiumPath, cfg.PDFTimeout)

	invoiceHandler := handler.NewInvoiceHandler(ledgerService, htmlRenderer, pdfRenderer, log)

	api := r.Group("/api")

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Invoice routes
	invoices := api.Group("/invoices")
	invoices.Use(middleware.RequireOwner())
	{
		invoices.POST("", invoiceHandler.CreateInvoice)
		invoices.GET("", invoiceHandler.ListInvoices)
		invoices.POST("/archive", invoiceHandler.Archive)
		invoices.POST("/restore", invoiceHandler.Restore)

		invoices.GET("/:id", invoiceHandler.GetInvoice)
		invoices.DELETE("/:id", invoiceHandler.DeleteInvoice)
		invoices.POST("/:id/payments", invoiceHandler.AddPayment)
		invoices.POST("/:id/archive", invoiceHandler.Archive)
		invoices.POST("/:id/restore", invoiceHandler.Restore)
		invoices.GET("/:id/html", invoiceHandler.RenderHTML)
		invoices.GET("/:id/pdf", invoiceHandler.RenderPDF)
	}
}
