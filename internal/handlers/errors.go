package handler

import (
	"errors"
	"net/http"

	"invoice-ledger-backend/internal/services/ledger"

	"github.com/gin-gonic/gin"
)

type errorMapping struct {
	status int
	code   string
}

var errorMappings = map[error]errorMapping{
	ledger.ErrValidation:   {http.StatusBadRequest, "validation_error"},
	ledger.ErrNotFound:     {http.StatusNotFound, "not_found"},
	ledger.ErrForbidden:    {http.StatusForbidden, "forbidden"},
	ledger.ErrInvalidState: {http.StatusConflict, "invalid_state"},
	ledger.ErrOverpayment:  {http.StatusUnprocessableEntity, "overpayment"},
	ledger.ErrConflict:     {http.StatusConflict, "conflict"},
	ledger.ErrStorage:      {http.StatusInternalServerError, "storage_error"},
}

// respondError writes the ledger error as JSON. Storage failures are
// recorded on the context for the request logger and not echoed back.
func respondError(c *gin.Context, err error) {
	mapping := errorMappings[ledger.KindOf(err)]

	body := gin.H{"error": mapping.code, "message": err.Error()}
	var ledgerErr *ledger.Error
	if errors.As(err, &ledgerErr) && ledgerErr.Field != "" {
		body["field"] = ledgerErr.Field
	}
	if ledger.IsRetryable(err) {
		body["retryable"] = true
	}
	if mapping.status >= http.StatusInternalServerError {
		_ = c.Error(err)
		body["message"] = "internal error"
	}

	c.JSON(mapping.status, body)
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": message})
}
