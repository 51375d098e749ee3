package authorization

import "errors"

var (
	ErrNotFound  = errors.New("invoice_not_found")
	ErrForbidden = errors.New("forbidden")
	ErrArchived  = errors.New("invoice_archived")
)
