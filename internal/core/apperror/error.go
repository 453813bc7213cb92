// Package apperror provides structured errors for the ledger core.
// All business failures are expressed as *AppError so HTTP handlers can
// render consistent responses and callers can branch on machine codes.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Machine-readable error codes.
const (
	// Infrastructure (5xx)
	CodeInternal = "INTERNAL_ERROR"
	CodeDatabase = "DATABASE_ERROR"

	// Validation (400)
	CodeValidation = "VALIDATION_ERROR"

	// Business rule violations (409/422)
	CodeDuplicateReceipt  = "DUPLICATE_RECEIPT"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodeAlreadyReversed   = "ALREADY_REVERSED"
	CodeOverReturn        = "OVER_RETURN"
	CodeConflict          = "CONFLICT"

	// Auth (401/403)
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"

	// Not found (404)
	CodeNotFound = "NOT_FOUND"
)

// AppError is the standard error type for the service.
type AppError struct {
	// Code is a machine-readable error identifier.
	Code string `json:"code"`

	// Message is a human-readable description.
	Message string `json:"message"`

	// Details carries additional context (ids, quantities, fields).
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus is the suggested HTTP status code.
	HTTPStatus int `json:"-"`

	// Err is the underlying cause, never exposed in JSON.
	Err error `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the cause for errors.Is/As chains.
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to the error details.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error.
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// --- Factories ---

// NewValidation creates a validation error (400).
func NewValidation(message string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewNotFound creates a not-found error (404).
func NewNotFound(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", entity),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewDuplicateReceipt signals a receipt number that already exists (409).
// Duplicate submissions are rejected, never double-applied.
func NewDuplicateReceipt(receiptNumber string) *AppError {
	return &AppError{
		Code:       CodeDuplicateReceipt,
		Message:    "A sale with this receipt number already exists",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"receipt_number": receiptNumber},
	}
}

// NewInsufficientStock signals a decrement that would drive stock negative (422).
func NewInsufficientStock(productID string, requested, available int64) *AppError {
	return &AppError{
		Code:       CodeInsufficientStock,
		Message:    "Insufficient stock",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details: map[string]any{
			"product_id": productID,
			"requested":  requested,
			"available":  available,
		},
	}
}

// NewAlreadyReversed signals a cancel/return on a terminal sale (409).
func NewAlreadyReversed(saleID string) *AppError {
	return &AppError{
		Code:       CodeAlreadyReversed,
		Message:    "Sale has already been reversed",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"sale_id": saleID},
	}
}

// NewOverReturn signals a return quantity above the remaining sold quantity (409).
func NewOverReturn(saleItemID string, requested, remaining int64) *AppError {
	return &AppError{
		Code:       CodeOverReturn,
		Message:    "Return quantity exceeds remaining sold quantity",
		HTTPStatus: http.StatusConflict,
		Details: map[string]any{
			"sale_item_id": saleItemID,
			"requested":    requested,
			"remaining":    remaining,
		},
	}
}

// NewConflict creates a generic conflict error (409).
func NewConflict(message string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// NewStore wraps an underlying transaction/IO failure (500).
// The transaction that produced it has already been rolled back.
func NewStore(err error) *AppError {
	return &AppError{
		Code:       CodeDatabase,
		Message:    "Storage operation failed",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewInternal creates an internal error, hiding details from clients.
func NewInternal(err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewUnauthorized creates an authentication error (401).
func NewUnauthorized(message string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// --- Helpers ---

// AsAppError extracts an *AppError from an error chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetHTTPStatus returns the HTTP status for any error.
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// IsCode reports whether err carries the given machine code.
func IsCode(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool {
	return IsCode(err, CodeNotFound)
}
