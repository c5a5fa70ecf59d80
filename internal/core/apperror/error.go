// Package apperror provides structured error handling for the counting
// dashboard. All business errors must use AppError for consistent API responses.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes grouped by failure class
const (
	// Infrastructure errors (5xx)
	CodeInternal      = "INTERNAL_ERROR"
	CodeRemote        = "REMOTE_ERROR"
	CodeRemoteTimeout = "REMOTE_TIMEOUT"

	// Validation errors (400)
	CodeValidation   = "VALIDATION_ERROR"
	CodeInvalidInput = "INVALID_INPUT"
	CodeParse        = "PARSE_ERROR"

	// Business rule violations (422)
	CodeBusinessRule  = "BUSINESS_RULE_VIOLATION"
	CodeCountLocked   = "COUNT_LOCKED"
	CodeCountFinished = "COUNT_ALREADY_FINISHED"
	CodeNoActiveCycle = "NO_ACTIVE_CYCLE"

	// Authorization errors (401, 403)
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"

	// Not found (404)
	CodeNotFound = "NOT_FOUND"

	// Conflict (409)
	CodeConflict  = "CONFLICT"
	CodeCollision = "COUNT_COLLISION"
)

// Severity classifies how an error should be surfaced to the operator.
type Severity string

const (
	// SeverityError means the operation failed and nothing was saved.
	SeverityError Severity = "error"
	// SeverityWarning means the operation was refused by a business rule
	// and the operator can correct the input and retry.
	SeverityWarning Severity = "warning"
)

// AppError is the standard error type for the service.
// It implements error interface and provides structured details for API responses.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Severity drives how the dashboard renders the failure
	Severity Severity `json:"severity"`

	// Details contains additional context (field errors, count identity, etc.)
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus is the suggested HTTP status code
	HTTPStatus int `json:"-"`

	// Err is the underlying error (not exposed in JSON)
	Err error `json:"-"`
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to error details
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// --- Factory functions for common errors ---

// NewValidation creates a validation error (400)
func NewValidation(message string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		Severity:   SeverityWarning,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewParse creates a parse error for malformed uploads or payloads (400)
func NewParse(message string) *AppError {
	return &AppError{
		Code:       CodeParse,
		Message:    message,
		Severity:   SeverityWarning,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewNotFound creates a not found error (404)
func NewNotFound(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", entity),
		Severity:   SeverityWarning,
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewBusinessRule creates a business rule violation error (422)
func NewBusinessRule(code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		Severity:   SeverityWarning,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// NewCountLocked is returned when an operator tries to modify a count that
// another registrant already finished.
func NewCountLocked(numero int, tipo, tienda, registrant string) *AppError {
	return &AppError{
		Code:       CodeCountLocked,
		Message:    "El conteo ya fue finalizado por otro registrador",
		Severity:   SeverityWarning,
		HTTPStatus: http.StatusConflict,
		Details: map[string]any{
			"numero_inventario": numero,
			"tipo_conteo":       tipo,
			"tienda":            tienda,
			"registrado_por":    registrant,
		},
	}
}

// NewCollision is returned when two operators pick the same count identity.
func NewCollision(numero int, tipo, tienda string) *AppError {
	return &AppError{
		Code:       CodeCollision,
		Message:    "Otro registrador ya trabaja este conteo",
		Severity:   SeverityWarning,
		HTTPStatus: http.StatusConflict,
		Details: map[string]any{
			"numero_inventario": numero,
			"tipo_conteo":       tipo,
			"tienda":            tienda,
		},
	}
}

// NewRemote wraps a failed upstream call (502)
func NewRemote(action string, err error) *AppError {
	return &AppError{
		Code:       CodeRemote,
		Message:    "Error al consultar el servidor de inventarios",
		Severity:   SeverityError,
		HTTPStatus: http.StatusBadGateway,
		Details:    map[string]any{"action": action},
		Err:        err,
	}
}

// NewRemoteTimeout wraps an upstream call that exceeded its deadline (504)
func NewRemoteTimeout(action string, err error) *AppError {
	return &AppError{
		Code:       CodeRemoteTimeout,
		Message:    "El servidor de inventarios está tardando demasiado en responder",
		Severity:   SeverityError,
		HTTPStatus: http.StatusGatewayTimeout,
		Details:    map[string]any{"action": action},
		Err:        err,
	}
}

// NewInternal creates an internal server error (hides details from client)
func NewInternal(err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "Internal server error",
		Severity:   SeverityError,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewUnauthorized creates an authentication error (401)
func NewUnauthorized(message string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    message,
		Severity:   SeverityWarning,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NewForbidden creates an authorization error (403)
func NewForbidden(message string) *AppError {
	return &AppError{
		Code:       CodeForbidden,
		Message:    message,
		Severity:   SeverityWarning,
		HTTPStatus: http.StatusForbidden,
	}
}

// NewConflict creates a conflict error (409)
func NewConflict(message string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		Severity:   SeverityWarning,
		HTTPStatus: http.StatusConflict,
	}
}

// --- Helper functions ---

// IsAppError checks if error is AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError extracts AppError from error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetHTTPStatus returns appropriate HTTP status for any error
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// IsNotFound checks if error is CodeNotFound
func IsNotFound(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == CodeNotFound
	}
	return false
}

// IsLocked checks if error is CodeCountLocked or CodeCollision
func IsLocked(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == CodeCountLocked || appErr.Code == CodeCollision
	}
	return false
}

// IsTimeout checks if error is CodeRemoteTimeout
func IsTimeout(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == CodeRemoteTimeout
	}
	return false
}
