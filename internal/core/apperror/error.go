// Package apperror defines the error values returned across the ledger.
// Every rejection a client can act on is an *AppError with a stable code;
// anything else renders as INTERNAL_ERROR.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeInternal = "INTERNAL_ERROR"
	// CodeDatabase marks a failed or timed-out write to the record store.
	CodeDatabase = "DATABASE_ERROR"

	CodeValidation = "VALIDATION_ERROR"

	CodeBusinessRule      = "BUSINESS_RULE_VIOLATION"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodeInvalidTransition = "INVALID_TRANSITION"

	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeNotFound     = "NOT_FOUND"

	CodeConflict          = "CONFLICT"
	CodeDuplicateLocation = "DUPLICATE_LOCATION"
)

// AppError carries a machine-readable code, the HTTP status it maps to and
// optional details for the response body. Err is logged, never rendered.
type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	Details    map[string]any `json:"details,omitempty"`
	HTTPStatus int            `json:"-"`
	Err        error          `json:"-"`
}

func newError(code string, status int, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return e.Code + ": " + e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// WithDetail sets one detail entry and returns e for chaining.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

func NewValidation(message string) *AppError {
	return newError(CodeValidation, http.StatusBadRequest, message)
}

func NewNotFound(entity string, id any) *AppError {
	return newError(CodeNotFound, http.StatusNotFound, entity+" not found").
		WithDetail("entity", entity).
		WithDetail("id", id)
}

// NewBusinessRule is a 422 with a caller-chosen code.
func NewBusinessRule(code, message string) *AppError {
	return newError(code, http.StatusUnprocessableEntity, message)
}

// NewInsufficientStock reports a shortage. location is empty for FIFO
// consumption, where the shortage is against the material total.
func NewInsufficientStock(materialID, location string, requested, available float64) *AppError {
	e := NewBusinessRule(CodeInsufficientStock, "Insufficient stock").
		WithDetail("material_id", materialID).
		WithDetail("requested", requested).
		WithDetail("available", available)
	if location != "" {
		e.WithDetail("location", location)
	}
	return e
}

func NewDuplicateLocation(materialID, location string) *AppError {
	return newError(CodeDuplicateLocation, http.StatusConflict, fmt.Sprintf("location %q already exists", location)).
		WithDetail("material_id", materialID).
		WithDetail("location", location)
}

// NewInvalidTransition rejects a work-state action. An empty from is the
// idle state.
func NewInvalidTransition(action, from string) *AppError {
	if from == "" {
		from = "IDLE"
	}
	return NewBusinessRule(CodeInvalidTransition, fmt.Sprintf("cannot %s from state %s", action, from)).
		WithDetail("action", action).
		WithDetail("state", from)
}

// NewDatabase wraps a store failure as 503.
func NewDatabase(err error) *AppError {
	return newError(CodeDatabase, http.StatusServiceUnavailable, "Persistence failed").WithCause(err)
}

func NewInternal(err error) *AppError {
	return newError(CodeInternal, http.StatusInternalServerError, "Internal server error").WithCause(err)
}

func NewUnauthorized(message string) *AppError {
	return newError(CodeUnauthorized, http.StatusUnauthorized, message)
}

func NewForbidden(message string) *AppError {
	return newError(CodeForbidden, http.StatusForbidden, message)
}

func NewConflict(message string) *AppError {
	return newError(CodeConflict, http.StatusConflict, message)
}

// AsAppError finds the first *AppError in err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func IsAppError(err error) bool {
	_, ok := AsAppError(err)
	return ok
}

// HTTPStatus maps err to a status; non-AppErrors are 500.
func HTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

func HasCode(err error, code string) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

func IsNotFound(err error) bool {
	return HasCode(err, CodeNotFound)
}
