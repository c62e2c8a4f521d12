package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Input errors (rejected before any transaction opens) ----

// ErrMissingData reports a required request field that was not supplied.
func ErrMissingData(field string) *AppError {
	return New("MISSING_DATA", field, http.StatusBadRequest)
}

// ErrValidation reports a request field that failed format validation.
func ErrValidation(field string) *AppError {
	return New("VALIDATION_ERROR", field, http.StatusBadRequest)
}

// ---- Capacity errors (expected business outcomes, transaction rolled back) ----

func ErrInsufficientBalance(action string) *AppError {
	return New("INSUF_BALANCE", "Insufficient balance to "+action, http.StatusPaymentRequired)
}

func ErrOutOfRange(message string) *AppError {
	return New("OUT_OF_RANGE", message, http.StatusUnprocessableEntity)
}

// ---- Not-found errors ----

func ErrNotFound(entity string) *AppError {
	return New("NOT_FOUND", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// ---- Integrity errors (invariant about to be violated; fatal, non-retriable) ----

// ErrDataIntegrity signals that the locked <= total invariant would have been
// broken. The transaction is rolled back; operator intervention is required.
func ErrDataIntegrity(detail string) *AppError {
	return New("DATA_INTEGRITY_ERROR", detail, http.StatusInternalServerError)
}

// ErrRateLimited reports that the caller exceeded the request budget.
func ErrRateLimited() *AppError {
	return New("RATE_LIMITED", "Too many requests", http.StatusTooManyRequests)
}

// ---- System & infrastructure ----

// InternalError wraps a store or infrastructure failure.
func InternalError(err error) *AppError {
	return Wrap("INTERNAL_ERROR", "Internal server error", http.StatusInternalServerError, err)
}
