package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without wrapped error",
			appErr:   New("INSUF_BALANCE", "Insufficient balance to debit", http.StatusPaymentRequired),
			expected: "[INSUF_BALANCE] Insufficient balance to debit",
		},
		{
			name:     "with wrapped error",
			appErr:   Wrap("INTERNAL_ERROR", "DB error", http.StatusInternalServerError, fmt.Errorf("connection refused")),
			expected: "[INTERNAL_ERROR] DB error: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.appErr.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("inner error")
	appErr := Wrap("INTERNAL_ERROR", "wrapped", http.StatusInternalServerError, inner)

	assert.True(t, errors.Is(appErr, inner))
}

func TestAppError_IsNilUnwrap(t *testing.T) {
	appErr := New("MISSING_DATA", "uid", http.StatusBadRequest)
	assert.Nil(t, appErr.Unwrap())
}

func TestInputErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
	}{
		{"MissingData", ErrMissingData("uid"), "MISSING_DATA", 400},
		{"Validation", ErrValidation("amount"), "VALIDATION_ERROR", 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
		})
	}
}

func TestCapacityErrors(t *testing.T) {
	insuf := ErrInsufficientBalance("create a lock")
	assert.Equal(t, "INSUF_BALANCE", insuf.Code)
	assert.Equal(t, 402, insuf.HTTPStatus)
	assert.Contains(t, insuf.Message, "create a lock")

	oor := ErrOutOfRange("commit amount exceeds lock amount")
	assert.Equal(t, "OUT_OF_RANGE", oor.Code)
	assert.Equal(t, 422, oor.HTTPStatus)
}

func TestNotFoundEntity(t *testing.T) {
	err := ErrNotFound("Lock 42")
	assert.Contains(t, err.Message, "Lock 42")
	assert.Equal(t, "NOT_FOUND", err.Code)
	assert.Equal(t, 404, err.HTTPStatus)
}

func TestDataIntegrityError(t *testing.T) {
	err := ErrDataIntegrity("locked balance below release amount")
	assert.Equal(t, "DATA_INTEGRITY_ERROR", err.Code)
	assert.Equal(t, 500, err.HTTPStatus)
}

func TestInternalError(t *testing.T) {
	inner := fmt.Errorf("pg: connection closed")
	err := InternalError(inner)
	assert.Equal(t, "INTERNAL_ERROR", err.Code)
	assert.Equal(t, 500, err.HTTPStatus)
	assert.True(t, errors.Is(err, inner))
}
