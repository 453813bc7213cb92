package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewStore(cause)

	assert.ErrorIs(t, err, cause)

	wrapped := fmt.Errorf("create sale: %w", err)
	appErr, ok := AsAppError(wrapped)
	require.True(t, ok)
	assert.Equal(t, CodeDatabase, appErr.Code)
}

func TestFactoriesCarryStatusAndDetails(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		code   string
		status int
	}{
		{"validation", NewValidation("items must not be empty"), CodeValidation, http.StatusBadRequest},
		{"not found", NewNotFound("sale", "abc"), CodeNotFound, http.StatusNotFound},
		{"duplicate receipt", NewDuplicateReceipt("RCP-2026-00001"), CodeDuplicateReceipt, http.StatusConflict},
		{"insufficient stock", NewInsufficientStock("p1", 5, 3), CodeInsufficientStock, http.StatusUnprocessableEntity},
		{"already reversed", NewAlreadyReversed("s1"), CodeAlreadyReversed, http.StatusConflict},
		{"over return", NewOverReturn("i1", 4, 2), CodeOverReturn, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
			assert.Equal(t, tt.status, GetHTTPStatus(tt.err))
		})
	}
}

func TestIsCode(t *testing.T) {
	err := fmt.Errorf("cancel sale: %w", NewAlreadyReversed("s1"))
	assert.True(t, IsCode(err, CodeAlreadyReversed))
	assert.False(t, IsCode(err, CodeNotFound))
	assert.False(t, IsCode(errors.New("plain"), CodeNotFound))
}

func TestInsufficientStockDetails(t *testing.T) {
	err := NewInsufficientStock("p1", 10, 7)
	assert.Equal(t, int64(10), err.Details["requested"])
	assert.Equal(t, int64(7), err.Details["available"])
}
