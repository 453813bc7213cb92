package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tillbook/internal/core/apperror"
)

func TestParseOrderBy(t *testing.T) {
	tests := []struct {
		name    string
		orderBy string
		want    string
	}{
		{"empty falls back", "", "created_at DESC"},
		{"plain field ascends", "receipt_number", "receipt_number ASC"},
		{"minus prefix descends", "-created_at", "created_at DESC"},
		{"plus prefix ascends", "+total_amount", "total_amount ASC"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseOrderBy(tt.orderBy, saleColumns, "created_at DESC")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// Anything outside the column whitelist must be rejected, never
// concatenated into the statement.
func TestParseOrderByRejectsUnknownField(t *testing.T) {
	for _, orderBy := range []string{
		"password",
		"created_at; DROP TABLE sales",
		"created_at DESC",
		"(SELECT CASE WHEN (SELECT current_setting('is_superuser'))='on' THEN pg_sleep(10) END)",
		"-",
	} {
		got, err := parseOrderBy(orderBy, saleColumns, "created_at DESC")
		require.Error(t, err, orderBy)
		assert.Empty(t, got)
		assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
	}
}

func TestParseOrderByProductColumns(t *testing.T) {
	got, err := parseOrderBy("-stock_quantity", productColumns, "name ASC")
	require.NoError(t, err)
	assert.Equal(t, "stock_quantity DESC", got)

	_, err = parseOrderBy("receipt_number", productColumns, "name ASC")
	require.Error(t, err)
}
