package postgres

import (
	"strings"

	"tillbook/internal/core/apperror"
)

// parseOrderBy validates a user-supplied sort expression against a
// column whitelist and returns a safe ORDER BY clause. The clause is
// concatenated into the SQL text, so nothing outside the whitelist may
// ever pass through. A "-" prefix sorts descending, "+" ascending.
func parseOrderBy(orderBy string, columns []string, fallback string) (string, error) {
	if orderBy == "" {
		return fallback, nil
	}

	direction := "ASC"
	field := orderBy
	if strings.HasPrefix(orderBy, "-") {
		direction = "DESC"
		field = strings.TrimPrefix(orderBy, "-")
	} else if strings.HasPrefix(orderBy, "+") {
		field = strings.TrimPrefix(orderBy, "+")
	}

	field = strings.TrimSpace(field)
	for _, col := range columns {
		if field == col {
			return field + " " + direction, nil
		}
	}

	return "", apperror.NewValidation("invalid orderBy").
		WithDetail("orderBy", orderBy).
		WithDetail("field", field)
}
