// Package numerator generates human-readable receipt numbers.
//
// Numbers are allocated with a single UPSERT ... RETURNING against the
// sys_sequences table, so concurrent callers always receive distinct,
// monotonically increasing values. Allocation is not tied to the
// caller's transaction: a sale that fails after numbering burns its
// value, so the sequence can have gaps. No cached range allocation is
// used, which keeps those gaps rare and small.
package numerator

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// Querier is the minimal database surface the numerator needs.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Config holds numbering configuration.
type Config struct {
	// Prefix added to all numbers (e.g. "RCP")
	Prefix string

	// IncludeYear adds the year segment to the number
	IncludeYear bool

	// PadWidth is the minimum counter width (default 5)
	PadWidth int

	// ResetPeriod: "year", "month" or "never"
	ResetPeriod string
}

// DefaultConfig returns sensible defaults for receipt numbering.
func DefaultConfig(prefix string) Config {
	return Config{
		Prefix:      prefix,
		IncludeYear: true,
		PadWidth:    5,
		ResetPeriod: "year",
	}
}

// Service allocates sequence numbers from sys_sequences.
type Service struct {
	querier Querier
}

// New creates a numerator backed by the given querier.
func New(querier Querier) *Service {
	return &Service{querier: querier}
}

const nextValSQL = `
	INSERT INTO sys_sequences (key, current_val)
	VALUES ($1, 1)
	ON CONFLICT (key) DO UPDATE SET current_val = sys_sequences.current_val + 1
	RETURNING current_val
`

// NextNumber allocates the next number for the configured sequence.
// The sequence key rotates with the reset period, restarting the
// counter at each boundary.
func (s *Service) NextNumber(ctx context.Context, cfg Config, at time.Time) (string, error) {
	if cfg.PadWidth <= 0 {
		cfg.PadWidth = 5
	}

	key := sequenceKey(cfg, at)

	var current int64
	if err := s.querier.QueryRow(ctx, nextValSQL, key).Scan(&current); err != nil {
		return "", fmt.Errorf("next sequence value for %s: %w", key, err)
	}

	return formatNumber(cfg, at, current), nil
}

func sequenceKey(cfg Config, at time.Time) string {
	switch cfg.ResetPeriod {
	case "month":
		return fmt.Sprintf("%s_%04d%02d", cfg.Prefix, at.Year(), at.Month())
	case "never":
		return cfg.Prefix
	default: // year
		return fmt.Sprintf("%s_%04d", cfg.Prefix, at.Year())
	}
}

func formatNumber(cfg Config, at time.Time, current int64) string {
	counter := fmt.Sprintf("%0*d", cfg.PadWidth, current)
	if cfg.IncludeYear {
		return fmt.Sprintf("%s-%04d-%s", cfg.Prefix, at.Year(), counter)
	}
	return fmt.Sprintf("%s-%s", cfg.Prefix, counter)
}
