package numerator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
)

type mockRow struct {
	val int64
	err error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	if len(dest) > 0 {
		if ptr, ok := dest[0].(*int64); ok {
			*ptr = m.val
		}
	}
	return nil
}

// mockQuerier simulates the sys_sequences upsert: every call bumps the
// counter for the given key.
type mockQuerier struct {
	mu   sync.Mutex
	vals map[string]int64
}

func (m *mockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.vals == nil {
		m.vals = make(map[string]int64)
	}
	key, _ := args[0].(string)
	m.vals[key]++
	return &mockRow{val: m.vals[key]}
}

func TestNextNumberSequential(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	ctx := context.Background()
	cfg := DefaultConfig("RCP")
	at := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	num, err := svc.NextNumber(ctx, cfg, at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "RCP-2026-00001" {
		t.Errorf("expected RCP-2026-00001, got %s", num)
	}

	num, err = svc.NextNumber(ctx, cfg, at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "RCP-2026-00002" {
		t.Errorf("expected RCP-2026-00002, got %s", num)
	}
}

func TestNextNumberResetsPerYear(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	ctx := context.Background()
	cfg := DefaultConfig("RCP")

	if _, err := svc.NextNumber(ctx, cfg, time.Date(2025, 12, 31, 23, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	num, err := svc.NextNumber(ctx, cfg, time.Date(2026, 1, 1, 0, 30, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "RCP-2026-00001" {
		t.Errorf("expected counter reset at year boundary, got %s", num)
	}
}

func TestNextNumberNoYearSegment(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	cfg := Config{Prefix: "ADJ", IncludeYear: false, PadWidth: 4, ResetPeriod: "never"}

	num, err := svc.NextNumber(context.Background(), cfg, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "ADJ-0001" {
		t.Errorf("expected ADJ-0001, got %s", num)
	}
}
