package profit

import (
	"context"
	"fmt"
	"time"

	"tillbook/internal/core/apperror"
)

// Service provides profit reporting over committed sales.
type Service struct {
	repo  Repository
	cache Cache
}

// NewService creates a new profit service. cache may be nil.
func NewService(repo Repository, cache Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

func normalizeFilter(filter Filter) (Filter, error) {
	if filter.To.IsZero() {
		// Truncated so the defaulted range keys the cache to a stable
		// value instead of a new one every second.
		filter.To = time.Now().UTC().Truncate(time.Minute)
	}
	if filter.From.IsZero() {
		filter.From = filter.To.AddDate(0, -1, 0)
	}
	if filter.From.After(filter.To) {
		return filter, apperror.NewValidation("from date must not be after to date")
	}
	return filter, nil
}

// GetSummary returns aggregate revenue/cost/profit/margin for a range.
func (s *Service) GetSummary(ctx context.Context, filter Filter) (Summary, error) {
	filter, err := normalizeFilter(filter)
	if err != nil {
		return Summary{}, err
	}

	if s.cache != nil {
		if cached, ok := s.cache.GetSummary(ctx, filter); ok {
			return *cached, nil
		}
	}

	summary, err := s.repo.GetSummary(ctx, filter)
	if err != nil {
		return Summary{}, fmt.Errorf("profit summary: %w", err)
	}
	summary.derive()

	if s.cache != nil {
		s.cache.SetSummary(ctx, filter, summary)
	}
	return summary, nil
}

// GetByProduct returns the per-product breakdown for a range.
func (s *Service) GetByProduct(ctx context.Context, filter Filter) ([]ProductRow, error) {
	filter, err := normalizeFilter(filter)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.GetByProduct(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("profit by product: %w", err)
	}
	for i := range rows {
		rows[i].derive()
	}
	return rows, nil
}

// GetByCategory returns the per-category breakdown for a range.
func (s *Service) GetByCategory(ctx context.Context, filter Filter) ([]GroupRow, error) {
	filter, err := normalizeFilter(filter)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.GetByCategory(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("profit by category: %w", err)
	}
	for i := range rows {
		rows[i].derive()
	}
	return rows, nil
}

// GetBySupplier returns the per-supplier breakdown for a range.
func (s *Service) GetBySupplier(ctx context.Context, filter Filter) ([]GroupRow, error) {
	filter, err := normalizeFilter(filter)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.GetBySupplier(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("profit by supplier: %w", err)
	}
	for i := range rows {
		rows[i].derive()
	}
	return rows, nil
}

// GetByDay returns the per-day breakdown for a range.
func (s *Service) GetByDay(ctx context.Context, filter Filter) ([]DailyRow, error) {
	filter, err := normalizeFilter(filter)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.GetByDay(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("profit by day: %w", err)
	}
	for i := range rows {
		rows[i].derive()
	}
	return rows, nil
}
