package profit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tillbook/internal/core/apperror"
	"tillbook/internal/core/types"
)

type fakeRepo struct {
	summary      Summary
	summaryCalls int
	products     []ProductRow
	days         []DailyRow
}

func (r *fakeRepo) GetSummary(_ context.Context, _ Filter) (Summary, error) {
	r.summaryCalls++
	return r.summary, nil
}

func (r *fakeRepo) GetByProduct(_ context.Context, _ Filter) ([]ProductRow, error) {
	return r.products, nil
}

func (r *fakeRepo) GetByCategory(_ context.Context, _ Filter) ([]GroupRow, error) {
	return nil, nil
}

func (r *fakeRepo) GetBySupplier(_ context.Context, _ Filter) ([]GroupRow, error) {
	return nil, nil
}

func (r *fakeRepo) GetByDay(_ context.Context, _ Filter) ([]DailyRow, error) {
	return r.days, nil
}

type fakeCache struct {
	entries map[string]Summary
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]Summary)}
}

func cacheKey(filter Filter) string {
	return filter.From.String() + "|" + filter.To.String()
}

func (c *fakeCache) GetSummary(_ context.Context, filter Filter) (*Summary, bool) {
	if summary, ok := c.entries[cacheKey(filter)]; ok {
		return &summary, true
	}
	return nil, false
}

func (c *fakeCache) SetSummary(_ context.Context, filter Filter, summary Summary) {
	c.entries[cacheKey(filter)] = summary
}

func window() Filter {
	return Filter{
		From: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
	}
}

func TestGetSummaryDerivesProfitAndMargin(t *testing.T) {
	repo := &fakeRepo{summary: Summary{
		Revenue: types.MustMoney("1000.00"),
		Cost:    types.MustMoney("600.00"),
	}}
	service := NewService(repo, nil)

	summary, err := service.GetSummary(context.Background(), window())
	require.NoError(t, err)

	assert.True(t, summary.Profit.Equal(types.MustMoney("400.00")))
	assert.True(t, summary.Margin.Equal(types.MustMoney("0.4")), "margin: %s", summary.Margin)
}

func TestGetSummaryZeroRevenue(t *testing.T) {
	repo := &fakeRepo{summary: Summary{
		Revenue: types.ZeroMoney(),
		Cost:    types.ZeroMoney(),
	}}
	service := NewService(repo, nil)

	summary, err := service.GetSummary(context.Background(), window())
	require.NoError(t, err)
	assert.True(t, summary.Margin.IsZero(), "margin must be zero without revenue, not a division error")
}

func TestGetSummaryUsesCache(t *testing.T) {
	repo := &fakeRepo{summary: Summary{
		Revenue: types.MustMoney("100.00"),
		Cost:    types.MustMoney("40.00"),
	}}
	service := NewService(repo, newFakeCache())

	first, err := service.GetSummary(context.Background(), window())
	require.NoError(t, err)
	assert.Equal(t, 1, repo.summaryCalls)

	second, err := service.GetSummary(context.Background(), window())
	require.NoError(t, err)
	assert.Equal(t, 1, repo.summaryCalls, "second read must come from the cache")
	assert.True(t, first.Profit.Equal(second.Profit))
}

func TestFilterValidation(t *testing.T) {
	service := NewService(&fakeRepo{}, nil)

	_, err := service.GetSummary(context.Background(), Filter{
		From: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestFilterDefaults(t *testing.T) {
	filter, err := normalizeFilter(Filter{})
	require.NoError(t, err)
	assert.False(t, filter.To.IsZero())
	assert.True(t, filter.From.Before(filter.To))
	assert.WithinDuration(t, filter.To.AddDate(0, -1, 0), filter.From, time.Second)

	// Defaulted bounds are truncated to the minute so repeated reads
	// of the default range share one cache key.
	assert.Zero(t, filter.To.Second())
	assert.Zero(t, filter.To.Nanosecond())
	assert.Zero(t, filter.From.Second())
	assert.Zero(t, filter.From.Nanosecond())
}

func TestDefaultRangeCacheHit(t *testing.T) {
	repo := &fakeRepo{summary: Summary{
		Revenue: types.MustMoney("1000.00"),
		Cost:    types.MustMoney("600.00"),
	}}
	cache := newFakeCache()
	service := NewService(repo, cache)

	_, err := service.GetSummary(context.Background(), Filter{})
	require.NoError(t, err)
	_, err = service.GetSummary(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.summaryCalls, "back-to-back default-range reads must share one cache entry")
}

func TestBreakdownRowsDerive(t *testing.T) {
	repo := &fakeRepo{
		products: []ProductRow{{
			ProductName:  "Espresso Beans",
			QuantitySold: 12,
			Summary: Summary{
				Revenue: types.MustMoney("358.80"),
				Cost:    types.MustMoney("174.00"),
			},
		}},
		days: []DailyRow{{
			Day: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
			Summary: Summary{
				Revenue: types.MustMoney("50.00"),
				Cost:    types.MustMoney("20.00"),
			},
		}},
	}
	service := NewService(repo, nil)

	products, err := service.GetByProduct(context.Background(), window())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.True(t, products[0].Profit.Equal(types.MustMoney("184.80")))

	days, err := service.GetByDay(context.Background(), window())
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.True(t, days[0].Profit.Equal(types.MustMoney("30.00")))
}
