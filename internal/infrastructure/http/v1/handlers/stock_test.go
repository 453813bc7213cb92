package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tillbook/internal/core/apperror"
	"tillbook/internal/core/id"
	"tillbook/internal/domain/catalog/product"
	"tillbook/internal/domain/stock"
	"tillbook/internal/infrastructure/metrics"
)

type passTxm struct{}

func (passTxm) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// shortStockRepo mirrors the conditional-update contract with a fixed
// amount of stock on hand.
type shortStockRepo struct{ available int64 }

func (r *shortStockRepo) ApplyDelta(_ context.Context, productID id.ID, delta int64, allowDeficit bool) (*product.Product, error) {
	if delta < 0 && !allowDeficit && r.available+delta < 0 {
		return nil, apperror.NewInsufficientStock(productID.String(), -delta, r.available)
	}
	p := product.NewProduct("ESP-001", "Espresso Beans")
	p.StockQuantity = r.available + delta
	return p, nil
}

func (r *shortStockRepo) CreateAdjustments(context.Context, []stock.Adjustment) error { return nil }

func (r *shortStockRepo) List(context.Context, stock.Filter) ([]stock.Adjustment, error) {
	return nil, nil
}

func (r *shortStockRepo) SumByProduct(context.Context, id.ID) (int64, error) { return 0, nil }

func newAdjustContext(t *testing.T, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: id.New().String()}}
	c.Request = httptest.NewRequest(http.MethodPost, "/stock", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func TestAdjustCountsInsufficientStockRejections(t *testing.T) {
	m := metrics.New()
	service := stock.NewService(&shortStockRepo{available: 1}, passTxm{})
	handler := NewStockHandler(NewBaseHandler(), service, nil, m)

	c, _ := newAdjustContext(t, `{"quantityChange": -5, "adjustmentType": "loss"}`)
	handler.Adjust(c)

	require.NotEmpty(t, c.Errors)
	assert.True(t, apperror.IsCode(c.Errors.Last().Err, apperror.CodeInsufficientStock))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.InsufficientStockRejections))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.StockAdjustments.WithLabelValues("loss")))
}

func TestAdjustCountsAppliedAdjustments(t *testing.T) {
	m := metrics.New()
	service := stock.NewService(&shortStockRepo{available: 10}, passTxm{})
	handler := NewStockHandler(NewBaseHandler(), service, nil, m)

	c, w := newAdjustContext(t, `{"quantityChange": -5, "adjustmentType": "loss", "reason": "breakage"}`)
	handler.Adjust(c)

	require.Empty(t, c.Errors)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), testutil.ToFloat64(m.InsufficientStockRejections))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.StockAdjustments.WithLabelValues("loss")))
}
