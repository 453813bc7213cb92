package stock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tillbook/internal/core/apperror"
	"tillbook/internal/core/id"
	"tillbook/internal/domain/catalog/product"
)

type passTxm struct{}

func (passTxm) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// fakeRepo mirrors the conditional-update contract of the real store.
type fakeRepo struct {
	products    map[id.ID]*product.Product
	ledger      []Adjustment
	lastDeficit bool
}

func newFakeRepo(products ...*product.Product) *fakeRepo {
	r := &fakeRepo{products: make(map[id.ID]*product.Product)}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (r *fakeRepo) ApplyDelta(_ context.Context, productID id.ID, delta int64, allowDeficit bool) (*product.Product, error) {
	r.lastDeficit = allowDeficit
	p, ok := r.products[productID]
	if !ok || p.IsDeleted() {
		return nil, apperror.NewNotFound("product", productID.String())
	}
	if !allowDeficit && p.StockQuantity+delta < 0 {
		return nil, apperror.NewInsufficientStock(productID.String(), -delta, p.StockQuantity)
	}
	p.StockQuantity += delta
	return p, nil
}

func (r *fakeRepo) CreateAdjustments(_ context.Context, adjustments []Adjustment) error {
	r.ledger = append(r.ledger, adjustments...)
	return nil
}

func (r *fakeRepo) List(_ context.Context, _ Filter) ([]Adjustment, error) {
	return r.ledger, nil
}

func (r *fakeRepo) SumByProduct(_ context.Context, productID id.ID) (int64, error) {
	var sum int64
	for _, a := range r.ledger {
		if a.ProductID == productID {
			sum += a.QuantityChange
		}
	}
	return sum, nil
}

func testProduct(qty int64) *product.Product {
	p := product.NewProduct("SKU-1", "Test Product")
	p.StockQuantity = qty
	p.InitialStock = qty
	return p
}

func TestApplyWritesCounterAndLedgerTogether(t *testing.T) {
	p := testProduct(10)
	repo := newFakeRepo(p)
	service := NewService(repo, passTxm{})

	result, err := service.Apply(context.Background(), ApplyRequest{
		ProductID: p.ID,
		Delta:     -3,
		Type:      AdjustmentSale,
		Reference: "RCP-1",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(7), result.Product.StockQuantity)
	require.Len(t, repo.ledger, 1)
	assert.Equal(t, int64(-3), repo.ledger[0].QuantityChange)
	assert.Equal(t, AdjustmentSale, repo.ledger[0].Type)
	assert.Equal(t, "RCP-1", repo.ledger[0].Reference)
}

func TestApplyValidatesRequest(t *testing.T) {
	p := testProduct(10)
	service := NewService(newFakeRepo(p), passTxm{})

	_, err := service.Apply(context.Background(), ApplyRequest{
		ProductID: p.ID, Delta: -1, Type: AdjustmentType("theft"),
	})
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))

	_, err = service.Apply(context.Background(), ApplyRequest{
		ProductID: p.ID, Delta: 0, Type: AdjustmentLoss,
	})
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestApplyDeficitRules(t *testing.T) {
	tests := []struct {
		name         string
		delta        int64
		typ          AdjustmentType
		allowDeficit bool
	}{
		{"increments always allowed", 5, AdjustmentPurchase, true},
		{"sale decrement bounded", -5, AdjustmentSale, false},
		{"loss decrement bounded", -5, AdjustmentLoss, false},
		{"correction may go negative", -5, AdjustmentCorrection, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testProduct(100)
			repo := newFakeRepo(p)
			service := NewService(repo, passTxm{})

			_, err := service.Apply(context.Background(), ApplyRequest{
				ProductID: p.ID, Delta: tt.delta, Type: tt.typ,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.allowDeficit, repo.lastDeficit)
		})
	}
}

func TestApplyInsufficientStock(t *testing.T) {
	p := testProduct(2)
	repo := newFakeRepo(p)
	service := NewService(repo, passTxm{})

	_, err := service.Apply(context.Background(), ApplyRequest{
		ProductID: p.ID, Delta: -3, Type: AdjustmentSale,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInsufficientStock))
	assert.Empty(t, repo.ledger, "a blocked decrement must leave no ledger fact")
	assert.Equal(t, int64(2), p.StockQuantity)
}

func TestAdjustStockRejectsSaleTypes(t *testing.T) {
	p := testProduct(10)
	service := NewService(newFakeRepo(p), passTxm{})

	for _, typ := range []AdjustmentType{AdjustmentSale, AdjustmentSaleCancel, AdjustmentSaleReturn} {
		_, err := service.AdjustStock(context.Background(), p.ID, 1, typ, "", "")
		assert.True(t, apperror.IsCode(err, apperror.CodeValidation), "type %s", typ)
	}
}

func TestAdjustStock(t *testing.T) {
	p := testProduct(10)
	repo := newFakeRepo(p)
	service := NewService(repo, passTxm{})

	updated, err := service.AdjustStock(context.Background(), p.ID, 15, AdjustmentPurchase, "restock", "PO-7")
	require.NoError(t, err)
	assert.Equal(t, int64(25), updated.StockQuantity)

	require.Len(t, repo.ledger, 1)
	assert.Equal(t, "PO-7", repo.ledger[0].Reference)
	assert.Equal(t, "restock", repo.ledger[0].Reason)
}

type fakeProductReader struct {
	p *product.Product
}

func (r fakeProductReader) GetByID(_ context.Context, _ id.ID) (*product.Product, error) {
	return r.p, nil
}

func TestVerifierCheck(t *testing.T) {
	p := testProduct(10)
	repo := newFakeRepo(p)
	service := NewService(repo, passTxm{})
	verifier := NewVerifier(service, fakeProductReader{p: p})

	_, err := service.Apply(context.Background(), ApplyRequest{
		ProductID: p.ID, Delta: -4, Type: AdjustmentSale,
	})
	require.NoError(t, err)

	check, err := verifier.Check(context.Background(), p.ID)
	require.NoError(t, err)
	assert.True(t, check.Consistent)
	assert.Equal(t, int64(6), check.StockQuantity)
	assert.Equal(t, int64(-4), check.LedgerSum)

	// A counter drifted outside the ledger write path is detected.
	p.StockQuantity = 99
	check, err = verifier.Check(context.Background(), p.ID)
	require.NoError(t, err)
	assert.False(t, check.Consistent)
}
