// Command seed loads a small demo catalog and a few sales for local
// development.
package main

import (
	"context"
	"fmt"
	"os"

	"tillbook/internal/core/types"
	"tillbook/internal/domain/catalog/product"
	"tillbook/internal/domain/sales"
	"tillbook/internal/domain/stock"
	"tillbook/internal/infrastructure/storage/postgres"
	"tillbook/pkg/config"
	"tillbook/pkg/logger"
	"tillbook/pkg/numerator"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DB.DSN))
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect database: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	txm := postgres.NewTxManager(pool)
	productService := product.NewService(postgres.NewProductRepo(txm), txm)
	stockService := stock.NewService(postgres.NewStockRepo(txm), txm)

	policy, err := sales.NewPolicy(nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "compile policy: %v\n", err)
		os.Exit(1)
	}
	saleService := sales.NewService(
		postgres.NewSaleRepo(txm), stockService, policy, numerator.New(pool), txm)

	products := []*product.Product{
		demoProduct("ESP-001", "Espresso Beans 1kg", "coffee", "Beanhouse", "14.50", "29.90", 40),
		demoProduct("FLT-002", "Filter Roast 500g", "coffee", "Beanhouse", "6.20", "13.50", 60),
		demoProduct("MUG-010", "Stoneware Mug", "accessories", "Claymade", "4.80", "12.00", 25),
		demoProduct("GRD-020", "Hand Grinder", "accessories", "Steelworks", "22.00", "49.00", 10),
	}

	for _, p := range products {
		if err := productService.Create(ctx, p); err != nil {
			logger.Warn(ctx, "seed product skipped", "sku", p.SKU, "error", err)
			continue
		}
	}

	sale, err := saleService.Create(ctx, sales.CreateSaleInput{
		PaymentMethod: sales.PaymentCard,
		AmountPaid:    types.MustMoney("42.90"),
		CardAmount:    types.MustMoney("42.90"),
		Items: []sales.CreateSaleItem{
			{ProductID: products[0].ID, Quantity: 1, UnitPrice: types.MustMoney("29.90")},
			{ProductID: products[2].ID, Quantity: 1, UnitPrice: types.MustMoney("13.00")},
		},
	})
	if err != nil {
		logger.Warn(ctx, "seed sale skipped", "error", err)
	} else {
		logger.Info(ctx, "seed sale created", "receipt", sale.ReceiptNumber)
	}

	logger.Info(ctx, "seed complete", "products", len(products))
}

func demoProduct(sku, name, category, supplier, cost, price string, qty int64) *product.Product {
	p := product.NewProduct(sku, name)
	p.Category = category
	p.Supplier = supplier
	p.CostPrice = types.MustMoney(cost)
	p.SellingPrice = types.MustMoney(price)
	p.StockQuantity = qty
	p.MinStockThreshold = 5
	return p
}
