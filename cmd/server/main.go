// Command server runs the tillbook HTTP API.
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"tillbook/internal/domain/auth"
	"tillbook/internal/domain/catalog/product"
	"tillbook/internal/domain/profit"
	"tillbook/internal/domain/sales"
	"tillbook/internal/domain/stock"
	"tillbook/internal/infrastructure/cache"
	v1 "tillbook/internal/infrastructure/http/v1"
	"tillbook/internal/infrastructure/http/v1/handlers"
	"tillbook/internal/infrastructure/metrics"
	"tillbook/internal/infrastructure/storage/postgres"
	"tillbook/migrations"
	"tillbook/pkg/config"
	"tillbook/pkg/logger"
	"tillbook/pkg/migrate"
	"tillbook/pkg/numerator"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal(ctx, "load config", "error", err)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.App.LogLevel,
		Development: cfg.App.IsDev(),
	})
	if err != nil {
		logger.Fatal(ctx, "init logger", "error", err)
	}
	ctx = logger.WithLogger(ctx, log)

	if cfg.App.AutoMigrate {
		if err := runMigrations(ctx, cfg.DB.DSN); err != nil {
			logger.Fatal(ctx, "auto-migrate", "error", err)
		}
		logger.Info(ctx, "migrations applied")
	}

	poolCfg := postgres.DefaultPoolConfig(cfg.DB.DSN)
	poolCfg.MaxConns = cfg.DB.MaxConns
	poolCfg.MinConns = cfg.DB.MinConns
	poolCfg.MaxConnLifetime = cfg.DB.MaxConnLifetime

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		logger.Fatal(ctx, "connect database", "error", err)
	}
	defer pool.Close()

	txm := postgres.NewTxManager(pool)

	// Repositories.
	productRepo := postgres.NewProductRepo(txm)
	stockRepo := postgres.NewStockRepo(txm)
	saleRepo := postgres.NewSaleRepo(txm)
	profitRepo := postgres.NewProfitRepo(txm)

	// Optional redis report cache.
	var profitCache profit.Cache
	if cfg.Redis.Enabled() {
		redisCache, err := cache.NewProfitCache(ctx, cache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Redis.TTL,
		})
		if err != nil {
			logger.Fatal(ctx, "connect redis", "error", err)
		}
		defer redisCache.Close()
		profitCache = redisCache
		logger.Info(ctx, "report cache enabled", "addr", cfg.Redis.Addr)
	}

	// Services.
	policy, err := sales.NewPolicy(cfg.Sales.PolicyRules)
	if err != nil {
		logger.Fatal(ctx, "compile sale policy", "error", err)
	}

	productService := product.NewService(productRepo, txm)
	stockService := stock.NewService(stockRepo, txm)
	verifier := stock.NewVerifier(stockService, productRepo)
	numbererService := numerator.New(pool)
	saleService := sales.NewService(saleRepo, stockService, policy, numbererService, txm)
	profitService := profit.NewService(profitRepo, profitCache)
	authService := auth.NewService(auth.Config{
		Secret:        cfg.Auth.JWTSecret,
		AccessKeyHash: cfg.Auth.AccessKeyHash,
		TokenTTL:      cfg.Auth.TokenTTL,
	})

	m := metrics.New()

	base := handlers.NewBaseHandler()
	router := v1.NewRouter(v1.RouterConfig{
		AuthService: authService,
		Metrics:     m,
		Auth:        handlers.NewAuthHandler(base, authService),
		Products:    handlers.NewProductHandler(base, productService),
		Sales:       handlers.NewSaleHandler(base, saleService, m),
		Stock:       handlers.NewStockHandler(base, stockService, verifier, m),
		Reports:     handlers.NewReportsHandler(base, profitService),
		Health:      handlers.NewHealthHandler(pool),
		Development: cfg.App.IsDev(),
	})

	server := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info(ctx, "server listening", "port", cfg.App.Port, "env", cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(ctx, "server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "shutdown failed", "error", err)
	}
	logger.Info(ctx, "server stopped")
}

func runMigrations(ctx context.Context, dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	return migrate.Up(ctx, db, migrations.FS)
}
