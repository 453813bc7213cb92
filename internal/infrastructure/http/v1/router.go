// Package v1 wires the HTTP API.
package v1

import (
	"github.com/gin-gonic/gin"

	"tillbook/internal/domain/auth"
	"tillbook/internal/infrastructure/http/v1/handlers"
	"tillbook/internal/infrastructure/http/v1/middleware"
	"tillbook/internal/infrastructure/metrics"
)

// RouterConfig carries everything the router wires together.
type RouterConfig struct {
	AuthService *auth.Service
	Metrics     *metrics.Metrics

	Auth     *handlers.AuthHandler
	Products *handlers.ProductHandler
	Sales    *handlers.SaleHandler
	Stock    *handlers.StockHandler
	Reports  *handlers.ReportsHandler
	Health   *handlers.HealthHandler

	Development bool
}

// NewRouter builds the gin engine. Reads are open; anything that writes
// requires a bearer token.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if !cfg.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.Trace(),
		middleware.RequestLogger(),
		middleware.ErrorHandler(),
	)
	if cfg.Metrics != nil {
		router.Use(middleware.Metrics(cfg.Metrics))
	}

	router.GET("/healthz", cfg.Health.Healthz)
	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := router.Group("/api/v1")
	authorized := api.Group("", middleware.RequireAuth(cfg.AuthService))

	api.POST("/auth/login", cfg.Auth.Login)

	// Catalog.
	api.GET("/products", cfg.Products.List)
	api.GET("/products/low-stock", cfg.Products.ListLowStock)
	api.GET("/products/:id", cfg.Products.Get)
	authorized.POST("/products", cfg.Products.Create)
	authorized.PUT("/products/:id", cfg.Products.Update)
	authorized.DELETE("/products/:id", cfg.Products.Delete)

	// Sales.
	api.GET("/sales", cfg.Sales.List)
	api.GET("/sales/:id", cfg.Sales.Get)
	authorized.POST("/sales", cfg.Sales.Create)
	authorized.POST("/sales/:id/cancel", cfg.Sales.Cancel)
	authorized.POST("/sales/:id/return", cfg.Sales.Return)

	// Stock ledger.
	api.GET("/products/:id/adjustments", cfg.Stock.History)
	api.GET("/products/:id/ledger-check", cfg.Stock.LedgerCheck)
	api.GET("/adjustments/export", cfg.Stock.Export)
	authorized.POST("/products/:id/stock", cfg.Stock.Adjust)

	// Profit reports.
	reports := api.Group("/reports/profit")
	reports.GET("", cfg.Reports.Summary)
	reports.GET("/products", cfg.Reports.ByProduct)
	reports.GET("/categories", cfg.Reports.ByCategory)
	reports.GET("/suppliers", cfg.Reports.BySupplier)
	reports.GET("/daily", cfg.Reports.ByDay)

	return router
}
