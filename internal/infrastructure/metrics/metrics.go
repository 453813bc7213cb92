// Package metrics exposes prometheus collectors for the service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all registered collectors.
type Metrics struct {
	registry *prometheus.Registry

	SalesCreated  prometheus.Counter
	SalesCanceled prometheus.Counter
	SalesReturned prometheus.Counter

	InsufficientStockRejections prometheus.Counter
	StockAdjustments            *prometheus.CounterVec

	HTTPRequestDuration *prometheus.HistogramVec
}

// New creates and registers all collectors on a private registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		SalesCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "tillbook_sales_created_total",
			Help: "Number of sales committed.",
		}),
		SalesCanceled: factory.NewCounter(prometheus.CounterOpts{
			Name: "tillbook_sales_canceled_total",
			Help: "Number of sales fully canceled.",
		}),
		SalesReturned: factory.NewCounter(prometheus.CounterOpts{
			Name: "tillbook_sales_returned_total",
			Help: "Number of partial return operations processed.",
		}),

		InsufficientStockRejections: factory.NewCounter(prometheus.CounterOpts{
			Name: "tillbook_insufficient_stock_rejections_total",
			Help: "Number of sales rejected for lack of stock.",
		}),
		StockAdjustments: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tillbook_stock_adjustments_total",
			Help: "Ledger facts written, by adjustment type.",
		}, []string{"type"}),

		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tillbook_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

// Handler returns the scrape endpoint handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
