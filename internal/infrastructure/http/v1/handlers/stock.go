package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzip"

	"tillbook/internal/core/apperror"
	"tillbook/internal/core/id"
	"tillbook/internal/domain/stock"
	"tillbook/internal/infrastructure/http/v1/dto"
	"tillbook/internal/infrastructure/metrics"
	"tillbook/pkg/logger"
)

// StockHandler handles ledger requests.
type StockHandler struct {
	*BaseHandler
	service  *stock.Service
	verifier *stock.Verifier
	metrics  *metrics.Metrics
}

// NewStockHandler creates a new stock handler. m may be nil.
func NewStockHandler(base *BaseHandler, service *stock.Service, verifier *stock.Verifier, m *metrics.Metrics) *StockHandler {
	return &StockHandler{BaseHandler: base, service: service, verifier: verifier, metrics: m}
}

// Adjust records a general stock adjustment against a product.
func (h *StockHandler) Adjust(c *gin.Context) {
	productID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.AdjustStockRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := h.service.AdjustStock(c.Request.Context(),
		productID, req.QuantityChange, req.Type(), req.Reason, req.Reference)
	if err != nil {
		if h.metrics != nil && apperror.IsCode(err, apperror.CodeInsufficientStock) {
			h.metrics.InsufficientStockRejections.Inc()
		}
		h.Error(c, err)
		return
	}

	if h.metrics != nil {
		h.metrics.StockAdjustments.WithLabelValues(req.AdjustmentType).Inc()
	}
	c.JSON(http.StatusOK, p)
}

// History lists a product's ledger facts, newest first.
func (h *StockHandler) History(c *gin.Context) {
	productID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	filter, err := h.buildFilter(c)
	if err != nil {
		h.Error(c, err)
		return
	}
	filter.ProductID = &productID
	filter.Limit = h.ParseIntQuery(c, "limit", 100)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)

	adjustments, err := h.service.History(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": adjustments})
}

// LedgerCheck reconciles a product counter against the ledger.
func (h *StockHandler) LedgerCheck(c *gin.Context) {
	productID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	check, err := h.verifier.Check(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, check)
}

// exportPageSize bounds memory per page while streaming the ledger.
const exportPageSize = 1000

// Export streams the ledger as gzip-compressed NDJSON in fixed-size
// pages, so exports of any size run in constant memory.
func (h *StockHandler) Export(c *gin.Context) {
	filter, err := h.buildFilter(c)
	if err != nil {
		h.Error(c, err)
		return
	}
	if raw := c.Query("productId"); raw != "" {
		productID, err := id.Parse(raw)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid product id"))
			return
		}
		filter.ProductID = &productID
	}
	filter.Limit = exportPageSize

	c.Header("Content-Type", "application/x-ndjson")
	c.Header("Content-Encoding", "gzip")
	c.Header("Content-Disposition", `attachment; filename="stock_adjustments.ndjson.gz"`)

	gz := gzip.NewWriter(c.Writer)
	enc := json.NewEncoder(gz)

	ctx := c.Request.Context()
	for offset := 0; ; offset += exportPageSize {
		filter.Offset = offset
		page, err := h.service.History(ctx, filter)
		if err != nil {
			// Headers are already out; all we can do is log and stop.
			logger.Error(ctx, "ledger export aborted", "error", err, "offset", offset)
			break
		}
		for i := range page {
			if err := enc.Encode(&page[i]); err != nil {
				logger.Error(ctx, "ledger export write failed", "error", err)
				_ = gz.Close()
				return
			}
		}
		if len(page) < exportPageSize {
			break
		}
	}

	if err := gz.Close(); err != nil {
		logger.Error(ctx, "ledger export flush failed", "error", err)
	}
}

func (h *StockHandler) buildFilter(c *gin.Context) (stock.Filter, error) {
	var filter stock.Filter

	if raw := c.Query("type"); raw != "" {
		typ := stock.AdjustmentType(raw)
		if !typ.Valid() {
			return filter, apperror.NewValidation("unknown adjustment type").WithDetail("type", raw)
		}
		filter.Type = &typ
	}
	filter.Reference = c.Query("reference")

	from, err := h.ParseTimeQuery(c, "from")
	if err != nil {
		return filter, err
	}
	filter.FromDate = from

	to, err := h.ParseTimeQuery(c, "to")
	if err != nil {
		return filter, err
	}
	filter.ToDate = to

	return filter, nil
}
