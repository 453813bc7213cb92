package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tillbook/internal/core/apperror"
	"tillbook/internal/domain"
	"tillbook/internal/domain/sales"
	"tillbook/internal/infrastructure/http/v1/dto"
	"tillbook/internal/infrastructure/metrics"
)

// SaleHandler handles sale transactions.
type SaleHandler struct {
	*BaseHandler
	service *sales.Service
	metrics *metrics.Metrics
}

// NewSaleHandler creates a new sale handler. m may be nil.
func NewSaleHandler(base *BaseHandler, service *sales.Service, m *metrics.Metrics) *SaleHandler {
	return &SaleHandler{BaseHandler: base, service: service, metrics: m}
}

// Create records a sale as one atomic unit of work.
func (h *SaleHandler) Create(c *gin.Context) {
	var req dto.CreateSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	input, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	sale, err := h.service.Create(c.Request.Context(), input)
	if err != nil {
		if h.metrics != nil && apperror.IsCode(err, apperror.CodeInsufficientStock) {
			h.metrics.InsufficientStockRejections.Inc()
		}
		h.Error(c, err)
		return
	}

	if h.metrics != nil {
		h.metrics.SalesCreated.Inc()
	}
	c.JSON(http.StatusCreated, sale)
}

// Get retrieves a sale with its lines.
func (h *SaleHandler) Get(c *gin.Context) {
	saleID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	sale, err := h.service.GetWithItems(c.Request.Context(), saleID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, sale)
}

// Cancel fully reverses a sale.
func (h *SaleHandler) Cancel(c *gin.Context) {
	saleID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	sale, err := h.service.Cancel(c.Request.Context(), saleID)
	if err != nil {
		h.Error(c, err)
		return
	}

	if h.metrics != nil {
		h.metrics.SalesCanceled.Inc()
	}
	c.JSON(http.StatusOK, sale)
}

// Return partially reverses a sale.
func (h *SaleHandler) Return(c *gin.Context) {
	saleID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.ReturnRequest
	if !h.BindJSON(c, &req) {
		return
	}

	lines, err := req.ToLines()
	if err != nil {
		h.Error(c, err)
		return
	}

	sale, err := h.service.ProcessReturn(c.Request.Context(), saleID, lines)
	if err != nil {
		h.Error(c, err)
		return
	}

	if h.metrics != nil {
		h.metrics.SalesReturned.Inc()
	}
	c.JSON(http.StatusOK, sale)
}

// List retrieves sales with filtering.
func (h *SaleHandler) List(c *gin.Context) {
	filter := sales.ListFilter{
		ListFilter: domain.DefaultListFilter(),
	}
	filter.Search = c.Query("search")
	filter.ReceiptNumber = c.Query("receiptNumber")
	filter.OrderBy = c.Query("orderBy")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)

	if raw := c.Query("isReturned"); raw != "" {
		value := raw == "true"
		filter.IsReturned = &value
	}

	from, err := h.ParseTimeQuery(c, "from")
	if err != nil {
		h.Error(c, err)
		return
	}
	filter.DateFrom = from

	to, err := h.ParseTimeQuery(c, "to")
	if err != nil {
		h.Error(c, err)
		return
	}
	filter.DateTo = to

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
