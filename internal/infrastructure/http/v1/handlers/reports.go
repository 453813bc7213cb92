package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tillbook/internal/domain/profit"
)

// ReportsHandler handles profit report requests.
type ReportsHandler struct {
	*BaseHandler
	service *profit.Service
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, service *profit.Service) *ReportsHandler {
	return &ReportsHandler{BaseHandler: base, service: service}
}

func (h *ReportsHandler) parseFilter(c *gin.Context) (profit.Filter, error) {
	var filter profit.Filter

	from, err := h.ParseTimeQuery(c, "from")
	if err != nil {
		return filter, err
	}
	if from != nil {
		filter.From = *from
	}

	to, err := h.ParseTimeQuery(c, "to")
	if err != nil {
		return filter, err
	}
	if to != nil {
		filter.To = *to
	}

	return filter, nil
}

// Summary returns aggregate figures for a range.
func (h *ReportsHandler) Summary(c *gin.Context) {
	filter, err := h.parseFilter(c)
	if err != nil {
		h.Error(c, err)
		return
	}

	summary, err := h.service.GetSummary(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// ByProduct returns the per-product breakdown.
func (h *ReportsHandler) ByProduct(c *gin.Context) {
	h.respondRows(c, func(filter profit.Filter) (any, error) {
		return h.service.GetByProduct(c.Request.Context(), filter)
	})
}

// ByCategory returns the per-category breakdown.
func (h *ReportsHandler) ByCategory(c *gin.Context) {
	h.respondRows(c, func(filter profit.Filter) (any, error) {
		return h.service.GetByCategory(c.Request.Context(), filter)
	})
}

// BySupplier returns the per-supplier breakdown.
func (h *ReportsHandler) BySupplier(c *gin.Context) {
	h.respondRows(c, func(filter profit.Filter) (any, error) {
		return h.service.GetBySupplier(c.Request.Context(), filter)
	})
}

// ByDay returns the per-day breakdown.
func (h *ReportsHandler) ByDay(c *gin.Context) {
	h.respondRows(c, func(filter profit.Filter) (any, error) {
		return h.service.GetByDay(c.Request.Context(), filter)
	})
}

func (h *ReportsHandler) respondRows(c *gin.Context, query func(profit.Filter) (any, error)) {
	filter, err := h.parseFilter(c)
	if err != nil {
		h.Error(c, err)
		return
	}

	rows, err := query(filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": rows})
}
