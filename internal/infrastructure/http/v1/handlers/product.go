package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tillbook/internal/domain"
	"tillbook/internal/domain/catalog/product"
	"tillbook/internal/infrastructure/http/v1/dto"
)

// ProductHandler handles catalog requests.
type ProductHandler struct {
	*BaseHandler
	service *product.Service
}

// NewProductHandler creates a new product handler.
func NewProductHandler(base *BaseHandler, service *product.Service) *ProductHandler {
	return &ProductHandler{BaseHandler: base, service: service}
}

// Create adds a product to the catalog.
func (h *ProductHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := req.ToEntity()
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Create(c.Request.Context(), p); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, p)
}

// Get retrieves one product.
func (h *ProductHandler) Get(c *gin.Context) {
	productID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	p, err := h.service.GetByID(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

// Update patches catalog fields of a product.
func (h *ProductHandler) Update(c *gin.Context) {
	productID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	p, err := h.service.GetByID(ctx, productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := req.ApplyTo(p); err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Update(ctx, p); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

// Delete soft-deletes a product.
func (h *ProductHandler) Delete(c *gin.Context) {
	productID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), productID); err != nil {
		h.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// List retrieves products with filtering.
func (h *ProductHandler) List(c *gin.Context) {
	filter := product.ListFilter{
		ListFilter: domain.DefaultListFilter(),
	}
	filter.Search = c.Query("search")
	filter.Category = c.Query("category")
	filter.Supplier = c.Query("supplier")
	filter.IncludeDeleted = c.Query("includeDeleted") == "true"
	filter.OrderBy = c.Query("orderBy")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListLowStock retrieves products at or below their threshold.
func (h *ProductHandler) ListLowStock(c *gin.Context) {
	products, err := h.service.ListLowStock(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": products})
}
