// Package handlers implements the HTTP API.
package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"tillbook/internal/core/apperror"
	"tillbook/internal/core/id"
)

// BaseHandler provides helpers shared by all handlers.
type BaseHandler struct{}

// NewBaseHandler creates the shared handler base.
func NewBaseHandler() *BaseHandler {
	return &BaseHandler{}
}

// Error records err for the error middleware to render.
func (h *BaseHandler) Error(c *gin.Context, err error) {
	_ = c.Error(err)
}

// BindJSON binds the request body, reporting a validation error on
// failure. Returns false when binding failed.
func (h *BaseHandler) BindJSON(c *gin.Context, target any) bool {
	if err := c.ShouldBindJSON(target); err != nil {
		h.Error(c, apperror.NewValidation("invalid request body").WithCause(err))
		return false
	}
	return true
}

// ParseID parses the named path parameter as an ID.
func (h *BaseHandler) ParseID(c *gin.Context, param string) (id.ID, bool) {
	parsed, err := id.Parse(c.Param(param))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format").WithDetail("param", param))
		return id.Nil(), false
	}
	return parsed, true
}

// ParseIntQuery parses an integer query parameter with a default.
func (h *BaseHandler) ParseIntQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

// ParseTimeQuery parses an RFC3339 or date-only query parameter.
func (h *BaseHandler) ParseTimeQuery(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, apperror.NewValidation("invalid date format, expected RFC3339 or YYYY-MM-DD").
		WithDetail("param", name)
}
