package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tillbook/internal/domain/auth"
	"tillbook/internal/infrastructure/http/v1/dto"
)

// AuthHandler handles operator login.
type AuthHandler struct {
	*BaseHandler
	service *auth.Service
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(base *BaseHandler, service *auth.Service) *AuthHandler {
	return &AuthHandler{BaseHandler: base, service: service}
}

// Login exchanges the access key for a bearer token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	token, expiresAt, err := h.service.Login(req.AccessKey)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
	})
}
