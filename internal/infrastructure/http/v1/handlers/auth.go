package handlers

import (
	"github.com/gin-gonic/gin"

	"inventario/internal/domain/auth"
	"inventario/internal/infrastructure/http/v1/dto"
)

// AuthHandler handles operator authentication.
type AuthHandler struct {
	*BaseHandler
	service *auth.Service
}

// NewAuthHandler creates an auth handler.
func NewAuthHandler(base *BaseHandler, service *auth.Service) *AuthHandler {
	return &AuthHandler{BaseHandler: base, service: service}
}

// Login issues a counter token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	token, err := h.service.Login(c.Request.Context(), req.Name, req.Warehouse)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.TokenResponse{
		AccessToken: token.AccessToken,
		ExpiresAt:   token.ExpiresAt,
		Role:        token.Role,
	})
}

// Elevate issues a supervisor token against the supervisor key.
func (h *AuthHandler) Elevate(c *gin.Context) {
	var req dto.ElevateRequest
	if !h.BindJSON(c, &req) {
		return
	}

	token, err := h.service.Elevate(c.Request.Context(), req.Name, req.Warehouse, req.Key)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.TokenResponse{
		AccessToken: token.AccessToken,
		ExpiresAt:   token.ExpiresAt,
		Role:        token.Role,
	})
}
