package auth

import (
	"context"
	"crypto/subtle"
	"strings"
	"time"

	"inventario/internal/core/apperror"
	appctx "inventario/internal/core/context"
	"inventario/internal/domain/catalog"
	"inventario/pkg/logger"
)

// Config holds authentication configuration.
type Config struct {
	JWT JWTConfig
	// SupervisorKey elevates an operator to the supervisor role. Required
	// for assigning and closing cycles and for editing finalized counts.
	SupervisorKey string
}

// Token is an issued access token.
type Token struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	Role        string    `json:"role"`
}

// Service issues operator tokens.
type Service struct {
	cfg Config
	jwt *JWTService
}

// NewService creates the auth service.
func NewService(cfg Config) *Service {
	return &Service{cfg: cfg, jwt: NewJWTService(cfg.JWT)}
}

// JWT exposes the token validator for middleware.
func (s *Service) JWT() *JWTService {
	return s.jwt
}

// Login issues a counter token for a named operator at a warehouse.
// Counting needs no password; the name is an accountability label, not a
// secret.
func (s *Service) Login(ctx context.Context, name, warehouse string) (Token, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Token{}, apperror.NewValidation("nombre de registrador requerido")
	}
	switch warehouse {
	case catalog.WarehouseCallao, catalog.WarehouseMalvinas:
	default:
		return Token{}, apperror.NewValidation("almacén inválido").
			WithDetail("warehouse", warehouse)
	}

	tok, exp, err := s.jwt.GenerateAccessToken(name, warehouse, appctx.RoleCounter)
	if err != nil {
		return Token{}, apperror.NewInternal(err)
	}

	logger.Info(ctx, "operator logged in", "name", name, "warehouse", warehouse)
	return Token{AccessToken: tok, ExpiresAt: exp, Role: appctx.RoleCounter}, nil
}

// Elevate issues a supervisor token when the supervisor key matches.
func (s *Service) Elevate(ctx context.Context, name, warehouse, key string) (Token, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Token{}, apperror.NewValidation("nombre de registrador requerido")
	}
	if s.cfg.SupervisorKey == "" {
		return Token{}, apperror.NewForbidden("la elevación de permisos está deshabilitada")
	}
	if subtle.ConstantTimeCompare([]byte(key), []byte(s.cfg.SupervisorKey)) != 1 {
		logger.Warn(ctx, "supervisor elevation rejected", "name", name)
		return Token{}, apperror.NewUnauthorized("clave de supervisor incorrecta")
	}

	tok, exp, err := s.jwt.GenerateAccessToken(name, warehouse, appctx.RoleSupervisor)
	if err != nil {
		return Token{}, apperror.NewInternal(err)
	}

	logger.Info(ctx, "supervisor token issued", "name", name, "warehouse", warehouse)
	return Token{AccessToken: tok, ExpiresAt: exp, Role: appctx.RoleSupervisor}, nil
}
