package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appctx "inventario/internal/core/context"
)

func testService(supervisorKey string) *Service {
	return NewService(Config{
		JWT:           DefaultJWTConfig("test-secret"),
		SupervisorKey: supervisorKey,
	})
}

func TestLogin(t *testing.T) {
	svc := testService("")

	tok, err := svc.Login(context.Background(), "Maria", "callao")
	require.NoError(t, err)

	assert.NotEmpty(t, tok.AccessToken)
	assert.Equal(t, appctx.RoleCounter, tok.Role)
	assert.True(t, tok.ExpiresAt.After(time.Now()))

	op, err := svc.JWT().ValidateToken(tok.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "Maria", op.Name)
	assert.Equal(t, "callao", op.Warehouse)
	assert.Equal(t, appctx.RoleCounter, op.Role)
}

func TestLogin_Validation(t *testing.T) {
	svc := testService("")

	_, err := svc.Login(context.Background(), "  ", "callao")
	assert.Error(t, err)

	_, err = svc.Login(context.Background(), "Maria", "lima")
	assert.Error(t, err)
}

func TestElevate(t *testing.T) {
	svc := testService("llave-maestra")

	tok, err := svc.Elevate(context.Background(), "Jefe", "malvinas", "llave-maestra")
	require.NoError(t, err)
	assert.Equal(t, appctx.RoleSupervisor, tok.Role)

	op, err := svc.JWT().ValidateToken(tok.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, appctx.RoleSupervisor, op.Role)
}

func TestElevate_WrongKey(t *testing.T) {
	svc := testService("llave-maestra")

	_, err := svc.Elevate(context.Background(), "Jefe", "malvinas", "adivinada")
	assert.Error(t, err)
}

func TestElevate_DisabledWithoutKey(t *testing.T) {
	svc := testService("")

	_, err := svc.Elevate(context.Background(), "Jefe", "malvinas", "")
	assert.Error(t, err)
}

func TestValidateToken_RejectsTampering(t *testing.T) {
	svc := testService("")
	other := NewService(Config{JWT: DefaultJWTConfig("other-secret")})

	tok, err := other.Login(context.Background(), "Maria", "callao")
	require.NoError(t, err)

	_, err = svc.JWT().ValidateToken(tok.AccessToken)
	assert.Error(t, err)

	_, err = svc.JWT().ValidateToken("not.a.token")
	assert.Error(t, err)
}

func TestValidateToken_RejectsExpired(t *testing.T) {
	cfg := DefaultJWTConfig("test-secret")
	cfg.AccessTokenTTL = -time.Minute
	svc := NewService(Config{JWT: cfg})

	tok, err := svc.Login(context.Background(), "Maria", "callao")
	require.NoError(t, err)

	_, err = svc.JWT().ValidateToken(tok.AccessToken)
	assert.Error(t, err)
}
