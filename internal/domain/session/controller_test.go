package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventario/internal/core/apperror"
	"inventario/internal/domain/count"
)

type mockGateway struct {
	poll     Poll
	pollErr  error
	assigned []int
	closed   []int
}

func (m *mockGateway) AssignSession(ctx context.Context, numero int, tienda, supervisor string) error {
	m.assigned = append(m.assigned, numero)
	return nil
}

func (m *mockGateway) CloseSession(ctx context.Context, numero int, supervisor string) error {
	m.closed = append(m.closed, numero)
	return nil
}

func (m *mockGateway) FetchSession(ctx context.Context) (Poll, error) {
	return m.poll, m.pollErr
}

func TestControllerStartCycle(t *testing.T) {
	gw := &mockGateway{}
	c := NewController(gw)

	state, err := c.StartCycle(context.Background(), 7, "TIENDA 3006", "Jefe")
	require.NoError(t, err)

	assert.Equal(t, []int{7}, gw.assigned)
	assert.Equal(t, 7, state.Numero)
	assert.True(t, state.Active)
	assert.False(t, state.Inicio.IsZero())
}

func TestControllerStartCycle_Validation(t *testing.T) {
	c := NewController(&mockGateway{})

	_, err := c.StartCycle(context.Background(), 0, "TIENDA 3006", "Jefe")
	assert.Error(t, err)

	_, err = c.StartCycle(context.Background(), 7, "", "Jefe")
	assert.Error(t, err)
}

func TestControllerJoinCycle(t *testing.T) {
	gw := &mockGateway{poll: Poll{Numero: 7, FechaInicio: "11/03/2026 08:00:00"}}
	c := NewController(gw)

	state, err := c.JoinCycle(context.Background(), "Maria", count.TypeCajas)
	require.NoError(t, err)

	assert.Equal(t, 7, state.Numero)
	assert.Equal(t, "Maria", state.Registrante)
	assert.Equal(t, count.TypeCajas, state.Tipo)
	assert.True(t, state.Active)
	assert.False(t, state.Inicio.IsZero())
}

func TestControllerJoinCycle_NoActiveCycle(t *testing.T) {
	gw := &mockGateway{poll: Poll{Numero: 0}}
	c := NewController(gw)

	_, err := c.JoinCycle(context.Background(), "Maria", count.TypeCajas)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeNoActiveCycle, appErr.Code)
}

func TestControllerCloseCycle(t *testing.T) {
	gw := &mockGateway{}
	c := NewController(gw)
	_, err := c.StartCycle(context.Background(), 7, "TIENDA 3006", "Jefe")
	require.NoError(t, err)

	require.NoError(t, c.CloseCycle(context.Background(), "Jefe"))
	assert.Equal(t, []int{7}, gw.closed)
	assert.False(t, c.Current().Active)

	// Closing again has nothing to close.
	err = c.CloseCycle(context.Background(), "Jefe")
	assert.Error(t, err)
}

func TestControllerApplyPoll_FirstObservationSeedsSilently(t *testing.T) {
	c := NewController(&mockGateway{})

	state, notify := c.ApplyPoll(context.Background(), Poll{Numero: 7})

	assert.False(t, notify)
	assert.Equal(t, 7, state.Numero)
	assert.True(t, state.Active)
}

func TestControllerApplyPoll_NotifiesOnNewCycle(t *testing.T) {
	c := NewController(&mockGateway{})

	_, notify := c.ApplyPoll(context.Background(), Poll{Numero: 7})
	assert.False(t, notify)

	// Same number again stays quiet.
	_, notify = c.ApplyPoll(context.Background(), Poll{Numero: 7})
	assert.False(t, notify)

	// A new number fires exactly once.
	_, notify = c.ApplyPoll(context.Background(), Poll{Numero: 8})
	assert.True(t, notify)

	_, notify = c.ApplyPoll(context.Background(), Poll{Numero: 8})
	assert.False(t, notify)
}

func TestControllerApplyPoll_InicioStableWithinCycle(t *testing.T) {
	c := NewController(&mockGateway{})

	first, _ := c.ApplyPoll(context.Background(), Poll{Numero: 7, FechaInicio: "11/03/2026 08:00:00"})
	second, _ := c.ApplyPoll(context.Background(), Poll{Numero: 7, FechaInicio: "11/03/2026 09:30:00"})

	assert.Equal(t, first.Inicio, second.Inicio)
}

func TestControllerApplyPoll_WithdrawnCycleClearsState(t *testing.T) {
	c := NewController(&mockGateway{})

	c.ApplyPoll(context.Background(), Poll{Numero: 7})
	state, notify := c.ApplyPoll(context.Background(), Poll{Numero: 0})

	assert.False(t, notify)
	assert.False(t, state.Active)
	assert.Zero(t, state.Numero)
}

func TestControllerStartCycleSuppressesOwnNotification(t *testing.T) {
	gw := &mockGateway{}
	c := NewController(gw)

	_, err := c.StartCycle(context.Background(), 9, "TIENDA 3006", "Jefe")
	require.NoError(t, err)

	// The next poll reports the number we just assigned ourselves.
	_, notify := c.ApplyPoll(context.Background(), Poll{Numero: 9})
	assert.False(t, notify)
}
