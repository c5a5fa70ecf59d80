package session

import (
	"context"
	"sync"
	"time"

	"inventario/internal/core/apperror"
	"inventario/internal/domain/count"
	"inventario/pkg/logger"
)

// Gateway is the slice of the inventory server API the controller needs.
type Gateway interface {
	AssignSession(ctx context.Context, numero int, tienda string, supervisor string) error
	CloseSession(ctx context.Context, numero int, supervisor string) error
	FetchSession(ctx context.Context) (Poll, error)
}

// Controller owns the cycle state for one dashboard slot and serializes
// every transition against the poll loop.
type Controller struct {
	gw Gateway

	mu           sync.RWMutex
	state        State
	lastNotified int
	seeded       bool
}

// NewController creates a controller over the given gateway.
func NewController(gw Gateway) *Controller {
	return &Controller{gw: gw}
}

// Current returns a copy of the cycle state.
func (c *Controller) Current() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// StartCycle assigns a new inventory number to a store. Supervisor action.
func (c *Controller) StartCycle(ctx context.Context, numero int, tienda, supervisor string) (State, error) {
	if numero <= 0 {
		return State{}, apperror.NewValidation("número de inventario requerido")
	}
	if tienda == "" {
		return State{}, apperror.NewValidation("tienda requerida")
	}

	if err := c.gw.AssignSession(ctx, numero, tienda, supervisor); err != nil {
		return State{}, err
	}

	c.mu.Lock()
	c.state = State{
		Numero: numero,
		Tienda: tienda,
		Inicio: time.Now(),
		Active: true,
	}
	c.lastNotified = numero
	c.seeded = true
	state := c.state
	c.mu.Unlock()

	logger.Info(ctx, "counting cycle assigned",
		"numero", numero, "tienda", tienda, "supervisor", supervisor)
	return state, nil
}

// JoinCycle attaches an operator to the currently active cycle in the given
// counting mode. Refreshes from the server first so a dashboard opened
// mid-cycle picks up the right number and start time.
func (c *Controller) JoinCycle(ctx context.Context, registrante string, tipo count.CountType) (State, error) {
	if registrante == "" {
		return State{}, apperror.NewValidation("nombre de registrador requerido")
	}
	if _, err := count.ParseCountType(string(tipo)); err != nil {
		return State{}, err
	}

	poll, err := c.gw.FetchSession(ctx)
	if err != nil {
		return State{}, err
	}
	if poll.Numero <= 0 {
		return State{}, apperror.NewBusinessRule(apperror.CodeNoActiveCycle,
			"No hay un inventario activo asignado")
	}

	c.mu.Lock()
	now := time.Now()
	c.state.Inicio = ResolveInicio(c.state.Inicio, c.state.Numero, poll.Numero, poll.FechaInicio, poll.Records, now)
	c.state.Numero = poll.Numero
	c.state.Registrante = registrante
	c.state.Tipo = tipo
	c.state.Active = true
	state := c.state
	c.mu.Unlock()

	logger.Info(ctx, "operator joined cycle",
		"numero", state.Numero, "registrante", registrante, "tipo", string(tipo))
	return state, nil
}

// CloseCycle closes the active cycle on the server and detaches the slot.
// Supervisor action.
func (c *Controller) CloseCycle(ctx context.Context, supervisor string) error {
	c.mu.RLock()
	state := c.state
	c.mu.RUnlock()

	if !state.Active {
		return apperror.NewBusinessRule(apperror.CodeNoActiveCycle,
			"No hay un inventario activo para cerrar")
	}

	if err := c.gw.CloseSession(ctx, state.Numero, supervisor); err != nil {
		return err
	}

	c.mu.Lock()
	c.state = State{}
	c.mu.Unlock()

	logger.Info(ctx, "counting cycle closed",
		"numero", state.Numero, "supervisor", supervisor)
	return nil
}

// ApplyPoll folds a synchronizer observation into the cycle state and
// reports whether operators should be told about a newly assigned cycle.
// The very first observation after startup seeds silently.
func (c *Controller) ApplyPoll(ctx context.Context, poll Poll) (State, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	notify := false
	if poll.Numero > 0 {
		now := time.Now()
		c.state.Inicio = ResolveInicio(c.state.Inicio, c.state.Numero, poll.Numero, poll.FechaInicio, poll.Records, now)
		if poll.Numero != c.state.Numero {
			c.state.Numero = poll.Numero
		}
		c.state.Active = true

		if c.seeded && poll.Numero != c.lastNotified {
			notify = true
		}
		c.lastNotified = poll.Numero
	} else if c.state.Active {
		logger.Info(ctx, "active cycle withdrawn by server", "numero", c.state.Numero)
		c.state = State{}
	}
	c.seeded = true

	return c.state, notify
}
