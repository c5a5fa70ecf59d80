package count

import (
	"context"
	"time"

	"inventario/internal/core/apperror"
	"inventario/pkg/logger"
)

func noActiveDraftErr() error {
	return apperror.NewBusinessRule(apperror.CodeNoActiveCycle, "No hay un conteo activo")
}

// Gateway is the inventory server surface the coordinator needs.
type Gateway interface {
	StartCount(ctx context.Context, id Identity, registrante string) error
	FinalizeCount(ctx context.Context, id Identity, registrante string, lines []Line) error
	FetchCounts(ctx context.Context) ([]Record, error)
	FetchDetalle(ctx context.Context, id Identity) (fisica []Line, sistema []Line, err error)
	FetchFinishedPage(ctx context.Context, almacen string, page int) (FinishedPage, error)
}

// FinishedPage is one page of the finished-count archive.
type FinishedPage struct {
	Records    []Record `json:"registros"`
	Page       int      `json:"pagina"`
	TotalPages int      `json:"total_paginas"`
}

// Coordinator runs the count lifecycle: opening a count against the server,
// guarding every mutation with a lock check, and finalizing.
type Coordinator struct {
	gw     Gateway
	drafts *Service
}

// NewCoordinator creates a Coordinator.
func NewCoordinator(gw Gateway, drafts *Service) *Coordinator {
	return &Coordinator{gw: gw, drafts: drafts}
}

// Drafts exposes the underlying draft service.
func (co *Coordinator) Drafts() *Service {
	return co.drafts
}

// Open starts (or resumes) a count. The server is consulted first: a count
// already finalized by anyone refuses to open. Previously saved server
// lines and the local snapshot are merged into the working draft.
func (co *Coordinator) Open(ctx context.Context, slot string, identity Identity, registrante string, inicio time.Time) (*Draft, error) {
	if err := identity.Validate(); err != nil {
		return nil, err
	}

	records, err := co.gw.FetchCounts(ctx)
	if err != nil {
		return nil, err
	}
	if err := LockError(identity, EvaluateLock(identity, registrante, records)); err != nil {
		return nil, err
	}

	if err := co.gw.StartCount(ctx, identity, registrante); err != nil {
		return nil, err
	}

	fisica, _, err := co.gw.FetchDetalle(ctx, identity)
	if err != nil {
		// The count is open server-side; start from the local snapshot only.
		logger.Warn(ctx, "detalle fetch failed on open, restoring from snapshot only",
			"count", identity.String(), "error", err)
		fisica = nil
	}

	return co.drafts.Restore(ctx, slot, identity, registrante, inicio, fisica)
}

// Finalize submits the draft lines and closes the count. The lock is
// re-evaluated right before submission so a collision that happened while
// counting is reported instead of silently overwriting the other side.
func (co *Coordinator) Finalize(ctx context.Context, slot string, registrante string) error {
	draft, ok := co.drafts.Get(slot)
	if !ok {
		return noActiveDraftErr()
	}

	records, err := co.gw.FetchCounts(ctx)
	if err != nil {
		return err
	}
	if err := LockError(draft.Identity, EvaluateLock(draft.Identity, draft.Registrante, records)); err != nil {
		return err
	}

	if registrante == "" {
		registrante = draft.Registrante
	}
	if err := co.gw.FinalizeCount(ctx, draft.Identity, registrante, draft.Lines); err != nil {
		return err
	}

	logger.Info(ctx, "count finalized",
		"count", draft.Identity.String(),
		"registrante", registrante,
		"lines", len(draft.Lines),
		"total", draft.TotalQuantity().String())

	return co.drafts.Clear(ctx, slot)
}

// CheckLock evaluates the current lock state of the slot's draft.
func (co *Coordinator) CheckLock(ctx context.Context, slot string) (Lock, error) {
	draft, ok := co.drafts.Get(slot)
	if !ok {
		return Lock{}, noActiveDraftErr()
	}
	records, err := co.gw.FetchCounts(ctx)
	if err != nil {
		return Lock{}, err
	}
	return EvaluateLock(draft.Identity, draft.Registrante, records), nil
}

// FinishedPage lists one page of the warehouse's finished counts.
func (co *Coordinator) FinishedPage(ctx context.Context, almacen string, page int) (FinishedPage, error) {
	if almacen == "" {
		return FinishedPage{}, apperror.NewValidation("almacén requerido")
	}
	if page < 1 {
		page = 1
	}
	return co.gw.FetchFinishedPage(ctx, almacen, page)
}

// Compare fetches both line sets of a count and classifies every product.
func (co *Coordinator) Compare(ctx context.Context, identity Identity) (ComparisonSummary, error) {
	if err := identity.Validate(); err != nil {
		return ComparisonSummary{}, err
	}
	fisica, sistema, err := co.gw.FetchDetalle(ctx, identity)
	if err != nil {
		return ComparisonSummary{}, err
	}
	return Compare(fisica, sistema), nil
}
