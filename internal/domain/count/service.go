package count

import (
	"context"
	"sync"
	"time"

	"inventario/internal/core/apperror"
	"inventario/internal/domain/catalog"
	"inventario/pkg/logger"
)

// SnapshotStore persists draft snapshots across process restarts.
type SnapshotStore interface {
	SaveDraft(slot string, snap Snapshot) error
	LoadDraft(slot string) (Snapshot, bool, error)
	DeleteDraft(slot string) error
}

// Service manages the active count drafts, one per dashboard slot.
// Every mutation is written through to the snapshot store so a crash or
// restart loses at most the in-flight keystroke.
type Service struct {
	store SnapshotStore

	mu     sync.RWMutex
	drafts map[string]*Draft
}

// NewService creates a draft service backed by the given snapshot store.
func NewService(store SnapshotStore) *Service {
	return &Service{
		store:  store,
		drafts: make(map[string]*Draft),
	}
}

// Get returns the active draft for a slot.
func (s *Service) Get(slot string) (*Draft, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.drafts[slot]
	return d, ok
}

// Restore opens a draft for the given count, merging three sources per
// product code: a locally persisted edit wins, otherwise a positive
// server-side quantity is taken, otherwise the product starts uncounted.
func (s *Service) Restore(ctx context.Context, slot string, identity Identity, registrante string, inicio time.Time, serverLines []Line) (*Draft, error) {
	if err := identity.Validate(); err != nil {
		return nil, err
	}

	snap, found, err := s.store.LoadDraft(slot)
	if err != nil {
		logger.Warn(ctx, "draft snapshot unreadable, starting clean",
			"slot", slot, "error", err)
		found = false
	}
	if found && snap.Identity != identity {
		// Snapshot belongs to a previous cycle or another count.
		logger.Info(ctx, "discarding stale draft snapshot",
			"slot", slot,
			"saved", snap.Identity.String(),
			"current", identity.String())
		found = false
	}

	draft := NewDraft(identity, registrante, inicio)

	local := make(map[string]SnapshotLine)
	if found {
		if snap.Registrante != "" {
			draft.Registrante = snap.Registrante
		}
		if !snap.Inicio.IsZero() {
			draft.Inicio = snap.Inicio
		}
		for _, l := range snap.Lines {
			local[catalog.NormalizeCode(l.Codigo)] = l
		}
	}

	seen := make(map[string]bool)
	for _, sl := range serverLines {
		code := catalog.NormalizeCode(sl.Codigo)
		if code == "" {
			continue
		}
		seen[code] = true
		if ll, ok := local[code]; ok {
			draft.Lines = append(draft.Lines, Line{
				DetalleID: ll.DetalleID,
				Codigo:    code,
				Unidad:    catalog.NormalizeUnit(ll.Unidad),
				Cantidad:  ll.Cantidad,
			})
			continue
		}
		if sl.Cantidad.IsPositive() {
			sl.Codigo = code
			sl.Unidad = catalog.NormalizeUnit(sl.Unidad)
			draft.Lines = append(draft.Lines, sl)
		}
	}
	// Locally counted products the server does not know yet.
	for _, l := range snapLinesInOrder(snap, found) {
		code := catalog.NormalizeCode(l.Codigo)
		if code == "" || seen[code] {
			continue
		}
		draft.Lines = append(draft.Lines, Line{
			DetalleID: l.DetalleID,
			Codigo:    code,
			Unidad:    catalog.NormalizeUnit(l.Unidad),
			Cantidad:  l.Cantidad,
		})
	}

	s.mu.Lock()
	s.drafts[slot] = draft
	s.mu.Unlock()

	if err := s.persist(slot, draft); err != nil {
		logger.Warn(ctx, "draft snapshot write failed", "slot", slot, "error", err)
	}

	logger.Info(ctx, "draft restored",
		"slot", slot,
		"count", identity.String(),
		"lines", len(draft.Lines),
		"from_snapshot", found)
	return draft, nil
}

func snapLinesInOrder(snap Snapshot, found bool) []SnapshotLine {
	if !found {
		return nil
	}
	return snap.Lines
}

// SetLine upserts a counted line on the slot's draft and persists.
func (s *Service) SetLine(ctx context.Context, slot string, line Line) (*Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft, ok := s.drafts[slot]
	if !ok {
		return nil, apperror.NewBusinessRule(apperror.CodeNoActiveCycle, "No hay un conteo activo")
	}
	if err := draft.SetLine(line); err != nil {
		return nil, err
	}
	if err := s.persist(slot, draft); err != nil {
		logger.Warn(ctx, "draft snapshot write failed", "slot", slot, "error", err)
	}
	return draft, nil
}

// RemoveLine deletes a counted line from the slot's draft and persists.
func (s *Service) RemoveLine(ctx context.Context, slot string, codigo string) (*Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft, ok := s.drafts[slot]
	if !ok {
		return nil, apperror.NewBusinessRule(apperror.CodeNoActiveCycle, "No hay un conteo activo")
	}
	if err := draft.RemoveLine(codigo); err != nil {
		return nil, err
	}
	if err := s.persist(slot, draft); err != nil {
		logger.Warn(ctx, "draft snapshot write failed", "slot", slot, "error", err)
	}
	return draft, nil
}

// MergeLines bulk-upserts lines (spreadsheet import confirm) and persists.
func (s *Service) MergeLines(ctx context.Context, slot string, lines []Line) (*Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft, ok := s.drafts[slot]
	if !ok {
		return nil, apperror.NewBusinessRule(apperror.CodeNoActiveCycle, "No hay un conteo activo")
	}
	for _, l := range lines {
		l.Imported = true
		if err := draft.SetLine(l); err != nil {
			return nil, err
		}
	}
	if err := s.persist(slot, draft); err != nil {
		logger.Warn(ctx, "draft snapshot write failed", "slot", slot, "error", err)
	}
	logger.Info(ctx, "imported lines merged into draft", "slot", slot, "lines", len(lines))
	return draft, nil
}

// Clear drops the slot's draft and its snapshot, after the count finalized
// or the operator abandoned it.
func (s *Service) Clear(ctx context.Context, slot string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.drafts, slot)
	if err := s.store.DeleteDraft(slot); err != nil {
		logger.Warn(ctx, "draft snapshot delete failed", "slot", slot, "error", err)
		return err
	}
	return nil
}

func (s *Service) persist(slot string, draft *Draft) error {
	return s.store.SaveDraft(slot, draft.ToSnapshot())
}
