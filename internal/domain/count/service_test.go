package count

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventario/internal/core/apperror"
)

type memStore struct {
	snaps   map[string]Snapshot
	loadErr error
	saveErr error
	saves   int
}

func newMemStore() *memStore {
	return &memStore{snaps: make(map[string]Snapshot)}
}

func (m *memStore) SaveDraft(slot string, snap Snapshot) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.snaps[slot] = snap
	m.saves++
	return nil
}

func (m *memStore) LoadDraft(slot string) (Snapshot, bool, error) {
	if m.loadErr != nil {
		return Snapshot{}, false, m.loadErr
	}
	snap, ok := m.snaps[slot]
	return snap, ok, nil
}

func (m *memStore) DeleteDraft(slot string) error {
	delete(m.snaps, slot)
	return nil
}

var testIdentity = Identity{Numero: 5, Tipo: TypeCajas, Tienda: "TIENDA 3006"}

func TestServiceRestore_FreshDraft(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)

	server := []Line{
		{Codigo: "A-100", Descripcion: "Producto A", Cantidad: qty(4)},
		{Codigo: "B-200", Descripcion: "Producto B", Cantidad: qty(0)},
	}

	draft, err := svc.Restore(context.Background(), "callao_por_cajas", testIdentity, "Maria", time.Now(), server)
	require.NoError(t, err)

	// Positive server quantities seed the draft, zeroes start uncounted.
	require.Len(t, draft.Lines, 1)
	assert.Equal(t, "A-100", draft.Lines[0].Codigo)
	assert.Equal(t, qty(4), draft.Lines[0].Cantidad)

	// The restored draft is persisted right away.
	assert.Equal(t, 1, store.saves)
}

func TestServiceRestore_LocalEditWins(t *testing.T) {
	store := newMemStore()
	store.snaps["callao_por_cajas"] = Snapshot{
		Identity:    testIdentity,
		Registrante: "Maria",
		Lines: []SnapshotLine{
			{Codigo: "A-100", Cantidad: qty(9)},
			{Codigo: "Z-900", Cantidad: qty(2)},
		},
	}
	svc := NewService(store)

	server := []Line{
		{Codigo: "A-100", Cantidad: qty(4)},
		{Codigo: "B-200", Cantidad: qty(3)},
	}

	draft, err := svc.Restore(context.Background(), "callao_por_cajas", testIdentity, "Maria", time.Now(), server)
	require.NoError(t, err)

	require.Len(t, draft.Lines, 3)
	// Local edit beats the server quantity.
	assert.Equal(t, qty(9), draft.Lines[draft.FindLine("A-100")].Cantidad)
	// Server-only positive line survives.
	assert.Equal(t, qty(3), draft.Lines[draft.FindLine("B-200")].Cantidad)
	// Locally counted product unknown to the server is appended.
	assert.Equal(t, qty(2), draft.Lines[draft.FindLine("Z-900")].Cantidad)
}

func TestServiceRestore_StaleSnapshotDiscarded(t *testing.T) {
	store := newMemStore()
	store.snaps["callao_por_cajas"] = Snapshot{
		Identity: Identity{Numero: 4, Tipo: TypeCajas, Tienda: "TIENDA 3006"},
		Lines:    []SnapshotLine{{Codigo: "A-100", Cantidad: qty(99)}},
	}
	svc := NewService(store)

	draft, err := svc.Restore(context.Background(), "callao_por_cajas", testIdentity, "Maria", time.Now(),
		[]Line{{Codigo: "A-100", Cantidad: qty(4)}})
	require.NoError(t, err)

	// The old cycle's quantity must not leak into the new count.
	assert.Equal(t, qty(4), draft.Lines[draft.FindLine("A-100")].Cantidad)
}

func TestServiceRestore_UnreadableSnapshotStartsClean(t *testing.T) {
	store := newMemStore()
	store.loadErr = errors.New("corrupt file")
	svc := NewService(store)

	draft, err := svc.Restore(context.Background(), "callao_por_cajas", testIdentity, "Maria", time.Now(), nil)
	require.NoError(t, err)
	assert.Empty(t, draft.Lines)
}

func TestServiceRestore_PersistFailureIsNotFatal(t *testing.T) {
	store := newMemStore()
	store.saveErr = errors.New("disk full")
	svc := NewService(store)

	draft, err := svc.Restore(context.Background(), "callao_por_cajas", testIdentity, "Maria", time.Now(), nil)
	require.NoError(t, err)
	require.NotNil(t, draft)
}

func TestServiceSetLine_NoActiveDraft(t *testing.T) {
	svc := NewService(newMemStore())

	_, err := svc.SetLine(context.Background(), "callao_por_cajas", Line{Codigo: "A-100", Cantidad: qty(1)})
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeNoActiveCycle, appErr.Code)
}

func TestServiceSetLine_PersistsEachEdit(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)
	_, err := svc.Restore(context.Background(), "callao_por_cajas", testIdentity, "Maria", time.Now(), nil)
	require.NoError(t, err)

	_, err = svc.SetLine(context.Background(), "callao_por_cajas", Line{Codigo: "A-100", Cantidad: qty(2)})
	require.NoError(t, err)

	snap := store.snaps["callao_por_cajas"]
	require.Len(t, snap.Lines, 1)
	assert.Equal(t, qty(2), snap.Lines[0].Cantidad)
}

func TestServiceMergeLines_MarksImported(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)
	_, err := svc.Restore(context.Background(), "callao_por_cajas", testIdentity, "Maria", time.Now(), nil)
	require.NoError(t, err)

	draft, err := svc.MergeLines(context.Background(), "callao_por_cajas", []Line{
		{Codigo: "A-100", Cantidad: qty(10)},
		{Codigo: "B-200", Cantidad: qty(20)},
	})
	require.NoError(t, err)

	require.Len(t, draft.Lines, 2)
	for _, l := range draft.Lines {
		assert.True(t, l.Imported)
	}
}

func TestServiceClear(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)
	_, err := svc.Restore(context.Background(), "callao_por_cajas", testIdentity, "Maria", time.Now(), nil)
	require.NoError(t, err)

	require.NoError(t, svc.Clear(context.Background(), "callao_por_cajas"))

	_, ok := svc.Get("callao_por_cajas")
	assert.False(t, ok)
	_, found := store.snaps["callao_por_cajas"]
	assert.False(t, found)
}
