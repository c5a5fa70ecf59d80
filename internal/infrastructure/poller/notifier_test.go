package poller

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventario/internal/domain/count"
)

func finalized(numero int, tipo count.CountType, tienda string) count.Record {
	return count.Record{
		Identity: count.Identity{Numero: numero, Tipo: tipo, Tienda: tienda},
		Estado:   count.EstadoFinalizado,
	}
}

func TestNotifier_FirstObservationSeedsSilently(t *testing.T) {
	n := NewNotifier()

	n.Observe([]count.Record{
		finalized(3, count.TypeCajas, "TIENDA 3006"),
		finalized(3, count.TypeStand, "TIENDA 3006"),
	})

	assert.Empty(t, n.Drain())
}

func TestNotifier_NewFinalizationFiresOnce(t *testing.T) {
	n := NewNotifier()
	n.Observe(nil)

	rec := finalized(3, count.TypeCajas, "TIENDA 3006")
	n.Observe([]count.Record{rec})

	got := n.Drain()
	require.Len(t, got, 1)
	assert.Equal(t, rec, got[0].Record)
	assert.Contains(t, got[0].Message, "Conteo finalizado")
	assert.NotEmpty(t, got[0].ID)

	// The same record observed again stays quiet.
	n.Observe([]count.Record{rec})
	assert.Empty(t, n.Drain())
}

func TestNotifier_InProcessRecordsIgnored(t *testing.T) {
	n := NewNotifier()
	n.Observe(nil)

	n.Observe([]count.Record{{
		Identity: count.Identity{Numero: 3, Tipo: count.TypeCajas, Tienda: "TIENDA 3006"},
		Estado:   count.EstadoEnProceso,
	}})

	assert.Empty(t, n.Drain())
}

func TestNotifier_HiddenPageNeverFiresRetroactively(t *testing.T) {
	n := NewNotifier()
	n.Observe(nil)
	n.SetVisible(false)

	n.Observe([]count.Record{finalized(3, count.TypeCajas, "TIENDA 3006")})
	assert.Empty(t, n.Drain())

	// Navigating back must not replay what happened while hidden.
	n.SetVisible(true)
	n.Observe([]count.Record{finalized(3, count.TypeCajas, "TIENDA 3006")})
	assert.Empty(t, n.Drain())

	// Only genuinely new finalizations fire after that.
	n.Observe([]count.Record{finalized(3, count.TypeStand, "TIENDA 3006")})
	assert.Len(t, n.Drain(), 1)
}

func TestNotifier_Reset(t *testing.T) {
	n := NewNotifier()
	n.Observe(nil)
	n.Observe([]count.Record{finalized(3, count.TypeCajas, "TIENDA 3006")})
	require.Len(t, n.Drain(), 1)

	n.Reset()

	// After a reset the next observation seeds silently again.
	n.Observe([]count.Record{finalized(4, count.TypeCajas, "TIENDA 3006")})
	assert.Empty(t, n.Drain())
}
