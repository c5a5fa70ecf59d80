package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"inventario/internal/core/types"
	"inventario/internal/domain/count"
)

func TestResolveInicio_SameCycleKeepsCurrent(t *testing.T) {
	current := time.Date(2026, 3, 10, 9, 0, 0, 0, types.LimaLocation())
	now := time.Now()

	got := ResolveInicio(current, 5, 5, "10/03/2026 11:30:00", nil, now)

	assert.Equal(t, current, got)
}

func TestResolveInicio_NewCycleTakesServerFecha(t *testing.T) {
	current := time.Date(2026, 3, 10, 9, 0, 0, 0, types.LimaLocation())
	now := time.Now()

	got := ResolveInicio(current, 5, 6, "11/03/2026 08:15:00", nil, now)

	want := time.Date(2026, 3, 11, 8, 15, 0, 0, types.LimaLocation())
	assert.True(t, got.Equal(want), "got %s", got)
}

func TestResolveInicio_ZeroDateFallsThrough(t *testing.T) {
	now := time.Date(2026, 3, 11, 10, 0, 0, 0, types.LimaLocation())

	got := ResolveInicio(time.Time{}, 0, 6, "0000-00-00 00:00:00", nil, now)

	assert.Equal(t, now, got)
}

func TestResolveInicio_EarliestInProgressRecord(t *testing.T) {
	now := time.Now()
	records := []count.Record{
		{
			Identity:    count.Identity{Numero: 6, Tipo: count.TypeCajas, Tienda: "TIENDA 3006"},
			Estado:      count.EstadoEnProceso,
			FechaInicio: "11/03/2026 09:30:00",
		},
		{
			Identity:    count.Identity{Numero: 6, Tipo: count.TypeStand, Tienda: "TIENDA 3006"},
			Estado:      count.EstadoEnProceso,
			FechaInicio: "11/03/2026 08:45:00",
		},
		{
			// Finalized records do not anchor the cycle start.
			Identity:    count.Identity{Numero: 6, Tipo: count.TypeCajas, Tienda: "TIENDA 3131"},
			Estado:      count.EstadoFinalizado,
			FechaInicio: "11/03/2026 07:00:00",
		},
		{
			// Neither do records from another cycle.
			Identity:    count.Identity{Numero: 5, Tipo: count.TypeCajas, Tienda: "TIENDA 3133"},
			Estado:      count.EstadoEnProceso,
			FechaInicio: "01/03/2026 07:00:00",
		},
	}

	got := ResolveInicio(time.Time{}, 0, 6, "", records, now)

	want := time.Date(2026, 3, 11, 8, 45, 0, 0, types.LimaLocation())
	assert.True(t, got.Equal(want), "got %s", got)
}

func TestResolveInicio_FallsBackToNow(t *testing.T) {
	now := time.Date(2026, 3, 11, 12, 0, 0, 0, types.LimaLocation())

	got := ResolveInicio(time.Time{}, 0, 6, "", nil, now)

	assert.Equal(t, now, got)
}

func TestStateInicioDisplay(t *testing.T) {
	assert.Empty(t, State{}.InicioDisplay())

	s := State{Inicio: time.Date(2026, 3, 11, 8, 45, 3, 0, types.LimaLocation())}
	assert.Equal(t, "11/03/2026 08:45:03", s.InicioDisplay())
}
