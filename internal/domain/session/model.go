// Package session manages the counting cycle a warehouse dashboard is
// attached to: which inventory number is active, who is counting, and when
// the cycle started.
package session

import (
	"time"

	"inventario/internal/core/types"
	"inventario/internal/domain/count"
)

// State is the cycle state for one dashboard slot.
type State struct {
	Numero      int             `json:"numero_inventario"`
	Tienda      string          `json:"tienda"`
	Tipo        count.CountType `json:"tipo_conteo,omitempty"`
	Registrante string          `json:"registrado_por,omitempty"`
	Inicio      time.Time       `json:"inicio"`
	Active      bool            `json:"active"`
}

// InicioDisplay renders the cycle start in warehouse local time.
func (s State) InicioDisplay() string {
	if s.Inicio.IsZero() {
		return ""
	}
	return types.FormatTimestamp(s.Inicio)
}

// Poll is one synchronizer observation of the server state.
type Poll struct {
	Numero      int
	FechaInicio string
	Records     []count.Record
}

// ResolveInicio decides the cycle start instant shown to operators.
// Priority: an already resolved instant for the same cycle stays put, then a
// usable server-sent start, then the earliest in-progress record of the
// cycle, then the current wall clock. The result never flickers between
// polls within one cycle.
func ResolveInicio(current time.Time, currentNumero, newNumero int, serverFecha string, records []count.Record, now time.Time) time.Time {
	if currentNumero == newNumero && !current.IsZero() {
		return current
	}
	if t, ok := types.ParseServerTimestamp(serverFecha); ok {
		return t
	}
	var earliest time.Time
	for _, r := range records {
		if r.Numero != newNumero || r.Estado != count.EstadoEnProceso {
			continue
		}
		t, ok := types.ParseServerTimestamp(r.FechaInicio)
		if !ok {
			continue
		}
		if earliest.IsZero() || t.Before(earliest) {
			earliest = t
		}
	}
	if !earliest.IsZero() {
		return earliest
	}
	return now
}
