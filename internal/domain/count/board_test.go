package count

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func record(numero int, tipo CountType, tienda string, estado Estado) Record {
	return Record{
		Identity: Identity{Numero: numero, Tipo: tipo, Tienda: tienda},
		Estado:   estado,
	}
}

func TestBoard_Apply(t *testing.T) {
	b := NewBoard()

	b.Apply(3, []Record{
		record(3, TypeCajas, "TIENDA 3006", EstadoEnProceso),
		record(3, TypeStand, "TIENDA 3006", EstadoFinalizado),
	})

	assert.Equal(t, StatusEnProceso, b.Cell("TIENDA 3006", TypeCajas))
	assert.Equal(t, StatusCompletado, b.Cell("TIENDA 3006", TypeStand))
	assert.Equal(t, StatusPendiente, b.Cell("TIENDA 3131", TypeCajas))
}

func TestBoard_CellsNeverRegress(t *testing.T) {
	b := NewBoard()

	b.Apply(3, []Record{record(3, TypeCajas, "TIENDA 3006", EstadoFinalizado)})
	// A flaky poll comes back without the finalized record, then with it
	// marked en_proceso again.
	b.Apply(3, nil)
	b.Apply(3, []Record{record(3, TypeCajas, "TIENDA 3006", EstadoEnProceso)})

	assert.Equal(t, StatusCompletado, b.Cell("TIENDA 3006", TypeCajas))
}

func TestBoard_NewCycleResets(t *testing.T) {
	b := NewBoard()

	b.Apply(3, []Record{record(3, TypeCajas, "TIENDA 3006", EstadoFinalizado)})
	b.Apply(4, []Record{record(4, TypeCajas, "TIENDA 3131", EstadoEnProceso)})

	assert.Equal(t, StatusPendiente, b.Cell("TIENDA 3006", TypeCajas))
	assert.Equal(t, StatusEnProceso, b.Cell("TIENDA 3131", TypeCajas))
	assert.Equal(t, 4, b.View().Numero)
}

func TestBoard_IgnoresOtherCycles(t *testing.T) {
	b := NewBoard()

	b.Apply(5, []Record{record(4, TypeCajas, "TIENDA 3006", EstadoFinalizado)})

	assert.Equal(t, StatusPendiente, b.Cell("TIENDA 3006", TypeCajas))
}

func TestBoard_View(t *testing.T) {
	b := NewBoard()

	b.Apply(2, []Record{
		record(2, TypeCajas, "TIENDA 3006", EstadoFinalizado),
		record(2, TypeStand, "TIENDA 3006", EstadoFinalizado),
		record(2, TypeCajas, "TIENDA 3131", EstadoFinalizado),
	})

	view := b.View()
	assert.Equal(t, 2, view.Numero)
	assert.False(t, view.AllDone)
	assert.Len(t, view.Stores, 5)

	byTienda := make(map[string]StoreRow)
	for _, row := range view.Stores {
		byTienda[row.Tienda] = row
	}

	assert.True(t, byTienda["TIENDA 3006"].Done)
	// Stand still pending, store not done.
	assert.False(t, byTienda["TIENDA 3131"].Done)
	assert.Equal(t, StatusCompletado, byTienda["TIENDA 3131"].Cajas)
	assert.Equal(t, StatusPendiente, byTienda["TIENDA 3131"].Stand)
}

func TestBoard_AllDone(t *testing.T) {
	b := NewBoard()

	var records []Record
	for _, tienda := range []string{"TIENDA 3006", "TIENDA 3006 B", "TIENDA 3131", "TIENDA 3133", "TIENDA 412-A"} {
		records = append(records,
			record(9, TypeCajas, tienda, EstadoFinalizado),
			record(9, TypeStand, tienda, EstadoFinalizado),
		)
	}
	b.Apply(9, records)

	assert.True(t, b.View().AllDone)
}
