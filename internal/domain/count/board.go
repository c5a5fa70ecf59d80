package count

import (
	"sync"

	"inventario/internal/domain/catalog"
)

// Status is a cell state on the store status board.
type Status string

const (
	StatusPendiente  Status = "pendiente"
	StatusEnProceso  Status = "en_proceso"
	StatusCompletado Status = "completado"
)

func statusRank(s Status) int {
	switch s {
	case StatusEnProceso:
		return 1
	case StatusCompletado:
		return 2
	default:
		return 0
	}
}

type cellKey struct {
	Tienda string
	Tipo   CountType
}

// Board tracks per-store, per-mode progress within a counting cycle.
// Cell states only move forward; a glitchy poll that momentarily drops a
// finalized count cannot regress a cell. A new cycle number resets the board.
type Board struct {
	mu     sync.RWMutex
	numero int
	cells  map[cellKey]Status
}

// NewBoard creates an empty board.
func NewBoard() *Board {
	return &Board{cells: make(map[cellKey]Status)}
}

// Apply folds the latest server records into the board for the given cycle.
func (b *Board) Apply(numero int, records []Record) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if numero != b.numero {
		b.numero = numero
		b.cells = make(map[cellKey]Status)
	}

	for _, r := range records {
		if r.Numero != numero {
			continue
		}
		key := cellKey{Tienda: r.Tienda, Tipo: r.Tipo}
		next := StatusEnProceso
		if r.Estado == EstadoFinalizado {
			next = StatusCompletado
		}
		if statusRank(next) > statusRank(b.cells[key]) {
			b.cells[key] = next
		}
	}
}

// Cell returns the current state for one store and mode.
func (b *Board) Cell(tienda string, tipo CountType) Status {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if s, ok := b.cells[cellKey{Tienda: tienda, Tipo: tipo}]; ok {
		return s
	}
	return StatusPendiente
}

// StoreRow is the board line for one store.
type StoreRow struct {
	Tienda string `json:"tienda"`
	Cajas  Status `json:"por_cajas"`
	Stand  Status `json:"por_stand"`
	Done   bool   `json:"done"`
}

// BoardView is the rendered status board.
type BoardView struct {
	Numero  int        `json:"numero_inventario"`
	Stores  []StoreRow `json:"stores"`
	AllDone bool       `json:"all_done"`
}

// View renders the board over the fixed store directory. A store is done
// only when both counting modes are completado.
func (b *Board) View() BoardView {
	b.mu.RLock()
	defer b.mu.RUnlock()

	view := BoardView{Numero: b.numero, AllDone: true}
	for _, tienda := range catalog.Tiendas {
		row := StoreRow{
			Tienda: tienda,
			Cajas:  b.cellLocked(tienda, TypeCajas),
			Stand:  b.cellLocked(tienda, TypeStand),
		}
		row.Done = row.Cajas == StatusCompletado && row.Stand == StatusCompletado
		if !row.Done {
			view.AllDone = false
		}
		view.Stores = append(view.Stores, row)
	}
	return view
}

func (b *Board) cellLocked(tienda string, tipo CountType) Status {
	if s, ok := b.cells[cellKey{Tienda: tienda, Tipo: tipo}]; ok {
		return s
	}
	return StatusPendiente
}
