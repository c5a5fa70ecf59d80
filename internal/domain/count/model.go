// Package count provides the physical count draft, its reconciliation
// classifier, the collision detector and the store status board.
package count

import (
	"fmt"
	"time"

	"inventario/internal/core/apperror"
	"inventario/internal/core/types"
	"inventario/internal/domain/catalog"
)

// CountType distinguishes the two counting modes run per store.
type CountType string

const (
	TypeCajas CountType = "por_cajas"
	TypeStand CountType = "por_stand"
)

// ParseCountType validates a wire value.
func ParseCountType(s string) (CountType, error) {
	switch CountType(s) {
	case TypeCajas, TypeStand:
		return CountType(s), nil
	}
	return "", apperror.NewValidation("tipo de conteo inválido").
		WithDetail("tipo_conteo", s)
}

// Estado is the lifecycle state of a count on the inventory server.
type Estado string

const (
	EstadoEnProceso  Estado = "en_proceso"
	EstadoFinalizado Estado = "finalizado"
)

// Identity names one count uniquely within a cycle.
type Identity struct {
	Numero int       `json:"numero_inventario"`
	Tipo   CountType `json:"tipo_conteo"`
	Tienda string    `json:"tienda"`
}

func (id Identity) String() string {
	return fmt.Sprintf("#%d %s %s", id.Numero, id.Tipo, id.Tienda)
}

// Validate checks the identity is complete.
func (id Identity) Validate() error {
	if id.Numero <= 0 {
		return apperror.NewValidation("número de inventario requerido")
	}
	if _, err := ParseCountType(string(id.Tipo)); err != nil {
		return err
	}
	if id.Tienda == "" {
		return apperror.NewValidation("tienda requerida")
	}
	return nil
}

// Line is one counted product inside a draft.
type Line struct {
	DetalleID   int            `json:"detalle_id,omitempty"`
	Codigo      string         `json:"codigo"`
	Descripcion string         `json:"descripcion,omitempty"`
	Unidad      string         `json:"unidad_medida"`
	Cantidad    types.Quantity `json:"cantidad_conteo"`
	Imported    bool           `json:"importado,omitempty"`
}

// Draft is the in-flight physical count an operator is editing, before it is
// finalized on the inventory server.
type Draft struct {
	Identity    Identity  `json:"identity"`
	Registrante string    `json:"registrado_por"`
	Inicio      time.Time `json:"inicio"`
	Lines       []Line    `json:"lines"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewDraft creates an empty draft for the given count identity.
func NewDraft(identity Identity, registrante string, inicio time.Time) *Draft {
	return &Draft{
		Identity:    identity,
		Registrante: registrante,
		Inicio:      inicio,
		Lines:       make([]Line, 0),
		UpdatedAt:   time.Now(),
	}
}

// FindLine returns the index of the line with the given code, or -1.
func (d *Draft) FindLine(codigo string) int {
	code := catalog.NormalizeCode(codigo)
	for i := range d.Lines {
		if catalog.NormalizeCode(d.Lines[i].Codigo) == code {
			return i
		}
	}
	return -1
}

// SetLine upserts a counted line. A repeated code replaces the previous
// quantity rather than accumulating.
func (d *Draft) SetLine(line Line) error {
	line.Codigo = catalog.NormalizeCode(line.Codigo)
	if line.Codigo == "" {
		return apperror.NewValidation("código de producto requerido")
	}
	if line.Cantidad.IsNegative() {
		return apperror.NewValidation("la cantidad no puede ser negativa").
			WithDetail("codigo", line.Codigo)
	}
	line.Unidad = catalog.NormalizeUnit(line.Unidad)

	if i := d.FindLine(line.Codigo); i >= 0 {
		d.Lines[i] = line
	} else {
		d.Lines = append(d.Lines, line)
	}
	d.UpdatedAt = time.Now()
	return nil
}

// RemoveLine deletes a counted line by code.
func (d *Draft) RemoveLine(codigo string) error {
	i := d.FindLine(codigo)
	if i < 0 {
		return apperror.NewNotFound("línea de conteo", codigo)
	}
	d.Lines = append(d.Lines[:i], d.Lines[i+1:]...)
	d.UpdatedAt = time.Now()
	return nil
}

// TotalQuantity sums all counted quantities.
func (d *Draft) TotalQuantity() types.Quantity {
	var total types.Quantity
	for _, l := range d.Lines {
		total += l.Cantidad
	}
	return total
}

// Snapshot is the reduced persisted form of a draft line set. Only the
// fields needed to rebuild the editing table survive a restart.
type Snapshot struct {
	Identity    Identity       `json:"identity"`
	Registrante string         `json:"registrado_por"`
	Inicio      time.Time      `json:"inicio"`
	Lines       []SnapshotLine `json:"lines"`
	SavedAt     time.Time      `json:"saved_at"`
}

// SnapshotLine is the reduced persisted form of a Line.
type SnapshotLine struct {
	DetalleID int            `json:"detalle_id,omitempty"`
	Codigo    string         `json:"codigo"`
	Unidad    string         `json:"unidad_medida"`
	Cantidad  types.Quantity `json:"cantidad_conteo"`
}

// ToSnapshot reduces the draft to its persisted form.
func (d *Draft) ToSnapshot() Snapshot {
	lines := make([]SnapshotLine, 0, len(d.Lines))
	for _, l := range d.Lines {
		lines = append(lines, SnapshotLine{
			DetalleID: l.DetalleID,
			Codigo:    l.Codigo,
			Unidad:    l.Unidad,
			Cantidad:  l.Cantidad,
		})
	}
	return Snapshot{
		Identity:    d.Identity,
		Registrante: d.Registrante,
		Inicio:      d.Inicio,
		Lines:       lines,
		SavedAt:     time.Now(),
	}
}
