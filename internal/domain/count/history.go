package count

import (
	"context"

	"inventario/internal/core/apperror"
	"inventario/internal/core/types"
	"inventario/pkg/logger"
)

// Side names which quantity of a comparison row is being corrected.
type Side string

const (
	SideFisica  Side = "fisica"
	SideSistema Side = "sistema"
)

// Edit is a supervisor correction applied to a finalized count line.
type Edit struct {
	Identity      Identity       `json:"identity"`
	Codigo        string         `json:"codigo"`
	Side          Side           `json:"side"`
	Cantidad      types.Quantity `json:"cantidad"`
	Motivo        string         `json:"motivo"`
	ErrorDe       string         `json:"error_de,omitempty"`
	Observaciones string         `json:"observaciones,omitempty"`
	Editor        string         `json:"editado_por"`
}

// Validate checks an edit before submission.
func (e *Edit) Validate() error {
	if err := e.Identity.Validate(); err != nil {
		return err
	}
	if e.Codigo == "" {
		return apperror.NewValidation("código de producto requerido")
	}
	if e.Side != SideFisica && e.Side != SideSistema {
		return apperror.NewValidation("lado de edición inválido").
			WithDetail("side", string(e.Side))
	}
	if e.Cantidad.IsNegative() {
		return apperror.NewValidation("la cantidad no puede ser negativa")
	}
	if e.Motivo == "" {
		return apperror.NewValidation("motivo de edición requerido")
	}
	if e.Editor == "" {
		return apperror.NewValidation("nombre del editor requerido")
	}
	return nil
}

// ActionRecord is one audit line of the cycle's action history.
type ActionRecord struct {
	Numero        int    `json:"numero_inventario"`
	Accion        string `json:"accion"`
	Codigo        string `json:"codigo,omitempty"`
	Detalle       string `json:"detalle,omitempty"`
	RegistradoPor string `json:"registrado_por"`
	Fecha         string `json:"fecha"`
}

// EditGateway is the inventory server surface for corrections and audit.
type EditGateway interface {
	EditQuantity(ctx context.Context, edit Edit) error
	FetchHistory(ctx context.Context, numero int) ([]ActionRecord, error)
	UploadSistema(ctx context.Context, almacen string, filename string, data []byte) error
	GenerateComparison(ctx context.Context, id Identity) error
}

// Editor applies supervisor corrections to finalized counts and reads the
// action history. Every applied edit lands in the server-side audit trail.
type Editor struct {
	gw EditGateway
}

// NewEditor creates an Editor over the given gateway.
func NewEditor(gw EditGateway) *Editor {
	return &Editor{gw: gw}
}

// Apply validates and submits one correction.
func (e *Editor) Apply(ctx context.Context, edit Edit) error {
	if err := edit.Validate(); err != nil {
		return err
	}
	if err := e.gw.EditQuantity(ctx, edit); err != nil {
		return err
	}
	logger.Info(ctx, "comparison quantity corrected",
		"count", edit.Identity.String(),
		"codigo", edit.Codigo,
		"side", string(edit.Side),
		"editor", edit.Editor)
	return nil
}

// History returns the audit trail for a cycle.
func (e *Editor) History(ctx context.Context, numero int) ([]ActionRecord, error) {
	if numero <= 0 {
		return nil, apperror.NewValidation("número de inventario requerido")
	}
	return e.gw.FetchHistory(ctx, numero)
}

// UploadSistema relays a system-stock spreadsheet to the warehouse's
// comparison table.
func (e *Editor) UploadSistema(ctx context.Context, almacen string, filename string, data []byte) error {
	if almacen == "" {
		return apperror.NewValidation("almacén requerido")
	}
	if len(data) == 0 {
		return apperror.NewValidation("archivo de sistema requerido")
	}
	if err := e.gw.UploadSistema(ctx, almacen, filename, data); err != nil {
		return err
	}
	logger.Info(ctx, "system stock uploaded",
		"almacen", almacen, "filename", filename, "bytes", len(data))
	return nil
}

// Generate asks the server to rebuild the comparison table of one count.
func (e *Editor) Generate(ctx context.Context, id Identity) error {
	if err := id.Validate(); err != nil {
		return err
	}
	return e.gw.GenerateComparison(ctx, id)
}
