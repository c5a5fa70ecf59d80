package dto

import "inventario/internal/core/types"

// VerificationItemRequest is one verified product measurement.
type VerificationItemRequest struct {
	Codigo      string         `json:"codigo" binding:"required"`
	Descripcion string         `json:"descripcion"`
	Existencia  types.Quantity `json:"existencia"`
	Fisico      types.Quantity `json:"cantidadFisica"`
	Sistema     types.Quantity `json:"cantidadSistema"`
}

// VerificationRequest registers a verification acta for one count.
type VerificationRequest struct {
	Numero         int                       `json:"numeroInventario" binding:"required,min=1"`
	TipoConteo     string                    `json:"tipoConteo" binding:"required"`
	Tienda         string                    `json:"tienda" binding:"required"`
	// NumeroActa is optional; an empty value gets the next ACTA number.
	NumeroActa     string                    `json:"numeroActa"`
	FechaInicio    string                    `json:"fechaInicio"`
	FechaFin       string                    `json:"fechaFin"`
	ComprasTotales string                    `json:"comprasTotales"`
	VentasTotales  string                    `json:"ventasTotales"`
	Items          []VerificationItemRequest `json:"items" binding:"required,min=1"`
}
