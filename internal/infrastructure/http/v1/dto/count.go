package dto

import "inventario/internal/core/types"

// OpenCountRequest starts or resumes a count for the active cycle.
type OpenCountRequest struct {
	TipoConteo  string `json:"tipoConteo" binding:"required"`
	Tienda      string `json:"tienda" binding:"required"`
	Registrante string `json:"registradoPor" binding:"required"`
}

// CountLineRequest upserts one counted product.
type CountLineRequest struct {
	Codigo      string         `json:"codigo" binding:"required"`
	Descripcion string         `json:"descripcion"`
	Unidad      string         `json:"unidadMedida"`
	Cantidad    types.Quantity `json:"cantidadConteo"`
	DetalleID   int            `json:"detalleId"`
}

// FinalizeCountRequest closes the slot's active count.
type FinalizeCountRequest struct {
	TipoConteo  string `json:"tipoConteo" binding:"required"`
	Registrante string `json:"registradoPor"`
}

// ImportConfirmRequest merges a parsed preview into the draft.
type ImportConfirmRequest struct {
	TipoConteo string             `json:"tipoConteo" binding:"required"`
	Lines      []CountLineRequest `json:"lines" binding:"required,min=1"`
}
