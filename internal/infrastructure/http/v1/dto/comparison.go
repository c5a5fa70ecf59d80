package dto

import "inventario/internal/core/types"

// ComparisonRequest names the count to compare.
type ComparisonRequest struct {
	Numero     int    `form:"numeroInventario" binding:"required,min=1"`
	TipoConteo string `form:"tipoConteo" binding:"required"`
	Tienda     string `form:"tienda" binding:"required"`
}

// GenerateComparisonRequest asks for a comparison table rebuild.
type GenerateComparisonRequest struct {
	Numero     int    `json:"numeroInventario" binding:"required,min=1"`
	TipoConteo string `json:"tipoConteo" binding:"required"`
	Tienda     string `json:"tienda" binding:"required"`
}

// EditQuantityRequest corrects one quantity of a finalized count.
type EditQuantityRequest struct {
	Numero        int            `json:"numeroInventario" binding:"required,min=1"`
	TipoConteo    string         `json:"tipoConteo" binding:"required"`
	Tienda        string         `json:"tienda" binding:"required"`
	Codigo        string         `json:"codigo" binding:"required"`
	Side          string         `json:"side" binding:"required,oneof=fisica sistema"`
	Cantidad      types.Quantity `json:"cantidad"`
	Motivo        string         `json:"motivo" binding:"required"`
	ErrorDe       string         `json:"errorDe"`
	Observaciones string         `json:"observaciones"`
}
