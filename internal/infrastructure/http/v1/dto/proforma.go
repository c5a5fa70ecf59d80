package dto

import "inventario/internal/core/types"

// ProformaItemRequest is one billed product line.
type ProformaItemRequest struct {
	Codigo      string         `json:"codigo" binding:"required"`
	Descripcion string         `json:"descripcion"`
	Unidad      string         `json:"unidadMedida"`
	Cantidad    types.Quantity `json:"cantidad"`
	Precio      string         `json:"precioUnitario" binding:"required"`
}

// ProformaRequest registers a proforma.
type ProformaRequest struct {
	Cliente string                `json:"cliente" binding:"required"`
	Items   []ProformaItemRequest `json:"items" binding:"required,min=1"`
}
