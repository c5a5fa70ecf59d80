// Package catalog provides the master product dictionary and the fixed
// warehouse directory the counting dashboard operates on.
package catalog

import (
	"strings"

	"inventario/internal/core/types"
)

// Measurement units accepted on count lines.
const (
	UnitUnidad  = "UNIDAD"
	UnitDocenas = "DOCENAS"
	UnitDecenas = "DECENAS"
)

// Units returns the selectable measurement units, default first.
func Units() []string {
	return []string{UnitUnidad, UnitDocenas, UnitDecenas}
}

// NormalizeUnit maps a free-form unit string to a known unit.
// Unknown or empty input falls back to UNIDAD.
func NormalizeUnit(s string) string {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case UnitDocenas:
		return UnitDocenas
	case UnitDecenas:
		return UnitDecenas
	default:
		return UnitUnidad
	}
}

// NormalizeCode canonicalizes a product code for matching across the master
// list, drafts and spreadsheet imports.
func NormalizeCode(s string) string {
	return strings.TrimSpace(s)
}

// Product is one entry of the master product list served by the inventory
// server for the reference count.
type Product struct {
	DetalleID   int            `json:"detalle_id"`
	Codigo      string         `json:"codigo"`
	Descripcion string         `json:"descripcion"`
	Unidad      string         `json:"unidad_medida"`
	Cantidad    types.Quantity `json:"cantidad"`
}

// Index builds a lookup from normalized code to product.
// Later duplicates win, matching how the server emits revisions last.
func Index(products []Product) map[string]Product {
	idx := make(map[string]Product, len(products))
	for _, p := range products {
		code := NormalizeCode(p.Codigo)
		if code == "" {
			continue
		}
		idx[code] = p
	}
	return idx
}
