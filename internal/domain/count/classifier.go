package count

import (
	"sort"

	"inventario/internal/core/types"
	"inventario/internal/domain/catalog"
)

// Resultado classifies the physical-vs-system difference of one product.
type Resultado string

const (
	ResultadoConforme Resultado = "CONFORME"
	ResultadoSobrante Resultado = "SOBRANTE"
	ResultadoFaltante Resultado = "FALTANTE"
)

// ClassifyDiff maps a signed difference to its Resultado.
func ClassifyDiff(diff types.Quantity) Resultado {
	switch {
	case diff.IsPositive():
		return ResultadoSobrante
	case diff.IsNegative():
		return ResultadoFaltante
	default:
		return ResultadoConforme
	}
}

// ComparisonRow is one product compared between the physical count and the
// system stock. A product missing on either side contributes zero for that
// side.
type ComparisonRow struct {
	Codigo       string         `json:"codigo"`
	Descripcion  string         `json:"descripcion"`
	Unidad       string         `json:"unidad_medida"`
	Fisica       types.Quantity `json:"cantidad_fisica"`
	Sistema      types.Quantity `json:"cantidad_sistema"`
	Diferencia   types.Quantity `json:"diferencia"`
	Resultado    Resultado      `json:"resultado"`
	Motivo       string         `json:"motivo,omitempty"`
	ErrorDe      string         `json:"error_de,omitempty"`
	Observacione string         `json:"observaciones,omitempty"`
}

// ComparisonSummary aggregates a comparison.
type ComparisonSummary struct {
	Rows          []ComparisonRow `json:"rows"`
	Conformes     int             `json:"conformes"`
	Sobrantes     int             `json:"sobrantes"`
	Faltantes     int             `json:"faltantes"`
	TotalFisica   types.Quantity  `json:"total_fisica"`
	TotalSistema  types.Quantity  `json:"total_sistema"`
	TotalSobrante types.Quantity  `json:"total_sobrante"`
	TotalFaltante types.Quantity  `json:"total_faltante"`
}

// Compare joins the physical lines against the system lines by normalized
// code and classifies every product present on either side. Rows come back
// ordered by code so repeated polls render stably.
func Compare(fisica, sistema []Line) ComparisonSummary {
	type side struct {
		line Line
		has  bool
	}
	merged := make(map[string]*struct{ f, s side })

	for _, l := range fisica {
		code := catalog.NormalizeCode(l.Codigo)
		if code == "" {
			continue
		}
		e := merged[code]
		if e == nil {
			e = &struct{ f, s side }{}
			merged[code] = e
		}
		e.f = side{line: l, has: true}
	}
	for _, l := range sistema {
		code := catalog.NormalizeCode(l.Codigo)
		if code == "" {
			continue
		}
		e := merged[code]
		if e == nil {
			e = &struct{ f, s side }{}
			merged[code] = e
		}
		e.s = side{line: l, has: true}
	}

	codes := make([]string, 0, len(merged))
	for code := range merged {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	summary := ComparisonSummary{Rows: make([]ComparisonRow, 0, len(codes))}
	for _, code := range codes {
		e := merged[code]

		row := ComparisonRow{Codigo: code}
		if e.f.has {
			row.Fisica = e.f.line.Cantidad
			row.Descripcion = e.f.line.Descripcion
			row.Unidad = e.f.line.Unidad
		}
		if e.s.has {
			row.Sistema = e.s.line.Cantidad
			if row.Descripcion == "" {
				row.Descripcion = e.s.line.Descripcion
			}
			if row.Unidad == "" {
				row.Unidad = e.s.line.Unidad
			}
		}
		if row.Unidad == "" {
			row.Unidad = catalog.UnitUnidad
		}

		row.Diferencia = row.Fisica.Sub(row.Sistema)
		row.Resultado = ClassifyDiff(row.Diferencia)

		switch row.Resultado {
		case ResultadoConforme:
			summary.Conformes++
		case ResultadoSobrante:
			summary.Sobrantes++
			summary.TotalSobrante += row.Diferencia
		case ResultadoFaltante:
			summary.Faltantes++
			summary.TotalFaltante += row.Diferencia.Abs()
		}
		summary.TotalFisica += row.Fisica
		summary.TotalSistema += row.Sistema

		summary.Rows = append(summary.Rows, row)
	}

	return summary
}
