// Package consolidado builds the cycle-wide reconciliation report that
// merges every count of an inventory number into one table.
package consolidado

import (
	"context"
	"sort"

	"inventario/internal/core/types"
	"inventario/internal/domain/count"
	"inventario/pkg/logger"
)

// Gateway fetches the line detail of one finalized count.
type Gateway interface {
	FetchDetalle(ctx context.Context, id count.Identity) (fisica []count.Line, sistema []count.Line, err error)
}

// Entry is the consolidated row for one count.
type Entry struct {
	count.Identity
	Registrante  string          `json:"registrado_por,omitempty"`
	Estado       count.Estado    `json:"estado"`
	FechaInicio  string          `json:"fecha_inicio,omitempty"`
	FechaFin     string          `json:"fecha_fin,omitempty"`
	TotalFisica  types.Quantity  `json:"total_fisica"`
	TotalSistema types.Quantity  `json:"total_sistema"`
	Diferencia   types.Quantity  `json:"diferencia"`
	Resultado    count.Resultado `json:"resultado"`
	Productos    int             `json:"productos"`
}

// Report is the consolidated view of one cycle.
type Report struct {
	Numero        int            `json:"numero_inventario"`
	Entries       []Entry        `json:"entries"`
	TotalFisica   types.Quantity `json:"total_fisica"`
	TotalSistema  types.Quantity `json:"total_sistema"`
	TotalSobrante types.Quantity `json:"total_sobrante"`
	TotalFaltante types.Quantity `json:"total_faltante"`
	Finalizados   int            `json:"finalizados"`
	EnProceso     int            `json:"en_proceso"`
}

// Service assembles consolidated reports.
type Service struct {
	gw Gateway
}

// NewService creates the consolidado service.
func NewService(gw Gateway) *Service {
	return &Service{gw: gw}
}

// Build assembles the consolidated report for one cycle from the latest
// poll records. A count whose detail cannot be fetched still appears in the
// report with zero totals; one broken count must not blank the whole table.
func (s *Service) Build(ctx context.Context, numero int, records []count.Record) (Report, error) {
	report := Report{Numero: numero, Entries: make([]Entry, 0, len(records))}

	for _, r := range records {
		if r.Numero != numero {
			continue
		}

		entry := Entry{
			Identity:    r.Identity,
			Registrante: r.Registrante,
			Estado:      r.Estado,
			FechaInicio: r.FechaInicio,
			FechaFin:    r.FechaFin,
			Resultado:   count.ResultadoConforme,
		}

		switch r.Estado {
		case count.EstadoFinalizado:
			report.Finalizados++
		default:
			report.EnProceso++
		}

		fisica, sistema, err := s.gw.FetchDetalle(ctx, r.Identity)
		if err != nil {
			logger.Warn(ctx, "consolidado detail fetch failed",
				"count", r.Identity.String(), "error", err)
		} else {
			summary := count.Compare(fisica, sistema)
			entry.TotalFisica = summary.TotalFisica
			entry.TotalSistema = summary.TotalSistema
			entry.Productos = len(summary.Rows)
		}
		entry.Diferencia = entry.TotalFisica.Sub(entry.TotalSistema)
		entry.Resultado = count.ClassifyDiff(entry.Diferencia)

		report.TotalFisica += entry.TotalFisica
		report.TotalSistema += entry.TotalSistema
		if entry.Diferencia.IsPositive() {
			report.TotalSobrante += entry.Diferencia
		} else if entry.Diferencia.IsNegative() {
			report.TotalFaltante += entry.Diferencia.Abs()
		}

		report.Entries = append(report.Entries, entry)
	}

	sort.Slice(report.Entries, func(i, j int) bool {
		a, b := report.Entries[i], report.Entries[j]
		if a.Tienda != b.Tienda {
			return a.Tienda < b.Tienda
		}
		return a.Tipo < b.Tipo
	})

	return report, nil
}
