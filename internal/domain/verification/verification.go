// Package verification covers the post-count verification pass: a third
// measurement taken for disputed products, classified against both the
// physical count and the system stock.
package verification

import (
	"context"
	"time"

	"inventario/internal/core/apperror"
	"inventario/internal/core/types"
	"inventario/internal/domain/count"
	"inventario/pkg/logger"
)

// Veredicto is the outcome of verifying one disputed product.
type Veredicto string

const (
	VeredictoConforme      Veredicto = "CONFORME"
	VeredictoErrorSistema  Veredicto = "ERROR DE SISTEMA"
	VeredictoErrorLogistic Veredicto = "ERROR DE LOGÍSTICA"
	VeredictoNuevoConteo   Veredicto = "REALIZAR NUEVO CONTEO"
)

// Classify judges a verification measurement. The checks are ordered: full
// agreement first, then the recount siding with the physical count (the
// system record is wrong), then the recount siding with the system (the
// count was wrong), and anything else sends the product to a fresh count.
func Classify(existencia, fisico, sistema types.Quantity) Veredicto {
	switch {
	case existencia == fisico && existencia == sistema:
		return VeredictoConforme
	case existencia == fisico:
		return VeredictoErrorSistema
	case existencia == sistema:
		return VeredictoErrorLogistic
	default:
		return VeredictoNuevoConteo
	}
}

// Acta is a signed verification record for one count.
type Acta struct {
	Identity       count.Identity `json:"identity"`
	NumeroActa     string         `json:"numero_acta"`
	RegistradoPor  string         `json:"registrado_por"`
	FechaInicio    string         `json:"fecha_inicio"`
	FechaFin       string         `json:"fecha_fin"`
	ComprasTotales types.Money    `json:"compras_totales"`
	VentasTotales  types.Money    `json:"ventas_totales"`
	Items          []Item         `json:"items"`
}

// Item is one verified product inside an acta.
type Item struct {
	Codigo      string         `json:"codigo"`
	Descripcion string         `json:"descripcion,omitempty"`
	Existencia  types.Quantity `json:"existencia"`
	Fisico      types.Quantity `json:"cantidad_fisica"`
	Sistema     types.Quantity `json:"cantidad_sistema"`
	Veredicto   Veredicto      `json:"veredicto"`
}

// Validate checks an acta before submission.
func (a *Acta) Validate() error {
	if err := a.Identity.Validate(); err != nil {
		return err
	}
	if a.NumeroActa == "" {
		return apperror.NewValidation("número de acta requerido")
	}
	if a.RegistradoPor == "" {
		return apperror.NewValidation("nombre de registrador requerido")
	}
	if len(a.Items) == 0 {
		return apperror.NewValidation("el acta no tiene productos verificados")
	}
	return nil
}

// Gateway is the inventory server surface for verification records.
type Gateway interface {
	RegisterVerification(ctx context.Context, acta Acta) error
	ListVerifications(ctx context.Context, numero int) ([]Acta, error)
}

// Numerator issues sequential acta numbers.
type Numerator interface {
	Next(prefix string, now time.Time) (string, error)
}

// Service classifies and submits verification actas.
type Service struct {
	gw   Gateway
	nums Numerator
}

// NewService creates the verification service. nums may be nil, in which
// case every acta must come in already numbered.
func NewService(gw Gateway, nums Numerator) *Service {
	return &Service{gw: gw, nums: nums}
}

// Submit classifies every item server-side and registers the acta.
// Client-sent verdicts are ignored and recomputed; an acta without a
// number gets the next one in the ACTA sequence.
func (s *Service) Submit(ctx context.Context, acta Acta) (Acta, error) {
	if acta.NumeroActa == "" && s.nums != nil {
		num, err := s.nums.Next("ACTA", time.Now())
		if err != nil {
			return Acta{}, apperror.NewInternal(err)
		}
		acta.NumeroActa = num
	}
	if err := acta.Validate(); err != nil {
		return Acta{}, err
	}
	for i := range acta.Items {
		acta.Items[i].Veredicto = Classify(acta.Items[i].Existencia, acta.Items[i].Fisico, acta.Items[i].Sistema)
	}
	if err := s.gw.RegisterVerification(ctx, acta); err != nil {
		return Acta{}, err
	}
	logger.Info(ctx, "verification acta registered",
		"acta", acta.NumeroActa,
		"count", acta.Identity.String(),
		"items", len(acta.Items))
	return acta, nil
}

// List returns the actas registered for a cycle.
func (s *Service) List(ctx context.Context, numero int) ([]Acta, error) {
	if numero <= 0 {
		return nil, apperror.NewValidation("número de inventario requerido")
	}
	return s.gw.ListVerifications(ctx, numero)
}
