// Package proforma handles the proforma documents raised from count
// results: registration, listing, emission and PDF download.
package proforma

import (
	"context"
	"time"

	"inventario/internal/core/apperror"
	"inventario/internal/core/types"
	"inventario/pkg/logger"
)

// Estado is the proforma lifecycle state.
type Estado string

const (
	EstadoRegistrada Estado = "registrada"
	EstadoEmitida    Estado = "emitida"
)

// Item is one billed product line.
type Item struct {
	Codigo      string         `json:"codigo"`
	Descripcion string         `json:"descripcion"`
	Unidad      string         `json:"unidad_medida"`
	Cantidad    types.Quantity `json:"cantidad"`
	Precio      types.Money    `json:"precio_unitario"`
	Importe     types.Money    `json:"importe"`
}

// Proforma is a draft invoice derived from a count.
type Proforma struct {
	ID            int         `json:"proforma_id,omitempty"`
	Numero        string      `json:"numero"`
	Cliente       string      `json:"cliente"`
	RegistradoPor string      `json:"registrado_por"`
	Fecha         string      `json:"fecha"`
	Estado        Estado      `json:"estado"`
	Items         []Item      `json:"items"`
	Total         types.Money `json:"total"`
}

// Validate checks a proforma before registration.
func (p *Proforma) Validate() error {
	if p.Cliente == "" {
		return apperror.NewValidation("cliente requerido")
	}
	if p.RegistradoPor == "" {
		return apperror.NewValidation("nombre de registrador requerido")
	}
	if len(p.Items) == 0 {
		return apperror.NewValidation("la proforma no tiene productos")
	}
	for _, it := range p.Items {
		if it.Codigo == "" {
			return apperror.NewValidation("código de producto requerido")
		}
		if !it.Cantidad.IsPositive() {
			return apperror.NewValidation("la cantidad debe ser mayor a cero").
				WithDetail("codigo", it.Codigo)
		}
		if it.Precio.IsNegative() {
			return apperror.NewValidation("el precio no puede ser negativo").
				WithDetail("codigo", it.Codigo)
		}
	}
	return nil
}

// recalculate derives line amounts and the document total.
func (p *Proforma) recalculate() {
	total := types.Zero()
	for i := range p.Items {
		qty := types.NewMoney(p.Items[i].Cantidad.Float64())
		p.Items[i].Importe = p.Items[i].Precio.Mul(qty).Round(2)
		total = total.Add(p.Items[i].Importe)
	}
	p.Total = total
}

// Gateway is the inventory server surface for proformas.
type Gateway interface {
	RegisterProforma(ctx context.Context, p Proforma) (Proforma, error)
	ListProformas(ctx context.Context) ([]Proforma, error)
	EmitProforma(ctx context.Context, id int) (Proforma, error)
	DownloadProformaPDF(ctx context.Context, id int) ([]byte, error)
}

// Numerator issues sequential proforma numbers.
type Numerator interface {
	Next(prefix string, now time.Time) (string, error)
}

// Service orchestrates the proforma lifecycle.
type Service struct {
	gw   Gateway
	nums Numerator
}

// NewService creates the proforma service. nums may be nil, in which case
// every proforma must come in already numbered.
func NewService(gw Gateway, nums Numerator) *Service {
	return &Service{gw: gw, nums: nums}
}

// Register validates, computes totals server-side and registers the proforma.
// A proforma without a number gets the next one in the PF sequence.
func (s *Service) Register(ctx context.Context, p Proforma) (Proforma, error) {
	if p.Numero == "" && s.nums != nil {
		num, err := s.nums.Next("PF", time.Now())
		if err != nil {
			return Proforma{}, apperror.NewInternal(err)
		}
		p.Numero = num
	}
	if err := p.Validate(); err != nil {
		return Proforma{}, err
	}
	p.Estado = EstadoRegistrada
	if p.Fecha == "" {
		p.Fecha = types.NowTimestamp()
	}
	p.recalculate()

	registered, err := s.gw.RegisterProforma(ctx, p)
	if err != nil {
		return Proforma{}, err
	}
	logger.Info(ctx, "proforma registered",
		"numero", registered.Numero, "cliente", registered.Cliente,
		"items", len(registered.Items), "total", registered.Total.String())
	return registered, nil
}

// List returns all registered proformas.
func (s *Service) List(ctx context.Context) ([]Proforma, error) {
	return s.gw.ListProformas(ctx)
}

// Emit marks a proforma as emitted. Emission is final.
func (s *Service) Emit(ctx context.Context, id int) (Proforma, error) {
	if id <= 0 {
		return Proforma{}, apperror.NewValidation("proforma_id requerido")
	}
	emitted, err := s.gw.EmitProforma(ctx, id)
	if err != nil {
		return Proforma{}, err
	}
	logger.Info(ctx, "proforma emitted", "proforma_id", id, "numero", emitted.Numero)
	return emitted, nil
}

// DownloadPDF fetches the rendered PDF of an emitted proforma.
func (s *Service) DownloadPDF(ctx context.Context, id int) ([]byte, error) {
	if id <= 0 {
		return nil, apperror.NewValidation("proforma_id requerido")
	}
	return s.gw.DownloadProformaPDF(ctx, id)
}
