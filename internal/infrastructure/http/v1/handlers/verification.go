package handlers

import (
	"github.com/gin-gonic/gin"

	"inventario/internal/core/apperror"
	"inventario/internal/core/types"
	"inventario/internal/domain/count"
	"inventario/internal/domain/verification"
	"inventario/internal/infrastructure/http/v1/dto"
)

// VerificationHandler handles verification actas.
type VerificationHandler struct {
	*BaseHandler
	service *verification.Service
}

// NewVerificationHandler creates a verification handler.
func NewVerificationHandler(base *BaseHandler, service *verification.Service) *VerificationHandler {
	return &VerificationHandler{BaseHandler: base, service: service}
}

// Register classifies and registers a verification acta.
func (h *VerificationHandler) Register(c *gin.Context) {
	var req dto.VerificationRequest
	if !h.BindJSON(c, &req) {
		return
	}
	tipo, err := count.ParseCountType(req.TipoConteo)
	if err != nil {
		h.Error(c, err)
		return
	}

	compras, err := parseMoney(req.ComprasTotales)
	if err != nil {
		h.Error(c, apperror.NewValidation("compras totales inválidas"))
		return
	}
	ventas, err := parseMoney(req.VentasTotales)
	if err != nil {
		h.Error(c, apperror.NewValidation("ventas totales inválidas"))
		return
	}

	acta := verification.Acta{
		Identity:       count.Identity{Numero: req.Numero, Tipo: tipo, Tienda: req.Tienda},
		NumeroActa:     req.NumeroActa,
		RegistradoPor:  h.OperatorName(c),
		FechaInicio:    req.FechaInicio,
		FechaFin:       req.FechaFin,
		ComprasTotales: compras,
		VentasTotales:  ventas,
	}
	for _, it := range req.Items {
		acta.Items = append(acta.Items, verification.Item{
			Codigo:      it.Codigo,
			Descripcion: it.Descripcion,
			Existencia:  it.Existencia,
			Fisico:      it.Fisico,
			Sistema:     it.Sistema,
		})
	}

	registered, err := h.service.Submit(c.Request.Context(), acta)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, registered)
}

// List returns the actas of a cycle.
func (h *VerificationHandler) List(c *gin.Context) {
	numero := h.ParseIntQuery(c, "numeroInventario", 0)

	actas, err := h.service.List(c.Request.Context(), numero)
	if err != nil {
		h.Error(c, err)
		return
	}
	if actas == nil {
		actas = []verification.Acta{}
	}
	h.OK(c, gin.H{"actas": actas})
}

func parseMoney(s string) (types.Money, error) {
	if s == "" {
		return types.Zero(), nil
	}
	return types.NewMoneyFromString(s)
}
