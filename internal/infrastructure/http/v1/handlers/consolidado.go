package handlers

import (
	"github.com/gin-gonic/gin"

	"inventario/internal/core/apperror"
	"inventario/internal/domain/consolidado"
	"inventario/internal/infrastructure/poller"
)

// ConsolidadoHandler serves the cycle-wide consolidated report.
type ConsolidadoHandler struct {
	*BaseHandler
	service *consolidado.Service
	poller  *poller.Poller
}

// NewConsolidadoHandler creates a consolidado handler.
func NewConsolidadoHandler(base *BaseHandler, service *consolidado.Service, p *poller.Poller) *ConsolidadoHandler {
	return &ConsolidadoHandler{BaseHandler: base, service: service, poller: p}
}

// Get builds the consolidated report from the latest synchronizer state.
func (h *ConsolidadoHandler) Get(c *gin.Context) {
	poll, ok := h.poller.LastPoll()
	if !ok || poll.Numero <= 0 {
		h.Error(c, apperror.NewBusinessRule(apperror.CodeNoActiveCycle,
			"No hay un inventario activo asignado"))
		return
	}

	numero := h.ParseIntQuery(c, "numeroInventario", poll.Numero)
	report, err := h.service.Build(c.Request.Context(), numero, poll.Records)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, report)
}
