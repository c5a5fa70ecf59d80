package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"inventario/internal/core/apperror"
	"inventario/internal/core/types"
	"inventario/internal/domain/catalog"
	"inventario/internal/domain/proforma"
	"inventario/internal/infrastructure/http/v1/dto"
)

// ProformaHandler handles the proforma lifecycle.
type ProformaHandler struct {
	*BaseHandler
	service *proforma.Service
}

// NewProformaHandler creates a proforma handler.
func NewProformaHandler(base *BaseHandler, service *proforma.Service) *ProformaHandler {
	return &ProformaHandler{BaseHandler: base, service: service}
}

// Register registers a new proforma.
func (h *ProformaHandler) Register(c *gin.Context) {
	var req dto.ProformaRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p := proforma.Proforma{
		Cliente:       req.Cliente,
		RegistradoPor: h.OperatorName(c),
	}
	for _, it := range req.Items {
		precio, err := types.NewMoneyFromString(it.Precio)
		if err != nil {
			h.Error(c, apperror.NewValidation("precio inválido").WithDetail("codigo", it.Codigo))
			return
		}
		p.Items = append(p.Items, proforma.Item{
			Codigo:      it.Codigo,
			Descripcion: it.Descripcion,
			Unidad:      catalog.NormalizeUnit(it.Unidad),
			Cantidad:    it.Cantidad,
			Precio:      precio,
		})
	}

	registered, err := h.service.Register(c.Request.Context(), p)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, registered)
}

// List returns all registered proformas.
func (h *ProformaHandler) List(c *gin.Context) {
	proformas, err := h.service.List(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	if proformas == nil {
		proformas = []proforma.Proforma{}
	}
	h.OK(c, gin.H{"proformas": proformas})
}

// Emit marks a proforma as emitted.
func (h *ProformaHandler) Emit(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("proforma_id inválido"))
		return
	}

	emitted, err := h.service.Emit(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, emitted)
}

// Download streams the rendered PDF of a proforma.
func (h *ProformaHandler) Download(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("proforma_id inválido"))
		return
	}

	pdf, err := h.service.DownloadPDF(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=proforma_"+strconv.Itoa(id)+".pdf")
	c.Data(http.StatusOK, "application/pdf", pdf)
}
