package handlers

import (
	"io"

	"github.com/gin-gonic/gin"

	"inventario/internal/core/apperror"
	"inventario/internal/domain/count"
	"inventario/internal/infrastructure/http/v1/dto"
)

// ComparisonHandler serves the physical-vs-system comparison and the
// supervisor correction flow.
type ComparisonHandler struct {
	*BaseHandler
	coord  *count.Coordinator
	editor *count.Editor
}

// NewComparisonHandler creates a comparison handler.
func NewComparisonHandler(base *BaseHandler, coord *count.Coordinator, editor *count.Editor) *ComparisonHandler {
	return &ComparisonHandler{BaseHandler: base, coord: coord, editor: editor}
}

// Compare classifies every product of one count.
func (h *ComparisonHandler) Compare(c *gin.Context) {
	var req dto.ComparisonRequest
	if !h.BindQuery(c, &req) {
		return
	}
	tipo, err := count.ParseCountType(req.TipoConteo)
	if err != nil {
		h.Error(c, err)
		return
	}

	summary, err := h.coord.Compare(c.Request.Context(), count.Identity{
		Numero: req.Numero,
		Tipo:   tipo,
		Tienda: req.Tienda,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, summary)
}

// Edit corrects one quantity of a finalized count. Supervisor only.
func (h *ComparisonHandler) Edit(c *gin.Context) {
	var req dto.EditQuantityRequest
	if !h.BindJSON(c, &req) {
		return
	}
	tipo, err := count.ParseCountType(req.TipoConteo)
	if err != nil {
		h.Error(c, err)
		return
	}

	edit := count.Edit{
		Identity:      count.Identity{Numero: req.Numero, Tipo: tipo, Tienda: req.Tienda},
		Codigo:        req.Codigo,
		Side:          count.Side(req.Side),
		Cantidad:      req.Cantidad,
		Motivo:        req.Motivo,
		ErrorDe:       req.ErrorDe,
		Observaciones: req.Observaciones,
		Editor:        h.OperatorName(c),
	}
	if err := h.editor.Apply(c.Request.Context(), edit); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "Cantidad actualizada")
}

// Upload relays a system-stock spreadsheet to the server. Supervisor only.
func (h *ComparisonHandler) Upload(c *gin.Context) {
	almacen := c.PostForm("almacen")
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.Error(c, apperror.NewValidation("archivo de sistema requerido").WithDetail("error", err.Error()))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImportSize+1))
	if err != nil {
		h.Error(c, apperror.NewParse("No se pudo leer el archivo").WithCause(err))
		return
	}
	if len(data) > maxImportSize {
		h.Error(c, apperror.NewValidation("el archivo supera el tamaño máximo de 10MB"))
		return
	}

	if err := h.editor.UploadSistema(c.Request.Context(), almacen, header.Filename, data); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "Stock de sistema cargado")
}

// Generate rebuilds one count's comparison table. Supervisor only.
func (h *ComparisonHandler) Generate(c *gin.Context) {
	var req dto.GenerateComparisonRequest
	if !h.BindJSON(c, &req) {
		return
	}
	tipo, err := count.ParseCountType(req.TipoConteo)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.editor.Generate(c.Request.Context(), count.Identity{
		Numero: req.Numero,
		Tipo:   tipo,
		Tienda: req.Tienda,
	}); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "Comparación generada")
}

// History returns the audit trail for a cycle.
func (h *ComparisonHandler) History(c *gin.Context) {
	numero := h.ParseIntQuery(c, "numeroInventario", 0)

	records, err := h.editor.History(c.Request.Context(), numero)
	if err != nil {
		h.Error(c, err)
		return
	}
	if records == nil {
		records = []count.ActionRecord{}
	}
	h.OK(c, gin.H{"historial": records})
}
