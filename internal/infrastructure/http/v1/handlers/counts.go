package handlers

import (
	"context"
	"io"

	"github.com/gin-gonic/gin"

	"inventario/internal/core/apperror"
	"inventario/internal/domain/catalog"
	"inventario/internal/domain/count"
	"inventario/internal/domain/importer"
	"inventario/internal/domain/session"
	"inventario/internal/infrastructure/http/v1/dto"
)

// maxImportSize bounds uploaded spreadsheets.
const maxImportSize = 10 << 20

// ProductSource loads the master product list.
type ProductSource interface {
	FetchProducts(ctx context.Context) ([]catalog.Product, error)
}

// CountsHandler handles the count draft lifecycle.
type CountsHandler struct {
	*BaseHandler
	coord    *count.Coordinator
	ctrl     *session.Controller
	products ProductSource
}

// NewCountsHandler creates a counts handler.
func NewCountsHandler(base *BaseHandler, coord *count.Coordinator, ctrl *session.Controller, products ProductSource) *CountsHandler {
	return &CountsHandler{BaseHandler: base, coord: coord, ctrl: ctrl, products: products}
}

// slot derives the draft slot from the operator's warehouse and the
// counting mode, so the two Malvinas counts never share a draft.
func (h *CountsHandler) slot(c *gin.Context, tipo count.CountType) string {
	op := h.Operator(c)
	warehouse := ""
	if op != nil {
		warehouse = op.Warehouse
	}
	return warehouse + "_" + string(tipo)
}

// activeNumero resolves the cycle the slot is attached to.
func (h *CountsHandler) activeNumero(c *gin.Context) (int, bool) {
	state := h.ctrl.Current()
	if !state.Active || state.Numero <= 0 {
		h.Error(c, apperror.NewBusinessRule(apperror.CodeNoActiveCycle,
			"No hay un inventario activo asignado"))
		return 0, false
	}
	return state.Numero, true
}

// Open starts or resumes a count for the active cycle.
func (h *CountsHandler) Open(c *gin.Context) {
	var req dto.OpenCountRequest
	if !h.BindJSON(c, &req) {
		return
	}

	tipo, err := count.ParseCountType(req.TipoConteo)
	if err != nil {
		h.Error(c, err)
		return
	}
	numero, ok := h.activeNumero(c)
	if !ok {
		return
	}

	identity := count.Identity{Numero: numero, Tipo: tipo, Tienda: req.Tienda}
	draft, err := h.coord.Open(c.Request.Context(), h.slot(c, tipo), identity, req.Registrante, h.ctrl.Current().Inicio)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, draft)
}

// Draft returns the slot's active draft.
func (h *CountsHandler) Draft(c *gin.Context) {
	tipo, err := count.ParseCountType(c.Query("tipoConteo"))
	if err != nil {
		h.Error(c, err)
		return
	}
	draft, ok := h.coord.Drafts().Get(h.slot(c, tipo))
	if !ok {
		h.Error(c, apperror.NewNotFound("conteo activo", string(tipo)))
		return
	}
	h.OK(c, draft)
}

// SetLine upserts one counted product on the draft.
func (h *CountsHandler) SetLine(c *gin.Context) {
	tipo, err := count.ParseCountType(c.Query("tipoConteo"))
	if err != nil {
		h.Error(c, err)
		return
	}
	var req dto.CountLineRequest
	if !h.BindJSON(c, &req) {
		return
	}

	draft, err := h.coord.Drafts().SetLine(c.Request.Context(), h.slot(c, tipo), count.Line{
		DetalleID:   req.DetalleID,
		Codigo:      req.Codigo,
		Descripcion: req.Descripcion,
		Unidad:      req.Unidad,
		Cantidad:    req.Cantidad,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, draft)
}

// RemoveLine deletes one counted product from the draft.
func (h *CountsHandler) RemoveLine(c *gin.Context) {
	tipo, err := count.ParseCountType(c.Query("tipoConteo"))
	if err != nil {
		h.Error(c, err)
		return
	}

	draft, err := h.coord.Drafts().RemoveLine(c.Request.Context(), h.slot(c, tipo), c.Param("codigo"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, draft)
}

// Finalize submits the draft and closes the count on the server.
func (h *CountsHandler) Finalize(c *gin.Context) {
	var req dto.FinalizeCountRequest
	if !h.BindJSON(c, &req) {
		return
	}
	tipo, err := count.ParseCountType(req.TipoConteo)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.coord.Finalize(c.Request.Context(), h.slot(c, tipo), req.Registrante); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "Conteo finalizado")
}

// Lock reports whether the slot's draft is still editable.
func (h *CountsHandler) Lock(c *gin.Context) {
	tipo, err := count.ParseCountType(c.Query("tipoConteo"))
	if err != nil {
		h.Error(c, err)
		return
	}
	lock, err := h.coord.CheckLock(c.Request.Context(), h.slot(c, tipo))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, lock)
}

// History returns one page of the warehouse's finished counts.
func (h *CountsHandler) History(c *gin.Context) {
	op := h.Operator(c)
	almacen := c.Query("almacen")
	if almacen == "" && op != nil {
		almacen = op.Warehouse
	}
	page := h.ParseIntQuery(c, "pagina", 1)

	result, err := h.coord.FinishedPage(c.Request.Context(), almacen, page)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}

// Products returns the master product list.
func (h *CountsHandler) Products(c *gin.Context) {
	products, err := h.products.FetchProducts(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"productos": products})
}

// Import parses an uploaded count spreadsheet into a preview. Nothing is
// merged until the operator confirms.
func (h *CountsHandler) Import(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		h.Error(c, apperror.NewValidation("archivo de conteo requerido").WithDetail("error", err.Error()))
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

	products, err := h.products.FetchProducts(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	preview, err := importer.Parse(data, catalog.Index(products))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, preview)
}

// ImportConfirm merges confirmed preview lines into the draft.
func (h *CountsHandler) ImportConfirm(c *gin.Context) {
	var req dto.ImportConfirmRequest
	if !h.BindJSON(c, &req) {
		return
	}
	tipo, err := count.ParseCountType(req.TipoConteo)
	if err != nil {
		h.Error(c, err)
		return
	}

	lines := make([]count.Line, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, count.Line{
			DetalleID:   l.DetalleID,
			Codigo:      l.Codigo,
			Descripcion: l.Descripcion,
			Unidad:      l.Unidad,
			Cantidad:    l.Cantidad,
		})
	}

	draft, err := h.coord.Drafts().MergeLines(c.Request.Context(), h.slot(c, tipo), lines)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, draft)
}
