package handlers

import (
	"github.com/gin-gonic/gin"

	"inventario/internal/domain/count"
	"inventario/internal/domain/session"
	"inventario/internal/infrastructure/http/v1/dto"
	"inventario/internal/infrastructure/poller"
)

// SessionHandler handles cycle assignment and status.
type SessionHandler struct {
	*BaseHandler
	ctrl     *session.Controller
	board    *count.Board
	notifier *poller.Notifier
}

// NewSessionHandler creates a session handler.
func NewSessionHandler(base *BaseHandler, ctrl *session.Controller, board *count.Board, notifier *poller.Notifier) *SessionHandler {
	return &SessionHandler{BaseHandler: base, ctrl: ctrl, board: board, notifier: notifier}
}

// Get returns the current cycle state.
func (h *SessionHandler) Get(c *gin.Context) {
	h.OK(c, toSessionResponse(h.ctrl.Current()))
}

// Assign assigns an inventory number to a store. Supervisor only.
func (h *SessionHandler) Assign(c *gin.Context) {
	var req dto.AssignSessionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	state, err := h.ctrl.StartCycle(c.Request.Context(), req.Numero, req.Tienda, h.OperatorName(c))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, toSessionResponse(state))
}

// Join attaches the operator to the active cycle.
func (h *SessionHandler) Join(c *gin.Context) {
	var req dto.JoinCycleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	tipo, err := count.ParseCountType(req.TipoConteo)
	if err != nil {
		h.Error(c, err)
		return
	}

	state, err := h.ctrl.JoinCycle(c.Request.Context(), req.Registrante, tipo)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, toSessionResponse(state))
}

// Close closes the active cycle. Supervisor only.
func (h *SessionHandler) Close(c *gin.Context) {
	if err := h.ctrl.CloseCycle(c.Request.Context(), h.OperatorName(c)); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "Inventario cerrado")
}

// Board returns the store status board.
func (h *SessionHandler) Board(c *gin.Context) {
	h.OK(c, h.board.View())
}

// Visibility records whether the status page is on screen, which gates
// finalization notifications.
func (h *SessionHandler) Visibility(c *gin.Context) {
	var req dto.VisibilityRequest
	if !h.BindJSON(c, &req) {
		return
	}
	h.notifier.SetVisible(*req.Visible)
	h.NoContent(c)
}

// State answers the dashboard's poll with one combined snapshot: the
// session, the store board, and any pending notifications.
func (h *SessionHandler) State(c *gin.Context) {
	notes := h.notifier.Drain()
	if notes == nil {
		notes = []poller.Notification{}
	}
	h.OK(c, gin.H{
		"session":       toSessionResponse(h.ctrl.Current()),
		"board":         h.board.View(),
		"notifications": notes,
	})
}

// Notifications drains pending finalization notifications.
func (h *SessionHandler) Notifications(c *gin.Context) {
	notes := h.notifier.Drain()
	if notes == nil {
		notes = []poller.Notification{}
	}
	h.OK(c, gin.H{"notifications": notes})
}

func toSessionResponse(s session.State) dto.SessionResponse {
	return dto.SessionResponse{
		Numero:      s.Numero,
		Tienda:      s.Tienda,
		TipoConteo:  string(s.Tipo),
		Registrante: s.Registrante,
		Inicio:      s.InicioDisplay(),
		Active:      s.Active,
	}
}
