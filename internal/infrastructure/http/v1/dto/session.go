package dto

// AssignSessionRequest assigns an inventory number to a store.
type AssignSessionRequest struct {
	Numero int    `json:"numeroInventario" binding:"required,min=1"`
	Tienda string `json:"tienda" binding:"required"`
}

// JoinCycleRequest attaches an operator to the active cycle.
type JoinCycleRequest struct {
	Registrante string `json:"registradoPor" binding:"required"`
	TipoConteo  string `json:"tipoConteo" binding:"required"`
}

// SessionResponse is the cycle state for the dashboard.
type SessionResponse struct {
	Numero      int    `json:"numeroInventario"`
	Tienda      string `json:"tienda,omitempty"`
	TipoConteo  string `json:"tipoConteo,omitempty"`
	Registrante string `json:"registradoPor,omitempty"`
	Inicio      string `json:"inicio,omitempty"`
	Active      bool   `json:"active"`
}

// VisibilityRequest reports whether the status page is on screen.
type VisibilityRequest struct {
	Visible *bool `json:"visible" binding:"required"`
}
