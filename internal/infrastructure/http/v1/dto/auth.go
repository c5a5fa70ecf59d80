package dto

import "time"

// LoginRequest opens a counter session for a named operator.
type LoginRequest struct {
	Name      string `json:"name" binding:"required"`
	Warehouse string `json:"warehouse" binding:"required"`
}

// ElevateRequest exchanges the supervisor key for a supervisor token.
type ElevateRequest struct {
	Name      string `json:"name" binding:"required"`
	Warehouse string `json:"warehouse" binding:"required"`
	Key       string `json:"key" binding:"required"`
}

// TokenResponse carries an issued access token.
type TokenResponse struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
	Role        string    `json:"role"`
}
