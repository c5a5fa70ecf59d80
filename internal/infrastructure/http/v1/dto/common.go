// Package dto provides Data Transfer Objects for API requests/responses.
package dto

// SuccessResponse is a simple success message.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// IDResponse returns a created resource identifier.
type IDResponse struct {
	ID string `json:"id"`
}
