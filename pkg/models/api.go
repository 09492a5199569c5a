package models

// ErrorResponse is the JSON error envelope returned by the HTTP API.
type ErrorResponse struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}
