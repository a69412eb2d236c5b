package dto

// ErrorResponse is the JSON error envelope
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
	Code   string `json:"code,omitempty"`
}

// MessageResponse wraps a plain confirmation message
type MessageResponse struct {
	Message string `json:"message"`
}
