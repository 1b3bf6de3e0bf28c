// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
// Code carries a machine-readable identifier so role screens can react to
// state and concurrency errors without parsing the message text.
type APIError struct {
	Detail string `json:"detail"`
	Code   string `json:"code,omitempty"`
	// StatusAtual echoes the aggregate's current workflow status on state
	// errors so the UI can re-sync its view of the Necessidade.
	StatusAtual string `json:"status_atual,omitempty"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// NewCode builds an envelope with a machine-readable code.
func NewCode(code, msg string) *APIError {
	return &APIError{Detail: msg, Code: code}
}

// NewState builds a state-error envelope carrying the aggregate's status.
func NewState(code, msg, statusAtual string) *APIError {
	return &APIError{Detail: msg, Code: code, StatusAtual: statusAtual}
}

// Validation wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Erro de validacao", Fields: fields}
}
