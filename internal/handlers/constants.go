package handlers

// maxRequestBodyBytes bounds every JSON request body
const maxRequestBodyBytes = 1 << 20

const (
	ErrInvalidRequestBody  = "Invalid request body"
	ErrUnauthorized        = "Unauthorized"
	ErrForbidden           = "Forbidden"
	ErrInternalServerError = "Internal server error"
	ErrInvalidCSRFToken    = "Invalid CSRF token"
	ErrTooManyRequests     = "Too many requests"
	ErrSpeechUnavailable   = "Speech is unavailable right now"
)
