package handlers

const (
	loginPath = "/api/auth/login"

	ErrInvalidRequest        = "Invalid request"
	ErrInvalidJSON           = "Invalid JSON body"
	ErrInvalidID             = "Invalid ID"
	ErrUnauthorized          = "Unauthorized"
	ErrForbidden             = "Forbidden"
	ErrTooManyRequests       = "Too many requests, please try again later"
	ErrInvalidCSRFToken      = "Invalid CSRF token"
	ErrInternalServerError   = "Internal server error"
	ErrWordSourceUnavailable = "Word source unavailable, please retry"
)
