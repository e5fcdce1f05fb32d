package models

// APIError represents a standardized error response for the API
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error code constants
const (
	// General errors
	ErrBadRequest       = "BAD_REQUEST"
	ErrUnauthorized     = "UNAUTHORIZED"
	ErrForbidden        = "FORBIDDEN"
	ErrNotFound         = "NOT_FOUND"
	ErrConflict         = "CONFLICT"
	ErrInternalServer   = "INTERNAL_SERVER_ERROR"
	ErrValidationFailed = "VALIDATION_FAILED"

	// Auth errors
	ErrInvalidCredentials = "INVALID_CREDENTIALS"
	ErrSessionExpired     = "SESSION_EXPIRED"
	ErrEmailTaken         = "EMAIL_ALREADY_REGISTERED"
	ErrResetTokenInvalid  = "RESET_TOKEN_INVALID"

	// Ticket errors
	ErrTicketNotFound    = "TICKET_NOT_FOUND"
	ErrTicketInvalidData = "TICKET_INVALID_DATA"
	ErrInvalidTransition = "INVALID_STATUS_TRANSITION"
	ErrAttachmentType    = "ATTACHMENT_TYPE_NOT_ALLOWED"
	ErrAttachmentMissing = "ATTACHMENT_NOT_FOUND"
	ErrCommentEmpty      = "COMMENT_EMPTY"
)

// NewAPIError creates a new API error with the given code and message
func NewAPIError(code, message string, details ...map[string]interface{}) APIError {
	err := APIError{
		Code:    code,
		Message: message,
	}
	if len(details) > 0 {
		err.Details = details[0]
	}
	return err
}
