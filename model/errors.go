package model

import "fmt"

// Standard error codes.
const (
	ErrBadRequest       = "BAD_REQUEST"
	ErrUnauthorized     = "UNAUTHORIZED"
	ErrForbidden        = "FORBIDDEN"
	ErrNotFound         = "NOT_FOUND"
	ErrConflict         = "CONFLICT"
	ErrValidationError  = "VALIDATION_ERROR"
	ErrInternalError    = "INTERNAL_ERROR"
	ErrStorageFailure   = "STORAGE_FAILURE"
	ErrPaymentFailure   = "PAYMENT_FAILURE"
	ErrInvalidSignature = "INVALID_SIGNATURE"
)

// Editor-specific error codes.
const (
	ErrNoPageLoaded    = "NO_PAGE_LOADED"
	ErrSessionNotFound = "SESSION_NOT_FOUND"
)

// ErrorEnvelope is the standard error response envelope returned by the API.
// It implements the error interface.
type ErrorEnvelope struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Details []FieldError `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *ErrorEnvelope) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// FieldError describes a field-level validation error.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewBadRequestError returns a BAD_REQUEST error.
func NewBadRequestError(msg string) *ErrorEnvelope {
	return &ErrorEnvelope{Code: ErrBadRequest, Message: msg}
}

// NewUnauthorizedError returns an UNAUTHORIZED error.
func NewUnauthorizedError(msg string) *ErrorEnvelope {
	return &ErrorEnvelope{Code: ErrUnauthorized, Message: msg}
}

// NewForbiddenError returns a FORBIDDEN error.
func NewForbiddenError(msg string) *ErrorEnvelope {
	return &ErrorEnvelope{Code: ErrForbidden, Message: msg}
}

// NewNotFoundError returns a NOT_FOUND error.
func NewNotFoundError(msg string) *ErrorEnvelope {
	return &ErrorEnvelope{Code: ErrNotFound, Message: msg}
}

// NewConflictError returns a CONFLICT error.
func NewConflictError(msg string) *ErrorEnvelope {
	return &ErrorEnvelope{Code: ErrConflict, Message: msg}
}

// NewValidationError returns a VALIDATION_ERROR with field-level details.
func NewValidationError(details []FieldError) *ErrorEnvelope {
	return &ErrorEnvelope{
		Code:    ErrValidationError,
		Message: "One or more fields are invalid",
		Details: details,
	}
}

// NewInternalError returns an INTERNAL_ERROR.
func NewInternalError() *ErrorEnvelope {
	return &ErrorEnvelope{
		Code:    ErrInternalError,
		Message: "An unexpected error occurred",
	}
}

// NewStorageError returns a STORAGE_FAILURE error.
func NewStorageError(msg string) *ErrorEnvelope {
	return &ErrorEnvelope{Code: ErrStorageFailure, Message: msg}
}

// NewPaymentError returns a PAYMENT_FAILURE error.
func NewPaymentError(msg string) *ErrorEnvelope {
	return &ErrorEnvelope{Code: ErrPaymentFailure, Message: msg}
}

// NewInvalidSignatureError returns an INVALID_SIGNATURE error.
func NewInvalidSignatureError(msg string) *ErrorEnvelope {
	return &ErrorEnvelope{Code: ErrInvalidSignature, Message: msg}
}

// NewNoPageLoadedError returns a NO_PAGE_LOADED error. Editor operations that
// require a loaded page return this and leave session state unchanged.
func NewNoPageLoadedError() *ErrorEnvelope {
	return &ErrorEnvelope{
		Code:    ErrNoPageLoaded,
		Message: "No page is loaded in this editor session",
	}
}

// NewSessionNotFoundError returns a SESSION_NOT_FOUND error.
func NewSessionNotFoundError(sessionID string) *ErrorEnvelope {
	return &ErrorEnvelope{
		Code:    ErrSessionNotFound,
		Message: fmt.Sprintf("editor session %q not found or expired", sessionID),
	}
}
