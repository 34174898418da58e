package apperrors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Error codes returned to API callers
const (
	CodeValidation           = "VALIDATION_ERROR"
	CodeNotFound             = "NOT_FOUND"
	CodeForbidden            = "FORBIDDEN"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeAlreadyConfirmed     = "ALREADY_CONFIRMED"
	CodeCancelledTransfer    = "CANCELLED_TRANSFER"
	CodeInvalidTransferState = "INVALID_TRANSFER_STATE"
	CodeRequestCanceled      = "REQUEST_CANCELED"
	CodeInternal             = "INTERNAL_ERROR"
)

var (
	ErrValidation           = NewAppError(CodeValidation, "Validation failed", http.StatusBadRequest)
	ErrNotFound             = NewAppError(CodeNotFound, "Resource not found", http.StatusNotFound)
	ErrTransferNotFound     = NewAppError(CodeNotFound, "Transfer not found", http.StatusNotFound)
	ErrFundNotFound         = NewAppError(CodeNotFound, "Fund not found", http.StatusNotFound)
	ErrForbidden            = NewAppError(CodeForbidden, "Access denied", http.StatusForbidden)
	ErrUnauthorized         = NewAppError(CodeUnauthorized, "Authentication required", http.StatusUnauthorized)
	ErrAlreadyConfirmed     = NewAppError(CodeAlreadyConfirmed, "Transfer has already been confirmed", http.StatusConflict)
	ErrCancelledTransfer    = NewAppError(CodeCancelledTransfer, "Cannot confirm a cancelled transfer", http.StatusBadRequest)
	ErrInvalidTransferState = NewAppError(CodeInvalidTransferState, "Transfer can no longer be confirmed", http.StatusBadRequest)
	ErrInternal             = NewAppError(CodeInternal, "Internal server error", http.StatusInternalServerError)
)

// AppError is an error with a stable code and HTTP status for API responses
type AppError struct {
	Code       string
	Message    string
	StatusCode int
	Details    map[string]interface{}
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s - %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches any AppError carrying the same code, so errors.Is works against the sentinels
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithDetails returns a copy carrying the given details
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	clone := e.clone()
	clone.Details = make(map[string]interface{}, len(details))
	for k, v := range details {
		clone.Details[k] = v
	}
	return clone
}

// WithMessage returns a copy with a more specific message
func (e *AppError) WithMessage(message string) *AppError {
	clone := e.clone()
	clone.Message = message
	return clone
}

// WithError returns a copy wrapping the underlying cause
func (e *AppError) WithError(err error) *AppError {
	clone := e.clone()
	clone.Err = err
	return clone
}

func (e *AppError) clone() *AppError {
	clone := *e
	clone.Details = make(map[string]interface{}, len(e.Details))
	for k, v := range e.Details {
		clone.Details[k] = v
	}
	return &clone
}

// NewAppError creates an AppError with no wrapped cause
func NewAppError(code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Details:    make(map[string]interface{}),
	}
}

// NewValidationError creates a VALIDATION_ERROR for a single field
func NewValidationError(field, message string) *AppError {
	return ErrValidation.WithMessage(message).WithDetails(map[string]interface{}{field: message})
}

// AsAppError extracts an AppError anywhere in the chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsBusinessError reports whether err is an AppError other than an internal failure
func IsBusinessError(err error) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code != CodeInternal
}

// FromError maps any error to an AppError. Unknown errors become INTERNAL_ERROR.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}
	if errors.Is(err, context.Canceled) {
		return NewAppError(CodeRequestCanceled, "Request canceled by client", 499).WithError(err)
	}
	return ErrInternal.WithError(err)
}

// FromValidator converts validator.ValidationErrors into a VALIDATION_ERROR with per-field details
func FromValidator(err error) *AppError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return ErrValidation.WithError(err)
	}

	details := make(map[string]interface{}, len(verrs))
	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg := fieldMessage(fe)
		details[fe.Field()] = msg
		messages = append(messages, msg)
	}

	return ErrValidation.WithMessage(strings.Join(messages, "; ")).WithDetails(details)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "uuid4", "uuid":
		return fmt.Sprintf("%s must be a valid UUID", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
