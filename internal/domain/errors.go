package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation            = "VALIDATION_ERROR"
	ErrCodeNotFound              = "NOT_FOUND"
	ErrCodeAlreadyExists         = "ALREADY_EXISTS"
	ErrCodeUnauthorized          = "UNAUTHORIZED"
	ErrCodeForbidden             = "FORBIDDEN"
	ErrCodeRateLimited           = "RATE_LIMIT"
	ErrCodeInternalError         = "INTERNAL_ERROR"
	ErrCodeProviderNotConfigured = "AI_PROVIDER_NOT_CONFIGURED"
	ErrCodeProviderError         = "AI_PROVIDER_ERROR"
	ErrCodeProviderTimeout       = "AI_PROVIDER_TIMEOUT"
	ErrCodeContractViolation     = "AI_CONTRACT_VIOLATION"
)

// Validation errors
var (
	ErrMissingRequiredField = NewDomainError(ErrCodeValidation, "missing required field")
	ErrKBTextEmpty          = NewDomainError(ErrCodeValidation, "knowledge source text produced no chunks")
	ErrEmbeddingsInputEmpty = NewDomainError(ErrCodeValidation, "embeddings input is empty")
)

// Not found errors
var (
	ErrProjectNotFound = NewDomainError(ErrCodeNotFound, "project not found")
	ErrSourceNotFound  = NewDomainError(ErrCodeNotFound, "knowledge source not found")
)

// Already exists errors
var (
	ErrProjectAlreadyExists = NewDomainError(ErrCodeAlreadyExists, "project already exists")
)

// Tenant access errors
var (
	ErrProjectKeyRequired = NewDomainError(ErrCodeUnauthorized, "missing project key")
	ErrProjectKeyInvalid  = NewDomainError(ErrCodeUnauthorized, "invalid project key")
	ErrOriginNotAllowed   = NewDomainError(ErrCodeForbidden, "origin is not allowed")
	ErrTooManyRequests    = NewDomainError(ErrCodeRateLimited, "too many requests")
)

// Generation provider errors. Only the mandatory first chat-completion call
// surfaces these to the caller; repair retries swallow them.
var (
	ErrProviderNotConfigured = NewDomainError(ErrCodeProviderNotConfigured, "AI provider is not configured")
	ErrProviderTimeout       = NewDomainError(ErrCodeProviderTimeout, "AI provider request timed out")
	ErrContractViolation     = NewDomainError(ErrCodeContractViolation, "AI provider response violates the reply contract")
)

// NewProviderUpstreamError wraps an upstream provider failure with its HTTP status.
func NewProviderUpstreamError(status int, err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeProviderError, fmt.Sprintf("AI provider request failed (%d)", status), err)
}
