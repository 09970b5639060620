package domain

import "errors"

// ErrorCode is the coarse, machine-checkable failure class carried by a
// failed Result.
type ErrorCode string

const (
	CodeUnauthorized        ErrorCode = "UNAUTHORIZED"
	CodeValidation          ErrorCode = "VALIDATION_ERROR"
	CodeInsufficientCredits ErrorCode = "INSUFFICIENT_CREDITS"
	CodeInvalidAPIKey       ErrorCode = "INVALID_API_KEY"
	CodeGenerationFailed    ErrorCode = "GENERATION_FAILED"
	CodeNotFound            ErrorCode = "NOT_FOUND"
	CodeInternal            ErrorCode = "INTERNAL_ERROR"
)

// Result is the tagged success/failure value returned by every public
// generation entry point.
type Result[T any] struct {
	Success bool      `json:"success"`
	Data    *T        `json:"data,omitempty"`
	Error   string    `json:"error,omitempty"`
	Code    ErrorCode `json:"code,omitempty"`
}

// OK wraps data in a successful Result.
func OK[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: &data}
}

// Fail converts err into a failed Result.
func Fail[T any](err error) Result[T] {
	if err == nil {
		err = ErrProviderFailure
	}
	return Result[T]{Error: err.Error(), Code: CodeFor(err)}
}

// CodeFor maps an error chain onto an ErrorCode. Anything not recognised is
// treated as a generation failure.
func CodeFor(err error) ErrorCode {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnauthorized):
		return CodeUnauthorized
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrUnsupportedModel):
		return CodeValidation
	case errors.Is(err, ErrInsufficientCredits):
		return CodeInsufficientCredits
	case errors.Is(err, ErrMissingAPIKey):
		return CodeInvalidAPIKey
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrInternal):
		return CodeInternal
	default:
		return CodeGenerationFailed
	}
}
