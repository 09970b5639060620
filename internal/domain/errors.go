package domain

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidInput        = errors.New("invalid input")
	ErrUnsupportedModel    = errors.New("unsupported model")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrMissingAPIKey       = errors.New("missing api key")
	ErrProviderFailure     = errors.New("provider failure")
	ErrInternal            = errors.New("internal error")
)
