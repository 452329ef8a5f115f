package shortener

import "errors"

var (
	// ErrNotFound is returned when no link exists for a short code.
	ErrNotFound = errors.New("short link not found")

	// ErrCodeTaken is returned when a requested custom code already exists.
	ErrCodeTaken = errors.New("short code already exists")

	// ErrInvalidCustomCode is returned when a custom code fails shape validation.
	ErrInvalidCustomCode = errors.New("invalid custom code")

	// ErrGenerationExhausted is returned when no collision-free code was found
	// within the allowed attempts.
	ErrGenerationExhausted = errors.New("failed to generate unique short code after maximum attempts")
)
