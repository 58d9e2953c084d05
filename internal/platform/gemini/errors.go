package gemini

import "errors"

// Error definitions for the gemini package.
var (
	// ErrInvalidConfig is returned when the namer cannot be configured.
	ErrInvalidConfig = errors.New("invalid gemini configuration")

	// ErrInvalidResponse is returned when the model answer cannot be used.
	ErrInvalidResponse = errors.New("invalid response from gemini")

	// ErrContentBlocked is returned when safety filters block the answer.
	ErrContentBlocked = errors.New("content blocked by safety filters")

	// ErrTransientFailure is returned when retries are exhausted.
	ErrTransientFailure = errors.New("transient gemini failure")
)
