package generation

import "errors"

var (
	// ErrEmptyPrompt indicates generation was requested without prompt text.
	ErrEmptyPrompt = errors.New("prompt is empty")
	// ErrGenerationFailed indicates the generator returned an error or nothing usable.
	ErrGenerationFailed = errors.New("outline generation failed")
	// ErrGeneratorUnavailable indicates no generator is configured.
	ErrGeneratorUnavailable = errors.New("outline generator not configured")
)
