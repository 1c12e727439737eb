package adapter

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingCredential is returned when a model is requested without an API key.
var ErrMissingCredential = errors.New("API key is required to create a model")

// UnsupportedModelError reports a model id outside every provider allow-list.
type UnsupportedModelError struct {
	Model      string
	Supported  []string
	Suggestion string
}

func (e *UnsupportedModelError) Error() string {
	if e == nil {
		return "unsupported model"
	}
	msg := fmt.Sprintf("unsupported model: %q. Supported models: %s", e.Model, strings.Join(e.Supported, ", "))
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", e.Suggestion)
	}
	return msg
}

// IsConfigurationError reports whether err was raised while validating a
// model configuration, before any network call.
func IsConfigurationError(err error) bool {
	if errors.Is(err, ErrMissingCredential) {
		return true
	}
	var unsupported *UnsupportedModelError
	return errors.As(err, &unsupported)
}

// ProviderError wraps provider failures with status metadata.
type ProviderError struct {
	Provider string
	Status   int
	Err      error
}

func (e *ProviderError) Error() string {
	if e == nil {
		return "provider error"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s API error: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("%s API error (status=%d)", e.Provider, e.Status)
}

func (e *ProviderError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
