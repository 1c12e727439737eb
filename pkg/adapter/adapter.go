package adapter

import (
	"context"

	"github.com/zen-systems/genui/pkg/artifact"
)

// Client is a model handle bound to one provider, model and credential.
// Implementations are stateless once constructed.
type Client interface {
	// Invoke sends a rendered prompt and returns the completed response.
	Invoke(ctx context.Context, prompt string, opts ...CallOption) (*artifact.Artifact, error)

	// Stream sends a rendered prompt and returns the response as a chunk stream.
	Stream(ctx context.Context, prompt string, opts ...CallOption) (*Stream, error)

	// Provider returns the provider identifier.
	Provider() string

	// Model returns the model identifier.
	Model() string
}

// Config selects a model and the credential used to reach it.
type Config struct {
	APIKey string `json:"apiKey" yaml:"api_key"`
	Model  string `json:"model" yaml:"model"`
}

// ProviderInfo holds metadata about a provider and its allowed models.
type ProviderInfo struct {
	Name   string
	Models []string
}
