package adapter

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zen-systems/genui/pkg/artifact"
	"google.golang.org/genai"
)

const googleName = "google"

// GoogleProvider returns the provider spec for Gemini models.
func GoogleProvider() ProviderSpec {
	return ProviderSpec{
		Name:   googleName,
		Models: []string{"gemini-2.5-flash", "gemini-2.5-pro"},
		New: func(cfg Config) (Client, error) {
			return NewGoogleAdapter(cfg.APIKey, cfg.Model)
		},
	}
}

// GoogleAdapter implements Client for Gemini models.
type GoogleAdapter struct {
	client *genai.Client
	model  string
}

// NewGoogleAdapter creates a new Google Gemini adapter. The Gemini API
// backend only records the configuration here; it does not dial.
func NewGoogleAdapter(apiKey, model string) (*GoogleAdapter, error) {
	if apiKey == "" {
		return nil, ErrMissingCredential
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create google client: %w", err)
	}

	return &GoogleAdapter{
		client: client,
		model:  model,
	}, nil
}

// Provider returns the provider identifier.
func (a *GoogleAdapter) Provider() string {
	return googleName
}

// Model returns the bound model.
func (a *GoogleAdapter) Model() string {
	return a.model
}

// Invoke sends a prompt to Gemini and returns the response as an artifact.
func (a *GoogleAdapter) Invoke(ctx context.Context, prompt string, opts ...CallOption) (*artifact.Artifact, error) {
	resp, err := a.client.Models.GenerateContent(ctx, a.model, genai.Text(prompt), generateConfig(resolveOptions(opts)))
	if err != nil {
		return nil, a.wrap(err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return nil, &ProviderError{Provider: googleName, Err: errors.New("google returned no candidates")}
	}

	return artifact.New(candidateText(resp), a.Provider(), a.model, prompt), nil
}

// Stream sends a prompt to Gemini and streams candidate text.
func (a *GoogleAdapter) Stream(ctx context.Context, prompt string, opts ...CallOption) (*Stream, error) {
	cfg := generateConfig(resolveOptions(opts))

	return NewStream(ctx, func(ctx context.Context, emit EmitFunc) error {
		for resp, err := range a.client.Models.GenerateContentStream(ctx, a.model, genai.Text(prompt), cfg) {
			if err != nil {
				return a.wrap(err)
			}
			if err := emit(candidateText(resp)); err != nil {
				return err
			}
		}
		return nil
	}), nil
}

func generateConfig(o CallOptions) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](defaultTemperature),
		MaxOutputTokens: int32(o.MaxTokens),
	}
	if o.JSON {
		cfg.ResponseMIMEType = "application/json"
	}
	return cfg
}

func candidateText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}

func (a *GoogleAdapter) wrap(err error) error {
	perr := &ProviderError{Provider: googleName, Err: err}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		perr.Status = apiErr.Code
	}
	return perr
}
