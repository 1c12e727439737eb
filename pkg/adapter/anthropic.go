package adapter

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/zen-systems/genui/pkg/artifact"
)

const anthropicName = "anthropic"

// AnthropicProvider returns the provider spec for Claude models.
func AnthropicProvider() ProviderSpec {
	return ProviderSpec{
		Name: anthropicName,
		Models: []string{
			"claude-opus-4-20250514",
			"claude-sonnet-4-20250514",
			"claude-3-7-sonnet-latest",
			"claude-3-5-haiku-latest",
			"claude-3-5-sonnet-latest",
		},
		New: func(cfg Config) (Client, error) {
			return NewAnthropicAdapter(cfg.APIKey, cfg.Model)
		},
	}
}

// AnthropicAdapter implements Client for Claude models.
type AnthropicAdapter struct {
	client anthropic.Client
	model  string
}

// NewAnthropicAdapter creates a new Anthropic adapter.
func NewAnthropicAdapter(apiKey, model string) (*AnthropicAdapter, error) {
	if apiKey == "" {
		return nil, ErrMissingCredential
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &AnthropicAdapter{client: client, model: model}, nil
}

// Provider returns the provider identifier.
func (a *AnthropicAdapter) Provider() string {
	return anthropicName
}

// Model returns the bound model.
func (a *AnthropicAdapter) Model() string {
	return a.model
}

// Invoke sends a prompt to Claude and returns the response as an artifact.
// Claude has no JSON response mode; JSON output relies on the prompt.
func (a *AnthropicAdapter) Invoke(ctx context.Context, prompt string, opts ...CallOption) (*artifact.Artifact, error) {
	resp, err := a.client.Messages.New(ctx, a.params(prompt, resolveOptions(opts)))
	if err != nil {
		return nil, a.wrap(err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	return artifact.New(sb.String(), a.Provider(), a.model, prompt), nil
}

// Stream sends a prompt to Claude and streams text deltas.
func (a *AnthropicAdapter) Stream(ctx context.Context, prompt string, opts ...CallOption) (*Stream, error) {
	params := a.params(prompt, resolveOptions(opts))

	return NewStream(ctx, func(ctx context.Context, emit EmitFunc) error {
		stream := a.client.Messages.NewStreaming(ctx, params)
		defer stream.Close()

		for stream.Next() {
			event := stream.Current()
			switch ev := event.AsAny().(type) {
			case anthropic.ContentBlockDeltaEvent:
				if delta, ok := ev.Delta.AsAny().(anthropic.TextDelta); ok {
					if err := emit(delta.Text); err != nil {
						return err
					}
				}
			}
		}
		if err := stream.Err(); err != nil {
			return a.wrap(err)
		}
		return nil
	}), nil
}

func (a *AnthropicAdapter) params(prompt string, o CallOptions) anthropic.MessageNewParams {
	return anthropic.MessageNewParams{
		Model:       anthropic.Model(a.model),
		MaxTokens:   int64(o.MaxTokens),
		Temperature: anthropic.Float(defaultTemperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
}

func (a *AnthropicAdapter) wrap(err error) error {
	perr := &ProviderError{Provider: anthropicName, Err: err}
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		perr.Status = apiErr.StatusCode
	}
	return perr
}
