package adapter

import (
	"context"
	"errors"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"github.com/zen-systems/genui/pkg/artifact"
)

const openaiName = "openai"

// OpenAIProvider returns the provider spec for OpenAI chat models.
func OpenAIProvider() ProviderSpec {
	return ProviderSpec{
		Name:   openaiName,
		Models: []string{"gpt-4o", "gpt-4o-mini", "gpt-4.1", "gpt-4.1-mini"},
		New: func(cfg Config) (Client, error) {
			return NewOpenAIAdapter(cfg.APIKey, cfg.Model)
		},
	}
}

// OpenAIAdapter implements Client for OpenAI models.
type OpenAIAdapter struct {
	client openai.Client
	model  string
}

// NewOpenAIAdapter creates a new OpenAI adapter.
func NewOpenAIAdapter(apiKey, model string) (*OpenAIAdapter, error) {
	if apiKey == "" {
		return nil, ErrMissingCredential
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIAdapter{client: client, model: model}, nil
}

// Provider returns the provider identifier.
func (a *OpenAIAdapter) Provider() string {
	return openaiName
}

// Model returns the bound model.
func (a *OpenAIAdapter) Model() string {
	return a.model
}

// Invoke sends a prompt to OpenAI and returns the response as an artifact.
func (a *OpenAIAdapter) Invoke(ctx context.Context, prompt string, opts ...CallOption) (*artifact.Artifact, error) {
	resp, err := a.client.Chat.Completions.New(ctx, a.params(prompt, resolveOptions(opts)))
	if err != nil {
		return nil, a.wrap(err)
	}

	if len(resp.Choices) == 0 {
		return nil, &ProviderError{Provider: openaiName, Err: errors.New("openai returned no choices")}
	}

	content := resp.Choices[0].Message.Content
	return artifact.New(content, a.Provider(), a.model, prompt), nil
}

// Stream sends a prompt to OpenAI and streams content deltas.
func (a *OpenAIAdapter) Stream(ctx context.Context, prompt string, opts ...CallOption) (*Stream, error) {
	params := a.params(prompt, resolveOptions(opts))

	return NewStream(ctx, func(ctx context.Context, emit EmitFunc) error {
		stream := a.client.Chat.Completions.NewStreaming(ctx, params)
		defer stream.Close()

		for stream.Next() {
			chunk := stream.Current()
			if len(chunk.Choices) == 0 {
				continue
			}
			if err := emit(chunk.Choices[0].Delta.Content); err != nil {
				return err
			}
		}
		if err := stream.Err(); err != nil {
			return a.wrap(err)
		}
		return nil
	}), nil
}

func (a *OpenAIAdapter) params(prompt string, o CallOptions) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(a.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		MaxCompletionTokens: openai.Int(int64(o.MaxTokens)),
		Temperature:         openai.Float(defaultTemperature),
	}
	if o.JSON {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}
	return params
}

func (a *OpenAIAdapter) wrap(err error) error {
	perr := &ProviderError{Provider: openaiName, Err: err}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		perr.Status = apiErr.StatusCode
	}
	return perr
}
