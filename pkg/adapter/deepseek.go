package adapter

import (
	"context"
	"errors"
	"io"

	openai "github.com/sashabaranov/go-openai"
	"github.com/zen-systems/genui/pkg/artifact"
)

const (
	deepseekName    = "deepseek"
	deepseekBaseURL = "https://api.deepseek.com/v1"
)

// DeepSeekProvider returns the provider spec for DeepSeek models.
func DeepSeekProvider() ProviderSpec {
	return ProviderSpec{
		Name:   deepseekName,
		Models: []string{"deepseek-chat", "deepseek-reasoner"},
		New: func(cfg Config) (Client, error) {
			return NewDeepSeekAdapter(cfg.APIKey, cfg.Model)
		},
	}
}

// DeepSeekAdapter implements Client for DeepSeek models.
// DeepSeek uses an OpenAI-compatible API format.
type DeepSeekAdapter struct {
	client *openai.Client
	model  string
}

// NewDeepSeekAdapter creates a new DeepSeek adapter.
func NewDeepSeekAdapter(apiKey, model string) (*DeepSeekAdapter, error) {
	return newDeepSeekAdapter(apiKey, model, deepseekBaseURL)
}

func newDeepSeekAdapter(apiKey, model, baseURL string) (*DeepSeekAdapter, error) {
	if apiKey == "" {
		return nil, ErrMissingCredential
	}

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	return &DeepSeekAdapter{client: openai.NewClientWithConfig(cfg), model: model}, nil
}

// Provider returns the provider identifier.
func (a *DeepSeekAdapter) Provider() string {
	return deepseekName
}

// Model returns the bound model.
func (a *DeepSeekAdapter) Model() string {
	return a.model
}

// Invoke sends a prompt to DeepSeek and returns the response as an artifact.
func (a *DeepSeekAdapter) Invoke(ctx context.Context, prompt string, opts ...CallOption) (*artifact.Artifact, error) {
	resp, err := a.client.CreateChatCompletion(ctx, a.request(prompt, resolveOptions(opts)))
	if err != nil {
		return nil, a.wrap(err)
	}

	if len(resp.Choices) == 0 {
		return nil, &ProviderError{Provider: deepseekName, Err: errors.New("deepseek returned no choices")}
	}

	content := resp.Choices[0].Message.Content
	return artifact.New(content, a.Provider(), a.model, prompt), nil
}

// Stream sends a prompt to DeepSeek and streams content deltas.
func (a *DeepSeekAdapter) Stream(ctx context.Context, prompt string, opts ...CallOption) (*Stream, error) {
	req := a.request(prompt, resolveOptions(opts))
	req.Stream = true

	return NewStream(ctx, func(ctx context.Context, emit EmitFunc) error {
		stream, err := a.client.CreateChatCompletionStream(ctx, req)
		if err != nil {
			return a.wrap(err)
		}
		defer stream.Close()

		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return a.wrap(err)
			}
			if len(resp.Choices) == 0 {
				continue
			}
			if err := emit(resp.Choices[0].Delta.Content); err != nil {
				return err
			}
		}
	}), nil
}

func (a *DeepSeekAdapter) request(prompt string, o CallOptions) openai.ChatCompletionRequest {
	req := openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   o.MaxTokens,
		Temperature: defaultTemperature,
	}
	if o.JSON {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}
	return req
}

func (a *DeepSeekAdapter) wrap(err error) error {
	perr := &ProviderError{Provider: deepseekName, Err: err}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		perr.Status = apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		perr.Status = reqErr.HTTPStatusCode
	}
	return perr
}
