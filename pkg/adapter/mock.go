package adapter

import (
	"context"
	"sync"

	"github.com/zen-systems/genui/pkg/artifact"
)

const mockName = "mock"

// MockDesign is the default design analysis returned by MockClient.
const MockDesign = `Layout: single column card with a header, a short body and a primary action.
Colors: primary #2563eb, background #ffffff, text #111827.
Typography: Inter, 16px base, bold 24px heading.
Spacing: 16px grid.
Components: heading, paragraph, button.`

// MockDocument is the default UI document returned by MockClient in JSON mode.
const MockDocument = `{
  "theme": {
    "colors": {"primary": "#2563eb", "background": "#ffffff", "text": "#111827"},
    "typography": {"fontFamily": "Inter", "baseSize": "16px"},
    "spacing": {"unit": "16px"}
  },
  "root": {
    "id": "root",
    "type": "container",
    "props": {"layout": "column"},
    "children": [
      {"id": "title", "type": "heading", "props": {"level": 1}, "content": "Hello"},
      {"id": "body", "type": "text", "content": "Generated interface"},
      {"id": "cta", "type": "button", "props": {"variant": "primary"}, "content": "Continue"}
    ]
  }
}`

// MockCall records one request made against a MockClient.
type MockCall struct {
	Prompt  string
	Options CallOptions
	Stream  bool
}

// MockClient returns deterministic responses for local runs and tests.
type MockClient struct {
	// Response overrides the default response for every call.
	Response string
	// Err fails Invoke and Stream before any output.
	Err error
	// Chunks overrides how streamed output is split.
	Chunks []string
	// StreamErr is returned after the streamed chunks.
	StreamErr error
	// Handler, when set, computes the response for a call.
	Handler func(ctx context.Context, prompt string, opts CallOptions) (string, error)

	ModelID string

	mu    sync.Mutex
	calls []MockCall
}

// NewMockClient creates a mock client with default responses.
func NewMockClient() *MockClient {
	return &MockClient{ModelID: "mock-1"}
}

// MockProvider registers client under name. Every model in models (mock-1
// when empty) resolves to the same client regardless of credential.
func MockProvider(name string, client *MockClient, models ...string) ProviderSpec {
	if name == "" {
		name = mockName
	}
	if len(models) == 0 {
		models = []string{"mock-1"}
	}
	return ProviderSpec{
		Name:   name,
		Models: models,
		New: func(cfg Config) (Client, error) {
			return &mockHandle{MockClient: client, provider: name, model: cfg.Model}, nil
		},
	}
}

// Provider returns the provider identifier.
func (m *MockClient) Provider() string {
	return mockName
}

// Model returns the bound model.
func (m *MockClient) Model() string {
	if m.ModelID == "" {
		return "mock-1"
	}
	return m.ModelID
}

// Invoke returns a deterministic artifact for the prompt.
func (m *MockClient) Invoke(ctx context.Context, prompt string, opts ...CallOption) (*artifact.Artifact, error) {
	return m.invoke(ctx, m.Provider(), m.Model(), prompt, opts)
}

// Stream returns the response split into chunks.
func (m *MockClient) Stream(ctx context.Context, prompt string, opts ...CallOption) (*Stream, error) {
	return m.stream(ctx, prompt, opts)
}

// Calls returns a copy of the recorded calls.
func (m *MockClient) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockCall(nil), m.calls...)
}

// Prompts returns the prompts of the recorded calls.
func (m *MockClient) Prompts() []string {
	calls := m.Calls()
	prompts := make([]string, len(calls))
	for i, c := range calls {
		prompts[i] = c.Prompt
	}
	return prompts
}

func (m *MockClient) invoke(ctx context.Context, provider, model, prompt string, opts []CallOption) (*artifact.Artifact, error) {
	o := resolveOptions(opts)
	m.record(MockCall{Prompt: prompt, Options: o})
	if m.Err != nil {
		return nil, m.Err
	}
	content, err := m.respond(ctx, prompt, o)
	if err != nil {
		return nil, err
	}
	return artifact.New(content, provider, model, prompt), nil
}

func (m *MockClient) stream(ctx context.Context, prompt string, opts []CallOption) (*Stream, error) {
	o := resolveOptions(opts)
	m.record(MockCall{Prompt: prompt, Options: o, Stream: true})
	if m.Err != nil {
		return nil, m.Err
	}

	chunks := m.Chunks
	if chunks == nil {
		content, err := m.respond(ctx, prompt, o)
		if err != nil {
			return nil, err
		}
		chunks = splitChunks(content, 16)
	}
	return StreamFromChunks(ctx, append([]string(nil), chunks...), m.StreamErr), nil
}

func (m *MockClient) respond(ctx context.Context, prompt string, o CallOptions) (string, error) {
	if m.Handler != nil {
		return m.Handler(ctx, prompt, o)
	}
	if m.Response != "" {
		return m.Response, nil
	}
	if o.JSON {
		return MockDocument, nil
	}
	return MockDesign, nil
}

func (m *MockClient) record(c MockCall) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, c)
}

func splitChunks(s string, size int) []string {
	var chunks []string
	runes := []rune(s)
	for len(runes) > 0 {
		n := size
		if n > len(runes) {
			n = len(runes)
		}
		chunks = append(chunks, string(runes[:n]))
		runes = runes[n:]
	}
	return chunks
}

// mockHandle binds a shared MockClient to the provider and model it was
// built for.
type mockHandle struct {
	*MockClient
	provider string
	model    string
}

func (h *mockHandle) Provider() string { return h.provider }

func (h *mockHandle) Model() string { return h.model }

func (h *mockHandle) Invoke(ctx context.Context, prompt string, opts ...CallOption) (*artifact.Artifact, error) {
	return h.invoke(ctx, h.provider, h.model, prompt, opts)
}
