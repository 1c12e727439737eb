package stage

import (
	"context"
	"strings"

	"github.com/zen-systems/genui/pkg/adapter"
	"github.com/zen-systems/genui/pkg/artifact"
	"github.com/zen-systems/genui/pkg/prompt"
	"github.com/zen-systems/genui/pkg/schema"
)

// UIInput is the input of the UI-generation stage.
type UIInput struct {
	Content string `json:"content"`
	Design  string `json:"design"`
}

// UIOutput is the parsed result of the UI-generation stage.
type UIOutput struct {
	Document *schema.Document  `json:"document"`
	Artifact *artifact.Artifact `json:"artifact,omitempty"`
}

// Clone returns a deep copy.
func (o *UIOutput) Clone() *UIOutput {
	if o == nil {
		return nil
	}
	return &UIOutput{Document: o.Document.Clone(), Artifact: o.Artifact.Clone()}
}

// UIGeneration turns content and a design specification into a UI document.
type UIGeneration struct {
	client  adapter.Client
	prompts *prompt.Registry
}

// NewUIGeneration creates the stage. A nil registry uses a private one.
func NewUIGeneration(client adapter.Client, prompts *prompt.Registry) *UIGeneration {
	if prompts == nil {
		prompts = prompt.NewRegistry()
	}
	return &UIGeneration{client: client, prompts: prompts}
}

// Name returns the stage name.
func (s *UIGeneration) Name() string {
	return NameUIGeneration
}

// Client returns the wrapped model client.
func (s *UIGeneration) Client() adapter.Client {
	return s.client
}

// Generate invokes the model in JSON mode and parses its output. Any
// well-formed JSON value is accepted.
func (s *UIGeneration) Generate(ctx context.Context, in UIInput) (*UIOutput, error) {
	rendered, err := s.render(ctx, in)
	if err != nil {
		return nil, &StageExecutionError{Stage: NameUIGeneration, Err: err}
	}

	art, err := s.client.Invoke(ctx, rendered, adapter.WithJSON())
	if err != nil {
		return nil, &StageExecutionError{Stage: NameUIGeneration, Err: err}
	}

	doc, err := schema.Parse(art.Content)
	if err != nil {
		return nil, &MalformedOutputError{Raw: art.Content, Err: err}
	}
	return &UIOutput{Document: doc, Artifact: art}, nil
}

// GenerateStream returns the raw chunk stream. The caller accumulates and
// parses it, for example with Parse. A failure after the first chunk is
// returned by Recv as a streaming StageExecutionError.
func (s *UIGeneration) GenerateStream(ctx context.Context, in UIInput) (*adapter.Stream, error) {
	rendered, err := s.render(ctx, in)
	if err != nil {
		return nil, &StageExecutionError{Stage: NameUIGeneration, Streaming: true, Err: err}
	}

	return openStream(ctx, NameUIGeneration, func(ctx context.Context) (*adapter.Stream, error) {
		return s.client.Stream(ctx, rendered, adapter.WithJSON())
	})
}

// Parse converts accumulated stream text into a UI output.
func Parse(raw string) (*UIOutput, error) {
	doc, err := schema.Parse(raw)
	if err != nil {
		return nil, &MalformedOutputError{Raw: raw, Err: err}
	}
	return &UIOutput{Document: doc}, nil
}

func (s *UIGeneration) render(ctx context.Context, in UIInput) (string, error) {
	if strings.TrimSpace(in.Content) == "" {
		return "", ErrEmptyContent
	}
	if strings.TrimSpace(in.Design) == "" {
		return "", ErrEmptyDesign
	}
	return s.prompts.Render(ctx, prompt.GenUIV1, map[string]any{
		"content": in.Content,
		"design":  in.Design,
	})
}
