package stage

import (
	"context"
	"strings"

	"github.com/zen-systems/genui/pkg/adapter"
	"github.com/zen-systems/genui/pkg/artifact"
	"github.com/zen-systems/genui/pkg/prompt"
)

// DefaultDesignContext is used when the caller gives no design brief.
const DefaultDesignContext = "Modern, clean design with good usability"

// DesignInput is the input of the design-analysis stage.
type DesignInput struct {
	Content       string `json:"content"`
	DesignContext string `json:"designContext,omitempty"`
}

// DesignOutput is the result of the design-analysis stage.
type DesignOutput struct {
	Design   string             `json:"design"`
	Artifact *artifact.Artifact `json:"artifact,omitempty"`
}

// Clone returns a deep copy.
func (o *DesignOutput) Clone() *DesignOutput {
	if o == nil {
		return nil
	}
	return &DesignOutput{Design: o.Design, Artifact: o.Artifact.Clone()}
}

// DesignAnalysis turns content and a design brief into a design specification.
type DesignAnalysis struct {
	client  adapter.Client
	prompts *prompt.Registry
}

// NewDesignAnalysis creates the stage. A nil registry uses a private one.
func NewDesignAnalysis(client adapter.Client, prompts *prompt.Registry) *DesignAnalysis {
	if prompts == nil {
		prompts = prompt.NewRegistry()
	}
	return &DesignAnalysis{client: client, prompts: prompts}
}

// Name returns the stage name.
func (s *DesignAnalysis) Name() string {
	return NameDesignAnalysis
}

// Client returns the wrapped model client.
func (s *DesignAnalysis) Client() adapter.Client {
	return s.client
}

// Analyze renders the design-analysis prompt, invokes the model and returns
// the trimmed text.
func (s *DesignAnalysis) Analyze(ctx context.Context, in DesignInput) (*DesignOutput, error) {
	rendered, err := s.render(ctx, in)
	if err != nil {
		return nil, &StageExecutionError{Stage: NameDesignAnalysis, Err: err}
	}

	art, err := s.client.Invoke(ctx, rendered)
	if err != nil {
		return nil, &StageExecutionError{Stage: NameDesignAnalysis, Err: err}
	}

	design := strings.TrimSpace(art.Content)
	return &DesignOutput{Design: design, Artifact: art.WithContent(design)}, nil
}

// AnalyzeStream renders the same prompt and returns the model's chunk stream.
func (s *DesignAnalysis) AnalyzeStream(ctx context.Context, in DesignInput) (*adapter.Stream, error) {
	rendered, err := s.render(ctx, in)
	if err != nil {
		return nil, &StageExecutionError{Stage: NameDesignAnalysis, Streaming: true, Err: err}
	}

	return openStream(ctx, NameDesignAnalysis, func(ctx context.Context) (*adapter.Stream, error) {
		return s.client.Stream(ctx, rendered)
	})
}

func (s *DesignAnalysis) render(ctx context.Context, in DesignInput) (string, error) {
	if strings.TrimSpace(in.Content) == "" {
		return "", ErrEmptyContent
	}
	designContext := in.DesignContext
	if strings.TrimSpace(designContext) == "" {
		designContext = DefaultDesignContext
	}
	return s.prompts.Render(ctx, prompt.DesignAnalysisV1, map[string]any{
		"content":       in.Content,
		"designContext": designContext,
	})
}
