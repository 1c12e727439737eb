package mcpserver

import (
	"context"
	"errors"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"github.com/zen-systems/genui/pkg/adapter"
	"github.com/zen-systems/genui/pkg/pipeline"
	"github.com/zen-systems/genui/pkg/prompt"
	"github.com/zen-systems/genui/pkg/stage"
)

// GenerateUIInput is the input of the generate_ui tool.
type GenerateUIInput struct {
	Content     string `json:"content" jsonschema:"the content to build an interface for"`
	Design      string `json:"design,omitempty" jsonschema:"design context such as brand, tone or layout preferences"`
	DesignModel string `json:"designModel,omitempty" jsonschema:"model or alias for design analysis"`
	UIModel     string `json:"uiModel,omitempty" jsonschema:"model or alias for UI generation"`
}

// GenerateUIOutput is the structured result of generate_ui.
type GenerateUIOutput struct {
	Document        any    `json:"document" jsonschema:"the generated UI document with theme and root"`
	Design          string `json:"design" jsonschema:"the design specification produced by design analysis"`
	ExecutionMillis int64  `json:"executionMillis"`
}

// AnalyzeContentInput is the input of the analyze_content tool.
type AnalyzeContentInput struct {
	Content       string `json:"content" jsonschema:"the content to analyze"`
	DesignContext string `json:"designContext,omitempty" jsonschema:"design context; a neutral default is used when empty"`
	DesignModel   string `json:"designModel,omitempty" jsonschema:"model or alias for design analysis"`
}

// AnalyzeContentOutput is the structured result of analyze_content.
type AnalyzeContentOutput struct {
	Design   string `json:"design"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

// ResolveFunc maps requested model names (possibly empty or aliases) to a
// models override carrying credentials.
type ResolveFunc func(designModel, uiModel string) *pipeline.ModelsConfig

// Options configures a Service.
type Options struct {
	Factory  *adapter.Factory
	Defaults pipeline.ModelsConfig
	Prompts  *prompt.Registry
	Logger   zerolog.Logger
	Resolve  ResolveFunc
}

// Service implements the MCP tool handlers.
type Service struct {
	opts Options
}

// NewService creates a Service.
func NewService(opts Options) *Service {
	if opts.Factory == nil {
		opts.Factory = adapter.DefaultFactory()
	}
	if opts.Prompts == nil {
		opts.Prompts = prompt.NewRegistry()
	}
	return &Service{opts: opts}
}

// GenerateUI runs the full pipeline.
func (s *Service) GenerateUI(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GenerateUIInput,
) (*mcp.CallToolResult, GenerateUIOutput, error) {
	if strings.TrimSpace(input.Content) == "" {
		return nil, GenerateUIOutput{}, errors.New("content is required")
	}

	orch := s.orchestrator()
	res := orch.Generate(ctx, pipeline.Params{
		Content:      input.Content,
		Design:       input.Design,
		ModelsConfig: s.override(input.DesignModel, input.UIModel),
	})
	if !res.Success {
		return nil, GenerateUIOutput{}, errors.New(res.Error)
	}

	doc, err := res.Data.Value()
	if err != nil {
		return nil, GenerateUIOutput{}, err
	}

	out := GenerateUIOutput{
		Document:        doc,
		ExecutionMillis: res.ExecutionTime.Milliseconds(),
	}
	if d := orch.IntermediateResults().DesignAnalysis; d != nil {
		out.Design = d.Design
	}
	return nil, out, nil
}

// AnalyzeContent runs design analysis only.
func (s *Service) AnalyzeContent(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnalyzeContentInput,
) (*mcp.CallToolResult, AnalyzeContentOutput, error) {
	if strings.TrimSpace(input.Content) == "" {
		return nil, AnalyzeContentOutput{}, errors.New("content is required")
	}

	out, err := s.orchestrator().Analyze(ctx, stage.DesignInput{
		Content:       input.Content,
		DesignContext: input.DesignContext,
	}, s.override(input.DesignModel, ""))
	if err != nil {
		return nil, AnalyzeContentOutput{}, err
	}

	result := AnalyzeContentOutput{Design: out.Design}
	if out.Artifact != nil {
		result.Provider = out.Artifact.Provider
		result.Model = out.Artifact.Model
	}
	return nil, result, nil
}

func (s *Service) orchestrator() *pipeline.Orchestrator {
	return pipeline.New(
		pipeline.WithFactory(s.opts.Factory),
		pipeline.WithDefaults(s.opts.Defaults),
		pipeline.WithPrompts(s.opts.Prompts),
		pipeline.WithLogger(s.opts.Logger),
	)
}

func (s *Service) override(designModel, uiModel string) *pipeline.ModelsConfig {
	if designModel == "" && uiModel == "" {
		return nil
	}
	if s.opts.Resolve != nil {
		return s.opts.Resolve(designModel, uiModel)
	}
	return &pipeline.ModelsConfig{
		DesignModel: adapter.Config{Model: designModel},
		UIModel:     adapter.Config{Model: uiModel},
	}
}
