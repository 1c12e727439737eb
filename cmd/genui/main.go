package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace"

	"github.com/zen-systems/genui/pkg/adapter"
	"github.com/zen-systems/genui/pkg/config"
	"github.com/zen-systems/genui/pkg/logger"
	"github.com/zen-systems/genui/pkg/pipeline"
	"github.com/zen-systems/genui/pkg/prompt"
	"github.com/zen-systems/genui/pkg/tracer"
)

// version is set by the linker at build time.
var version = "dev"

const mockModel = "mock-1"

var (
	configFile string
	mockFlag   bool
	logLevel   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "genui",
		Short: "Generate UI documents from content with a two-stage model pipeline",
		Long: `genui turns content into a UI document. A design model first analyzes
	the content and produces a design specification; a UI model then renders
	that specification as a JSON document with a theme and a component tree.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to config file (default ~/.genui/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&mockFlag, "mock", false, "use the offline mock provider for both stages")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(streamCmd())
	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(modelsCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(mcpCmd())
	rootCmd.AddCommand(verifyCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// app holds what every command shares.
type app struct {
	cfg     *config.Config
	aliases *config.ModelAliases
	factory *adapter.Factory
	prompts *prompt.Registry
	log     zerolog.Logger
}

func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	aliases, err := config.LoadAliasesFromDir(cfg.ConfigDir)
	if err != nil {
		return nil, err
	}

	level := cfg.Log.Level
	if logLevel != "" {
		level = logLevel
	}

	factory := adapter.DefaultFactory()
	if mockFlag {
		factory.Register(adapter.MockProvider("mock", adapter.NewMockClient(), mockModel))
	}

	return &app{
		cfg:     cfg,
		aliases: aliases,
		factory: factory,
		prompts: prompt.NewRegistry(),
		log:     logger.New(logger.Options{Level: level, Format: cfg.Log.Format}),
	}, nil
}

func loadConfig() (*config.Config, error) {
	if configFile != "" {
		return config.LoadFrom(configFile)
	}
	return config.Load()
}

// models resolves the models for a run. Empty names keep the configured
// defaults; --mock replaces both stages.
func (a *app) models(designModel, uiModel string) pipeline.ModelsConfig {
	if mockFlag {
		mock := adapter.Config{APIKey: "mock", Model: mockModel}
		return pipeline.ModelsConfig{DesignModel: mock, UIModel: mock}
	}
	return a.cfg.PipelineModels(a.factory, a.aliases, designModel, uiModel)
}

func (a *app) tracer(ctx context.Context) (trace.Tracer, func(context.Context) error, error) {
	t, shutdown, err := tracer.Init(ctx, a.cfg.TracerConfig())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init tracing: %w", err)
	}
	return t, shutdown, nil
}

func (a *app) orchestrator(t trace.Tracer, models pipeline.ModelsConfig) *pipeline.Orchestrator {
	return pipeline.New(
		pipeline.WithFactory(a.factory),
		pipeline.WithDefaults(models),
		pipeline.WithPrompts(a.prompts),
		pipeline.WithLogger(a.log),
		pipeline.WithTracer(t),
	)
}

// readContent returns the content argument, the content file or stdin, in
// that order of preference.
func readContent(args []string, file string, stdin io.Reader) (string, error) {
	var content string
	switch {
	case len(args) > 0:
		content = args[0]
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read content file: %w", err)
		}
		content = string(data)
	default:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		content = string(data)
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return "", fmt.Errorf("content is required")
	}
	return content, nil
}
