package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/zen-systems/genui/pkg/adapter"
	"github.com/zen-systems/genui/pkg/metrics"
	"github.com/zen-systems/genui/pkg/prompt"
	"github.com/zen-systems/genui/pkg/stage"
)

// ErrRunInProgress is returned when a run is started on an orchestrator
// that is already running one. Use one orchestrator per concurrent run.
//
// GenerateStream holds the run only until it returns the stream. Reading a
// returned stream does not block another run, and that run replaces the
// execution context the stream's run left behind.
var ErrRunInProgress = errors.New("orchestrator already has a run in progress")

// Run modes used in logs and metrics.
const (
	ModeStandard = "standard"
	ModeComposed = "composed"
	ModeStream   = "stream"
)

// Orchestrator runs design analysis and UI generation in sequence and
// records the run state in an ExecutionContext.
type Orchestrator struct {
	factory  *adapter.Factory
	defaults ModelsConfig
	prompts  *prompt.Registry
	log      zerolog.Logger
	tracer   trace.Tracer

	chainOnce sync.Once
	chain     compose.Runnable[*composedState, *composedState]
	chainErr  error

	mu      sync.Mutex
	running bool
	state   ExecutionContext
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithFactory sets the model factory. The default has every networked
// provider registered.
func WithFactory(f *adapter.Factory) Option {
	return func(o *Orchestrator) {
		if f != nil {
			o.factory = f
		}
	}
}

// WithDefaults sets the models used when a run does not override them.
func WithDefaults(m ModelsConfig) Option {
	return func(o *Orchestrator) {
		o.defaults = m
	}
}

// WithPrompts shares a prompt registry between orchestrators.
func WithPrompts(r *prompt.Registry) Option {
	return func(o *Orchestrator) {
		if r != nil {
			o.prompts = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *Orchestrator) {
		o.log = l
	}
}

// WithTracer sets the tracer used for run and stage spans.
func WithTracer(t trace.Tracer) Option {
	return func(o *Orchestrator) {
		if t != nil {
			o.tracer = t
		}
	}
}

// New creates an orchestrator with a fresh execution context.
func New(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		factory:  adapter.DefaultFactory(),
		defaults: DefaultModelsConfig(),
		log:      zerolog.Nop(),
		tracer:   otel.Tracer("github.com/zen-systems/genui/pkg/pipeline"),
		state:    newExecutionContext(time.Now()),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.prompts == nil {
		o.prompts = prompt.NewRegistry()
	}
	return o
}

// Generate runs both stages and reports the outcome as a Result. It never
// returns an error or panics; failures are reported in Result.Error and the
// stage outputs recorded before the failure stay available through
// IntermediateResults.
func (o *Orchestrator) Generate(ctx context.Context, p Params) (res Result) {
	start := time.Now()
	if err := o.begin(start); err != nil {
		return failure(err, start)
	}
	defer o.end()

	ctx, span := o.tracer.Start(ctx, "pipeline.generate")
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			res = failure(fmt.Errorf("pipeline panic: %v", r), start)
			o.finish(span, ModeStandard, res)
		}
	}()

	design, ui, err := o.buildStages(p.ModelsConfig)
	if err != nil {
		res = failure(err, start)
		o.finish(span, ModeStandard, res)
		return res
	}

	res = o.runStages(ctx, design, ui, p, start)
	o.finish(span, ModeStandard, res)
	return res
}

func (o *Orchestrator) runStages(ctx context.Context, design *stage.DesignAnalysis, ui *stage.UIGeneration, p Params, start time.Time) Result {
	o.advance(PhaseDesignAnalysis)
	designOut, err := o.analyze(ctx, design, stage.DesignInput{Content: p.Content, DesignContext: p.Design})
	if err != nil {
		return failure(err, start)
	}
	o.storeDesign(designOut)

	o.advance(PhaseGenUI)
	uiOut, err := o.generateUI(ctx, ui, stage.UIInput{Content: p.Content, Design: designOut.Design})
	if err != nil {
		return failure(err, start)
	}
	o.storeUI(uiOut)

	o.advance(PhaseCompleted)
	return success(uiOut.Document.Clone(), start)
}

// GenerateStream runs design analysis to completion and returns the UI
// generation chunk stream. Errors are returned, not folded into a Result.
// The genUI intermediate result is never populated by this path; the caller
// owns accumulation and parsing (see stage.Parse). The caller must Close
// the stream. The orchestrator is free for another run as soon as the
// stream is returned, even while it is still being read.
func (o *Orchestrator) GenerateStream(ctx context.Context, p Params) (stream *adapter.Stream, err error) {
	start := time.Now()
	if err := o.begin(start); err != nil {
		return nil, fmt.Errorf("streaming generation failed: %w", err)
	}
	defer o.end()

	ctx, span := o.tracer.Start(ctx, "pipeline.generate_stream")
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			stream, err = nil, fmt.Errorf("pipeline panic: %v", r)
		}
		var errMsg string
		if err != nil {
			err = fmt.Errorf("streaming generation failed: %w", err)
			span.RecordError(err)
			errMsg = err.Error()
		}
		metrics.ObserveGeneration(ModeStream, err == nil, elapsed(start))
		o.logRun(ModeStream, elapsed(start), errMsg)
	}()

	design, ui, err := o.buildStages(p.ModelsConfig)
	if err != nil {
		return nil, err
	}

	o.advance(PhaseDesignAnalysis)
	designOut, err := o.analyze(ctx, design, stage.DesignInput{Content: p.Content, DesignContext: p.Design})
	if err != nil {
		return nil, err
	}
	o.storeDesign(designOut)

	o.advance(PhaseGenUI)
	return ui.GenerateStream(ctx, stage.UIInput{Content: p.Content, Design: designOut.Design})
}

// Analyze runs only the design-analysis stage. It does not start a run and
// leaves the execution context untouched.
func (o *Orchestrator) Analyze(ctx context.Context, in stage.DesignInput, models *ModelsConfig) (*stage.DesignOutput, error) {
	cfg := o.defaults.Merge(models)
	client, err := o.factory.Build(cfg.DesignModel)
	if err != nil {
		return nil, fmt.Errorf("design model: %w", err)
	}
	return o.analyze(ctx, stage.NewDesignAnalysis(client, o.prompts), in)
}

// ExecutionContext returns a deep copy of the current run state.
func (o *Orchestrator) ExecutionContext() ExecutionContext {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.Clone()
}

// IntermediateResults returns a deep copy of the recorded stage outputs.
func (o *Orchestrator) IntermediateResults() IntermediateResults {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.IntermediateResults.Clone()
}

// Factory returns the model factory.
func (o *Orchestrator) Factory() *adapter.Factory {
	return o.factory
}

// Defaults returns the default models.
func (o *Orchestrator) Defaults() ModelsConfig {
	return o.defaults
}

func (o *Orchestrator) buildStages(override *ModelsConfig) (*stage.DesignAnalysis, *stage.UIGeneration, error) {
	cfg := o.defaults.Merge(override)

	designClient, err := o.factory.Build(cfg.DesignModel)
	if err != nil {
		return nil, nil, fmt.Errorf("design model: %w", err)
	}
	uiClient, err := o.factory.Build(cfg.UIModel)
	if err != nil {
		return nil, nil, fmt.Errorf("ui model: %w", err)
	}

	return stage.NewDesignAnalysis(designClient, o.prompts), stage.NewUIGeneration(uiClient, o.prompts), nil
}

func (o *Orchestrator) analyze(ctx context.Context, s *stage.DesignAnalysis, in stage.DesignInput) (*stage.DesignOutput, error) {
	var out *stage.DesignOutput
	err := o.observe(ctx, stage.NameDesignAnalysis, s.Client(), func(ctx context.Context) error {
		var err error
		out, err = s.Analyze(ctx, in)
		return err
	})
	return out, err
}

func (o *Orchestrator) generateUI(ctx context.Context, s *stage.UIGeneration, in stage.UIInput) (*stage.UIOutput, error) {
	var out *stage.UIOutput
	err := o.observe(ctx, stage.NameUIGeneration, s.Client(), func(ctx context.Context) error {
		var err error
		out, err = s.Generate(ctx, in)
		return err
	})
	return out, err
}

// begin starts a run: it resets the execution context and marks the
// orchestrator busy.
func (o *Orchestrator) begin(start time.Time) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.running {
		return ErrRunInProgress
	}
	o.running = true
	o.state = newExecutionContext(start)
	return nil
}

func (o *Orchestrator) end() {
	o.mu.Lock()
	o.running = false
	o.mu.Unlock()
}

// advance moves the phase forward; it never moves it back.
func (o *Orchestrator) advance(p Phase) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if p > o.state.CurrentPhase {
		o.state.CurrentPhase = p
	}
}

func (o *Orchestrator) storeDesign(out *stage.DesignOutput) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state.IntermediateResults.DesignAnalysis = out.Clone()
}

func (o *Orchestrator) storeUI(out *stage.UIOutput) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state.IntermediateResults.GenUI = out.Clone()
}

func (o *Orchestrator) phase() Phase {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.CurrentPhase
}
