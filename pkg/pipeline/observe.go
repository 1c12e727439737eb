package pipeline

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/zen-systems/genui/pkg/adapter"
	"github.com/zen-systems/genui/pkg/metrics"
)

// observe runs fn inside a stage span and records its duration.
func (o *Orchestrator) observe(ctx context.Context, name string, client adapter.Client, fn func(ctx context.Context) error) error {
	ctx, span := o.tracer.Start(ctx, "stage."+name, trace.WithAttributes(
		attribute.String("genui.stage", name),
		attribute.String("genui.provider", client.Provider()),
		attribute.String("genui.model", client.Model()),
	))
	defer span.End()

	o.log.Debug().
		Str("stage", name).
		Str("provider", client.Provider()).
		Str("model", client.Model()).
		Msg("stage started")

	start := time.Now()
	err := fn(ctx)
	d := time.Since(start)
	metrics.ObserveStage(name, err == nil, d)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		o.log.Warn().
			Err(err).
			Str("stage", name).
			Str("model", client.Model()).
			Dur("duration", d).
			Msg("stage failed")
		return err
	}

	o.log.Info().
		Str("stage", name).
		Str("model", client.Model()).
		Dur("duration", d).
		Msg("stage completed")
	return nil
}

// finish closes out a Result-returning run.
func (o *Orchestrator) finish(span trace.Span, mode string, res Result) {
	if !res.Success {
		span.SetStatus(codes.Error, res.Error)
	}
	span.SetAttributes(
		attribute.String("genui.mode", mode),
		attribute.Bool("genui.success", res.Success),
		attribute.String("genui.phase", o.phase().String()),
	)
	metrics.ObserveGeneration(mode, res.Success, res.ExecutionTime)
	o.logRun(mode, res.ExecutionTime, res.Error)
}

// logRun logs the end of a run; errMsg is empty on success.
func (o *Orchestrator) logRun(mode string, d time.Duration, errMsg string) {
	ev := o.log.Info()
	if errMsg != "" {
		ev = o.log.Error().Str("error", errMsg)
	}
	ev.Str("mode", mode).
		Str("phase", o.phase().String()).
		Dur("duration", d).
		Msg("generation finished")
}
