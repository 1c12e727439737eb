package stage

import (
	"context"
	"errors"
	"io"

	"github.com/zen-systems/genui/pkg/adapter"
)

// openStream starts a model stream whose mid-stream failures surface as
// streaming StageExecutionErrors for the named stage, like the errors
// returned before the first chunk.
func openStream(ctx context.Context, name string, open func(context.Context) (*adapter.Stream, error)) (*adapter.Stream, error) {
	inner, cancel := context.WithCancel(ctx)
	src, err := open(inner)
	if err != nil {
		cancel()
		return nil, &StageExecutionError{Stage: name, Streaming: true, Err: err}
	}

	return adapter.NewStream(ctx, func(ctx context.Context, emit adapter.EmitFunc) error {
		stop := context.AfterFunc(ctx, cancel)
		defer stop()
		defer cancel()
		defer src.Close()

		for {
			chunk, err := src.Recv()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return &StageExecutionError{Stage: name, Streaming: true, Err: err}
			}
			if err := emit(chunk); err != nil {
				return err
			}
		}
	}), nil
}
