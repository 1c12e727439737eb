package adapter

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
)

// ErrStreamClosed is returned by Recv after Close.
var ErrStreamClosed = errors.New("stream closed")

// Stream is a finite, non-restartable sequence of text chunks produced by a
// model. The producing request is cancelled by Close; callers must call Close
// when they stop reading early.
type Stream struct {
	chunks <-chan string
	cancel context.CancelFunc

	// err is written by the producer before chunks is closed.
	err error

	mu        sync.Mutex
	closed    bool
	closeOnce sync.Once
}

// EmitFunc hands one chunk to the consumer. It returns an error once the
// stream has been cancelled; producers should stop and return it.
type EmitFunc func(chunk string) error

// NewStream runs produce in its own goroutine and exposes what it emits.
func NewStream(ctx context.Context, produce func(ctx context.Context, emit EmitFunc) error) *Stream {
	ctx, cancel := context.WithCancel(ctx)
	ch := make(chan string)
	s := &Stream{chunks: ch, cancel: cancel}

	go func() {
		defer close(ch)
		s.err = produce(ctx, func(chunk string) error {
			if chunk == "" {
				return nil
			}
			select {
			case ch <- chunk:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}()

	return s
}

// StreamFromChunks returns a stream that yields the given chunks and then err
// (io.EOF when err is nil).
func StreamFromChunks(ctx context.Context, chunks []string, err error) *Stream {
	return NewStream(ctx, func(ctx context.Context, emit EmitFunc) error {
		for _, chunk := range chunks {
			if emitErr := emit(chunk); emitErr != nil {
				return emitErr
			}
		}
		return err
	})
}

// Recv returns the next chunk. It returns io.EOF once the stream is exhausted
// and the producer's error if it failed.
func (s *Stream) Recv() (string, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return "", ErrStreamClosed
	}

	chunk, ok := <-s.chunks
	if ok {
		return chunk, nil
	}
	if s.err != nil {
		return "", s.err
	}
	return "", io.EOF
}

// Close cancels the producing request and releases its goroutine.
func (s *Stream) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()

		s.cancel()
		for range s.chunks {
		}
	})
	return nil
}

// Collect reads the stream to the end, closes it and returns the
// concatenated text.
func Collect(s *Stream) (string, error) {
	defer s.Close()

	var sb strings.Builder
	for {
		chunk, err := s.Recv()
		if errors.Is(err, io.EOF) {
			return sb.String(), nil
		}
		if err != nil {
			return sb.String(), err
		}
		sb.WriteString(chunk)
	}
}
