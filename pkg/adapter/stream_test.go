package adapter

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"
)

func TestStreamYieldsChunksThenEOF(t *testing.T) {
	s := StreamFromChunks(context.Background(), []string{"a", "", "b", "c"}, nil)
	defer s.Close()

	var got []string
	for {
		chunk, err := s.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("recv: %v", err)
		}
		got = append(got, chunk)
	}
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("chunks = %v", got)
	}
}

func TestStreamReportsProducerError(t *testing.T) {
	boom := errors.New("connection reset")
	text, err := Collect(StreamFromChunks(context.Background(), []string{"par", "tial"}, boom))
	if !errors.Is(err, boom) {
		t.Fatalf("expected producer error, got %v", err)
	}
	if text != "partial" {
		t.Fatalf("text = %q", text)
	}
}

func TestStreamCloseCancelsProducer(t *testing.T) {
	done := make(chan error, 1)
	s := NewStream(context.Background(), func(ctx context.Context, emit EmitFunc) error {
		for {
			if err := emit("x"); err != nil {
				done <- err
				return err
			}
		}
	})

	if _, err := s.Recv(); err != nil {
		t.Fatalf("recv: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("producer not cancelled")
	}

	if _, err := s.Recv(); !errors.Is(err, ErrStreamClosed) {
		t.Fatalf("expected ErrStreamClosed, got %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestStreamHonoursParentContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewStream(ctx, func(ctx context.Context, emit EmitFunc) error {
		<-ctx.Done()
		return ctx.Err()
	})
	cancel()

	_, err := s.Recv()
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestMockClientStreamSplitsResponse(t *testing.T) {
	mock := &MockClient{Response: "abcdefghijklmnopqrstuvwxyz"}
	s, err := mock.Stream(context.Background(), "p")
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	text, err := Collect(s)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if text != mock.Response {
		t.Fatalf("text = %q", text)
	}
	if calls := mock.Calls(); len(calls) != 1 || !calls[0].Stream {
		t.Fatalf("calls = %+v", calls)
	}
}

func TestMockClientErr(t *testing.T) {
	boom := errors.New("rate limited")
	mock := &MockClient{Err: boom}
	if _, err := mock.Invoke(context.Background(), "p"); !errors.Is(err, boom) {
		t.Fatalf("invoke err = %v", err)
	}
	if _, err := mock.Stream(context.Background(), "p"); !errors.Is(err, boom) {
		t.Fatalf("stream err = %v", err)
	}
}
