package daemon

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startDispatcher(t *testing.T) (*Dispatcher, context.CancelFunc) {
	t.Helper()
	d := NewDispatcher(8, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	go d.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-d.done
	})
	return d, cancel
}

func TestDispatcherRunsClosuresInOrder(t *testing.T) {
	d, _ := startDispatcher(t)

	var got []int
	for i := 0; i < 5; i++ {
		if !d.Post(func() { got = append(got, i) }) {
			t.Fatalf("post %d rejected", i)
		}
	}
	if err := d.Do(context.Background(), func() error { return nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("expected closures in order, got %v", got)
		}
	}
	if len(got) != 5 {
		t.Fatalf("expected 5 closures run, got %d", len(got))
	}
}

func TestDispatcherDoReturnsError(t *testing.T) {
	d, _ := startDispatcher(t)
	want := errors.New("boom")

	if err := d.Do(context.Background(), func() error { return want }); !errors.Is(err, want) {
		t.Fatalf("expected %v, got %v", want, err)
	}
}

func TestDispatcherSurvivesPanic(t *testing.T) {
	d, _ := startDispatcher(t)

	err := d.Do(context.Background(), func() error { panic("bad stack index") })
	if err == nil {
		t.Fatalf("expected panic reported as error")
	}

	ran := false
	if err := d.Do(context.Background(), func() error { ran = true; return nil }); err != nil || !ran {
		t.Fatalf("expected dispatcher to keep running, err=%v ran=%v", err, ran)
	}
}

func TestDispatcherRejectsWorkAfterStop(t *testing.T) {
	d := NewDispatcher(1, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	if d.Post(func() {}) {
		t.Fatalf("expected post rejected after stop")
	}
	if err := d.Do(context.Background(), func() error { return nil }); !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped, got %v", err)
	}
}

func TestDispatcherDoHonorsContext(t *testing.T) {
	d := NewDispatcher(1, testLogger())
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	// Nothing drains the queue, so the second Do cannot be accepted.
	d.Post(func() {})
	if err := d.Do(ctx, func() error { return nil }); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}
