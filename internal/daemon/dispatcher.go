package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrStopped is returned when work is submitted to a dispatcher that is no
// longer running.
var ErrStopped = errors.New("dispatcher stopped")

// Dispatcher serializes every access to the layout onto one goroutine. X
// events, hotkeys, timers and IPC requests all post closures here.
type Dispatcher struct {
	queue  chan func()
	done   chan struct{}
	logger *slog.Logger
}

// NewDispatcher creates a dispatcher with a queue of the given depth.
func NewDispatcher(depth int, logger *slog.Logger) *Dispatcher {
	if depth < 1 {
		depth = 64
	}
	return &Dispatcher{
		queue:  make(chan func(), depth),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Run executes posted closures until ctx is cancelled. Blocks.
func (d *Dispatcher) Run(ctx context.Context) {
	defer close(d.done)
	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-d.queue:
			d.run(fn)
		}
	}
}

// run executes one closure. A panic is logged and the loop continues.
func (d *Dispatcher) run(fn func()) {
	defer func() {
		if err := recover(); err != nil {
			d.logger.Error("dispatcher panic recovered", "error", err)
		}
	}()
	fn()
}

// Post queues fn without waiting for it. It reports false once the
// dispatcher stopped.
func (d *Dispatcher) Post(fn func()) bool {
	select {
	case <-d.done:
		return false
	default:
	}
	select {
	case d.queue <- fn:
		return true
	case <-d.done:
		return false
	}
}

// Do runs fn on the dispatcher goroutine and waits for its result.
func (d *Dispatcher) Do(ctx context.Context, fn func() error) error {
	result := make(chan error, 1)
	wrapped := func() {
		defer func() {
			if err := recover(); err != nil {
				result <- fmt.Errorf("panic: %v", err)
				panic(err)
			}
		}()
		result <- fn()
	}

	select {
	case d.queue <- wrapped:
	case <-d.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-result:
		return err
	case <-d.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Poster adapts the dispatcher to callbacks that only need to queue work.
func (d *Dispatcher) Poster() func(func()) {
	return func(fn func()) {
		if !d.Post(fn) {
			d.logger.Debug("dropping work posted after shutdown")
		}
	}
}
