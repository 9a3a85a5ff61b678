// Package signal wires Ctrl+C into context cancellation for CLI commands.
//
// Import rules:
//   - CAN import: std lib only
//   - MUST NOT import: internal packages (to avoid circular dependencies)
package signal

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Handler cancels a derived context when SIGINT or SIGTERM arrives. The
// subprocess layer reacts to that cancellation with its own SIGTERM-then-kill
// escalation, so one Ctrl+C tears the whole session down cleanly.
type Handler struct {
	ctx         context.Context //nolint:containedctx // handler owns the context lifecycle
	cancel      context.CancelFunc
	interrupted chan struct{}
	stop        chan struct{}
	sigs        chan os.Signal

	fireOnce sync.Once
	stopOnce sync.Once
}

// NewHandler installs the signal listener and returns the handler. Call Stop
// when the command finishes.
func NewHandler(parent context.Context) *Handler {
	ctx, cancel := context.WithCancel(parent)
	h := &Handler{
		ctx:         ctx,
		cancel:      cancel,
		interrupted: make(chan struct{}),
		stop:        make(chan struct{}),
		// Buffered so signal.Notify never drops a signal while we are busy.
		sigs: make(chan os.Signal, 1),
	}

	signal.Notify(h.sigs, syscall.SIGINT, syscall.SIGTERM)
	go h.run()

	return h
}

// Context returns the cancellable context to thread through the session.
func (h *Handler) Context() context.Context {
	return h.ctx
}

// Interrupted returns a channel that closes once a signal has been received.
// Commands use it to distinguish "user interrupted" from ordinary failure.
func (h *Handler) Interrupted() <-chan struct{} {
	return h.interrupted
}

// Stop uninstalls the listener and cancels the context. Safe to call more
// than once.
func (h *Handler) Stop() {
	h.stopOnce.Do(func() {
		signal.Stop(h.sigs)
		close(h.stop)
		h.cancel()
	})
}

// fire records the interruption exactly once.
func (h *Handler) fire() {
	h.fireOnce.Do(func() {
		h.cancel()
		close(h.interrupted)
	})
}

func (h *Handler) run() {
	for {
		select {
		case <-h.ctx.Done():
			return
		case <-h.stop:
			return
		case <-h.sigs:
			// Later signals are drained but have no further effect.
			h.fire()
		}
	}
}
