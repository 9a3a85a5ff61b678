// Package history provides the append-only record of prior repair attempts.
//
// A History is threaded by value through the repair state machine: each
// Append returns a new History and never mutates the receiver or any attempt
// already recorded. This keeps iterations free of aliasing between the
// orchestrator and the fixer, which both read the same record.
package history

import (
	"time"

	"github.com/webmend/webmend/internal/domain"
)

// History is the ordered record of failed attempts for one repair session.
// The zero value is not usable; create one with New.
type History struct {
	task     string
	attempts []domain.Attempt
	now      func() time.Time
}

// Option configures a History at creation time.
type Option func(*History)

// WithClock overrides the timestamp source (for testing).
func WithClock(now func() time.Time) Option {
	return func(h *History) {
		h.now = now
	}
}

// New creates an empty history for the given task description.
func New(task string, opts ...Option) History {
	h := History{
		task: task,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(&h)
	}
	return h
}

// Task returns the task description the session is repairing toward.
func (h History) Task() string {
	return h.task
}

// Len returns the number of recorded attempts.
func (h History) Len() int {
	return len(h.attempts)
}

// Append returns a new History with one more attempt recorded. The receiver
// is unchanged; past attempts are never mutated.
func (h History) Append(iteration int, scriptText, errorOutput string) History {
	attempt := domain.Attempt{
		Iteration:   iteration,
		ScriptText:  scriptText,
		ErrorOutput: errorOutput,
		Timestamp:   h.now().UTC(),
	}

	// Copy-on-append so two histories never share a grow-in-place backing array.
	attempts := make([]domain.Attempt, len(h.attempts), len(h.attempts)+1)
	copy(attempts, h.attempts)

	return History{
		task:     h.task,
		attempts: append(attempts, attempt),
		now:      h.now,
	}
}

// Attempts returns a copy of the recorded attempts in order.
func (h History) Attempts() []domain.Attempt {
	if len(h.attempts) == 0 {
		return nil
	}
	out := make([]domain.Attempt, len(h.attempts))
	copy(out, h.attempts)
	return out
}

// Last returns the most recent attempt and true, or a zero attempt and false
// when the history is empty.
func (h History) Last() (domain.Attempt, bool) {
	if len(h.attempts) == 0 {
		return domain.Attempt{}, false
	}
	return h.attempts[len(h.attempts)-1], true
}
