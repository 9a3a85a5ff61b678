package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/webmend/webmend/internal/errors"
)

func TestIsValidOutputFormat(t *testing.T) {
	assert.True(t, IsValidOutputFormat(OutputText))
	assert.True(t, IsValidOutputFormat(OutputJSON))
	assert.False(t, IsValidOutputFormat("xml"))
	assert.False(t, IsValidOutputFormat(""))
}

func TestExitCodeForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil error", err: nil, want: ExitSuccess},
		{name: "generic error", err: assert.AnError, want: ExitError},
		{name: "invalid output format", err: errors.ErrInvalidOutputFormat, want: ExitInvalidInput},
		{name: "missing endpoint", err: errors.ErrMissingEndpoint, want: ExitInvalidInput},
		{name: "missing task", err: errors.ErrMissingTask, want: ExitInvalidInput},
		{name: "wrapped missing task", err: errors.Wrap(errors.ErrMissingTask, "pass the task"), want: ExitInvalidInput},
		{name: "iterations exhausted", err: errors.ErrIterationsExhausted, want: ExitTaskFailed},
		{name: "endpoint unreachable", err: errors.Wrap(errors.ErrEndpointUnreachable, "ECONNREFUSED"), want: ExitTaskFailed},
		{name: "cobra unknown flag", err: errors.Wrap(assert.AnError, "unknown flag: --bogus"), want: ExitInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCodeForError(tt.err))
		})
	}
}
