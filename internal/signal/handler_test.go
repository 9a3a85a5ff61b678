package signal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFireCancelsContext(t *testing.T) {
	h := NewHandler(context.Background())
	defer h.Stop()

	h.fire()

	require.Error(t, h.Context().Err())
	assert.Equal(t, context.Canceled, h.Context().Err())
}

func TestFireClosesInterruptedChannel(t *testing.T) {
	h := NewHandler(context.Background())
	defer h.Stop()

	h.fire()

	select {
	case <-h.Interrupted():
	default:
		t.Fatal("interrupted channel should be closed after a signal")
	}
}

func TestFireIsIdempotent(t *testing.T) {
	h := NewHandler(context.Background())
	defer h.Stop()

	h.fire()
	h.fire()
	h.fire()

	require.Error(t, h.Context().Err())
}

func TestStopCancelsContext(t *testing.T) {
	h := NewHandler(context.Background())
	h.Stop()
	h.Stop()

	assert.Error(t, h.Context().Err())
}

func TestInterruptedOpenInitially(t *testing.T) {
	h := NewHandler(context.Background())
	defer h.Stop()

	select {
	case <-h.Interrupted():
		t.Fatal("interrupted channel should be open before any signal")
	default:
	}
	assert.NoError(t, h.Context().Err())
}

func TestParentCancellationPropagates(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	h := NewHandler(parent)
	defer h.Stop()

	cancel()

	assert.Error(t, h.Context().Err())
}
