package probe

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webmend/webmend/internal/config"
	"github.com/webmend/webmend/internal/constants"
	"github.com/webmend/webmend/internal/script"
)

// scriptedRunner returns one canned response per attempt, repeating the last
// response once the script runs out.
type scriptedRunner struct {
	responses []runnerResponse
	commands  []script.Command
}

type runnerResponse struct {
	stdout   string
	stderr   string
	exitCode int
	err      error
}

func (s *scriptedRunner) Run(_ context.Context, cmd script.Command) (string, string, int, error) {
	s.commands = append(s.commands, cmd)
	idx := len(s.commands) - 1
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}
	r := s.responses[idx]
	return r.stdout, r.stderr, r.exitCode, r.err
}

func testProbeConfig() config.ProbeConfig {
	return config.ProbeConfig{
		Command:        "agent-browser get url",
		MaxRetries:     3,
		InitialBackoff: time.Second,
		MaxBackoff:     8 * time.Second,
		AttemptTimeout: 10 * time.Second,
	}
}

func noSleep(_ context.Context, _ time.Duration) error { return nil }

func TestProbeSucceedsFirstAttempt(t *testing.T) {
	runner := &scriptedRunner{responses: []runnerResponse{
		{stdout: "https://example.com/listing", exitCode: 0},
	}}
	p := New(testProbeConfig(), WithRunner(runner), WithSleep(noSleep))

	result, err := p.Probe(context.Background(), "ws://browser:9222/session/abc")
	require.NoError(t, err)

	assert.True(t, result.Connected)
	assert.Empty(t, result.Error)
	assert.Equal(t, 1, result.Attempts)

	require.Len(t, runner.commands, 1)
	cmd := runner.commands[0]
	assert.Equal(t, "sh", cmd.Name)
	assert.Equal(t, []string{"-c", "agent-browser get url"}, cmd.Args)
	assert.Contains(t, cmd.Env, constants.EndpointEnvVar+"=ws://browser:9222/session/abc")
}

func TestProbeRefusedShortCircuits(t *testing.T) {
	runner := &scriptedRunner{responses: []runnerResponse{
		{stderr: "Error: connect ECONNREFUSED 127.0.0.1:9222", exitCode: 1},
	}}
	p := New(testProbeConfig(), WithRunner(runner), WithSleep(noSleep))

	result, err := p.Probe(context.Background(), "ws://127.0.0.1:9222/x")
	require.NoError(t, err)

	assert.False(t, result.Connected)
	assert.Contains(t, result.Error, "ECONNREFUSED")
	assert.Equal(t, 1, result.Attempts, "refused endpoint must not be retried")
	assert.Len(t, runner.commands, 1)
}

func TestProbeRetriesTransientThenSucceeds(t *testing.T) {
	runner := &scriptedRunner{responses: []runnerResponse{
		{stderr: "read ECONNRESET", exitCode: 1},
		{stderr: "WebSocket is not open: readyState 3", exitCode: 1},
		{stdout: "https://example.com", exitCode: 0},
	}}

	var slept []time.Duration
	recordSleep := func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}

	p := New(testProbeConfig(), WithRunner(runner), WithSleep(recordSleep))

	result, err := p.Probe(context.Background(), "ws://browser/x")
	require.NoError(t, err)

	assert.True(t, result.Connected)
	assert.Equal(t, 3, result.Attempts)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, slept)
}

func TestProbeExhaustsRetries(t *testing.T) {
	runner := &scriptedRunner{responses: []runnerResponse{
		{stderr: "session expired", exitCode: 1},
	}}
	p := New(testProbeConfig(), WithRunner(runner), WithSleep(noSleep))

	result, err := p.Probe(context.Background(), "ws://browser/x")
	require.NoError(t, err)

	assert.False(t, result.Connected)
	assert.Equal(t, 3, result.Attempts)
	assert.Contains(t, result.Error, "session expired")
}

func TestProbeUnknownOutputTreatedAsSuccess(t *testing.T) {
	// Unfamiliar CLI wrappers may fail in shapes the probe does not
	// recognize. Those must not block the session.
	runner := &scriptedRunner{responses: []runnerResponse{
		{stderr: "usage: agent-browser <command>", exitCode: 2},
	}}
	p := New(testProbeConfig(), WithRunner(runner), WithSleep(noSleep))

	result, err := p.Probe(context.Background(), "ws://browser/x")
	require.NoError(t, err)

	assert.True(t, result.Connected)
	assert.Equal(t, 1, result.Attempts)
}

func TestProbeBackoffCapped(t *testing.T) {
	cfg := testProbeConfig()
	cfg.MaxRetries = 6

	runner := &scriptedRunner{responses: []runnerResponse{
		{stderr: "Target closed", exitCode: 1},
	}}

	var slept []time.Duration
	recordSleep := func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}

	p := New(cfg, WithRunner(runner), WithSleep(recordSleep))

	result, err := p.Probe(context.Background(), "ws://browser/x")
	require.NoError(t, err)

	assert.False(t, result.Connected)
	assert.Equal(t, []time.Duration{
		time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		8 * time.Second,
	}, slept, "backoff doubles until the cap, then holds")
}

func TestProbeCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := &scriptedRunner{responses: []runnerResponse{{exitCode: 0}}}
	p := New(testProbeConfig(), WithRunner(runner), WithSleep(noSleep))

	_, err := p.Probe(ctx, "ws://browser/x")
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, runner.commands)
}
