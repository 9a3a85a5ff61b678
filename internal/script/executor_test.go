package script

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webmend/webmend/internal/constants"
	"github.com/webmend/webmend/internal/errors"
)

// MockCommandRunner records invocations and returns configured output.
type MockCommandRunner struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Err      error

	// Block, when set, makes Run wait for context expiry and report the
	// context error path a timed-out subprocess would take.
	Block bool

	Commands []Command
}

func (m *MockCommandRunner) Run(ctx context.Context, cmd Command) (string, string, int, error) {
	m.Commands = append(m.Commands, cmd)

	if m.Block {
		<-ctx.Done()
		return "", "", -1, ctx.Err()
	}

	if m.Err != nil {
		return "", "", -1, m.Err
	}
	return m.Stdout, m.Stderr, m.ExitCode, nil
}

func newTestStage(t *testing.T) *Stage {
	t.Helper()
	stage, err := NewStage(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = stage.Cleanup() })
	return stage
}

func TestExecuteInjectsEndpointEnv(t *testing.T) {
	runner := &MockCommandRunner{Stdout: "ok", ExitCode: 0}
	e := NewExecutor(newTestStage(t), time.Minute, time.Second, WithExecutorRunner(runner))

	result, err := e.Execute(context.Background(), 1, "#!/usr/bin/env bash\ntrue\n", "ws://endpoint/abc", "find prices")
	require.NoError(t, err)

	require.Len(t, runner.Commands, 1)
	cmd := runner.Commands[0]
	assert.Equal(t, "bash", cmd.Name)
	assert.Contains(t, cmd.Env, constants.EndpointEnvVar+"=ws://endpoint/abc")
	assert.Contains(t, cmd.Env, constants.TaskEnvVar+"=find prices")

	require.NotNil(t, result.ExitCode)
	assert.Equal(t, 0, *result.ExitCode)
	assert.False(t, result.TimedOut)
	assert.Equal(t, "ok", result.Stdout)
}

func TestExecuteStagesUniqueScriptFiles(t *testing.T) {
	stage := newTestStage(t)
	runner := &MockCommandRunner{ExitCode: 0}
	e := NewExecutor(stage, time.Minute, time.Second, WithExecutorRunner(runner))

	_, err := e.Execute(context.Background(), 1, "true", "ep", "task")
	require.NoError(t, err)
	_, err = e.Execute(context.Background(), 2, "true", "ep", "task")
	require.NoError(t, err)

	require.Len(t, runner.Commands, 2)
	first := runner.Commands[0].Args[0]
	second := runner.Commands[1].Args[0]
	assert.NotEqual(t, first, second)
	assert.Contains(t, first, "iter-01-")
	assert.Contains(t, second, "iter-02-")
	assert.True(t, strings.HasPrefix(first, stage.Dir()))
}

func TestExecuteMarksTimeout(t *testing.T) {
	runner := &MockCommandRunner{Block: true}
	e := NewExecutor(newTestStage(t), 20*time.Millisecond, time.Millisecond, WithExecutorRunner(runner))

	result, err := e.Execute(context.Background(), 1, "sleep 60", "ep", "task")
	require.NoError(t, err)

	assert.True(t, result.TimedOut)
	assert.Nil(t, result.ExitCode)
}

func TestExecuteNonZeroExit(t *testing.T) {
	runner := &MockCommandRunner{Stderr: "boom", ExitCode: 3}
	e := NewExecutor(newTestStage(t), time.Minute, time.Second, WithExecutorRunner(runner))

	result, err := e.Execute(context.Background(), 1, "exit 3", "ep", "task")
	require.NoError(t, err)

	require.NotNil(t, result.ExitCode)
	assert.Equal(t, 3, *result.ExitCode)
	assert.Equal(t, "boom", result.Stderr)
}

func TestExecuteParsesFailedLine(t *testing.T) {
	runner := &MockCommandRunner{
		Stderr:   "/tmp/iter-01-abc.sh: line 14: jqq: command not found",
		ExitCode: 127,
	}
	e := NewExecutor(newTestStage(t), time.Minute, time.Second, WithExecutorRunner(runner))

	result, err := e.Execute(context.Background(), 1, "jqq", "ep", "task")
	require.NoError(t, err)

	assert.Equal(t, 14, result.FailedLine)
}

func TestExecuteRunnerFailureBecomesResult(t *testing.T) {
	runner := &MockCommandRunner{Err: io.ErrUnexpectedEOF}
	e := NewExecutor(newTestStage(t), time.Minute, time.Second, WithExecutorRunner(runner))

	result, err := e.Execute(context.Background(), 1, "true", "ep", "task")
	require.NoError(t, err)

	assert.Nil(t, result.ExitCode)
	assert.Contains(t, result.Stderr, io.ErrUnexpectedEOF.Error())
}

func TestExecuteCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := NewExecutor(newTestStage(t), time.Minute, time.Second, WithExecutorRunner(&MockCommandRunner{}))

	_, err := e.Execute(ctx, 1, "true", "ep", "task")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseFailedLine(t *testing.T) {
	assert.Equal(t, 7, parseFailedLine("./x.sh: line 7: oops"))
	assert.Equal(t, 0, parseFailedLine("no line marker here"))
	assert.Equal(t, 0, parseFailedLine(""))
}

func TestStageWriteFailure(t *testing.T) {
	stage := newTestStage(t)
	require.NoError(t, stage.Cleanup())

	_, err := stage.WriteIteration(1, "true")
	assert.ErrorIs(t, err, errors.ErrScriptStageFailed)
}
