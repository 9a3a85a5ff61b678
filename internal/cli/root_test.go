package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("WEBMEND_HOME", t.TempDir())

	flags := &GlobalFlags{}
	cmd := newRootCmd(flags, BuildInfo{Version: "test"})

	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestRootShowsHelp(t *testing.T) {
	out, err := executeCommand(t)
	require.NoError(t, err)
	assert.Contains(t, out, "webmend")
	assert.Contains(t, out, "run")
	assert.Contains(t, out, "probe")
	assert.Contains(t, out, "config")
}

func TestRootRejectsInvalidOutputFormat(t *testing.T) {
	_, err := executeCommand(t, "--output", "xml")
	require.Error(t, err)
	assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
}

func TestRootVersion(t *testing.T) {
	out, err := executeCommand(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "test")
	assert.Contains(t, out, "commit")
}

func TestVerboseAndQuietAreMutuallyExclusive(t *testing.T) {
	_, err := executeCommand(t, "--verbose", "--quiet")
	require.Error(t, err)
	assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
}

func TestFormatVersionDefaults(t *testing.T) {
	v := formatVersion(BuildInfo{})
	assert.Contains(t, v, "dev")
	assert.Contains(t, v, "none")
	assert.Contains(t, v, "unknown")
}
