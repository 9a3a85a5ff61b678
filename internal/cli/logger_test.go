package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, selectLevel(true, false))
	assert.Equal(t, zerolog.WarnLevel, selectLevel(false, true))
	assert.Equal(t, zerolog.InfoLevel, selectLevel(false, false))
}

func TestInitLoggerWithWriterRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := InitLoggerWithWriter(false, true, &buf)

	logger.Info().Msg("suppressed in quiet mode")
	logger.Warn().Msg("warning shown")

	out := buf.String()
	assert.NotContains(t, out, "suppressed in quiet mode")
	assert.Contains(t, out, "warning shown")
}

func TestInitLoggerWithWriterFlagsSensitiveEntries(t *testing.T) {
	var buf bytes.Buffer
	logger := InitLoggerWithWriter(true, false, &buf)

	logger.Info().Msg("connecting to ws://browser:9222/devtools/abc123")

	assert.Contains(t, buf.String(), "contains_filtered_data")
}

func TestLogFilePathHonorsHomeOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("WEBMEND_HOME", dir)

	path, err := LogFilePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "logs", "webmend.log"), path)
}

func TestCreateLogFileWriterFiltersEndpoint(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("WEBMEND_HOME", dir)

	w, err := createLogFileWriter()
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	_, err = w.Write([]byte("endpoint ws://browser:9222/devtools/secret\n"))
	require.NoError(t, err)
}
