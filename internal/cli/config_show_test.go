package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webmend/webmend/internal/config"
)

func isolateConfig(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	oldWD, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(oldWD); err != nil {
			t.Fatal(err)
		}
	})
}

func TestConfigShowYAML(t *testing.T) {
	isolateConfig(t)

	var buf bytes.Buffer
	err := runConfigShow(context.Background(), &buf, &ConfigShowFlags{OutputFormat: "yaml"})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "repair:")
	assert.Contains(t, out, "max_iterations:")
	assert.Contains(t, out, "quality:")
	assert.Contains(t, out, "Configuration files:")
}

func TestConfigShowJSON(t *testing.T) {
	isolateConfig(t)

	var buf bytes.Buffer
	err := runConfigShow(context.Background(), &buf, &ConfigShowFlags{OutputFormat: "json"})
	require.NoError(t, err)

	var cfg config.Config
	require.NoError(t, json.Unmarshal(buf.Bytes(), &cfg))
	assert.Equal(t, config.DefaultConfig().Repair.MaxIterations, cfg.Repair.MaxIterations)
}

func TestConfigShowRejectsUnknownFormat(t *testing.T) {
	isolateConfig(t)

	var buf bytes.Buffer
	err := runConfigShow(context.Background(), &buf, &ConfigShowFlags{OutputFormat: "toml"})
	require.Error(t, err)
}
