package logger

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, false)

	l.Debug("hidden %d", 1)
	l.Info("loaded %d records", 42)
	l.LogError(nil, "ignored")
	l.LogError(errors.New("boom"), "scaler")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "INFO: loaded 42 records")
	assert.Contains(t, out, "ERROR: scaler: boom")
	assert.NotContains(t, out, "ignored")
}

func TestDebugAndTag(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, true).With("req-1")

	l.Debug("segmented")
	assert.Contains(t, buf.String(), "DEBUG: [req-1] segmented")
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "server.log")
	l, err := New(path, false)
	require.NoError(t, err)
	l.Info("hello")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "INFO: hello")
}
