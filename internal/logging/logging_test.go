package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	lg, err := New(&buf, Config{Level: "debug", Format: "json"})
	require.NoError(t, err)

	lg.Debug("dataset cleaned", "records", 3)
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "dataset cleaned", entry["msg"])
	assert.Equal(t, float64(3), entry["records"])
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	lg, err := New(&buf, Config{Level: "warn"})
	require.NoError(t, err)
	lg.Info("hidden")
	assert.Empty(t, buf.String())
	lg.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNew_Invalid(t *testing.T) {
	_, err := New(&bytes.Buffer{}, Config{Level: "loud"})
	assert.Error(t, err)
	_, err = New(&bytes.Buffer{}, Config{Format: "xml"})
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel("WARNING")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, l)
}
