package utils

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := NewLogger(LogOptions{Level: "debug", Format: FormatJSON, Out: &buf})
	require.NoError(t, err)
	defer closer.Close()

	logger.Debug().Str("host", "example.com").Msg("hello")

	var rec map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "debug", rec["level"])
	assert.Equal(t, "example.com", rec["host"])
	assert.Equal(t, "hello", rec["message"])
}

func TestNewLogger_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := NewLogger(LogOptions{Level: "WARN", Format: FormatJSON, Out: &buf})
	require.NoError(t, err)

	logger.Info().Msg("dropped")
	assert.Zero(t, buf.Len())

	logger.Warn().Msg("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestNewLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "proxy.log")
	var buf bytes.Buffer
	logger, closer, err := NewLogger(LogOptions{Format: FormatJSON, File: path, Out: &buf})
	require.NoError(t, err)

	logger.Info().Msg("to both")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to both")
	assert.Contains(t, buf.String(), "to both")
}

func TestNewLogger_Invalid(t *testing.T) {
	_, _, err := NewLogger(LogOptions{Level: "loud"})
	assert.Error(t, err)

	_, _, err = NewLogger(LogOptions{Format: "xml"})
	assert.Error(t, err)
}
