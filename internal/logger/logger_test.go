package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("info", "json", &buf)
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("fetched", zap.Int("rows", 3), zap.String("run_id", "r1"))
	require.NoError(t, log.Sync())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "fetched", entry["message"])
	assert.EqualValues(t, 3, entry["rows"])
	assert.Equal(t, "r1", entry["run_id"])
	assert.Contains(t, entry, "timestamp")
}

func TestNew_ConsoleDebug(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("debug", "", &buf)
	require.NoError(t, err)
	log.Debug("socrata request")
	assert.Contains(t, buf.String(), "debug")
	assert.Contains(t, buf.String(), "socrata request")
}

func TestNew_Invalid(t *testing.T) {
	_, err := New("loud", "json", nil)
	assert.ErrorContains(t, err, "invalid log level")

	_, err = New("info", "xml", nil)
	assert.ErrorContains(t, err, "invalid log format")
}
