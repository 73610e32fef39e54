package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New("verbose", "")
	assert.ErrorContains(t, err, "invalid log level")
}

func TestNewWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kiara.log")

	logger, err := New("info", path)
	require.NoError(t, err)
	logger.Debug("hidden")
	logger.Info("orden creada", zap.Uint("order_id", 7))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "orden creada", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.EqualValues(t, 7, entry["order_id"])
}

func TestNewLoggerFansOut(t *testing.T) {
	var a, b bytes.Buffer
	logger := newLogger(zapcore.WarnLevel, zapcore.AddSync(&a), zapcore.AddSync(&b))

	logger.Info("skipped")
	logger.Warn("database not ready")

	assert.Contains(t, a.String(), "database not ready")
	assert.Equal(t, a.String(), b.String())
	assert.NotContains(t, a.String(), "skipped")
}
