package observability

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	json "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/BigBadE/valor-sub000/internal/config"
)

func initBuffer(t *testing.T, cfg config.LoggerConfig) *bytes.Buffer {
	t.Helper()
	ResetForTest()
	t.Cleanup(ResetForTest)
	var buf bytes.Buffer
	Initialize(cfg, zapcore.AddSync(&buf))
	return &buf
}

func TestConsoleLoggerColorsLevels(t *testing.T) {
	buf := initBuffer(t, config.LoggerConfig{
		Level:       "debug",
		Format:      "console",
		ServiceName: "valor",
		Colors:      config.ColorConfig{Info: "green"},
	})
	GetLogger().Info("layout pass complete", zap.Int("nodes", 3))
	Sync()

	out := buf.String()
	assert.Contains(t, out, colorMap["green"]+"INFO"+colorReset)
	assert.Contains(t, out, "valor.")
	assert.Contains(t, out, "layout pass complete")
	assert.Contains(t, out, `"nodes": 3`)
}

func TestJSONLoggerRespectsLevel(t *testing.T) {
	buf := initBuffer(t, config.LoggerConfig{Level: "warn", Format: "json"})
	logger := GetLogger()
	logger.Info("hidden")
	logger.Warn("shown", zap.String("fixture", "a.html"))
	Sync()

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, "a.html", entry["fixture"])
}

func TestInvalidLevelFallsBackToInfo(t *testing.T) {
	buf := initBuffer(t, config.LoggerConfig{Level: "loud", Format: "json"})
	GetLogger().Debug("hidden")
	GetLogger().Info("shown")
	Sync()
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestInitializeRunsOnce(t *testing.T) {
	first := initBuffer(t, config.LoggerConfig{Level: "info", Format: "json"})
	var second bytes.Buffer
	Initialize(config.LoggerConfig{Level: "info", Format: "json"}, zapcore.AddSync(&second))

	GetLogger().Info("once")
	Sync()
	assert.Contains(t, first.String(), "once")
	assert.Empty(t, second.String())
}

func TestLogFileIsJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "valor.log")
	initBuffer(t, config.LoggerConfig{Level: "info", Format: "console", LogFile: path, MaxSize: 1})
	GetLogger().Info("to file")
	Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &entry))
	assert.Equal(t, "to file", entry["msg"])
}

func TestGetLoggerBeforeInitialize(t *testing.T) {
	ResetForTest()
	assert.NotNil(t, GetLogger())
	Sync()
}
