package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/ppiankov/puppyjudge/internal/model"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		name  string
		cfg   model.LoggingConfig
		level zapcore.Level
	}{
		{"default", model.LoggingConfig{}, zapcore.InfoLevel},
		{"debug console", model.LoggingConfig{Level: "debug", Format: "console"}, zapcore.DebugLevel},
		{"warn json", model.LoggingConfig{Level: "WARN", Format: "json"}, zapcore.WarnLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg)
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tt.level))
			assert.False(t, logger.Core().Enabled(tt.level-1))
		})
	}
}

func TestNew_Invalid(t *testing.T) {
	_, err := New(model.LoggingConfig{Level: "loud"})
	assert.Error(t, err)

	_, err = New(model.LoggingConfig{Format: "xml"})
	assert.Error(t, err)
}

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "judge.log")
	logger, err := New(model.LoggingConfig{Format: "json", File: path})
	require.NoError(t, err)

	logger.Info("verdict issued")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "verdict issued")
}

func TestVerbose(t *testing.T) {
	assert.Equal(t, "debug", Verbose(model.LoggingConfig{Level: "info"}, true).Level)
	assert.Equal(t, "info", Verbose(model.LoggingConfig{Level: "info"}, false).Level)
}
