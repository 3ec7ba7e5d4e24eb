package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		format  string
		enabled zapcore.Level
		skipped zapcore.Level
	}{
		{"json info", "info", "json", zapcore.InfoLevel, zapcore.DebugLevel},
		{"console debug", "debug", "console", zapcore.DebugLevel, zapcore.DebugLevel - 1},
		{"invalid level defaults to info", "loud", "", zapcore.InfoLevel, zapcore.DebugLevel},
		{"warn", "warn", "json", zapcore.WarnLevel, zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := New(tt.level, tt.format)

			assert.NotNil(t, logger)
			assert.True(t, logger.Core().Enabled(tt.enabled))
			assert.False(t, logger.Core().Enabled(tt.skipped))
		})
	}
}
