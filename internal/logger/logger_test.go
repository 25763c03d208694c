package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingBeforeInitIsSafe(t *testing.T) {
	assert.NotPanics(t, func() {
		Debug("debug %d", 1)
		Info("info %s", "x")
		Warn("warn")
		Error("error %v", nil)
	})
}

func TestInit(t *testing.T) {
	tests := []struct {
		level   string
		format  string
		wantErr bool
	}{
		{"debug", "text", false},
		{"INFO", "json", false},
		{"warn", "json", false},
		{"error", "text", false},
		{"verbose", "json", true},
	}

	for _, tt := range tests {
		t.Run(tt.level+"/"+tt.format, func(t *testing.T) {
			err := Init(tt.level, tt.format)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotPanics(t, func() { Info("initialised at %s", tt.level) })
		})
	}
}
