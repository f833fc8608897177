package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	tests := []struct {
		level, format string
		enabled       zap.AtomicLevel
	}{
		{"info", "json", zap.NewAtomicLevelAt(zap.InfoLevel)},
		{"DEBUG", "text", zap.NewAtomicLevelAt(zap.DebugLevel)},
		{" warn ", "", zap.NewAtomicLevelAt(zap.WarnLevel)},
	}

	for _, tt := range tests {
		t.Run(tt.level+"/"+tt.format, func(t *testing.T) {
			logger, err := New(tt.level, tt.format)
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tt.enabled.Level()))
			assert.False(t, logger.Core().Enabled(tt.enabled.Level()-1))
		})
	}
}

func TestNew_Invalid(t *testing.T) {
	_, err := New("loud", "json")
	assert.Error(t, err)

	_, err = New("info", "xml")
	assert.Error(t, err)
}
