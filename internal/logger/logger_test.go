package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNivel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, Nivel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, Nivel(" warn "))
	assert.Equal(t, zapcore.InfoLevel, Nivel(""))
	assert.Equal(t, zapcore.InfoLevel, Nivel("verboso"))
}

func TestNew(t *testing.T) {
	l, err := New("error")
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.ErrorLevel))
}
