package utils

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"WARN":    zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		" error ": zapcore.ErrorLevel,
		"info":    zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}

	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNewLogger_RespectsLevel(t *testing.T) {
	l, err := NewLogger("warn")
	require.NoError(t, err)

	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
}

func TestNewLogger_LambdaUsesJSON(t *testing.T) {
	t.Setenv("AWS_LAMBDA_FUNCTION_NAME", "emi-predict")

	l, err := NewLogger("debug")
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
}

func TestGetLogger_InitializesGlobal(t *testing.T) {
	prev := Logger
	t.Cleanup(func() { Logger = prev })

	Logger = nil
	assert.NotNil(t, GetLogger())
	assert.NotNil(t, Logger)
}

func TestGetLogger_ConcurrentFirstUse(t *testing.T) {
	prev := Logger
	t.Cleanup(func() { Logger = prev })

	Logger = nil

	const callers = 16
	got := make([]*zap.Logger, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = GetLogger()
		}(i)
	}
	wg.Wait()

	require.NotNil(t, got[0])
	for _, l := range got {
		assert.Same(t, got[0], l)
	}
}
