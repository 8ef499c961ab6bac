package logger

import (
	"fmt"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/Additional-Code/orderdesk/internal/config"
)

func TestBuildLevels(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"WARN":  zapcore.WarnLevel,
		"bogus": zapcore.InfoLevel,
		"":      zapcore.InfoLevel,
	}
	for in, want := range cases {
		t.Run(in, func(t *testing.T) {
			logger, err := Build(config.Observability{LogLevel: in, LogEncoding: "json", ServiceName: "orderdesk"})
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(want))
			if want > zapcore.DebugLevel {
				assert.False(t, logger.Core().Enabled(want-1))
			}
		})
	}
}

func TestBuildConsoleAndDefaultEncoding(t *testing.T) {
	_, err := Build(config.Observability{LogEncoding: "console"})
	assert.NoError(t, err)

	_, err = Build(config.Observability{})
	assert.NoError(t, err)
}

func TestIgnoreSyncErr(t *testing.T) {
	assert.NoError(t, ignoreSyncErr(nil))
	assert.NoError(t, ignoreSyncErr(fmt.Errorf("sync /dev/stderr: %w", syscall.EINVAL)))
	assert.Error(t, ignoreSyncErr(fmt.Errorf("disk full")))
}
