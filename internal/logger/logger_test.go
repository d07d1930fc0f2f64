package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewLogger_WritesToFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "rig.log")

	log, err := NewLogger(logFile)
	require.NoError(t, err)

	log.Info("capture started")
	// Sync errors on stderr are expected on some platforms
	_ = log.Sync()

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "capture started")
}

func TestFromSettings(t *testing.T) {
	t.Run("production", func(t *testing.T) {
		log, err := FromSettings(false, "")
		require.NoError(t, err)
		assert.Nil(t, log.Check(zap.DebugLevel, "hidden"), "debug entries should not pass the production level")
	})

	t.Run("debug", func(t *testing.T) {
		log, err := FromSettings(true, "")
		require.NoError(t, err)
		assert.NotNil(t, log.Check(zap.DebugLevel, "visible"))
	})
}
