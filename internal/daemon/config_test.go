package daemon

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.NotEmpty(t, cfg.SocketPath)
	assert.NotEmpty(t, cfg.PIDPath)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 10*time.Second, cfg.ShutdownGracePeriod)
	require.NoError(t, cfg.Validate())
}

func TestDefaultConfig_PathsUnderSearchdDir(t *testing.T) {
	cfg := DefaultConfig()
	assert.True(t, strings.Contains(cfg.SocketPath, ".searchd"))
	assert.True(t, strings.Contains(cfg.PIDPath, ".searchd"))
}

func TestConfig_Validate(t *testing.T) {
	base := DefaultConfig()

	t.Run("empty socket path", func(t *testing.T) {
		cfg := base
		cfg.SocketPath = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("empty pid path", func(t *testing.T) {
		cfg := base
		cfg.PIDPath = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("non-positive timeout", func(t *testing.T) {
		cfg := base
		cfg.Timeout = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("non-positive shutdown grace period", func(t *testing.T) {
		cfg := base
		cfg.ShutdownGracePeriod = -1
		assert.Error(t, cfg.Validate())
	})
}

func TestConfig_EnsureDir(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := Config{
		SocketPath: filepath.Join(tmpDir, "sock", "daemon.sock"),
		PIDPath:    filepath.Join(tmpDir, "pid", "daemon.pid"),
	}

	require.NoError(t, cfg.EnsureDir())

	assert.DirExists(t, filepath.Dir(cfg.SocketPath))
	assert.DirExists(t, filepath.Dir(cfg.PIDPath))
}
