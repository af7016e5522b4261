package configwatcher

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"team11_backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseConfig = `
database:
  driver: sqlite
storage:
  local_path: %s
logging:
  level: %s
`

func writeConfig(t *testing.T, dir, level string) {
	t.Helper()
	body := []byte(fmt.Sprintf(baseConfig, filepath.Join(dir, "uploads"), level))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), body, 0644))
}

func TestWatchConfigReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "info")

	reloaded := make(chan *config.Config, 1)
	done := make(chan struct{})
	errc := make(chan error, 1)
	go func() {
		errc <- WatchConfig(dir, func(c *config.Config) {
			select {
			case reloaded <- c:
			default:
			}
		}, done)
	}()

	// give the watcher time to register
	time.Sleep(200 * time.Millisecond)
	writeConfig(t, dir, "warn")

	select {
	case cfg := <-reloaded:
		assert.Equal(t, "warn", cfg.Logging.Level)
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}

	close(done)
	assert.NoError(t, <-errc)
}

func TestWatchConfigMissingDir(t *testing.T) {
	err := WatchConfig(filepath.Join(t.TempDir(), "absent"), func(*config.Config) {}, make(chan struct{}))
	assert.Error(t, err)
}
