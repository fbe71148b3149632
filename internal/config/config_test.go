package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "local.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "env: dev\nstorage_path: storage/test.db\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "storage/test.db", cfg.StoragePath)
	assert.Equal(t, "localhost:8082", cfg.HTTPServer.Addr)
	assert.Equal(t, "https://jsonplaceholder.typicode.com", cfg.Remote.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Remote.Timeout)
	assert.Equal(t, 300*time.Millisecond, cfg.Todo.AnimationDelay)
}

func TestLoadReadsNestedSections(t *testing.T) {
	path := writeConfig(t, `env: prod
storage_path: /var/lib/local-crud.db
http_server:
  address: 0.0.0.0:9000
remote:
  base_url: http://example.test
  timeout: 2s
todo:
  animation_delay: 1s
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", cfg.Addr)
	assert.Equal(t, "http://example.test", cfg.BaseURL)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
	assert.Equal(t, time.Second, cfg.AnimationDelay)
}

func TestLoadUsesConfigPathEnv(t *testing.T) {
	path := writeConfig(t, "env: dev\nstorage_path: x.db\n")
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "x.db", cfg.StoragePath)
}

func TestLoadErrors(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")

	_, err := Load("")
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "does not exist")

	_, err = Load(writeConfig(t, "env: dev\n"))
	assert.Error(t, err, "storage_path is required")
}
