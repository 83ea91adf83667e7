package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson(t *testing.T) {
	t.Run("overlays present keys", func(t *testing.T) {
		path := writeTempJSON(t, map[string]any{
			"server_url": "http://www.example:9000",
			"timeout":    "30s",
		})

		cfg := &Config{Output: OutputYAML}
		require.NoError(t, parseJson(cfg, path))

		assert.Equal(t, "http://www.example:9000", cfg.ServerURL)
		assert.Equal(t, 30*time.Second, cfg.Timeout)
		assert.Equal(t, OutputYAML, cfg.Output)
	})

	t.Run("empty path is a no-op", func(t *testing.T) {
		cfg := &Config{ServerURL: "http://defaults:1234"}
		require.NoError(t, parseJson(cfg, ""))
		assert.Equal(t, "http://defaults:1234", cfg.ServerURL)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		assert.Error(t, parseJson(&Config{}, bad))
	})

	t.Run("missing file", func(t *testing.T) {
		assert.Error(t, parseJson(&Config{}, filepath.Join(t.TempDir(), "nope.json")))
	})
}

func TestLoadConfig_JSONOverridesEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("INVENTORY_URL", "http://from-env:1")

	path := writeTempJSON(t, map[string]any{"server_url": "http://from-file:2", "output": "yaml"})

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http://from-file:2", cfg.ServerURL)
	assert.Equal(t, OutputYAML, cfg.Output)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
}
