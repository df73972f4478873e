package appconf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvFlagToEnvironment(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Environment
	}{
		{"production", "production", Production},
		{"test", "test", Test},
		{"development", "development", Development},
		{"mixed case", "PRODUCTION", Production},
		{"whitespace", "  test  ", Test},
		{"unknown defaults to development", "staging", Development},
		{"empty defaults to development", "", Development},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, EnvFlagToEnvironment(tt.input))
		})
	}
}

func TestEnvironmentString(t *testing.T) {
	assert.Equal(t, "development", Development.String())
	assert.Equal(t, "test", Test.String())
	assert.Equal(t, "production", Production.String())
}

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFromFile(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		path := writeTempConfig(t, `{
  "port": 3000,
  "env": "development",
  "api-keys": ["admin"],
  "rate-limit": 100,
  "db-path": ":memory:",
  "verbose": true
}`)

		cfg, err := LoadFromFile(path)
		require.NoError(t, err)

		appCfg := cfg.ToAppConfig()
		assert.Equal(t, 3000, appCfg.Port)
		assert.Equal(t, Development, appCfg.Env)
		assert.Equal(t, []string{"admin"}, appCfg.ApiKeys)
		assert.Equal(t, 100, appCfg.RateLimit)
		assert.Equal(t, ":memory:", appCfg.DBPath)
		assert.True(t, appCfg.Verbose)
	})

	t.Run("invalid port", func(t *testing.T) {
		path := writeTempConfig(t, `{"port": 99999}`)
		cfg, err := LoadFromFile(path)
		assert.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "invalid configuration")
	})

	t.Run("invalid env", func(t *testing.T) {
		path := writeTempConfig(t, `{"port": 3000, "env": "staging"}`)
		_, err := LoadFromFile(path)
		assert.Error(t, err)
	})

	t.Run("malformed JSON", func(t *testing.T) {
		path := writeTempConfig(t, `{"port": `)
		cfg, err := LoadFromFile(path)
		assert.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "failed to parse JSON config")
	})

	t.Run("nonexistent file", func(t *testing.T) {
		cfg, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.json"))
		assert.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "failed to stat config file")
	})
}
