package restaurant

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppConfig_Defaults(t *testing.T) {
	cfg, err := LoadAppConfig("")
	require.NoError(t, err)

	assert.Equal(t, "anthropic", cfg.Model.Provider)
	assert.Equal(t, "data", cfg.Data.Dir)
	assert.Equal(t, ":8089", cfg.Server.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Empty(t, cfg.Backend.URL)
}

func TestLoadAppConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
model:
  provider: mock
  name: test-model
backend:
  url: http://localhost:8089/rpc
log:
  level: debug
`), 0o644))

	cfg, err := LoadAppConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "mock", cfg.Model.Provider)
	assert.Equal(t, "test-model", cfg.Model.Name)
	assert.Equal(t, "http://localhost:8089/rpc", cfg.Backend.URL)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Untouched sections keep their defaults.
	assert.Equal(t, ":8089", cfg.Server.Addr)
}

func TestLoadAppConfig_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model:\n  provider: mock\n"), 0o644))

	t.Setenv("BRIGADE_MODEL_PROVIDER", "openai")
	t.Setenv("BRIGADE_LOG_FORMAT", "json")

	cfg, err := LoadAppConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.Model.Provider)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadAppConfig_Validation(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad provider", "BRIGADE_MODEL_PROVIDER", "palmtop"},
		{"bad log level", "BRIGADE_LOG_LEVEL", "verbose"},
		{"bad log format", "BRIGADE_LOG_FORMAT", "xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := LoadAppConfig("")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.value)
		})
	}
}

func TestLoadAppConfig_MissingFile(t *testing.T) {
	_, err := LoadAppConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestAppConfig_NewModel_Mock(t *testing.T) {
	cfg, err := LoadAppConfig("")
	require.NoError(t, err)

	cfg.Model.Provider = "mock"

	llm := cfg.NewModel()
	assert.Equal(t, "mock-model", llm.Info().Name)

	cfg.Model.Name = "scripted"
	assert.Equal(t, "scripted", cfg.NewModel().Info().Name)
}

func TestAppConfig_NewLogger(t *testing.T) {
	cfg, err := LoadAppConfig("")
	require.NoError(t, err)

	for _, level := range []string{"debug", "info", "warn", "error"} {
		cfg.Log.Level = level
		assert.NotNil(t, cfg.NewLogger(), level)
	}
}
