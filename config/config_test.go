package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	for _, key := range []string{"HORIZON_ADDR", "HORIZON_DB", "HORIZON_SETTINGS", "PERPLEXITY_API_KEY"} {
		t.Setenv(key, "")
	}

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "horizon.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9000"
simulation:
  target: 12
  seed: 42
llm:
  model: sonar
  timeout: 30s
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, 12, cfg.Simulation.Target)
	assert.EqualValues(t, 42, cfg.Simulation.Seed)
	assert.Equal(t, "sonar", cfg.LLM.Model)
	assert.Equal(t, 30*time.Second, cfg.GetLLMTimeout())
	// untouched keys keep their defaults
	assert.Equal(t, "https://api.perplexity.ai", cfg.LLM.BaseURL)
	assert.Equal(t, "data/horizon.db", cfg.Database.Path)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "horizon.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("HORIZON_ADDR", ":7070")
	t.Setenv("HORIZON_DB", "/tmp/h.db")
	t.Setenv("HORIZON_SETTINGS", "/tmp/s.json")
	t.Setenv("PERPLEXITY_API_KEY", "pplx-env")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, "/tmp/h.db", cfg.Database.Path)
	assert.Equal(t, "/tmp/s.json", cfg.Settings.Path)
	assert.Equal(t, "pplx-env", cfg.LLM.APIKey)
}

func TestSave_DoesNotWriteAPIKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "horizon.yaml")
	cfg := DefaultConfig()
	cfg.LLM.APIKey = "secret"
	require.NoError(t, cfg.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret")
}

func TestGetLLMTimeout_Fallback(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LLM.Timeout = "soon"
	assert.Equal(t, 120*time.Second, cfg.GetLLMTimeout())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty addr", func(c *Config) { c.Server.Addr = "" }},
		{"empty db path", func(c *Config) { c.Database.Path = "" }},
		{"empty settings path", func(c *Config) { c.Settings.Path = "" }},
		{"zero target", func(c *Config) { c.Simulation.Target = 0 }},
		{"hot temperature", func(c *Config) { c.LLM.Temperature = 3 }},
		{"bad timeout", func(c *Config) { c.LLM.Timeout = "later" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
