package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all Horizon Scanner configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Settings   SettingsConfig   `yaml:"settings"`
	LLM        LLMConfig        `yaml:"llm"`
	Simulation SimulationConfig `yaml:"simulation"`
	Logging    LoggingConfig    `yaml:"logging"`
	Tracing    TracingConfig    `yaml:"tracing"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
	Mode string `yaml:"mode"` // gin mode: release, debug, test
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// SettingsConfig locates the analyst settings document.
type SettingsConfig struct {
	Path string `yaml:"path"`
}

// LLMConfig configures the live query endpoint. APIKey is only a fallback
// for when the settings store holds no credential.
type LLMConfig struct {
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	Timeout     string  `yaml:"timeout"`
	APIKey      string  `yaml:"-"`
}

type SimulationConfig struct {
	Target   int    `yaml:"target"`
	PoolPath string `yaml:"pool_path"`
	Seed     int64  `yaml:"seed"` // 0 seeds from the clock
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json, console
}

type TracingConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: ":8090",
			Mode: "release",
		},
		Database: DatabaseConfig{
			Path: "data/horizon.db",
		},
		Settings: SettingsConfig{
			Path: "data/settings.json",
		},
		LLM: LLMConfig{
			BaseURL:     "https://api.perplexity.ai",
			Model:       "sonar-pro",
			Temperature: 0.7,
			MaxTokens:   16000,
			Timeout:     "120s",
		},
		Simulation: SimulationConfig{
			Target: 20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Tracing: TracingConfig{
			ServiceName: "horizon-scanner",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields defaults.
// Environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if addr := os.Getenv("HORIZON_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if path := os.Getenv("HORIZON_DB"); path != "" {
		c.Database.Path = path
	}
	if path := os.Getenv("HORIZON_SETTINGS"); path != "" {
		c.Settings.Path = path
	}
	if key := os.Getenv("PERPLEXITY_API_KEY"); key != "" {
		c.LLM.APIKey = key
	}
}

// GetLLMTimeout returns the live query timeout as a duration.
func (c *Config) GetLLMTimeout() time.Duration {
	d, err := time.ParseDuration(c.LLM.Timeout)
	if err != nil {
		return 120 * time.Second
	}
	return d
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server address must not be empty")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database path must not be empty")
	}
	if c.Settings.Path == "" {
		return fmt.Errorf("settings path must not be empty")
	}
	if c.Simulation.Target < 1 {
		return fmt.Errorf("simulation target must be at least 1, got %d", c.Simulation.Target)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("llm temperature must be within [0, 2], got %v", c.LLM.Temperature)
	}
	if _, err := time.ParseDuration(c.LLM.Timeout); err != nil {
		return fmt.Errorf("invalid llm timeout %q: %w", c.LLM.Timeout, err)
	}
	return nil
}
