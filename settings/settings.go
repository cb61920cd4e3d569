// Package settings holds the analyst-editable credential and prompt templates.
//
// A Store is loaded once at start, read on every search and written back to
// disk on every update. Missing or corrupt fields fall back to the built-in
// defaults one field at a time.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"horizon-scanner/livequery"
)

// StorageKey is the document key the settings live under on disk.
const StorageKey = "wbSignalSettings"

type Settings struct {
	APIKey             string `json:"apiKey"`
	SystemPrompt       string `json:"systemPrompt"`
	PestelPrompt       string `json:"pestelPrompt"`
	SignalDefinition   string `json:"signalDefinition"`
	SourceDiversity    string `json:"sourceDiversity"`
	MetricsMethodology string `json:"metricsMethodology"`
}

func Defaults() Settings {
	return Settings{
		SystemPrompt:       DefaultSystemPrompt,
		PestelPrompt:       DefaultPestelPrompt,
		SignalDefinition:   DefaultSignalDefinition,
		SourceDiversity:    DefaultSourceDiversity,
		MetricsMethodology: DefaultMetricsMethodology,
	}
}

func (s Settings) HasCredential() bool { return s.APIKey != "" }

func (s Settings) Prompts() livequery.Prompts {
	return livequery.Prompts{
		System:             s.SystemPrompt,
		Pestel:             s.PestelPrompt,
		SignalDefinition:   s.SignalDefinition,
		SourceDiversity:    s.SourceDiversity,
		MetricsMethodology: s.MetricsMethodology,
	}
}

// withDefaults replaces empty prompts with their defaults. The API key has no
// default.
func (s Settings) withDefaults() Settings {
	d := Defaults()
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&s.SystemPrompt, d.SystemPrompt)
	fill(&s.PestelPrompt, d.PestelPrompt)
	fill(&s.SignalDefinition, d.SignalDefinition)
	fill(&s.SourceDiversity, d.SourceDiversity)
	fill(&s.MetricsMethodology, d.MetricsMethodology)
	return s
}

// Patch is a partial update; nil fields are left alone.
type Patch struct {
	APIKey             *string `json:"apiKey"`
	SystemPrompt       *string `json:"systemPrompt"`
	PestelPrompt       *string `json:"pestelPrompt"`
	SignalDefinition   *string `json:"signalDefinition"`
	SourceDiversity    *string `json:"sourceDiversity"`
	MetricsMethodology *string `json:"metricsMethodology"`
}

func (p Patch) apply(s Settings) Settings {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&s.APIKey, p.APIKey)
	set(&s.SystemPrompt, p.SystemPrompt)
	set(&s.PestelPrompt, p.PestelPrompt)
	set(&s.SignalDefinition, p.SignalDefinition)
	set(&s.SourceDiversity, p.SourceDiversity)
	set(&s.MetricsMethodology, p.MetricsMethodology)
	return s.withDefaults()
}

type Store struct {
	path     string
	fallback string
	logger   *zap.Logger

	mu      sync.RWMutex
	current Settings
}

type Option func(*Store)

// WithFallbackCredential supplies an API key used while none is stored. It is
// never written to disk.
func WithFallbackCredential(key string) Option {
	return func(s *Store) { s.fallback = key }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// Load reads the settings file at path. It never fails: an absent or corrupt
// file yields defaults.
func Load(path string, opts ...Option) *Store {
	s := &Store{path: path, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	s.current = s.read()
	return s
}

func (s *Store) read() Settings {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("Failed to read settings, using defaults", zap.String("path", s.path), zap.Error(err))
		}
		return Defaults()
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		s.logger.Warn("Settings file is corrupt, using defaults", zap.String("path", s.path), zap.Error(err))
		return Defaults()
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(doc[StorageKey], &fields); err != nil {
		s.logger.Warn("Settings document is corrupt, using defaults", zap.String("path", s.path), zap.Error(err))
		return Defaults()
	}

	str := func(name string) string {
		var v string
		if raw, ok := fields[name]; ok {
			if err := json.Unmarshal(raw, &v); err != nil {
				s.logger.Warn("Ignoring corrupt settings field", zap.String("field", name))
				return ""
			}
		}
		return v
	}
	loaded := Settings{
		APIKey:             str("apiKey"),
		SystemPrompt:       str("systemPrompt"),
		PestelPrompt:       str("pestelPrompt"),
		SignalDefinition:   str("signalDefinition"),
		SourceDiversity:    str("sourceDiversity"),
		MetricsMethodology: str("metricsMethodology"),
	}
	return loaded.withDefaults()
}

func (s *Store) write(settings Settings) error {
	data, err := json.MarshalIndent(map[string]Settings{StorageKey: settings}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace settings: %w", err)
	}
	return nil
}

// Get returns a copy of the current settings.
func (s *Store) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.current
	if out.APIKey == "" {
		out.APIKey = s.fallback
	}
	return out
}

// Update merges p into the current settings and persists the result. An empty
// prompt restores that prompt's default. The in-memory copy is updated even
// when persisting fails.
func (s *Store) Update(p Patch) (Settings, error) {
	s.mu.Lock()
	s.current = p.apply(s.current)
	err := s.persist(s.current)
	s.mu.Unlock()
	return s.Get(), err
}

// ResetPrompts restores the five prompt defaults and keeps the API key.
func (s *Store) ResetPrompts() (Settings, error) {
	s.mu.Lock()
	reset := Defaults()
	reset.APIKey = s.current.APIKey
	s.current = reset
	err := s.persist(reset)
	s.mu.Unlock()
	return s.Get(), err
}

// persist must be called with mu held.
func (s *Store) persist(settings Settings) error {
	if err := s.write(settings); err != nil {
		s.logger.Error("Failed to persist settings", zap.String("path", s.path), zap.Error(err))
		return err
	}
	s.logger.Info("Settings saved", zap.String("path", s.path), zap.Bool("api_key_present", settings.APIKey != ""))
	return nil
}
