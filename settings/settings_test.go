package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func settingsPath(t *testing.T) string {
	return filepath.Join(t.TempDir(), "nested", "settings.json")
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
}

func ptr(s string) *string { return &s }

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	s := Load(settingsPath(t))
	assert.Equal(t, Defaults(), s.Get())
	assert.False(t, s.Get().HasCredential())
}

func TestLoad_CorruptFileUsesDefaults(t *testing.T) {
	path := settingsPath(t)
	writeFile(t, path, "{not json")
	assert.Equal(t, Defaults(), Load(path).Get())
}

func TestLoad_PerFieldFallback(t *testing.T) {
	path := settingsPath(t)
	writeFile(t, path, `{"wbSignalSettings": {
		"apiKey": "pplx-123",
		"systemPrompt": "Custom system",
		"pestelPrompt": 42,
		"signalDefinition": ""
	}}`)

	got := Load(path).Get()
	assert.Equal(t, "pplx-123", got.APIKey)
	assert.Equal(t, "Custom system", got.SystemPrompt)
	assert.Equal(t, DefaultPestelPrompt, got.PestelPrompt)
	assert.Equal(t, DefaultSignalDefinition, got.SignalDefinition)
	assert.Equal(t, DefaultSourceDiversity, got.SourceDiversity)
	assert.Equal(t, DefaultMetricsMethodology, got.MetricsMethodology)
}

func TestUpdate_PersistsEveryChange(t *testing.T) {
	path := settingsPath(t)
	s := Load(path)

	got, err := s.Update(Patch{APIKey: ptr("pplx-abc"), PestelPrompt: ptr("Only technology")})
	require.NoError(t, err)
	assert.Equal(t, "pplx-abc", got.APIKey)
	assert.Equal(t, "Only technology", got.PestelPrompt)
	assert.Equal(t, DefaultSystemPrompt, got.SystemPrompt)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]Settings
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, got, doc[StorageKey])

	assert.Equal(t, got, Load(path).Get(), "reloading should see the persisted update")
}

func TestUpdate_EmptyPromptRestoresDefault(t *testing.T) {
	s := Load(settingsPath(t))
	_, err := s.Update(Patch{SystemPrompt: ptr("temporary")})
	require.NoError(t, err)

	got, err := s.Update(Patch{SystemPrompt: ptr(""), APIKey: ptr("")})
	require.NoError(t, err)
	assert.Equal(t, DefaultSystemPrompt, got.SystemPrompt)
	assert.Empty(t, got.APIKey)
}

func TestResetPrompts_KeepsCredential(t *testing.T) {
	path := settingsPath(t)
	s := Load(path)
	_, err := s.Update(Patch{
		APIKey:             ptr("pplx-keep"),
		SystemPrompt:       ptr("a"),
		MetricsMethodology: ptr("b"),
	})
	require.NoError(t, err)

	got, err := s.ResetPrompts()
	require.NoError(t, err)
	want := Defaults()
	want.APIKey = "pplx-keep"
	assert.Equal(t, want, got)
	assert.Equal(t, want, Load(path).Get())
}

func TestFallbackCredential(t *testing.T) {
	path := settingsPath(t)
	s := Load(path, WithFallbackCredential("env-key"))
	assert.Equal(t, "env-key", s.Get().APIKey)

	_, err := s.Update(Patch{PestelPrompt: ptr("x")})
	require.NoError(t, err)
	assert.Empty(t, Load(path).Get().APIKey, "fallback credential must not be persisted")

	_, err = s.Update(Patch{APIKey: ptr("stored-key")})
	require.NoError(t, err)
	assert.Equal(t, "stored-key", s.Get().APIKey)
}

func TestUpdate_WriteFailureKeepsMemoryState(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	writeFile(t, blocker, "x")

	s := Load(filepath.Join(blocker, "settings.json"))
	got, err := s.Update(Patch{PestelPrompt: ptr("in memory")})
	assert.Error(t, err)
	assert.Equal(t, "in memory", got.PestelPrompt)
}

func TestPrompts(t *testing.T) {
	p := Defaults().Prompts()
	assert.Equal(t, DefaultSystemPrompt, p.System)
	assert.Equal(t, DefaultPestelPrompt, p.Pestel)
	assert.Equal(t, DefaultSignalDefinition, p.SignalDefinition)
	assert.Equal(t, DefaultSourceDiversity, p.SourceDiversity)
	assert.Equal(t, DefaultMetricsMethodology, p.MetricsMethodology)
}
