package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadJSON(t *testing.T) {
	path := writeConfig(t, "tpo.config.json", `{
  "localesPath": "locales/{locale}/messages.po",
  "mainLanguage": "en",
  "exclude": ["**/vendor/**"],
  "duplicates": {"words": 4, "similarity": 1, "strict": true}
}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "locales/{locale}/messages.po", cfg.LocalesPath)
	assert.Equal(t, "en", cfg.MainLanguage)
	assert.Equal(t, []string{"**/vendor/**"}, cfg.Exclude)
	assert.Equal(t, 4, cfg.Duplicates.Words)
	assert.Equal(t, 1, cfg.Duplicates.Similarity)
	assert.True(t, cfg.Duplicates.Strict)
	assert.Equal(t, "text", cfg.Duplicates.Format)
	assert.NoError(t, cfg.Validate())
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "tpo.config.yaml", `
localesPath: i18n/{locale}.po
mainLanguage: de
log:
  level: debug
  format: json
deepl:
  formality: more
  timeout: 5s
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "i18n/{locale}.po", cfg.LocalesPath)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "stderr", cfg.Log.Output)
	assert.Equal(t, "more", cfg.DeepL.Formality)
	assert.Equal(t, 5*time.Second, cfg.DeepL.Timeout)
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DEEPL_API_KEY", "")

	cfg, err := Load("")
	require.NoError(t, err)
	def := Default()
	assert.Equal(t, def.Log, cfg.Log)
	assert.Equal(t, def.DeepL, cfg.DeepL)
	assert.Equal(t, def.Duplicates, cfg.Duplicates)
}

func TestLoadSearchesWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tpo.config.json"),
		[]byte(`{"localesPath": "po/{locale}.po", "mainLanguage": "fr"}`), 0o644))
	t.Chdir(dir)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "po/{locale}.po", cfg.LocalesPath)
	assert.Equal(t, "fr", cfg.MainLanguage)
}

func TestLoadEnvironment(t *testing.T) {
	path := writeConfig(t, "tpo.config.json", `{"localesPath": "a/{locale}.po", "mainLanguage": "en"}`)
	t.Setenv("TPO_MAINLANGUAGE", "nl")
	t.Setenv("TPO_DUPLICATES_WORDS", "6")
	t.Setenv("DEEPL_API_KEY", "secret:fx")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "nl", cfg.MainLanguage)
	assert.Equal(t, 6, cfg.Duplicates.Words)
	assert.Equal(t, "secret:fx", cfg.DeepL.APIKey)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config")
}

func TestLoadMalformed(t *testing.T) {
	path := writeConfig(t, "tpo.config.json", `{"localesPath": `)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	err := cfg.Validate()
	require.ErrorIs(t, err, ErrMissingKey)
	assert.Contains(t, err.Error(), "localesPath")
	assert.Contains(t, err.Error(), "mainLanguage")

	cfg.LocalesPath = "locales/{locale}.po"
	err = cfg.Validate()
	require.ErrorIs(t, err, ErrMissingKey)
	assert.NotContains(t, err.Error(), "localesPath")

	cfg.MainLanguage = "en"
	assert.NoError(t, cfg.Validate())
}
