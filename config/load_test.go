package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "01_question_field": "Question",
  "answer_field": "Answer",
  "model": "gpt-4.1",
  "unrelated": true
}`), 0o644))

	s, raw, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, "Question", s.QuestionField)
	assert.Equal(t, "Answer", s.AnswerField)
	assert.Equal(t, "gpt-4.1", s.Model)
	assert.Equal(t, true, raw["unrelated"])
}

func TestLoadSettingsErrors(t *testing.T) {
	dir := t.TempDir()

	_, _, err := LoadSettings(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"temperature": 9}`), 0o644))
	_, _, err = LoadSettings(bad)
	assert.Error(t, err)
}

func TestSaveFileWritesNumberedKeysOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	raw := map[string]any{
		"question_field": "Q",
		"model":          "gpt-4.1",
		"api_base":       "https://proxy.example.com/v1/chat/completions",
		"custom":         "kept",
	}
	s, err := FromMap(raw)
	require.NoError(t, err)

	require.NoError(t, SaveFile(path, raw, s.Numbered(raw)))

	saved, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "kept", saved["custom"])
	for _, it := range Items {
		assert.Contains(t, saved, it.Numbered)
		assert.NotContains(t, saved, it.Canonical)
	}
	assert.NotContains(t, saved, "model")
	assert.NotContains(t, saved, "api_base")
	assert.Equal(t, "Q", saved["01_question_field"])
	assert.Equal(t, "gpt-4.1", saved["07_openai_model"])
	assert.Equal(t, "https://proxy.example.com/v1/chat/completions", saved["09_openai_api_base"])

	reloaded, err := FromMap(saved)
	require.NoError(t, err)
	assert.Equal(t, s, reloaded)
}

func TestDefaultNumbered(t *testing.T) {
	defaults := DefaultNumbered()
	assert.Len(t, defaults, len(Items))
	assert.Equal(t, "Front", defaults["01_question_field"])
	assert.Equal(t, DefaultGeminiBase, defaults["12_gemini_api_base"])

	s, err := FromMap(defaults)
	require.NoError(t, err)
	assert.Equal(t, 220, s.MaxAnswerChars)
}
