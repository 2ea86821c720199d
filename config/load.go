package config

import (
	"fmt"
	"maps"

	"github.com/spf13/viper"
)

// LoadFile reads the add-on settings file at path and returns its raw
// mapping. Keys are lower-cased by viper, which matches every known key.
func LoadFile(path string) (map[string]any, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read settings file %s: %w", path, err)
	}
	return v.AllSettings(), nil
}

// LoadSettings reads path and resolves it into validated Settings. The raw
// mapping is returned as well for later overrides and saving.
func LoadSettings(path string) (*Settings, map[string]any, error) {
	raw, err := LoadFile(path)
	if err != nil {
		return nil, nil, err
	}
	s, err := FromMap(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("settings file %s: %w", path, err)
	}
	return s, raw, nil
}

// Numbered returns s under numbered keys, the layout SaveFile writes.
func (s *Settings) Numbered(raw map[string]any) map[string]any {
	out := map[string]any{
		"01_question_field":    s.QuestionField,
		"02_answer_field":      s.AnswerField,
		"03_max_answer_chars":  s.MaxAnswerChars,
		"04_output_language":   s.OutputLanguage,
		"05_max_cards":         s.MaxCards,
		"06_provider":          string(s.Provider),
		"13_temperature":       s.Temperature,
		"14_max_output_tokens": s.MaxOutputTokens,
		"15_tag_for_new":       s.TagForNew,
		"16_tag_for_original":  s.TagForOriginal,
	}
	// Both provider blocks are kept so switching provider loses nothing.
	for _, kind := range []ProviderKind{ProviderOpenAI, ProviderGemini} {
		ps := s.ProviderSettings
		if kind != s.Provider {
			var err error
			if ps, err = ResolveProvider(raw, kind); err != nil {
				continue
			}
		}
		keys := providerItems[kind]
		for i, value := range []string{ps.Model, ps.APIKeyEnv, ps.APIBase} {
			it, _ := lookupItem(keys[i])
			out[it.Numbered] = value
		}
	}
	return out
}

// StripLegacy returns a copy of raw without canonical and legacy keys, so a
// file rewritten with numbered keys holds each setting once.
func StripLegacy(raw map[string]any) map[string]any {
	drop := map[string]bool{
		legacyKeyModel:     true,
		legacyKeyAPIKeyEnv: true,
		legacyKeyAPIBase:   true,
	}
	for _, it := range Items {
		drop[it.Canonical] = true
		for _, key := range it.Legacy {
			drop[key] = true
		}
	}
	cleaned := make(map[string]any, len(raw))
	for k, v := range raw {
		if !drop[k] {
			cleaned[k] = v
		}
	}
	return cleaned
}

// SaveFile writes values under numbered keys to path, keeping unknown keys
// from raw and dropping canonical and legacy ones.
func SaveFile(path string, raw map[string]any, values map[string]any) error {
	out := StripLegacy(raw)
	maps.Copy(out, values)

	v := viper.New()
	v.SetConfigType("json")
	for k, val := range out {
		v.Set(k, val)
	}
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write settings file %s: %w", path, err)
	}
	return nil
}
