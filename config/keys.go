package config

import "strings"

// Canonical keys of the add-on settings file.
const (
	KeyQuestionField    = "question_field"
	KeyAnswerField      = "answer_field"
	KeyMaxAnswerChars   = "max_answer_chars"
	KeyOutputLanguage   = "output_language"
	KeyMaxCards         = "max_cards"
	KeyProvider         = "provider"
	KeyOpenAIModel      = "openai_model"
	KeyOpenAIAPIKeyEnv  = "openai_api_key_env"
	KeyOpenAIAPIBase    = "openai_api_base"
	KeyGeminiModel      = "gemini_model"
	KeyGeminiAPIKeyEnv  = "gemini_api_key_env"
	KeyGeminiAPIBase    = "gemini_api_base"
	KeyTemperature      = "temperature"
	KeyMaxOutputTokens  = "max_output_tokens"
	KeyTagForNew        = "tag_for_new"
	KeyTagForOriginal   = "tag_for_original"
	legacyKeyModel      = "model"
	legacyKeyAPIKeyEnv  = "api_key_env"
	legacyKeyAPIBase    = "api_base"
	DefaultOpenAIBase   = "https://api.openai.com/v1/chat/completions"
	DefaultGeminiBase   = "https://generativelanguage.googleapis.com/v1beta"
	DefaultOpenAIModel  = "gpt-4o-mini"
	DefaultGeminiModel  = "gemini-2.5-flash"
	DefaultOpenAIKeyEnv = "OPENAI_API_KEY"
	DefaultGeminiKeyEnv = "GEMINI_API_KEY"
)

// Item describes one setting and every name it has had. Numbered keys keep
// config.json in a readable order; canonical keys are what older releases
// wrote; legacy keys predate per-provider settings and are shared by both
// providers.
type Item struct {
	Canonical string
	Numbered  string
	Default   any
	Legacy    []string
}

// Items is the ordered settings table. Resolution for every field goes
// through it, so new schemas only ever add rows or aliases here.
var Items = []Item{
	{KeyQuestionField, "01_question_field", "Front", nil},
	{KeyAnswerField, "02_answer_field", "Back", nil},
	{KeyMaxAnswerChars, "03_max_answer_chars", 220, nil},
	{KeyOutputLanguage, "04_output_language", "English", nil},
	{KeyMaxCards, "05_max_cards", 5, nil},

	{KeyProvider, "06_provider", string(ProviderOpenAI), nil},

	{KeyOpenAIModel, "07_openai_model", DefaultOpenAIModel, []string{legacyKeyModel}},
	{KeyOpenAIAPIKeyEnv, "08_openai_api_key_env", DefaultOpenAIKeyEnv, []string{legacyKeyAPIKeyEnv}},
	{KeyOpenAIAPIBase, "09_openai_api_base", DefaultOpenAIBase, []string{legacyKeyAPIBase}},

	{KeyGeminiModel, "10_gemini_model", DefaultGeminiModel, []string{legacyKeyModel}},
	{KeyGeminiAPIKeyEnv, "11_gemini_api_key_env", DefaultGeminiKeyEnv, []string{legacyKeyAPIKeyEnv}},
	{KeyGeminiAPIBase, "12_gemini_api_base", DefaultGeminiBase, []string{legacyKeyAPIBase}},

	{KeyTemperature, "13_temperature", 0.2, nil},
	{KeyMaxOutputTokens, "14_max_output_tokens", 500, nil},

	{KeyTagForNew, "15_tag_for_new", "SplitFromLong", nil},
	{KeyTagForOriginal, "16_tag_for_original", "LongAnswerSplitSource", nil},
}

func lookupItem(canonical string) (Item, bool) {
	for _, it := range Items {
		if it.Canonical == canonical {
			return it, true
		}
	}
	return Item{}, false
}

// present reports whether raw has a usable value under key. Null values and
// blank strings count as absent so that an emptied field falls back.
func present(raw map[string]any, key string) (any, bool) {
	v, ok := raw[key]
	if !ok || v == nil {
		return nil, false
	}
	if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
		return nil, false
	}
	return v, true
}

// Resolve returns the value for item: numbered key, then canonical key, then
// legacy aliases, then the default.
func (it Item) Resolve(raw map[string]any) any {
	if v, ok := present(raw, it.Numbered); ok {
		return v
	}
	if v, ok := present(raw, it.Canonical); ok {
		return v
	}
	for _, key := range it.Legacy {
		if v, ok := present(raw, key); ok {
			return v
		}
	}
	return it.Default
}

// DefaultNumbered returns every default under its numbered key.
func DefaultNumbered() map[string]any {
	out := make(map[string]any, len(Items))
	for _, it := range Items {
		out[it.Numbered] = it.Default
	}
	return out
}
