package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cast"
)

// ProviderKind names an LLM wire protocol.
type ProviderKind string

const (
	ProviderOpenAI ProviderKind = "openai"
	ProviderGemini ProviderKind = "gemini"
)

// ParseProviderKind normalizes a configured provider name. Anything other
// than "gemini" selects the OpenAI-compatible protocol.
func ParseProviderKind(s string) ProviderKind {
	if strings.ToLower(strings.TrimSpace(s)) == string(ProviderGemini) {
		return ProviderGemini
	}
	return ProviderOpenAI
}

// ProviderSettings is the per-provider part of Settings.
type ProviderSettings struct {
	Model     string `validate:"required"`
	APIKeyEnv string `validate:"required"`
	APIBase   string `validate:"required"`
}

// Settings is the resolved, read-only view of the add-on settings for one
// batch.
type Settings struct {
	QuestionField   string       `validate:"required"`
	AnswerField     string       `validate:"required"`
	MaxAnswerChars  int          `validate:"gt=0"`
	OutputLanguage  string       `validate:"required"`
	MaxCards        int          `validate:"gt=0"`
	Provider        ProviderKind `validate:"oneof=openai gemini"`
	Temperature     float64      `validate:"gte=0,lte=2"`
	MaxOutputTokens int          `validate:"gt=0"`
	TagForNew       string       `validate:"required"`
	TagForOriginal  string       `validate:"required"`

	ProviderSettings
}

var validate = validator.New()

// Validate checks the value ranges of s.
func (s *Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	return nil
}

// providerItems maps a provider to its (model, api key env, api base) keys.
var providerItems = map[ProviderKind][3]string{
	ProviderOpenAI: {KeyOpenAIModel, KeyOpenAIAPIKeyEnv, KeyOpenAIAPIBase},
	ProviderGemini: {KeyGeminiModel, KeyGeminiAPIKeyEnv, KeyGeminiAPIBase},
}

// ResolveProvider returns the model, credential variable and endpoint base
// for kind.
func ResolveProvider(raw map[string]any, kind ProviderKind) (ProviderSettings, error) {
	keys, ok := providerItems[kind]
	if !ok {
		return ProviderSettings{}, fmt.Errorf("unknown provider %q", kind)
	}
	model, err := resolveString(raw, keys[0])
	if err != nil {
		return ProviderSettings{}, err
	}
	keyEnv, err := resolveString(raw, keys[1])
	if err != nil {
		return ProviderSettings{}, err
	}
	base, err := resolveString(raw, keys[2])
	if err != nil {
		return ProviderSettings{}, err
	}
	return ProviderSettings{Model: model, APIKeyEnv: keyEnv, APIBase: base}, nil
}

// FromMap resolves and validates Settings from a raw settings mapping.
func FromMap(raw map[string]any) (*Settings, error) {
	r := resolver{raw: raw}
	s := &Settings{
		QuestionField:   r.str(KeyQuestionField),
		AnswerField:     r.str(KeyAnswerField),
		MaxAnswerChars:  r.int(KeyMaxAnswerChars),
		OutputLanguage:  r.str(KeyOutputLanguage),
		MaxCards:        r.int(KeyMaxCards),
		Provider:        ParseProviderKind(r.str(KeyProvider)),
		Temperature:     r.float(KeyTemperature),
		MaxOutputTokens: r.int(KeyMaxOutputTokens),
		TagForNew:       r.str(KeyTagForNew),
		TagForOriginal:  r.str(KeyTagForOriginal),
	}
	if r.err != nil {
		return nil, r.err
	}

	ps, err := ResolveProvider(raw, s.Provider)
	if err != nil {
		return nil, err
	}
	s.ProviderSettings = ps

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Override applies non-empty provider and model overrides and re-resolves
// the provider block when the provider changes.
func (s *Settings) Override(raw map[string]any, provider, model string) error {
	if provider != "" {
		kind := ParseProviderKind(provider)
		if kind != s.Provider {
			ps, err := ResolveProvider(raw, kind)
			if err != nil {
				return err
			}
			s.Provider = kind
			s.ProviderSettings = ps
		}
	}
	if model != "" {
		s.Model = model
	}
	return s.Validate()
}

// resolver keeps the first coercion error so FromMap reads like a list.
type resolver struct {
	raw map[string]any
	err error
}

func (r *resolver) str(key string) string {
	v, err := resolveString(r.raw, key)
	r.keep(err)
	return v
}

func (r *resolver) int(key string) int {
	it, _ := lookupItem(key)
	v, err := cast.ToIntE(it.Resolve(r.raw))
	r.keep(wrapValueErr(key, err))
	return v
}

func (r *resolver) float(key string) float64 {
	it, _ := lookupItem(key)
	v, err := cast.ToFloat64E(it.Resolve(r.raw))
	r.keep(wrapValueErr(key, err))
	return v
}

func (r *resolver) keep(err error) {
	if r.err == nil && err != nil {
		r.err = err
	}
}

func resolveString(raw map[string]any, key string) (string, error) {
	it, ok := lookupItem(key)
	if !ok {
		return "", fmt.Errorf("unknown setting %q", key)
	}
	v, err := cast.ToStringE(it.Resolve(raw))
	if err != nil {
		return "", wrapValueErr(key, err)
	}
	return strings.TrimSpace(v), nil
}

func wrapValueErr(key string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("invalid value for setting %q: %w", key, err)
}
