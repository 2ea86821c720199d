// Package splitter turns long notes into several short ones. Splitter runs
// one split call; Runner drives a whole batch against a Collection.
package splitter

import (
	"context"

	"github.com/teilomillet/cardsplit/config"
	"github.com/teilomillet/cardsplit/llm"
	"github.com/teilomillet/cardsplit/providers"
	"github.com/teilomillet/cardsplit/utils"
)

// TokenCounter estimates the token count of a prompt.
type TokenCounter interface {
	Count(model, text string) (int, error)
}

// Request identifies the note being split. NoteID is only used for logs and
// debug dumps.
type Request struct {
	NoteID   int64
	Question string
	Answer   string
}

// Splitter is the only place the configured provider kind selects a
// provider implementation.
type Splitter struct {
	registry   *providers.ProviderRegistry
	transport  providers.Transport
	logger     utils.Logger
	debug      *utils.DebugManager
	counter    TokenCounter
	credential func(name string) (string, error)
}

type Option func(*Splitter)

// WithDebugManager dumps every request and response through dm.
func WithDebugManager(dm *utils.DebugManager) Option {
	return func(s *Splitter) {
		s.debug = dm
	}
}

// WithTokenCounter logs a prompt token estimate before each call.
func WithTokenCounter(c TokenCounter) Option {
	return func(s *Splitter) {
		s.counter = c
	}
}

// WithCredentialLookup replaces the environment lookup of API keys.
func WithCredentialLookup(fn func(name string) (string, error)) Option {
	return func(s *Splitter) {
		s.credential = fn
	}
}

func New(registry *providers.ProviderRegistry, transport providers.Transport, logger utils.Logger, opts ...Option) *Splitter {
	s := &Splitter{
		registry:   registry,
		transport:  transport,
		logger:     logger,
		credential: config.GetCredential,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SplitNote splits one question/answer pair with the provider selected by
// settings.
func (s *Splitter) SplitNote(ctx context.Context, question, answer string, settings *config.Settings) ([]llm.SplitCard, error) {
	return s.Split(ctx, Request{Question: question, Answer: answer}, settings)
}

func (s *Splitter) Split(ctx context.Context, req Request, settings *config.Settings) ([]llm.SplitCard, error) {
	apiKey, err := s.credential(settings.APIKeyEnv)
	if err != nil {
		return nil, err
	}

	provider, err := s.registry.Get(apiKey, *settings)
	if err != nil {
		return nil, err
	}
	provider.SetLogger(s.logger)

	s.logPromptTokens(req, settings)

	cards, ex, err := providers.Split(ctx, provider, s.transport, req.Question, req.Answer)
	s.debug.SaveExchange(req.NoteID, ex.Provider, ex.Request, ex.Response)
	if err != nil {
		llm.LogError(s.logger, "Split failed", err, "note_id", req.NoteID, "provider", ex.Provider)
		return nil, err
	}

	s.logger.Debug("Split succeeded", "note_id", req.NoteID, "provider", ex.Provider, "cards", len(cards))
	return cards, nil
}

func (s *Splitter) logPromptTokens(req Request, settings *config.Settings) {
	if s.counter == nil {
		return
	}
	prompt, err := llm.BuildPrompt(llm.PromptInput{
		Question: req.Question,
		Answer:   req.Answer,
		Language: settings.OutputLanguage,
		MaxCards: settings.MaxCards,
	})
	if err != nil {
		return
	}
	n, err := s.counter.Count(settings.Model, prompt.Combined())
	if err != nil {
		s.logger.Debug("Token estimate unavailable", "model", settings.Model, "error", err)
		return
	}
	s.logger.Debug("Prompt token estimate", "note_id", req.NoteID, "model", settings.Model, "tokens", n)
}
