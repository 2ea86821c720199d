package llm

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/spf13/cast"
)

// SplitCard is one question/answer pair produced from a long note.
// Both fields are non-empty and trimmed; only ParseCards builds them.
type SplitCard struct {
	Question string `json:"question" jsonschema:"minLength=1"`
	Answer   string `json:"answer" jsonschema:"minLength=1"`
}

// CardList is the JSON object the model is asked to return.
type CardList struct {
	Cards []SplitCard `json:"cards" jsonschema:"minItems=1"`
}

// ParseCards decodes extracted model output into cards.
//
// Entries that are not objects or that lack a question or an answer are
// dropped. The result is never empty: an input without a usable card fails
// with MissingCardsField or NoValidCards.
func ParseCards(text string) ([]SplitCard, error) {
	if strings.TrimSpace(text) == "" {
		return nil, NewLLMError(ErrorTypeEmptyResponse, "model response was empty", nil)
	}

	var data any
	if err := json.Unmarshal([]byte(text), &data); err != nil {
		return nil, NewLLMError(ErrorTypeMalformedJSON, "failed to parse JSON in model response", err).WithExcerpt(text)
	}

	obj, ok := data.(map[string]any)
	if !ok {
		return nil, NewLLMError(ErrorTypeMissingCardsField, "model response is not a JSON object", nil).WithExcerpt(text)
	}
	entries, ok := obj["cards"].([]any)
	if !ok || len(entries) == 0 {
		return nil, NewLLMError(ErrorTypeMissingCardsField, "model response does not contain a non-empty 'cards' list", nil)
	}

	cards := make([]SplitCard, 0, len(entries))
	for _, entry := range entries {
		fields, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		q := strings.TrimSpace(cast.ToString(fields["question"]))
		a := strings.TrimSpace(cast.ToString(fields["answer"]))
		if q == "" || a == "" {
			continue
		}
		cards = append(cards, SplitCard{Question: q, Answer: a})
	}

	if len(cards) == 0 {
		return nil, NewLLMError(ErrorTypeNoValidCards, "no valid cards were produced from the model response", nil)
	}
	return cards, nil
}

// ParseModelOutput runs raw model text through ExtractJSON and ParseCards.
// The diagnostic excerpt of a MalformedJSON error is taken from the raw text.
func ParseModelOutput(raw string) ([]SplitCard, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, NewLLMError(ErrorTypeEmptyResponse, "model response was empty", nil)
	}
	cards, err := ParseCards(ExtractJSON(raw))
	var llmErr *LLMError
	if errors.As(err, &llmErr) && llmErr.Type == ErrorTypeMalformedJSON {
		llmErr.WithExcerpt(raw)
	}
	return cards, err
}
