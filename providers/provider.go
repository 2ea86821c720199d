// Package providers implements the LLM wire protocols used to split cards:
// an OpenAI-compatible chat completions client and a Gemini generateContent
// client, plus the HTTP transport they share.
package providers

import (
	"bytes"
	"encoding/json"

	"github.com/teilomillet/cardsplit/llm"
	"github.com/teilomillet/cardsplit/utils"
)

// Provider turns one note into a request body and turns the provider's
// response envelope back into raw model text. It never performs I/O itself;
// a Transport carries the bytes.
type Provider interface {
	Name() string
	Endpoint() string
	Headers() map[string]string
	SetLogger(logger utils.Logger)

	PrepareRequest(question, answer string) ([]byte, error)
	ParseResponse(body []byte) (string, error)
}

// marshalRequest encodes v without HTML escaping; note fields are often HTML
// and the dumps stay readable this way.
func marshalRequest(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, llm.NewLLMError(llm.ErrorTypeInvalidInput, "failed to marshal request", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func shapeError(message string, err error, body []byte) error {
	return llm.NewLLMError(llm.ErrorTypeResponseShape, message, err).WithExcerpt(string(body))
}
