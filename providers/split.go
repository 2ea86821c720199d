package providers

import (
	"context"
	"errors"

	"github.com/teilomillet/cardsplit/llm"
)

// Exchange is the record of one provider round trip.
type Exchange struct {
	Provider string
	Endpoint string
	Request  []byte
	Response []byte
}

// Split runs one split call: build the request, post it, unwrap the
// provider envelope and parse the cards out of the model text. Whatever
// was sent and received is returned in the Exchange even on failure.
func Split(ctx context.Context, p Provider, t Transport, question, answer string) ([]llm.SplitCard, Exchange, error) {
	ex := Exchange{Provider: p.Name(), Endpoint: p.Endpoint()}

	body, err := p.PrepareRequest(question, answer)
	if err != nil {
		return nil, ex, err
	}
	ex.Request = body

	resp, err := t.Post(ctx, ex.Endpoint, p.Headers(), body)
	ex.Response = resp
	if err != nil {
		var llmErr *llm.LLMError
		if !errors.As(err, &llmErr) {
			err = llm.NewLLMError(llm.ErrorTypeTransport, "request failed", err)
		}
		return nil, ex, err
	}

	text, err := p.ParseResponse(resp)
	if err != nil {
		return nil, ex, err
	}

	cards, err := llm.ParseModelOutput(text)
	if err != nil {
		return nil, ex, err
	}
	return cards, ex, nil
}
