// Package tokens estimates prompt sizes with tiktoken encodings.
package tokens

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/teilomillet/cardsplit/utils"
)

// FallbackEncoding is used for models tiktoken does not know, which
// includes every Gemini model. Counts for those are estimates only.
const FallbackEncoding = "cl100k_base"

// Counter counts tokens per model and caches the loaded encodings.
type Counter struct {
	mutex     sync.Mutex
	encodings map[string]*tiktoken.Tiktoken
	logger    utils.Logger
}

func NewCounter(logger utils.Logger) *Counter {
	return &Counter{
		encodings: make(map[string]*tiktoken.Tiktoken),
		logger:    logger,
	}
}

// Count returns the number of tokens text encodes to for model.
func (c *Counter) Count(model, text string) (int, error) {
	encoding, err := c.encoding(model)
	if err != nil {
		return 0, err
	}
	return len(encoding.Encode(text, nil, nil)), nil
}

func (c *Counter) encoding(model string) (*tiktoken.Tiktoken, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if enc, ok := c.encodings[model]; ok {
		return enc, nil
	}

	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		c.logger.Debug("No tiktoken encoding for model, using fallback", "model", model, "encoding", FallbackEncoding)
		enc, err = tiktoken.GetEncoding(FallbackEncoding)
		if err != nil {
			return nil, fmt.Errorf("failed to get encoding for model %q: %w", model, err)
		}
	}
	c.encodings[model] = enc
	return enc, nil
}
