package providers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/teilomillet/cardsplit/llm"
	"github.com/teilomillet/cardsplit/utils"
)

// DefaultTimeout bounds a whole provider round trip.
const DefaultTimeout = 60 * time.Second

// Transport posts a JSON body and returns the raw response bytes.
// Failures are reported as TransportFailure errors.
type Transport interface {
	Post(ctx context.Context, url string, headers map[string]string, body []byte) ([]byte, error)
}

// HTTPTransport is the net/http Transport.
type HTTPTransport struct {
	client *http.Client
	logger utils.Logger
}

// NewHTTPTransport returns a transport whose requests time out after timeout.
// A non-positive timeout uses DefaultTimeout.
func NewHTTPTransport(timeout time.Duration, logger utils.Logger) *HTTPTransport {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPTransport{
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

func (t *HTTPTransport) Post(ctx context.Context, url string, headers map[string]string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, llm.NewLLMError(llm.ErrorTypeTransport, "failed to create request", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	t.logger.Debug("Sending request", "url", url, "bytes", len(body))
	start := time.Now()

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, llm.NewLLMError(llm.ErrorTypeTransport, "connection failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, llm.NewLLMError(llm.ErrorTypeTransport, "failed to read response body", err)
	}

	t.logger.Debug("Response received", "url", url, "status", resp.StatusCode, "bytes", len(respBody), "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		t.logger.Error("API error", "url", url, "status", resp.StatusCode)
		return nil, llm.NewLLMError(llm.ErrorTypeTransport, fmt.Sprintf("HTTP error: status code %d", resp.StatusCode), nil).
			WithExcerpt(string(respBody))
	}
	return respBody, nil
}
