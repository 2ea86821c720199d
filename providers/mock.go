package providers

import (
	"context"
	"fmt"
	"sync"
)

// MockCall is one request seen by a MockTransport.
type MockCall struct {
	URL     string
	Headers map[string]string
	Body    []byte
}

// MockTransport is a Transport that replays canned responses in order and
// records every call.
type MockTransport struct {
	mu        sync.Mutex
	responses [][]byte
	err       error
	calls     []MockCall
}

// NewMockTransport returns a transport that answers with responses in order.
func NewMockTransport(responses ...[]byte) *MockTransport {
	return &MockTransport{responses: responses}
}

// SetError makes every subsequent Post fail with err.
func (m *MockTransport) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MockTransport) Post(ctx context.Context, url string, headers map[string]string, body []byte) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, MockCall{URL: url, Headers: headers, Body: body})
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.err != nil {
		return nil, m.err
	}
	if len(m.responses) == 0 {
		return nil, fmt.Errorf("mock transport: no response queued for call %d", len(m.calls))
	}
	resp := m.responses[0]
	m.responses = m.responses[1:]
	return resp, nil
}

// Calls returns a copy of the recorded calls.
func (m *MockTransport) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockCall(nil), m.calls...)
}
