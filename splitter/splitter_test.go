package splitter_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/teilomillet/cardsplit/config"
	"github.com/teilomillet/cardsplit/llm"
	"github.com/teilomillet/cardsplit/providers"
	"github.com/teilomillet/cardsplit/splitter"
	"github.com/teilomillet/cardsplit/utils"
)

type fixedCounter struct{ n int }

func (c fixedCounter) Count(model, text string) (int, error) { return c.n, nil }

func geminiSettings(t *testing.T) *config.Settings {
	t.Helper()
	s, err := config.FromMap(map[string]any{"06_provider": "gemini", "11_gemini_api_key_env": "TEST_GEMINI_KEY"})
	require.NoError(t, err)
	return s
}

func TestSplitNoteSelectsProvider(t *testing.T) {
	t.Setenv("TEST_GEMINI_KEY", "g-secret")
	t.Setenv("OPENAI_API_KEY", "sk-secret")

	geminiBody := []byte(`{"candidates":[{"content":{"parts":[{"text":"{\"cards\":[{\"question\":\"gq\",\"answer\":\"ga\"}]}"}]}}]}`)
	openaiBody := []byte(`{"choices":[{"message":{"role":"assistant","content":"{\"cards\":[{\"question\":\"oq\",\"answer\":\"oa\"}]}"}}]}`)
	transport := providers.NewMockTransport(geminiBody, openaiBody)
	s := splitter.New(providers.NewProviderRegistry(), transport, utils.NewNopLogger())

	cards, err := s.SplitNote(context.Background(), "Q", "A", geminiSettings(t))
	require.NoError(t, err)
	assert.Equal(t, []llm.SplitCard{{Question: "gq", Answer: "ga"}}, cards)

	openai, err := config.FromMap(map[string]any{})
	require.NoError(t, err)
	cards, err = s.SplitNote(context.Background(), "Q", "A", openai)
	require.NoError(t, err)
	assert.Equal(t, []llm.SplitCard{{Question: "oq", Answer: "oa"}}, cards)

	calls := transport.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "g-secret", calls[0].Headers["x-goog-api-key"])
	assert.Contains(t, calls[0].URL, ":generateContent")
	assert.Equal(t, "Bearer sk-secret", calls[1].Headers["Authorization"])
}

func TestSplitNoteMissingCredential(t *testing.T) {
	t.Setenv("TEST_GEMINI_KEY", "")
	transport := providers.NewMockTransport()
	s := splitter.New(providers.NewProviderRegistry(), transport, utils.NewNopLogger())

	_, err := s.SplitNote(context.Background(), "Q", "A", geminiSettings(t))
	require.Error(t, err)
	assert.True(t, llm.IsType(err, llm.ErrorTypeMissingCredential))
	assert.Contains(t, err.Error(), "TEST_GEMINI_KEY")
	assert.Empty(t, transport.Calls(), "nothing is sent without a key")
}

func TestSplitWritesDebugDumpsAndLogsTokens(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dumps")
	logger := utils.NewMockLogger()
	body := []byte(`{"choices":[{"message":{"content":"not json at all"}}]}`)

	s := splitter.New(
		providers.NewProviderRegistry(),
		providers.NewMockTransport(body),
		logger,
		splitter.WithDebugManager(utils.NewDebugManager(dir, logger)),
		splitter.WithTokenCounter(fixedCounter{n: 123}),
		splitter.WithCredentialLookup(func(name string) (string, error) { return "k", nil }),
	)
	settings, err := config.FromMap(map[string]any{})
	require.NoError(t, err)

	_, err = s.Split(context.Background(), splitter.Request{NoteID: 77, Question: "Q", Answer: "A"}, settings)
	require.Error(t, err)
	assert.True(t, llm.IsType(err, llm.ErrorTypeMalformedJSON))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Contains(t, e.Name(), "note_77_openai_")
	}

	logger.AssertCalled(t, "Debug", "Prompt token estimate", mock.Anything)
	assert.Equal(t, 1, logger.ErrorCallCount)
	assert.Equal(t, "Split failed", logger.LastErrorMessage)
}
