package llm

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCards(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected []SplitCard
		errType  ErrorType
	}{
		{
			name:     "single card",
			input:    `{"cards":[{"question":"q","answer":"a"}]}`,
			expected: []SplitCard{{Question: "q", Answer: "a"}},
		},
		{
			name:     "values are trimmed",
			input:    `{"cards":[{"question":"  q \n","answer":"\ta"}]}`,
			expected: []SplitCard{{Question: "q", Answer: "a"}},
		},
		{
			name:     "invalid siblings are dropped",
			input:    `{"cards":[{"question":"q1"},{"question":"q2","answer":"a2"},"text",{"question":" ","answer":"a3"}]}`,
			expected: []SplitCard{{Question: "q2", Answer: "a2"}},
		},
		{
			name:     "scalar values are stringified",
			input:    `{"cards":[{"question":"2+2?","answer":4}]}`,
			expected: []SplitCard{{Question: "2+2?", Answer: "4"}},
		},
		{
			name:     "extra keys ignored",
			input:    `{"cards":[{"question":"q","answer":"a","hint":"h"}],"note":"x"}`,
			expected: []SplitCard{{Question: "q", Answer: "a"}},
		},
		{
			name:     "more cards than requested are kept",
			input:    `{"cards":[{"question":"1","answer":"1"},{"question":"2","answer":"2"},{"question":"3","answer":"3"},{"question":"4","answer":"4"},{"question":"5","answer":"5"},{"question":"6","answer":"6"}]}`,
			expected: []SplitCard{{"1", "1"}, {"2", "2"}, {"3", "3"}, {"4", "4"}, {"5", "5"}, {"6", "6"}},
		},
		{name: "empty", input: "", errType: ErrorTypeEmptyResponse},
		{name: "blank", input: " \n\t", errType: ErrorTypeEmptyResponse},
		{name: "malformed", input: `{"cards":[{"question":"a","answer":"b"`, errType: ErrorTypeMalformedJSON},
		{name: "top level array", input: `[{"question":"q","answer":"a"}]`, errType: ErrorTypeMissingCardsField},
		{name: "missing cards", input: `{"items":[]}`, errType: ErrorTypeMissingCardsField},
		{name: "cards not a list", input: `{"cards":{"question":"q","answer":"a"}}`, errType: ErrorTypeMissingCardsField},
		{name: "empty cards", input: `{"cards":[]}`, errType: ErrorTypeMissingCardsField},
		{name: "null cards", input: `{"cards":null}`, errType: ErrorTypeMissingCardsField},
		{name: "no valid cards", input: `{"cards":[{"question":"q"},{"answer":"a"}]}`, errType: ErrorTypeNoValidCards},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cards, err := ParseCards(tc.input)
			if tc.expected == nil {
				require.Error(t, err)
				assert.Nil(t, cards)
				assert.True(t, IsType(err, tc.errType), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, cards)
		})
	}
}

func TestParseCardsMalformedCarriesDetail(t *testing.T) {
	input := `{"cards": [` + strings.Repeat("x", 1000)
	_, err := ParseCards(input)

	var llmErr *LLMError
	require.True(t, errors.As(err, &llmErr))
	assert.Equal(t, ErrorTypeMalformedJSON, llmErr.Type)
	assert.NotNil(t, llmErr.Err, "decode error is kept")
	assert.Len(t, llmErr.Excerpt, ExcerptLimit)
	assert.True(t, strings.HasPrefix(input, llmErr.Excerpt))
}

func TestParseModelOutput(t *testing.T) {
	t.Run("fenced envelope content", func(t *testing.T) {
		raw := "```json\n{\"cards\":[{\"question\":\"q\",\"answer\":\"a\"}]}\n```"
		cards, err := ParseModelOutput(raw)
		require.NoError(t, err)

		direct, err := ParseCards(ExtractJSON(raw))
		require.NoError(t, err)
		assert.Equal(t, direct, cards)
	})

	t.Run("fenced empty list", func(t *testing.T) {
		_, err := ParseModelOutput("```json\n{\"cards\":[]}\n```")
		assert.True(t, IsType(err, ErrorTypeMissingCardsField))
	})

	t.Run("truncated output", func(t *testing.T) {
		raw := "```\n{\"cards\":[{\"question\":\"a\",\"answer\":\"b\""
		_, err := ParseModelOutput(raw)
		require.Error(t, err)
		assert.True(t, IsType(err, ErrorTypeMalformedJSON))

		var llmErr *LLMError
		require.ErrorAs(t, err, &llmErr)
		assert.Equal(t, raw, llmErr.Excerpt, "excerpt shows the raw model text")
	})

	t.Run("blank", func(t *testing.T) {
		_, err := ParseModelOutput("  ")
		assert.True(t, IsType(err, ErrorTypeEmptyResponse))
	})
}
