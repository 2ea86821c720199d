package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teilomillet/cardsplit/llm"
)

func TestGetCredential(t *testing.T) {
	t.Setenv("CARDSPLIT_TEST_KEY", "  secret  ")
	key, err := GetCredential("CARDSPLIT_TEST_KEY")
	require.NoError(t, err)
	assert.Equal(t, "secret", key)
}

func TestGetCredentialMissing(t *testing.T) {
	t.Setenv("CARDSPLIT_BLANK_KEY", "   ")

	for _, name := range []string{"CARDSPLIT_BLANK_KEY", "CARDSPLIT_UNSET_KEY_12345"} {
		_, err := GetCredential(name)
		require.Error(t, err)
		assert.True(t, llm.IsType(err, llm.ErrorTypeMissingCredential))
		assert.Contains(t, err.Error(), name)
	}
}
