package providers

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/teilomillet/cardsplit/config"
)

// testSettings returns the default settings for kind.
func testSettings(t *testing.T, kind config.ProviderKind) config.Settings {
	t.Helper()
	s, err := config.FromMap(map[string]any{"provider": string(kind)})
	require.NoError(t, err)
	return *s
}
