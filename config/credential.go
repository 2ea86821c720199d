package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/teilomillet/cardsplit/llm"
)

// GetCredential returns the API key stored in the environment variable
// name. It fails with a MissingCredential error naming the variable when it
// is unset or blank.
func GetCredential(name string) (string, error) {
	key := strings.TrimSpace(os.Getenv(name))
	if key == "" {
		return "", llm.NewLLMError(
			llm.ErrorTypeMissingCredential,
			fmt.Sprintf("API key is missing. Please set environment variable '%s'", name),
			nil,
		)
	}
	return key, nil
}
