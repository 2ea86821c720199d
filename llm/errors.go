package llm

import (
	"errors"
	"fmt"

	"github.com/teilomillet/cardsplit/utils"
)

// ErrorType represents the type of an error
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeMissingCredential
	ErrorTypeTransport
	ErrorTypeResponseShape
	ErrorTypeEmptyResponse
	ErrorTypeMalformedJSON
	ErrorTypeMissingCardsField
	ErrorTypeNoValidCards
	ErrorTypeInvalidInput
)

// LLMError is the error returned by every step of a split call.
// None of these errors is fatal for a batch; they describe why one note failed.
type LLMError struct {
	Type    ErrorType
	Message string
	// Excerpt holds a truncated copy of the offending content, if any.
	Excerpt string
	Err     error
}

func (e *LLMError) Error() string {
	msg := e.TypeString() + ": " + e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s (%s): %v", e.TypeString(), e.Message, e.Err)
	}
	if e.Excerpt != "" {
		msg += fmt.Sprintf("\ncontent=%q", e.Excerpt)
	}
	return msg
}

func (e *LLMError) Unwrap() error {
	return e.Err
}

func (e *LLMError) TypeString() string {
	switch e.Type {
	case ErrorTypeMissingCredential:
		return "MissingCredential"
	case ErrorTypeTransport:
		return "TransportFailure"
	case ErrorTypeResponseShape:
		return "ResponseShapeError"
	case ErrorTypeEmptyResponse:
		return "EmptyResponse"
	case ErrorTypeMalformedJSON:
		return "MalformedJSON"
	case ErrorTypeMissingCardsField:
		return "MissingCardsField"
	case ErrorTypeNoValidCards:
		return "NoValidCards"
	case ErrorTypeInvalidInput:
		return "InvalidInputError"
	default:
		return "UnknownError"
	}
}

// LoggableFields returns the error as key/value pairs for a utils.Logger.
func (e *LLMError) LoggableFields() []any {
	return []any{
		"error_type", e.TypeString(),
		"message", e.Message,
		"error", e.Err,
	}
}

// NewLLMError creates a new LLMError
func NewLLMError(errType ErrorType, message string, err error) *LLMError {
	return &LLMError{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}

// WithExcerpt attaches a bounded copy of content to the error and returns it.
func (e *LLMError) WithExcerpt(content string) *LLMError {
	e.Excerpt = utils.Truncate(content, ExcerptLimit)
	return e
}

// IsType reports whether err, or any error it wraps, is an LLMError of type t.
func IsType(err error, t ErrorType) bool {
	var llmErr *LLMError
	if errors.As(err, &llmErr) {
		return llmErr.Type == t
	}
	return false
}

// LogError logs err at error level, expanding LLMError fields when possible.
func LogError(logger utils.Logger, msg string, err error, keysAndValues ...any) {
	var llmErr *LLMError
	if errors.As(err, &llmErr) {
		logger.Error(msg, append(keysAndValues, llmErr.LoggableFields()...)...)
		return
	}
	logger.Error(msg, append(keysAndValues, "error", err)...)
}
