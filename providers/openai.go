package providers

import (
	"encoding/json"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/teilomillet/cardsplit/config"
	"github.com/teilomillet/cardsplit/llm"
	"github.com/teilomillet/cardsplit/utils"
)

// OpenAIProvider speaks the OpenAI-compatible chat completions protocol.
type OpenAIProvider struct {
	apiKey   string
	settings config.Settings
	logger   utils.Logger
}

// chatRequest mirrors the chat completions body. Temperature is never
// omitted so that an explicit 0 reaches the server.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

// chatMessage is a plain role/content pair. openai.ChatCompletionMessage
// marshals itself and would escape the HTML in note fields.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// NewOpenAIProvider creates a new OpenAI provider instance.
func NewOpenAIProvider(apiKey string, settings config.Settings) Provider {
	return &OpenAIProvider{
		apiKey:   apiKey,
		settings: settings,
		logger:   utils.NewNopLogger(),
	}
}

func (p *OpenAIProvider) SetLogger(logger utils.Logger) {
	p.logger = logger
}

func (p *OpenAIProvider) Name() string {
	return string(config.ProviderOpenAI)
}

// Endpoint is the configured API base, used verbatim.
func (p *OpenAIProvider) Endpoint() string {
	return p.settings.APIBase
}

func (p *OpenAIProvider) Headers() map[string]string {
	return map[string]string{
		"Content-Type":  "application/json",
		"Authorization": "Bearer " + p.apiKey,
	}
}

func (p *OpenAIProvider) PrepareRequest(question, answer string) ([]byte, error) {
	prompt, err := llm.BuildPrompt(llm.PromptInput{
		Question: question,
		Answer:   answer,
		Language: p.settings.OutputLanguage,
		MaxCards: p.settings.MaxCards,
	})
	if err != nil {
		return nil, err
	}

	req := chatRequest{
		Model: p.settings.Model,
		Messages: []chatMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.System},
			{Role: openai.ChatMessageRoleUser, Content: prompt.User},
		},
		Temperature: p.settings.Temperature,
		MaxTokens:   p.settings.MaxOutputTokens,
	}
	p.logger.Debug("Preparing OpenAI request", "model", req.Model, "max_tokens", req.MaxTokens)
	return marshalRequest(req)
}

// ParseResponse returns choices[0].message.content from a chat completions
// envelope.
func (p *OpenAIProvider) ParseResponse(body []byte) (string, error) {
	var resp openai.ChatCompletionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", shapeError("failed to parse OpenAI response JSON", err, body)
	}
	if len(resp.Choices) == 0 {
		return "", shapeError("no choices in OpenAI response", nil, body)
	}

	msg := resp.Choices[0].Message
	if strings.TrimSpace(msg.Content) == "" {
		if msg.Refusal != "" {
			return "", shapeError("model refused the request: "+msg.Refusal, nil, body)
		}
		return "", shapeError("choices[0].message.content is missing or empty", nil, body)
	}

	p.logger.Debug("OpenAI response parsed", "finish_reason", resp.Choices[0].FinishReason, "content_length", len(msg.Content))
	return msg.Content, nil
}
