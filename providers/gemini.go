package providers

import (
	"encoding/json"
	"strings"

	"google.golang.org/genai"

	"github.com/teilomillet/cardsplit/config"
	"github.com/teilomillet/cardsplit/llm"
	"github.com/teilomillet/cardsplit/utils"
)

const geminiModelPlaceholder = "{model}"

// GeminiProvider speaks the Gemini generateContent protocol.
type GeminiProvider struct {
	apiKey   string
	settings config.Settings
	logger   utils.Logger
}

type generateContentRequest struct {
	Contents         []*genai.Content `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

// generateContentResponse holds only the path read from a response, so a
// malformed field elsewhere in the envelope does not reject it.
type generateContentResponse struct {
	Candidates []*struct {
		Content *struct {
			Parts []*responsePart `json:"parts"`
		} `json:"content"`
		FinishReason genai.FinishReason `json:"finishReason"`
	} `json:"candidates"`
}

type responsePart struct {
	Text    string `json:"text"`
	Thought bool   `json:"thought"`
}

type generationConfig struct {
	Temperature      float64 `json:"temperature"`
	MaxOutputTokens  int     `json:"maxOutputTokens"`
	ResponseMIMEType string  `json:"responseMimeType"`
}

// NewGeminiProvider creates a new Gemini provider instance.
func NewGeminiProvider(apiKey string, settings config.Settings) Provider {
	return &GeminiProvider{
		apiKey:   apiKey,
		settings: settings,
		logger:   utils.NewNopLogger(),
	}
}

func (p *GeminiProvider) SetLogger(logger utils.Logger) {
	p.logger = logger
}

func (p *GeminiProvider) Name() string {
	return string(config.ProviderGemini)
}

func (p *GeminiProvider) Endpoint() string {
	return GeminiEndpoint(p.settings.APIBase, p.settings.Model)
}

func (p *GeminiProvider) Headers() map[string]string {
	return map[string]string{
		"Content-Type":   "application/json",
		"x-goog-api-key": p.apiKey,
	}
}

// GeminiEndpoint builds the generateContent URL for model.
//
// A base containing "{model}" is a template and only gets the model
// substituted. Otherwise one trailing slash is removed and the
// "models/<model>:generateContent" path is appended, reusing a trailing
// "/models" segment when the base already has one.
func GeminiEndpoint(base, model string) string {
	if strings.Contains(base, geminiModelPlaceholder) {
		return strings.ReplaceAll(base, geminiModelPlaceholder, model)
	}
	base = strings.TrimSuffix(strings.TrimSpace(base), "/")
	if strings.HasSuffix(base, "/models") {
		return base + "/" + model + ":generateContent"
	}
	return base + "/models/" + model + ":generateContent"
}

func (p *GeminiProvider) PrepareRequest(question, answer string) ([]byte, error) {
	prompt, err := llm.BuildPrompt(llm.PromptInput{
		Question: question,
		Answer:   answer,
		Language: p.settings.OutputLanguage,
		MaxCards: p.settings.MaxCards,
	})
	if err != nil {
		return nil, err
	}

	req := generateContentRequest{
		Contents: []*genai.Content{
			genai.NewContentFromText(prompt.Combined(), genai.RoleUser),
		},
		GenerationConfig: generationConfig{
			Temperature:      p.settings.Temperature,
			MaxOutputTokens:  p.settings.MaxOutputTokens,
			ResponseMIMEType: "application/json",
		},
	}
	p.logger.Debug("Preparing Gemini request", "model", p.settings.Model, "max_output_tokens", p.settings.MaxOutputTokens)
	return marshalRequest(req)
}

// ParseResponse joins the text parts of the first candidate. Blank parts
// and thought parts are skipped.
func (p *GeminiProvider) ParseResponse(body []byte) (string, error) {
	var resp generateContentResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", shapeError("failed to parse Gemini response JSON", err, body)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return "", shapeError("no candidates in Gemini response", nil, body)
	}

	content := resp.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 {
		return "", shapeError("candidates[0].content.parts is missing or empty", nil, body)
	}

	var texts []string
	for _, part := range content.Parts {
		// Thought parts are reasoning, never the card list.
		if part == nil || part.Thought || strings.TrimSpace(part.Text) == "" {
			continue
		}
		texts = append(texts, part.Text)
	}
	text := strings.Join(texts, "\n")
	if strings.TrimSpace(text) == "" {
		return "", shapeError("Gemini response contains no text", nil, body)
	}

	p.logger.Debug("Gemini response parsed", "finish_reason", resp.Candidates[0].FinishReason, "parts", len(texts))
	return text, nil
}
