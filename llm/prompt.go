package llm

import (
	"bytes"
	"strings"
	"text/template"
)

// PromptTemplate is a named text/template used to render prompt text.
type PromptTemplate struct {
	Name     string
	Template string
	tmpl     *template.Template
}

// NewPromptTemplate parses template and panics if it is invalid.
// It is meant for package-level templates.
func NewPromptTemplate(name, text string) *PromptTemplate {
	return &PromptTemplate{
		Name:     name,
		Template: text,
		tmpl:     template.Must(template.New(name).Parse(text)),
	}
}

// Execute renders the template with data and trims surrounding whitespace.
func (pt *PromptTemplate) Execute(data any) (string, error) {
	var buf bytes.Buffer
	if err := pt.tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

var systemTemplate = NewPromptTemplate("system", `
You split one long flashcard into several shorter Q&A cards for Anki. Always respond with a single valid JSON object only.`)

var userTemplate = NewPromptTemplate("user", `
Split the following flashcard into several smaller Q&A cards.

Language:
- Write both questions and answers in {{.Language}}.

Rules:
- Create at most {{.MaxCards}} cards.
- Each answer should be concise: about 1-3 sentences.
- No bullet lists, no markdown, no HTML tags; plain text only.
- Keep important technical and domain-specific details, but avoid long prose.
- Some overlap between cards is OK.

Return ONLY one JSON object in this format (no extra text):

{
  "cards": [
    {"question": "...", "answer": "..."},
    ...
  ]
}

Original question:
{{.Question}}

Original answer:
{{.Answer}}`)

// PromptInput carries the values a split prompt is rendered from.
type PromptInput struct {
	Question string
	Answer   string
	Language string
	MaxCards int
}

// Prompt is a rendered split prompt.
type Prompt struct {
	System string
	User   string
}

// Combined joins the system and user text for single-turn providers.
func (p Prompt) Combined() string {
	return p.System + "\n\n" + p.User
}

// BuildPrompt renders the system instruction and user prompt for one note.
func BuildPrompt(in PromptInput) (Prompt, error) {
	if in.MaxCards < 1 {
		return Prompt{}, NewLLMError(ErrorTypeInvalidInput, "max cards must be at least 1", nil)
	}
	system, err := systemTemplate.Execute(in)
	if err != nil {
		return Prompt{}, NewLLMError(ErrorTypeInvalidInput, "failed to render system prompt", err)
	}
	user, err := userTemplate.Execute(in)
	if err != nil {
		return Prompt{}, NewLLMError(ErrorTypeInvalidInput, "failed to render user prompt", err)
	}
	return Prompt{System: system, User: user}, nil
}
