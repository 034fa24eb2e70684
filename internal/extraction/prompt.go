package extraction

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/trackwise/expense-voice/internal/domain/entity"
)

// PromptBuilder renders the extraction instruction sent to the generative
// model. Building is a pure transformation: the same transcript and
// language always produce the same prompt.
type PromptBuilder struct {
	system string
	tmpl   *template.Template
}

type promptData struct {
	Transcript string
	Language   string
	Detect     bool
	Categories string
}

// NewPromptBuilder compiles the user template from cfg.
func NewPromptBuilder(cfg *PromptConfig) (*PromptBuilder, error) {
	tmpl, err := template.New("extraction").Parse(cfg.Extraction.UserTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse extraction template: %w", err)
	}
	return &PromptBuilder{
		system: cfg.Extraction.System,
		tmpl:   tmpl,
	}, nil
}

// System returns the system instruction paired with built prompts.
func (b *PromptBuilder) System() string {
	return b.system
}

// Build renders the extraction prompt for a transcript. The prompt embeds
// the transcript verbatim along with the full category list. language is a
// concrete tag or entity.LanguageAuto.
//
// Returns ErrInvalidInput when the transcript is empty or whitespace-only.
func (b *PromptBuilder) Build(transcript, language string) (string, error) {
	if strings.TrimSpace(transcript) == "" {
		return "", ErrInvalidInput
	}

	data := promptData{
		Transcript: transcript,
		Language:   language,
		Detect:     language == "" || language == entity.LanguageAuto,
		Categories: strings.Join(entity.Categories, ", "),
	}

	var buf bytes.Buffer
	if err := b.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render extraction prompt: %w", err)
	}
	return buf.String(), nil
}
