package extraction

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PromptConfig holds the prompt text and model parameters for expense
// extraction. The defaults are compiled in; a YAML file can override them
// without a rebuild.
type PromptConfig struct {
	Extraction struct {
		Temperature  float32 `yaml:"temperature"`
		MaxTokens    int     `yaml:"max_tokens"`
		System       string  `yaml:"system"`
		UserTemplate string  `yaml:"user_template"`
	} `yaml:"extraction"`
}

const defaultSystem = "You are an assistant that extracts structured expense data " +
	"from voice transcripts in any language. Always respond with a single valid JSON object and nothing else."

const defaultUserTemplate = `Extract expense information from the following voice transcript{{if .Detect}} (detect the language from the content){{else}} in {{.Language}}{{end}}:
"{{.Transcript}}"

Extract the following information:
1. Amount (numeric value)
2. Category (must be one of: {{.Categories}})
3. Description (brief description of the expense)
4. Date (if mentioned, otherwise leave empty)

If the category doesn't match any of the predefined categories, choose the closest match.

Return the data in JSON format with the following structure:
{
  "amount": "string representation of the amount",
  "category": "matched category",
  "description": "extracted description",
  "date": "YYYY-MM-DD format if mentioned, otherwise empty string",
  "detectedLanguage": "BCP-47 tag of the transcript language, e.g. en-US or hi-IN"
}

Only respond with valid JSON, no additional text.`

// DefaultPrompts returns the compiled-in prompt configuration.
func DefaultPrompts() *PromptConfig {
	cfg := &PromptConfig{}
	cfg.Extraction.Temperature = 0.1
	cfg.Extraction.MaxTokens = 512
	cfg.Extraction.System = defaultSystem
	cfg.Extraction.UserTemplate = defaultUserTemplate
	return cfg
}

// LoadPrompts loads prompt configuration from a YAML file. Fields left
// empty in the file keep their defaults.
func LoadPrompts(path string) (*PromptConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompts file: %w", err)
	}

	cfg := DefaultPrompts()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal prompts: %w", err)
	}
	return cfg, nil
}
