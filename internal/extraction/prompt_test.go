package extraction

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackwise/expense-voice/internal/domain/entity"
)

func newTestBuilder(t *testing.T) *PromptBuilder {
	t.Helper()
	b, err := NewPromptBuilder(DefaultPrompts())
	require.NoError(t, err)
	return b
}

func TestPromptBuilder_EmbedsTranscriptAndCategories(t *testing.T) {
	b := newTestBuilder(t)

	tests := []struct {
		name       string
		transcript string
		language   string
	}{
		{"english", "I spent 250 on groceries", "en-US"},
		{"hindi tag", "तीन सौ रुपये किराने पर", "hi-IN"},
		{"auto detect", "gasté veinte euros en el cine", entity.LanguageAuto},
		{"transcript with quotes", `paid "about" 40 for parking`, "en-US"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prompt, err := b.Build(tt.transcript, tt.language)
			require.NoError(t, err)

			assert.Contains(t, prompt, tt.transcript, "transcript must appear verbatim")
			for _, category := range entity.Categories {
				assert.Contains(t, prompt, category)
			}
			assert.Contains(t, prompt, "JSON")
		})
	}
}

func TestPromptBuilder_LanguageHandling(t *testing.T) {
	b := newTestBuilder(t)

	prompt, err := b.Build("spent ten on coffee", "fr-FR")
	require.NoError(t, err)
	assert.Contains(t, prompt, "fr-FR")

	prompt, err = b.Build("spent ten on coffee", entity.LanguageAuto)
	require.NoError(t, err)
	assert.Contains(t, prompt, "detect the language")
	assert.NotContains(t, prompt, "in auto")
}

func TestPromptBuilder_RejectsBlankTranscript(t *testing.T) {
	b := newTestBuilder(t)

	for _, transcript := range []string{"", "   ", "\n\t "} {
		_, err := b.Build(transcript, "en-US")
		assert.ErrorIs(t, err, ErrInvalidInput)
	}
}

func TestPromptBuilder_Deterministic(t *testing.T) {
	b := newTestBuilder(t)

	first, err := b.Build("bought milk for 30", "en-US")
	require.NoError(t, err)
	second, err := b.Build("bought milk for 30", "en-US")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestLoadPrompts_MissingFile(t *testing.T) {
	_, err := LoadPrompts("does/not/exist.yaml")
	assert.Error(t, err)
}

func TestLoadPrompts_OverridesDefaults(t *testing.T) {
	path := t.TempDir() + "/prompts.yaml"
	content := "extraction:\n  temperature: 0.5\n  system: custom system\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadPrompts(path)
	require.NoError(t, err)
	assert.Equal(t, float32(0.5), cfg.Extraction.Temperature)
	assert.Equal(t, "custom system", cfg.Extraction.System)
	// Unset fields keep their defaults.
	assert.Equal(t, defaultUserTemplate, cfg.Extraction.UserTemplate)
}
