package voice

import (
	"fmt"

	"github.com/trackwise/expense-voice/internal/domain/entity"
)

// feedbackTemplates maps a two-letter language prefix to the spoken
// confirmation template. %[1]s is the amount, %[2]s the category. New
// languages are added here without touching control flow.
var feedbackTemplates = map[string]string{
	"en": "I understood an expense of %[1]s for %[2]s. Is this correct?",
	"hi": "मैंने %[1]s रुपये का %[2]s खर्च समझा है। क्या यह सही है?",
	"es": "He entendido un gasto de %[1]s en %[2]s. ¿Es correcto?",
	"fr": "J'ai compris une dépense de %[1]s pour %[2]s. Est-ce correct?",
	"de": "Ich habe eine Ausgabe von %[1]s für %[2]s verstanden. Ist das richtig?",
	"ja": "%[2]sに%[1]sの支出を理解しました。これは正しいですか？",
	"zh": "我理解了%[2]s的%[1]s支出。这正确吗？",
}

// FeedbackText renders the spoken confirmation for an extracted candidate
// in the detected language. Unknown languages fall back to English.
func FeedbackText(candidate entity.ExpenseCandidate, language string) string {
	tmpl, ok := feedbackTemplates[entity.LanguagePrefix(language)]
	if !ok {
		tmpl = feedbackTemplates["en"]
	}
	return fmt.Sprintf(tmpl, candidate.Amount, candidate.Category)
}
