package extraction

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/trackwise/expense-voice/internal/domain/entity"
)

// Result is the outcome of parsing a model response.
type Result struct {
	Candidate entity.ExpenseCandidate

	// DetectedLanguage is the BCP-47 tag the model reported for the
	// transcript, empty when it did not supply one.
	DetectedLanguage string
}

// ParseResponse recovers an expense candidate from the model's raw reply.
// Models routinely wrap the JSON object in prose or markdown fences, so
// parsing falls back from the whole reply to the substring between the
// first '{' and the last '}'.
//
// On success every candidate field is present; keys missing from the JSON
// default to "". Validation of amount and category is deliberately left to
// the expense creation path. A *ParseError carrying the raw reply is
// returned when no non-empty object can be recovered.
func ParseResponse(content string) (*Result, error) {
	obj, err := decodeObject(content)
	if err != nil {
		span, ok := braceSpan(content)
		if ok {
			obj, err = decodeObject(span)
		}
		if !ok || err != nil {
			return nil, &ParseError{Raw: content, Err: errors.New("no JSON object in response")}
		}
	}

	if len(obj) == 0 {
		return nil, &ParseError{Raw: content, Err: errors.New("response object is empty")}
	}

	result := &Result{
		Candidate: entity.ExpenseCandidate{
			Amount:      stringField(obj, "amount"),
			Category:    stringField(obj, "category"),
			Description: stringField(obj, "description"),
			Date:        stringField(obj, "date"),
		},
		DetectedLanguage: stringField(obj, "detectedLanguage"),
	}
	if result.DetectedLanguage == "" {
		result.DetectedLanguage = stringField(obj, "detected_language")
	}
	return result, nil
}

// decodeObject parses content as a single JSON object. Numbers are kept as
// json.Number so amounts survive as written.
func decodeObject(content string) (map[string]any, error) {
	dec := json.NewDecoder(strings.NewReader(content))
	dec.UseNumber()

	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, err
	}
	return obj, nil
}

// braceSpan returns the substring from the first '{' to the last '}'
// inclusive. Best effort: surrounding prose containing unrelated braces
// defeats it, which is accepted.
func braceSpan(content string) (string, bool) {
	start := strings.IndexByte(content, '{')
	end := strings.LastIndexByte(content, '}')
	if start < 0 || end <= start {
		return "", false
	}
	return content[start : end+1], true
}

// stringField reads a key as a string, tolerating models that emit numbers
// where strings were requested. Missing or unusable values become "".
func stringField(obj map[string]any, key string) string {
	switch v := obj[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return ""
	}
}
