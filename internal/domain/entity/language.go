package entity

import "strings"

// LanguageAuto asks the extraction backend to detect the spoken language
// from the transcript content.
const LanguageAuto = "auto"

// DefaultLanguage is assumed until the backend reports a detected language.
const DefaultLanguage = "en-US"

// Language pairs a BCP-47 tag with a display name.
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// SupportedLanguages are the languages the spoken confirmation templates
// cover. Anything else falls back to English.
var SupportedLanguages = []Language{
	{Code: "en-US", Name: "English (US)"},
	{Code: "hi-IN", Name: "Hindi"},
	{Code: "es-ES", Name: "Spanish"},
	{Code: "fr-FR", Name: "French"},
	{Code: "de-DE", Name: "German"},
	{Code: "ja-JP", Name: "Japanese"},
	{Code: "zh-CN", Name: "Chinese (Simplified)"},
}

// NormalizeLanguage maps a reported language tag onto a supported one.
// Exact matches win, then a two-letter prefix match, then the default.
func NormalizeLanguage(tag string) string {
	if tag == "" || tag == LanguageAuto {
		return DefaultLanguage
	}
	for _, l := range SupportedLanguages {
		if strings.EqualFold(l.Code, tag) {
			return l.Code
		}
	}
	prefix := LanguagePrefix(tag)
	for _, l := range SupportedLanguages {
		if LanguagePrefix(l.Code) == prefix {
			return l.Code
		}
	}
	return DefaultLanguage
}

// LanguagePrefix returns the lowercase primary subtag of a language tag,
// e.g. "hi" for "hi-IN".
func LanguagePrefix(tag string) string {
	if i := strings.IndexAny(tag, "-_"); i >= 0 {
		tag = tag[:i]
	}
	return strings.ToLower(tag)
}
