package domain

import "strings"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one turn of a free-text assistant conversation. The same
// shape is accepted from clients and forwarded to the completion service.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Language is a supported response language.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageSpanish Language = "es"
)

// ParseLanguage maps a BCP 47 tag such as "es-MX" to a supported language,
// defaulting to English.
func ParseLanguage(tag string) Language {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if i := strings.IndexAny(tag, "-_"); i >= 0 {
		tag = tag[:i]
	}
	if tag == string(LanguageSpanish) {
		return LanguageSpanish
	}
	return LanguageEnglish
}
