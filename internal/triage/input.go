package triage

import (
	"strings"
	"unicode"

	"intake-triage/internal/domain"
)

// Tokens offered as options and accepted as input.
const (
	tokenYes                      = "yes"
	tokenNo                       = "no"
	tokenUnknown                  = "unknown"
	tokenNotSure                  = "not_sure"
	tokenContinue                 = "continue"
	tokenConnect                  = "connect"
	tokenRestart                  = "restart"
	tokenContinueToLegalResources = "continue_to_legal_resources"
)

var restartTokens = map[string]bool{
	"start":      true,
	"restart":    true,
	"begin":      true,
	"start_over": true,
	"reiniciar":  true,
}

var topicAliases = map[string]domain.Topic{
	"child_support":        domain.TopicChildSupport,
	"childsupport":         domain.TopicChildSupport,
	"support":              domain.TopicChildSupport,
	"manutencion_infantil": domain.TopicChildSupport,
	"manutención_infantil": domain.TopicChildSupport,
	"education":            domain.TopicEducation,
	"educacion":            domain.TopicEducation,
	"educación":            domain.TopicEducation,
	"housing":              domain.TopicHousing,
	"vivienda":             domain.TopicHousing,
	"divorce":              domain.TopicDivorce,
	"divorcio":             domain.TopicDivorce,
	"custody":              domain.TopicCustody,
	"custodia":             domain.TopicCustody,
}

var yesNoAliases = map[string]string{
	"yes":             tokenYes,
	"y":               tokenYes,
	"si":              tokenYes,
	"sí":              tokenYes,
	"no":              tokenNo,
	"n":               tokenNo,
	"unknown":         tokenUnknown,
	"i_don't_know":    tokenUnknown,
	"i_dont_know":     tokenUnknown,
	"don't_know":      tokenUnknown,
	"dont_know":       tokenUnknown,
	"idk":             tokenUnknown,
	"no_sé":           tokenUnknown,
	"no_se":           tokenUnknown,
	"not_sure":        tokenNotSure,
	"unsure":          tokenNotSure,
	"no_estoy_seguro": tokenNotSure,
}

var completionAliases = map[string]string{
	"continue":                tokenContinue,
	"connect":                 tokenConnect,
	"connect_with_a_resource": tokenConnect,
	"restart":                 tokenRestart,
}

// quoteReplacer folds typographic apostrophes from mobile keyboards.
var quoteReplacer = strings.NewReplacer("’", "'", "‘", "'", "ʼ", "'")

// normalize lowercases and trims input, strips trailing punctuation and
// joins words with underscores so "Start Over!" becomes "start_over".
func normalize(message string) string {
	s := quoteReplacer.Replace(strings.ToLower(strings.TrimSpace(message)))
	s = strings.TrimRight(s, ".!?,;")
	s = strings.TrimLeft(s, "¿¡")
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '-' || r == '_'
	})
	return strings.Join(fields, "_")
}

func parseTopic(token string) (domain.Topic, bool) {
	t, ok := topicAliases[token]
	return t, ok
}

// parseAnswer resolves yes/no/unknown style input. "unknown" and "not sure"
// are interchangeable here; callers decide what each means.
func parseAnswer(token string) (string, bool) {
	a, ok := yesNoAliases[token]
	if a == tokenNotSure {
		a = tokenUnknown
	}
	return a, ok
}

func parseCompletion(token string) (string, bool) {
	c, ok := completionAliases[token]
	return c, ok
}

// ValidZip reports whether s is exactly five ASCII digits.
func ValidZip(s string) bool {
	if len(s) != 5 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
