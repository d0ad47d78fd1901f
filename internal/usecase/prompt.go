package usecase

import (
	"fmt"
	"strings"

	"intake-triage/internal/domain"
)

var topicContext = map[domain.Topic]string{
	domain.TopicChildSupport: "child support",
	domain.TopicEducation:    "education and school rights",
	domain.TopicHousing:      "housing, tenancy and eviction",
	domain.TopicDivorce:      "divorce",
	domain.TopicCustody:      "child custody and parenting time",
}

var languageDirective = map[domain.Language]string{
	domain.LanguageEnglish: "Respond in English.",
	domain.LanguageSpanish: "Responde siempre en español.",
}

func buildAssistMessages(lang domain.Language, topic domain.Topic, history []domain.ChatMessage) []domain.ChatMessage {
	messages := make([]domain.ChatMessage, 0, len(history)+1)
	messages = append(messages, domain.ChatMessage{
		Role:    domain.RoleSystem,
		Content: buildSystemPrompt(lang, topic),
	})
	return append(messages, history...)
}

func buildSystemPrompt(lang domain.Language, topic domain.Topic) string {
	directive, ok := languageDirective[lang]
	if !ok {
		directive = languageDirective[domain.LanguageEnglish]
	}
	return strings.Join([]string{
		"Role:",
		"You are a legal information assistant for people in Illinois looking for legal help.",
		"",
		"Context:",
		topicLine(topic),
		"",
		"Behavior Rules:",
		assistRules(),
		"",
		directive,
	}, "\n")
}

func topicLine(topic domain.Topic) string {
	if area, ok := topicContext[topic]; ok {
		return fmt.Sprintf("The user is asking about %s.", area)
	}
	return "The user has not chosen a legal topic."
}

func assistRules() string {
	return strings.Join([]string{
		"1) Give general legal information only. You are not a lawyer and this is not legal advice.",
		"2) Keep answers short, plain and practical.",
		"3) Point to Illinois Legal Aid Online (illinoislegalaid.org) or Illinois Court Help (833-411-1121) when the user needs more help.",
		"4) Do not invent organizations, phone numbers, deadlines or statutes.",
		"5) If the user may be in danger, tell them to call 911 first.",
	}, "\n")
}
