package triage

import (
	"testing"

	"github.com/stretchr/testify/require"

	"intake-triage/internal/domain"
)

func TestQuestions_FollowTheMachine(t *testing.T) {
	m := newTestMachine(t)
	qs := Questions(domain.LanguageEnglish)
	require.Len(t, qs, totalSteps)

	answers := []string{"housing", "no", "no", "yes"}
	r := m.Start("s", domain.LanguageEnglish)
	for i, q := range qs {
		require.Equal(t, r.Session.step(), q.Step)
		require.Equal(t, r.Options, q.Options, q.Step)
		require.Equal(t, r.Progress, q.Progress)
		require.Equal(t, i+1, q.Progress.Current)
		if i < len(answers) {
			r = m.Handle(answers[i], r.Session, domain.LanguageEnglish)
		}
	}
}

func TestQuestions_Spanish(t *testing.T) {
	qs := Questions(domain.LanguageSpanish)
	require.Equal(t, "¿Es una emergencia?", qs[1].Prompt)
	require.Equal(t, messagesFor(domain.LanguageSpanish).zipPrompt, qs[4].Prompt)
	require.NotNil(t, qs[4].Options)
	require.Empty(t, qs[4].Options)
}
