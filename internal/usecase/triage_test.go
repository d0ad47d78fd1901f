package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"intake-triage/internal/catalog"
	"intake-triage/internal/domain"
	"intake-triage/internal/triage"
)

type mockRecorder struct {
	events []domain.IntakeEvent
	err    error
}

func (m *mockRecorder) Record(_ context.Context, ev domain.IntakeEvent) error {
	m.events = append(m.events, ev)
	return m.err
}

func newTriageService(t *testing.T, rec EventRecorder, logger *slog.Logger) *TriageService {
	t.Helper()
	c, err := catalog.Default()
	require.NoError(t, err)
	m, err := triage.New(c)
	require.NoError(t, err)
	svc, err := NewTriageService(m, rec, logger, 100)
	require.NoError(t, err)
	return svc
}

func stubUUID(t *testing.T, id string) {
	t.Helper()
	orig := newUUID
	newUUID = func() string { return id }
	t.Cleanup(func() { newUUID = orig })
}

func stateOf(t *testing.T, raw json.RawMessage) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	return m
}

func TestNewTriageService_ValidatesDependencies(t *testing.T) {
	_, err := NewTriageService(nil, &mockRecorder{}, nil, 0)
	require.Error(t, err)

	c, err := catalog.Default()
	require.NoError(t, err)
	m, err := triage.New(c)
	require.NoError(t, err)
	_, err = NewTriageService(m, nil, nil, 0)
	require.Error(t, err)
}

func TestTriage_EmptyFirstMessageGreets(t *testing.T) {
	stubUUID(t, "sess-1")
	rec := &mockRecorder{}
	svc := newTriageService(t, rec, nil)

	out, err := svc.Triage(context.Background(), TriageInput{})
	require.NoError(t, err)
	require.Contains(t, out.Response, "What legal issue")
	require.Equal(t, []string{"child_support", "education", "housing", "divorce", "custody"}, out.Options)
	require.JSONEq(t, `{"session_id":"sess-1","step":"topic_selection"}`, string(out.ConversationState))
	require.Equal(t, triage.Progress{Current: 1, Total: 5, Label: "select_topic"}, out.Progress)
	require.Len(t, rec.events, 1)
	require.Equal(t, "sess-1", rec.events[0].SessionID)
}

func TestTriage_WalksToReferrals(t *testing.T) {
	stubUUID(t, "sess-2")
	rec := &mockRecorder{}
	svc := newTriageService(t, rec, nil)

	var state json.RawMessage
	for _, msg := range []string{"start", "housing", "no", "no", "yes", "60601"} {
		out, err := svc.Triage(context.Background(), TriageInput{Message: msg, State: state})
		require.NoError(t, err, msg)
		state = out.ConversationState
		if msg == "60601" {
			require.NotEmpty(t, out.Referrals)
			require.Equal(t, "Illinois Legal Aid Online", out.Referrals[0].Name)
		}
	}

	got := stateOf(t, state)
	require.Equal(t, "sess-2", got["session_id"])
	require.Equal(t, "complete", got["step"])
	require.EqualValues(t, 2, got["level"])
	require.Equal(t, "60601", got["zip_code"])

	require.Len(t, rec.events, 6)
	last := rec.events[5]
	require.Equal(t, domain.EventCompleted, last.Kind)
	require.Equal(t, "housing", last.Topic)
	require.Equal(t, 2, last.Level)
	require.Equal(t, "60601", last.ZipCode)
	for _, ev := range rec.events {
		require.Equal(t, "sess-2", ev.SessionID)
	}
}

func TestTriage_CrisisEchoesStateBytes(t *testing.T) {
	rec := &mockRecorder{}
	svc := newTriageService(t, rec, nil)
	in := json.RawMessage(`{"step":"court_status","topic":"custody","emergency":"no"}`)

	out, err := svc.Triage(context.Background(), TriageInput{Message: "there is abuse at home", State: in})
	require.NoError(t, err)
	require.Equal(t, string(in), string(out.ConversationState))
	require.Equal(t, []string{"continue_to_legal_resources", "restart"}, out.Options)
	require.Contains(t, out.Response, "911")
	require.Empty(t, rec.events)
}

func TestTriage_InvalidAnswerEchoesStateBytes(t *testing.T) {
	rec := &mockRecorder{}
	svc := newTriageService(t, rec, nil)
	in := json.RawMessage(` {"session_id":"s","step":"get_zip","topic":"housing","emergency":"no","in_court":false,"income_eligible":true} `)

	out, err := svc.Triage(context.Background(), TriageInput{Message: "ABCDE", State: in})
	require.NoError(t, err)
	require.Equal(t, string(bytes.TrimSpace(in)), string(out.ConversationState))
	require.Len(t, rec.events, 1)
	require.Equal(t, domain.EventTurn, rec.events[0].Kind)
	require.Empty(t, rec.events[0].ZipCode)
}

func TestTriage_CorruptStateStartsFresh(t *testing.T) {
	stubUUID(t, "sess-3")
	svc := newTriageService(t, &mockRecorder{}, nil)

	out, err := svc.Triage(context.Background(), TriageInput{Message: "housing", State: json.RawMessage(`{"step":"warp"}`)})
	require.NoError(t, err)
	require.JSONEq(t, `{"session_id":"sess-3","step":"emergency_check","topic":"housing"}`, string(out.ConversationState))
}

func TestTriage_Spanish(t *testing.T) {
	svc := newTriageService(t, &mockRecorder{}, nil)
	out, err := svc.Triage(context.Background(), TriageInput{Message: "vivienda", Language: "es-MX"})
	require.NoError(t, err)
	require.Contains(t, out.Response, "Vivienda")
}

func TestTriage_MessageTooLong(t *testing.T) {
	svc := newTriageService(t, &mockRecorder{}, nil)
	_, err := svc.Triage(context.Background(), TriageInput{Message: strings.Repeat("x", 101)})
	expectError(t, err, ErrorInvalidInput, "message_too_long")
}

func TestTriage_RecorderFailureIsSwallowed(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))
	svc := newTriageService(t, &mockRecorder{err: errors.New("ProvisionedThroughputExceededException")}, logger)

	out, err := svc.Triage(context.Background(), TriageInput{Message: "housing"})
	require.NoError(t, err)
	require.NotEmpty(t, out.Response)
	require.Contains(t, logs.String(), "intake event not recorded")
	require.Contains(t, logs.String(), "ProvisionedThroughputExceededException")
}

func TestTriage_QuestionsUseRequestLanguage(t *testing.T) {
	svc := newTriageService(t, &mockRecorder{}, nil)

	require.Equal(t, triage.Questions(domain.LanguageSpanish), svc.Questions("es-MX"))
	require.Equal(t, triage.Questions(domain.LanguageEnglish), svc.Questions(""))
}
