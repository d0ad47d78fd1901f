package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"intake-triage/internal/domain"
	"intake-triage/internal/triage"
)

const defaultMaxMessage = 1000

// EventRecorder stores one analytics event per turn.
type EventRecorder interface {
	Record(ctx context.Context, ev domain.IntakeEvent) error
}

type TriageService struct {
	machine      *triage.Machine
	events       EventRecorder
	logger       *slog.Logger
	maxMessageLn int
}

type TriageInput struct {
	Message  string
	State    json.RawMessage
	Language string
}

type TriageOutput struct {
	Response          string
	Options           []string
	Referrals         []domain.ReferralRecord
	ConversationState json.RawMessage
	Progress          triage.Progress
}

func NewTriageService(m *triage.Machine, events EventRecorder, logger *slog.Logger, maxMessageLen int) (*TriageService, error) {
	if m == nil {
		return nil, errors.New("usecase: triage machine must not be nil")
	}
	if events == nil {
		return nil, errors.New("usecase: event recorder must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if maxMessageLen <= 0 {
		maxMessageLen = defaultMaxMessage
	}
	return &TriageService{machine: m, events: events, logger: logger, maxMessageLn: maxMessageLen}, nil
}

// Triage runs one turn. Bad answers are never errors; only an oversized
// message is rejected.
func (s *TriageService) Triage(ctx context.Context, in TriageInput) (TriageOutput, error) {
	if utf8.RuneCountInString(in.Message) > s.maxMessageLn {
		return TriageOutput{}, newError(ErrorInvalidInput, "message_too_long", nil)
	}
	lang := domain.ParseLanguage(in.Language)
	session, decoded := triage.DecodeSession(in.State)

	var reply triage.Reply
	if strings.TrimSpace(in.Message) == "" && !decoded {
		reply = s.machine.Start(session.ID, lang)
	} else {
		reply = s.machine.Handle(in.Message, session, lang)
	}

	var state json.RawMessage
	if reply.Unchanged && decoded {
		// Unchanged turns hand back exactly what the caller sent.
		state = bytes.TrimSpace(in.State)
	} else {
		if reply.Session.ID == "" {
			reply.Session.ID = newUUID()
		}
		raw, err := json.Marshal(reply.Session)
		if err != nil {
			return TriageOutput{}, newError(ErrorInternal, "state_encode_error", err)
		}
		state = raw
	}

	s.record(ctx, reply)

	return TriageOutput{
		Response:          reply.Prompt,
		Options:           reply.Options,
		Referrals:         reply.Referrals,
		ConversationState: state,
		Progress:          reply.Progress,
	}, nil
}

// Questions returns the questionnaire steps in the requested language.
func (s *TriageService) Questions(language string) []triage.Question {
	return triage.Questions(domain.ParseLanguage(language))
}

// record appends the turn's event. Failures are logged and dropped.
func (s *TriageService) record(ctx context.Context, r triage.Reply) {
	if r.Session.ID == "" {
		return
	}
	ev := eventFor(r)
	if err := s.events.Record(ctx, ev); err != nil {
		s.logger.WarnContext(ctx, "intake event not recorded",
			"session_id", ev.SessionID,
			"kind", ev.Kind,
			"err", err,
		)
	}
}

func eventFor(r triage.Reply) domain.IntakeEvent {
	ev := domain.IntakeEvent{
		SessionID: r.Session.ID,
		Kind:      r.Event,
	}
	if r.Session.State != nil {
		ev.Step = string(r.Session.State.Step())
	}
	switch st := r.Session.State.(type) {
	case triage.EmergencyCheck:
		ev.Topic = string(st.Topic)
	case triage.CourtStatus:
		ev.Topic = string(st.Topic)
	case triage.IncomeCheck:
		ev.Topic = string(st.Topic)
	case triage.GetZip:
		ev.Topic = string(st.Topic)
	case triage.Complete:
		ev.Topic, ev.Level, ev.ZipCode = string(st.Topic), int(st.Level), st.ZipCode
	case triage.ContinueCheck:
		ev.Topic, ev.Level, ev.ZipCode = string(st.Topic), int(st.Level), st.ZipCode
	case triage.ResourceSelected:
		ev.Topic, ev.Level, ev.ZipCode = string(st.Topic), int(st.Level), st.ZipCode
	}
	return ev
}

var newUUID = func() string {
	return uuid.NewString()
}
