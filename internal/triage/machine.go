// Package triage implements the intake questionnaire as a deterministic,
// table-driven state machine.
//
// A Machine holds only the read-only referral catalog. Every call to Handle
// is a pure function of the message and the Session passed in, so one
// Machine serves any number of concurrent conversations without locking.
package triage

import (
	"errors"
	"fmt"
	"strings"

	"intake-triage/internal/crisis"
	"intake-triage/internal/domain"
)

// Catalog is the referral lookup the machine reads from.
type Catalog interface {
	Lookup(topic domain.Topic, level domain.Level) []domain.ReferralRecord
	IncomeGated(name string) bool
	IsFlaggedProvider(name string) bool
}

// Reply is the outcome of one turn.
type Reply struct {
	Prompt    string
	Options   []string
	Referrals []domain.ReferralRecord
	Session   Session
	Progress  Progress

	// Unchanged is set when the turn did not move the session: invalid input
	// and the crisis overlay.
	Unchanged bool
	Event     domain.EventKind
}

type Machine struct {
	catalog Catalog
}

func New(c Catalog) (*Machine, error) {
	if c == nil {
		return nil, errors.New("triage: catalog must not be nil")
	}
	return &Machine{catalog: c}, nil
}

// turn is the input to a step handler.
type turn struct {
	m       *Machine
	session Session
	token   string
	raw     string
	msg     messages
}

type stepHandler func(t turn) Reply

var transitions = map[Step]stepHandler{
	StepTopicSelection:   handleTopicSelection,
	StepEmergencyCheck:   handleEmergencyCheck,
	StepCourtStatus:      handleCourtStatus,
	StepIncomeCheck:      handleIncomeCheck,
	StepGetZip:           handleGetZip,
	StepComplete:         handleCompletion,
	StepResourceSelected: handleCompletion,
	StepContinueCheck:    handleContinueCheck,
}

// Handle advances the session by one message. It never fails: unrecognized
// input re-prompts and leaves the session as it was.
func (m *Machine) Handle(message string, s Session, lang domain.Language) Reply {
	if s.State == nil {
		s.State = TopicSelection{}
	}
	t := turn{
		m:       m,
		session: s,
		token:   normalize(message),
		raw:     strings.TrimSpace(message),
		msg:     messagesFor(lang),
	}

	if s.step() != StepTopicSelection && crisis.Detect(message) {
		r := reply(s, t.msg.crisis+" "+t.msg.crisisContinue, []string{tokenContinueToLegalResources, tokenRestart}, domain.EventCrisis)
		r.Unchanged = true
		return r
	}
	if restartTokens[t.token] {
		return t.restart(t.msg.topicPrompt)
	}
	if t.token == tokenContinueToLegalResources {
		return t.restart(t.msg.legalResources)
	}

	handler, ok := transitions[s.step()]
	if !ok {
		return t.restart(t.msg.topicPrompt)
	}
	return handler(t)
}

// Start returns the opening prompt for a fresh session.
func (m *Machine) Start(id string, lang domain.Language) Reply {
	msg := messagesFor(lang)
	return reply(NewSession(id), msg.topicPrompt, topicOptions(), domain.EventTurn)
}

func handleTopicSelection(t turn) Reply {
	topic, ok := parseTopic(t.token)
	if !ok {
		return t.reprompt(t.msg.topicInvalid, topicOptions())
	}
	next := t.session.with(EmergencyCheck{Topic: topic})
	return reply(next, fmt.Sprintf(t.msg.topicSelected, t.msg.topicLabels[topic]), emergencyOptions(), domain.EventTurn)
}

func handleEmergencyCheck(t turn) Reply {
	st := t.session.State.(EmergencyCheck)
	answer, ok := parseAnswer(t.token)
	if !ok {
		return t.reprompt(t.msg.emergencyInvalid, emergencyOptions())
	}
	e := Emergency(answer)
	prompt := t.msg.courtPrompt
	if e == EmergencyYes {
		prompt = t.msg.policeNote + "\n\n" + prompt
	}
	return reply(t.session.with(st.answer(e)), prompt, yesNoOptions(), domain.EventTurn)
}

func handleCourtStatus(t turn) Reply {
	st := t.session.State.(CourtStatus)
	answer, ok := parseAnswer(t.token)
	if !ok || answer == tokenUnknown {
		return t.reprompt(t.msg.courtInvalid, yesNoOptions())
	}
	return reply(t.session.with(st.answer(answer == tokenYes)), t.msg.incomePrompt, incomeOptions(), domain.EventTurn)
}

func handleIncomeCheck(t turn) Reply {
	st := t.session.State.(IncomeCheck)
	answer, ok := parseAnswer(t.token)
	if !ok {
		return t.reprompt(t.msg.incomeInvalid, incomeOptions())
	}
	// Users who are unsure are treated as eligible.
	eligible := answer != tokenNo
	return reply(t.session.with(st.answer(eligible)), t.msg.zipPrompt, nil, domain.EventTurn)
}

func handleGetZip(t turn) Reply {
	st := t.session.State.(GetZip)
	if !ValidZip(t.raw) {
		return t.reprompt(t.msg.zipInvalid, nil)
	}
	next := st.answer(t.raw)
	referrals := t.m.referrals(next.Result)
	r := reply(t.session.with(next), t.resultsPrompt(next.Result, referrals), completionOptions(), domain.EventCompleted)
	r.Referrals = referrals
	return r
}

// handleCompletion serves both complete and resource_selected.
func handleCompletion(t turn) Reply {
	result := resultOf(t.session.State)
	cmd, ok := parseCompletion(t.token)
	if !ok {
		return t.reprompt(t.msg.completeHint, completionOptions())
	}
	switch cmd {
	case tokenContinue:
		return reply(t.session.with(ContinueCheck{result}), t.msg.continuePrompt, yesNoOptions(), domain.EventTurn)
	case tokenConnect:
		next := t.session.with(ResourceSelected{result})
		top, found := t.m.topResource(result)
		if !found {
			return reply(next, t.msg.connectFallback, completionOptions(), domain.EventConnected)
		}
		r := reply(next, t.msg.connectTop, completionOptions(), domain.EventConnected)
		r.Referrals = []domain.ReferralRecord{top}
		return r
	default:
		return t.restart(t.msg.topicPrompt)
	}
}

func handleContinueCheck(t turn) Reply {
	st := t.session.State.(ContinueCheck)
	answer, ok := parseAnswer(t.token)
	if !ok || answer == tokenUnknown {
		return t.reprompt(t.msg.continueInvalid, yesNoOptions())
	}
	if answer == tokenYes {
		return t.restart(t.msg.continueTopic)
	}
	return reply(t.session.with(Complete{Result: st.Result, Farewell: true}), t.msg.goodbye, completionOptions(), domain.EventTurn)
}

func (t turn) restart(prompt string) Reply {
	return reply(NewSession(t.session.ID), prompt, topicOptions(), domain.EventRestarted)
}

func (t turn) reprompt(prompt string, options []string) Reply {
	r := reply(t.session, prompt, options, domain.EventTurn)
	r.Unchanged = true
	return r
}

func (t turn) resultsPrompt(r Result, referrals []domain.ReferralRecord) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf(t.msg.resultsIntro, t.msg.levelNames[r.Level], t.msg.topicLabels[r.Topic]))
	if InCookCounty(r.ZipCode) {
		b.WriteString("\n\n" + t.msg.cookCountyNote)
	}
	if len(referrals) == 0 {
		b.WriteString("\n\n" + t.msg.noReferrals)
	}
	b.WriteString("\n\n" + t.msg.completeHint)
	return b.String()
}

func reply(s Session, prompt string, options []string, event domain.EventKind) Reply {
	if options == nil {
		options = []string{}
	}
	return Reply{
		Prompt:    prompt,
		Options:   options,
		Referrals: []domain.ReferralRecord{},
		Session:   s,
		Progress:  ProgressFor(s.step()),
		Event:     event,
	}
}

func resultOf(st State) Result {
	switch v := st.(type) {
	case Complete:
		return v.Result
	case ResourceSelected:
		return v.Result
	case ContinueCheck:
		return v.Result
	}
	return Result{}
}

func topicOptions() []string {
	out := make([]string, len(domain.Topics))
	for i, t := range domain.Topics {
		out[i] = string(t)
	}
	return out
}

func emergencyOptions() []string  { return []string{tokenYes, tokenNo, tokenUnknown} }
func yesNoOptions() []string      { return []string{tokenYes, tokenNo} }
func incomeOptions() []string     { return []string{tokenYes, tokenNo, tokenNotSure} }
func completionOptions() []string { return []string{tokenContinue, tokenConnect, tokenRestart} }
