package triage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"intake-triage/internal/domain"
)

// Step names a node of the triage state machine.
type Step string

const (
	StepTopicSelection   Step = "topic_selection"
	StepEmergencyCheck   Step = "emergency_check"
	StepCourtStatus      Step = "court_status"
	StepIncomeCheck      Step = "income_check"
	StepGetZip           Step = "get_zip"
	StepComplete         Step = "complete"
	StepContinueCheck    Step = "continue_check"
	StepResourceSelected Step = "resource_selected"
)

// Emergency is the tri-state answer to the emergency question.
type Emergency string

const (
	EmergencyYes     Emergency = "yes"
	EmergencyNo      Emergency = "no"
	EmergencyUnknown Emergency = "unknown"
)

func (e Emergency) valid() bool {
	return e == EmergencyYes || e == EmergencyNo || e == EmergencyUnknown
}

// Answers holds everything collected before the ZIP code.
type Answers struct {
	Topic          domain.Topic
	Emergency      Emergency
	InCourt        bool
	IncomeEligible bool
}

// Result is a completed triage run.
type Result struct {
	Answers
	ZipCode string
	Level   domain.Level
}

// State is one variant per step, each carrying only the fields known at
// that step.
type State interface {
	Step() Step
	isState()
}

type TopicSelection struct{}

type EmergencyCheck struct {
	Topic domain.Topic
}

type CourtStatus struct {
	Topic     domain.Topic
	Emergency Emergency
}

type IncomeCheck struct {
	Topic     domain.Topic
	Emergency Emergency
	InCourt   bool
}

type GetZip struct {
	Answers
}

// Complete is reached after a valid ZIP code. Farewell is set when the user
// declined to start another issue.
type Complete struct {
	Result
	Farewell bool
}

type ContinueCheck struct {
	Result
}

type ResourceSelected struct {
	Result
}

func (TopicSelection) Step() Step   { return StepTopicSelection }
func (EmergencyCheck) Step() Step   { return StepEmergencyCheck }
func (CourtStatus) Step() Step      { return StepCourtStatus }
func (IncomeCheck) Step() Step      { return StepIncomeCheck }
func (GetZip) Step() Step           { return StepGetZip }
func (Complete) Step() Step         { return StepComplete }
func (ContinueCheck) Step() Step    { return StepContinueCheck }
func (ResourceSelected) Step() Step { return StepResourceSelected }

func (TopicSelection) isState()   {}
func (EmergencyCheck) isState()   {}
func (CourtStatus) isState()      {}
func (IncomeCheck) isState()      {}
func (GetZip) isState()           {}
func (Complete) isState()         {}
func (ContinueCheck) isState()    {}
func (ResourceSelected) isState() {}

func (s EmergencyCheck) answer(e Emergency) CourtStatus {
	return CourtStatus{Topic: s.Topic, Emergency: e}
}

func (s CourtStatus) answer(inCourt bool) IncomeCheck {
	return IncomeCheck{Topic: s.Topic, Emergency: s.Emergency, InCourt: inCourt}
}

func (s IncomeCheck) answer(eligible bool) GetZip {
	return GetZip{Answers{Topic: s.Topic, Emergency: s.Emergency, InCourt: s.InCourt, IncomeEligible: eligible}}
}

func (s GetZip) answer(zip string) Complete {
	return Complete{Result: Result{Answers: s.Answers, ZipCode: zip, Level: DeriveLevel(s.Answers)}}
}

// Session is the caller-owned conversation state. ID keys analytics events
// and survives restarts.
type Session struct {
	ID    string
	State State
}

// NewSession returns a session at the first step.
func NewSession(id string) Session {
	return Session{ID: id, State: TopicSelection{}}
}

func (s Session) step() Step {
	if s.State == nil {
		return StepTopicSelection
	}
	return s.State.Step()
}

func (s Session) with(st State) Session {
	return Session{ID: s.ID, State: st}
}

type wireState struct {
	SessionID      string       `json:"session_id,omitempty"`
	Step           Step         `json:"step,omitempty"`
	Topic          domain.Topic `json:"topic,omitempty"`
	Emergency      Emergency    `json:"emergency,omitempty"`
	InCourt        *bool        `json:"in_court,omitempty"`
	IncomeEligible *bool        `json:"income_eligible,omitempty"`
	ZipCode        string       `json:"zip_code,omitempty"`
	Level          domain.Level `json:"level,omitempty"`
	Farewell       bool         `json:"farewell,omitempty"`
}

// MarshalJSON encodes the session as the flat conversation_state object.
func (s Session) MarshalJSON() ([]byte, error) {
	w := wireState{SessionID: s.ID, Step: s.step()}
	switch st := s.State.(type) {
	case nil, TopicSelection:
	case EmergencyCheck:
		w.Topic = st.Topic
	case CourtStatus:
		w.Topic, w.Emergency = st.Topic, st.Emergency
	case IncomeCheck:
		w.Topic, w.Emergency, w.InCourt = st.Topic, st.Emergency, boolPtr(st.InCourt)
	case GetZip:
		w.putAnswers(st.Answers)
	case Complete:
		w.putResult(st.Result)
		w.Farewell = st.Farewell
	case ContinueCheck:
		w.putResult(st.Result)
	case ResourceSelected:
		w.putResult(st.Result)
	default:
		return nil, fmt.Errorf("triage: unknown state %T", s.State)
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes a conversation_state object, rejecting states whose
// fields do not match their step. An empty object is a fresh session.
func (s *Session) UnmarshalJSON(raw []byte) error {
	var w wireState
	if err := json.Unmarshal(raw, &w); err != nil {
		return fmt.Errorf("triage: decode session: %w", err)
	}
	st, err := w.state()
	if err != nil {
		return err
	}
	*s = Session{ID: strings.TrimSpace(w.SessionID), State: st}
	return nil
}

// DecodeSession parses raw conversation_state. Missing, malformed or
// inconsistent input yields a fresh session and ok=false.
func DecodeSession(raw []byte) (Session, bool) {
	if len(strings.TrimSpace(string(raw))) == 0 || strings.TrimSpace(string(raw)) == "null" {
		return NewSession(""), false
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return NewSession(""), false
	}
	return s, true
}

func (w *wireState) putAnswers(a Answers) {
	w.Topic = a.Topic
	w.Emergency = a.Emergency
	w.InCourt = boolPtr(a.InCourt)
	w.IncomeEligible = boolPtr(a.IncomeEligible)
}

func (w *wireState) putResult(r Result) {
	w.putAnswers(r.Answers)
	w.ZipCode = r.ZipCode
	w.Level = r.Level
}

func (w wireState) state() (State, error) {
	switch w.Step {
	case "", StepTopicSelection:
		return TopicSelection{}, nil
	case StepEmergencyCheck:
		if err := w.checkTopic(); err != nil {
			return nil, err
		}
		return EmergencyCheck{Topic: w.Topic}, nil
	case StepCourtStatus:
		if err := w.checkEmergency(); err != nil {
			return nil, err
		}
		return CourtStatus{Topic: w.Topic, Emergency: w.Emergency}, nil
	case StepIncomeCheck:
		if err := w.checkCourt(); err != nil {
			return nil, err
		}
		return IncomeCheck{Topic: w.Topic, Emergency: w.Emergency, InCourt: *w.InCourt}, nil
	case StepGetZip:
		a, err := w.answers()
		if err != nil {
			return nil, err
		}
		return GetZip{a}, nil
	case StepComplete:
		r, err := w.result()
		if err != nil {
			return nil, err
		}
		return Complete{Result: r, Farewell: w.Farewell}, nil
	case StepContinueCheck:
		r, err := w.result()
		if err != nil {
			return nil, err
		}
		return ContinueCheck{r}, nil
	case StepResourceSelected:
		r, err := w.result()
		if err != nil {
			return nil, err
		}
		return ResourceSelected{r}, nil
	default:
		return nil, fmt.Errorf("triage: unknown step %q", w.Step)
	}
}

func (w wireState) checkTopic() error {
	if !w.Topic.Valid() {
		return fmt.Errorf("triage: step %s: invalid topic %q", w.Step, w.Topic)
	}
	return nil
}

func (w wireState) checkEmergency() error {
	if err := w.checkTopic(); err != nil {
		return err
	}
	if !w.Emergency.valid() {
		return fmt.Errorf("triage: step %s: invalid emergency %q", w.Step, w.Emergency)
	}
	return nil
}

func (w wireState) checkCourt() error {
	if err := w.checkEmergency(); err != nil {
		return err
	}
	if w.InCourt == nil {
		return fmt.Errorf("triage: step %s: in_court is required", w.Step)
	}
	return nil
}

func (w wireState) answers() (Answers, error) {
	if err := w.checkCourt(); err != nil {
		return Answers{}, err
	}
	if w.IncomeEligible == nil {
		return Answers{}, fmt.Errorf("triage: step %s: income_eligible is required", w.Step)
	}
	return Answers{
		Topic:          w.Topic,
		Emergency:      w.Emergency,
		InCourt:        *w.InCourt,
		IncomeEligible: *w.IncomeEligible,
	}, nil
}

func (w wireState) result() (Result, error) {
	a, err := w.answers()
	if err != nil {
		return Result{}, err
	}
	if !ValidZip(w.ZipCode) {
		return Result{}, fmt.Errorf("triage: step %s: invalid zip_code %q", w.Step, w.ZipCode)
	}
	if w.Level != DeriveLevel(a) {
		return Result{}, errors.New("triage: level does not match answers")
	}
	return Result{Answers: a, ZipCode: w.ZipCode, Level: w.Level}, nil
}

func boolPtr(b bool) *bool {
	return &b
}
