package domain

// EventKind classifies an intake analytics event.
type EventKind string

const (
	EventTurn      EventKind = "turn"
	EventCrisis    EventKind = "crisis"
	EventCompleted EventKind = "completed"
	EventConnected EventKind = "connected"
	EventRestarted EventKind = "restarted"
)

// IntakeEvent is one append-only analytics record for a triage session.
// It never carries the user's free text.
type IntakeEvent struct {
	PK         string
	SK         string
	SessionID  string
	Kind       EventKind
	Step       string
	Topic      string
	Level      int
	ZipCode    string
	OccurredAt string
	TTL        int64
}
