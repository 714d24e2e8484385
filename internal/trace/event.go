package trace

import "sync"

// Event types.
const (
	// TypeState marks a transaction state change.
	TypeState = "state"
	// TypeIgnored marks a hardware event delivered after resolution.
	TypeIgnored = "ignored"
)

// Event is one entry of a transaction trace.
type Event struct {
	Seq    int64  `json:"seq"`
	Txn    string `json:"txn"`
	Type   string `json:"type"`
	State  string `json:"state,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// Map converts the event to a map suitable for MarshalCanonical.
// Empty optional fields are omitted.
func (e Event) Map() map[string]any {
	m := map[string]any{
		"seq":  e.Seq,
		"txn":  e.Txn,
		"type": e.Type,
	}
	if e.State != "" {
		m["state"] = e.State
	}
	if e.Detail != "" {
		m["detail"] = e.Detail
	}
	return m
}

// Sink receives trace events. Implementations must be safe for concurrent use.
type Sink interface {
	Record(e Event)
}

// Discard is a Sink that drops every event.
var Discard Sink = discard{}

type discard struct{}

func (discard) Record(Event) {}

// Recorder is an in-memory Sink that stamps events with its clock.
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type Recorder struct {
	mu     sync.Mutex
	clock  *Clock
	events []Event
}

// NewRecorder creates a recorder with a fresh clock.
func NewRecorder() *Recorder {
	return NewRecorderWithClock(NewClock())
}

// NewRecorderWithClock creates a recorder that stamps events with clock.
func NewRecorderWithClock(clock *Clock) *Recorder {
	return &Recorder{clock: clock}
}

// Record appends e, assigning the next sequence number.
// The sequence is taken under the lock so order in Events matches Seq order.
func (r *Recorder) Record(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.Seq = r.clock.Next()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events in sequence order.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}
