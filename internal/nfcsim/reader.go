package nfcsim

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/roach88/taghunt/internal/ndef"
	"github.com/roach88/taghunt/internal/nfc"
)

// Tag operations recorded in the call log.
const (
	OpConnect     = "connect"
	OpQueryStatus = "query_status"
	OpRead        = "read"
	OpWrite       = "write"
)

// Call is one tag operation performed through the reader.
type Call struct {
	Op  string
	Tag string
}

// tagState is the live state of a scripted tag. memory holds the encoded
// NDEF message (nil for a blank tag). Writes replace it, so a later session
// sees what an earlier one wrote.
type tagState struct {
	spec   TagSpec
	status nfc.TagStatus
	memory []byte
}

// Reader is a scripted nfc.Reader.
type Reader struct {
	script *Script
	logger *slog.Logger

	wg sync.WaitGroup

	mu       sync.Mutex
	tags     map[string]*tagState
	live     *session
	sessions int
	calls    []Call
	alerts   []string
	written  map[string]*ndef.Message
}

// Option configures a Reader.
type Option func(*Reader)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Reader) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewReader creates a reader that plays script.
func NewReader(script *Script, opts ...Option) (*Reader, error) {
	if err := script.Validate(); err != nil {
		return nil, err
	}
	r := &Reader{
		script:  script,
		logger:  slog.Default(),
		tags:    make(map[string]*tagState, len(script.Tags)),
		written: make(map[string]*ndef.Message),
	}
	for _, opt := range opts {
		opt(r)
	}
	for name, spec := range script.Tags {
		status, _ := parseStatus(spec.Status)
		st := &tagState{spec: spec, status: status}
		if msg, _ := buildMessage(spec.Message); msg != nil {
			raw, err := msg.Marshal()
			if err != nil {
				return nil, fmt.Errorf("tag %q: %w", name, err)
			}
			st.memory = raw
		}
		r.tags[name] = st
	}
	return r, nil
}

// ReadingAvailable implements nfc.Reader.
func (r *Reader) ReadingAvailable() bool {
	return r.script.ReadingAvailable()
}

// NewSession implements nfc.Reader. Only one session may be live at a time.
func (r *Reader) NewSession(d nfc.Delegate, cfg nfc.SessionConfig) (nfc.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.script.ReadingAvailable() {
		return nil, nfc.NewReaderError(nfc.CodeUnknown, "reading unavailable")
	}
	if r.live != nil {
		return nil, nfc.NewReaderError(nfc.CodeSystemBusy, "a session is already live")
	}
	r.sessions++
	s := newSession(r, r.sessions, d, cfg)
	r.live = s
	r.alerts = append(r.alerts, cfg.AlertMessage)
	return s, nil
}

// Wait blocks until every begun session has finished delivering events.
func (r *Reader) Wait() {
	r.wg.Wait()
}

// Calls returns the tag operations performed so far, in order.
func (r *Reader) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Alerts returns every alert message shown, starting with each session's
// initial prompt.
func (r *Reader) Alerts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.alerts...)
}

// Written returns the last message written to the named tag, or nil.
func (r *Reader) Written(tag string) *ndef.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.written[tag]
}

// Sessions returns the number of sessions created.
func (r *Reader) Sessions() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions
}

func (r *Reader) logCall(op, tag string) {
	r.mu.Lock()
	r.calls = append(r.calls, Call{Op: op, Tag: tag})
	r.mu.Unlock()
}

func (r *Reader) alert(msg string) {
	r.mu.Lock()
	r.alerts = append(r.alerts, msg)
	r.mu.Unlock()
}

func (r *Reader) tag(name string) *tagState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tags[name]
}

// storedMessage decodes the tag's memory. A blank tag yields nil.
func (r *Reader) storedMessage(name string) (*ndef.Message, error) {
	r.mu.Lock()
	raw := r.tags[name].memory
	r.mu.Unlock()
	if raw == nil {
		return nil, nil
	}
	return ndef.Unmarshal(raw)
}

func (r *Reader) store(name string, msg *ndef.Message) error {
	raw, err := msg.Marshal()
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tags[name].memory = raw
	r.written[name] = msg
	return nil
}

func (r *Reader) release(s *session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.live == s {
		r.live = nil
	}
}

func (c Call) String() string {
	return fmt.Sprintf("%s(%s)", c.Op, c.Tag)
}
