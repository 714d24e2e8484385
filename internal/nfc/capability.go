package nfc

import "github.com/roach88/taghunt/internal/ndef"

// Reader is the platform's tag reading capability.
type Reader interface {
	// ReadingAvailable reports whether the device can read tags at all.
	// It has no side effects.
	ReadingAvailable() bool

	// NewSession creates an idle session bound to d. The session does not
	// start polling until Begin is called.
	NewSession(d Delegate, cfg SessionConfig) (Session, error)
}

// SessionConfig controls how a session behaves.
type SessionConfig struct {
	// AlertMessage is the prompt shown to the user while the session polls.
	AlertMessage string

	// InvalidateAfterFirstRead asks the platform to end the session on its
	// own after the first successful read.
	InvalidateAfterFirstRead bool
}

// Session is one time-bounded polling window.
type Session interface {
	// Begin starts polling. Activation is reported through the delegate.
	Begin()

	// Invalidate ends the session. The delegate receives exactly one
	// SessionDidInvalidate for the session.
	Invalidate()

	// SetAlertMessage replaces the prompt text shown to the user.
	SetAlertMessage(msg string)

	// Connect opens a connection to a detected tag.
	Connect(t Tag, done func(error))
}

// TagStatus is the writability of a tag as reported by the platform.
type TagStatus int

const (
	// StatusNotSupported means the tag is not formatted for NDEF.
	StatusNotSupported TagStatus = iota + 1
	StatusReadWrite
	StatusReadOnly
)

func (s TagStatus) String() string {
	switch s {
	case StatusNotSupported:
		return "not_supported"
	case StatusReadWrite:
		return "read_write"
	case StatusReadOnly:
		return "read_only"
	default:
		return "unknown"
	}
}

// Tag is a detected tag. Methods may only be used after a successful Connect.
type Tag interface {
	// QueryStatus reports writability and capacity in bytes.
	QueryStatus(done func(status TagStatus, capacity int, err error))

	// ReadMessage reads the tag's NDEF message.
	ReadMessage(done func(*ndef.Message, error))

	// WriteMessage replaces the tag's NDEF message.
	WriteMessage(m *ndef.Message, done func(error))
}

// Delegate receives session lifecycle events.
type Delegate interface {
	SessionDidBecomeActive(s Session)
	SessionDidDetectTags(s Session, tags []Tag)
	SessionDidDetectMessages(s Session, msgs []*ndef.Message)
	SessionDidInvalidate(s Session, err error)
}
