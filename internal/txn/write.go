package txn

import (
	"context"
	"fmt"

	"github.com/roach88/taghunt/internal/ndef"
	"github.com/roach88/taghunt/internal/nfc"
)

// Write is a transaction that stores an identifier on one tag.
type Write struct {
	c          *core[struct{}]
	identifier string
	message    *ndef.Message
}

// NewWrite creates an idle write transaction for identifier.
func NewWrite(reader nfc.Reader, identifier string, opts ...Option) *Write {
	return &Write{
		c:          newCore[struct{}]("write", reader, writeMachine, opts),
		identifier: identifier,
	}
}

// ID returns the transaction ID.
func (w *Write) ID() string { return w.c.id }

// State returns the current state.
func (w *Write) State() State { return w.c.current() }

// Commit encodes the identifier, opens a session and waits for the write to
// resolve. An identifier that cannot be encoded fails with
// KindMalformedIdentifier before any session is created.
//
// Commit must be called exactly once per Write.
func (w *Write) Commit(ctx context.Context) error {
	msg, err := ndef.NewURIMessage(w.identifier)
	if err != nil {
		w.c.fail(newError(KindMalformedIdentifier, err))
		_, err := w.c.slot.Take()
		return err
	}
	if err := ctx.Err(); err != nil {
		w.c.fail(newError(KindSession, err))
		_, err := w.c.slot.Take()
		return err
	}

	// Set before the session exists; callbacks only read it.
	w.message = msg
	w.c.open(writeDelegate{w}, nfc.SessionConfig{
		AlertMessage:             w.c.prompts.Start,
		InvalidateAfterFirstRead: false,
	})
	_, err = w.c.await(ctx)
	return err
}

// writeTag drives connect -> status -> write for the detected tag.
func (w *Write) writeTag(tag nfc.Tag) {
	c := w.c
	msg := w.message
	if msg == nil {
		c.fail(newError(KindInconsistentState, fmt.Errorf("no encoded message held")))
		return
	}
	if !c.step(StateConnecting) {
		return
	}

	c.session().connect(tag, func(err error) {
		if c.late("connected") {
			return
		}
		if err != nil {
			c.fail(newError(KindConnection, err))
			return
		}
		if !c.step(StateQueryingStatus) {
			return
		}

		tag.QueryStatus(func(status nfc.TagStatus, capacity int, err error) {
			if c.late("status") {
				return
			}
			switch {
			case err != nil:
				c.fail(newError(KindStatusQuery, err))
				return
			case status == nfc.StatusReadOnly:
				c.fail(newError(KindReadOnlyTag, nil))
				return
			case status == nfc.StatusNotSupported:
				c.fail(newError(KindUnsupportedTagShape, fmt.Errorf("tag status %s", status)))
				return
			case msg.Len() > capacity:
				c.fail(newError(KindCapacityExceeded,
					fmt.Errorf("message needs %d bytes, tag holds %d", msg.Len(), capacity)))
				return
			}
			if !c.step(StateWriting) {
				return
			}

			tag.WriteMessage(msg, func(err error) {
				if c.late("written") {
					return
				}
				if err != nil {
					c.fail(newError(KindWrite, err))
					return
				}
				c.session().setAlert(c.prompts.WriteSuccess)
				c.succeed(struct{}{})
			})
		})
	})
}

// writeDelegate receives session events for a Write.
type writeDelegate struct {
	w *Write
}

func (d writeDelegate) SessionDidBecomeActive(nfc.Session) {
	if d.w.c.late("became_active") {
		return
	}
	d.w.c.activate()
}

func (d writeDelegate) SessionDidDetectTags(_ nfc.Session, tags []nfc.Tag) {
	c := d.w.c
	if c.late("detected_tags") {
		return
	}
	switch {
	case len(tags) == 0:
		c.logger.Debug("empty tag detection")
		return
	case len(tags) > 1:
		c.fail(newError(KindTooManyTags, fmt.Errorf("%d tags presented", len(tags))))
		return
	}
	d.w.writeTag(tags[0])
}

// SessionDidDetectMessages is not used for writing; a write needs a tag.
func (d writeDelegate) SessionDidDetectMessages(_ nfc.Session, msgs []*ndef.Message) {
	if d.w.c.late("detected_messages") {
		return
	}
	d.w.c.logger.Debug("ignoring message detection during write", "messages", len(msgs))
}

func (d writeDelegate) SessionDidInvalidate(_ nfc.Session, err error) {
	if d.w.c.late("invalidated") {
		return
	}
	d.w.c.fail(newError(KindSession, err))
}
