package txn

import (
	"context"
	"fmt"

	"github.com/roach88/taghunt/internal/ndef"
	"github.com/roach88/taghunt/internal/nfc"
)

// Read is a transaction that reads the identifier stored on one tag.
type Read struct {
	c *core[string]
}

// NewRead creates an idle read transaction.
func NewRead(reader nfc.Reader, opts ...Option) *Read {
	return &Read{c: newCore[string]("read", reader, readMachine, opts)}
}

// ID returns the transaction ID.
func (r *Read) ID() string { return r.c.id }

// State returns the current state.
func (r *Read) State() State { return r.c.current() }

// Commit opens a session, waits for it to resolve and returns the first
// well-known URI found on the tag.
//
// Commit must be called exactly once per Read.
func (r *Read) Commit(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		r.c.fail(newError(KindSession, err))
		return r.c.slot.Take()
	}
	r.c.open(readDelegate{r}, nfc.SessionConfig{
		AlertMessage:             r.c.prompts.Start,
		InvalidateAfterFirstRead: true,
	})
	return r.c.await(ctx)
}

// inspect resolves the transaction from a message's records.
func (r *Read) inspect(msg *ndef.Message) {
	uri, ok := msg.FirstURI()
	if !ok {
		r.c.fail(newError(KindUnsupportedTagShape, nil))
		return
	}
	r.c.session().setAlert(r.c.prompts.ReadSuccess)
	r.c.succeed(uri)
}

// readDelegate receives session events for a Read.
type readDelegate struct {
	r *Read
}

func (d readDelegate) SessionDidBecomeActive(nfc.Session) {
	if d.r.c.late("became_active") {
		return
	}
	d.r.c.activate()
}

func (d readDelegate) SessionDidDetectTags(_ nfc.Session, tags []nfc.Tag) {
	c := d.r.c
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

	tag := tags[0]
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
		if !c.step(StateReading) {
			return
		}
		tag.ReadMessage(func(msg *ndef.Message, err error) {
			if c.late("read") {
				return
			}
			if err != nil {
				c.fail(newError(KindRead, err))
				return
			}
			d.r.inspect(msg)
		})
	})
}

func (d readDelegate) SessionDidDetectMessages(_ nfc.Session, msgs []*ndef.Message) {
	c := d.r.c
	if c.late("detected_messages") {
		return
	}
	switch {
	case len(msgs) == 0:
		c.logger.Debug("empty message detection")
		return
	case len(msgs) > 1:
		c.fail(newError(KindTooManyTags, fmt.Errorf("%d messages presented", len(msgs))))
		return
	}
	d.r.inspect(msgs[0])
}

func (d readDelegate) SessionDidInvalidate(_ nfc.Session, err error) {
	if d.r.c.late("invalidated") {
		return
	}
	d.r.c.fail(newError(KindSession, err))
}
