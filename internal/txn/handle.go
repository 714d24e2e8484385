package txn

import (
	"sync/atomic"

	"github.com/roach88/taghunt/internal/nfc"
)

const (
	handleIdle int32 = iota
	handleActive
	handleInvalidated
)

// sessionHandle wraps the platform session owned by one transaction.
// It moves Idle -> Active -> Invalidated; invalidation is terminal and a
// second invalidation does nothing. A nil handle is valid and inert.
type sessionHandle struct {
	session nfc.Session
	state   atomic.Int32
}

func newSessionHandle(s nfc.Session) *sessionHandle {
	return &sessionHandle{session: s}
}

func (h *sessionHandle) begin() bool {
	if h == nil || !h.state.CompareAndSwap(handleIdle, handleActive) {
		return false
	}
	h.session.Begin()
	return true
}

func (h *sessionHandle) invalidate() bool {
	if h == nil {
		return false
	}
	for {
		cur := h.state.Load()
		if cur == handleInvalidated {
			return false
		}
		if h.state.CompareAndSwap(cur, handleInvalidated) {
			h.session.Invalidate()
			return true
		}
	}
}

func (h *sessionHandle) invalidated() bool {
	return h != nil && h.state.Load() == handleInvalidated
}

func (h *sessionHandle) setAlert(msg string) {
	if h == nil || msg == "" || h.invalidated() {
		return
	}
	h.session.SetAlertMessage(msg)
}

func (h *sessionHandle) connect(t nfc.Tag, done func(error)) {
	h.session.Connect(t, done)
}
