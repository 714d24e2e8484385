package txn

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/taghunt/internal/ndef"
	"github.com/roach88/taghunt/internal/nfc"
)

// fakeReader hands out one fakeSession and keeps the delegate so tests can
// drive callbacks by hand.
type fakeReader struct {
	newErr error

	mu       sync.Mutex
	sessions int
	delegate nfc.Delegate
	config   nfc.SessionConfig
	session  *fakeSession
}

func newFakeReader() *fakeReader {
	return &fakeReader{session: newFakeSession()}
}

func (r *fakeReader) ReadingAvailable() bool { return true }

func (r *fakeReader) NewSession(d nfc.Delegate, cfg nfc.SessionConfig) (nfc.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions++
	if r.newErr != nil {
		return nil, r.newErr
	}
	r.delegate, r.config = d, cfg
	return r.session, nil
}

func (r *fakeReader) started() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions
}

type fakeSession struct {
	begun chan struct{}

	mu          sync.Mutex
	invalidated int
	alerts      []string
	connects    int
	connectErr  error
}

func newFakeSession() *fakeSession {
	return &fakeSession{begun: make(chan struct{})}
}

func (s *fakeSession) Begin() { close(s.begun) }

func (s *fakeSession) Invalidate() {
	s.mu.Lock()
	s.invalidated++
	s.mu.Unlock()
}

func (s *fakeSession) SetAlertMessage(msg string) {
	s.mu.Lock()
	s.alerts = append(s.alerts, msg)
	s.mu.Unlock()
}

func (s *fakeSession) Connect(_ nfc.Tag, done func(error)) {
	s.mu.Lock()
	s.connects++
	err := s.connectErr
	s.mu.Unlock()
	done(err)
}

func (s *fakeSession) counts() (invalidated, connects int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.invalidated, s.connects
}

func (s *fakeSession) alertLog() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.alerts...)
}

// waitBegun blocks until the transaction has begun its session.
func (s *fakeSession) waitBegun(t *testing.T) {
	t.Helper()
	select {
	case <-s.begun:
	case <-time.After(time.Second):
		t.Fatal("session never began")
	}
}

type fakeTag struct {
	status    nfc.TagStatus
	capacity  int
	statusErr error
	message   *ndef.Message
	readErr   error
	writeErr  error

	mu      sync.Mutex
	written *ndef.Message
	writes  int
}

func (t *fakeTag) QueryStatus(done func(nfc.TagStatus, int, error)) {
	done(t.status, t.capacity, t.statusErr)
}

func (t *fakeTag) ReadMessage(done func(*ndef.Message, error)) {
	done(t.message, t.readErr)
}

func (t *fakeTag) WriteMessage(msg *ndef.Message, done func(error)) {
	t.mu.Lock()
	t.writes++
	if t.writeErr == nil {
		t.written = msg
	}
	t.mu.Unlock()
	done(t.writeErr)
}

func (t *fakeTag) writeCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.writes
}

func uriMessage(t *testing.T, uri string) *ndef.Message {
	t.Helper()
	msg, err := ndef.NewURIMessage(uri)
	require.NoError(t, err)
	return msg
}

type result[T any] struct {
	value T
	err   error
}

func waitResult[T any](t *testing.T, ch <-chan result[T]) result[T] {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(time.Second):
		t.Fatal("transaction never resolved")
		return result[T]{}
	}
}
