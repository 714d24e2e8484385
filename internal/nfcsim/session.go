package nfcsim

import (
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/taghunt/internal/ndef"
	"github.com/roach88/taghunt/internal/nfc"
)

// session is one scripted platform session. All delegate callbacks run on
// the worker goroutine started by Begin.
type session struct {
	r      *Reader
	d      nfc.Delegate
	cfg    nfc.SessionConfig
	q      *queue
	logger *slog.Logger

	once        sync.Once
	mu          sync.Mutex
	invalidated bool
}

func newSession(r *Reader, n int, d nfc.Delegate, cfg nfc.SessionConfig) *session {
	return &session{
		r:      r,
		d:      d,
		cfg:    cfg,
		q:      newQueue(),
		logger: r.logger.With("session", n),
	}
}

// Begin implements nfc.Session.
func (s *session) Begin() {
	s.once.Do(func() {
		s.r.wg.Add(1)
		go s.run()
	})
}

// Invalidate implements nfc.Session. The delegate is told once, with a
// session-invalidated cause.
func (s *session) Invalidate() {
	if !s.markInvalidated() {
		return
	}
	s.logger.Debug("session invalidated by caller")
	s.post(func() {
		s.d.SessionDidInvalidate(s, nfc.NewReaderError(nfc.CodeSessionInvalidated, ""))
	})
}

// SetAlertMessage implements nfc.Session.
func (s *session) SetAlertMessage(msg string) {
	s.r.alert(msg)
}

// Connect implements nfc.Session.
func (s *session) Connect(t nfc.Tag, done func(error)) {
	st, ok := t.(*simTag)
	if !ok || st.s != s {
		s.post(func() { done(nfc.NewReaderError(nfc.CodeUnknown, "tag does not belong to this session")) })
		return
	}
	s.r.logCall(OpConnect, st.name)
	err := s.opError(st.state().spec.ConnectError)
	s.post(func() { done(err) })
}

func (s *session) markInvalidated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.invalidated {
		return false
	}
	s.invalidated = true
	return true
}

func (s *session) isInvalidated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.invalidated
}

// opError returns the error a tag operation completes with: a
// session-invalidated error once the session is over, otherwise the
// scripted error, if any.
func (s *session) opError(scripted nfc.ErrorCode) error {
	if s.isInvalidated() {
		return nfc.NewReaderError(nfc.CodeSessionInvalidated, "")
	}
	if scripted != "" {
		return nfc.NewReaderError(scripted, "")
	}
	return nil
}

// post queues a delivery for the worker. Once the worker has exited the
// delivery runs inline.
func (s *session) post(f func()) {
	if !s.q.enqueue(f) {
		f()
	}
}

// expire invalidates the session from the platform side.
func (s *session) expire(code nfc.ErrorCode) {
	s.markInvalidated()
	s.logger.Debug("session ended", "code", code)
	s.d.SessionDidInvalidate(s, nfc.NewReaderError(code, ""))
}

// drain runs pending deliveries until the queue is idle.
func (s *session) drain() {
	for {
		f, ok := s.q.tryDequeue()
		if !ok {
			return
		}
		f()
	}
}

func (s *session) run() {
	defer s.r.wg.Done()
	defer s.finish()

	s.d.SessionDidBecomeActive(s)
	s.drain()

	for i, st := range s.r.script.Steps {
		if st.Delay > 0 {
			time.Sleep(st.Delay)
		}
		s.logger.Debug("delivering step", "step", i)
		s.apply(st)
		s.drain()
	}

	for !s.isInvalidated() {
		if s.r.script.Timeout > 0 {
			timer := time.NewTimer(s.r.script.Timeout)
			select {
			case <-s.q.wait():
				timer.Stop()
				s.drain()
				continue
			case <-timer.C:
			}
		}
		if !s.isInvalidated() {
			s.expire(nfc.CodeSessionTimeout)
		}
		s.drain()
	}
	s.drain()
}

func (s *session) apply(st Step) {
	switch {
	case len(st.DetectTags) > 0:
		tags := make([]nfc.Tag, len(st.DetectTags))
		for i, name := range st.DetectTags {
			tags[i] = &simTag{s: s, name: name}
		}
		s.d.SessionDidDetectTags(s, tags)

	case len(st.DetectMessages) > 0:
		msgs := make([]*ndef.Message, len(st.DetectMessages))
		for i, name := range st.DetectMessages {
			msg, err := s.r.storedMessage(name)
			if err != nil {
				s.r.logger.Warn("undecodable tag memory", "tag", name, "error", err)
			}
			msgs[i] = msg
		}
		s.d.SessionDidDetectMessages(s, msgs)
		if s.cfg.InvalidateAfterFirstRead {
			s.drain()
			if !s.isInvalidated() {
				s.expire(nfc.CodeFirstTagRead)
			}
		}

	case st.Invalidate != "":
		// Scripted invalidations are delivered even on a dead session so
		// late callbacks can be exercised.
		s.expire(st.Invalidate)
	}
}

// finish stops accepting deliveries, flushes what is left and frees the
// reader for the next session.
func (s *session) finish() {
	s.q.close()
	s.drain()
	s.r.release(s)
}

// simTag is a scripted tag as seen through one session.
type simTag struct {
	s    *session
	name string
}

func (t *simTag) state() *tagState {
	return t.s.r.tag(t.name)
}

// QueryStatus implements nfc.Tag.
func (t *simTag) QueryStatus(done func(nfc.TagStatus, int, error)) {
	t.s.r.logCall(OpQueryStatus, t.name)
	st := t.state()
	capacity := st.spec.Capacity
	if capacity == 0 {
		capacity = DefaultCapacity
	}
	err := t.s.opError(st.spec.StatusError)
	if err != nil {
		t.s.post(func() { done(0, 0, err) })
		return
	}
	status := st.status
	t.s.post(func() { done(status, capacity, nil) })
}

// ReadMessage implements nfc.Tag.
func (t *simTag) ReadMessage(done func(*ndef.Message, error)) {
	t.s.r.logCall(OpRead, t.name)
	err := t.s.opError(t.state().spec.ReadError)
	if err != nil {
		t.s.post(func() { done(nil, err) })
		return
	}
	msg, err := t.s.r.storedMessage(t.name)
	if err != nil {
		err = nfc.NewReaderError(nfc.CodeUnknown, "corrupt tag memory: "+err.Error())
		t.s.post(func() { done(nil, err) })
		return
	}
	t.s.r.logger.Debug("tag read", "tag", t.name, "records", msg.Summary())
	t.s.post(func() { done(msg, nil) })
}

// WriteMessage implements nfc.Tag. The platform refuses writes to read-only
// tags and messages that exceed the capacity on its own.
func (t *simTag) WriteMessage(msg *ndef.Message, done func(error)) {
	t.s.r.logCall(OpWrite, t.name)
	st := t.state()
	capacity := st.spec.Capacity
	if capacity == 0 {
		capacity = DefaultCapacity
	}

	err := t.s.opError(st.spec.WriteError)
	switch {
	case err != nil:
	case st.status != nfc.StatusReadWrite:
		err = nfc.NewReaderError(nfc.CodeTagNotWritable, "")
	case msg.Len() > capacity:
		err = nfc.NewReaderError(nfc.CodeTagUpdateFailure, "message exceeds capacity")
	default:
		if serr := t.s.r.store(t.name, msg); serr != nil {
			err = nfc.NewReaderError(nfc.CodeTagUpdateFailure, serr.Error())
		}
	}
	t.s.post(func() { done(err) })
}
