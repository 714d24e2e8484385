package txn

import (
	"context"
	"log/slog"
	"sync"

	"github.com/roach88/taghunt/internal/nfc"
	"github.com/roach88/taghunt/internal/trace"
)

// Prompts is the text shown by the platform at key points of a session.
type Prompts struct {
	Start        string
	ReadSuccess  string
	WriteSuccess string
}

// DefaultPrompts returns the stock prompt text.
func DefaultPrompts() Prompts {
	return Prompts{
		Start:        "Move the top of your device close to the tag",
		ReadSuccess:  "Tag read!",
		WriteSuccess: "Tag written!",
	}
}

type options struct {
	id      string
	logger  *slog.Logger
	sink    trace.Sink
	prompts Prompts
}

// Option configures a transaction.
type Option func(*options)

// WithID sets the transaction ID used in logs and traces.
func WithID(id string) Option {
	return func(o *options) {
		o.id = id
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithSink sets the trace sink. Default: trace.Discard.
func WithSink(s trace.Sink) Option {
	return func(o *options) {
		if s != nil {
			o.sink = s
		}
	}
}

// WithPrompts sets the prompt text. Empty fields leave the prompt unchanged.
func WithPrompts(p Prompts) Option {
	return func(o *options) {
		if p.Start != "" {
			o.prompts.Start = p.Start
		}
		if p.ReadSuccess != "" {
			o.prompts.ReadSuccess = p.ReadSuccess
		}
		if p.WriteSuccess != "" {
			o.prompts.WriteSuccess = p.WriteSuccess
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		logger:  slog.Default(),
		sink:    trace.Discard,
		prompts: DefaultPrompts(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// core is the machinery shared by Read and Write: state, session handle and
// result slot. Hardware callbacks and the awaiting caller may touch it from
// different goroutines; mu guards state and handle. Calls into the platform
// are made without holding mu.
type core[T any] struct {
	options
	variant string
	reader  nfc.Reader
	machine machine
	slot    *Slot[T]

	mu     sync.Mutex
	state  State
	handle *sessionHandle
}

func newCore[T any](variant string, reader nfc.Reader, m machine, opts []Option) *core[T] {
	c := &core[T]{
		options: buildOptions(opts),
		variant: variant,
		reader:  reader,
		machine: m,
		slot:    NewSlot[T](),
	}
	c.logger = c.logger.With("txn", c.id, "variant", variant)
	return c
}

func (c *core[T]) current() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *core[T]) session() *sessionHandle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handle
}

func (c *core[T]) record(typ string, state State, detail string) {
	e := trace.Event{Txn: c.id, Type: typ, Detail: detail}
	if typ == trace.TypeState {
		e.State = state.String()
	}
	c.sink.Record(e)
}

// late reports whether the transaction has already resolved. A late event is
// traced and otherwise dropped.
func (c *core[T]) late(event string) bool {
	if !c.current().Terminal() {
		return false
	}
	c.logger.Debug("ignoring event after resolution", "event", event)
	c.record(trace.TypeIgnored, 0, event)
	return true
}

// step moves to the next state. It returns false if the transaction is
// already resolved, or if the move is not permitted, in which case the
// transaction fails with KindInconsistentState.
func (c *core[T]) step(to State) bool {
	c.mu.Lock()
	from := c.state
	if from.Terminal() {
		c.mu.Unlock()
		return false
	}
	if to.Terminal() || !c.machine.allows(from, to) {
		c.mu.Unlock()
		c.fail(newError(KindInconsistentState, &transitionError{from: from, to: to}))
		return false
	}
	c.state = to
	c.mu.Unlock()

	c.logger.Debug("transaction state", "from", from, "to", to)
	c.record(trace.TypeState, to, "")
	return true
}

// activate records session activation. Activation only matters while the
// session is starting; a repeated or reordered activation is dropped.
func (c *core[T]) activate() {
	if c.current() != StateSessionStarting {
		c.logger.Debug("activation outside session start", "state", c.current())
		return
	}
	c.step(StateSessionActive)
}

func (c *core[T]) succeed(v T) bool {
	c.mu.Lock()
	from := c.state
	if from.Terminal() {
		c.mu.Unlock()
		return false
	}
	if !c.machine.allows(from, StateCompleted) {
		c.mu.Unlock()
		return c.fail(newError(KindInconsistentState, &transitionError{from: from, to: StateCompleted}))
	}
	c.state = StateCompleted
	h := c.handle
	c.mu.Unlock()

	c.logger.Info("transaction completed", "from", from)
	c.record(trace.TypeState, StateCompleted, "")
	h.invalidate()
	return c.slot.Resolve(v, nil)
}

func (c *core[T]) fail(e *Error) bool {
	c.mu.Lock()
	from := c.state
	if from.Terminal() {
		c.mu.Unlock()
		return false
	}
	c.state = StateFailed
	h := c.handle
	c.mu.Unlock()

	c.logger.Info("transaction failed", "from", from, "kind", e.Kind, "error", e)
	c.record(trace.TypeState, StateFailed, string(e.Kind))
	h.invalidate()
	var zero T
	return c.slot.Resolve(zero, e)
}

// open creates and begins the session. On failure the transaction is resolved.
func (c *core[T]) open(d nfc.Delegate, cfg nfc.SessionConfig) bool {
	if !c.step(StateSessionStarting) {
		return false
	}
	s, err := c.reader.NewSession(d, cfg)
	if err != nil {
		c.fail(newError(KindSession, err))
		return false
	}

	c.mu.Lock()
	if c.state.Terminal() {
		c.mu.Unlock()
		s.Invalidate()
		return false
	}
	h := newSessionHandle(s)
	c.handle = h
	c.mu.Unlock()

	h.begin()
	c.logger.Debug("session started")
	return true
}

// await suspends the caller until the slot resolves. Cancelling ctx
// invalidates the session and resolves with a session error.
func (c *core[T]) await(ctx context.Context) (T, error) {
	v, err := c.slot.Wait(ctx)
	if _, resolved := KindOf(err); err == nil || resolved {
		return v, err
	}
	// ctx ended first; the slot is still unconsumed.
	c.fail(newError(KindSession, err))
	return c.slot.Take()
}

type transitionError struct {
	from, to State
}

func (e *transitionError) Error() string {
	return "illegal transition " + e.from.String() + " -> " + e.to.String()
}
