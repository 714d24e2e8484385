package capability

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/taghunt/internal/nfc"
	"github.com/roach88/taghunt/internal/store"
	"github.com/roach88/taghunt/internal/trace"
	"github.com/roach88/taghunt/internal/txn"
)

// DefaultCapabilityName names the hardware capability in messages.
const DefaultCapabilityName = "NFC reading"

// IDGenerator produces transaction IDs.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 transaction IDs.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Journal records the outcome of each processed operation.
// *store.Store implements it.
type Journal interface {
	RecordOutcome(ctx context.Context, o store.Outcome) error
}

// Dispatcher turns operations into transactions.
type Dispatcher struct {
	reader  nfc.Reader
	logger  *slog.Logger
	name    string
	prompts txn.Prompts
	journal Journal
	ids     IDGenerator
	sink    trace.Sink
	clock   *trace.Clock
	now     func() time.Time
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithCapabilityName sets the name used in the "not available" message.
func WithCapabilityName(name string) Option {
	return func(d *Dispatcher) {
		if name != "" {
			d.name = name
		}
	}
}

// WithPrompts sets the prompt text passed to every transaction.
func WithPrompts(p txn.Prompts) Option {
	return func(d *Dispatcher) {
		d.prompts = p
	}
}

// WithJournal records outcomes to j.
func WithJournal(j Journal) Option {
	return func(d *Dispatcher) {
		d.journal = j
	}
}

// WithIDGenerator sets the transaction ID source. Default: UUIDv7Generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(d *Dispatcher) {
		if g != nil {
			d.ids = g
		}
	}
}

// WithSink sets the trace sink passed to every transaction.
func WithSink(s trace.Sink) Option {
	return func(d *Dispatcher) {
		if s != nil {
			d.sink = s
		}
	}
}

// WithClock sets the logical clock that numbers journaled outcomes.
// Use trace.NewClockAt to continue an existing journal.
func WithClock(c *trace.Clock) Option {
	return func(d *Dispatcher) {
		if c != nil {
			d.clock = c
		}
	}
}

// WithNow sets the wall clock used for journal timings.
func WithNow(now func() time.Time) Option {
	return func(d *Dispatcher) {
		if now != nil {
			d.now = now
		}
	}
}

// New creates a Dispatcher for reader.
func New(reader nfc.Reader, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		reader:  reader,
		logger:  slog.Default(),
		name:    DefaultCapabilityName,
		prompts: txn.DefaultPrompts(),
		ids:     UUIDv7Generator{},
		sink:    trace.Discard,
		clock:   trace.NewClock(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Process runs op and returns its Output. It never fails: errors are
// reported as Error or Cancelled.
//
// Process suspends until the transaction resolves or ctx ends; ending ctx
// invalidates the session and yields Cancelled.
func (d *Dispatcher) Process(ctx context.Context, op Operation) Output {
	id := d.ids.Generate()
	start := d.now()
	logger := d.logger.With("txn", id)

	out, kind := d.process(ctx, id, op)

	opCase := "unknown"
	if op != nil {
		opCase = op.Case()
	}
	logger.Info("operation processed", "operation", opCase, "output", out.Case(), "kind", kind)
	d.record(ctx, logger, store.Outcome{
		ID:        id,
		Seq:       d.clock.Next(),
		Operation: opCase,
		Output:    out.Case(),
		ErrorKind: string(kind),
		StartedAt: start,
		Duration:  d.now().Sub(start),
	})
	return out
}

func (d *Dispatcher) process(ctx context.Context, id string, op Operation) (Output, txn.Kind) {
	if !d.reader.ReadingAvailable() {
		return Error{Message: d.name + " not available"}, ""
	}

	opts := []txn.Option{
		txn.WithID(id),
		txn.WithLogger(d.logger),
		txn.WithSink(d.sink),
		txn.WithPrompts(d.prompts),
	}

	switch op := op.(type) {
	case ReadURL:
		v, err := txn.NewRead(d.reader, opts...).Commit(ctx)
		if err != nil {
			return classified("read", err)
		}
		return URL{Value: v}, ""

	case WriteURL:
		if err := txn.NewWrite(d.reader, op.Identifier, opts...).Commit(ctx); err != nil {
			return classified("write", err)
		}
		return Written{}, ""

	default:
		return Error{Message: fmt.Sprintf("unsupported operation %T", op)}, ""
	}
}

func classified(verb string, err error) (Output, txn.Kind) {
	kind, _ := txn.KindOf(err)
	return Classify(verb, err), kind
}

// record journals o. Journal failures are logged only.
func (d *Dispatcher) record(ctx context.Context, logger *slog.Logger, o store.Outcome) {
	if d.journal == nil {
		return
	}
	if err := d.journal.RecordOutcome(context.WithoutCancel(ctx), o); err != nil {
		logger.Warn("journal write failed", "error", err)
	}
}
