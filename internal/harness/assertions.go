package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/taghunt/internal/trace"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string        // Assertion type for categorization
	Expected string        // Human-readable expected outcome
	Actual   string        // Human-readable actual outcome
	Trace    []trace.Event // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, event := range e.Trace {
		switch event.Type {
		case trace.TypeState:
			fmt.Fprintf(&buf, "  [%d] %s %s %s\n", event.Seq, event.Txn, event.State, event.Detail)
		default:
			fmt.Fprintf(&buf, "  [%d] %s %s(%s)\n", event.Seq, event.Txn, event.Type, event.Detail)
		}
	}

	return buf.String()
}

func evaluate(r *Result, a Assertion) error {
	switch a.Type {
	case AssertStateOrder:
		return assertStateOrder(r.Trace, a)
	case AssertCallCount:
		return assertCallCount(r, a)
	case AssertIgnoredCount:
		return assertIgnoredCount(r.Trace, a)
	case AssertSessionCount:
		if r.Sessions != a.Count {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("%d sessions", a.Count),
				Actual:   fmt.Sprintf("%d sessions", r.Sessions),
				Trace:    r.Trace,
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

// assertStateOrder checks that the states appear in the given order.
// States don't need to be consecutive (intervening states are allowed).
func assertStateOrder(events []trace.Event, a Assertion) error {
	next := 0
	for _, e := range events {
		if next < len(a.States) && e.Type == trace.TypeState && e.State == a.States[next] {
			next++
		}
	}
	if next == len(a.States) {
		return nil
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("states in order: %v", a.States),
		Actual:   fmt.Sprintf("missing %s after %v", a.States[next], a.States[:next]),
		Trace:    events,
	}
}

// assertCallCount checks how often a tag operation was performed.
func assertCallCount(r *Result, a Assertion) error {
	count := 0
	for _, c := range r.Calls {
		if a.Op == "" || c.Op == a.Op {
			count++
		}
	}
	if count == a.Count {
		return nil
	}
	what := a.Op
	if what == "" {
		what = "tag operations"
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("%d occurrences of %s", a.Count, what),
		Actual:   fmt.Sprintf("%d occurrences", count),
		Trace:    r.Trace,
	}
}

// assertIgnoredCount checks the number of late events dropped.
func assertIgnoredCount(events []trace.Event, a Assertion) error {
	count := 0
	for _, e := range events {
		if e.Type == trace.TypeIgnored {
			count++
		}
	}
	if count == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("%d ignored events", a.Count),
		Actual:   fmt.Sprintf("%d ignored events", count),
		Trace:    events,
	}
}
