package harness

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/roach88/taghunt/internal/capability"
	"github.com/roach88/taghunt/internal/nfcsim"
	"github.com/roach88/taghunt/internal/store"
	"github.com/roach88/taghunt/internal/testutil"
	"github.com/roach88/taghunt/internal/trace"
)

// OperationTimeout bounds a single scenario operation. Scripts resolve
// well within it; hitting it means a scenario never ends its session.
const OperationTimeout = 10 * time.Second

// epoch is the fixed start of the wall clock used for journal timings.
var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory journal for isolation.
// Deterministic helpers ensure reproducible results.
//
// Execution flow:
// 1. Build the simulated reader from the script
// 2. Run each operation through a dispatcher, waiting for the reader to
// go quiet before the next
// 3. Check expect clauses and assertions
// 4. Return result with pass/fail, trace, and errors
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller context.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	logger := testutil.DiscardLogger()
	reader, err := nfcsim.NewReader(&scenario.Script, nfcsim.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to build reader: %w", err)
	}

	rec := trace.NewRecorder()
	d := capability.New(reader,
		capability.WithLogger(logger),
		capability.WithIDGenerator(testutil.NewSequentialIDs("txn")),
		capability.WithSink(rec),
		capability.WithJournal(st),
		capability.WithNow(testutil.NewSteppingClock(epoch, time.Millisecond).Now),
	)

	result := NewResult()
	for i, step := range scenario.Operations {
		op := step.operation()

		opCtx, cancel := context.WithTimeout(ctx, OperationTimeout)
		out := d.Process(opCtx, op)
		cancel()
		reader.Wait()

		record := flatten(op, out)
		result.Outputs = append(result.Outputs, record)
		if step.Expect != nil {
			if msg := checkExpect(step.Expect, record); msg != "" {
				result.AddError(fmt.Sprintf("operations[%d]: %s", i, msg))
			}
		}
	}

	result.Trace = rec.Events()
	result.Calls = append(result.Calls, reader.Calls()...)
	result.Alerts = append(result.Alerts, reader.Alerts()...)
	result.Sessions = reader.Sessions()

	outcomes, err := st.ListOutcomes(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}
	slices.Reverse(outcomes)
	result.Journal = outcomes

	for _, a := range scenario.Assertions {
		if err := evaluate(result, a); err != nil {
			result.AddError(err.Error())
		}
	}

	return result, nil
}

func (s OperationStep) operation() capability.Operation {
	if s.Write != nil {
		return capability.WriteURL{Identifier: *s.Write}
	}
	return capability.ReadURL{}
}

func flatten(op capability.Operation, out capability.Output) OutputRecord {
	r := OutputRecord{Operation: op.Case(), Case: out.Case()}
	switch out := out.(type) {
	case capability.URL:
		r.Value = out.Value
	case capability.Error:
		r.Message = out.Message
	}
	return r
}

// checkExpect returns a description of the mismatch, or "".
func checkExpect(e *ExpectClause, got OutputRecord) string {
	if got.Case != e.Case {
		detail := ""
		if got.Message != "" {
			detail = " (" + got.Message + ")"
		}
		return fmt.Sprintf("expected case %s, got %s%s", e.Case, got.Case, detail)
	}
	if e.Value != "" && got.Value != e.Value {
		return fmt.Sprintf("expected value %q, got %q", e.Value, got.Value)
	}
	if e.MessageContains != "" && !strings.Contains(got.Message, e.MessageContains) {
		return fmt.Sprintf("expected message containing %q, got %q", e.MessageContains, got.Message)
	}
	return ""
}
