package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/taghunt/internal/trace"
)

// Snapshot returns the canonical JSON form of a scenario run: outputs,
// trace, calls and alerts. Journal timings and pass/fail are left out.
func Snapshot(name string, r *Result) ([]byte, error) {
	outputs := make([]any, len(r.Outputs))
	for i, o := range r.Outputs {
		m := map[string]any{
			"operation": o.Operation,
			"case":      o.Case,
		}
		if o.Value != "" {
			m["value"] = o.Value
		}
		if o.Message != "" {
			m["message"] = o.Message
		}
		outputs[i] = m
	}

	events := make([]any, len(r.Trace))
	for i, e := range r.Trace {
		events[i] = e.Map()
	}

	calls := make([]any, len(r.Calls))
	for i, c := range r.Calls {
		calls[i] = map[string]any{"op": c.Op, "tag": c.Tag}
	}

	alerts := make([]any, len(r.Alerts))
	for i, a := range r.Alerts {
		alerts[i] = a
	}

	return trace.MarshalCanonical(map[string]any{
		"scenario": name,
		"outputs":  outputs,
		"trace":    events,
		"calls":    calls,
		"alerts":   alerts,
	})
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the result so callers can make further checks.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares the given result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
