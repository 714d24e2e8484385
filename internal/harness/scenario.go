package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/taghunt/internal/nfcsim"
)

// Scenario defines one conformance scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. It names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Script drives the simulated reader. Every operation opens a new
	// session that replays the script's steps.
	Script nfcsim.Script `yaml:"script"`

	// Operations run in order against the same reader.
	Operations []OperationStep `yaml:"operations"`

	// Assertions validate the trace and the reader's call log.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// OperationStep is one dispatcher call. Exactly one of Read or Write is set.
type OperationStep struct {
	Read  bool    `yaml:"read,omitempty"`
	Write *string `yaml:"write,omitempty"`

	// Expect specifies the expected output. If nil, any output is accepted.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies an expected output.
type ExpectClause struct {
	// Case is the expected output case: Url, Written, Cancelled or Error.
	Case string `yaml:"case"`

	// Value is the expected URL (Url only).
	Value string `yaml:"value,omitempty"`

	// MessageContains must appear in the error message (Error only).
	MessageContains string `yaml:"message_contains,omitempty"`
}

// Assertion validates the trace or the call log.
type Assertion struct {
	// Type specifies the assertion type:
	// - "state_order": States appear in order in the state trace
	// - "call_count": Op (or every op, if empty) was performed Count times
	// - "ignored_count": exactly Count late events were ignored
	// - "session_count": exactly Count sessions were created
	Type string `yaml:"type"`

	// States is the expected state order (used by state_order).
	States []string `yaml:"states,omitempty"`

	// Op is the tag operation name (used by call_count).
	Op string `yaml:"op,omitempty"`

	// Count is the expected number of occurrences.
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertStateOrder   = "state_order"
	AssertCallCount    = "call_count"
	AssertIgnoredCount = "ignored_count"
	AssertSessionCount = "session_count"
)

var outputCases = map[string]bool{
	"Url":       true,
	"Written":   true,
	"Cancelled": true,
	"Error":     true,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML with strict field validation.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Operations) == 0 {
		return fmt.Errorf("operations list is required and must be non-empty")
	}

	if err := s.Script.Validate(); err != nil {
		return fmt.Errorf("script: %w", err)
	}

	for i, op := range s.Operations {
		if op.Read == (op.Write != nil) {
			return fmt.Errorf("operations[%d]: exactly one of read, write is required", i)
		}
		if op.Expect != nil && !outputCases[op.Expect.Case] {
			return fmt.Errorf("operations[%d].expect: unknown case %q", i, op.Expect.Case)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertStateOrder:
		if len(a.States) == 0 {
			return fmt.Errorf("assertions[%d]: states list is required for state_order", index)
		}
	case AssertCallCount, AssertIgnoredCount, AssertSessionCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
