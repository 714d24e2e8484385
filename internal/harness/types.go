package harness

import (
	"github.com/roach88/taghunt/internal/nfcsim"
	"github.com/roach88/taghunt/internal/store"
	"github.com/roach88/taghunt/internal/trace"
)

// OutputRecord is the output of one operation, flattened for comparison.
type OutputRecord struct {
	Operation string `json:"operation"`
	Case      string `json:"case"`
	Value     string `json:"value,omitempty"`
	Message   string `json:"message,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all expect clauses and assertions match.
	Pass bool `json:"pass"`

	// Outputs holds one record per operation, in order.
	Outputs []OutputRecord `json:"outputs"`

	// Trace contains every transaction event in sequence order.
	Trace []trace.Event `json:"trace"`

	// Calls is the reader's tag operation log.
	Calls []nfcsim.Call `json:"calls"`

	// Alerts lists every prompt the reader showed.
	Alerts []string `json:"alerts"`

	// Sessions is the number of sessions the reader created.
	Sessions int `json:"sessions"`

	// Journal holds the journaled outcomes, oldest first.
	Journal []store.Outcome `json:"journal"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Outputs: []OutputRecord{},
		Trace:   []trace.Event{},
		Calls:   []nfcsim.Call{},
		Alerts:  []string{},
		Errors:  []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
