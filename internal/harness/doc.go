// Package harness runs scenario files against the dispatcher and a
// simulated reader.
//
// A scenario pairs an nfcsim script with a list of operations and the
// outputs they must produce. Running it yields the outputs, the transaction
// trace, the tag operations the reader saw and the prompts it showed; the
// harness checks expectations and assertions against them and can compare
// the whole run to a golden file.
//
// Every scenario runs with sequential transaction IDs, a fresh logical
// clock and a fresh in-memory journal, so the same scenario always
// produces byte-identical snapshots.
package harness
