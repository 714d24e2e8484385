// Package trace records the lifecycle of tag transactions.
//
// Every state change of a transaction, and every hardware event it ignored
// after resolution, is stamped with a monotonic logical sequence number from
// [Clock]. Wall-clock time is never used for ordering, so a scripted session
// produces the same trace on every run and traces can be compared against
// golden files byte for byte via [MarshalCanonical].
package trace
