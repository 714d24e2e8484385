// Package store provides the SQLite-backed outcome journal.
//
// Each processed operation appends one row: its transaction ID, logical
// sequence number, operation and output cases, the failure kind if any,
// and timings. Tag contents are never written.
//
// # Ordering
//
// All reads order by seq (the logical clock), never by wall time, so the
// journal reads back identically regardless of clock skew.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
package store
