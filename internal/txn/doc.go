// Package txn turns one callback-driven hardware session into a single
// awaitable result.
//
// A transaction owns exactly one [nfc.Session] and one result [Slot]. The
// hardware delivers lifecycle events on its own context; the transaction
// advances an explicit [State] machine in response and resolves the slot on
// exactly one code path. Every terminal path invalidates the session before
// resolving, and every event delivered after resolution is ignored and traced.
//
// Two variants exist:
//
//   - [Read]: detect one tag, connect, read its message, return the first
//     well-known URI record.
//   - [Write]: encode the identifier locally (no session on failure), detect
//     one tag, connect, check status and capacity, write.
//
// Failures are reported as [*Error] carrying a [Kind] from a closed set.
// Platform causes are kept as the wrapped Cause and never inspected here.
package txn
