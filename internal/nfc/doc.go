// Package nfc defines the proximity-tag hardware capability consumed by the
// transaction engine.
//
// The platform delivers session lifecycle events through a [Delegate] on its
// own delivery context, one at a time per session. Per-tag operations
// complete through callbacks on the same context. Nothing in this package
// talks to hardware; implementations live elsewhere (see package nfcsim for
// the scripted one).
//
// Platform failures are reported as [*ReaderError]. [IsCancellation] is the
// single place that decides whether a cause means the user dismissed the
// prompt or the session timed out waiting for a tag.
package nfc
