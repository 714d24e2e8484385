// Package capability is the entry point for tag operations.
//
// A Dispatcher takes an Operation, checks that the device can read tags,
// runs the matching transaction and classifies the result into an Output.
// Process never returns an error: every failure is an Output.
package capability
