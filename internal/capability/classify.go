package capability

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/taghunt/internal/nfc"
	"github.com/roach88/taghunt/internal/txn"
)

// Classify maps a transaction failure to an Output. verb names the
// operation in the message ("read" or "write").
//
// A session error caused by the user dismissing the prompt, by the session
// timing out, or by the caller's context ending is Cancelled. Everything
// else is an Error whose message carries the failure description and cause.
func Classify(verb string, err error) Output {
	if err == nil {
		return Error{Message: fmt.Sprintf("NFC %s failed: no result", verb)}
	}
	if txn.IsKind(err, txn.KindSession) && isCancellation(err) {
		return Cancelled{}
	}
	return Error{Message: fmt.Sprintf("NFC %s failed: %v", verb, err)}
}

func isCancellation(err error) bool {
	return nfc.IsCancellation(err) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
