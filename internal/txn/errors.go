package txn

import (
	"errors"
	"fmt"
)

// Kind categorizes transaction failures.
type Kind string

const (
	// KindMalformedIdentifier: the identifier cannot be encoded as a URI record.
	KindMalformedIdentifier Kind = "MALFORMED_IDENTIFIER"

	// KindUnsupportedTagShape: no record of the expected type, or the tag is not NDEF formatted.
	KindUnsupportedTagShape Kind = "UNSUPPORTED_TAG_SHAPE"

	// KindTooManyTags: more than one tag or message was presented at once.
	KindTooManyTags Kind = "TOO_MANY_TAGS_DETECTED"

	// KindSession: the session ended with an error outside the tag path.
	KindSession Kind = "SESSION_ERROR"

	KindConnection  Kind = "CONNECTION_ERROR"
	KindStatusQuery Kind = "STATUS_QUERY_ERROR"
	KindRead        Kind = "READ_ERROR"
	KindWrite       Kind = "WRITE_ERROR"

	KindReadOnlyTag      Kind = "READ_ONLY_TAG"
	KindCapacityExceeded Kind = "CAPACITY_EXCEEDED"

	// KindInconsistentState signals a logic defect, not a hardware condition.
	KindInconsistentState Kind = "INCONSISTENT_STATE"
)

var descriptions = map[Kind]string{
	KindMalformedIdentifier: "malformed identifier",
	KindUnsupportedTagShape: "unsupported tag",
	KindTooManyTags:         "too many tags detected",
	KindSession:             "session error",
	KindConnection:          "tag connection failed",
	KindStatusQuery:         "tag status query failed",
	KindRead:                "tag read failed",
	KindWrite:               "tag write failed",
	KindReadOnlyTag:         "tag is read-only",
	KindCapacityExceeded:    "tag capacity too small",
	KindInconsistentState:   "inconsistent transaction state",
}

// Describe returns a short human-readable description of the kind.
func (k Kind) Describe() string {
	if d, ok := descriptions[k]; ok {
		return d
	}
	return string(k)
}

// Error is a transaction failure.
type Error struct {
	// Kind identifies the failure category.
	Kind Kind

	// Cause is the underlying platform or codec error, if any.
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Kind.Describe(), e.Cause)
	}
	return e.Kind.Describe()
}

// Unwrap returns the cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

func newError(kind Kind, cause error) *Error {
	return &Error{Kind: kind, Cause: cause}
}

// KindOf extracts the Kind from err.
// Uses errors.As to handle wrapped errors.
func KindOf(err error) (Kind, bool) {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind, true
	}
	return "", false
}

// IsKind returns true if err is a transaction error of the given kind.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
