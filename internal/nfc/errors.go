package nfc

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes platform reader errors.
type ErrorCode string

const (
	CodeUserCanceled            ErrorCode = "USER_CANCELED"
	CodeSessionTimeout          ErrorCode = "SESSION_TIMEOUT"
	CodeFirstTagRead            ErrorCode = "FIRST_TAG_READ"
	CodeSystemBusy              ErrorCode = "SYSTEM_BUSY"
	CodeSessionInvalidated      ErrorCode = "SESSION_INVALIDATED"
	CodeUnexpectedlyInvalidated ErrorCode = "UNEXPECTEDLY_INVALIDATED"
	CodeTagConnectionLost       ErrorCode = "TAG_CONNECTION_LOST"
	CodeTagNotWritable          ErrorCode = "TAG_NOT_WRITABLE"
	CodeTagUpdateFailure        ErrorCode = "TAG_UPDATE_FAILURE"
	CodeUnknown                 ErrorCode = "UNKNOWN"
)

// ReaderError is an error reported by the platform.
type ReaderError struct {
	Code    ErrorCode
	Message string
}

func (e *ReaderError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("nfc: %s", e.Code)
	}
	return fmt.Sprintf("nfc: %s: %s", e.Code, e.Message)
}

// NewReaderError creates a ReaderError.
func NewReaderError(code ErrorCode, message string) *ReaderError {
	return &ReaderError{Code: code, Message: message}
}

// CodeOf extracts the reader error code from err.
// Uses errors.As to handle wrapped errors.
func CodeOf(err error) (ErrorCode, bool) {
	var re *ReaderError
	if errors.As(err, &re) {
		return re.Code, true
	}
	return "", false
}

// IsCancellation returns true if err means the user dismissed the session
// prompt or the session timed out waiting for a tag.
func IsCancellation(err error) bool {
	code, ok := CodeOf(err)
	return ok && (code == CodeUserCanceled || code == CodeSessionTimeout)
}
