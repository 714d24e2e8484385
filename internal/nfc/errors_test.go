package nfc

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsCancellation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"user canceled", NewReaderError(CodeUserCanceled, ""), true},
		{"timeout", NewReaderError(CodeSessionTimeout, "no tag"), true},
		{"wrapped timeout", fmt.Errorf("session: %w", NewReaderError(CodeSessionTimeout, "")), true},
		{"system busy", NewReaderError(CodeSystemBusy, ""), false},
		{"invalidated by app", NewReaderError(CodeSessionInvalidated, ""), false},
		{"plain error", errors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsCancellation(tt.err))
		})
	}
}

func TestReaderError_Error(t *testing.T) {
	assert.Equal(t, "nfc: SYSTEM_BUSY", NewReaderError(CodeSystemBusy, "").Error())
	assert.Equal(t, "nfc: USER_CANCELED: dismissed", NewReaderError(CodeUserCanceled, "dismissed").Error())
}

func TestTagStatus_String(t *testing.T) {
	assert.Equal(t, "read_only", StatusReadOnly.String())
	assert.Equal(t, "read_write", StatusReadWrite.String())
	assert.Equal(t, "not_supported", StatusNotSupported.String())
	assert.Equal(t, "unknown", TagStatus(0).String())
}
