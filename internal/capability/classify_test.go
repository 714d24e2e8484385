package capability

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/taghunt/internal/nfc"
	"github.com/roach88/taghunt/internal/txn"
)

func txnError(kind txn.Kind, cause error) error {
	return &txn.Error{Kind: kind, Cause: cause}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Output
	}{
		{"user canceled", txnError(txn.KindSession, nfc.NewReaderError(nfc.CodeUserCanceled, "")), Cancelled{}},
		{"timeout", txnError(txn.KindSession, nfc.NewReaderError(nfc.CodeSessionTimeout, "")), Cancelled{}},
		{"context canceled", txnError(txn.KindSession, context.Canceled), Cancelled{}},
		{"deadline", txnError(txn.KindSession, fmt.Errorf("wait: %w", context.DeadlineExceeded)), Cancelled{}},
		{
			"system busy",
			txnError(txn.KindSession, nfc.NewReaderError(nfc.CodeSystemBusy, "")),
			Error{Message: "NFC read failed: session error: nfc: SYSTEM_BUSY"},
		},
		{"read only", txnError(txn.KindReadOnlyTag, nil), Error{Message: "NFC read failed: tag is read-only"}},
		{
			// Only session errors can be cancellations.
			"cancel-shaped connection error",
			txnError(txn.KindConnection, nfc.NewReaderError(nfc.CodeUserCanceled, "")),
			Error{Message: "NFC read failed: tag connection failed: nfc: USER_CANCELED"},
		},
		{"foreign error", errors.New("boom"), Error{Message: "NFC read failed: boom"}},
		{"nil", nil, Error{Message: "NFC read failed: no result"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify("read", tt.err))
		})
	}
}

func TestClassify_WriteVerb(t *testing.T) {
	out := Classify("write", txnError(txn.KindCapacityExceeded, errors.New("needs 40 bytes")))
	assert.Equal(t, Error{Message: "NFC write failed: tag capacity too small: needs 40 bytes"}, out)
}
