package txn

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/taghunt/internal/ndef"
	"github.com/roach88/taghunt/internal/nfc"
	"github.com/roach88/taghunt/internal/trace"
)

func startWrite(t *testing.T, reader *fakeReader, identifier string, opts ...Option) (*Write, <-chan result[struct{}]) {
	t.Helper()
	w := NewWrite(reader, identifier, opts...)
	ch := make(chan result[struct{}], 1)
	go func() {
		ch <- result[struct{}]{err: w.Commit(context.Background())}
	}()
	reader.session.waitBegun(t)
	return w, ch
}

func TestWrite_Success(t *testing.T) {
	reader := newFakeReader()
	rec := trace.NewRecorder()
	w, ch := startWrite(t, reader, "https://example.com/item/42", WithSink(rec))

	assert.False(t, reader.config.InvalidateAfterFirstRead)

	reader.delegate.SessionDidBecomeActive(reader.session)
	tag := &fakeTag{status: nfc.StatusReadWrite, capacity: 137}
	reader.delegate.SessionDidDetectTags(reader.session, []nfc.Tag{tag})

	res := waitResult(t, ch)
	require.NoError(t, res.err)
	assert.Equal(t, StateCompleted, w.State())

	require.NotNil(t, tag.written)
	assert.Equal(t, uriMessage(t, "https://example.com/item/42"), tag.written)
	assert.Equal(t, []string{"Tag written!"}, reader.session.alertLog())

	invalidated, _ := reader.session.counts()
	assert.Equal(t, 1, invalidated)
	assert.Equal(t,
		[]string{"session_starting", "session_active", "connecting", "querying_status", "writing", "completed"},
		states(rec.Events()))
}

func TestWrite_MalformedIdentifier(t *testing.T) {
	for _, id := range []string{"", "not a url", "https://exa mple.com"} {
		t.Run(id, func(t *testing.T) {
			reader := newFakeReader()
			w := NewWrite(reader, id)
			err := w.Commit(context.Background())
			assert.True(t, IsKind(err, KindMalformedIdentifier), "got %v", err)
			assert.Zero(t, reader.started(), "no session for a malformed identifier")
			assert.Equal(t, StateFailed, w.State())
		})
	}
}

func TestWrite_StatusChecks(t *testing.T) {
	msg := uriMessage(t, "https://example.com")

	tests := []struct {
		name     string
		tag      *fakeTag
		wantKind Kind
	}{
		{"status error", &fakeTag{statusErr: errors.New("lost"), status: nfc.StatusReadWrite, capacity: 100}, KindStatusQuery},
		{"read only", &fakeTag{status: nfc.StatusReadOnly, capacity: 100}, KindReadOnlyTag},
		{"read only wins over capacity", &fakeTag{status: nfc.StatusReadOnly, capacity: 0}, KindReadOnlyTag},
		{"not supported", &fakeTag{status: nfc.StatusNotSupported, capacity: 100}, KindUnsupportedTagShape},
		{"capacity too small", &fakeTag{status: nfc.StatusReadWrite, capacity: msg.Len() - 1}, KindCapacityExceeded},
		{"write error", &fakeTag{status: nfc.StatusReadWrite, capacity: msg.Len(), writeErr: errors.New("nak")}, KindWrite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := newFakeReader()
			w, ch := startWrite(t, reader, "https://example.com")

			reader.delegate.SessionDidDetectTags(reader.session, []nfc.Tag{tt.tag})

			res := waitResult(t, ch)
			assert.True(t, IsKind(res.err, tt.wantKind), "got %v", res.err)
			assert.Equal(t, StateFailed, w.State())
			assert.Nil(t, tt.tag.written)
			if tt.wantKind != KindWrite {
				assert.Zero(t, tt.tag.writeCount(), "write must not be attempted")
			}
			assert.Empty(t, reader.session.alertLog())
		})
	}
}

func TestWrite_ExactCapacityFits(t *testing.T) {
	msg := uriMessage(t, "https://example.com")
	reader := newFakeReader()
	_, ch := startWrite(t, reader, "https://example.com")

	tag := &fakeTag{status: nfc.StatusReadWrite, capacity: msg.Len()}
	reader.delegate.SessionDidDetectTags(reader.session, []nfc.Tag{tag})

	require.NoError(t, waitResult(t, ch).err)
	assert.Equal(t, 1, tag.writeCount())
}

func TestWrite_TooManyTags(t *testing.T) {
	reader := newFakeReader()
	_, ch := startWrite(t, reader, "https://example.com")

	a := &fakeTag{status: nfc.StatusReadWrite, capacity: 100}
	b := &fakeTag{status: nfc.StatusReadWrite, capacity: 100}
	reader.delegate.SessionDidDetectTags(reader.session, []nfc.Tag{a, b})

	res := waitResult(t, ch)
	assert.True(t, IsKind(res.err, KindTooManyTags))
	_, connects := reader.session.counts()
	assert.Zero(t, connects)
	assert.Zero(t, a.writeCount()+b.writeCount())
}

func TestWrite_IgnoresDetectedMessages(t *testing.T) {
	reader := newFakeReader()
	w, ch := startWrite(t, reader, "https://example.com")

	reader.delegate.SessionDidDetectMessages(reader.session, []*ndef.Message{uriMessage(t, "https://other.example")})
	assert.Equal(t, StateSessionStarting, w.State())

	reader.delegate.SessionDidInvalidate(reader.session, nfc.NewReaderError(nfc.CodeSessionTimeout, ""))
	res := waitResult(t, ch)
	assert.True(t, IsKind(res.err, KindSession))
	assert.True(t, nfc.IsCancellation(res.err))
}

func TestWrite_LateWriteCallbackIgnored(t *testing.T) {
	reader := newFakeReader()
	_, ch := startWrite(t, reader, "https://example.com")

	// Invalidation wins; a tag reported afterwards is dropped untouched.
	reader.delegate.SessionDidInvalidate(reader.session, nfc.NewReaderError(nfc.CodeUserCanceled, ""))
	waitResult(t, ch)

	tag := &fakeTag{status: nfc.StatusReadWrite, capacity: 100}
	reader.delegate.SessionDidDetectTags(reader.session, []nfc.Tag{tag})
	assert.Zero(t, tag.writeCount())
}

func TestWrite_NoMessageHeldFailsInconsistent(t *testing.T) {
	reader := newFakeReader()
	// Built without Commit, so no encoded message is held.
	w := &Write{c: newCore[struct{}]("write", reader, writeMachine, nil)}
	require.True(t, w.c.open(writeDelegate{w}, nfc.SessionConfig{AlertMessage: "hold near"}))

	reader.delegate.SessionDidBecomeActive(reader.session)
	tag := &fakeTag{status: nfc.StatusReadWrite, capacity: 137}
	reader.delegate.SessionDidDetectTags(reader.session, []nfc.Tag{tag})

	_, err := w.c.slot.Take()
	assert.True(t, IsKind(err, KindInconsistentState), "got %v", err)
	assert.Equal(t, StateFailed, w.State())

	invalidated, connects := reader.session.counts()
	assert.Equal(t, 1, invalidated)
	assert.Zero(t, connects)
	assert.Zero(t, tag.writeCount())
}
