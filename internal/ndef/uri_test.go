package ndef

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewURIRecord_PicksLongestPrefix(t *testing.T) {
	tests := []struct {
		name string
		in   string
		code byte
		rest string
	}{
		{"https", "https://example.test/animal/badger", 0x04, "example.test/animal/badger"},
		{"https www", "https://www.example.test/", 0x02, "example.test/"},
		{"http", "http://example.test", 0x03, "example.test"},
		{"tel", "tel:+441234", 0x05, "+441234"},
		{"urn epc id beats urn", "urn:epc:id:sgtin:1", 0x1E, "sgtin:1"},
		{"urn nfc", "urn:nfc:wkt:U", 0x23, "wkt:U"},
		{"no prefix", "animal:badger", 0x00, "animal:badger"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := NewURIRecord(tt.in)
			require.NoError(t, err)
			assert.Equal(t, TNFWellKnown, rec.TNF)
			assert.Equal(t, []byte("U"), rec.Type)
			require.NotEmpty(t, rec.Payload)
			assert.Equal(t, tt.code, rec.Payload[0])
			assert.Equal(t, tt.rest, string(rec.Payload[1:]))

			back, err := rec.URI()
			require.NoError(t, err)
			assert.Equal(t, tt.in, back)
		})
	}
}

func TestValidateURI_Rejects(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"space", "https://example.test/animal dog"},
		{"newline", "https://example.test/\n"},
		{"control", "https://example.test/\x01"},
		{"invalid utf8", "https://example.test/\xff"},
		{"bad escape", "https://example.test/%zz"},
		{"missing scheme", "://example.test"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURI(tt.in)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedURI)

			_, err = NewURIMessage(tt.in)
			assert.ErrorIs(t, err, ErrMalformedURI)
		})
	}
}

func TestRecordURI_Errors(t *testing.T) {
	_, err := Record{TNF: TNFMedia, Type: []byte("text/plain")}.URI()
	assert.ErrorIs(t, err, ErrNotURIRecord)

	_, err = Record{TNF: TNFWellKnown, Type: URIType}.URI()
	assert.ErrorIs(t, err, ErrMalformedURI)

	_, err = Record{TNF: TNFWellKnown, Type: URIType, Payload: []byte{0x24, 'a'}}.URI()
	assert.ErrorIs(t, err, ErrMalformedURI, "reserved prefix code")

	_, err = Record{TNF: TNFWellKnown, Type: URIType, Payload: []byte{0x04, 0xff}}.URI()
	assert.ErrorIs(t, err, ErrMalformedURI, "invalid UTF-8 remainder")
}

func TestMessageFirstURI(t *testing.T) {
	text, err := NewTextRecord("en", "hello")
	require.NoError(t, err)
	first, err := NewURIRecord("https://example.test/animal/badger")
	require.NoError(t, err)
	second, err := NewURIRecord("https://example.test/animal/dog")
	require.NoError(t, err)
	broken := Record{TNF: TNFWellKnown, Type: URIType, Payload: []byte{0x30}}

	t.Run("first match wins", func(t *testing.T) {
		uri, ok := NewMessage(text, broken, first, second).FirstURI()
		require.True(t, ok)
		assert.Equal(t, "https://example.test/animal/badger", uri)
	})

	t.Run("no match", func(t *testing.T) {
		_, ok := NewMessage(text, broken).FirstURI()
		assert.False(t, ok)
	})

	t.Run("nil message", func(t *testing.T) {
		var m *Message
		_, ok := m.FirstURI()
		assert.False(t, ok)
	})
}
