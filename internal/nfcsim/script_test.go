package nfcsim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/taghunt/internal/nfc"
)

const sampleScript = `
timeout: 50ms
steps:
  - detect_tags: [poster]
  - delay: 5ms
    invalidate: USER_CANCELED
tags:
  poster:
    status: read_only
    capacity: 48
    message:
      - uri: https://example.com/poster
      - text: hello
        lang: fr
      - mime: application/json
        payload: '{}'
`

func TestParseScript(t *testing.T) {
	s, err := ParseScript([]byte(sampleScript))
	require.NoError(t, err)

	assert.True(t, s.ReadingAvailable())
	assert.Equal(t, 50*time.Millisecond, s.Timeout)
	require.Len(t, s.Steps, 2)
	assert.Equal(t, []string{"poster"}, s.Steps[0].DetectTags)
	assert.Equal(t, nfc.CodeUserCanceled, s.Steps[1].Invalidate)
	assert.Equal(t, 5*time.Millisecond, s.Steps[1].Delay)

	tag := s.Tags["poster"]
	assert.Equal(t, 48, tag.Capacity)
	require.Len(t, tag.Message, 3)

	msg, err := buildMessage(tag.Message)
	require.NoError(t, err)
	uri, ok := msg.FirstURI()
	require.True(t, ok)
	assert.Equal(t, "https://example.com/poster", uri)
	lang, text, err := msg.Records[1].Text()
	require.NoError(t, err)
	assert.Equal(t, "fr", lang)
	assert.Equal(t, "hello", text)
}

func TestParseScript_Unavailable(t *testing.T) {
	s, err := ParseScript([]byte("available: false\nsteps: []\n"))
	require.NoError(t, err)
	assert.False(t, s.ReadingAvailable())
}

func TestParseScript_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"unknown field", "steps: []\nbogus: 1\n", "field bogus not found"},
		{"unknown tag", "steps:\n  - detect_tags: [ghost]\n", `unknown tag "ghost"`},
		{"empty step", "steps:\n  - delay: 1ms\n", "exactly one of"},
		{"two actions", "steps:\n  - detect_tags: [a]\n    invalidate: USER_CANCELED\ntags:\n  a: {}\n", "exactly one of"},
		{"bad code", "steps:\n  - invalidate: NOPE\n", `unknown error code "NOPE"`},
		{"bad status", "steps: []\ntags:\n  a:\n    status: sometimes\n", `unknown status "sometimes"`},
		{"bad tag error", "steps: []\ntags:\n  a:\n    write_error: NOPE\n", `unknown error code "NOPE"`},
		{"bad uri", "steps: []\ntags:\n  a:\n    message:\n      - uri: 'a b'\n", "record 0"},
		{"mixed record", "steps: []\ntags:\n  a:\n    message:\n      - uri: https://x\n        text: y\n", "exactly one of uri, text, mime"},
		{"negative timeout", "timeout: -1s\nsteps: []\n", "timeout must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScript([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScript_Missing(t *testing.T) {
	_, err := LoadScript("testdata/does-not-exist.yaml")
	assert.Error(t, err)
}
