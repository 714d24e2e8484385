package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalScenario = `
name: minimal
description: one read
script:
  steps:
    - detect_tags: [a]
  tags:
    a:
      message:
        - uri: https://example.test/a
operations:
  - read: true
`

func TestParseScenario_Minimal(t *testing.T) {
	s, err := ParseScenario([]byte(minimalScenario))
	require.NoError(t, err)

	assert.Equal(t, "minimal", s.Name)
	require.Len(t, s.Operations, 1)
	assert.True(t, s.Operations[0].Read)
	assert.Nil(t, s.Operations[0].Write)
	assert.Contains(t, s.Script.Tags, "a")
}

func TestParseScenario_UnknownField(t *testing.T) {
	_, err := ParseScenario([]byte(minimalScenario + "flow_token: abc\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParseScenario_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "missing name",
			yaml: "description: d\noperations:\n  - read: true\n",
			want: "name is required",
		},
		{
			name: "missing description",
			yaml: "name: n\noperations:\n  - read: true\n",
			want: "description is required",
		},
		{
			name: "no operations",
			yaml: "name: n\ndescription: d\n",
			want: "operations list is required",
		},
		{
			name: "read and write",
			yaml: "name: n\ndescription: d\noperations:\n  - read: true\n    write: https://x.test\n",
			want: "exactly one of read, write",
		},
		{
			name: "neither read nor write",
			yaml: "name: n\ndescription: d\noperations:\n  - expect: {case: Url}\n",
			want: "exactly one of read, write",
		},
		{
			name: "unknown case",
			yaml: "name: n\ndescription: d\noperations:\n  - read: true\n    expect: {case: Success}\n",
			want: `unknown case "Success"`,
		},
		{
			name: "unknown assertion",
			yaml: "name: n\ndescription: d\noperations:\n  - read: true\nassertions:\n  - type: trace_contains\n",
			want: `unknown assertion type "trace_contains"`,
		},
		{
			name: "state_order without states",
			yaml: "name: n\ndescription: d\noperations:\n  - read: true\nassertions:\n  - type: state_order\n",
			want: "states list is required",
		},
		{
			name: "negative count",
			yaml: "name: n\ndescription: d\noperations:\n  - read: true\nassertions:\n  - type: call_count\n    count: -1\n",
			want: "count must be non-negative",
		},
		{
			name: "bad script",
			yaml: "name: n\ndescription: d\nscript:\n  steps:\n    - detect_tags: [ghost]\noperations:\n  - read: true\n",
			want: "script:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "minimal.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalScenario), 0o644))

	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "minimal", s.Name)
}
