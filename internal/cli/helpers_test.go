package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const badgerScript = `
steps:
  - detect_tags: [badger]
tags:
  badger:
    message:
      - uri: https://example.test/animal/badger
`

const blankScript = `
steps:
  - detect_tags: [blank]
tags:
  blank: {}
`

const lockedScript = `
steps:
  - detect_tags: [locked]
tags:
  locked:
    status: read_only
`

// Steps run out immediately and the zero timeout expires the session.
const idleScript = `
tags: {}
`

// testEnv is a temp directory holding a config whose journal lives
// alongside it.
type testEnv struct {
	dir     string
	config  string
	journal string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	env := &testEnv{
		dir:     dir,
		config:  filepath.Join(dir, "config.yaml"),
		journal: filepath.Join(dir, "data", "journal.db"),
	}
	cfg := "journal:\n  path: " + env.journal + "\nsession:\n  timeout: 5s\n"
	require.NoError(t, os.WriteFile(env.config, []byte(cfg), 0o644))
	return env
}

func (e *testEnv) script(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(e.dir, name+".yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// run executes the root command with --config prepended.
func (e *testEnv) run(args ...string) (string, string, error) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(append([]string{"--config", e.config}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}
