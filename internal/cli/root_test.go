package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "taghunt", cmd.Use)
	assert.Contains(t, cmd.Long, "NFC")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"read", "write", "test", "history"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	require.NotNil(t, cmd.PersistentFlags().Lookup("config"))
}

func TestOperationCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"read", "write"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err)
		require.NotNil(t, sub.Flags().Lookup("device"), name)
		require.NotNil(t, sub.Flags().Lookup("timeout"), name)
	}
}

func TestInvalidFormat(t *testing.T) {
	env := newTestEnv(t)
	_, _, err := env.run("--format", "xml", "history")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestInvalidConfig(t *testing.T) {
	env := newTestEnv(t)
	env.config = env.script(t, "bad-config", "log:\n  level: loud\n")

	_, _, err := env.run("history")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestVerboseLogsToStderr(t *testing.T) {
	env := newTestEnv(t)
	device := env.script(t, "badger", badgerScript)

	stdout, stderr, err := env.run("-v", "read", "--device", device)
	require.NoError(t, err)
	assert.NotContains(t, stdout, "level=")
	assert.Contains(t, stderr, "operation processed")
}
