package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "trafficlab", cmd.Use)
	assert.Contains(t, cmd.Long, "traffic lab backend")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := [][]string{
		{"nmap"},
		{"load"},
		{"capacity"},
		{"ping"},
		{"ping-stats"},
		{"traceroute"},
		{"dns"},
		{"run"},
		{"history"},
		{"history", "list"},
		{"history", "add"},
	}

	for _, path := range commands {
		name := path[len(path)-1]
		t.Run(name, func(t *testing.T) {
			subCmd, _, err := cmd.Find(path)
			require.NoError(t, err, "Command %v should exist", path)
			require.NotNil(t, subCmd)
			assert.Equal(t, name, subCmd.Name())
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

	for _, name := range []string{"config", "quiet", "base-url", "history-backend", "history-path", "no-history"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), "missing --%s", name)
	}
}

func TestCommandFlagDefaults(t *testing.T) {
	tests := []struct {
		path []string
		flag string
		want string
	}{
		{[]string{"load"}, "requests", "50"},
		{[]string{"capacity"}, "steps", "0"},
		{[]string{"capacity"}, "ladder", "[]"},
		{[]string{"ping-stats"}, "count", "4"},
		{[]string{"traceroute"}, "max-hops", "20"},
		{[]string{"history", "list"}, "limit", "0"},
	}

	cmd := NewRootCommand()
	for _, tt := range tests {
		sub, _, err := cmd.Find(tt.path)
		require.NoError(t, err)
		f := sub.Flags().Lookup(tt.flag)
		require.NotNil(t, f, "%v --%s", tt.path, tt.flag)
		assert.Equal(t, tt.want, f.DefValue, "%v --%s", tt.path, tt.flag)
	}
}

func TestFormatValidation(t *testing.T) {
	// Test valid formats
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))

	// Test invalid formats
	assert.False(t, isValidFormat("xml"))
	assert.False(t, isValidFormat(""))
	assert.False(t, isValidFormat("TEXT"))
}

func TestFormatValidationIntegration(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--format", "invalid", "ping"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRootCommand_EndToEnd(t *testing.T) {
	f := newCLIFixture(t)

	cmd := NewRootCommand()
	stdout := &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{
		"--quiet",
		"--base-url", f.backend.URL(),
		"--history-backend", "file",
		"--history-path", f.opts.HistoryPath,
		"dns", "example.com",
	})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, stdout.String(), "DNS lookup of example.com")
	assert.Equal(t, 1, f.historyCount(t))
}
