package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootSubcommandsRegistered(t *testing.T) {
	expected := []string{
		"monitor",
		"record",
		"query",
		"send",
		"init",
		"version",
		"completion",
	}

	registered := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		registered[cmd.Name()] = true
	}

	for _, name := range expected {
		assert.True(t, registered[name], "subcommand %q should be registered", name)
	}
}

func TestRootConfigFlag(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("config")
	require.NotNil(t, flag)
	assert.Equal(t, "", flag.DefValue)
}

func TestRootUsageLine(t *testing.T) {
	assert.Equal(t, "spsmon", rootCmd.Use)
	assert.True(t, rootCmd.SilenceUsage)
	assert.True(t, rootCmd.SilenceErrors)
}

func TestMonitorIntervalFlagDefault(t *testing.T) {
	flag := monitorCmd.Flags().Lookup("interval")
	require.NotNil(t, flag)
	assert.Equal(t, "", flag.DefValue)
}

func TestRecordFlagsRegistered(t *testing.T) {
	for _, name := range []string{"address", "channels", "interval", "duration", "count", "output"} {
		assert.NotNil(t, recordCmd.Flags().Lookup(name), "record should have --%s", name)
	}
}
