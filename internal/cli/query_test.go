package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kovar/sps5000x/internal/errors"
)

// useTestConfig points the global --config flag at a throwaway config so
// commands resolve a known instrument address.
func useTestConfig(t *testing.T) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "spsmon.yaml")
	data := "version: 1\ninstrument:\n  address: tcp://192.0.2.10:5025\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	configFlag = path
	t.Cleanup(func() { configFlag = "" })
}

func TestQueryCommandRejectsNonQuery(t *testing.T) {
	useTestConfig(t)

	err := queryCommand("OUTPUT CH1,ON", "", "")

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrProto))
	assert.Contains(t, err.Error(), "not a query")
}

func TestSendCommandRejectsQuery(t *testing.T) {
	useTestConfig(t)

	err := sendCommand("MODE? CH1", "")

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrProto))
	assert.Contains(t, err.Error(), "looks like a query")
}

func TestQueryCommandInvalidTimeout(t *testing.T) {
	useTestConfig(t)

	err := queryCommand("*IDN?", "", "banana")

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestQueryCommandRejectsBadScheme(t *testing.T) {
	useTestConfig(t)

	err := queryCommand("*IDN?", "ftp://10.0.0.5", "")

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}
