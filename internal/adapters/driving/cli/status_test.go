package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runStatusCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs(append([]string{"status"}, args...))
	defer func() {
		rootCmd.SetArgs(nil)
		statusJSON = false
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestStatusCmd_EmptyIndex(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	out, err := runStatusCmd(t)

	require.NoError(t, err)
	assert.Contains(t, out, "Indexed notes: 0")
	assert.Contains(t, out, "Last sync: never")
}

func TestStatusCmd_PopulatedIndex(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()
	seedIndex(t)

	out, err := runStatusCmd(t)

	require.NoError(t, err)
	assert.Contains(t, out, "Indexed notes: 2")
	assert.Contains(t, out, "Work")
	assert.Contains(t, out, "Personal")
	assert.NotContains(t, out, "Last sync: never")
}

func TestStatusCmd_JSONOutput(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()
	seedIndex(t)

	out, err := runStatusCmd(t, "--json")

	require.NoError(t, err)
	assert.Contains(t, out, `"total_notes": 2`)
	assert.Contains(t, out, `"folders"`)
}
