package process

import (
	"os"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspectSelf(t *testing.T) {
	assert.True(t, IsProcessAlive(os.Getpid()))
	assert.Equal(t, Running, Inspect(os.Getpid()))
}

func TestInspectUnknown(t *testing.T) {
	assert.False(t, IsProcessAlive(0))
	assert.Equal(t, Unknown, Inspect(0))
	assert.Equal(t, Unknown, Inspect(-1))
}

func TestInspectExited(t *testing.T) {
	cmd := exec.Command(os.Args[0], "-test.run=^$")
	require.NoError(t, cmd.Run())
	assert.Equal(t, Exited, Inspect(cmd.Process.Pid))
}
