package tmux_test

import (
	"context"
	"os/exec"
	"testing"

	"github.com/grovetools/remux/pkg/tmux"
	"github.com/grovetools/remux/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRealServerLifecycle drives a private tmux server through the calls the
// orchestrator makes.
func TestRealServerLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping tmux integration test in short mode")
	}
	testutil.RequireTmux(t)

	socket := testutil.UniqueName("remux-test")
	client, err := tmux.NewClient(socket)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = exec.Command("tmux", "-L", socket, "kill-server").Run()
	})

	ctx := context.Background()
	name := tmux.QualifiedName("remux", "itest")
	dir := t.TempDir()

	require.NoError(t, client.NewSession(ctx, tmux.NewSessionOptions{
		SessionName:      name,
		WorkingDirectory: dir,
		WindowName:       "assistant",
		Command:          "sleep 60",
	}))
	require.NoError(t, client.NewWindow(ctx, tmux.NewWindowOptions{
		Target:     "=" + name + ":",
		WindowName: "tunnel",
		Command:    "sleep 60",
		WorkingDir: dir,
	}))

	exists, err := client.SessionExists(ctx, name)
	require.NoError(t, err)
	assert.True(t, exists)

	windows, err := client.ListWindowsDetailed(ctx, name)
	require.NoError(t, err)
	var labels []string
	for _, w := range windows {
		labels = append(labels, w.Name)
	}
	assert.ElementsMatch(t, []string{"assistant", "tunnel"}, labels)

	require.NoError(t, client.KillWindow(ctx, name, "tunnel"))
	windows, err = client.ListWindowsDetailed(ctx, name)
	require.NoError(t, err)
	assert.Len(t, windows, 1)

	renamed := tmux.QualifiedName("remux", "itest2")
	require.NoError(t, client.RenameSession(ctx, name, renamed))
	exists, err = client.SessionExists(ctx, name)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, client.KillSession(ctx, renamed))
	exists, err = client.SessionExists(ctx, renamed)
	require.NoError(t, err)
	assert.False(t, exists)
}
