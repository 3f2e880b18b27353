package orchestrator

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/grovetools/remux/command/commandtest"
	"github.com/grovetools/remux/errors"
	"github.com/grovetools/remux/pkg/tmux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHelperProcess(t *testing.T) { commandtest.HelperProcess() }

func newTestOrchestrator(socket string) (*TmuxOrchestrator, *commandtest.Executor) {
	exec := commandtest.New()
	client := tmux.NewClientWithExecutor(socket, exec)
	o := New(client, Options{
		AssistantCommand: "claude",
		TunnelCommand:    "ngrok http 7681",
		Stdin:            strings.NewReader(""),
		Stdout:           &bytes.Buffer{},
		Stderr:           &bytes.Buffer{},
	}, nil)
	o.insideTmux = func() bool { return false }
	return o, exec
}

func TestCreateSession(t *testing.T) {
	ctx := context.Background()
	o, exec := newTestOrchestrator("")
	exec.On("tmux has-session", commandtest.Response{Output: "can't find session: remux-demo", ExitCode: 1})

	require.NoError(t, o.CreateSession(ctx, "demo", "/home/dev/project"))

	assert.Equal(t, []string{
		"tmux has-session -t =remux-demo",
		"tmux new-session -d -s remux-demo -c /home/dev/project -n assistant -e REMUX_SESSION=demo claude",
		"tmux new-window -d -t =remux-demo: -n tunnel -c /home/dev/project cat",
		"tmux set-option -w -t =remux-demo:tunnel remain-on-exit on",
		"tmux respawn-pane -k -t =remux-demo:tunnel -c /home/dev/project -e REMUX_SESSION=demo ngrok http 7681",
	}, exec.CallLines())
}

func TestCreateSessionRechecksLiveState(t *testing.T) {
	o, exec := newTestOrchestrator("")

	err := o.CreateSession(context.Background(), "demo", "/tmp")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeCollision))
	assert.Equal(t, []string{"tmux has-session -t =remux-demo"}, exec.CallLines())
}

func TestCreateSessionPropagatesFailures(t *testing.T) {
	o, exec := newTestOrchestrator("")
	exec.On("tmux has-session", commandtest.Response{ExitCode: 1})
	exec.On("tmux new-session", commandtest.Response{Output: "create session failed: bad directory", ExitCode: 1})

	err := o.CreateSession(context.Background(), "demo", "/nonexistent")
	require.Error(t, err)
	remuxErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeCommandFailed, remuxErr.Code)
	assert.Contains(t, remuxErr.Detail("output"), "bad directory")
	assert.Len(t, exec.Calls(), 2, "no windows are created after a failed new-session")
}

func TestTunnelStartsAfterRemainOnExit(t *testing.T) {
	o, exec := newTestOrchestrator("")
	exec.On("tmux has-session", commandtest.Response{ExitCode: 1})
	exec.On("tmux respawn-pane", commandtest.Response{Output: "create pane failed: bad command", ExitCode: 1})

	err := o.CreateSession(context.Background(), "demo", "/tmp")
	require.Error(t, err)
	remuxErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Contains(t, remuxErr.Detail("output"), "bad command")

	lines := exec.CallLines()
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[3], "tmux set-option"), "remain-on-exit is set before the tunnel starts")
	assert.True(t, strings.HasPrefix(lines[4], "tmux respawn-pane"))
}

func TestInvalidWindowLabelIsRejected(t *testing.T) {
	o, exec := newTestOrchestrator("")
	err := o.CreateWindow(context.Background(), "demo", "Bad Label", "true")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
	assert.Empty(t, exec.Calls())
}

func TestDottedNamesAreTranslated(t *testing.T) {
	o, exec := newTestOrchestrator("")
	_, err := o.SessionExists(context.Background(), "api.v2")
	require.NoError(t, err)
	assert.Equal(t, []string{"tmux has-session -t =remux-api_v2"}, exec.CallLines())
}

func TestRecreateTunnelWindow(t *testing.T) {
	ctx := context.Background()
	o, exec := newTestOrchestrator("")

	require.NoError(t, o.KillWindow(ctx, "demo", WindowTunnel))
	require.NoError(t, o.CreateWindow(ctx, "demo", WindowTunnel, "ngrok http 7681"))

	assert.Equal(t, []string{
		"tmux kill-window -t =remux-demo:tunnel",
		"tmux new-window -d -t =remux-demo: -n tunnel cat",
		"tmux set-option -w -t =remux-demo:tunnel remain-on-exit on",
		"tmux respawn-pane -k -t =remux-demo:tunnel -e REMUX_SESSION=demo ngrok http 7681",
	}, exec.CallLines())
}

func TestAttach(t *testing.T) {
	ctx := context.Background()

	t.Run("outside tmux attaches", func(t *testing.T) {
		o, exec := newTestOrchestrator("")
		require.NoError(t, o.Attach(ctx, "demo"))
		assert.Equal(t, []string{
			"tmux has-session -t =remux-demo",
			"tmux attach-session -t =remux-demo",
		}, exec.CallLines())
	})

	t.Run("inside tmux switches client", func(t *testing.T) {
		o, exec := newTestOrchestrator("")
		o.insideTmux = func() bool { return true }
		require.NoError(t, o.Attach(ctx, "demo"))
		assert.Equal(t, "tmux switch-client -t =remux-demo", exec.CallLines()[1])
	})

	t.Run("dedicated socket always attaches", func(t *testing.T) {
		o, exec := newTestOrchestrator("remux")
		o.insideTmux = func() bool { return true }
		require.NoError(t, o.Attach(ctx, "demo"))
		assert.Equal(t, "tmux -L remux attach-session -t =remux-demo", exec.CallLines()[1])
	})

	t.Run("missing session", func(t *testing.T) {
		o, exec := newTestOrchestrator("")
		exec.On("tmux has-session", commandtest.Response{ExitCode: 1})
		err := o.Attach(ctx, "demo")
		assert.True(t, errors.Is(err, errors.ErrCodeNotFound))
		assert.Len(t, exec.Calls(), 1)
	})
}

func TestRenameSession(t *testing.T) {
	ctx := context.Background()

	t.Run("free target", func(t *testing.T) {
		o, exec := newTestOrchestrator("")
		exec.On("tmux has-session", commandtest.Response{ExitCode: 1})
		require.NoError(t, o.RenameSession(ctx, "demo", "work"))
		assert.Equal(t, []string{
			"tmux has-session -t =remux-work",
			"tmux rename-session -t =remux-demo remux-work",
		}, exec.CallLines())
	})

	t.Run("taken target", func(t *testing.T) {
		o, _ := newTestOrchestrator("")
		err := o.RenameSession(ctx, "demo", "work")
		assert.True(t, errors.Is(err, errors.ErrCodeCollision))
	})
}

func TestKillSessionIsIdempotent(t *testing.T) {
	o, exec := newTestOrchestrator("")
	exec.On("tmux kill-session", commandtest.Response{Output: "no server running on /tmp/tmux-1000/default", ExitCode: 1})
	assert.NoError(t, o.KillSession(context.Background(), "demo"))
}

func TestListSessionsFiltersNamespace(t *testing.T) {
	o, exec := newTestOrchestrator("")
	exec.On("tmux list-sessions", commandtest.Response{Output: "remux-demo\nmain\nremux-work\nremuxer\n"})

	names, err := o.ListSessions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"demo", "work"}, names)
}

func TestListWindows(t *testing.T) {
	o, exec := newTestOrchestrator("")
	exec.On("tmux list-windows", commandtest.Response{
		Output: "@1\t0\tassistant\t1\tclaude\t4242\t0\n@2\t1\ttunnel\t0\tngrok\t4243\t1\n",
	})

	windows, err := o.ListWindows(context.Background(), "demo")
	require.NoError(t, err)
	require.Len(t, windows, 2)
	assert.Equal(t, WindowAssistant, windows[0].Name)
	assert.False(t, windows[0].Dead)
	assert.Equal(t, WindowTunnel, windows[1].Name)
	assert.True(t, windows[1].Dead)
	assert.Equal(t, 4243, windows[1].PID)
}
