package cmd

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/grovetools/remux/cli"
	"github.com/grovetools/remux/config"
	"github.com/grovetools/remux/errors"
	"github.com/grovetools/remux/logging"
	"github.com/grovetools/remux/pkg/doctor"
	"github.com/grovetools/remux/pkg/lifecycle"
	"github.com/grovetools/remux/pkg/notify"
	"github.com/grovetools/remux/pkg/orchestrator"
	"github.com/grovetools/remux/pkg/sessions"
	"github.com/grovetools/remux/pkg/tmux"
	"github.com/grovetools/remux/pkg/tunnel"
	"github.com/spf13/cobra"
)

// StoreWatcher reports changes to the record directory.
type StoreWatcher interface {
	Watch(ctx context.Context, debounce time.Duration, onChange func()) error
}

// App is everything a session command needs, built once per invocation.
type App struct {
	Config     *config.Config
	Store      sessions.Store
	Watcher    StoreWatcher
	Controller *lifecycle.Controller
	Prompter   *cli.Prompter
	// LookPath checks required binaries before a session is created.
	LookPath func(string) (string, error)
	Out      io.Writer
}

// AppFactory builds the App for a command. Tests substitute one backed by
// fakes.
type AppFactory func(cmd *cobra.Command) (*App, error)

// NewApp wires the real store, tmux orchestrator, ngrok poller and notifier
// from configuration.
func NewApp(cmd *cobra.Command) (*App, error) {
	cfg, err := cli.LoadConfig(cmd)
	if err != nil {
		return nil, err
	}

	client, err := tmux.NewClient(cfg.Tmux.Socket)
	if err != nil {
		return nil, err
	}
	tunnelCmd, err := cfg.TunnelCommand()
	if err != nil {
		return nil, err
	}

	store, err := sessions.NewFileStore(cfg.Store.Dir, logging.NewLogger("store"))
	if err != nil {
		return nil, err
	}
	orch := orchestrator.New(client, orchestrator.Options{
		Prefix:           cfg.Tmux.Prefix,
		AssistantCommand: cfg.Assistant.Command,
		TunnelCommand:    tunnelCmd,
	}, logging.NewLogger("orchestrator"))

	poller := tunnel.NewPoller(cfg.Tunnel.APIURL, logging.NewLogger("tunnel"))
	poller.Interval = cfg.Tunnel.PollInterval.Std()

	var notifier notify.Notifier = notify.Nop{}
	if cfg.Notify.IsEnabled() {
		notifier = notify.NewCommandNotifier(cfg.Notify.Command, logging.NewLogger("notify"))
	}

	ctl := lifecycle.New(lifecycle.Deps{
		Store:        store,
		Orchestrator: orch,
		Discoverer:   poller,
		Notifier:     notifier,
		Logger:       logging.NewLogger("lifecycle"),
	}, lifecycle.Config{
		Port:             cfg.Tunnel.Port,
		TunnelCommand:    tunnelCmd,
		DiscoveryTimeout: cfg.Tunnel.DiscoveryTimeout.Std(),
	})

	return &App{
		Config:     cfg,
		Store:      store,
		Watcher:    store,
		Controller: ctl,
		Prompter:   cli.NewPrompter(),
		LookPath:   exec.LookPath,
		Out:        cmd.OutOrStdout(),
	}, nil
}

// RequireBinaries fails with DEPENDENCY_MISSING for the first required
// session binary (tunnel, assistant) that is not installed. tmux itself is
// checked when the client is created.
func (a *App) RequireBinaries(names ...string) error {
	if a.LookPath == nil {
		return nil
	}
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}
	for _, p := range doctor.Prerequisites(a.Config) {
		if !p.Required || !wanted[p.Name] || p.Binary == "" {
			continue
		}
		if _, err := a.LookPath(p.Binary); err != nil {
			return errors.DependencyMissing(p.Binary, err).WithDetail("install", p.InstallURL)
		}
	}
	return nil
}

func (a *App) out() io.Writer {
	if a.Out != nil {
		return a.Out
	}
	return os.Stdout
}

// workingDirectory resolves the --dir flag, defaulting to the current
// directory.
func workingDirectory(flag string) (string, error) {
	if flag == "" {
		return os.Getwd()
	}
	return filepath.Abs(flag)
}
