// Package doctor checks that the external tools remux drives are installed
// and that its state directory and the tunnel API are usable. It also reports
// remux tmux sessions that have lost their record.
package doctor

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/grovetools/remux/command"
	"github.com/grovetools/remux/config"
	"github.com/grovetools/remux/errors"
	"github.com/grovetools/remux/pkg/orchestrator"
	"github.com/grovetools/remux/pkg/sessions"
	"github.com/grovetools/remux/pkg/tmux"
	"github.com/grovetools/remux/pkg/tunnel"
	"github.com/sirupsen/logrus"
)

const (
	versionTimeout = 5 * time.Second
	apiTimeout     = 2 * time.Second
	maxVersionLen  = 80
)

// Status is the outcome of a single check.
type Status string

const (
	StatusOK   Status = "ok"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
)

// Prerequisite is an external command remux runs.
type Prerequisite struct {
	Name        string
	Binary      string
	Required    bool
	Description string
	InstallURL  string
	VersionArgs []string
}

// Result is the outcome of one check.
type Result struct {
	Name     string `json:"name"`
	Status   Status `json:"status"`
	Required bool   `json:"required"`
	Detail   string `json:"detail,omitempty"`
	Path     string `json:"path,omitempty"`
	Version  string `json:"version,omitempty"`
	Hint     string `json:"hint,omitempty"`
}

// Report collects every check result.
type Report struct {
	Results []Result `json:"results"`
}

// Healthy reports whether no check failed.
func (r Report) Healthy() bool {
	return r.Err() == nil
}

// Err returns DEPENDENCY_MISSING naming the failed checks, or nil.
func (r Report) Err() error {
	var failed []string
	for _, res := range r.Results {
		if res.Status == StatusFail {
			failed = append(failed, res.Name)
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return errors.New(errors.ErrCodeDependencyMissing,
		fmt.Sprintf("%d check(s) failed: %s", len(failed), strings.Join(failed, ", "))).
		WithDetail("failed", failed)
}

// TunnelLister is the part of the ngrok API client doctor probes.
type TunnelLister interface {
	BaseURL() string
	Tunnels(ctx context.Context) ([]tunnel.Tunnel, error)
}

// SessionLister lists the remux names of live tmux sessions.
type SessionLister interface {
	ListSessions(ctx context.Context) ([]string, error)
}

// RecordLister lists stored session records.
type RecordLister interface {
	List() ([]sessions.Record, []sessions.SkippedEntry, error)
}

// Deps are the collaborators of a Doctor. The orphan check runs only when
// both Sessions and Records are set.
type Deps struct {
	Executor      command.Executor
	LookPath      func(string) (string, error)
	API           TunnelLister
	Sessions      SessionLister
	Records       RecordLister
	StoreDir      string
	Prerequisites []Prerequisite
	Logger        *logrus.Entry
}

// Doctor runs the checks.
type Doctor struct {
	builder  *command.SafeBuilder
	lookPath func(string) (string, error)
	api      TunnelLister
	sessions SessionLister
	records  RecordLister
	storeDir string
	prereqs  []Prerequisite
	logger   *logrus.Entry
}

// New creates a Doctor from deps, filling real implementations for nil
// fields.
func New(deps Deps) *Doctor {
	if deps.Executor == nil {
		deps.Executor = &command.RealExecutor{}
	}
	if deps.LookPath == nil {
		deps.LookPath = exec.LookPath
	}
	if deps.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		deps.Logger = logrus.NewEntry(l)
	}
	return &Doctor{
		builder:  command.NewSafeBuilderWithExecutor(deps.Executor),
		lookPath: deps.LookPath,
		api:      deps.API,
		sessions: deps.Sessions,
		records:  deps.Records,
		storeDir: deps.StoreDir,
		prereqs:  deps.Prerequisites,
		logger:   deps.Logger,
	}
}

// NewFromConfig creates a Doctor checking the commands cfg configures. The
// orphan check is left out when tmux is missing or the store is unusable;
// the binary and store checks report those.
func NewFromConfig(cfg *config.Config, logger *logrus.Entry) *Doctor {
	deps := Deps{
		API:           tunnel.NewAPIClient(cfg.Tunnel.APIURL),
		StoreDir:      cfg.Store.Dir,
		Prerequisites: Prerequisites(cfg),
		Logger:        logger,
	}
	if client, err := tmux.NewClient(cfg.Tmux.Socket); err == nil {
		deps.Sessions = orchestrator.New(client, orchestrator.Options{Prefix: cfg.Tmux.Prefix}, logger)
	}
	if store, err := sessions.NewFileStore(cfg.Store.Dir, logger); err == nil {
		deps.Records = store
	}
	return New(deps)
}

// Prerequisites lists the commands cfg needs: tmux, the tunnel binary and
// the assistant are required; the notifier is optional.
func Prerequisites(cfg *config.Config) []Prerequisite {
	tunnelCmd, err := cfg.TunnelCommand()
	if err != nil {
		tunnelCmd = cfg.Tunnel.Command
	}
	prereqs := []Prerequisite{
		{
			Name:        "tmux",
			Binary:      "tmux",
			Required:    true,
			Description: "terminal multiplexer hosting every session",
			InstallURL:  "https://github.com/tmux/tmux/wiki/Installing",
			VersionArgs: []string{"-V"},
		},
		{
			Name:        "tunnel",
			Binary:      firstWord(tunnelCmd),
			Required:    true,
			Description: "public tunnel (ngrok)",
			InstallURL:  "https://ngrok.com/download",
			VersionArgs: []string{"version"},
		},
		{
			Name:        "assistant",
			Binary:      firstWord(cfg.Assistant.Command),
			Required:    true,
			Description: "coding assistant started in each session",
			VersionArgs: []string{"--version"},
		},
	}
	if cfg.Notify.IsEnabled() {
		prereqs = append(prereqs, Prerequisite{
			Name:        "notifier",
			Binary:      cfg.Notify.Command,
			Required:    false,
			Description: "optional notification hook",
		})
	}
	return prereqs
}

// Run executes every check in order.
func (d *Doctor) Run(ctx context.Context) Report {
	var report Report
	for _, p := range d.prereqs {
		report.Results = append(report.Results, d.CheckBinary(ctx, p))
	}
	report.Results = append(report.Results, d.CheckStoreDir())
	if d.api != nil {
		report.Results = append(report.Results, d.CheckTunnelAPI(ctx))
	}
	if d.sessions != nil && d.records != nil {
		report.Results = append(report.Results, d.CheckOrphans(ctx))
	}
	return report
}

// CheckBinary looks p up in PATH and records its version.
func (d *Doctor) CheckBinary(ctx context.Context, p Prerequisite) Result {
	res := Result{Name: p.Name, Required: p.Required, Status: StatusOK}
	if p.Binary == "" {
		res.Status = StatusFail
		res.Detail = "no command configured"
		return res
	}

	path, err := d.lookPath(p.Binary)
	if err != nil {
		res.Detail = fmt.Sprintf("%s not found in PATH", p.Binary)
		res.Status = StatusWarn
		if p.Required {
			res.Status = StatusFail
		}
		if p.InstallURL != "" {
			res.Hint = "Install: " + p.InstallURL
		}
		return res
	}
	res.Path = path
	res.Detail = p.Description
	if len(p.VersionArgs) > 0 {
		res.Version = d.version(ctx, p)
	}
	return res
}

func (d *Doctor) version(ctx context.Context, p Prerequisite) string {
	cmd, err := d.builder.Build(ctx, p.Binary, p.VersionArgs...)
	if err != nil {
		return ""
	}
	cmd.WithTimeout(versionTimeout)
	output, err := cmd.CombinedOutput()
	if err != nil {
		d.logger.WithError(err).WithField("binary", p.Binary).Debug("Version probe failed")
		return ""
	}
	line := strings.TrimSpace(strings.SplitN(output, "\n", 2)[0])
	if len(line) > maxVersionLen {
		line = line[:maxVersionLen] + "..."
	}
	return line
}

// CheckStoreDir verifies the record directory can be created and written.
func (d *Doctor) CheckStoreDir() Result {
	res := Result{Name: "store", Required: true, Status: StatusOK, Path: d.storeDir}
	if d.storeDir == "" {
		res.Status = StatusFail
		res.Detail = "no store directory configured"
		res.Hint = "Set store.dir or REMUX_HOME"
		return res
	}
	if err := os.MkdirAll(d.storeDir, 0755); err != nil {
		res.Status = StatusFail
		res.Detail = err.Error()
		return res
	}
	probe, err := os.CreateTemp(d.storeDir, ".doctor-*")
	if err != nil {
		res.Status = StatusFail
		res.Detail = fmt.Sprintf("not writable: %v", err)
		return res
	}
	probe.Close()
	os.Remove(probe.Name())
	res.Detail = "writable"
	return res
}

// CheckTunnelAPI probes the ngrok local API. It is only reachable while a
// tunnel runs, so a failure is a warning.
func (d *Doctor) CheckTunnelAPI(ctx context.Context) Result {
	res := Result{Name: "tunnel-api", Status: StatusOK, Path: d.api.BaseURL()}
	ctx, cancel := context.WithTimeout(ctx, apiTimeout)
	defer cancel()

	tunnels, err := d.api.Tunnels(ctx)
	if err != nil {
		res.Status = StatusWarn
		res.Detail = "not reachable (no tunnel running?)"
		res.Hint = "Expected while no remux session is running"
		d.logger.WithError(err).Debug("Tunnel API probe failed")
		return res
	}
	res.Detail = fmt.Sprintf("%d tunnel(s) open", len(tunnels))
	return res
}

// CheckOrphans warns about live remux tmux sessions with no record. They
// cannot be listed, attached or recovered by name until killed or recreated.
func (d *Doctor) CheckOrphans(ctx context.Context) Result {
	res := Result{Name: "orphans", Status: StatusOK}

	live, err := d.sessions.ListSessions(ctx)
	if err != nil {
		res.Status = StatusWarn
		res.Detail = "could not list tmux sessions"
		d.logger.WithError(err).Debug("Listing tmux sessions failed")
		return res
	}
	records, skipped, err := d.records.List()
	if err != nil {
		res.Status = StatusWarn
		res.Detail = "could not list session records"
		d.logger.WithError(err).Debug("Listing records failed")
		return res
	}

	known := make(map[string]bool, len(records)+len(skipped))
	for _, r := range records {
		known[tmux.QualifiedName("", r.Name)] = true
	}
	// An unreadable record still claims its name.
	for _, s := range skipped {
		name := strings.TrimSuffix(filepath.Base(s.File), filepath.Ext(s.File))
		known[tmux.QualifiedName("", name)] = true
	}

	var orphans []string
	for _, name := range live {
		if !known[name] {
			orphans = append(orphans, name)
		}
	}
	if len(orphans) == 0 {
		res.Detail = fmt.Sprintf("%d live session(s), all recorded", len(live))
		return res
	}
	sort.Strings(orphans)
	res.Status = StatusWarn
	res.Detail = fmt.Sprintf("%d tmux session(s) without a record: %s", len(orphans), strings.Join(orphans, ", "))
	res.Hint = "Attach with tmux directly to inspect them, or remove them with tmux kill-session"
	d.logger.WithField("orphans", orphans).Info("Found tmux sessions without records")
	return res
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
