package lifecycle

import (
	"context"

	"github.com/grovetools/remux/errors"
	"github.com/grovetools/remux/pkg/orchestrator"
	"github.com/grovetools/remux/pkg/process"
	"github.com/grovetools/remux/pkg/sessions"
	"github.com/grovetools/remux/pkg/tmux"
)

// WindowStatus is a live tmux window plus the observed state of its process.
type WindowStatus struct {
	tmux.Window `yaml:",inline"`
	Process     process.State `json:"process" yaml:"process"`
}

// LiveState is what tmux reports right now.
type LiveState struct {
	Running bool           `json:"running" yaml:"running"`
	Windows []WindowStatus `json:"windows,omitempty" yaml:"windows,omitempty"`
}

// Info combines the record on disk with live inspection. The two can
// disagree; Warnings lists every disagreement found.
type Info struct {
	Name     string           `json:"name" yaml:"name"`
	Disk     *sessions.Record `json:"disk,omitempty" yaml:"disk,omitempty"`
	DiskErr  string           `json:"diskError,omitempty" yaml:"diskError,omitempty"`
	Live     LiveState        `json:"live" yaml:"live"`
	Warnings []string         `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Window returns the live window with the given label.
func (i Info) Window(label string) (WindowStatus, bool) {
	for _, w := range i.Live.Windows {
		if w.Name == label {
			return w, true
		}
	}
	return WindowStatus{}, false
}

// Info inspects a session. It never modifies state.
func (c *Controller) Info(ctx context.Context, name string) (Info, error) {
	st, err := c.observe(ctx, name)
	if err != nil {
		return Info{}, err
	}
	if !st.hasRecord && st.recordErr == nil && !st.live {
		return Info{}, errors.SessionNotFound(name)
	}

	info := Info{Name: name, Live: LiveState{Running: st.live}}
	if st.hasRecord {
		rec := st.record
		info.Disk = &rec
	}
	if st.recordErr != nil {
		info.DiskErr = st.recordErr.Error()
		info.Warnings = append(info.Warnings, "record file is unreadable")
	}

	if st.live {
		windows, err := c.orch.ListWindows(ctx, name)
		if err != nil {
			return Info{}, err
		}
		for _, w := range windows {
			ps := process.Exited
			if !w.Dead {
				ps = c.inspect(w.PID)
			}
			info.Live.Windows = append(info.Live.Windows, WindowStatus{Window: w, Process: ps})
		}
	}

	switch {
	case st.hasRecord && !st.live:
		info.Warnings = append(info.Warnings, "stale record: tmux session is not running")
	case st.live && !st.hasRecord && st.recordErr == nil:
		info.Warnings = append(info.Warnings, "tmux session is running without a record")
	}

	if st.live {
		if _, ok := info.Window(orchestrator.WindowAssistant); !ok {
			info.Warnings = append(info.Warnings, "assistant window is missing")
		}
		if w, ok := info.Window(orchestrator.WindowTunnel); !ok {
			info.Warnings = append(info.Warnings, "tunnel window is missing; run 'remux recover "+name+"'")
		} else if w.Process == process.Exited {
			info.Warnings = append(info.Warnings, "tunnel process has exited; run 'remux recover "+name+"'")
		}
	}
	if st.hasRecord && !st.record.HasURL() {
		info.Warnings = append(info.Warnings, "public URL has not been discovered")
	}

	return info, nil
}
