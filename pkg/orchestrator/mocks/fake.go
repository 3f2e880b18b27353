// Package mocks provides an in-memory Orchestrator for tests.
package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/grovetools/remux/errors"
	"github.com/grovetools/remux/pkg/orchestrator"
	"github.com/grovetools/remux/pkg/tmux"
)

// FakeSession is the state the fake keeps per live session.
type FakeSession struct {
	WorkingDirectory string
	Windows          []tmux.Window
}

// Window returns the window with the given label.
func (s *FakeSession) Window(label string) (tmux.Window, bool) {
	for _, w := range s.Windows {
		if w.Name == label {
			return w, true
		}
	}
	return tmux.Window{}, false
}

// Fake is a stateful orchestrator.Orchestrator. The *Err fields inject
// failures into the matching operation.
type Fake struct {
	mu       sync.Mutex
	sessions map[string]*FakeSession
	calls    []string
	nextID   int

	AssistantCommand string
	TunnelCommand    string

	CreateSessionErr error
	CreateWindowErr  error
	KillSessionErr   error
	RenameSessionErr error
	AttachFunc       func(ctx context.Context, name string) error
}

var _ orchestrator.Orchestrator = (*Fake)(nil)

// NewFake creates a Fake with no sessions.
func NewFake() *Fake {
	return &Fake{
		sessions:         make(map[string]*FakeSession),
		AssistantCommand: "claude",
		TunnelCommand:    "ngrok http 7681",
		nextID:           1,
	}
}

// Calls returns the operations performed, e.g. "KillWindow demo tunnel".
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// Session returns a copy of the live session state.
func (f *Fake) Session(name string) (FakeSession, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[name]
	if !ok {
		return FakeSession{}, false
	}
	cp := FakeSession{WorkingDirectory: s.WorkingDirectory}
	cp.Windows = append(cp.Windows, s.Windows...)
	return cp, true
}

// AddSession seeds a live session with both windows.
func (f *Fake) AddSession(name, workingDirectory string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[name] = &FakeSession{WorkingDirectory: workingDirectory}
	f.addWindow(name, orchestrator.WindowAssistant, f.AssistantCommand)
	f.addWindow(name, orchestrator.WindowTunnel, f.TunnelCommand)
}

// MarkDead marks a window's pane as exited, as remain-on-exit leaves it.
func (f *Fake) MarkDead(name, label string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.sessions[name]; ok {
		for i := range s.Windows {
			if s.Windows[i].Name == label {
				s.Windows[i].Dead = true
			}
		}
	}
}

func (f *Fake) record(format string, args ...interface{}) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *Fake) addWindow(name, label, command string) {
	s := f.sessions[name]
	s.Windows = append(s.Windows, tmux.Window{
		ID:      fmt.Sprintf("@%d", f.nextID),
		Index:   len(s.Windows),
		Name:    label,
		Command: command,
		PID:     10000 + f.nextID,
	})
	f.nextID++
}

func (f *Fake) SessionExists(ctx context.Context, name string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("SessionExists %s", name)
	_, ok := f.sessions[name]
	return ok, nil
}

func (f *Fake) CreateSession(ctx context.Context, name, workingDirectory string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateSession %s %s", name, workingDirectory)
	if f.CreateSessionErr != nil {
		return f.CreateSessionErr
	}
	if _, ok := f.sessions[name]; ok {
		return errors.Collision(name, false, true)
	}
	f.sessions[name] = &FakeSession{WorkingDirectory: workingDirectory}
	f.addWindow(name, orchestrator.WindowAssistant, f.AssistantCommand)
	f.addWindow(name, orchestrator.WindowTunnel, f.TunnelCommand)
	return nil
}

func (f *Fake) CreateWindow(ctx context.Context, name, label, command string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateWindow %s %s", name, label)
	if f.CreateWindowErr != nil {
		return f.CreateWindowErr
	}
	if _, ok := f.sessions[name]; !ok {
		return errors.SessionNotFound(name)
	}
	f.addWindow(name, label, command)
	return nil
}

func (f *Fake) KillWindow(ctx context.Context, name, label string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("KillWindow %s %s", name, label)
	s, ok := f.sessions[name]
	if !ok {
		return nil
	}
	kept := s.Windows[:0]
	for _, w := range s.Windows {
		if w.Name != label {
			kept = append(kept, w)
		}
	}
	s.Windows = kept
	return nil
}

func (f *Fake) Attach(ctx context.Context, name string) error {
	f.mu.Lock()
	f.record("Attach %s", name)
	_, ok := f.sessions[name]
	attach := f.AttachFunc
	f.mu.Unlock()

	if !ok {
		return errors.SessionNotFound(name)
	}
	if attach != nil {
		return attach(ctx, name)
	}
	return nil
}

func (f *Fake) KillSession(ctx context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("KillSession %s", name)
	if f.KillSessionErr != nil {
		return f.KillSessionErr
	}
	delete(f.sessions, name)
	return nil
}

func (f *Fake) RenameSession(ctx context.Context, oldName, newName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("RenameSession %s %s", oldName, newName)
	if f.RenameSessionErr != nil {
		return f.RenameSessionErr
	}
	s, ok := f.sessions[oldName]
	if !ok {
		return errors.SessionNotFound(oldName)
	}
	if _, taken := f.sessions[newName]; taken {
		return errors.Collision(newName, false, true)
	}
	delete(f.sessions, oldName)
	f.sessions[newName] = s
	return nil
}

func (f *Fake) ListWindows(ctx context.Context, name string) ([]tmux.Window, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListWindows %s", name)
	s, ok := f.sessions[name]
	if !ok {
		return nil, errors.SessionNotFound(name)
	}
	return append([]tmux.Window(nil), s.Windows...), nil
}

func (f *Fake) ListSessions(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListSessions")
	names := make([]string, 0, len(f.sessions))
	for name := range f.sessions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
