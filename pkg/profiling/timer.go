// Package profiling times the phases of a remux command, such as tmux
// provisioning and tunnel discovery, and can write a CPU profile.
package profiling

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Stopper ends a timed phase.
type Stopper interface {
	Stop()
}

type phase struct {
	name     string
	depth    int
	start    time.Time
	duration time.Duration
	done     bool
	rec      *Recorder
}

func (p *phase) Stop() {
	p.rec.end(p)
}

// Recorder collects phases in the order they start. Nested phases are
// indented in the summary.
type Recorder struct {
	mu      sync.Mutex
	enabled bool
	started time.Time
	phases  []*phase
	open    int
	now     func() time.Time
}

var defaultRecorder = NewRecorder()

// NewRecorder creates a disabled recorder.
func NewRecorder() *Recorder {
	return &Recorder{now: time.Now}
}

// Enable starts recording on the process-wide recorder.
func Enable() {
	defaultRecorder.Enable()
}

// Start begins a phase on the process-wide recorder. It is a no-op unless
// Enable was called.
func Start(name string) Stopper {
	return defaultRecorder.Start(name)
}

// Summarize writes the process-wide recorder's phases to w.
func Summarize(w io.Writer) {
	defaultRecorder.Summarize(w)
}

// Enable turns recording on. Calling it again keeps earlier phases.
func (r *Recorder) Enable() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.enabled {
		return
	}
	r.enabled = true
	r.started = r.now()
}

// Start begins a phase nested under every phase still open.
func (r *Recorder) Start(name string) Stopper {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.enabled {
		return noopStopper{}
	}
	p := &phase{name: name, depth: r.open, start: r.now(), rec: r}
	r.phases = append(r.phases, p)
	r.open++
	return p
}

func (r *Recorder) end(p *phase) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.done {
		return
	}
	p.done = true
	p.duration = r.now().Sub(p.start)
	if r.open > 0 {
		r.open--
	}
}

// Summarize writes one line per phase with its share of the total time.
// Phases still running are marked as such.
func (r *Recorder) Summarize(w io.Writer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.enabled || len(r.phases) == 0 {
		return
	}

	total := r.now().Sub(r.started)
	fmt.Fprintf(w, "\ntiming (total %v)\n", total.Round(time.Millisecond))
	for _, p := range r.phases {
		indent := strings.Repeat("  ", p.depth+1)
		if !p.done {
			fmt.Fprintf(w, "%s%s (running)\n", indent, p.name)
			continue
		}
		share := 0.0
		if total > 0 {
			share = float64(p.duration) / float64(total) * 100
		}
		fmt.Fprintf(w, "%s%s %v (%.1f%%)\n", indent, p.name, p.duration.Round(time.Millisecond), share)
	}
}

type noopStopper struct{}

func (noopStopper) Stop() {}
