// Package commandtest provides a command.Executor that records invocations
// and answers them from a script, without running the real binaries.
//
// Scripted responses are produced by re-executing the test binary. A package
// using the Executor must declare:
//
//	func TestHelperProcess(t *testing.T) { commandtest.HelperProcess() }
package commandtest

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
)

const (
	envHelper = "REMUX_WANT_HELPER_PROCESS"
	envStdout = "REMUX_HELPER_STDOUT"
	envExit   = "REMUX_HELPER_EXIT"
)

// Response is the scripted result of one invocation.
type Response struct {
	Output   string
	ExitCode int
}

// Executor records every command and replies with the response registered
// for the longest matching argv prefix.
type Executor struct {
	mu        sync.Mutex
	calls     [][]string
	responses map[string][]Response
	Fallback  Response
}

// New creates an Executor whose unscripted commands succeed with no output.
func New() *Executor {
	return &Executor{responses: make(map[string][]Response)}
}

// On registers responses for commands whose argv starts with prefix, for
// example "tmux has-session". Multiple responses are consumed in order and
// the last one repeats.
func (e *Executor) On(prefix string, responses ...Response) *Executor {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.responses[prefix] = append(e.responses[prefix], responses...)
	return e
}

// Calls returns a copy of the recorded argv lists.
func (e *Executor) Calls() [][]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([][]string, len(e.calls))
	copy(out, e.calls)
	return out
}

// CallLines returns the recorded invocations joined with spaces.
func (e *Executor) CallLines() []string {
	var lines []string
	for _, call := range e.Calls() {
		lines = append(lines, strings.Join(call, " "))
	}
	return lines
}

// CommandContext implements command.Executor.
func (e *Executor) CommandContext(ctx context.Context, name string, args ...string) *exec.Cmd {
	argv := append([]string{name}, args...)
	resp := e.record(argv)

	cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess", "--")
	cmd.Env = append(os.Environ(),
		envHelper+"=1",
		envStdout+"="+resp.Output,
		envExit+"="+strconv.Itoa(resp.ExitCode),
	)
	return cmd
}

func (e *Executor) record(argv []string) Response {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, argv)

	line := strings.Join(argv, " ")
	best := ""
	found := false
	for prefix := range e.responses {
		if (line == prefix || strings.HasPrefix(line, prefix+" ")) && len(prefix) >= len(best) {
			best = prefix
			found = true
		}
	}
	if !found {
		return e.Fallback
	}

	queue := e.responses[best]
	resp := queue[0]
	if len(queue) > 1 {
		e.responses[best] = queue[1:]
	}
	return resp
}

// HelperProcess writes the scripted output and exits with the scripted code.
// It is a no-op unless the process was started by Executor.
func HelperProcess() {
	if os.Getenv(envHelper) != "1" {
		return
	}
	fmt.Fprint(os.Stdout, os.Getenv(envStdout))
	code, _ := strconv.Atoi(os.Getenv(envExit))
	os.Exit(code)
}
