package cli

import (
	"bytes"
	stderrors "errors"
	"testing"
	"time"

	"github.com/grovetools/remux/errors"
	"github.com/grovetools/remux/logging"
	"github.com/stretchr/testify/assert"
)

func TestErrorHandlerHandle(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		verbose  bool
		runID    string
		contains []string
		absent   []string
	}{
		{
			name:     "not found hints list",
			err:      errors.SessionNotFound("demo"),
			contains: []string{"session 'demo' not found", "remux list"},
		},
		{
			name:     "stale hints stop and recover",
			err:      errors.StaleMetadata("demo", "tmux session is not running"),
			contains: []string{"remux stop demo", "remux recover demo"},
		},
		{
			name:     "discovery timeout hints recover",
			err:      errors.DiscoveryTimeout(7681, 30*time.Second, stderrors.New("connection refused")),
			contains: []string{"7681", "connection refused", "remux recover"},
		},
		{
			name:     "dependency hints doctor",
			err:      errors.DependencyMissing("ngrok", nil),
			contains: []string{"ngrok", "remux doctor"},
		},
		{
			name:     "command output is shown",
			err:      errors.CommandFailed("tmux kill-session", "no server running\n", stderrors.New("exit status 1")),
			contains: []string{"| no server running"},
		},
		{
			name:     "command failures point at the run's logs",
			err:      errors.CommandFailed("tmux new-window", "", stderrors.New("exit status 1")),
			runID:    "ab12cd34",
			contains: []string{"remux logs --run ab12cd34"},
		},
		{
			name:   "user errors skip the logs pointer",
			err:    errors.SessionNotFound("demo"),
			runID:  "ab12cd34",
			absent: []string{"remux logs"},
		},
		{
			name:     "unclassified errors print raw text",
			err:      stderrors.New("disk on fire"),
			contains: []string{"Error:", "disk on fire"},
		},
		{
			name:     "verbose adds json",
			err:      errors.Collision("demo", true, false),
			verbose:  true,
			contains: []string{"remux attach demo", `"code": "COLLISION"`},
		},
		{
			name:   "quiet omits json",
			err:    errors.Collision("demo", true, false),
			absent: []string{`"code"`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := &ErrorHandler{Verbose: tt.verbose, Out: &buf, RunID: tt.runID}

			got := h.Handle(tt.err)

			assert.Same(t, tt.err, got)
			for _, s := range tt.contains {
				assert.Contains(t, buf.String(), s)
			}
			for _, s := range tt.absent {
				assert.NotContains(t, buf.String(), s)
			}
		})
	}
}

func TestErrorHandlerNil(t *testing.T) {
	var buf bytes.Buffer
	assert.NoError(t, (&ErrorHandler{Out: &buf}).Handle(nil))
	assert.Empty(t, buf.String())
}

func TestNewErrorHandlerUsesRunID(t *testing.T) {
	assert.Equal(t, logging.RunID(), NewErrorHandler(false).RunID)
}

func TestHintAborted(t *testing.T) {
	assert.Empty(t, Hint(errors.Aborted("stop")))
}
