package logging

import (
	"io"
	"os"
	"sync"
)

// globalWriter delegates to a writer that can be swapped at runtime.
type globalWriter struct {
	mu sync.RWMutex
	w  io.Writer
}

func (gw *globalWriter) Write(p []byte) (n int, err error) {
	gw.mu.RLock()
	defer gw.mu.RUnlock()
	return gw.w.Write(p)
}

func (gw *globalWriter) Set(w io.Writer) {
	gw.mu.Lock()
	defer gw.mu.Unlock()
	gw.w = w
}

var defaultGlobalWriter = &globalWriter{w: os.Stderr}

// SetGlobalOutput redirects the stderr sink, e.g. into a test buffer or away
// from an interactive prompt.
func SetGlobalOutput(w io.Writer) {
	defaultGlobalWriter.Set(w)
}

// GetGlobalOutput returns the writer used as the stderr sink.
func GetGlobalOutput() io.Writer {
	return defaultGlobalWriter
}
