package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleLog = `2024-05-01 09:00:00 [INFO] [lifecycle] Provisioning session session=demo
{"component":"tunnel","level":"info","msg":"Discovered public URL"}
2024-05-01 09:00:02 [WARN] [tunnel] Tunnel API not ready
2024-05-01 09:00:03 [INFO] [store] Wrote record session=demo
`

func TestLastLines(t *testing.T) {
	all := func(string) bool { return true }
	tests := []struct {
		name   string
		n      int
		accept func(string) bool
		want   int
		last   string
	}{
		{name: "all lines", n: -1, accept: all, want: 4, last: "[store]"},
		{name: "tail two", n: 2, accept: all, want: 2, last: "[store]"},
		{name: "tail zero", n: 0, accept: all, want: 0},
		{name: "component filter", n: -1, accept: componentFilter([]string{"tunnel"}), want: 2, last: "Tunnel API not ready"},
		{name: "filter then tail", n: 1, accept: componentFilter([]string{"tunnel", "lifecycle"}), want: 1, last: "Tunnel API not ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines, err := lastLines(strings.NewReader(sampleLog), tt.n, tt.accept)
			require.NoError(t, err)
			require.Len(t, lines, tt.want)
			if tt.want > 0 {
				assert.Contains(t, lines[len(lines)-1], tt.last)
			}
		})
	}
}

func TestComponentFilterJSONLines(t *testing.T) {
	accept := componentFilter([]string{"tunnel"})
	assert.True(t, accept(`{"component":"tunnel","msg":"x"}`))
	assert.False(t, accept(`{"component":"store","msg":"[tunnel] mentioned"}`))
	assert.True(t, componentFilter(nil)("anything"))
}

func TestRunFilter(t *testing.T) {
	accept := allOf(componentFilter([]string{"tunnel"}), runFilter("ab12cd34"))
	assert.True(t, accept("2024-05-01 09:00:02 [WARN] [tunnel] not ready run=ab12cd34"))
	assert.True(t, accept(`{"component":"tunnel","run":"ab12cd34"}`))
	assert.False(t, accept("2024-05-01 09:00:02 [WARN] [tunnel] not ready run=ffff0000"))
	assert.False(t, accept("2024-05-01 09:00:02 [WARN] [store] wrote run=ab12cd34"))
	assert.True(t, runFilter("")("anything"))
}

func TestFindLatestLogFile(t *testing.T) {
	dir := t.TempDir()
	_, err := findLatestLogFile(dir)
	assert.Error(t, err)

	older := filepath.Join(dir, "remux-2024-05-01.log")
	newer := filepath.Join(dir, "remux-2024-05-02.log")
	require.NoError(t, os.WriteFile(older, []byte("old\n"), 0644))
	require.NoError(t, os.WriteFile(newer, []byte("new\n"), 0644))
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(older, past, past))

	got, err := findLatestLogFile(dir)
	require.NoError(t, err)
	assert.Equal(t, newer, got)
}

func TestPrintLastLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "remux.log")
	require.NoError(t, os.WriteFile(path, []byte(sampleLog), 0644))

	var out bytes.Buffer
	require.NoError(t, printLastLines(&out, path, 1, componentFilter([]string{"lifecycle"})))
	assert.Equal(t, "2024-05-01 09:00:00 [INFO] [lifecycle] Provisioning session session=demo\n", out.String())

	err := printLastLines(&out, filepath.Join(t.TempDir(), "missing.log"), -1, componentFilter(nil))
	assert.Error(t, err)
}

func TestLogsPathFlag(t *testing.T) {
	env := newTestEnv(t)
	home := os.Getenv("REMUX_HOME")

	out, err := env.run("logs", "--path")
	require.NoError(t, err)
	path := strings.TrimSpace(out)
	assert.True(t, strings.HasPrefix(path, home), path)
	assert.True(t, strings.HasSuffix(path, ".log"), path)
}
