package sessions

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/grovetools/remux/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecord(name string) Record {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return Record{
		Name:             name,
		WorkingDirectory: "/home/dev/project",
		PublicURL:        "https://abc123.ngrok-free.app",
		CreatedAt:        created,
		UpdatedAt:        created,
	}
}

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(filepath.Join(t.TempDir(), "sessions"), nil)
	require.NoError(t, err)
	return store
}

func TestFileStoreWriteRead(t *testing.T) {
	store := newTestStore(t)

	rec := testRecord("demo")
	require.NoError(t, store.Write(rec))

	got, err := store.Read("demo")
	require.NoError(t, err)
	assert.Equal(t, rec.Name, got.Name)
	assert.Equal(t, rec.WorkingDirectory, got.WorkingDirectory)
	assert.Equal(t, rec.PublicURL, got.PublicURL)
	assert.True(t, rec.CreatedAt.Equal(got.CreatedAt))

	info, err := os.Stat(filepath.Join(store.Dir(), "demo.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())
}

func TestFileStoreCreatesDirectoryOnFirstUse(t *testing.T) {
	store := newTestStore(t)
	_, err := os.Stat(store.Dir())
	require.True(t, os.IsNotExist(err))

	records, skipped, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Empty(t, skipped)

	info, err := os.Stat(store.Dir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestFileStoreWriteOverwritesAndLeavesNoTempFiles(t *testing.T) {
	store := newTestStore(t)

	rec := testRecord("demo")
	rec.PublicURL = ""
	require.NoError(t, store.Write(rec))

	rec.PublicURL = "https://second.ngrok-free.app"
	require.NoError(t, store.Write(rec))

	got, err := store.Read("demo")
	require.NoError(t, err)
	assert.Equal(t, "https://second.ngrok-free.app", got.PublicURL)

	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "demo.json", entries[0].Name())
}

func TestFileStoreReadMissing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Read("ghost")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound))
}

func TestFileStoreReadCorrupt(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, os.MkdirAll(store.Dir(), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), "broken.json"), []byte("{not json"), 0644))

	_, err := store.Read("broken")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeStaleMetadata))
}

func TestFileStoreReadNameMismatch(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Write(testRecord("other")))
	require.NoError(t, os.Rename(
		filepath.Join(store.Dir(), "other.json"),
		filepath.Join(store.Dir(), "demo.json"),
	))

	_, err := store.Read("demo")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeStaleMetadata))
}

func TestFileStoreDeleteIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Write(testRecord("demo")))

	require.NoError(t, store.Delete("demo"))
	require.NoError(t, store.Delete("demo"))

	_, err := store.Read("demo")
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound))
}

func TestFileStoreListSkipsUnreadableEntries(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Write(testRecord("alpha")))
	require.NoError(t, store.Write(testRecord("beta")))

	dir := store.Dir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "corrupt.json"), []byte("garbage"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nourl.json"), []byte(`{"name":"nourl","workingDirectory":"/tmp","publicUrl":"http://insecure","createdAt":"2024-03-01T12:00:00Z"}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".demo-123.json.tmp"), []byte("partial"), 0644))

	records, skipped, err := store.List()
	require.NoError(t, err)

	var names []string
	for _, r := range records {
		names = append(names, r.Name)
	}
	assert.ElementsMatch(t, []string{"alpha", "beta"}, names)

	var skippedFiles []string
	for _, s := range skipped {
		skippedFiles = append(skippedFiles, s.File)
		assert.Error(t, s.Err)
	}
	assert.ElementsMatch(t, []string{"corrupt.json", "nourl.json"}, skippedFiles)
}

func TestFileStoreRejectsInvalidRecords(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Record)
	}{
		{"empty name", func(r *Record) { r.Name = "" }},
		{"name with slash", func(r *Record) { r.Name = "a/b" }},
		{"relative working dir", func(r *Record) { r.WorkingDirectory = "project" }},
		{"zero creation time", func(r *Record) { r.CreatedAt = time.Time{} }},
		{"http url", func(r *Record) { r.PublicURL = "http://abc.ngrok.io" }},
		{"url with whitespace", func(r *Record) { r.PublicURL = " https://abc.ngrok.io" }},
		{"url without host", func(r *Record) { r.PublicURL = "https://" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(t)
			rec := testRecord("demo")
			tt.mutate(&rec)

			err := store.Write(rec)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
		})
	}
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore(testRecord("seed"))

	require.NoError(t, store.Write(testRecord("demo")))
	records, skipped, err := store.List()
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Empty(t, skipped)

	require.NoError(t, store.Delete("demo"))
	require.NoError(t, store.Delete("demo"))
	_, err = store.Read("demo")
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound))

	bad := testRecord("bad")
	bad.WorkingDirectory = "relative"
	assert.True(t, errors.Is(store.Write(bad), errors.ErrCodeInvalidInput))
}

func TestFileStoreWatch(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, os.MkdirAll(store.Dir(), 0755))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var changes atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- store.Watch(ctx, 20*time.Millisecond, func() { changes.Add(1) })
	}()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, store.Write(testRecord("demo")))

	assert.Eventually(t, func() bool { return changes.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop after cancel")
	}
}
