package sessions

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/grovetools/remux/errors"
	"github.com/sirupsen/logrus"
)

const recordExt = ".json"

// Store persists session records. Implementations must make Write atomic,
// Delete idempotent, and List tolerant of unreadable entries.
type Store interface {
	Write(record Record) error
	Read(name string) (Record, error)
	Delete(name string) error
	List() ([]Record, []SkippedEntry, error)
}

// SkippedEntry is a store entry List could not decode.
type SkippedEntry struct {
	File string
	Err  error
}

// FileStore implements Store with one JSON file per session in a directory.
type FileStore struct {
	dir       string
	validator *Validator
	logger    *logrus.Entry
}

// NewFileStore creates a store rooted at dir. The directory is created on first use.
func NewFileStore(dir string, logger *logrus.Entry) (*FileStore, error) {
	if dir == "" {
		return nil, errors.ConfigInvalid("session store directory is empty")
	}
	validator, err := NewValidator()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = logrus.NewEntry(l)
	}
	return &FileStore{dir: dir, validator: validator, logger: logger}, nil
}

// Dir returns the directory holding the records.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) ensureDir() error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create session store %s: %w", s.dir, err)
	}
	return nil
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, name+recordExt)
}

// Write persists the record through a temp file and rename so readers never
// observe a partial file.
func (s *FileStore) Write(record Record) error {
	if err := record.Validate(); err != nil {
		return errors.Wrap(err, errors.ErrCodeInvalidInput, "refusing to write invalid session record").
			WithDetail("session", record.Name)
	}
	if err := s.validator.Validate(record); err != nil {
		return errors.Wrap(err, errors.ErrCodeInvalidInput, "session record does not match schema").
			WithDetail("session", record.Name)
	}
	if err := s.ensureDir(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling session record: %w", err)
	}

	tempFile, err := os.CreateTemp(s.dir, "."+record.Name+"-*"+recordExt+".tmp")
	if err != nil {
		return fmt.Errorf("creating temp record file: %w", err)
	}

	successful := false
	defer func() {
		if !successful {
			os.Remove(tempFile.Name())
		}
	}()

	if _, err := tempFile.Write(append(data, '\n')); err != nil {
		tempFile.Close()
		return fmt.Errorf("writing temp record file: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		tempFile.Close()
		return fmt.Errorf("syncing temp record file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("closing temp record file: %w", err)
	}
	if err := os.Chmod(tempFile.Name(), 0644); err != nil {
		return fmt.Errorf("setting record file mode: %w", err)
	}

	if err := os.Rename(tempFile.Name(), s.path(record.Name)); err != nil {
		return fmt.Errorf("failed to activate session record: %w", err)
	}

	successful = true
	s.logger.WithField("session", record.Name).Debug("Wrote session record")
	return nil
}

// Read returns the record for name or a NOT_FOUND error.
func (s *FileStore) Read(name string) (Record, error) {
	if err := ValidateName(name); err != nil {
		return Record{}, errors.Wrap(err, errors.ErrCodeInvalidInput, "invalid session name")
	}
	if err := s.ensureDir(); err != nil {
		return Record{}, err
	}

	record, err := s.readFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return Record{}, errors.RecordNotFound(name)
		}
		return Record{}, errors.Wrap(err, errors.ErrCodeStaleMetadata, "session record is unreadable").
			WithDetail("session", name).
			WithDetail("path", s.path(name))
	}
	if record.Name != name {
		return Record{}, errors.StaleMetadata(name, fmt.Sprintf("file names session %q", record.Name))
	}
	return record, nil
}

func (s *FileStore) readFile(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Record{}, err
	}

	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Record{}, fmt.Errorf("malformed JSON: %w", err)
	}
	if err := s.validator.ValidateRaw(raw); err != nil {
		return Record{}, err
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return Record{}, fmt.Errorf("decoding record: %w", err)
	}
	return record, nil
}

// Delete removes the record. Deleting an absent record succeeds.
func (s *FileStore) Delete(name string) error {
	if err := ValidateName(name); err != nil {
		return errors.Wrap(err, errors.ErrCodeInvalidInput, "invalid session name")
	}
	if err := os.Remove(s.path(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete session record %s: %w", name, err)
	}
	s.logger.WithField("session", name).Debug("Deleted session record")
	return nil
}

// List returns every decodable record. Entries that cannot be read are
// returned in skipped rather than failing the listing.
func (s *FileStore) List() ([]Record, []SkippedEntry, error) {
	if err := s.ensureDir(); err != nil {
		return nil, nil, err
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read session store: %w", err)
	}

	var records []Record
	var skipped []SkippedEntry
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, recordExt) {
			continue
		}

		record, err := s.readFile(filepath.Join(s.dir, name))
		if err == nil && record.Name != strings.TrimSuffix(name, recordExt) {
			err = fmt.Errorf("file names session %q", record.Name)
		}
		if err != nil {
			s.logger.WithError(err).WithField("file", name).Warn("Skipping unreadable session record")
			skipped = append(skipped, SkippedEntry{File: name, Err: err})
			continue
		}
		records = append(records, record)
	}

	return records, skipped, nil
}
