package sessions

import (
	"sync"

	"github.com/grovetools/remux/errors"
)

// MemoryStore implements Store in memory. It applies the same validation as
// FileStore and is used by tests and dry runs.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(records ...Record) *MemoryStore {
	s := &MemoryStore{records: make(map[string]Record)}
	for _, r := range records {
		s.records[r.Name] = r
	}
	return s
}

func (s *MemoryStore) Write(record Record) error {
	if err := record.Validate(); err != nil {
		return errors.Wrap(err, errors.ErrCodeInvalidInput, "refusing to write invalid session record").
			WithDetail("session", record.Name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.Name] = record
	return nil
}

func (s *MemoryStore) Read(name string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[name]
	if !ok {
		return Record{}, errors.RecordNotFound(name)
	}
	return record, nil
}

func (s *MemoryStore) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, name)
	return nil
}

func (s *MemoryStore) List() ([]Record, []SkippedEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := make([]Record, 0, len(s.records))
	for _, r := range s.records {
		records = append(records, r)
	}
	return records, nil, nil
}
