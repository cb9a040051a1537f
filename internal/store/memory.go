package store

import (
	"bytes"
	"fmt"

	"oppmap-go/internal/model"
	"oppmap-go/internal/opp"
)

// MemoryStore is an in-memory RecordStore for tests. Data round-trips
// through the CSV codec so it behaves exactly like the file store,
// including normalization of what comes back out.
type MemoryStore struct {
	buf      []byte
	exists   bool
	readErr  error
	writeErr error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// FailReads makes every subsequent Read return err. Pass nil to heal.
func (s *MemoryStore) FailReads(err error) { s.readErr = err }

// FailWrites makes every subsequent Write return err. Pass nil to heal.
func (s *MemoryStore) FailWrites(err error) { s.writeErr = err }

// Seed stores raw file content directly, bypassing the codec. Use to
// simulate externally produced or degraded files.
func (s *MemoryStore) Seed(content []byte) {
	s.buf = append([]byte(nil), content...)
	s.exists = true
}

func (s *MemoryStore) Exists() bool { return s.exists }

func (s *MemoryStore) Read() (*model.Dataset, error) {
	if s.readErr != nil {
		return nil, s.readErr
	}
	if !s.exists {
		return nil, fmt.Errorf("no record file")
	}
	return ReadDataset(bytes.NewReader(s.buf))
}

func (s *MemoryStore) Write(records []model.Opportunity) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	var buf bytes.Buffer
	if err := WriteRecords(&buf, records); err != nil {
		return err
	}
	s.buf = buf.Bytes()
	s.exists = true
	return nil
}

func (s *MemoryStore) Delete() error {
	s.buf = nil
	s.exists = false
	return nil
}

// Compile-time check that MemoryStore implements opp.RecordStore
var _ opp.RecordStore = (*MemoryStore)(nil)
