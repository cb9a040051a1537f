package snapshot

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"oppmap-go/internal/model"
	"oppmap-go/internal/opp"
	"oppmap-go/internal/store"
)

// MemoryStore is an in-memory SnapshotStore for tests. Insertion order
// stands in for modification time so retention tests stay deterministic
// even when many snapshots are created within the same instant.
type MemoryStore struct {
	snaps     map[string]memorySnapshot
	seq       int
	writeErr  error
	deleteErr error
}

type memorySnapshot struct {
	data    []byte
	seq     int
	modTime time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snaps: make(map[string]memorySnapshot)}
}

// FailWrites makes every subsequent Write return err. Pass nil to heal.
func (s *MemoryStore) FailWrites(err error) { s.writeErr = err }

// FailDeletes makes every subsequent Delete return err. Pass nil to heal.
func (s *MemoryStore) FailDeletes(err error) { s.deleteErr = err }

// Len returns the number of stored snapshots.
func (s *MemoryStore) Len() int { return len(s.snaps) }

func (s *MemoryStore) Write(name string, records []model.Opportunity) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	var buf bytes.Buffer
	if err := store.WriteRecords(&buf, records); err != nil {
		return err
	}
	s.seq++
	s.snaps[name] = memorySnapshot{data: buf.Bytes(), seq: s.seq, modTime: time.Now()}
	return nil
}

func (s *MemoryStore) Read(name string) (*model.Dataset, error) {
	snap, ok := s.snaps[name]
	if !ok {
		return nil, fmt.Errorf("snapshot not found: %s", name)
	}
	return store.ReadDataset(bytes.NewReader(snap.data))
}

func (s *MemoryStore) List() ([]opp.SnapshotInfo, error) {
	names := make([]string, 0, len(s.snaps))
	for name := range s.snaps {
		names = append(names, name)
	}
	// Newest first by insertion order.
	sort.Slice(names, func(i, j int) bool {
		return s.snaps[names[i]].seq > s.snaps[names[j]].seq
	})

	infos := make([]opp.SnapshotInfo, len(names))
	for i, name := range names {
		infos[i] = opp.SnapshotInfo{Name: name, ModTime: s.snaps[name].modTime}
	}
	return infos, nil
}

func (s *MemoryStore) Delete(name string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	if _, ok := s.snaps[name]; !ok {
		return fmt.Errorf("snapshot not found: %s", name)
	}
	delete(s.snaps, name)
	return nil
}

// Compile-time check that MemoryStore implements opp.SnapshotStore
var _ opp.SnapshotStore = (*MemoryStore)(nil)
