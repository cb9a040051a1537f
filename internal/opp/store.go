package opp

import (
	"time"

	"oppmap-go/internal/model"
)

// RecordStore is the durable home of the live record set. Reads and
// writes always cover the whole file; there is no incremental update.
type RecordStore interface {
	// Exists reports whether the store currently holds a record file.
	Exists() bool

	// Read returns the raw dataset as persisted, without normalization.
	Read() (*model.Dataset, error)

	// Write replaces the whole store with the given records.
	Write(records []model.Opportunity) error

	// Delete removes the record file. Deleting a missing store is not an error.
	Delete() error
}

// SnapshotInfo describes one stored backup snapshot.
type SnapshotInfo struct {
	Name    string
	ModTime time.Time
}

// SnapshotStore holds immutable, timestamped copies of the record set.
// Snapshots are created, read back for restore, and eventually pruned;
// they are never mutated in place.
type SnapshotStore interface {
	// Write stores a snapshot under the given name.
	Write(name string, records []model.Opportunity) error

	// Read returns the raw dataset of a stored snapshot.
	Read(name string) (*model.Dataset, error)

	// List returns all snapshots, newest first.
	List() ([]SnapshotInfo, error)

	// Delete removes a snapshot.
	Delete(name string) error
}
