package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"oppmap-go/internal/model"
	"oppmap-go/internal/opp"
	"oppmap-go/internal/store"
)

// FileStore keeps snapshots as CSV files in a dedicated backup directory,
// one file per snapshot, never mutated after creation.
type FileStore struct {
	dir string
}

// NewFileStore creates a snapshot store rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the backup directory.
func (s *FileStore) Dir() string { return s.dir }

// Write stores a snapshot under the given name using temp file + rename.
func (s *FileStore) Write(name string, records []model.Opportunity) error {
	path, err := s.resolve(name)
	if err != nil {
		return err
	}

	tmpFile, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if err := store.WriteRecords(tmpFile, records); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

// Read returns the raw dataset of a stored snapshot.
func (s *FileStore) Read(name string) (*model.Dataset, error) {
	path, err := s.resolve(name)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("snapshot not found: %s", name)
		}
		return nil, fmt.Errorf("opening snapshot: %w", err)
	}
	defer f.Close()

	ds, err := store.ReadDataset(f)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot %s: %w", name, err)
	}
	return ds, nil
}

// List returns all snapshots in the backup directory, newest first by
// modification time. Name order breaks ties, which matters when several
// snapshots land within the same filesystem timestamp granularity: the
// name suffix encodes the creation time.
func (s *FileStore) List() ([]opp.SnapshotInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("listing backup directory: %w", err)
	}

	var infos []opp.SnapshotInfo
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".csv") {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat snapshot %s: %w", e.Name(), err)
		}
		infos = append(infos, opp.SnapshotInfo{Name: e.Name(), ModTime: fi.ModTime()})
	}

	sort.Slice(infos, func(i, j int) bool {
		if !infos[i].ModTime.Equal(infos[j].ModTime) {
			return infos[i].ModTime.After(infos[j].ModTime)
		}
		return infos[i].Name > infos[j].Name
	})
	return infos, nil
}

// Delete removes a snapshot.
func (s *FileStore) Delete(name string) error {
	path, err := s.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("deleting snapshot %s: %w", name, err)
	}
	return nil
}

// resolve maps a snapshot name to its path, rejecting anything that
// would escape the backup directory.
func (s *FileStore) resolve(name string) (string, error) {
	if name == "" || name != filepath.Base(name) {
		return "", fmt.Errorf("invalid snapshot name: %q", name)
	}
	return filepath.Join(s.dir, name), nil
}

// Compile-time check that FileStore implements opp.SnapshotStore
var _ opp.SnapshotStore = (*FileStore)(nil)
