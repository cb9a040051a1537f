package store

import (
	"fmt"
	"os"
	"path/filepath"

	"oppmap-go/internal/model"
	"oppmap-go/internal/opp"
)

// FileStore persists the record set as a single CSV file. Every write
// replaces the whole file via temp file + rename, so a crashed write
// never leaves a half-written store behind.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by the CSV file at path. The parent
// directory is created lazily on first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the location of the record file.
func (s *FileStore) Path() string { return s.path }

// Exists reports whether the record file is present.
func (s *FileStore) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Read parses the record file into a raw dataset.
func (s *FileStore) Read() (*model.Dataset, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("opening record file: %w", err)
	}
	defer f.Close()

	ds, err := ReadDataset(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}
	return ds, nil
}

// Write replaces the record file with the given records.
func (s *FileStore) Write(records []model.Opportunity) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
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

	if err := WriteRecords(tmpFile, records); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write records: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

// Delete removes the record file. A missing file is not an error.
func (s *FileStore) Delete() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting record file: %w", err)
	}
	return nil
}

// Compile-time check that FileStore implements opp.RecordStore
var _ opp.RecordStore = (*FileStore)(nil)
