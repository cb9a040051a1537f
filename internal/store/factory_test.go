package store

import (
	"path/filepath"
	"testing"

	"oppmap-go/internal/config"
)

func TestNewRecordStoreFromConfig(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		s, err := NewRecordStoreFromConfig(config.StorageConfig{Type: "memory"})
		if err != nil {
			t.Fatalf("NewRecordStoreFromConfig() error = %v", err)
		}
		if _, ok := s.(*MemoryStore); !ok {
			t.Errorf("store type = %T, want *MemoryStore", s)
		}
	})

	t.Run("filesystem", func(t *testing.T) {
		dir := t.TempDir()
		s, err := NewRecordStoreFromConfig(config.StorageConfig{Type: "filesystem", DataDir: dir})
		if err != nil {
			t.Fatalf("NewRecordStoreFromConfig() error = %v", err)
		}
		fs, ok := s.(*FileStore)
		if !ok {
			t.Fatalf("store type = %T, want *FileStore", s)
		}
		if want := filepath.Join(dir, RecordFileName); fs.Path() != want {
			t.Errorf("Path() = %q, want %q", fs.Path(), want)
		}
	})

	t.Run("filesystem without data_dir", func(t *testing.T) {
		if _, err := NewRecordStoreFromConfig(config.StorageConfig{Type: "filesystem"}); err == nil {
			t.Error("expected error for missing data_dir")
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		if _, err := NewRecordStoreFromConfig(config.StorageConfig{Type: "s3"}); err == nil {
			t.Error("expected error for unknown type")
		}
	})
}
