package snapshot

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileCounter(t *testing.T) {
	t.Run("missing file loads as zero", func(t *testing.T) {
		c, err := NewFileCounter(t.TempDir())
		if err != nil {
			t.Fatalf("NewFileCounter() error = %v", err)
		}

		n, err := c.Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if n != 0 {
			t.Errorf("Load() = %d, want 0", n)
		}
	})

	t.Run("save and load round trip", func(t *testing.T) {
		c, err := NewFileCounter(t.TempDir())
		if err != nil {
			t.Fatalf("NewFileCounter() error = %v", err)
		}

		if err := c.Save(4); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		n, err := c.Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if n != 4 {
			t.Errorf("Load() = %d, want 4", n)
		}
	})

	t.Run("counter survives a new instance over the same directory", func(t *testing.T) {
		dir := t.TempDir()

		c1, err := NewFileCounter(dir)
		if err != nil {
			t.Fatalf("NewFileCounter() error = %v", err)
		}
		if err := c1.Save(7); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		c2, err := NewFileCounter(dir)
		if err != nil {
			t.Fatalf("NewFileCounter() error = %v", err)
		}
		n, err := c2.Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if n != 7 {
			t.Errorf("Load() = %d, want 7", n)
		}
	})

	t.Run("garbage content is an error", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, CounterFileName), []byte("not-a-number"), 0644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}

		c, err := NewFileCounter(dir)
		if err != nil {
			t.Fatalf("NewFileCounter() error = %v", err)
		}
		if _, err := c.Load(); err == nil {
			t.Error("Load() expected error for unparseable content")
		}
	})

	t.Run("state file is invisible to snapshot listings", func(t *testing.T) {
		dir := t.TempDir()

		c, err := NewFileCounter(dir)
		if err != nil {
			t.Fatalf("NewFileCounter() error = %v", err)
		}
		if err := c.Save(2); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		s, err := NewFileStore(dir)
		if err != nil {
			t.Fatalf("NewFileStore() error = %v", err)
		}
		infos, err := s.List()
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(infos) != 0 {
			t.Errorf("snapshots = %d, want 0 (counter file must be skipped)", len(infos))
		}
	})
}
