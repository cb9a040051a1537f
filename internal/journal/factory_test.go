package journal

import (
	"testing"

	"oppmap-go/internal/config"
	"oppmap-go/internal/testutil"
)

func TestNewJournalFromConfig(t *testing.T) {
	clock := testutil.FixedClock()

	t.Run("none and empty disable journaling", func(t *testing.T) {
		for _, typ := range []string{"none", ""} {
			j, err := NewJournalFromConfig(config.JournalConfig{Type: typ}, clock)
			if err != nil {
				t.Fatalf("NewJournalFromConfig(%q) error = %v", typ, err)
			}
			if _, ok := j.(NopJournal); !ok {
				t.Errorf("journal type for %q = %T, want NopJournal", typ, j)
			}
		}
	})

	t.Run("memory", func(t *testing.T) {
		j, err := NewJournalFromConfig(config.JournalConfig{Type: "memory"}, clock)
		if err != nil {
			t.Fatalf("NewJournalFromConfig() error = %v", err)
		}
		if _, ok := j.(*MemoryJournal); !ok {
			t.Errorf("journal type = %T, want *MemoryJournal", j)
		}
	})

	t.Run("sqlite", func(t *testing.T) {
		j, err := NewJournalFromConfig(config.JournalConfig{Type: "sqlite", DataDir: t.TempDir()}, clock)
		if err != nil {
			t.Fatalf("NewJournalFromConfig() error = %v", err)
		}
		defer j.Close()
		if _, ok := j.(*SQLiteJournal); !ok {
			t.Errorf("journal type = %T, want *SQLiteJournal", j)
		}
	})

	t.Run("sqlite without data_dir", func(t *testing.T) {
		if _, err := NewJournalFromConfig(config.JournalConfig{Type: "sqlite"}, clock); err == nil {
			t.Error("expected error for missing data_dir")
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		if _, err := NewJournalFromConfig(config.JournalConfig{Type: "postgres"}, clock); err == nil {
			t.Error("expected error for unknown type")
		}
	})
}
