package journal

import (
	"fmt"
	"os"
	"path/filepath"

	"oppmap-go/internal/config"
	"oppmap-go/internal/opp"
)

// JournalFileName is the fixed name of the journal database within its
// data directory.
const JournalFileName = "journal.db"

// NewJournalFromConfig creates a Journal based on the journal config type.
func NewJournalFromConfig(cfg config.JournalConfig, clock opp.Clock) (opp.Journal, error) {
	switch cfg.Type {
	case "none", "":
		return NopJournal{}, nil
	case "memory":
		return NewMemoryJournal(clock), nil
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("sqlite journal requires data_dir to be set")
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("creating journal directory: %w", err)
		}
		return NewSQLiteJournal(filepath.Join(cfg.DataDir, JournalFileName), clock)
	default:
		return nil, fmt.Errorf("unknown journal type: %s", cfg.Type)
	}
}
