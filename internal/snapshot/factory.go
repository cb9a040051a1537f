package snapshot

import (
	"fmt"

	"oppmap-go/internal/config"
	"oppmap-go/internal/opp"
)

// NewSnapshotStoreFromConfig creates a SnapshotStore based on the backups config type.
func NewSnapshotStoreFromConfig(cfg config.BackupsConfig) (opp.SnapshotStore, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryStore(), nil
	case "filesystem":
		if cfg.Dir == "" {
			return nil, fmt.Errorf("filesystem backups require dir to be set")
		}
		return NewFileStore(cfg.Dir)
	default:
		return nil, fmt.Errorf("unknown backups type: %s", cfg.Type)
	}
}

// NewCounterStoreFromConfig creates the save-counter store matching the
// backups config type, so the counter lives next to the snapshots it gates.
func NewCounterStoreFromConfig(cfg config.BackupsConfig) (opp.CounterStore, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryCounter(), nil
	case "filesystem":
		if cfg.Dir == "" {
			return nil, fmt.Errorf("filesystem backups require dir to be set")
		}
		return NewFileCounter(cfg.Dir)
	default:
		return nil, fmt.Errorf("unknown backups type: %s", cfg.Type)
	}
}
