package store

import (
	"fmt"
	"path/filepath"

	"oppmap-go/internal/config"
	"oppmap-go/internal/opp"
)

// RecordFileName is the fixed name of the durable record file within the
// data directory.
const RecordFileName = "data.csv"

// NewRecordStoreFromConfig creates a RecordStore based on the storage config type.
func NewRecordStoreFromConfig(cfg config.StorageConfig) (opp.RecordStore, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryStore(), nil
	case "filesystem":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("filesystem storage requires data_dir to be set")
		}
		return NewFileStore(filepath.Join(cfg.DataDir, RecordFileName)), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
