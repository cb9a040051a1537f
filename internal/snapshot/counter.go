package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"oppmap-go/internal/opp"
)

// CounterFileName is the save-counter state file kept in the backup
// directory, next to the snapshots it gates.
const CounterFileName = "save_counter"

// FileCounter persists the save counter as a plain integer in a small
// state file. Its name carries no .csv suffix, so snapshot listings
// never pick it up.
type FileCounter struct {
	path string
}

// NewFileCounter creates a counter store under dir, creating dir if needed.
func NewFileCounter(dir string) (*FileCounter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}
	return &FileCounter{path: filepath.Join(dir, CounterFileName)}, nil
}

// Load returns the stored counter. A missing file means zero.
func (c *FileCounter) Load() (int, error) {
	data, err := os.ReadFile(c.path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading save counter: %w", err)
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("parsing save counter: %w", err)
	}
	return n, nil
}

// Save stores the counter.
func (c *FileCounter) Save(count int) error {
	if err := os.WriteFile(c.path, []byte(strconv.Itoa(count)+"\n"), 0644); err != nil {
		return fmt.Errorf("writing save counter: %w", err)
	}
	return nil
}

// MemoryCounter is an in-memory CounterStore for tests.
type MemoryCounter struct {
	count   int
	loadErr error
	saveErr error
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{}
}

// FailLoads makes every subsequent Load return err. Pass nil to heal.
func (c *MemoryCounter) FailLoads(err error) { c.loadErr = err }

// FailSaves makes every subsequent Save return err. Pass nil to heal.
func (c *MemoryCounter) FailSaves(err error) { c.saveErr = err }

func (c *MemoryCounter) Load() (int, error) {
	if c.loadErr != nil {
		return 0, c.loadErr
	}
	return c.count, nil
}

func (c *MemoryCounter) Save(count int) error {
	if c.saveErr != nil {
		return c.saveErr
	}
	c.count = count
	return nil
}

// Compile-time checks
var (
	_ opp.CounterStore = (*FileCounter)(nil)
	_ opp.CounterStore = (*MemoryCounter)(nil)
)
