package journal

import (
	"fmt"

	"oppmap-go/internal/opp"
)

// MemoryJournal is an in-memory Journal for tests.
type MemoryJournal struct {
	entries []opp.JournalEntry
	nextID  int64
	clock   opp.Clock
}

func NewMemoryJournal(clock opp.Clock) *MemoryJournal {
	return &MemoryJournal{nextID: 1, clock: clock}
}

func (j *MemoryJournal) Begin(operation, detail string) (int64, error) {
	id := j.nextID
	j.nextID++
	j.entries = append(j.entries, opp.JournalEntry{
		ID:        id,
		Operation: operation,
		Detail:    detail,
		StartedAt: j.clock.Now(),
		Status:    "running",
	})
	return id, nil
}

func (j *MemoryJournal) Finish(id int64, status string) error {
	for i := range j.entries {
		if j.entries[i].ID == id {
			t := j.clock.Now()
			j.entries[i].FinishedAt = &t
			j.entries[i].Status = status
			return nil
		}
	}
	return fmt.Errorf("no operation with id %d", id)
}

func (j *MemoryJournal) Recent(limit int) ([]opp.JournalEntry, error) {
	n := len(j.entries)
	if limit > n {
		limit = n
	}
	out := make([]opp.JournalEntry, 0, limit)
	for i := n - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, j.entries[i])
	}
	return out, nil
}

func (j *MemoryJournal) Close() error { return nil }

// NopJournal discards all entries. Used when journaling is disabled.
type NopJournal struct{}

func (NopJournal) Begin(string, string) (int64, error)    { return 0, nil }
func (NopJournal) Finish(int64, string) error             { return nil }
func (NopJournal) Recent(int) ([]opp.JournalEntry, error) { return nil, nil }
func (NopJournal) Close() error                           { return nil }

// Compile-time checks
var (
	_ opp.Journal = (*MemoryJournal)(nil)
	_ opp.Journal = NopJournal{}
)
