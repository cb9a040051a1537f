package opp

import "time"

// JournalEntry is one recorded repository operation.
type JournalEntry struct {
	ID         int64
	Operation  string
	Detail     string
	StartedAt  time.Time
	FinishedAt *time.Time
	Status     string
}

// Journal entry statuses.
const (
	JournalStatusOK     = "ok"
	JournalStatusFailed = "failed"
)

// Journal records mutating operations for the history view. It is a
// side channel: journal failures must never block a repository operation.
type Journal interface {
	// Begin records the start of an operation and returns its id.
	Begin(operation, detail string) (int64, error)

	// Finish marks an operation finished with the given status.
	Finish(id int64, status string) error

	// Recent returns the most recent entries, newest first.
	Recent(limit int) ([]JournalEntry, error)

	Close() error
}
