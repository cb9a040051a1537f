package journal

import (
	"database/sql"
	"fmt"

	"oppmap-go/internal/journal/migrations"
	"oppmap-go/internal/opp"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteJournal records repository operations in a SQLite database. The
// journal is a side table for the history view only; the record set
// itself never lives here.
type SQLiteJournal struct {
	db    *sql.DB
	clock opp.Clock
}

// NewSQLiteJournal opens (or creates) the journal database at path and
// migrates its schema. path can be ":memory:" for tests.
func NewSQLiteJournal(path string, clock opp.Clock) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating journal schema: %w", err)
	}

	return &SQLiteJournal{db: db, clock: clock}, nil
}

// Begin records the start of an operation and returns its id.
func (j *SQLiteJournal) Begin(operation, detail string) (int64, error) {
	res, err := j.db.Exec(
		`INSERT INTO operations (operation, detail, started_at, status) VALUES (?, ?, ?, 'running')`,
		operation, detail, j.clock.Now().UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("recording operation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading operation id: %w", err)
	}
	return id, nil
}

// Finish marks an operation finished with the given status.
func (j *SQLiteJournal) Finish(id int64, status string) error {
	_, err := j.db.Exec(
		`UPDATE operations SET finished_at = ?, status = ? WHERE id = ?`,
		j.clock.Now().UTC(), status, id,
	)
	if err != nil {
		return fmt.Errorf("finishing operation %d: %w", id, err)
	}
	return nil
}

// Recent returns the most recent entries, newest first.
func (j *SQLiteJournal) Recent(limit int) ([]opp.JournalEntry, error) {
	rows, err := j.db.Query(
		`SELECT id, operation, detail, started_at, finished_at, status
		 FROM operations ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying operations: %w", err)
	}
	defer rows.Close()

	var entries []opp.JournalEntry
	for rows.Next() {
		var e opp.JournalEntry
		var finished sql.NullTime
		if err := rows.Scan(&e.ID, &e.Operation, &e.Detail, &e.StartedAt, &finished, &e.Status); err != nil {
			return nil, fmt.Errorf("scanning operation: %w", err)
		}
		if finished.Valid {
			t := finished.Time
			e.FinishedAt = &t
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating operations: %w", err)
	}
	return entries, nil
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}

// Compile-time check that SQLiteJournal implements opp.Journal
var _ opp.Journal = (*SQLiteJournal)(nil)
