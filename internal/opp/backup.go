package opp

import (
	"fmt"

	"oppmap-go/internal/model"
)

// RetentionLimit caps stored snapshots to the N most recent. Pruning
// beyond it is best-effort and never fails the triggering operation.
const RetentionLimit = 10

// Snapshot name prefixes. Every snapshot is named <prefix><timestamp>.csv.
const (
	PrefixAuto       = "data_backup_"
	PrefixPreRestore = "pre_restore_backup_"
	PrefixPreUpload  = "pre_upload_backup_"
	PrefixFinalReset = "final_backup_before_reset_"
)

// snapshotTimeLayout is the timestamp suffix of snapshot file names.
const snapshotTimeLayout = "20060102_150405"

// CounterStore persists the save counter between sessions. Every CLI
// invocation builds a fresh BackupManager, so the counter must outlive
// the process for the threshold to ever be reached.
type CounterStore interface {
	Load() (int, error)
	Save(count int) error
}

// BackupManager owns the snapshot lifecycle: threshold-triggered
// snapshots on persist, unconditional snapshots before destructive
// operations, and retention pruning. The save counter is an explicit
// field of the manager, loaded from the CounterStore on construction,
// persisted on every change, and reset to zero after each automatic
// backup.
type BackupManager struct {
	snapshots SnapshotStore
	counters  CounterStore
	frequency int
	counter   int
	logger    Logger
	clock     Clock
}

// NewBackupManager creates a manager snapshotting every frequency-th
// persist. frequency must be positive; anything lower is clamped to 1.
// An unreadable counter store starts the counter at zero.
func NewBackupManager(snapshots SnapshotStore, counters CounterStore, frequency int, logger Logger, clock Clock) *BackupManager {
	if frequency < 1 {
		frequency = 1
	}
	counter, err := counters.Load()
	if err != nil {
		logger.Warn("loading save counter", "error", err)
		counter = 0
	}
	return &BackupManager{
		snapshots: snapshots,
		counters:  counters,
		frequency: frequency,
		counter:   counter,
		logger:    logger,
		clock:     clock,
	}
}

// MaybeBackup counts one successful persist and snapshots the records
// once the save counter reaches the configured threshold. The counter
// resets only after a successful snapshot, so a failed one is retried on
// the next persist.
func (m *BackupManager) MaybeBackup(records []model.Opportunity) error {
	m.setCounter(m.counter + 1)
	if m.counter < m.frequency {
		return nil
	}
	if err := m.CreateBackup(records); err != nil {
		return err
	}
	m.setCounter(0)
	return nil
}

// setCounter updates and persists the save counter. Persistence failures
// are logged and swallowed: a lost counter delays the next automatic
// backup by at most one threshold, it must never block the save itself.
func (m *BackupManager) setCounter(n int) {
	m.counter = n
	if err := m.counters.Save(n); err != nil {
		m.logger.Warn("persisting save counter", "count", n, "error", err)
	}
}

// CreateBackup snapshots the records unconditionally, regardless of the
// save counter. Used before destructive operations.
func (m *BackupManager) CreateBackup(records []model.Opportunity) error {
	_, err := m.Snapshot(PrefixAuto, records)
	return err
}

// Snapshot writes a timestamped snapshot under the given name prefix and
// prunes old snapshots afterwards. Returns the snapshot name.
func (m *BackupManager) Snapshot(prefix string, records []model.Opportunity) (string, error) {
	name := prefix + m.clock.Now().Format(snapshotTimeLayout) + ".csv"
	if err := m.snapshots.Write(name, records); err != nil {
		return "", fmt.Errorf("writing snapshot %s: %w", name, err)
	}
	m.logger.Info("snapshot written", "name", name, "records", len(records))
	m.prune()
	return name, nil
}

// prune deletes all but the RetentionLimit most recent snapshots.
// Failures are logged and swallowed: pruning is not on the critical path.
func (m *BackupManager) prune() {
	infos, err := m.snapshots.List()
	if err != nil {
		m.logger.Warn("listing snapshots for pruning", "error", err)
		return
	}
	for _, info := range infos[min(len(infos), RetentionLimit):] {
		if err := m.snapshots.Delete(info.Name); err != nil {
			m.logger.Warn("pruning snapshot", "name", info.Name, "error", err)
		} else {
			m.logger.Debug("snapshot pruned", "name", info.Name)
		}
	}
}

// Snapshots lists stored snapshots, newest first.
func (m *BackupManager) Snapshots() ([]SnapshotInfo, error) {
	return m.snapshots.List()
}

// ReadSnapshot returns the raw dataset of a stored snapshot.
func (m *BackupManager) ReadSnapshot(name string) (*model.Dataset, error) {
	return m.snapshots.Read(name)
}

// Counter exposes the current save counter, mainly for status output.
func (m *BackupManager) Counter() int { return m.counter }

// ResetCounter clears the save counter. Used by Reset.
func (m *BackupManager) ResetCounter() { m.setCounter(0) }
