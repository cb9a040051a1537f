package opp_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"oppmap-go/internal/model"
	"oppmap-go/internal/opp"
	"oppmap-go/internal/snapshot"
	"oppmap-go/internal/testutil"
)

func sampleRecords() []model.Opportunity {
	return []model.Opportunity{
		{ID: 1, UUID: "abc12345", Opportunity: "Automate invoicing", Impact: 8, Complexity: 3, Score: 7.5},
	}
}

func TestBackupManager_MaybeBackup(t *testing.T) {
	t.Run("snapshots on the nth persist and resets the counter", func(t *testing.T) {
		snaps := snapshot.NewMemoryStore()
		m := opp.NewBackupManager(snaps, snapshot.NewMemoryCounter(), 3, opp.NewNopLogger(), testutil.FixedClock())

		for i := 0; i < 2; i++ {
			if err := m.MaybeBackup(sampleRecords()); err != nil {
				t.Fatalf("MaybeBackup() error = %v", err)
			}
		}
		if snaps.Len() != 0 {
			t.Fatalf("snapshots before threshold = %d, want 0", snaps.Len())
		}
		if m.Counter() != 2 {
			t.Fatalf("Counter() = %d, want 2", m.Counter())
		}

		if err := m.MaybeBackup(sampleRecords()); err != nil {
			t.Fatalf("MaybeBackup() error = %v", err)
		}
		if snaps.Len() != 1 {
			t.Errorf("snapshots at threshold = %d, want 1", snaps.Len())
		}
		if m.Counter() != 0 {
			t.Errorf("Counter() after backup = %d, want 0", m.Counter())
		}
	})

	t.Run("failed snapshot keeps the counter for a retry", func(t *testing.T) {
		clock := testutil.FixedClock()
		snaps := snapshot.NewMemoryStore()
		m := opp.NewBackupManager(snaps, snapshot.NewMemoryCounter(), 2, opp.NewNopLogger(), clock)

		if err := m.MaybeBackup(sampleRecords()); err != nil {
			t.Fatalf("MaybeBackup() error = %v", err)
		}

		snaps.FailWrites(fmt.Errorf("disk full"))
		if err := m.MaybeBackup(sampleRecords()); err == nil {
			t.Fatal("MaybeBackup() expected error when snapshot write fails")
		}
		if m.Counter() != 2 {
			t.Errorf("Counter() after failed snapshot = %d, want 2", m.Counter())
		}

		snaps.FailWrites(nil)
		clock.Advance(time.Second)
		if err := m.MaybeBackup(sampleRecords()); err != nil {
			t.Fatalf("MaybeBackup() retry error = %v", err)
		}
		if snaps.Len() != 1 {
			t.Errorf("snapshots after retry = %d, want 1", snaps.Len())
		}
		if m.Counter() != 0 {
			t.Errorf("Counter() after retry = %d, want 0", m.Counter())
		}
	})

	t.Run("counter accumulates across manager lifetimes", func(t *testing.T) {
		snaps := snapshot.NewMemoryStore()
		counters := snapshot.NewMemoryCounter()

		first := opp.NewBackupManager(snaps, counters, 5, opp.NewNopLogger(), testutil.FixedClock())
		for i := 0; i < 3; i++ {
			if err := first.MaybeBackup(sampleRecords()); err != nil {
				t.Fatalf("MaybeBackup() %d error = %v", i, err)
			}
		}
		if snaps.Len() != 0 {
			t.Fatalf("snapshots after first session = %d, want 0", snaps.Len())
		}

		second := opp.NewBackupManager(snaps, counters, 5, opp.NewNopLogger(), testutil.FixedClock())
		if second.Counter() != 3 {
			t.Fatalf("Counter() in fresh session = %d, want 3", second.Counter())
		}
		if err := second.MaybeBackup(sampleRecords()); err != nil {
			t.Fatalf("MaybeBackup() error = %v", err)
		}
		if snaps.Len() != 0 {
			t.Fatalf("snapshots on fourth persist = %d, want 0", snaps.Len())
		}
		if err := second.MaybeBackup(sampleRecords()); err != nil {
			t.Fatalf("MaybeBackup() error = %v", err)
		}
		if snaps.Len() != 1 {
			t.Errorf("snapshots on fifth persist = %d, want 1", snaps.Len())
		}

		third := opp.NewBackupManager(snaps, counters, 5, opp.NewNopLogger(), testutil.FixedClock())
		if third.Counter() != 0 {
			t.Errorf("Counter() after threshold = %d, want 0 (reset must persist)", third.Counter())
		}
	})

	t.Run("counter store failures never block the save", func(t *testing.T) {
		snaps := snapshot.NewMemoryStore()
		counters := snapshot.NewMemoryCounter()
		counters.FailSaves(errors.New("disk full"))
		m := opp.NewBackupManager(snaps, counters, 2, opp.NewNopLogger(), testutil.FixedClock())

		if err := m.MaybeBackup(sampleRecords()); err != nil {
			t.Fatalf("MaybeBackup() error = %v", err)
		}
		if m.Counter() != 1 {
			t.Errorf("Counter() = %d, want 1", m.Counter())
		}
	})

	t.Run("unreadable counter store starts at zero", func(t *testing.T) {
		snaps := snapshot.NewMemoryStore()
		counters := snapshot.NewMemoryCounter()
		counters.FailLoads(errors.New("permission denied"))
		m := opp.NewBackupManager(snaps, counters, 3, opp.NewNopLogger(), testutil.FixedClock())

		if m.Counter() != 0 {
			t.Errorf("Counter() = %d, want 0", m.Counter())
		}
		if err := m.MaybeBackup(sampleRecords()); err != nil {
			t.Fatalf("MaybeBackup() error = %v", err)
		}
	})

	t.Run("frequency below one is clamped", func(t *testing.T) {
		snaps := snapshot.NewMemoryStore()
		m := opp.NewBackupManager(snaps, snapshot.NewMemoryCounter(), 0, opp.NewNopLogger(), testutil.FixedClock())

		if err := m.MaybeBackup(sampleRecords()); err != nil {
			t.Fatalf("MaybeBackup() error = %v", err)
		}
		if snaps.Len() != 1 {
			t.Errorf("snapshots = %d, want 1 (every persist)", snaps.Len())
		}
	})
}

func TestBackupManager_Snapshot(t *testing.T) {
	t.Run("names snapshots prefix plus timestamp", func(t *testing.T) {
		snaps := snapshot.NewMemoryStore()
		m := opp.NewBackupManager(snaps, snapshot.NewMemoryCounter(), 5, opp.NewNopLogger(), testutil.FixedClock())

		name, err := m.Snapshot(opp.PrefixPreRestore, sampleRecords())
		if err != nil {
			t.Fatalf("Snapshot() error = %v", err)
		}

		want := "pre_restore_backup_20240115_103000.csv"
		if name != want {
			t.Errorf("name = %q, want %q", name, want)
		}
	})

	t.Run("snapshot content round-trips", func(t *testing.T) {
		snaps := snapshot.NewMemoryStore()
		m := opp.NewBackupManager(snaps, snapshot.NewMemoryCounter(), 5, opp.NewNopLogger(), testutil.FixedClock())

		name, err := m.Snapshot(opp.PrefixAuto, sampleRecords())
		if err != nil {
			t.Fatalf("Snapshot() error = %v", err)
		}

		ds, err := m.ReadSnapshot(name)
		if err != nil {
			t.Fatalf("ReadSnapshot() error = %v", err)
		}
		if len(ds.Rows) != 1 {
			t.Fatalf("rows = %d, want 1", len(ds.Rows))
		}
		if got := ds.Rows[0][model.ColOpportunity]; got != "Automate invoicing" {
			t.Errorf("Opportunity = %q, want %q", got, "Automate invoicing")
		}
	})
}

func TestBackupManager_Retention(t *testing.T) {
	t.Run("keeps only the ten most recent snapshots", func(t *testing.T) {
		clock := testutil.FixedClock()
		snaps := snapshot.NewMemoryStore()
		m := opp.NewBackupManager(snaps, snapshot.NewMemoryCounter(), 1, opp.NewNopLogger(), clock)

		for i := 0; i < 15; i++ {
			if _, err := m.Snapshot(opp.PrefixAuto, sampleRecords()); err != nil {
				t.Fatalf("Snapshot() %d error = %v", i, err)
			}
			clock.Advance(time.Second)
		}

		infos, err := m.Snapshots()
		if err != nil {
			t.Fatalf("Snapshots() error = %v", err)
		}
		if len(infos) != opp.RetentionLimit {
			t.Fatalf("snapshots = %d, want %d", len(infos), opp.RetentionLimit)
		}

		// The five oldest (10:30:00 .. 10:30:04) are gone.
		for _, info := range infos {
			for s := 0; s < 5; s++ {
				stale := fmt.Sprintf("data_backup_20240115_10300%d.csv", s)
				if info.Name == stale {
					t.Errorf("stale snapshot %s survived pruning", stale)
				}
			}
		}
	})

	t.Run("prune failure does not fail the snapshot", func(t *testing.T) {
		clock := testutil.FixedClock()
		snaps := snapshot.NewMemoryStore()
		m := opp.NewBackupManager(snaps, snapshot.NewMemoryCounter(), 1, opp.NewNopLogger(), clock)

		for i := 0; i < opp.RetentionLimit; i++ {
			if _, err := m.Snapshot(opp.PrefixAuto, sampleRecords()); err != nil {
				t.Fatalf("Snapshot() error = %v", err)
			}
			clock.Advance(time.Second)
		}

		snaps.FailDeletes(errors.New("permission denied"))
		name, err := m.Snapshot(opp.PrefixAuto, sampleRecords())
		if err != nil {
			t.Fatalf("Snapshot() with failing prune error = %v", err)
		}
		if !strings.HasPrefix(name, opp.PrefixAuto) {
			t.Errorf("name = %q, want prefix %q", name, opp.PrefixAuto)
		}
		if snaps.Len() != opp.RetentionLimit+1 {
			t.Errorf("snapshots = %d, want %d (prune failed)", snaps.Len(), opp.RetentionLimit+1)
		}
	})
}
