package app

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"oppmap-go/internal/config"
	"oppmap-go/internal/encryption"
	"oppmap-go/internal/export"
	"oppmap-go/internal/journal"
	"oppmap-go/internal/model"
	"oppmap-go/internal/opp"
	"oppmap-go/internal/snapshot"
	"oppmap-go/internal/store"
)

// App is the application layer between the CLI and the repository
// Service. It constructs all dependencies from config, exposes
// high-level operations, and records mutating operations in the journal.
type App struct {
	cfg       *config.Config
	service   *opp.Service
	backups   *opp.BackupManager
	journal   opp.Journal
	encryptor opp.Encryptor
	logger    opp.Logger
	clock     opp.Clock
	logFile   *os.File

	operation string
	opID      int64
	failed    bool
}

// NewApp creates a fully wired App from the given config. operation
// identifies the CLI command being run (e.g. "Add", "Restore"). The
// caller must call Close when done.
func NewApp(cfg *config.Config, operation string) (*App, error) {
	recordStore, err := store.NewRecordStoreFromConfig(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("creating record store: %w", err)
	}

	snapshots, err := snapshot.NewSnapshotStoreFromConfig(cfg.Backups)
	if err != nil {
		return nil, fmt.Errorf("creating snapshot store: %w", err)
	}

	counters, err := snapshot.NewCounterStoreFromConfig(cfg.Backups)
	if err != nil {
		return nil, fmt.Errorf("creating save-counter store: %w", err)
	}

	clock := opp.RealClock{}

	jnl, err := journal.NewJournalFromConfig(cfg.Journal, clock)
	if err != nil {
		return nil, fmt.Errorf("creating journal: %w", err)
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		jnl.Close()
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	opID := time.Now().UTC().Format("20060102T150405Z")
	logger, logFile, err := newLogger(cfg.LogDir, opID)
	if err != nil {
		jnl.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	adapted := &slogAdapter{l: logger}
	backups := opp.NewBackupManager(snapshots, counters, cfg.BackupFrequency, adapted, clock)
	svc := opp.NewService(recordStore, backups, adapted, clock, opp.ShortIDGenerator{})

	if _, err := svc.Load(); err != nil {
		// A corrupt store is recoverable: the service starts empty and
		// the previous file is still on disk for manual inspection.
		if !errors.Is(err, opp.ErrStorageRead) {
			jnl.Close()
			if logFile != nil {
				logFile.Close()
			}
			return nil, fmt.Errorf("loading records: %w", err)
		}
		adapted.Warn("continuing with empty record set", "error", err)
	}

	return &App{
		cfg:       cfg,
		service:   svc,
		backups:   backups,
		journal:   jnl,
		encryptor: enc,
		logger:    adapted,
		clock:     clock,
		logFile:   logFile,
		operation: operation,
	}, nil
}

// Config returns the active configuration.
func (a *App) Config() *config.Config { return a.cfg }

// Encryptor returns the configured encryptor, or nil when encryption is
// not configured.
func (a *App) Encryptor() opp.Encryptor { return a.encryptor }

// begin records the start of this command in the journal. Journal
// failures are logged and swallowed: history is a side channel and must
// never block the operation itself.
func (a *App) begin(detail string) {
	if a.opID != 0 {
		return
	}
	id, err := a.journal.Begin(a.operation, detail)
	if err != nil {
		a.logger.Warn("recording operation start", "error", err)
		return
	}
	a.opID = id
}

// fail marks the journaled operation failed when err is non-nil and
// passes the error through.
func (a *App) fail(err error) error {
	if err != nil {
		a.failed = true
	}
	return err
}

// Records returns the current record set, ranked by score.
func (a *App) Records() []model.Opportunity {
	return a.service.Records()
}

// Create adds a new opportunity and returns the updated set.
func (a *App) Create(f opp.Fields) ([]model.Opportunity, error) {
	a.begin(f.Opportunity)
	recs, err := a.service.Create(f)
	return recs, a.fail(err)
}

// Update modifies the record holding the given ID and returns the
// updated set.
func (a *App) Update(id int, f opp.Fields) ([]model.Opportunity, error) {
	a.begin(fmt.Sprintf("id=%d", id))
	recs, err := a.service.Update(id, f)
	return recs, a.fail(err)
}

// Delete removes the record holding the given ID and returns the
// updated set.
func (a *App) Delete(id int) ([]model.Opportunity, error) {
	a.begin(fmt.Sprintf("id=%d", id))
	recs, err := a.service.Delete(id)
	return recs, a.fail(err)
}

// Export writes the records matching the criteria to w in the given
// format. When encrypt is true the serialized output is encrypted with
// the configured public key. Returns the number of records exported.
func (a *App) Export(c opp.Criteria, format string, w io.Writer, encrypt bool) (int, error) {
	records := c.Apply(a.service.Records())

	if !encrypt {
		if err := export.Write(w, format, records); err != nil {
			return 0, err
		}
		return len(records), nil
	}

	if a.encryptor == nil || !a.encryptor.IsConfigured() {
		return 0, fmt.Errorf("encryption is not configured: run 'oppmap crypt init' first")
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, records); err != nil {
		return 0, err
	}
	if err := a.encryptor.Encrypt(&buf, w); err != nil {
		return 0, fmt.Errorf("encrypting export: %w", err)
	}
	return len(records), nil
}

// ExportFilename returns the conventional file name for an export in
// the given format, encrypted or not.
func (a *App) ExportFilename(format string, encrypt bool) string {
	name := export.Filename(format, a.clock.Now())
	if encrypt {
		name += encryption.EncryptedExt
	}
	return name
}

// Snapshots lists stored snapshots, newest first.
func (a *App) Snapshots() ([]opp.SnapshotInfo, error) {
	return a.backups.Snapshots()
}

// CopySnapshot writes the contents of a stored snapshot to w as CSV,
// exactly as stored, without normalization.
func (a *App) CopySnapshot(name string, w io.Writer) error {
	ds, err := a.backups.ReadSnapshot(name)
	if err != nil {
		return fmt.Errorf("%w: reading snapshot %s: %v", opp.ErrStorageRead, name, err)
	}
	if err := store.WriteDataset(w, ds); err != nil {
		return fmt.Errorf("copying snapshot %s: %w", name, err)
	}
	return nil
}

// BackupNow takes an unconditional snapshot of the current record set
// and returns its name.
func (a *App) BackupNow() (string, error) {
	a.begin("")
	name, err := a.backups.Snapshot(opp.PrefixAuto, a.service.Records())
	return name, a.fail(err)
}

// RestoreSnapshot replaces the live set with a stored snapshot.
func (a *App) RestoreSnapshot(name string) ([]model.Opportunity, error) {
	a.begin(name)
	recs, err := a.service.RestoreSnapshot(name)
	return recs, a.fail(err)
}

// RestoreFile replaces the live set with the contents of an uploaded
// file. Files ending in the encrypted extension are decrypted with the
// given passphrase first. The upload must carry every declared column.
func (a *App) RestoreFile(path string, passphrase string) ([]model.Opportunity, error) {
	a.begin(path)

	f, err := os.Open(path)
	if err != nil {
		return nil, a.fail(fmt.Errorf("opening upload: %w", err))
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, encryption.EncryptedExt) {
		if a.encryptor == nil {
			return nil, a.fail(fmt.Errorf("encrypted upload but encryption is not configured"))
		}
		ctx, err := a.encryptor.Unlock(passphrase)
		if err != nil {
			return nil, a.fail(fmt.Errorf("unlocking private key: %w", err))
		}
		var buf bytes.Buffer
		if err := ctx.Decrypt(f, &buf); err != nil {
			return nil, a.fail(fmt.Errorf("decrypting upload: %w", err))
		}
		r = &buf
	}

	ds, err := store.ReadDataset(r)
	if err != nil {
		return nil, a.fail(fmt.Errorf("%w: parsing upload: %v", opp.ErrStorageRead, err))
	}

	recs, err := a.service.RestoreUpload(ds)
	return recs, a.fail(err)
}

// Reset deletes the durable store after a final snapshot.
func (a *App) Reset() error {
	a.begin("")
	return a.fail(a.service.Reset())
}

// SetupEncryption generates a new key pair, protecting the private key
// with the given passphrase.
func (a *App) SetupEncryption(passphrase string) error {
	a.begin("")
	if a.encryptor == nil {
		return a.fail(fmt.Errorf("encryption type is %q: set encryption.type in the config first", a.cfg.Encryption.Type))
	}
	if a.encryptor.IsConfigured() {
		return a.fail(fmt.Errorf("encryption keys already exist"))
	}
	return a.fail(a.encryptor.Setup(passphrase))
}

// History returns the most recent journaled operations, newest first.
func (a *App) History(limit int) ([]opp.JournalEntry, error) {
	return a.journal.Recent(limit)
}

// BackupCounter exposes the current save counter for status output.
func (a *App) BackupCounter() int { return a.backups.Counter() }

// Close finalizes the journaled operation (if any) and releases all
// resources.
func (a *App) Close() error {
	var firstErr error

	if a.opID != 0 {
		status := opp.JournalStatusOK
		if a.failed {
			status = opp.JournalStatusFailed
		}
		if err := a.journal.Finish(a.opID, status); err != nil {
			firstErr = fmt.Errorf("finishing operation record: %w", err)
		}
	}

	if err := a.journal.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("closing journal: %w", err)
	}

	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}
