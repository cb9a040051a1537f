package opp

import (
	"fmt"
	"strings"

	"oppmap-go/internal/model"
)

// Service is the repository façade. It owns the in-memory working copy
// of the record set for the session and composes the normalizer, the
// ordering/identifier assigner, the record store, and the backup manager
// into atomic load/create/update/delete/restore/reset operations: either
// the whole sequence succeeds and the caller receives the updated set,
// or it fails and the working copy keeps its prior state.
//
// The model is single-writer and single-session: there is no locking,
// and concurrent sessions against the same data directory can silently
// overwrite each other's durable state.
type Service struct {
	store   RecordStore
	backups *BackupManager
	norm    *Normalizer
	logger  Logger
	clock   Clock
	idgen   IDGenerator

	records []model.Opportunity
}

// NewService creates a repository service with the provided dependencies.
// Call Load before the first mutation to populate the working copy.
func NewService(store RecordStore, backups *BackupManager, logger Logger, clock Clock, idgen IDGenerator) *Service {
	return &Service{
		store:   store,
		backups: backups,
		norm:    NewNormalizer(clock, idgen),
		logger:  logger,
		clock:   clock,
		idgen:   idgen,
	}
}

// Fields carries the caller-settable values for create and update.
// ID, UUID, Score, Created and Modified are assigned by the repository.
type Fields struct {
	Opportunity string
	RelatedTo   string
	Area        string
	Type        model.Type
	Topic       string
	Impact      float64
	Complexity  float64
	Status      model.Status
}

func (f *Fields) validate() error {
	if strings.TrimSpace(f.Opportunity) == "" {
		return fmt.Errorf("%w: opportunity description is required", ErrValidation)
	}
	if f.Impact < 0 || f.Impact > 10 {
		return fmt.Errorf("%w: impact %.1f out of range [0,10]", ErrValidation, f.Impact)
	}
	if f.Complexity < 0 || f.Complexity > 10 {
		return fmt.Errorf("%w: complexity %.1f out of range [0,10]", ErrValidation, f.Complexity)
	}
	return nil
}

// Load reads and normalizes the durable store into the working copy.
// A missing store yields an empty set. A corrupt store also yields an
// empty set, plus a recoverable ErrStorageRead for the caller to report.
func (s *Service) Load() ([]model.Opportunity, error) {
	if !s.store.Exists() {
		s.records = nil
		return s.Records(), nil
	}

	ds, err := s.store.Read()
	if err != nil {
		s.logger.Error("record store unreadable, starting empty", "error", err)
		s.records = nil
		return s.Records(), fmt.Errorf("%w: %v", ErrStorageRead, err)
	}

	s.records = s.norm.Normalize(ds)
	s.logger.Debug("records loaded", "count", len(s.records))
	return s.Records(), nil
}

// Records returns a copy of the current working set.
func (s *Service) Records() []model.Opportunity {
	out := make([]model.Opportunity, len(s.records))
	copy(out, s.records)
	return out
}

// Create validates the fields, builds a new record with a fresh UUID and
// computed Score, reorders the whole set and persists it. Returns the
// updated set.
func (s *Service) Create(f Fields) ([]model.Opportunity, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}

	now := s.clock.Now().Format(model.TimeLayout)
	rec := model.Opportunity{
		UUID:        s.idgen.New(),
		Opportunity: f.Opportunity,
		RelatedTo:   f.RelatedTo,
		Area:        f.Area,
		Type:        f.Type,
		Topic:       f.Topic,
		Impact:      round1(f.Impact),
		Complexity:  round1(f.Complexity),
		Score:       Score(f.Impact, f.Complexity),
		Status:      f.Status,
		Created:     now,
		Modified:    now,
	}
	if rec.Type == "" {
		rec.Type = model.Types[0]
	}
	if rec.Status == "" {
		rec.Status = model.Statuses[0]
	}

	next := Reorder(append(s.Records(), rec), s.clock.Now())
	if err := s.persist(next); err != nil {
		return nil, err
	}
	s.records = next

	s.logger.Info("opportunity created", "uuid", rec.UUID, "score", rec.Score)
	return s.Records(), nil
}

// Update applies the fields to the record currently holding the given ID,
// then reorders and persists. The record's UUID and Created are kept.
func (s *Service) Update(id int, f Fields) ([]model.Opportunity, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}

	next := s.Records()
	idx := indexByID(next, id)
	if idx < 0 {
		return nil, fmt.Errorf("%w: no opportunity with ID %d", ErrValidation, id)
	}

	rec := &next[idx]
	rec.Opportunity = f.Opportunity
	rec.RelatedTo = f.RelatedTo
	rec.Area = f.Area
	rec.Topic = f.Topic
	rec.Impact = round1(f.Impact)
	rec.Complexity = round1(f.Complexity)
	if f.Type != "" {
		rec.Type = f.Type
	}
	if f.Status != "" {
		rec.Status = f.Status
	}

	uuid := rec.UUID
	next = Reorder(next, s.clock.Now())
	if err := s.persist(next); err != nil {
		return nil, err
	}
	s.records = next

	s.logger.Info("opportunity updated", "uuid", uuid)
	return s.Records(), nil
}

// Delete removes the record currently holding the given ID. A snapshot of
// the full set is taken before deletion, regardless of the save counter.
func (s *Service) Delete(id int) ([]model.Opportunity, error) {
	idx := indexByID(s.records, id)
	if idx < 0 {
		return nil, fmt.Errorf("%w: no opportunity with ID %d", ErrValidation, id)
	}
	uuid := s.records[idx].UUID

	if err := s.backups.CreateBackup(s.records); err != nil {
		return nil, err
	}

	next := s.Records()
	next = append(next[:idx], next[idx+1:]...)
	next = Reorder(next, s.clock.Now())
	if err := s.persist(next); err != nil {
		return nil, err
	}
	s.records = next

	s.logger.Info("opportunity deleted", "uuid", uuid)
	return s.Records(), nil
}

// Persist replaces the working copy with the given records and writes
// them through to the durable store.
func (s *Service) Persist(records []model.Opportunity) error {
	next := make([]model.Opportunity, len(records))
	copy(next, records)
	if err := s.persist(next); err != nil {
		return err
	}
	s.records = next
	return nil
}

// RestoreSnapshot replaces the live set with the contents of a stored
// snapshot. The current set is safety-snapshotted first.
func (s *Service) RestoreSnapshot(name string) ([]model.Opportunity, error) {
	ds, err := s.backups.ReadSnapshot(name)
	if err != nil {
		return nil, fmt.Errorf("%w: reading snapshot %s: %v", ErrStorageRead, name, err)
	}
	return s.restore(ds, PrefixPreRestore, false)
}

// RestoreUpload replaces the live set with an uploaded dataset. The
// upload must carry every declared column; otherwise the restore fails
// with a SchemaMismatchError naming the missing ones, and neither the
// working copy nor the durable store is touched.
func (s *Service) RestoreUpload(ds *model.Dataset) ([]model.Opportunity, error) {
	return s.restore(ds, PrefixPreUpload, true)
}

func (s *Service) restore(ds *model.Dataset, prefix string, checkSchema bool) ([]model.Opportunity, error) {
	if checkSchema {
		var missing []string
		for _, col := range model.Columns {
			if !ds.HasColumn(col) {
				missing = append(missing, col)
			}
		}
		if len(missing) > 0 {
			return nil, &SchemaMismatchError{Missing: missing}
		}
	}

	// Safety snapshot of the set about to be replaced.
	if len(s.records) > 0 {
		if _, err := s.backups.Snapshot(prefix, s.records); err != nil {
			return nil, err
		}
	}

	next := s.norm.Normalize(ds)
	stamp := s.clock.Now().Format(model.TimeLayout)
	for i := range next {
		next[i].Modified = stamp
	}

	if err := s.persist(next); err != nil {
		return nil, err
	}
	s.records = next

	s.logger.Info("record set restored", "records", len(next))
	return s.Records(), nil
}

// Reset snapshots the current data as a final backup (if non-empty),
// deletes the durable store and clears the working copy and save counter.
func (s *Service) Reset() error {
	if len(s.records) > 0 {
		if _, err := s.backups.Snapshot(PrefixFinalReset, s.records); err != nil {
			return err
		}
	}
	if err := s.store.Delete(); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}
	s.records = nil
	s.backups.ResetCounter()

	s.logger.Info("record store reset")
	return nil
}

// persist writes the records through to the durable store and lets the
// backup manager count the save. The working copy is not committed here;
// callers commit only after the full sequence succeeds.
func (s *Service) persist(records []model.Opportunity) error {
	if err := s.store.Write(records); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}
	return s.backups.MaybeBackup(records)
}

func indexByID(records []model.Opportunity, id int) int {
	for i := range records {
		if records[i].ID == id {
			return i
		}
	}
	return -1
}
