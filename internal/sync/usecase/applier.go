package usecase

import (
	"errors"
	"fmt"
	"log"

	recorddomain "lifehub-backend/internal/record/domain"
	recordrepo "lifehub-backend/internal/record/repository"
	"lifehub-backend/internal/sync/domain"
	"lifehub-backend/internal/sync/repository"
)

// ResolutionApplier applies a fully-decided conflict batch to the local
// store. The batch is rejected wholesale when the choices do not cover every
// conflict exactly once; after that, each item is applied independently and a
// failure on one never aborts the rest.
type ResolutionApplier struct {
	records  recordrepo.RecordRepository
	statuses repository.SyncStatusRepository
}

// NewResolutionApplier creates a new ResolutionApplier
func NewResolutionApplier(records recordrepo.RecordRepository, statuses repository.SyncStatusRepository) *ResolutionApplier {
	return &ResolutionApplier{records: records, statuses: statuses}
}

// Apply validates coverage, then walks the conflicts in order applying each
// decision. Returns IncompleteResolutionError, with nothing applied, when the
// choice set is partial.
func (a *ResolutionApplier) Apply(userID string, conflicts []domain.Conflict, choices []domain.ResolutionChoice) (*domain.ApplyResult, error) {
	choiceByID, err := indexChoices(conflicts, choices)
	if err != nil {
		return nil, err
	}

	result := &domain.ApplyResult{}
	for _, conflict := range conflicts {
		choice := choiceByID[conflict.ID]
		if err := a.applyOne(userID, conflict, choice, result); err != nil {
			werr := &domain.LocalWriteError{ConflictID: conflict.ID, Err: err}
			log.Printf("[ResolutionApplier] %v", werr)
			result.Failed++
			result.Failures = append(result.Failures, domain.ApplyFailure{
				ConflictID: conflict.ID,
				Error:      err.Error(),
			})
			a.recordFailure(userID, conflict, err)
		}
	}
	return result, nil
}

func indexChoices(conflicts []domain.Conflict, choices []domain.ResolutionChoice) (map[string]domain.ResolutionChoice, error) {
	conflictIDs := make(map[string]bool, len(conflicts))
	for _, c := range conflicts {
		conflictIDs[c.ID] = true
	}

	incomplete := &domain.IncompleteResolutionError{}
	choiceByID := make(map[string]domain.ResolutionChoice, len(choices))
	for _, choice := range choices {
		if !conflictIDs[choice.ConflictID] {
			incomplete.Unknown = append(incomplete.Unknown, choice.ConflictID)
			continue
		}
		if _, dup := choiceByID[choice.ConflictID]; dup {
			incomplete.Duplicated = append(incomplete.Duplicated, choice.ConflictID)
			continue
		}
		choiceByID[choice.ConflictID] = choice
	}
	for _, c := range conflicts {
		if _, ok := choiceByID[c.ID]; !ok {
			incomplete.Missing = append(incomplete.Missing, c.ID)
		}
	}
	if len(incomplete.Missing) > 0 || len(incomplete.Unknown) > 0 || len(incomplete.Duplicated) > 0 {
		return nil, incomplete
	}
	return choiceByID, nil
}

func (a *ResolutionApplier) applyOne(userID string, conflict domain.Conflict, choice domain.ResolutionChoice, result *domain.ApplyResult) error {
	switch conflict.Type {
	case domain.ConflictMissing:
		// Only prefer_external imports; skip (and prefer_local, which has no
		// local side to prefer) leaves no trace so the document resurfaces on
		// the next run.
		if choice.Strategy != domain.PreferExternal {
			result.Skipped++
			return nil
		}
		if err := a.importDocument(userID, conflict); err != nil {
			return err
		}
		result.Applied++
		return nil

	case domain.ConflictRecord, domain.ConflictField:
		if choice.Strategy == domain.Skip && len(choice.FieldChoices) == 0 {
			result.Skipped++
			return nil
		}
		if err := a.applyToRecord(userID, conflict, choice); err != nil {
			return err
		}
		result.Applied++
		return nil

	default:
		return fmt.Errorf("unknown conflict type %q", conflict.Type)
	}
}

// importDocument inserts a new local record from a missing conflict's
// external snapshot and creates its sync status already synced.
func (a *ResolutionApplier) importDocument(userID string, conflict domain.Conflict) error {
	bag, ok := asFieldBag(conflict.ExternalValue)
	if !ok {
		return errors.New("missing conflict carries no external snapshot")
	}
	schema, ok := recorddomain.SchemaFor(conflict.Collection)
	if !ok {
		return fmt.Errorf("unknown collection %q", conflict.Collection)
	}

	title, _ := bag[titleField].(string)
	fields := recorddomain.FieldMap{}
	for _, name := range schema.FieldNames() {
		if v, present := bag[name]; present && v != nil {
			fields[name] = v
		}
	}
	rec := &recorddomain.Record{
		UserID:     userID,
		Collection: conflict.Collection,
		Title:      title,
		Fields:     fields,
	}
	if err := a.records.Create(rec); err != nil {
		return err
	}

	status := &domain.SyncStatus{
		UserID:     userID,
		Collection: conflict.Collection,
		LocalID:    rec.ID,
	}
	status.MarkSynced(conflict.ExternalID, rec.UpdatedAt, conflict.ExternalTimestamp)
	return a.statuses.Upsert(status)
}

// applyToRecord handles record and field conflicts. prefer_local writes only
// bookkeeping; prefer_external overwrites the conflicting fields; a record
// conflict with field_choices merges per field, unmentioned fields defaulting
// to prefer_local.
func (a *ResolutionApplier) applyToRecord(userID string, conflict domain.Conflict, choice domain.ResolutionChoice) error {
	rec, err := a.records.FindByID(conflict.LocalID)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("local record %s not found", conflict.LocalID)
	}
	if rec.UserID != userID {
		return fmt.Errorf("local record %s does not belong to user", conflict.LocalID)
	}

	status, err := a.statuses.FindByLocalID(userID, conflict.Collection, rec.ID)
	if err != nil {
		return err
	}
	if status == nil {
		status = &domain.SyncStatus{
			UserID:     userID,
			Collection: conflict.Collection,
			LocalID:    rec.ID,
		}
	}
	status.MarkPending()
	if err := a.statuses.Upsert(status); err != nil {
		return err
	}

	mutated := false
	switch {
	case conflict.Type == domain.ConflictField && choice.Strategy == domain.PreferExternal:
		setRecordField(rec, conflict.Field, conflict.ExternalValue)
		mutated = true

	case conflict.Type == domain.ConflictRecord && len(choice.FieldChoices) > 0:
		bag, ok := asFieldBag(conflict.ExternalValue)
		if !ok {
			return errors.New("record conflict carries no external snapshot")
		}
		for field, strategy := range choice.FieldChoices {
			if strategy != domain.PreferExternal {
				continue
			}
			setRecordField(rec, field, bag[field])
			mutated = true
		}

	case conflict.Type == domain.ConflictRecord && choice.Strategy == domain.PreferExternal:
		bag, ok := asFieldBag(conflict.ExternalValue)
		if !ok {
			return errors.New("record conflict carries no external snapshot")
		}
		schema, _ := recorddomain.SchemaFor(conflict.Collection)
		setRecordField(rec, titleField, bag[titleField])
		for _, name := range schema.FieldNames() {
			setRecordField(rec, name, bag[name])
		}
		mutated = true
	}

	if mutated {
		if err := a.records.Update(rec); err != nil {
			return err
		}
	}

	status.MarkSynced(conflict.ExternalID, rec.UpdatedAt, conflict.ExternalTimestamp)
	return a.statuses.Upsert(status)
}

func setRecordField(rec *recorddomain.Record, field string, value any) {
	if field == titleField {
		if s, ok := value.(string); ok {
			rec.Title = s
		}
		return
	}
	if rec.Fields == nil {
		rec.Fields = recorddomain.FieldMap{}
	}
	if value == nil {
		delete(rec.Fields, field)
		return
	}
	rec.Fields[field] = value
}

// recordFailure marks the item's sync status failed without disturbing its
// linkage. Missing conflicts have no local record yet, so nothing to mark.
func (a *ResolutionApplier) recordFailure(userID string, conflict domain.Conflict, cause error) {
	if conflict.LocalID == "" {
		return
	}
	status, err := a.statuses.FindByLocalID(userID, conflict.Collection, conflict.LocalID)
	if err != nil {
		log.Printf("[ResolutionApplier] Failed to load status for %s: %v", conflict.LocalID, err)
		return
	}
	if status == nil {
		status = &domain.SyncStatus{
			UserID:     userID,
			Collection: conflict.Collection,
			LocalID:    conflict.LocalID,
		}
	}
	status.MarkFailed(cause.Error())
	if err := a.statuses.Upsert(status); err != nil {
		log.Printf("[ResolutionApplier] Failed to persist failure for %s: %v", conflict.LocalID, err)
	}
}
