package usecase

import (
	"testing"
	"time"

	recorddomain "lifehub-backend/internal/record/domain"
	"lifehub-backend/internal/sync/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUser = "user-1"

func missingConflict(id string) domain.Conflict {
	return domain.Conflict{
		ID:         id,
		Type:       domain.ConflictMissing,
		Collection: "task",
		ExternalID: "ext-" + id,
		ExternalValue: map[string]any{
			"title":       "Imported task",
			"description": "from notion",
			"priority":    float64(2),
		},
		ExternalTimestamp: time.Now(),
	}
}

func TestApplyRejectsPartialBatch(t *testing.T) {
	records := &fakeRecordRepo{}
	statuses := &fakeStatusRepo{}
	applier := NewResolutionApplier(records, statuses)

	conflicts := []domain.Conflict{missingConflict("a"), missingConflict("b"), missingConflict("c")}
	choices := []domain.ResolutionChoice{
		{ConflictID: conflicts[0].ID, Strategy: domain.PreferExternal},
		{ConflictID: conflicts[1].ID, Strategy: domain.PreferExternal},
	}

	result, err := applier.Apply(testUser, conflicts, choices)

	require.Error(t, err)
	var incomplete *domain.IncompleteResolutionError
	require.ErrorAs(t, err, &incomplete)
	assert.Equal(t, []string{conflicts[2].ID}, incomplete.Missing)
	assert.Nil(t, result)
	// Nothing applied, not even the covered conflicts.
	assert.Empty(t, records.records)
	assert.Empty(t, statuses.statuses)
}

func TestApplyRejectsUnknownAndDuplicateChoices(t *testing.T) {
	applier := NewResolutionApplier(&fakeRecordRepo{}, &fakeStatusRepo{})
	conflicts := []domain.Conflict{missingConflict("a")}
	choices := []domain.ResolutionChoice{
		{ConflictID: conflicts[0].ID, Strategy: domain.Skip},
		{ConflictID: conflicts[0].ID, Strategy: domain.PreferExternal},
		{ConflictID: "nope", Strategy: domain.Skip},
	}

	_, err := applier.Apply(testUser, conflicts, choices)

	var incomplete *domain.IncompleteResolutionError
	require.ErrorAs(t, err, &incomplete)
	assert.Equal(t, []string{"nope"}, incomplete.Unknown)
	assert.Equal(t, []string{conflicts[0].ID}, incomplete.Duplicated)
}

func TestApplyMissingPreferExternalImports(t *testing.T) {
	records := &fakeRecordRepo{}
	statuses := &fakeStatusRepo{}
	applier := NewResolutionApplier(records, statuses)

	conflict := missingConflict("a")
	result, err := applier.Apply(testUser, []domain.Conflict{conflict}, []domain.ResolutionChoice{
		{ConflictID: conflict.ID, Strategy: domain.PreferExternal},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Applied)
	require.Len(t, records.records, 1)
	imported := records.records[0]
	assert.Equal(t, "Imported task", imported.Title)
	assert.Equal(t, "from notion", imported.Fields["description"])

	status, _ := statuses.FindByLocalID(testUser, "task", imported.ID)
	require.NotNil(t, status)
	assert.Equal(t, domain.SyncStateSynced, status.State)
	require.NotNil(t, status.ExternalID)
	assert.Equal(t, conflict.ExternalID, *status.ExternalID)
}

func TestApplyMissingSkipLeavesNoTrace(t *testing.T) {
	records := &fakeRecordRepo{}
	statuses := &fakeStatusRepo{}
	applier := NewResolutionApplier(records, statuses)

	conflict := missingConflict("a")
	result, err := applier.Apply(testUser, []domain.Conflict{conflict}, []domain.ResolutionChoice{
		{ConflictID: conflict.ID, Strategy: domain.Skip},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Skipped)
	// No record and no status: the same missing conflict resurfaces on the
	// next run. Skip is not forget.
	assert.Empty(t, records.records)
	assert.Empty(t, statuses.statuses)
}

func seedRecord(records *fakeRecordRepo) *recorddomain.Record {
	rec := &recorddomain.Record{
		UserID:     testUser,
		Collection: "rule",
		Title:      "No meetings before ten",
		Fields:     recorddomain.FieldMap{"description": "old text", "priority": float64(5), "active": true},
	}
	_ = records.Create(rec)
	return rec
}

func TestApplyFieldPreferExternalOverwritesOneField(t *testing.T) {
	records := &fakeRecordRepo{}
	statuses := &fakeStatusRepo{}
	applier := NewResolutionApplier(records, statuses)
	rec := seedRecord(records)

	conflict := domain.Conflict{
		ID:                "c1",
		Type:              domain.ConflictField,
		Collection:        "rule",
		LocalID:           rec.ID,
		ExternalID:        "ext-9",
		Field:             "description",
		LocalValue:        "old text",
		ExternalValue:     "new notion text",
		ExternalTimestamp: time.Now(),
	}
	result, err := applier.Apply(testUser, []domain.Conflict{conflict}, []domain.ResolutionChoice{
		{ConflictID: "c1", Strategy: domain.PreferExternal},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Applied)
	assert.Equal(t, "new notion text", rec.Fields["description"])
	assert.Equal(t, float64(5), rec.Fields["priority"], "other fields untouched")

	status, _ := statuses.FindByLocalID(testUser, "rule", rec.ID)
	require.NotNil(t, status)
	assert.Equal(t, domain.SyncStateSynced, status.State)
}

func TestApplyPreferLocalOnlyWritesBookkeeping(t *testing.T) {
	records := &fakeRecordRepo{}
	statuses := &fakeStatusRepo{}
	applier := NewResolutionApplier(records, statuses)
	rec := seedRecord(records)
	before := rec.UpdatedAt

	conflict := domain.Conflict{
		ID:                "c1",
		Type:              domain.ConflictRecord,
		Collection:        "rule",
		LocalID:           rec.ID,
		ExternalID:        "ext-9",
		LocalValue:        map[string]any{"title": rec.Title},
		ExternalValue:     map[string]any{"title": "Notion title"},
		ExternalTimestamp: time.Now(),
	}
	result, err := applier.Apply(testUser, []domain.Conflict{conflict}, []domain.ResolutionChoice{
		{ConflictID: "c1", Strategy: domain.PreferLocal},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Applied)
	assert.Equal(t, "No meetings before ten", rec.Title)
	assert.Equal(t, before, rec.UpdatedAt, "record untouched")

	status, _ := statuses.FindByLocalID(testUser, "rule", rec.ID)
	require.NotNil(t, status)
	assert.Equal(t, domain.SyncStateSynced, status.State)
	require.NotNil(t, status.ExternalID)
	assert.Equal(t, "ext-9", *status.ExternalID)
}

func TestApplyRecordFieldChoicesPartialMerge(t *testing.T) {
	records := &fakeRecordRepo{}
	statuses := &fakeStatusRepo{}
	applier := NewResolutionApplier(records, statuses)
	rec := seedRecord(records)

	conflict := domain.Conflict{
		ID:         "c1",
		Type:       domain.ConflictRecord,
		Collection: "rule",
		LocalID:    rec.ID,
		ExternalID: "ext-9",
		LocalValue: map[string]any{
			"title": rec.Title, "description": "old text", "priority": float64(5), "active": true,
		},
		ExternalValue: map[string]any{
			"title": rec.Title, "description": "notion description", "priority": float64(0), "active": true,
		},
		ExternalTimestamp: time.Now(),
	}
	result, err := applier.Apply(testUser, []domain.Conflict{conflict}, []domain.ResolutionChoice{
		{ConflictID: "c1", Strategy: domain.PreferLocal, FieldChoices: map[string]domain.Strategy{
			"priority":    domain.PreferLocal,
			"description": domain.PreferExternal,
		}},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Applied)
	assert.Equal(t, float64(5), rec.Fields["priority"], "prefer_local keeps the local edit")
	assert.Equal(t, "notion description", rec.Fields["description"])
	assert.Equal(t, true, rec.Fields["active"], "unmentioned fields default to prefer_local")
}

func TestApplyMarksPendingBeforeWriting(t *testing.T) {
	records := &fakeRecordRepo{}
	statuses := &fakeStatusRepo{}
	applier := NewResolutionApplier(records, statuses)
	rec := seedRecord(records)

	conflict := domain.Conflict{
		ID:                "c1",
		Type:              domain.ConflictField,
		Collection:        "rule",
		LocalID:           rec.ID,
		ExternalID:        "ext-9",
		Field:             "description",
		ExternalValue:     "new text",
		ExternalTimestamp: time.Now(),
	}
	choices := []domain.ResolutionChoice{{ConflictID: "c1", Strategy: domain.PreferExternal}}

	_, err := applier.Apply(testUser, []domain.Conflict{conflict}, choices)
	require.NoError(t, err)
	assert.Equal(t, []domain.SyncState{domain.SyncStatePending, domain.SyncStateSynced}, statuses.stateLog)

	// A write failure leaves the pending entry marked failed, never a stale
	// synced.
	statuses.stateLog = nil
	records.failUpdateID = rec.ID
	result, err := applier.Apply(testUser, []domain.Conflict{conflict}, choices)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, []domain.SyncState{domain.SyncStatePending, domain.SyncStateFailed}, statuses.stateLog)

	status, _ := statuses.FindByLocalID(testUser, "rule", rec.ID)
	require.NotNil(t, status)
	assert.Equal(t, domain.SyncStateFailed, status.State)
}

func TestApplyPerItemFailureDoesNotAbortBatch(t *testing.T) {
	records := &fakeRecordRepo{}
	statuses := &fakeStatusRepo{}
	applier := NewResolutionApplier(records, statuses)
	bad := seedRecord(records)
	good := &recorddomain.Record{
		UserID: testUser, Collection: "rule", Title: "Second rule",
		Fields: recorddomain.FieldMap{"description": "x"},
	}
	_ = records.Create(good)
	records.failUpdateID = bad.ID

	conflicts := []domain.Conflict{
		{ID: "c1", Type: domain.ConflictField, Collection: "rule", LocalID: bad.ID, ExternalID: "e1", Field: "description", ExternalValue: "v1", ExternalTimestamp: time.Now()},
		{ID: "c2", Type: domain.ConflictField, Collection: "rule", LocalID: good.ID, ExternalID: "e2", Field: "description", ExternalValue: "v2", ExternalTimestamp: time.Now()},
	}
	choices := []domain.ResolutionChoice{
		{ConflictID: "c1", Strategy: domain.PreferExternal},
		{ConflictID: "c2", Strategy: domain.PreferExternal},
	}

	result, err := applier.Apply(testUser, conflicts, choices)

	require.NoError(t, err, "per-item failures never fail the call")
	assert.Equal(t, 1, result.Applied)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "c1", result.Failures[0].ConflictID)

	assert.Equal(t, "v2", good.Fields["description"])

	failedStatus, _ := statuses.FindByLocalID(testUser, "rule", bad.ID)
	require.NotNil(t, failedStatus)
	assert.Equal(t, domain.SyncStateFailed, failedStatus.State)
	require.NotNil(t, failedStatus.LastError)
	assert.Contains(t, *failedStatus.LastError, "write rejected")
}
