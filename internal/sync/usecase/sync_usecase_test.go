package usecase

import (
	"context"
	"testing"
	"time"

	recorddomain "lifehub-backend/internal/record/domain"
	"lifehub-backend/internal/sync/domain"
	"lifehub-backend/pkg/notion"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncFixture struct {
	records     *fakeRecordRepo
	statuses    *fakeStatusRepo
	connections *fakeConnectionRepo
	source      *fakeSource
	writer      *fakeWriter
	uc          SyncUsecase
}

// newSyncFixture wires the use case against in-memory fakes with the task
// collection already linked and zero inter-collection delay.
func newSyncFixture(t *testing.T) *syncFixture {
	t.Helper()
	f := &syncFixture{
		records:     &fakeRecordRepo{},
		statuses:    &fakeStatusRepo{},
		connections: newFakeConnectionRepo(),
		source:      &fakeSource{batches: map[string]fakeBatch{}},
		writer:      &fakeWriter{},
	}
	f.uc = NewSyncUsecase(f.records, f.statuses, f.connections, f.source, f.writer, 0)
	require.NoError(t, f.uc.Connect(testUser, &domain.WorkspaceConnection{AccessToken: "secret-token"}))
	require.NoError(t, f.uc.LinkCollection(testUser, "task", "db-task"))
	return f
}

func taskDoc(id, title string, edited time.Time) domain.ExternalDocument {
	return domain.ExternalDocument{
		ExternalID:   id,
		Title:        title,
		Properties:   map[string]any{"description": "weekly", "priority": float64(1)},
		LastEditedAt: edited,
	}
}

// seedSyncedTask inserts a local task already linked to ext-1 with both sync
// baselines at base.
func (f *syncFixture) seedSyncedTask(t *testing.T, base time.Time) *recorddomain.Record {
	t.Helper()
	rec := &recorddomain.Record{
		UserID:     testUser,
		Collection: "task",
		Title:      "Buy milk",
		Fields:     recorddomain.FieldMap{"description": "weekly", "priority": float64(1)},
	}
	require.NoError(t, f.records.Create(rec))
	rec.UpdatedAt = base
	require.NoError(t, f.statuses.Upsert(&domain.SyncStatus{
		UserID:           testUser,
		Collection:       "task",
		LocalID:          rec.ID,
		ExternalID:       strPtr("ext-1"),
		State:            domain.SyncStateSynced,
		LocalSyncedAt:    timePtr(base),
		ExternalSyncedAt: timePtr(base),
	}))
	return rec
}

func TestStartRecoveryUnknownCollection(t *testing.T) {
	f := newSyncFixture(t)

	_, err := f.uc.StartRecovery(context.Background(), testUser, "contact", false)

	assert.ErrorIs(t, err, ErrUnknownCollection)
}

func TestStartRecoveryWithoutConnection(t *testing.T) {
	f := newSyncFixture(t)
	delete(f.connections.connections, testUser)

	_, err := f.uc.StartRecovery(context.Background(), testUser, "task", false)

	assert.ErrorIs(t, err, domain.ErrAuthExpired)
}

func TestStartRecoveryWithoutLink(t *testing.T) {
	f := newSyncFixture(t)

	_, err := f.uc.StartRecovery(context.Background(), testUser, "rule", false)

	assert.ErrorIs(t, err, domain.ErrExternalNotFound)
}

func TestStartRecoveryFoldsAllPages(t *testing.T) {
	f := newSyncFixture(t)
	now := time.Now()
	f.source.batches[""] = fakeBatch{
		docs: []domain.ExternalDocument{taskDoc("ext-1", "One", now), taskDoc("ext-2", "Two", now)},
		next: "page-2",
	}
	f.source.batches["page-2"] = fakeBatch{
		docs: []domain.ExternalDocument{taskDoc("ext-3", "Three", now)},
	}

	run, err := f.uc.StartRecovery(context.Background(), testUser, "task", false)

	require.NoError(t, err)
	assert.Equal(t, 2, f.source.calls)
	assert.Equal(t, 3, run.RetrievedCount)
	assert.Equal(t, 3, run.NewCount)
	assert.Equal(t, domain.RunAwaitingResolution, run.Status)
	require.Len(t, run.Conflicts, 3)
	for _, c := range run.Conflicts {
		assert.Equal(t, domain.ConflictMissing, c.Type)
	}
}

func TestStartRecoveryExternalWinSilently(t *testing.T) {
	f := newSyncFixture(t)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	rec := f.seedSyncedTask(t, base)

	doc := taskDoc("ext-1", "Buy milk and eggs", base.Add(time.Hour))
	f.source.batches[""] = fakeBatch{docs: []domain.ExternalDocument{doc}}

	run, err := f.uc.StartRecovery(context.Background(), testUser, "task", false)

	require.NoError(t, err)
	assert.Equal(t, domain.RunComplete, run.Status)
	assert.Equal(t, 1, run.AutoApplied)
	assert.Empty(t, run.Conflicts)
	assert.Equal(t, "Buy milk and eggs", rec.Title)

	status, _ := f.statuses.FindByLocalID(testUser, "task", rec.ID)
	require.NotNil(t, status)
	assert.Equal(t, domain.SyncStateSynced, status.State)
	assert.True(t, status.ExternalSyncedAt.Equal(doc.LastEditedAt))

	// The ledger passes through pending while the overwrite is in flight.
	assert.Equal(t, []domain.SyncState{
		domain.SyncStateSynced, // seeded baseline
		domain.SyncStatePending,
		domain.SyncStateSynced,
	}, f.statuses.stateLog)
}

func TestStartRecoveryPushesLocalAhead(t *testing.T) {
	f := newSyncFixture(t)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	rec := f.seedSyncedTask(t, base)
	rec.Title = "Buy oat milk"
	rec.UpdatedAt = base.Add(time.Hour)

	f.source.batches[""] = fakeBatch{docs: []domain.ExternalDocument{taskDoc("ext-1", "Buy milk", base)}}

	run, err := f.uc.StartRecovery(context.Background(), testUser, "task", false)

	require.NoError(t, err)
	assert.Equal(t, domain.RunComplete, run.Status)
	require.Len(t, f.writer.upserts, 1)
	assert.Equal(t, "ext-1", f.writer.upserts[0].externalID)
	assert.Equal(t, "Buy oat milk", f.writer.upserts[0].title)
}

func TestStartRecoveryAutoResolveImportsMissing(t *testing.T) {
	f := newSyncFixture(t)
	f.source.batches[""] = fakeBatch{docs: []domain.ExternalDocument{taskDoc("ext-new", "Fresh", time.Now())}}

	run, err := f.uc.StartRecovery(context.Background(), testUser, "task", true)

	require.NoError(t, err)
	assert.Equal(t, domain.RunComplete, run.Status)
	require.NotNil(t, run.Apply)
	assert.Equal(t, 1, run.Apply.Applied)
	require.Len(t, f.records.records, 1)
	assert.Equal(t, "Fresh", f.records.records[0].Title)
}

func TestStartRecoveryAutoResolveStillBlocksOnEdits(t *testing.T) {
	// auto_resolve only covers missing documents; a genuine divergence still
	// comes back awaiting resolution.
	f := newSyncFixture(t)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	rec := f.seedSyncedTask(t, base)
	rec.Title = "Buy oat milk"
	rec.UpdatedAt = base.Add(time.Hour)

	f.source.batches[""] = fakeBatch{docs: []domain.ExternalDocument{taskDoc("ext-1", "Buy almond milk", base.Add(2 * time.Hour))}}

	run, err := f.uc.StartRecovery(context.Background(), testUser, "task", true)

	require.NoError(t, err)
	assert.Equal(t, domain.RunAwaitingResolution, run.Status)
	require.Len(t, run.Conflicts, 1)
	assert.Equal(t, "Buy oat milk", rec.Title, "nothing applied while awaiting")
}

func TestStartRecoveryMapsSourceAuthError(t *testing.T) {
	f := newSyncFixture(t)
	f.source.err = notion.ErrUnauthorized

	run, err := f.uc.StartRecovery(context.Background(), testUser, "task", false)

	assert.ErrorIs(t, err, domain.ErrAuthExpired)
	require.NotNil(t, run)
	assert.Equal(t, domain.RunFailed, run.Status)
}

func TestRecoverAllSkipsUnlinkedCollections(t *testing.T) {
	f := newSyncFixture(t)
	f.source.batches[""] = fakeBatch{}

	result, err := f.uc.RecoverAll(context.Background(), testUser, false)

	require.NoError(t, err)
	assert.Equal(t, []string{"task"}, result.Succeeded)
	assert.ElementsMatch(t, []string{"rule", "journal_entry", "calendar_event"}, result.Skipped)
	assert.Empty(t, result.Failed)
	require.Contains(t, result.Runs, "task")
	assert.Equal(t, domain.RunComplete, result.Runs["task"].Status)
}

func TestRecoverAllAbortsOnExpiredAuth(t *testing.T) {
	f := newSyncFixture(t)
	require.NoError(t, f.uc.LinkCollection(testUser, "rule", "db-rule"))
	f.source.err = notion.ErrUnauthorized

	result, err := f.uc.RecoverAll(context.Background(), testUser, false)

	assert.ErrorIs(t, err, domain.ErrAuthExpired)
	// The loop stops at the first collection; one credential serves them all.
	assert.Equal(t, []string{"task"}, result.Failed)
	assert.Empty(t, result.Succeeded)
	assert.Contains(t, result.Errors, "task")
}

func TestRecoverAllReportsPerCollectionFailures(t *testing.T) {
	f := newSyncFixture(t)
	require.NoError(t, f.uc.LinkCollection(testUser, "rule", "db-rule"))
	f.source.batches[""] = fakeBatch{}
	f.source.err = &domain.RetrievalError{Collection: "task", Err: assert.AnError}

	result, err := f.uc.RecoverAll(context.Background(), testUser, false)

	require.NoError(t, err, "ordinary retrieval failures do not abort the loop")
	assert.ElementsMatch(t, []string{"task", "rule"}, result.Failed)
	assert.ElementsMatch(t, []string{"journal_entry", "calendar_event"}, result.Skipped)
	assert.Contains(t, result.Errors["task"], "task")
}

func TestSubmitResolutionsRoundTrip(t *testing.T) {
	f := newSyncFixture(t)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	rec := f.seedSyncedTask(t, base)
	rec.Title = "Buy oat milk"
	rec.Fields["priority"] = float64(5)
	rec.UpdatedAt = base.Add(time.Hour)

	doc := taskDoc("ext-1", "Buy almond milk", base.Add(2*time.Hour))
	doc.Properties["description"] = "changed remotely"
	f.source.batches[""] = fakeBatch{docs: []domain.ExternalDocument{doc}}

	run, err := f.uc.StartRecovery(context.Background(), testUser, "task", false)
	require.NoError(t, err)
	require.Equal(t, domain.RunAwaitingResolution, run.Status)
	require.Len(t, run.Conflicts, 1)
	require.Equal(t, domain.ConflictRecord, run.Conflicts[0].Type)

	result, err := f.uc.SubmitResolutions(context.Background(), testUser, "task", run.Conflicts, []domain.ResolutionChoice{
		{ConflictID: run.Conflicts[0].ID, Strategy: domain.PreferExternal},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Applied)
	assert.Equal(t, "Buy almond milk", rec.Title)
	assert.Equal(t, "changed remotely", rec.Fields["description"])

	// Both stores converged, so the next run has nothing to say.
	again, err := f.uc.StartRecovery(context.Background(), testUser, "task", false)
	require.NoError(t, err)
	assert.Equal(t, domain.RunComplete, again.Status)
	assert.Empty(t, again.Conflicts)
	assert.Equal(t, 0, again.AutoApplied)
}

func TestSubmitResolutionsPushesPreferLocal(t *testing.T) {
	f := newSyncFixture(t)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	rec := f.seedSyncedTask(t, base)

	conflict := domain.Conflict{
		ID:                "c1",
		Type:              domain.ConflictField,
		Collection:        "task",
		LocalID:           rec.ID,
		ExternalID:        "ext-1",
		Field:             titleField,
		LocalValue:        rec.Title,
		ExternalValue:     "Notion title",
		ExternalTimestamp: base.Add(time.Hour),
	}
	result, err := f.uc.SubmitResolutions(context.Background(), testUser, "task", []domain.Conflict{conflict}, []domain.ResolutionChoice{
		{ConflictID: "c1", Strategy: domain.PreferLocal},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Applied)
	assert.Equal(t, "Buy milk", rec.Title)
	require.Len(t, f.writer.upserts, 1, "the kept local version goes back out")
	assert.Equal(t, "ext-1", f.writer.upserts[0].externalID)
	assert.Equal(t, "Buy milk", f.writer.upserts[0].title)
}

func TestSubmitResolutionsRejectsForeignCollectionConflicts(t *testing.T) {
	f := newSyncFixture(t)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	rec := f.seedSyncedTask(t, base)

	conflict := domain.Conflict{
		ID:                "c1",
		Type:              domain.ConflictField,
		Collection:        "rule",
		LocalID:           rec.ID,
		ExternalID:        "ext-1",
		Field:             "description",
		ExternalValue:     "smuggled",
		ExternalTimestamp: base.Add(time.Hour),
	}

	_, err := f.uc.SubmitResolutions(context.Background(), testUser, "task", []domain.Conflict{conflict}, []domain.ResolutionChoice{
		{ConflictID: "c1", Strategy: domain.PreferExternal},
	})

	assert.ErrorIs(t, err, ErrConflictCollectionMismatch)
	assert.Equal(t, "weekly", rec.Fields["description"], "nothing applied")
	assert.Empty(t, f.writer.upserts)
}

func TestSubmitResolutionsPartialBatchLeavesStoreUntouched(t *testing.T) {
	f := newSyncFixture(t)
	f.source.batches[""] = fakeBatch{docs: []domain.ExternalDocument{
		taskDoc("ext-a", "A", time.Now()),
		taskDoc("ext-b", "B", time.Now()),
	}}
	run, err := f.uc.StartRecovery(context.Background(), testUser, "task", false)
	require.NoError(t, err)
	require.Len(t, run.Conflicts, 2)

	_, err = f.uc.SubmitResolutions(context.Background(), testUser, "task", run.Conflicts, []domain.ResolutionChoice{
		{ConflictID: run.Conflicts[0].ID, Strategy: domain.PreferExternal},
	})

	var incomplete *domain.IncompleteResolutionError
	require.ErrorAs(t, err, &incomplete)
	assert.Empty(t, f.records.records)
	assert.Empty(t, f.writer.upserts)
}

func TestSkippedMissingDocumentResurfaces(t *testing.T) {
	f := newSyncFixture(t)
	f.source.batches[""] = fakeBatch{docs: []domain.ExternalDocument{taskDoc("ext-a", "Fresh", time.Now())}}

	run, err := f.uc.StartRecovery(context.Background(), testUser, "task", false)
	require.NoError(t, err)
	require.Len(t, run.Conflicts, 1)

	_, err = f.uc.SubmitResolutions(context.Background(), testUser, "task", run.Conflicts, []domain.ResolutionChoice{
		{ConflictID: run.Conflicts[0].ID, Strategy: domain.Skip},
	})
	require.NoError(t, err)

	again, err := f.uc.StartRecovery(context.Background(), testUser, "task", false)
	require.NoError(t, err)
	require.Len(t, again.Conflicts, 1, "skip is per run, not permanent")
	assert.Equal(t, domain.ConflictMissing, again.Conflicts[0].Type)
	assert.Equal(t, "ext-a", again.Conflicts[0].ExternalID)
}

func TestListCollectionsReportsLinkState(t *testing.T) {
	f := newSyncFixture(t)

	infos, err := f.uc.ListCollections(testUser)

	require.NoError(t, err)
	require.Len(t, infos, 4)
	byName := map[string]CollectionInfo{}
	for _, info := range infos {
		byName[info.Collection] = info
	}
	assert.True(t, byName["task"].Linked)
	assert.Equal(t, "db-task", byName["task"].DatabaseID)
	assert.False(t, byName["rule"].Linked)
}

func TestDeleteStatusesForRecord(t *testing.T) {
	f := newSyncFixture(t)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	rec := f.seedSyncedTask(t, base)

	require.NoError(t, f.uc.DeleteStatusesForRecord(testUser, "task", rec.ID))

	status, _ := f.statuses.FindByLocalID(testUser, "task", rec.ID)
	assert.Nil(t, status)
}
