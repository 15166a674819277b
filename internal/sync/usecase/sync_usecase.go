package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	recorddomain "lifehub-backend/internal/record/domain"
	recordrepo "lifehub-backend/internal/record/repository"
	"lifehub-backend/internal/sync/domain"
	"lifehub-backend/internal/sync/repository"
	"lifehub-backend/pkg/notion"

	"github.com/google/uuid"
)

// ErrUnknownCollection is returned when a sync operation names a collection
// with no registered schema.
var ErrUnknownCollection = errors.New("unknown collection")

// ErrConflictCollectionMismatch is returned when an echoed conflict snapshot
// belongs to a different collection than the one being resolved.
var ErrConflictCollectionMismatch = errors.New("conflict does not belong to this collection")

// syncUsecase implements SyncUsecase. It holds no state between runs beyond
// what it reads back from the sync status ledger and the record store, so the
// conflict snapshot returned by StartRecovery is the caller's to keep until
// it submits resolutions.
type syncUsecase struct {
	records         recordrepo.RecordRepository
	statuses        repository.SyncStatusRepository
	connections     repository.ConnectionRepository
	source          DocumentSource
	writer          DocumentWriter
	applier         *ResolutionApplier
	collectionDelay time.Duration
}

// NewSyncUsecase creates a new instance of syncUsecase
func NewSyncUsecase(
	records recordrepo.RecordRepository,
	statuses repository.SyncStatusRepository,
	connections repository.ConnectionRepository,
	source DocumentSource,
	writer DocumentWriter,
	collectionDelay time.Duration,
) SyncUsecase {
	return &syncUsecase{
		records:         records,
		statuses:        statuses,
		connections:     connections,
		source:          source,
		writer:          writer,
		applier:         NewResolutionApplier(records, statuses),
		collectionDelay: collectionDelay,
	}
}

func (u *syncUsecase) StartRecovery(ctx context.Context, userID, collection string, autoResolve bool) (*domain.RecoveryRun, error) {
	if _, ok := recorddomain.SchemaFor(collection); !ok {
		return nil, ErrUnknownCollection
	}
	token, databaseID, err := u.resolveTarget(userID, collection)
	if err != nil {
		return nil, err
	}

	run := &domain.RecoveryRun{Collection: collection, Status: domain.RunRetrieving}

	docs, err := u.retrieveAll(ctx, token, databaseID, collection)
	if err != nil {
		run.Status = domain.RunFailed
		return run, err
	}
	run.RetrievedCount = len(docs)

	locals, err := u.records.FindByUserAndCollection(userID, collection)
	if err != nil {
		run.Status = domain.RunFailed
		return run, err
	}
	statuses, err := u.statuses.FindByUserAndCollection(userID, collection)
	if err != nil {
		run.Status = domain.RunFailed
		return run, err
	}

	match := MatchRecords(docs, locals, statuses)
	det := DetectConflicts(collection, match.Pairs, match.Unmatched)
	run.MatchedCount = len(match.Pairs)
	run.NewCount = len(match.Unmatched)
	run.ConflictCount = len(det.Conflicts)

	// Clean external updates never wait for the caller.
	run.AutoApplied = u.applyExternalWins(userID, collection, det.AutoApply)

	// Local-ahead pairs only need a push back out; best effort, never blocks
	// the run.
	u.pushLocalAhead(ctx, token, databaseID, collection, userID, det.LocalAhead)

	blocking := 0
	for _, c := range det.Conflicts {
		if c.Type != domain.ConflictMissing {
			blocking++
		}
	}

	switch {
	case len(det.Conflicts) == 0:
		run.Status = domain.RunComplete
	case autoResolve && blocking == 0:
		choices := make([]domain.ResolutionChoice, 0, len(det.Conflicts))
		for _, c := range det.Conflicts {
			choices = append(choices, domain.ResolutionChoice{ConflictID: c.ID, Strategy: domain.PreferExternal})
		}
		apply, err := u.applier.Apply(userID, det.Conflicts, choices)
		if err != nil {
			run.Status = domain.RunFailed
			return run, err
		}
		run.Apply = apply
		run.Status = domain.RunComplete
	default:
		run.Status = domain.RunAwaitingResolution
		run.Conflicts = det.Conflicts
	}

	log.Printf("[SyncUsecase] Recovery %s for user %s: retrieved=%d matched=%d new=%d conflicts=%d auto=%d status=%s",
		collection, userID, run.RetrievedCount, run.MatchedCount, run.NewCount, run.ConflictCount, run.AutoApplied, run.Status)
	return run, nil
}

func (u *syncUsecase) RecoverAll(ctx context.Context, userID string, autoResolve bool) (*domain.RecoverAllResult, error) {
	result := &domain.RecoverAllResult{
		Runs:   make(map[string]*domain.RecoveryRun),
		Errors: make(map[string]string),
	}

	for i, collection := range recorddomain.Collections() {
		if i > 0 {
			if err := sleepContext(ctx, u.collectionDelay); err != nil {
				return result, err
			}
		}

		run, err := u.StartRecovery(ctx, userID, collection, autoResolve)
		switch {
		case err == nil:
			result.Succeeded = append(result.Succeeded, collection)
			result.Runs[collection] = run
		case errors.Is(err, domain.ErrExternalNotFound):
			// Not linked yet: skip, not fail, and keep going.
			result.Skipped = append(result.Skipped, collection)
		case errors.Is(err, domain.ErrAuthExpired):
			// One credential serves every collection; no point continuing.
			result.Failed = append(result.Failed, collection)
			result.Errors[collection] = err.Error()
			return result, err
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			return result, err
		default:
			result.Failed = append(result.Failed, collection)
			result.Errors[collection] = err.Error()
		}
	}
	return result, nil
}

func (u *syncUsecase) SubmitResolutions(ctx context.Context, userID, collection string, conflicts []domain.Conflict, choices []domain.ResolutionChoice) (*domain.ApplyResult, error) {
	if _, ok := recorddomain.SchemaFor(collection); !ok {
		return nil, ErrUnknownCollection
	}
	for _, c := range conflicts {
		if c.Collection != collection {
			return nil, fmt.Errorf("%w: conflict %s is for %s", ErrConflictCollectionMismatch, c.ID, c.Collection)
		}
	}

	result, err := u.applier.Apply(userID, conflicts, choices)
	if err != nil {
		return nil, err
	}

	u.pushPreferLocal(ctx, userID, collection, conflicts, choices)
	return result, nil
}

func (u *syncUsecase) ListStatuses(userID, collection string) ([]*domain.SyncStatus, error) {
	if _, ok := recorddomain.SchemaFor(collection); !ok {
		return nil, ErrUnknownCollection
	}
	return u.statuses.FindByUserAndCollection(userID, collection)
}

func (u *syncUsecase) ListCollections(userID string) ([]CollectionInfo, error) {
	links, err := u.connections.FindLinks(userID)
	if err != nil {
		return nil, err
	}
	linkByCollection := make(map[string]*domain.CollectionLink, len(links))
	for _, l := range links {
		linkByCollection[l.Collection] = l
	}

	infos := make([]CollectionInfo, 0, len(recorddomain.Collections()))
	for _, collection := range recorddomain.Collections() {
		info := CollectionInfo{Collection: collection}
		if link, ok := linkByCollection[collection]; ok {
			info.Linked = true
			info.DatabaseID = link.DatabaseID
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func (u *syncUsecase) LinkCollection(userID, collection, databaseID string) error {
	if _, ok := recorddomain.SchemaFor(collection); !ok {
		return ErrUnknownCollection
	}
	return u.connections.SaveLink(&domain.CollectionLink{
		ID:         uuid.New().String(),
		UserID:     userID,
		Collection: collection,
		DatabaseID: databaseID,
	})
}

func (u *syncUsecase) Connect(userID string, conn *domain.WorkspaceConnection) error {
	conn.UserID = userID
	return u.connections.SaveConnection(conn)
}

func (u *syncUsecase) DeleteStatusesForRecord(userID, collection, localID string) error {
	return u.statuses.DeleteByLocalID(userID, collection, localID)
}

// resolveTarget loads the credential and database link a recovery run needs.
// No local writes have happened yet when either of these fails.
func (u *syncUsecase) resolveTarget(userID, collection string) (token, databaseID string, err error) {
	conn, err := u.connections.FindConnection(userID)
	if err != nil {
		return "", "", err
	}
	if conn == nil || conn.AccessToken == "" {
		return "", "", domain.ErrAuthExpired
	}
	link, err := u.connections.FindLink(userID, collection)
	if err != nil {
		return "", "", err
	}
	if link == nil {
		return "", "", domain.ErrExternalNotFound
	}
	return conn.AccessToken, link.DatabaseID, nil
}

// retrieveAll folds the paginated query into one document list. An aborted
// retrieval is always safely discardable: nothing has been written yet.
func (u *syncUsecase) retrieveAll(ctx context.Context, token, databaseID, collection string) ([]domain.ExternalDocument, error) {
	pager := notion.NewPager(func(ctx context.Context, cursor string) ([]domain.ExternalDocument, string, error) {
		return u.source.FetchPage(ctx, token, databaseID, collection, cursor)
	})
	docs, err := pager.All(ctx)
	if err != nil {
		switch {
		case errors.Is(err, notion.ErrUnauthorized):
			return nil, domain.ErrAuthExpired
		case errors.Is(err, notion.ErrNotFound):
			return nil, domain.ErrExternalNotFound
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			return nil, err
		default:
			return nil, &domain.RetrievalError{Collection: collection, Err: err}
		}
	}
	return docs, nil
}

// applyExternalWins overwrites local records from their external documents
// for pairs where the local side has not changed since last sync. Failures
// are per record and land in the status ledger.
func (u *syncUsecase) applyExternalWins(userID, collection string, pairs []MatchedPair) int {
	schema, _ := recorddomain.SchemaFor(collection)
	applied := 0
	for _, pair := range pairs {
		rec := pair.Local
		rec.Title = pair.External.Title
		if rec.Fields == nil {
			rec.Fields = recorddomain.FieldMap{}
		}
		for _, name := range schema.FieldNames() {
			if v := pair.External.Properties[name]; v != nil {
				rec.Fields[name] = v
			} else {
				delete(rec.Fields, name)
			}
		}

		status := pair.Status
		if status == nil {
			status = &domain.SyncStatus{
				UserID:     userID,
				Collection: collection,
				LocalID:    rec.ID,
			}
		}
		status.MarkPending()
		if err := u.statuses.Upsert(status); err != nil {
			log.Printf("[SyncUsecase] Failed to mark %s pending: %v", rec.ID, err)
		}

		if err := u.records.Update(rec); err != nil {
			log.Printf("[SyncUsecase] Failed to apply external update for %s/%s: %v", collection, rec.ID, err)
			status.MarkFailed(err.Error())
			if uerr := u.statuses.Upsert(status); uerr != nil {
				log.Printf("[SyncUsecase] Failed to persist failure status for %s: %v", rec.ID, uerr)
			}
			continue
		}
		status.MarkSynced(pair.External.ExternalID, rec.UpdatedAt, pair.External.LastEditedAt)
		if err := u.statuses.Upsert(status); err != nil {
			log.Printf("[SyncUsecase] Failed to persist status for %s: %v", rec.ID, err)
			continue
		}
		applied++
	}
	return applied
}

// pushLocalAhead mirrors locally-edited records back to the workspace. Best
// effort: a failed push leaves the pair local-ahead for the next run.
func (u *syncUsecase) pushLocalAhead(ctx context.Context, token, databaseID, collection, userID string, pairs []MatchedPair) {
	if u.writer == nil {
		return
	}
	for _, pair := range pairs {
		externalID := pair.External.ExternalID
		id, err := u.writer.UpsertDocument(ctx, token, databaseID, externalID, collection, pair.Local.Title, pair.Local.Fields)
		if err != nil {
			log.Printf("[SyncUsecase] Failed to push %s/%s to workspace: %v", collection, pair.Local.ID, err)
			continue
		}
		status := pair.Status
		if status == nil {
			status = &domain.SyncStatus{
				UserID:     userID,
				Collection: collection,
				LocalID:    pair.Local.ID,
			}
		}
		status.MarkSynced(id, pair.Local.UpdatedAt, time.Now())
		if err := u.statuses.Upsert(status); err != nil {
			log.Printf("[SyncUsecase] Failed to persist status after push for %s: %v", pair.Local.ID, err)
		}
	}
}

// pushPreferLocal mirrors prefer_local resolutions back to the workspace so
// both stores converge; out of band by contract, so failures only log.
func (u *syncUsecase) pushPreferLocal(ctx context.Context, userID, collection string, conflicts []domain.Conflict, choices []domain.ResolutionChoice) {
	if u.writer == nil {
		return
	}
	token, databaseID, err := u.resolveTarget(userID, collection)
	if err != nil {
		log.Printf("[SyncUsecase] Skipping prefer_local push for %s: %v", collection, err)
		return
	}

	conflictByID := make(map[string]domain.Conflict, len(conflicts))
	for _, c := range conflicts {
		conflictByID[c.ID] = c
	}
	for _, choice := range choices {
		if choice.Strategy != domain.PreferLocal && len(choice.FieldChoices) == 0 {
			continue
		}
		conflict, ok := conflictByID[choice.ConflictID]
		if !ok || conflict.LocalID == "" {
			continue
		}
		rec, err := u.records.FindByID(conflict.LocalID)
		if err != nil || rec == nil || rec.UserID != userID {
			continue
		}
		if _, err := u.writer.UpsertDocument(ctx, token, databaseID, conflict.ExternalID, collection, rec.Title, rec.Fields); err != nil {
			log.Printf("[SyncUsecase] Failed to push resolution for %s/%s: %v", collection, rec.ID, err)
		}
	}
}

func sleepContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
