package usecase

import (
	"context"

	"lifehub-backend/internal/sync/domain"
)

// SyncUsecase defines the interface for the recovery workflow business logic
type SyncUsecase interface {
	// StartRecovery runs retrieval, matching and detection for one collection.
	// The run either completes (auto-resolve or nothing to resolve) or comes
	// back awaiting_resolution carrying the conflict snapshot.
	StartRecovery(ctx context.Context, userID, collection string, autoResolve bool) (*domain.RecoveryRun, error)

	// RecoverAll runs StartRecovery sequentially over every collection with a
	// rate-limit delay in between, reporting succeeded, failed and skipped
	// collections distinctly.
	RecoverAll(ctx context.Context, userID string, autoResolve bool) (*domain.RecoverAllResult, error)

	// SubmitResolutions applies the caller's decisions against the conflict
	// snapshot it echoed back from a prior StartRecovery.
	SubmitResolutions(ctx context.Context, userID, collection string, conflicts []domain.Conflict, choices []domain.ResolutionChoice) (*domain.ApplyResult, error)

	// ListStatuses returns the sync ledger of one collection
	ListStatuses(userID, collection string) ([]*domain.SyncStatus, error)

	// ListCollections reports each known collection and its link state
	ListCollections(userID string) ([]CollectionInfo, error)

	// LinkCollection attaches a Notion database to a collection
	LinkCollection(userID, collection, databaseID string) error

	// Connect stores the user's workspace credential
	Connect(userID string, conn *domain.WorkspaceConnection) error

	// DeleteStatusesForRecord drops sync bookkeeping for a deleted record
	DeleteStatusesForRecord(userID, collection, localID string) error
}

// CollectionInfo describes one collection's link state for the caller UI.
type CollectionInfo struct {
	Collection string `json:"collection"`
	Linked     bool   `json:"linked"`
	DatabaseID string `json:"database_id,omitempty"`
}

// DocumentSource retrieves one page of external documents, decoded to the
// collection's shared-field shape. Retrieval must be idempotent and
// restartable from an empty cursor.
type DocumentSource interface {
	FetchPage(ctx context.Context, token, databaseID, collection, cursor string) (docs []domain.ExternalDocument, nextCursor string, err error)
}

// DocumentWriter pushes one local record out to the workspace. Used
// best-effort for prefer_local resolutions and local-ahead pairs; never part
// of the apply transaction.
type DocumentWriter interface {
	UpsertDocument(ctx context.Context, token, databaseID, externalID, collection, title string, fields map[string]any) (string, error)
}
