package repository

import (
	"lifehub-backend/internal/sync/domain"
)

// SyncStatusRepository defines the interface for sync status data access
type SyncStatusRepository interface {
	// Upsert inserts or updates the status for (user, collection, local record)
	Upsert(status *domain.SyncStatus) error

	// FindByUserAndCollection returns the status ledger of one collection
	FindByUserAndCollection(userID, collection string) ([]*domain.SyncStatus, error)

	// FindByLocalID returns the status of one record, nil when absent
	FindByLocalID(userID, collection, localID string) (*domain.SyncStatus, error)

	// DeleteByLocalID removes the status of one record (record deletion cascade)
	DeleteByLocalID(userID, collection, localID string) error
}
