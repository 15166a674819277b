package domain

import "time"

// SyncState is the per-record sync state machine.
type SyncState string

const (
	SyncStateUnsynced SyncState = "unsynced"
	SyncStatePending  SyncState = "pending"
	SyncStateSynced   SyncState = "synced"
	SyncStateFailed   SyncState = "failed"
)

// SyncStatus is the per-(collection, record) sync ledger entry. ExternalID is
// set on first successful sync and must be non-nil whenever State is synced.
// LocalSyncedAt and ExternalSyncedAt record each side's last-modified
// timestamp at the moment of the last successful sync; conflict detection
// compares against these to decide which sides changed since.
type SyncStatus struct {
	ID               string     `json:"id" gorm:"primaryKey"`
	UserID           string     `json:"user_id" gorm:"index;not null"`
	Collection       string     `json:"collection" gorm:"uniqueIndex:idx_sync_status_record;not null"`
	LocalID          string     `json:"local_id" gorm:"uniqueIndex:idx_sync_status_record;not null"`
	ExternalID       *string    `json:"external_id,omitempty" gorm:"index"`
	State            SyncState  `json:"state" gorm:"default:unsynced"`
	LastError        *string    `json:"last_error,omitempty"`
	LocalSyncedAt    *time.Time `json:"local_synced_at,omitempty"`
	ExternalSyncedAt *time.Time `json:"external_synced_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// MarkPending records that an apply attempt is in flight. Written before the
// record store is touched, so an interrupted apply leaves pending rather than
// a stale synced.
func (s *SyncStatus) MarkPending() {
	s.State = SyncStatePending
}

// MarkSynced records a successful sync against the given external document
// identity and both sides' timestamps.
func (s *SyncStatus) MarkSynced(externalID string, localAt, externalAt time.Time) {
	s.ExternalID = &externalID
	s.State = SyncStateSynced
	s.LastError = nil
	s.LocalSyncedAt = &localAt
	s.ExternalSyncedAt = &externalAt
}

// MarkFailed records a failed sync attempt without touching the linkage or
// the last-success timestamps.
func (s *SyncStatus) MarkFailed(message string) {
	s.State = SyncStateFailed
	s.LastError = &message
}
