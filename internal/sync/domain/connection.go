package domain

import "time"

// WorkspaceConnection stores a user's Notion integration credential. Token
// acquisition happens through OAuth at the delivery layer; the sync engine
// only reads the access token.
type WorkspaceConnection struct {
	UserID        string    `json:"user_id" gorm:"primaryKey"`
	AccessToken   string    `json:"-" gorm:"not null"`
	WorkspaceID   string    `json:"workspace_id"`
	WorkspaceName string    `json:"workspace_name"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CollectionLink attaches one collection to the Notion database that mirrors
// it. Recovery for an unlinked collection fails with ErrExternalNotFound.
type CollectionLink struct {
	ID         string    `json:"id" gorm:"primaryKey"`
	UserID     string    `json:"user_id" gorm:"uniqueIndex:idx_collection_link;not null"`
	Collection string    `json:"collection" gorm:"uniqueIndex:idx_collection_link;not null"`
	DatabaseID string    `json:"database_id" gorm:"not null"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
