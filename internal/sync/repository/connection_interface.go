package repository

import (
	"lifehub-backend/internal/sync/domain"
)

// ConnectionRepository defines the interface for workspace connection and
// collection link data access
type ConnectionRepository interface {
	// SaveConnection stores or replaces the user's workspace credential
	SaveConnection(conn *domain.WorkspaceConnection) error

	// FindConnection returns the user's connection, nil when not connected
	FindConnection(userID string) (*domain.WorkspaceConnection, error)

	// SaveLink stores or replaces a collection's database link
	SaveLink(link *domain.CollectionLink) error

	// FindLink returns one collection's link, nil when unlinked
	FindLink(userID, collection string) (*domain.CollectionLink, error)

	// FindLinks returns all links of a user
	FindLinks(userID string) ([]*domain.CollectionLink, error)
}
