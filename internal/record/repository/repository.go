package repository

import (
	"lifehub-backend/internal/record/domain"
)

// RecordRepository defines the interface for record data access
type RecordRepository interface {
	// Create creates a new record
	Create(record *domain.Record) error

	// FindByID finds a record by its ID
	FindByID(id string) (*domain.Record, error)

	// FindByUserAndCollection returns all records of one collection for a user
	FindByUserAndCollection(userID, collection string) ([]*domain.Record, error)

	// Update updates an existing record
	Update(record *domain.Record) error

	// Delete deletes a record by ID
	Delete(id string) error
}
