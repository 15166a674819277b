package usecase

import (
	"lifehub-backend/internal/record/domain"
)

// RecordUsecase defines the interface for record business logic
type RecordUsecase interface {
	// CreateRecord creates a new record in a collection
	CreateRecord(userID, collection, title string, fields domain.FieldMap) (*domain.Record, error)

	// GetRecordByID retrieves a record by ID (with ownership check)
	GetRecordByID(userID, recordID string) (*domain.Record, error)

	// GetRecords retrieves all records of a collection for a user
	GetRecords(userID, collection string) ([]*domain.Record, error)

	// UpdateRecord updates an existing record
	UpdateRecord(userID, recordID string, updates RecordUpdateRequest) (*domain.Record, error)

	// DeleteRecord deletes a record and its sync bookkeeping
	DeleteRecord(userID, recordID string) error

	// SetStatusCleaner sets the collaborator that drops sync statuses when a
	// record is deleted
	SetStatusCleaner(cleaner StatusCleaner)
}

// RecordUpdateRequest represents the fields that can be updated
type RecordUpdateRequest struct {
	Title  *string         `json:"title,omitempty"`
	Fields domain.FieldMap `json:"fields,omitempty"`
}

// StatusCleaner removes sync statuses for a deleted record
type StatusCleaner interface {
	DeleteStatusesForRecord(userID, collection, localID string) error
}
