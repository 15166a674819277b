package usecase

import (
	"errors"
	"fmt"
	"log"

	"lifehub-backend/internal/record/domain"
	"lifehub-backend/internal/record/repository"
)

var (
	ErrRecordNotFound    = errors.New("record not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrUnknownCollection = errors.New("unknown collection")
)

// recordUsecase implements RecordUsecase interface
type recordUsecase struct {
	recordRepo    repository.RecordRepository
	statusCleaner StatusCleaner
}

// NewRecordUsecase creates a new instance of recordUsecase
func NewRecordUsecase(recordRepo repository.RecordRepository) RecordUsecase {
	return &recordUsecase{
		recordRepo: recordRepo,
	}
}

func (u *recordUsecase) SetStatusCleaner(cleaner StatusCleaner) {
	u.statusCleaner = cleaner
}

func (u *recordUsecase) CreateRecord(userID, collection, title string, fields domain.FieldMap) (*domain.Record, error) {
	schema, ok := domain.SchemaFor(collection)
	if !ok {
		return nil, ErrUnknownCollection
	}
	if err := validateFields(schema, fields); err != nil {
		return nil, err
	}

	record := &domain.Record{
		UserID:     userID,
		Collection: collection,
		Title:      title,
		Fields:     fields,
	}
	if err := u.recordRepo.Create(record); err != nil {
		return nil, err
	}
	return record, nil
}

func (u *recordUsecase) GetRecordByID(userID, recordID string) (*domain.Record, error) {
	record, err := u.recordRepo.FindByID(recordID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrRecordNotFound
	}
	if record.UserID != userID {
		return nil, ErrUnauthorized
	}
	return record, nil
}

func (u *recordUsecase) GetRecords(userID, collection string) ([]*domain.Record, error) {
	if _, ok := domain.SchemaFor(collection); !ok {
		return nil, ErrUnknownCollection
	}
	return u.recordRepo.FindByUserAndCollection(userID, collection)
}

func (u *recordUsecase) UpdateRecord(userID, recordID string, updates RecordUpdateRequest) (*domain.Record, error) {
	record, err := u.GetRecordByID(userID, recordID)
	if err != nil {
		return nil, err
	}

	schema, _ := domain.SchemaFor(record.Collection)
	if updates.Title != nil {
		record.Title = *updates.Title
	}
	if updates.Fields != nil {
		if err := validateFields(schema, updates.Fields); err != nil {
			return nil, err
		}
		if record.Fields == nil {
			record.Fields = domain.FieldMap{}
		}
		for name, value := range updates.Fields {
			record.Fields[name] = value
		}
	}

	if err := u.recordRepo.Update(record); err != nil {
		return nil, err
	}
	return record, nil
}

func (u *recordUsecase) DeleteRecord(userID, recordID string) error {
	record, err := u.GetRecordByID(userID, recordID)
	if err != nil {
		return err
	}
	if err := u.recordRepo.Delete(record.ID); err != nil {
		return err
	}
	// Sync statuses cascade with the record
	if u.statusCleaner != nil {
		if err := u.statusCleaner.DeleteStatusesForRecord(userID, record.Collection, record.ID); err != nil {
			log.Printf("[RecordUsecase] Failed to clean sync status for record %s: %v", record.ID, err)
		}
	}
	return nil
}

func validateFields(schema domain.Schema, fields domain.FieldMap) error {
	for name := range fields {
		if _, ok := schema.Field(name); !ok {
			return fmt.Errorf("unknown field %q for collection %s", name, schema.Collection)
		}
	}
	return nil
}
