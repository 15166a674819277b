package repository

import (
	"errors"
	"time"

	"lifehub-backend/internal/record/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// gormRecordRepository implements RecordRepository using GORM
type gormRecordRepository struct {
	db *gorm.DB
}

// NewGormRecordRepository creates a new GORM-based RecordRepository
func NewGormRecordRepository(db *gorm.DB) RecordRepository {
	return &gormRecordRepository{db: db}
}

func (r *gormRecordRepository) Create(record *domain.Record) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.Fields == nil {
		record.Fields = domain.FieldMap{}
	}
	record.CreatedAt = time.Now()
	record.UpdatedAt = time.Now()
	return r.db.Create(record).Error
}

func (r *gormRecordRepository) FindByID(id string) (*domain.Record, error) {
	var record domain.Record
	err := r.db.Where("id = ?", id).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *gormRecordRepository) FindByUserAndCollection(userID, collection string) ([]*domain.Record, error) {
	var records []*domain.Record
	err := r.db.Where("user_id = ? AND collection = ?", userID, collection).
		Order("created_at ASC").Find(&records).Error
	return records, err
}

func (r *gormRecordRepository) Update(record *domain.Record) error {
	record.UpdatedAt = time.Now()
	return r.db.Save(record).Error
}

func (r *gormRecordRepository) Delete(id string) error {
	return r.db.Delete(&domain.Record{}, "id = ?", id).Error
}
