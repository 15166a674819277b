package repository

import (
	"errors"
	"time"

	"lifehub-backend/internal/sync/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// gormSyncStatusRepository implements SyncStatusRepository using GORM
type gormSyncStatusRepository struct {
	db *gorm.DB
}

// NewGormSyncStatusRepository creates a new GORM-based SyncStatusRepository
func NewGormSyncStatusRepository(db *gorm.DB) SyncStatusRepository {
	return &gormSyncStatusRepository{db: db}
}

func (r *gormSyncStatusRepository) Upsert(status *domain.SyncStatus) error {
	existing, err := r.FindByLocalID(status.UserID, status.Collection, status.LocalID)
	if err != nil {
		return err
	}
	status.UpdatedAt = time.Now()
	if existing == nil {
		if status.ID == "" {
			status.ID = uuid.New().String()
		}
		status.CreatedAt = time.Now()
		return r.db.Create(status).Error
	}
	status.ID = existing.ID
	status.CreatedAt = existing.CreatedAt
	return r.db.Save(status).Error
}

func (r *gormSyncStatusRepository) FindByUserAndCollection(userID, collection string) ([]*domain.SyncStatus, error) {
	var statuses []*domain.SyncStatus
	err := r.db.Where("user_id = ? AND collection = ?", userID, collection).
		Order("updated_at DESC").Find(&statuses).Error
	return statuses, err
}

func (r *gormSyncStatusRepository) FindByLocalID(userID, collection, localID string) (*domain.SyncStatus, error) {
	var status domain.SyncStatus
	err := r.db.Where("user_id = ? AND collection = ? AND local_id = ?", userID, collection, localID).
		First(&status).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &status, nil
}

func (r *gormSyncStatusRepository) DeleteByLocalID(userID, collection, localID string) error {
	return r.db.Where("user_id = ? AND collection = ? AND local_id = ?", userID, collection, localID).
		Delete(&domain.SyncStatus{}).Error
}
