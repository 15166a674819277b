package repository

import (
	"errors"
	"time"

	"lifehub-backend/internal/sync/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// gormConnectionRepository implements ConnectionRepository using GORM
type gormConnectionRepository struct {
	db *gorm.DB
}

// NewGormConnectionRepository creates a new GORM-based ConnectionRepository
func NewGormConnectionRepository(db *gorm.DB) ConnectionRepository {
	return &gormConnectionRepository{db: db}
}

func (r *gormConnectionRepository) SaveConnection(conn *domain.WorkspaceConnection) error {
	existing, err := r.FindConnection(conn.UserID)
	if err != nil {
		return err
	}
	conn.UpdatedAt = time.Now()
	if existing == nil {
		conn.CreatedAt = time.Now()
		return r.db.Create(conn).Error
	}
	conn.CreatedAt = existing.CreatedAt
	return r.db.Save(conn).Error
}

func (r *gormConnectionRepository) FindConnection(userID string) (*domain.WorkspaceConnection, error) {
	var conn domain.WorkspaceConnection
	err := r.db.Where("user_id = ?", userID).First(&conn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conn, nil
}

func (r *gormConnectionRepository) SaveLink(link *domain.CollectionLink) error {
	existing, err := r.FindLink(link.UserID, link.Collection)
	if err != nil {
		return err
	}
	link.UpdatedAt = time.Now()
	if existing == nil {
		if link.ID == "" {
			link.ID = uuid.New().String()
		}
		link.CreatedAt = time.Now()
		return r.db.Create(link).Error
	}
	link.ID = existing.ID
	link.CreatedAt = existing.CreatedAt
	return r.db.Save(link).Error
}

func (r *gormConnectionRepository) FindLink(userID, collection string) (*domain.CollectionLink, error) {
	var link domain.CollectionLink
	err := r.db.Where("user_id = ? AND collection = ?", userID, collection).First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &link, nil
}

func (r *gormConnectionRepository) FindLinks(userID string) ([]*domain.CollectionLink, error) {
	var links []*domain.CollectionLink
	err := r.db.Where("user_id = ?", userID).Find(&links).Error
	return links, err
}
