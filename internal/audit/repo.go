package audit

import (
	"context"

	"gorm.io/gorm"

	"github.com/campustrade/campustrade-backend/pkg/db/models"
)

// Repository persists append-only audit rows.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an audit repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Insert writes a single audit row.
func (r *Repository) Insert(ctx context.Context, entry *models.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListRecent returns the newest audit rows up to limit.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]models.AuditLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []models.AuditLog
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
