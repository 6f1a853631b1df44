package messages

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campustrade/campustrade-backend/pkg/db/models"
	"github.com/campustrade/campustrade-backend/pkg/pagination"
)

// Repository defines persistence operations for direct messages.
type Repository interface {
	Insert(ctx context.Context, message *models.Message) error
	Conversation(ctx context.Context, userID, otherID uuid.UUID, page pagination.Params) ([]models.Message, int64, error)
	MarkRead(ctx context.Context, userID, otherID uuid.UUID) (int64, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a messages repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Insert(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

// Conversation returns one page of the two-party thread, newest first.
func (r *repository) Conversation(ctx context.Context, userID, otherID uuid.UUID, page pagination.Params) ([]models.Message, int64, error) {
	base := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userID, otherID, otherID, userID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Message
	err := base.
		Order("created_at DESC").
		Offset(page.Offset()).
		Limit(page.Limit()).
		Find(&rows).Error
	return rows, total, err
}

// MarkRead flags every message the other party sent to the user as read.
func (r *repository) MarkRead(ctx context.Context, userID, otherID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("receiver_id = ? AND sender_id = ? AND is_read = ?", userID, otherID, false).
		UpdateColumn("is_read", true)
	return res.RowsAffected, res.Error
}

func (r *repository) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("receiver_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}
