package reviews

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campustrade/campustrade-backend/pkg/db/models"
	"github.com/campustrade/campustrade-backend/pkg/pagination"
)

// ReviewerRow joins a review with its author's public identity.
type ReviewerRow struct {
	models.Review
	ReviewerUsername string
	ReviewerAvatar   string
}

// Repository defines persistence operations for order reviews.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Insert(ctx context.Context, review *models.Review) error
	ExistsForOrder(ctx context.Context, orderID uuid.UUID) (bool, error)
	ListForReviewee(ctx context.Context, revieweeID uuid.UUID, page pagination.Params) ([]ReviewerRow, int64, error)
	AverageRatingFor(ctx context.Context, revieweeID uuid.UUID) (float64, int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a reviews repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Insert(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Create(review).Error
}

func (r *repository) ExistsForOrder(ctx context.Context, orderID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("order_id = ?", orderID).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) ListForReviewee(ctx context.Context, revieweeID uuid.UUID, page pagination.Params) ([]ReviewerRow, int64, error) {
	base := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("reviews.reviewee_id = ?", revieweeID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []ReviewerRow
	err := base.
		Joins("JOIN users ON users.id = reviews.reviewer_id").
		Select("reviews.*, users.username AS reviewer_username, users.avatar_path AS reviewer_avatar").
		Order("reviews.created_at DESC").
		Offset(page.Offset()).
		Limit(page.Limit()).
		Scan(&rows).Error
	return rows, total, err
}

func (r *repository) AverageRatingFor(ctx context.Context, revieweeID uuid.UUID) (float64, int64, error) {
	var out struct {
		Avg   float64
		Count int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("reviewee_id = ?", revieweeID).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS count").
		Scan(&out).Error
	return out.Avg, out.Count, err
}
