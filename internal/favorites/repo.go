package favorites

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campustrade/campustrade-backend/pkg/db/models"
	"github.com/campustrade/campustrade-backend/pkg/pagination"
)

// Repository defines persistence operations for favorite bookmarks.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	IsFavorited(ctx context.Context, userID, productID uuid.UUID) (bool, error)
	Insert(ctx context.Context, userID, productID uuid.UUID) error
	Delete(ctx context.Context, userID, productID uuid.UUID) (int64, error)
	AdjustProductCounter(ctx context.Context, productID uuid.UUID, delta int) error
	ProductCount(ctx context.Context, productID uuid.UUID) (int, error)
	ListByUser(ctx context.Context, userID uuid.UUID, page pagination.Params) ([]models.Product, int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a favorites repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) IsFavorited(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Favorite{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) Insert(ctx context.Context, userID, productID uuid.UUID) error {
	return r.db.WithContext(ctx).Create(&models.Favorite{
		UserID:    userID,
		ProductID: productID,
	}).Error
}

func (r *repository) Delete(ctx context.Context, userID, productID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.Favorite{})
	return res.RowsAffected, res.Error
}

// AdjustProductCounter moves the product's favorite_count by delta without
// letting it drop below zero.
func (r *repository) AdjustProductCounter(ctx context.Context, productID uuid.UUID, delta int) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("favorite_count", gorm.Expr(
			"CASE WHEN favorite_count + ? < 0 THEN 0 ELSE favorite_count + ? END", delta, delta,
		)).Error
}

// ProductCount reads the product's current favorite_count.
func (r *repository) ProductCount(ctx context.Context, productID uuid.UUID) (int, error) {
	var count int
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		Select("favorite_count").
		Scan(&count).Error
	return count, err
}

// ListByUser returns one page of the user's bookmarked products, newest
// bookmark first.
func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, page pagination.Params) ([]models.Product, int64, error) {
	base := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Joins("JOIN favorites ON favorites.product_id = products.id").
		Where("favorites.user_id = ? AND products.is_deleted = ?", userID, false)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Product
	err := base.
		Order("favorites.created_at DESC").
		Offset(page.Offset()).
		Limit(page.Limit()).
		Select("products.*").
		Find(&rows).Error
	return rows, total, err
}
