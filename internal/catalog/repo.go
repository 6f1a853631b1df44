package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campustrade/campustrade-backend/pkg/db/models"
	"github.com/campustrade/campustrade-backend/pkg/enums"
	"github.com/campustrade/campustrade-backend/pkg/pagination"
)

// Repository persists listings.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a catalog repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new listing.
func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// FindByID loads a listing by id, soft-deleted rows included. Callers
// decide visibility.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *Repository) browseQuery(ctx context.Context, filter ListFilter) *gorm.DB {
	q := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("is_deleted = ?", false).
		Where("status = ?", enums.ProductStatusAvailable)

	if filter.CategoryID != nil {
		q = q.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.Keyword != "" {
		// LOWER + LIKE works on both postgres and sqlite.
		pattern := "%" + strings.ToLower(filter.Keyword) + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	if filter.MinPrice != nil {
		q = q.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		q = q.Where("price <= ?", *filter.MaxPrice)
	}
	return q
}

// List returns one browse page of live listings plus the total row count.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]models.Product, int64, error) {
	var total int64
	if err := r.browseQuery(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "created_at DESC"
	switch filter.Sort {
	case SortPriceAsc:
		order = "price ASC, created_at DESC"
	case SortPriceDesc:
		order = "price DESC, created_at DESC"
	case SortPopular:
		order = "view_count DESC, created_at DESC"
	}

	var rows []models.Product
	err := r.browseQuery(ctx, filter).
		Order(order).
		Offset(filter.Page.Offset()).
		Limit(filter.Page.Limit()).
		Find(&rows).Error
	return rows, total, err
}

// ListBySeller returns the seller's own listings, newest first, deleted
// rows excluded.
func (r *Repository) ListBySeller(ctx context.Context, sellerID uuid.UUID, page pagination.Params) ([]models.Product, int64, error) {
	base := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("seller_id = ? AND is_deleted = ?", sellerID, false)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Product
	err := base.
		Order("created_at DESC").
		Offset(page.Offset()).
		Limit(page.Limit()).
		Find(&rows).Error
	return rows, total, err
}

// OthersBySeller returns up to limit other live listings from the same
// seller, excluding the given listing.
func (r *Repository) OthersBySeller(ctx context.Context, sellerID, excludeID uuid.UUID, limit int) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Where("seller_id = ? AND id <> ? AND is_deleted = ? AND status = ?",
			sellerID, excludeID, false, enums.ProductStatusAvailable).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// IncrementViewCount bumps the listing's view counter atomically.
func (r *Repository) IncrementViewCount(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

// Update applies column updates to the listing.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// SoftDelete marks the seller's listing deleted. The conditional guards
// keep sold or reserved listings and other sellers' rows untouched; the
// returned count tells the caller whether the delete applied.
func (r *Repository) SoftDelete(ctx context.Context, id, sellerID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND seller_id = ? AND status = ? AND is_deleted = ?",
			id, sellerID, enums.ProductStatusAvailable, false).
		UpdateColumn("is_deleted", true)
	return res.RowsAffected, res.Error
}
