package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campustrade/campustrade-backend/pkg/db/models"
	"github.com/campustrade/campustrade-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByProductOpen returns the pending order holding the product, if any.
func (r *repository) FindByProductOpen(ctx context.Context, productID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND status = ?", productID, enums.OrderStatusPending).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// TransitionFromPending moves the order out of pending. The status guard
// keeps racing cancel/complete calls from both committing; the loser sees
// zero rows.
func (r *repository) TransitionFromPending(ctx context.Context, id uuid.UUID, updates map[string]any) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", id, enums.OrderStatusPending).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) listSide(ctx context.Context, column string, userID uuid.UUID, filter ListFilter) ([]models.Order, int64, error) {
	base := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where(column+" = ?", userID)
	if filter.Status != nil {
		base = base.Where("status = ?", *filter.Status)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Order
	err := base.
		Order("created_at DESC").
		Offset(filter.Page.Offset()).
		Limit(filter.Page.Limit()).
		Find(&rows).Error
	return rows, total, err
}

func (r *repository) ListByBuyer(ctx context.Context, buyerID uuid.UUID, filter ListFilter) ([]models.Order, int64, error) {
	return r.listSide(ctx, "buyer_id", buyerID, filter)
}

func (r *repository) ListBySeller(ctx context.Context, sellerID uuid.UUID, filter ListFilter) ([]models.Order, int64, error) {
	return r.listSide(ctx, "seller_id", sellerID, filter)
}

type productStateStore struct{}

// NewProductStateStore exposes the default listing state store.
func NewProductStateStore() ProductStateStore {
	return productStateStore{}
}

// Claim flips an available listing to reserved. The conditional guard makes
// concurrent buyers race on a single row update; exactly one wins.
func (productStateStore) Claim(ctx context.Context, tx *gorm.DB, productID uuid.UUID) (bool, error) {
	res := tx.WithContext(ctx).Exec(`
		UPDATE products
		SET status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = ? AND is_deleted = ?
	`, enums.ProductStatusReserved, productID, enums.ProductStatusAvailable, false)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Release returns a reserved listing to the open catalog.
func (productStateStore) Release(ctx context.Context, tx *gorm.DB, productID uuid.UUID) error {
	return tx.WithContext(ctx).Exec(`
		UPDATE products
		SET status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = ?
	`, enums.ProductStatusAvailable, productID, enums.ProductStatusReserved).Error
}

// MarkSold finalizes the listing after its order completes.
func (productStateStore) MarkSold(ctx context.Context, tx *gorm.DB, productID uuid.UUID) error {
	return tx.WithContext(ctx).Exec(`
		UPDATE products
		SET status = ?, sold_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = ?
	`, enums.ProductStatusSold, productID, enums.ProductStatusReserved).Error
}
