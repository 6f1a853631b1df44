package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campustrade/campustrade-backend/pkg/db/models"
	"github.com/campustrade/campustrade-backend/pkg/pagination"
)

// Repository defines persistence operations for trade orders.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByProductOpen(ctx context.Context, productID uuid.UUID) (*models.Order, error)
	TransitionFromPending(ctx context.Context, id uuid.UUID, updates map[string]any) (bool, error)
	ListByBuyer(ctx context.Context, buyerID uuid.UUID, filter ListFilter) ([]models.Order, int64, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID, filter ListFilter) ([]models.Order, int64, error)
}

// ProductStateStore flips listing status as the order lifecycle moves.
// Claim is the concurrency gate: only one pending order can hold a listing.
type ProductStateStore interface {
	Claim(ctx context.Context, tx *gorm.DB, productID uuid.UUID) (bool, error)
	Release(ctx context.Context, tx *gorm.DB, productID uuid.UUID) error
	MarkSold(ctx context.Context, tx *gorm.DB, productID uuid.UUID) error
}

// CreditAdjuster applies the completion rewards inside the transaction.
type CreditAdjuster interface {
	ApplyClamped(ctx context.Context, tx *gorm.DB, userID uuid.UUID, delta int) error
}

// ListFilter narrows an order history page.
type ListFilter struct {
	Status *string
	Page   pagination.Params
}
