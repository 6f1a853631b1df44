package favorites

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/campustrade/campustrade-backend/pkg/db"
	"github.com/campustrade/campustrade-backend/pkg/db/models"
	"github.com/campustrade/campustrade-backend/pkg/enums"
	pkgerrors "github.com/campustrade/campustrade-backend/pkg/errors"
	"github.com/campustrade/campustrade-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Item is one bookmarked listing in the user's favorites page.
type Item struct {
	ProductID  uuid.UUID           `json:"product_id"`
	Title      string              `json:"title"`
	Price      decimal.Decimal     `json:"price"`
	Status     enums.ProductStatus `json:"status"`
	CoverImage string              `json:"cover_image,omitempty"`
	CreatedAt  time.Time           `json:"created_at"`
}

// ListResult is one page of favorites.
type ListResult struct {
	Items []Item          `json:"items"`
	Page  pagination.Page `json:"page"`
}

// Service toggles and lists favorites.
type Service struct {
	repo     Repository
	products productFinder
	tx       txRunner
}

// NewService builds the favorites service.
func NewService(repo Repository, products productFinder, tx txRunner) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("favorites repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product finder required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &Service{repo: repo, products: products, tx: tx}, nil
}

// ToggleResult reports the bookmark state and the product's favorite count
// after a toggle.
type ToggleResult struct {
	Favorited bool `json:"favorited"`
	Count     int  `json:"count"`
}

// Toggle flips the bookmark for the user and product pair and keeps the
// product's favorite_count in step. The returned count is read inside the
// same transaction as the adjustment.
func (s *Service) Toggle(ctx context.Context, userID, productID uuid.UUID) (*ToggleResult, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product.IsDeleted {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	var result ToggleResult
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		removed, err := repo.Delete(ctx, userID, productID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove favorite")
		}
		switch {
		case removed > 0:
			result.Favorited = false
			if err := repo.AdjustProductCounter(ctx, productID, -1); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "adjust favorite count")
			}
		default:
			if err := repo.Insert(ctx, userID, productID); err != nil {
				if !db.IsUniqueViolation(err, "favorites_user_product_key") {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert favorite")
				}
				result.Favorited = true
				break
			}
			result.Favorited = true
			if err := repo.AdjustProductCounter(ctx, productID, 1); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "adjust favorite count")
			}
		}

		count, err := repo.ProductCount(ctx, productID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read favorite count")
		}
		result.Count = count
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ListMine returns one page of the user's bookmarks.
func (s *Service) ListMine(ctx context.Context, userID uuid.UUID, page pagination.Params) (*ListResult, error) {
	page = page.Normalize()
	rows, total, err := s.repo.ListByUser(ctx, userID, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list favorites")
	}

	items := make([]Item, 0, len(rows))
	for _, row := range rows {
		item := Item{
			ProductID: row.ID,
			Title:     row.Title,
			Price:     row.Price,
			Status:    row.Status,
			CreatedAt: row.CreatedAt,
		}
		if len(row.Images) > 0 {
			item.CoverImage = row.Images[0]
		}
		items = append(items, item)
	}
	return &ListResult{Items: items, Page: pagination.Build(page, total)}, nil
}
