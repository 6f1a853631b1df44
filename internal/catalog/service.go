package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/campustrade/campustrade-backend/internal/audit"
	"github.com/campustrade/campustrade-backend/pkg/db/models"
	"github.com/campustrade/campustrade-backend/pkg/enums"
	pkgerrors "github.com/campustrade/campustrade-backend/pkg/errors"
	"github.com/campustrade/campustrade-backend/pkg/pagination"
)

const maxImagesPerListing = 9
const moreFromSellerLimit = 4

type repository interface {
	Create(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context, filter ListFilter) ([]models.Product, int64, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID, page pagination.Params) ([]models.Product, int64, error)
	OthersBySeller(ctx context.Context, sellerID, excludeID uuid.UUID, limit int) ([]models.Product, error)
	IncrementViewCount(ctx context.Context, id uuid.UUID) error
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	SoftDelete(ctx context.Context, id, sellerID uuid.UUID) (int64, error)
}

type categoryFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
}

type userFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type favoriteChecker interface {
	IsFavorited(ctx context.Context, userID, productID uuid.UUID) (bool, error)
}

type auditRecorder interface {
	Record(ctx context.Context, entry audit.Entry)
}

// Service implements listing browse and lifecycle operations.
type Service struct {
	repo       repository
	categories categoryFinder
	users      userFinder
	favorites  favoriteChecker
	audit      auditRecorder
	pageSize   int
}

// NewService builds the catalog service.
func NewService(repo repository, categories categoryFinder, users userFinder, favorites favoriteChecker, auditSvc auditRecorder, pageSize int) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if categories == nil {
		return nil, fmt.Errorf("category finder required")
	}
	if users == nil {
		return nil, fmt.Errorf("user finder required")
	}
	if favorites == nil {
		return nil, fmt.Errorf("favorite checker required")
	}
	if pageSize <= 0 {
		pageSize = pagination.DefaultPageSize
	}
	return &Service{
		repo:       repo,
		categories: categories,
		users:      users,
		favorites:  favorites,
		audit:      auditSvc,
		pageSize:   pageSize,
	}, nil
}

// List returns one browse page of live listings.
func (s *Service) List(ctx context.Context, filter ListFilter) (*ListResult, error) {
	if filter.Page.PageSize <= 0 {
		filter.Page.PageSize = s.pageSize
	}
	filter.Page = filter.Page.Normalize()

	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	items := make([]ListItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, listItemFromModel(row))
	}
	return &ListResult{
		Items: items,
		Page:  pagination.Build(filter.Page, total),
	}, nil
}

// Get loads a listing detail, bumps its view counter, and resolves the
// viewer-dependent favorited flag. viewerID may be uuid.Nil for guests.
func (s *Service) Get(ctx context.Context, id, viewerID uuid.UUID) (*Detail, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product.IsDeleted {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	if err := s.repo.IncrementViewCount(ctx, id); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "bump view count")
	}
	product.ViewCount++

	seller, err := s.users.FindByID(ctx, product.SellerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seller")
	}

	favorited := false
	if viewerID != uuid.Nil {
		favorited, err = s.favorites.IsFavorited(ctx, viewerID, id)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check favorite")
		}
	}

	others, err := s.repo.OthersBySeller(ctx, product.SellerID, id, moreFromSellerLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seller listings")
	}
	more := make([]ListItem, 0, len(others))
	for _, other := range others {
		more = append(more, listItemFromModel(other))
	}

	return &Detail{
		ID:            product.ID,
		Title:         product.Title,
		Description:   product.Description,
		Price:         product.Price,
		OriginalPrice: product.OriginalPrice,
		CategoryID:    product.CategoryID,
		Condition:     product.Condition,
		Status:        product.Status,
		ViewCount:     product.ViewCount,
		FavoriteCount: product.FavoriteCount,
		TradeLocation: product.TradeLocation,
		Images:        []string(product.Images),
		CreatedAt:     product.CreatedAt,
		Seller: SellerSummary{
			ID:          seller.ID,
			Username:    seller.Username,
			AvatarPath:  seller.AvatarPath,
			CreditScore: seller.CreditScore,
		},
		Favorited:      favorited,
		MoreFromSeller: more,
	}, nil
}

// Publish creates a new available listing for the seller.
func (s *Service) Publish(ctx context.Context, sellerID uuid.UUID, input PublishInput) (*models.Product, error) {
	if sellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if err := validatePublishInput(input); err != nil {
		return nil, err
	}

	if _, err := s.categories.FindByID(ctx, input.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown category")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}

	product := &models.Product{
		Title:         input.Title,
		Description:   input.Description,
		Price:         input.Price,
		OriginalPrice: input.OriginalPrice,
		CategoryID:    input.CategoryID,
		SellerID:      sellerID,
		Condition:     input.Condition,
		Status:        enums.ProductStatusAvailable,
		TradeLocation: input.TradeLocation,
		Images:        pq.StringArray(input.Images),
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}

	s.record(ctx, sellerID, enums.AuditActionPublishProduct, product.ID,
		fmt.Sprintf("product %q published", product.Title))
	return product, nil
}

// Update edits the seller's own available listing.
func (s *Service) Update(ctx context.Context, sellerID, productID uuid.UUID, input UpdateInput) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product.IsDeleted {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if product.SellerID != sellerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "listing belongs to another seller")
	}
	if product.Status != enums.ProductStatusAvailable {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only available listings can be edited")
	}

	updates := map[string]any{}
	if input.Title != nil {
		if *input.Title == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "title must not be empty")
		}
		updates["title"] = *input.Title
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Price != nil {
		if input.Price.Sign() <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
		}
		updates["price"] = *input.Price
	}
	if input.OriginalPrice != nil {
		updates["original_price"] = *input.OriginalPrice
	}
	if input.CategoryID != nil {
		if _, err := s.categories.FindByID(ctx, *input.CategoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown category")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
		}
		updates["category_id"] = *input.CategoryID
	}
	if input.Condition != nil {
		if !input.Condition.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid condition")
		}
		updates["condition"] = *input.Condition
	}
	if input.TradeLocation != nil {
		updates["trade_location"] = *input.TradeLocation
	}
	if input.Images != nil {
		if len(input.Images) > maxImagesPerListing {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "too many images")
		}
		updates["images"] = pq.StringArray(input.Images)
	}

	if len(updates) > 0 {
		if err := s.repo.Update(ctx, productID, updates); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
		}
	}
	return s.repo.FindByID(ctx, productID)
}

// ListMine returns the seller's own listings page.
func (s *Service) ListMine(ctx context.Context, sellerID uuid.UUID, page pagination.Params) (*ListResult, error) {
	if page.PageSize <= 0 {
		page.PageSize = s.pageSize
	}
	page = page.Normalize()

	rows, total, err := s.repo.ListBySeller(ctx, sellerID, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list seller products")
	}
	items := make([]ListItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, listItemFromModel(row))
	}
	return &ListResult{Items: items, Page: pagination.Build(page, total)}, nil
}

// Delete soft-removes the seller's own available listing. Rows claimed by
// an open order stay put because the guard checks the status column.
func (s *Service) Delete(ctx context.Context, sellerID, productID uuid.UUID) error {
	affected, err := s.repo.SoftDelete(ctx, productID, sellerID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	if affected == 1 {
		s.record(ctx, sellerID, enums.AuditActionDeleteProduct, productID, "product removed")
		return nil
	}

	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product.IsDeleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if product.SellerID != sellerID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "listing belongs to another seller")
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict, "only available listings can be removed")
}

func (s *Service) record(ctx context.Context, actorID uuid.UUID, action enums.AuditAction, productID uuid.UUID, description string) {
	if s.audit == nil {
		return
	}
	actor := actorID
	record := productID
	s.audit.Record(ctx, audit.Entry{
		UserID:      &actor,
		Action:      action,
		TableName:   "products",
		RecordID:    &record,
		Description: description,
	})
}

func validatePublishInput(input PublishInput) error {
	if input.Title == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if input.Description == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "description is required")
	}
	if input.Price.Sign() <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}
	if input.OriginalPrice != nil && input.OriginalPrice.Cmp(decimal.Zero) < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "original price must not be negative")
	}
	if input.CategoryID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "category is required")
	}
	if !input.Condition.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid condition")
	}
	if len(input.Images) > maxImagesPerListing {
		return pkgerrors.New(pkgerrors.CodeValidation, "too many images")
	}
	return nil
}
