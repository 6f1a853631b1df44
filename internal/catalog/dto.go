package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/campustrade/campustrade-backend/pkg/db/models"
	"github.com/campustrade/campustrade-backend/pkg/enums"
	"github.com/campustrade/campustrade-backend/pkg/pagination"
)

// PublishInput carries the fields a seller provides for a new listing.
type PublishInput struct {
	Title         string
	Description   string
	Price         decimal.Decimal
	OriginalPrice *decimal.Decimal
	CategoryID    uuid.UUID
	Condition     enums.ProductCondition
	TradeLocation *string
	Images        []string
}

// UpdateInput carries the mutable listing fields. Nil means keep.
type UpdateInput struct {
	Title         *string
	Description   *string
	Price         *decimal.Decimal
	OriginalPrice *decimal.Decimal
	CategoryID    *uuid.UUID
	Condition     *enums.ProductCondition
	TradeLocation *string
	Images        []string
}

// ListFilter narrows the browse query.
type ListFilter struct {
	CategoryID *uuid.UUID
	Keyword    string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	Sort       ListSort
	Page       pagination.Params
}

// ListSort names the supported browse orderings.
type ListSort string

const (
	SortNewest    ListSort = "newest"
	SortPriceAsc  ListSort = "price_asc"
	SortPriceDesc ListSort = "price_desc"
	SortPopular   ListSort = "popular"
)

// ListItem is the browse-grid projection of a listing.
type ListItem struct {
	ID            uuid.UUID              `json:"id"`
	Title         string                 `json:"title"`
	Price         decimal.Decimal        `json:"price"`
	OriginalPrice *decimal.Decimal       `json:"original_price,omitempty"`
	Condition     enums.ProductCondition `json:"condition"`
	Status        enums.ProductStatus    `json:"status"`
	CoverImage    string                 `json:"cover_image,omitempty"`
	ViewCount     int                    `json:"view_count"`
	FavoriteCount int                    `json:"favorite_count"`
	CreatedAt     time.Time              `json:"created_at"`
}

// ListResult is one page of the browse grid.
type ListResult struct {
	Items []ListItem      `json:"items"`
	Page  pagination.Page `json:"page"`
}

// SellerSummary is the embedded seller card on a listing detail.
type SellerSummary struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	AvatarPath  string    `json:"avatar_path"`
	CreditScore int       `json:"credit_score"`
}

// Detail is the full listing view.
type Detail struct {
	ID             uuid.UUID              `json:"id"`
	Title          string                 `json:"title"`
	Description    string                 `json:"description"`
	Price          decimal.Decimal        `json:"price"`
	OriginalPrice  *decimal.Decimal       `json:"original_price,omitempty"`
	CategoryID     uuid.UUID              `json:"category_id"`
	Condition      enums.ProductCondition `json:"condition"`
	Status         enums.ProductStatus    `json:"status"`
	ViewCount      int                    `json:"view_count"`
	FavoriteCount  int                    `json:"favorite_count"`
	TradeLocation  *string                `json:"trade_location,omitempty"`
	Images         []string               `json:"images"`
	CreatedAt      time.Time              `json:"created_at"`
	Seller         SellerSummary          `json:"seller"`
	Favorited      bool                   `json:"favorited"`
	MoreFromSeller []ListItem             `json:"more_from_seller"`
}

func listItemFromModel(p models.Product) ListItem {
	item := ListItem{
		ID:            p.ID,
		Title:         p.Title,
		Price:         p.Price,
		OriginalPrice: p.OriginalPrice,
		Condition:     p.Condition,
		Status:        p.Status,
		ViewCount:     p.ViewCount,
		FavoriteCount: p.FavoriteCount,
		CreatedAt:     p.CreatedAt,
	}
	if len(p.Images) > 0 {
		item.CoverImage = p.Images[0]
	}
	return item
}
