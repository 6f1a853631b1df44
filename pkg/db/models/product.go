package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/campustrade/campustrade-backend/pkg/enums"
)

// Product represents a second-hand listing. Status transitions happen only
// through the order engine or an explicit seller action; soft-deleted rows
// stay referenced by order history.
type Product struct {
	ID            uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title         string                 `gorm:"column:title;not null;index:products_title_idx"`
	Description   string                 `gorm:"column:description;not null"`
	Price         decimal.Decimal        `gorm:"column:price;type:numeric(10,2);not null"`
	OriginalPrice *decimal.Decimal       `gorm:"column:original_price;type:numeric(10,2)"`
	CategoryID    uuid.UUID              `gorm:"column:category_id;type:uuid;not null;index:products_category_id_idx"`
	SellerID      uuid.UUID              `gorm:"column:seller_id;type:uuid;not null;index:products_seller_id_idx"`
	Condition     enums.ProductCondition `gorm:"column:condition;type:text;not null"`
	Status        enums.ProductStatus    `gorm:"column:status;type:text;not null;default:'available';index:products_status_created_idx,priority:1"`
	ViewCount     int                    `gorm:"column:view_count;not null;default:0"`
	FavoriteCount int                    `gorm:"column:favorite_count;not null;default:0"`
	TradeLocation *string                `gorm:"column:trade_location"`
	Images        pq.StringArray         `gorm:"column:images;type:text[];not null;default:ARRAY[]::text[]"`
	IsDeleted     bool                   `gorm:"column:is_deleted;not null;default:false"`
	CreatedAt     time.Time              `gorm:"column:created_at;autoCreateTime;index:products_status_created_idx,priority:2,sort:desc"`
	UpdatedAt     time.Time              `gorm:"column:updated_at;autoUpdateTime"`
	SoldAt        *time.Time             `gorm:"column:sold_at"`
}
