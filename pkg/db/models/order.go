package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/campustrade/campustrade-backend/pkg/enums"
)

// Order links a buyer, a seller and a listing through a status lifecycle.
// Price snapshots the listing price at creation time.
type Order struct {
	ID            uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNo       string            `gorm:"column:order_no;not null;uniqueIndex:orders_order_no_key"`
	ProductID     uuid.UUID         `gorm:"column:product_id;type:uuid;not null;index:orders_product_id_idx"`
	BuyerID       uuid.UUID         `gorm:"column:buyer_id;type:uuid;not null;index:orders_buyer_id_idx"`
	SellerID      uuid.UUID         `gorm:"column:seller_id;type:uuid;not null;index:orders_seller_id_idx"`
	Price         decimal.Decimal   `gorm:"column:price;type:numeric(10,2);not null"`
	Status        enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending';index:orders_status_idx"`
	PaymentMethod *string           `gorm:"column:payment_method"`
	TradeLocation *string           `gorm:"column:trade_location"`
	BuyerNote     *string           `gorm:"column:buyer_note"`
	SellerNote    *string           `gorm:"column:seller_note"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime;index:orders_created_at_idx"`
	PaidAt        *time.Time        `gorm:"column:paid_at"`
	CompletedAt   *time.Time        `gorm:"column:completed_at"`
	CancelledAt   *time.Time        `gorm:"column:cancelled_at"`
}
