package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/campustrade/campustrade-backend/pkg/db/models"
	"github.com/campustrade/campustrade-backend/pkg/enums"
	"github.com/campustrade/campustrade-backend/pkg/pagination"
)

// CreateInput carries the buyer's order request.
type CreateInput struct {
	ProductID     uuid.UUID
	PaymentMethod *string
	TradeLocation *string
	BuyerNote     *string
}

// Side selects which half of the trade history to list.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Summary is the order history projection.
type Summary struct {
	ID          uuid.UUID         `json:"id"`
	OrderNo     string            `json:"order_no"`
	ProductID   uuid.UUID         `json:"product_id"`
	BuyerID     uuid.UUID         `json:"buyer_id"`
	SellerID    uuid.UUID         `json:"seller_id"`
	Price       decimal.Decimal   `json:"price"`
	Status      enums.OrderStatus `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
	CancelledAt *time.Time        `json:"cancelled_at,omitempty"`
}

// Detail adds the free-text fields to the summary.
type Detail struct {
	Summary
	PaymentMethod *string `json:"payment_method,omitempty"`
	TradeLocation *string `json:"trade_location,omitempty"`
	BuyerNote     *string `json:"buyer_note,omitempty"`
	SellerNote    *string `json:"seller_note,omitempty"`
}

// ListResult is one page of trade history.
type ListResult struct {
	Items []Summary       `json:"items"`
	Page  pagination.Page `json:"page"`
}

func summaryFromModel(o models.Order) Summary {
	return Summary{
		ID:          o.ID,
		OrderNo:     o.OrderNo,
		ProductID:   o.ProductID,
		BuyerID:     o.BuyerID,
		SellerID:    o.SellerID,
		Price:       o.Price,
		Status:      o.Status,
		CreatedAt:   o.CreatedAt,
		CompletedAt: o.CompletedAt,
		CancelledAt: o.CancelledAt,
	}
}

func detailFromModel(o *models.Order) *Detail {
	return &Detail{
		Summary:       summaryFromModel(*o),
		PaymentMethod: o.PaymentMethod,
		TradeLocation: o.TradeLocation,
		BuyerNote:     o.BuyerNote,
		SellerNote:    o.SellerNote,
	}
}
