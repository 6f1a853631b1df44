package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campustrade/campustrade-backend/internal/audit"
	"github.com/campustrade/campustrade-backend/internal/credit"
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

type auditRecorder interface {
	Record(ctx context.Context, entry audit.Entry)
}

// Service drives the order state machine. Every transition happens inside
// a transaction; the listing status column doubles as the lock that keeps
// two buyers from ordering the same item.
type Service struct {
	repo     Repository
	tx       txRunner
	products productFinder
	states   ProductStateStore
	credit   CreditAdjuster
	audit    auditRecorder
	now      func() time.Time
}

// NewService builds the order service with the required dependencies.
func NewService(repo Repository, tx txRunner, products productFinder, states ProductStateStore, creditAdj CreditAdjuster, auditSvc auditRecorder) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if products == nil {
		return nil, fmt.Errorf("product finder required")
	}
	if states == nil {
		return nil, fmt.Errorf("product state store required")
	}
	if creditAdj == nil {
		return nil, fmt.Errorf("credit adjuster required")
	}
	return &Service{
		repo:     repo,
		tx:       tx,
		products: products,
		states:   states,
		credit:   creditAdj,
		audit:    auditSvc,
		now:      time.Now,
	}, nil
}

// Create places a pending order on an available listing. The claim update
// inside the transaction decides the winner when buyers race.
func (s *Service) Create(ctx context.Context, buyerID uuid.UUID, input CreateInput) (*Detail, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}

	product, err := s.products.FindByID(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product.IsDeleted {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if product.SellerID == buyerID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot order your own listing")
	}
	if product.Status != enums.ProductStatusAvailable {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "product is not available")
	}

	now := s.now()
	orderNo, err := NewOrderNo(now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate order number")
	}

	order := &models.Order{
		OrderNo:       orderNo,
		ProductID:     product.ID,
		BuyerID:       buyerID,
		SellerID:      product.SellerID,
		Price:         product.Price,
		Status:        enums.OrderStatusPending,
		PaymentMethod: input.PaymentMethod,
		TradeLocation: input.TradeLocation,
		BuyerNote:     input.BuyerNote,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		claimed, err := s.states.Claim(ctx, tx, product.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim product")
		}
		if !claimed {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "product is not available")
		}
		if err := s.repo.WithTx(tx).Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, buyerID, enums.AuditActionCreateOrder, order.ID,
		fmt.Sprintf("order %s placed on product %s", order.OrderNo, product.ID))
	return detailFromModel(order), nil
}

// Cancel aborts a pending order and returns the listing to the catalog.
// Only the buyer may cancel.
func (s *Service) Cancel(ctx context.Context, actorID, orderID uuid.UUID) (*Detail, error) {
	order, err := s.loadForActor(ctx, actorID, orderID)
	if err != nil {
		return nil, err
	}
	if order.BuyerID != actorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the buyer can cancel the order")
	}
	if order.Status != enums.OrderStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only pending orders can be cancelled")
	}

	cancelledAt := s.now()
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		moved, err := repo.TransitionFromPending(ctx, order.ID, map[string]any{
			"status":       enums.OrderStatusCancelled,
			"cancelled_at": cancelledAt,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel order")
		}
		if !moved {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only pending orders can be cancelled")
		}
		if err := s.states.Release(ctx, tx, order.ProductID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "release product")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	order.Status = enums.OrderStatusCancelled
	order.CancelledAt = &cancelledAt

	s.record(ctx, actorID, enums.AuditActionCancelOrder, order.ID,
		fmt.Sprintf("order %s cancelled", order.OrderNo))
	return detailFromModel(order), nil
}

// Complete marks the trade done. Only the seller may complete; the listing
// is marked sold and both parties earn the completion credit reward.
func (s *Service) Complete(ctx context.Context, actorID, orderID uuid.UUID) (*Detail, error) {
	order, err := s.loadForActor(ctx, actorID, orderID)
	if err != nil {
		return nil, err
	}
	if order.SellerID != actorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the seller can complete the order")
	}
	if order.Status != enums.OrderStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only pending orders can be completed")
	}

	completedAt := s.now()
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		moved, err := repo.TransitionFromPending(ctx, order.ID, map[string]any{
			"status":       enums.OrderStatusCompleted,
			"completed_at": completedAt,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "complete order")
		}
		if !moved {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only pending orders can be completed")
		}
		if err := s.states.MarkSold(ctx, tx, order.ProductID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark product sold")
		}
		if err := s.credit.ApplyClamped(ctx, tx, order.SellerID, credit.CompletionSellerDelta); err != nil {
			return err
		}
		if err := s.credit.ApplyClamped(ctx, tx, order.BuyerID, credit.CompletionBuyerDelta); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	order.Status = enums.OrderStatusCompleted
	order.CompletedAt = &completedAt

	s.record(ctx, actorID, enums.AuditActionCompleteOrder, order.ID,
		fmt.Sprintf("order %s completed", order.OrderNo))
	return detailFromModel(order), nil
}

// Get returns the order detail for one of the trade parties.
func (s *Service) Get(ctx context.Context, actorID, orderID uuid.UUID) (*Detail, error) {
	order, err := s.loadForActor(ctx, actorID, orderID)
	if err != nil {
		return nil, err
	}
	return detailFromModel(order), nil
}

// ListMine returns one page of the caller's trade history for the chosen
// side.
func (s *Service) ListMine(ctx context.Context, userID uuid.UUID, side Side, filter ListFilter) (*ListResult, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if filter.Status != nil {
		if _, err := enums.ParseOrderStatus(*filter.Status); err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
		}
	}
	filter.Page = filter.Page.Normalize()

	var (
		rows  []models.Order
		total int64
		err   error
	)
	switch side {
	case SideBuy:
		rows, total, err = s.repo.ListByBuyer(ctx, userID, filter)
	case SideSell:
		rows, total, err = s.repo.ListBySeller(ctx, userID, filter)
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "side must be buy or sell")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	items := make([]Summary, 0, len(rows))
	for _, row := range rows {
		items = append(items, summaryFromModel(row))
	}
	return &ListResult{Items: items, Page: pagination.Build(filter.Page, total)}, nil
}

func (s *Service) loadForActor(ctx context.Context, actorID, orderID uuid.UUID) (*models.Order, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.BuyerID != actorID && order.SellerID != actorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to other users")
	}
	return order, nil
}

func (s *Service) record(ctx context.Context, actorID uuid.UUID, action enums.AuditAction, orderID uuid.UUID, description string) {
	if s.audit == nil {
		return
	}
	actor := actorID
	record := orderID
	s.audit.Record(ctx, audit.Entry{
		UserID:      &actor,
		Action:      action,
		TableName:   "orders",
		RecordID:    &record,
		Description: description,
	})
}
