package reviews

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campustrade/campustrade-backend/internal/audit"
	"github.com/campustrade/campustrade-backend/internal/credit"
	"github.com/campustrade/campustrade-backend/pkg/db"
	"github.com/campustrade/campustrade-backend/pkg/db/models"
	"github.com/campustrade/campustrade-backend/pkg/enums"
	pkgerrors "github.com/campustrade/campustrade-backend/pkg/errors"
	"github.com/campustrade/campustrade-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type orderFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

type creditAdjuster interface {
	ApplyBounded(ctx context.Context, tx *gorm.DB, userID uuid.UUID, delta int) error
}

type auditRecorder interface {
	Record(ctx context.Context, entry audit.Entry)
}

// SubmitInput carries a review submission.
type SubmitInput struct {
	OrderID     uuid.UUID
	Rating      int
	Content     *string
	IsAnonymous bool
}

// Item is one review in a user's received-feedback page. Anonymous reviews
// hide the author.
type Item struct {
	ID          uuid.UUID `json:"id"`
	OrderID     uuid.UUID `json:"order_id"`
	Rating      int       `json:"rating"`
	Content     *string   `json:"content,omitempty"`
	IsAnonymous bool      `json:"is_anonymous"`
	Reviewer    *Author   `json:"reviewer,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Author is the visible identity of a non-anonymous reviewer.
type Author struct {
	ID         uuid.UUID `json:"id"`
	Username   string    `json:"username"`
	AvatarPath string    `json:"avatar_path"`
}

// ListResult is one page of received reviews plus the rating aggregate.
type ListResult struct {
	Items         []Item          `json:"items"`
	AverageRating float64         `json:"average_rating"`
	ReviewCount   int64           `json:"review_count"`
	Page          pagination.Page `json:"page"`
}

// Service handles review submission and the reviewee's feedback page.
type Service struct {
	repo   Repository
	orders orderFinder
	tx     txRunner
	credit creditAdjuster
	audit  auditRecorder
}

// NewService builds the reviews service.
func NewService(repo Repository, orders orderFinder, tx txRunner, creditAdj creditAdjuster, auditSvc auditRecorder) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reviews repository required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order finder required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if creditAdj == nil {
		return nil, fmt.Errorf("credit adjuster required")
	}
	return &Service{repo: repo, orders: orders, tx: tx, credit: creditAdj, audit: auditSvc}, nil
}

// Submit files the single review an order admits. The reviewer must be a
// trade party on a completed order; the counterparty's credit moves by the
// rating delta when the result stays in bounds.
func (s *Service) Submit(ctx context.Context, reviewerID uuid.UUID, input SubmitInput) (*models.Review, error) {
	if reviewerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}

	order, err := s.orders.FindByID(ctx, input.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	var revieweeID uuid.UUID
	switch reviewerID {
	case order.BuyerID:
		revieweeID = order.SellerID
	case order.SellerID:
		revieweeID = order.BuyerID
	default:
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to other users")
	}

	if order.Status != enums.OrderStatusCompleted {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only completed orders can be reviewed")
	}

	taken, err := s.repo.ExistsForOrder(ctx, input.OrderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing review")
	}
	if taken {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order already reviewed")
	}

	review := &models.Review{
		OrderID:     input.OrderID,
		ReviewerID:  reviewerID,
		RevieweeID:  revieweeID,
		Rating:      input.Rating,
		Content:     input.Content,
		IsAnonymous: input.IsAnonymous,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Insert(ctx, review); err != nil {
			if db.IsUniqueViolation(err, "reviews_order_id_key") {
				return pkgerrors.New(pkgerrors.CodeConflict, "order already reviewed")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert review")
		}
		return s.credit.ApplyBounded(ctx, tx, revieweeID, credit.ReviewDelta(input.Rating))
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, reviewerID, review.ID,
		fmt.Sprintf("review with rating %d submitted for order %s", input.Rating, input.OrderID))
	return review, nil
}

// ListForUser returns one page of reviews the user received.
func (s *Service) ListForUser(ctx context.Context, revieweeID uuid.UUID, page pagination.Params) (*ListResult, error) {
	page = page.Normalize()

	rows, total, err := s.repo.ListForReviewee(ctx, revieweeID, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reviews")
	}
	avg, count, err := s.repo.AverageRatingFor(ctx, revieweeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate reviews")
	}

	items := make([]Item, 0, len(rows))
	for _, row := range rows {
		item := Item{
			ID:          row.ID,
			OrderID:     row.OrderID,
			Rating:      row.Rating,
			Content:     row.Content,
			IsAnonymous: row.IsAnonymous,
			CreatedAt:   row.CreatedAt,
		}
		if !row.IsAnonymous {
			item.Reviewer = &Author{
				ID:         row.ReviewerID,
				Username:   row.ReviewerUsername,
				AvatarPath: row.ReviewerAvatar,
			}
		}
		items = append(items, item)
	}
	return &ListResult{
		Items:         items,
		AverageRating: avg,
		ReviewCount:   count,
		Page:          pagination.Build(page, total),
	}, nil
}

func (s *Service) record(ctx context.Context, reviewerID, reviewID uuid.UUID, description string) {
	if s.audit == nil {
		return
	}
	actor := reviewerID
	record := reviewID
	s.audit.Record(ctx, audit.Entry{
		UserID:      &actor,
		Action:      enums.AuditActionSubmitReview,
		TableName:   "reviews",
		RecordID:    &record,
		Description: description,
	})
}
