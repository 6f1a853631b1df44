package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/campustrade/campustrade-backend/internal/audit"
	"github.com/campustrade/campustrade-backend/internal/credit"
	"github.com/campustrade/campustrade-backend/pkg/db/models"
	"github.com/campustrade/campustrade-backend/pkg/enums"
	pkgerrors "github.com/campustrade/campustrade-backend/pkg/errors"
)

type stubRepo struct {
	orders map[uuid.UUID]*models.Order

	// stalePendingReads makes FindByID report pending for that many calls,
	// the way a read outside the transaction can trail a concurrent commit.
	stalePendingReads int
}

func newStubRepo() *stubRepo {
	return &stubRepo{orders: map[uuid.UUID]*models.Order{}}
}

func (s *stubRepo) WithTx(_ *gorm.DB) Repository { return s }

func (s *stubRepo) Create(_ context.Context, order *models.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	copied := *order
	s.orders[order.ID] = &copied
	return nil
}

func (s *stubRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	if o, ok := s.orders[id]; ok {
		copied := *o
		if s.stalePendingReads > 0 {
			s.stalePendingReads--
			copied.Status = enums.OrderStatusPending
			copied.CompletedAt = nil
			copied.CancelledAt = nil
		}
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) FindByProductOpen(_ context.Context, productID uuid.UUID) (*models.Order, error) {
	for _, o := range s.orders {
		if o.ProductID == productID && o.Status == enums.OrderStatusPending {
			copied := *o
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) TransitionFromPending(_ context.Context, id uuid.UUID, updates map[string]any) (bool, error) {
	order, ok := s.orders[id]
	if !ok || order.Status != enums.OrderStatusPending {
		return false, nil
	}
	if status, ok := updates["status"].(enums.OrderStatus); ok {
		order.Status = status
	}
	if at, ok := updates["cancelled_at"].(time.Time); ok {
		order.CancelledAt = &at
	}
	if at, ok := updates["completed_at"].(time.Time); ok {
		order.CompletedAt = &at
	}
	return true, nil
}

func (s *stubRepo) ListByBuyer(_ context.Context, buyerID uuid.UUID, filter ListFilter) ([]models.Order, int64, error) {
	var rows []models.Order
	for _, o := range s.orders {
		if o.BuyerID != buyerID {
			continue
		}
		if filter.Status != nil && string(o.Status) != *filter.Status {
			continue
		}
		rows = append(rows, *o)
	}
	return rows, int64(len(rows)), nil
}

func (s *stubRepo) ListBySeller(_ context.Context, sellerID uuid.UUID, filter ListFilter) ([]models.Order, int64, error) {
	var rows []models.Order
	for _, o := range s.orders {
		if o.SellerID != sellerID {
			continue
		}
		if filter.Status != nil && string(o.Status) != *filter.Status {
			continue
		}
		rows = append(rows, *o)
	}
	return rows, int64(len(rows)), nil
}

type stubProducts struct {
	products map[uuid.UUID]*models.Product
}

func (s *stubProducts) FindByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	if p, ok := s.products[id]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// stubStates mimics the conditional status updates the real store issues.
type stubStates struct {
	products  map[uuid.UUID]*models.Product
	failClaim bool
}

func (s *stubStates) Claim(_ context.Context, _ *gorm.DB, productID uuid.UUID) (bool, error) {
	if s.failClaim {
		return false, nil
	}
	p, ok := s.products[productID]
	if !ok || p.IsDeleted || p.Status != enums.ProductStatusAvailable {
		return false, nil
	}
	p.Status = enums.ProductStatusReserved
	return true, nil
}

func (s *stubStates) Release(_ context.Context, _ *gorm.DB, productID uuid.UUID) error {
	if p, ok := s.products[productID]; ok && p.Status == enums.ProductStatusReserved {
		p.Status = enums.ProductStatusAvailable
	}
	return nil
}

func (s *stubStates) MarkSold(_ context.Context, _ *gorm.DB, productID uuid.UUID) error {
	if p, ok := s.products[productID]; ok && p.Status == enums.ProductStatusReserved {
		p.Status = enums.ProductStatusSold
	}
	return nil
}

type stubCredit struct {
	applied map[uuid.UUID]int
}

func (s *stubCredit) ApplyClamped(_ context.Context, _ *gorm.DB, userID uuid.UUID, delta int) error {
	s.applied[userID] += delta
	return nil
}

type stubAudit struct {
	entries []audit.Entry
}

func (s *stubAudit) Record(_ context.Context, entry audit.Entry) {
	s.entries = append(s.entries, entry)
}

type passthroughTx struct{}

func (passthroughTx) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fixture struct {
	repo     *stubRepo
	products *stubProducts
	states   *stubStates
	credit   *stubCredit
	audit    *stubAudit
	svc      *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	productMap := map[uuid.UUID]*models.Product{}
	f := &fixture{
		repo:     newStubRepo(),
		products: &stubProducts{products: productMap},
		states:   &stubStates{products: productMap},
		credit:   &stubCredit{applied: map[uuid.UUID]int{}},
		audit:    &stubAudit{},
	}
	svc, err := NewService(f.repo, passthroughTx{}, f.products, f.states, f.credit, f.audit)
	require.NoError(t, err)
	f.svc = svc
	return f
}

func (f *fixture) seedProduct(sellerID uuid.UUID, status enums.ProductStatus) *models.Product {
	p := &models.Product{
		ID:       uuid.New(),
		Title:    "mini fridge",
		Price:    decimal.NewFromInt(80),
		SellerID: sellerID,
		Status:   status,
	}
	f.products.products[p.ID] = p
	return p
}

func (f *fixture) placeOrder(t *testing.T, buyerID uuid.UUID, productID uuid.UUID) *Detail {
	t.Helper()
	detail, err := f.svc.Create(context.Background(), buyerID, CreateInput{ProductID: productID})
	require.NoError(t, err)
	return detail
}

func TestCreateReservesProductAndSnapshotsPrice(t *testing.T) {
	f := newFixture(t)
	sellerID := uuid.New()
	buyerID := uuid.New()
	product := f.seedProduct(sellerID, enums.ProductStatusAvailable)

	detail := f.placeOrder(t, buyerID, product.ID)

	require.Equal(t, enums.OrderStatusPending, detail.Status)
	require.True(t, detail.Price.Equal(decimal.NewFromInt(80)))
	require.Equal(t, enums.ProductStatusReserved, f.products.products[product.ID].Status)
	require.Len(t, f.audit.entries, 1)
	require.Equal(t, enums.AuditActionCreateOrder, f.audit.entries[0].Action)
}

func TestCreateSecondBuyerLosesTheRace(t *testing.T) {
	f := newFixture(t)
	sellerID := uuid.New()
	product := f.seedProduct(sellerID, enums.ProductStatusAvailable)

	f.placeOrder(t, uuid.New(), product.ID)

	// The pre-check read sees a stale available status in a real race;
	// the claim update is what must reject the loser.
	f.products.products[product.ID].Status = enums.ProductStatusAvailable
	f.states.failClaim = true

	_, err := f.svc.Create(context.Background(), uuid.New(), CreateInput{ProductID: product.ID})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
}

func TestCreateRejectsOwnListing(t *testing.T) {
	f := newFixture(t)
	sellerID := uuid.New()
	product := f.seedProduct(sellerID, enums.ProductStatusAvailable)

	_, err := f.svc.Create(context.Background(), sellerID, CreateInput{ProductID: product.ID})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestCreateRejectsReservedListing(t *testing.T) {
	f := newFixture(t)
	product := f.seedProduct(uuid.New(), enums.ProductStatusReserved)

	_, err := f.svc.Create(context.Background(), uuid.New(), CreateInput{ProductID: product.ID})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
}

func TestCreateRejectsDeletedListing(t *testing.T) {
	f := newFixture(t)
	product := f.seedProduct(uuid.New(), enums.ProductStatusAvailable)
	product.IsDeleted = true

	_, err := f.svc.Create(context.Background(), uuid.New(), CreateInput{ProductID: product.ID})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestCancelReleasesProduct(t *testing.T) {
	f := newFixture(t)
	sellerID := uuid.New()
	buyerID := uuid.New()
	product := f.seedProduct(sellerID, enums.ProductStatusAvailable)
	placed := f.placeOrder(t, buyerID, product.ID)

	cancelled, err := f.svc.Cancel(context.Background(), buyerID, placed.ID)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)
	require.Equal(t, enums.ProductStatusAvailable, f.products.products[product.ID].Status)
}

func TestCancelBySellerIsForbidden(t *testing.T) {
	f := newFixture(t)
	sellerID := uuid.New()
	product := f.seedProduct(sellerID, enums.ProductStatusAvailable)
	placed := f.placeOrder(t, uuid.New(), product.ID)

	_, err := f.svc.Cancel(context.Background(), sellerID, placed.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
}

func TestCancelByStrangerIsForbidden(t *testing.T) {
	f := newFixture(t)
	product := f.seedProduct(uuid.New(), enums.ProductStatusAvailable)
	placed := f.placeOrder(t, uuid.New(), product.ID)

	_, err := f.svc.Cancel(context.Background(), uuid.New(), placed.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
}

func TestCancelCompletedOrderIsStateConflict(t *testing.T) {
	f := newFixture(t)
	sellerID := uuid.New()
	buyerID := uuid.New()
	product := f.seedProduct(sellerID, enums.ProductStatusAvailable)
	placed := f.placeOrder(t, buyerID, product.ID)

	_, err := f.svc.Complete(context.Background(), sellerID, placed.ID)
	require.NoError(t, err)

	_, err = f.svc.Cancel(context.Background(), buyerID, placed.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
}

func TestCompleteMarksSoldAndRewardsCredit(t *testing.T) {
	f := newFixture(t)
	sellerID := uuid.New()
	buyerID := uuid.New()
	product := f.seedProduct(sellerID, enums.ProductStatusAvailable)
	placed := f.placeOrder(t, buyerID, product.ID)

	completed, err := f.svc.Complete(context.Background(), sellerID, placed.ID)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusCompleted, completed.Status)
	require.NotNil(t, completed.CompletedAt)
	require.Equal(t, enums.ProductStatusSold, f.products.products[product.ID].Status)
	require.Equal(t, credit.CompletionSellerDelta, f.credit.applied[sellerID])
	require.Equal(t, credit.CompletionBuyerDelta, f.credit.applied[buyerID])
}

func TestCompleteByBuyerIsForbidden(t *testing.T) {
	f := newFixture(t)
	buyerID := uuid.New()
	product := f.seedProduct(uuid.New(), enums.ProductStatusAvailable)
	placed := f.placeOrder(t, buyerID, product.ID)

	_, err := f.svc.Complete(context.Background(), buyerID, placed.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
}

func TestCompleteTwiceIsStateConflict(t *testing.T) {
	f := newFixture(t)
	sellerID := uuid.New()
	product := f.seedProduct(sellerID, enums.ProductStatusAvailable)
	placed := f.placeOrder(t, uuid.New(), product.ID)

	_, err := f.svc.Complete(context.Background(), sellerID, placed.ID)
	require.NoError(t, err)

	_, err = f.svc.Complete(context.Background(), sellerID, placed.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
}

func TestCompleteRacingCompleteAppliesCreditOnce(t *testing.T) {
	f := newFixture(t)
	sellerID := uuid.New()
	buyerID := uuid.New()
	product := f.seedProduct(sellerID, enums.ProductStatusAvailable)
	placed := f.placeOrder(t, buyerID, product.ID)

	// Both calls read the order as pending; the conditional transition
	// inside the transaction must reject the second.
	f.repo.stalePendingReads = 2

	_, err := f.svc.Complete(context.Background(), sellerID, placed.ID)
	require.NoError(t, err)

	_, err = f.svc.Complete(context.Background(), sellerID, placed.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))

	require.Equal(t, credit.CompletionSellerDelta, f.credit.applied[sellerID])
	require.Equal(t, credit.CompletionBuyerDelta, f.credit.applied[buyerID])
}

func TestCancelRacingCompleteLoses(t *testing.T) {
	f := newFixture(t)
	sellerID := uuid.New()
	buyerID := uuid.New()
	product := f.seedProduct(sellerID, enums.ProductStatusAvailable)
	placed := f.placeOrder(t, buyerID, product.ID)

	f.repo.stalePendingReads = 2

	_, err := f.svc.Complete(context.Background(), sellerID, placed.ID)
	require.NoError(t, err)

	_, err = f.svc.Cancel(context.Background(), buyerID, placed.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
	require.Equal(t, enums.OrderStatusCompleted, f.repo.orders[placed.ID].Status)
	require.Equal(t, enums.ProductStatusSold, f.products.products[product.ID].Status)
}

func TestGetVisibleOnlyToParties(t *testing.T) {
	f := newFixture(t)
	buyerID := uuid.New()
	sellerID := uuid.New()
	product := f.seedProduct(sellerID, enums.ProductStatusAvailable)
	placed := f.placeOrder(t, buyerID, product.ID)

	_, err := f.svc.Get(context.Background(), buyerID, placed.ID)
	require.NoError(t, err)
	_, err = f.svc.Get(context.Background(), sellerID, placed.ID)
	require.NoError(t, err)
	_, err = f.svc.Get(context.Background(), uuid.New(), placed.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
}

func TestListMineFiltersBySide(t *testing.T) {
	f := newFixture(t)
	buyerID := uuid.New()
	sellerID := uuid.New()
	product := f.seedProduct(sellerID, enums.ProductStatusAvailable)
	f.placeOrder(t, buyerID, product.ID)

	bought, err := f.svc.ListMine(context.Background(), buyerID, SideBuy, ListFilter{})
	require.NoError(t, err)
	require.Len(t, bought.Items, 1)

	sold, err := f.svc.ListMine(context.Background(), sellerID, SideSell, ListFilter{})
	require.NoError(t, err)
	require.Len(t, sold.Items, 1)

	none, err := f.svc.ListMine(context.Background(), buyerID, SideSell, ListFilter{})
	require.NoError(t, err)
	require.Empty(t, none.Items)
}

func TestListMineRejectsUnknownSideAndStatus(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ListMine(context.Background(), uuid.New(), Side("all"), ListFilter{})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	bogus := "shipped"
	_, err = f.svc.ListMine(context.Background(), uuid.New(), SideBuy, ListFilter{Status: &bogus})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
