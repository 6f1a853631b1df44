package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/campustrade/campustrade-backend/pkg/db/models"
	"github.com/campustrade/campustrade-backend/pkg/enums"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	products := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  price NUMERIC NOT NULL,
  original_price NUMERIC,
  category_id TEXT NOT NULL,
  seller_id TEXT NOT NULL,
  condition TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'available',
  view_count INTEGER NOT NULL DEFAULT 0,
  favorite_count INTEGER NOT NULL DEFAULT 0,
  trade_location TEXT,
  images TEXT,
  is_deleted INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME,
  sold_at DATETIME
);`
	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  order_no TEXT NOT NULL UNIQUE,
  product_id TEXT NOT NULL,
  buyer_id TEXT NOT NULL,
  seller_id TEXT NOT NULL,
  price NUMERIC NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  payment_method TEXT,
  trade_location TEXT,
  buyer_note TEXT,
  seller_note TEXT,
  created_at DATETIME,
  paid_at DATETIME,
  completed_at DATETIME,
  cancelled_at DATETIME
);`
	require.NoError(t, db.Exec(products).Error)
	require.NoError(t, db.Exec(orders).Error)
	return db
}

func insertProduct(t *testing.T, db *gorm.DB, status enums.ProductStatus) uuid.UUID {
	t.Helper()

	id := uuid.New()
	require.NoError(t, db.Exec(`
		INSERT INTO products (id, title, price, category_id, seller_id, condition, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, id, "router", decimal.NewFromInt(25), uuid.New(), uuid.New(), enums.ProductConditionLightlyUsed, status).Error)
	return id
}

func insertOrder(t *testing.T, repo Repository, status enums.OrderStatus) *models.Order {
	t.Helper()

	orderNo, err := NewOrderNo(time.Now().UTC())
	require.NoError(t, err)
	order := &models.Order{
		ID:        uuid.New(),
		OrderNo:   orderNo,
		ProductID: uuid.New(),
		BuyerID:   uuid.New(),
		SellerID:  uuid.New(),
		Price:     decimal.NewFromInt(25),
		Status:    status,
	}
	require.NoError(t, repo.Create(context.Background(), order))
	return order
}

func TestTransitionFromPendingMovesOnce(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	order := insertOrder(t, repo, enums.OrderStatusPending)

	now := time.Now().UTC()
	moved, err := repo.TransitionFromPending(context.Background(), order.ID, map[string]any{
		"status":       enums.OrderStatusCompleted,
		"completed_at": now,
	})
	require.NoError(t, err)
	require.True(t, moved)

	// The order left pending; a second transition finds no matching row.
	moved, err = repo.TransitionFromPending(context.Background(), order.ID, map[string]any{
		"status":       enums.OrderStatusCancelled,
		"cancelled_at": now,
	})
	require.NoError(t, err)
	require.False(t, moved)

	got, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusCompleted, got.Status)
	require.NotNil(t, got.CompletedAt)
	require.Nil(t, got.CancelledAt)
}

func TestTransitionFromPendingIgnoresSettledOrders(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	order := insertOrder(t, repo, enums.OrderStatusCancelled)

	moved, err := repo.TransitionFromPending(context.Background(), order.ID, map[string]any{
		"status": enums.OrderStatusCompleted,
	})
	require.NoError(t, err)
	require.False(t, moved)

	got, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusCancelled, got.Status)
}

func TestClaimWinsOnlyOnce(t *testing.T) {
	db := setupOrdersTestDB(t)
	states := NewProductStateStore()
	productID := insertProduct(t, db, enums.ProductStatusAvailable)

	claimed, err := states.Claim(context.Background(), db, productID)
	require.NoError(t, err)
	require.True(t, claimed)

	claimed, err = states.Claim(context.Background(), db, productID)
	require.NoError(t, err)
	require.False(t, claimed)
}

func TestClaimSkipsDeletedListing(t *testing.T) {
	db := setupOrdersTestDB(t)
	states := NewProductStateStore()
	productID := insertProduct(t, db, enums.ProductStatusAvailable)
	require.NoError(t, db.Exec(`UPDATE products SET is_deleted = 1 WHERE id = ?`, productID).Error)

	claimed, err := states.Claim(context.Background(), db, productID)
	require.NoError(t, err)
	require.False(t, claimed)
}

func TestReleaseReopensReservedListing(t *testing.T) {
	db := setupOrdersTestDB(t)
	states := NewProductStateStore()
	productID := insertProduct(t, db, enums.ProductStatusReserved)

	require.NoError(t, states.Release(context.Background(), db, productID))

	var status string
	require.NoError(t, db.Raw(`SELECT status FROM products WHERE id = ?`, productID).Scan(&status).Error)
	require.Equal(t, string(enums.ProductStatusAvailable), status)

	// A claim can now succeed again.
	claimed, err := states.Claim(context.Background(), db, productID)
	require.NoError(t, err)
	require.True(t, claimed)
}

func TestMarkSoldStampsSoldAt(t *testing.T) {
	db := setupOrdersTestDB(t)
	states := NewProductStateStore()
	productID := insertProduct(t, db, enums.ProductStatusReserved)

	require.NoError(t, states.MarkSold(context.Background(), db, productID))

	var row struct {
		Status string
		SoldAt *time.Time
	}
	require.NoError(t, db.Raw(`SELECT status, sold_at FROM products WHERE id = ?`, productID).Scan(&row).Error)
	require.Equal(t, string(enums.ProductStatusSold), row.Status)
	require.NotNil(t, row.SoldAt)
}
