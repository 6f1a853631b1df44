package favorites

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/campustrade/campustrade-backend/pkg/enums"
	"github.com/campustrade/campustrade-backend/pkg/pagination"
)

func setupFavoritesTestDB(t *testing.T) *gorm.DB {
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
	favorites := `
CREATE TABLE IF NOT EXISTS favorites (
  id TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(16)))),
  user_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  created_at DATETIME,
  UNIQUE (user_id, product_id)
);`
	require.NoError(t, db.Exec(products).Error)
	require.NoError(t, db.Exec(favorites).Error)
	return db
}

func insertProduct(t *testing.T, db *gorm.DB, favoriteCount int) uuid.UUID {
	t.Helper()

	id := uuid.New()
	require.NoError(t, db.Exec(`
		INSERT INTO products (id, title, price, category_id, seller_id, condition, favorite_count)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, id, "desk fan", decimal.NewFromInt(12), uuid.New(), uuid.New(), enums.ProductConditionLikeNew, favoriteCount).Error)
	return id
}

func TestAdjustProductCounterFloorsAtZero(t *testing.T) {
	db := setupFavoritesTestDB(t)
	repo := NewRepository(db)
	productID := insertProduct(t, db, 0)

	require.NoError(t, repo.AdjustProductCounter(context.Background(), productID, -1))
	count, err := repo.ProductCount(context.Background(), productID)
	require.NoError(t, err)
	require.Equal(t, 0, count)

	require.NoError(t, repo.AdjustProductCounter(context.Background(), productID, 1))
	count, err = repo.ProductCount(context.Background(), productID)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestAdjustProductCounterIsRelative(t *testing.T) {
	db := setupFavoritesTestDB(t)
	repo := NewRepository(db)
	productID := insertProduct(t, db, 7)

	require.NoError(t, repo.AdjustProductCounter(context.Background(), productID, -1))
	count, err := repo.ProductCount(context.Background(), productID)
	require.NoError(t, err)
	require.Equal(t, 6, count)
}

func TestInsertDeleteRoundTrip(t *testing.T) {
	db := setupFavoritesTestDB(t)
	repo := NewRepository(db)
	userID := uuid.New()
	productID := insertProduct(t, db, 0)

	require.NoError(t, repo.Insert(context.Background(), userID, productID))
	favorited, err := repo.IsFavorited(context.Background(), userID, productID)
	require.NoError(t, err)
	require.True(t, favorited)

	removed, err := repo.Delete(context.Background(), userID, productID)
	require.NoError(t, err)
	require.Equal(t, int64(1), removed)

	removed, err = repo.Delete(context.Background(), userID, productID)
	require.NoError(t, err)
	require.Zero(t, removed)
}

func TestListByUserSkipsDeletedProducts(t *testing.T) {
	db := setupFavoritesTestDB(t)
	repo := NewRepository(db)
	userID := uuid.New()
	keptID := insertProduct(t, db, 0)
	goneID := insertProduct(t, db, 0)

	require.NoError(t, repo.Insert(context.Background(), userID, keptID))
	require.NoError(t, repo.Insert(context.Background(), userID, goneID))
	require.NoError(t, db.Exec(`UPDATE products SET is_deleted = 1 WHERE id = ?`, goneID).Error)

	rows, total, err := repo.ListByUser(context.Background(), userID, pagination.Params{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, rows, 1)
	require.Equal(t, keptID, rows[0].ID)
}
