package credit

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupCreditTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	users := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  credit_score INTEGER NOT NULL DEFAULT 100,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(users).Error)
	return db
}

func insertScoredUser(t *testing.T, db *gorm.DB, score int) uuid.UUID {
	t.Helper()

	id := uuid.New()
	require.NoError(t, db.Exec(`INSERT INTO users (id, credit_score) VALUES (?, ?)`, id, score).Error)
	return id
}

func readScore(t *testing.T, db *gorm.DB, id uuid.UUID) int {
	t.Helper()

	var score int
	require.NoError(t, db.Raw(`SELECT credit_score FROM users WHERE id = ?`, id).Scan(&score).Error)
	return score
}

func TestApplyClampedAddsWithinBounds(t *testing.T) {
	db := setupCreditTestDB(t)
	adj := NewAdjuster()

	id := insertScoredUser(t, db, 100)
	require.NoError(t, adj.ApplyClamped(context.Background(), db, id, CompletionSellerDelta))
	require.Equal(t, 105, readScore(t, db, id))

	require.NoError(t, adj.ApplyClamped(context.Background(), db, id, CompletionBuyerDelta))
	require.Equal(t, 107, readScore(t, db, id))
}

func TestApplyClampedSaturatesAtMax(t *testing.T) {
	db := setupCreditTestDB(t)
	adj := NewAdjuster()

	cases := []struct {
		start int
		delta int
		want  int
	}{
		{start: 148, delta: 5, want: MaxScore},
		{start: 145, delta: 5, want: MaxScore},
		{start: 144, delta: 5, want: 149},
		{start: 1, delta: -4, want: MinScore},
	}
	for _, tc := range cases {
		id := insertScoredUser(t, db, tc.start)
		require.NoError(t, adj.ApplyClamped(context.Background(), db, id, tc.delta))
		require.Equal(t, tc.want, readScore(t, db, id), "start %d delta %d", tc.start, tc.delta)
	}
}

func TestApplyBoundedSkipsOutOfRangeResults(t *testing.T) {
	db := setupCreditTestDB(t)
	adj := NewAdjuster()

	cases := []struct {
		start int
		delta int
		want  int
	}{
		{start: 148, delta: 4, want: 148},
		{start: 2, delta: -4, want: 2},
		{start: 146, delta: 4, want: MaxScore},
		{start: 4, delta: -4, want: MinScore},
		{start: 100, delta: -4, want: 96},
	}
	for _, tc := range cases {
		id := insertScoredUser(t, db, tc.start)
		require.NoError(t, adj.ApplyBounded(context.Background(), db, id, tc.delta))
		require.Equal(t, tc.want, readScore(t, db, id), "start %d delta %d", tc.start, tc.delta)
	}
}

func TestAdjusterRequiresTransaction(t *testing.T) {
	adj := NewAdjuster()
	require.Error(t, adj.ApplyClamped(context.Background(), nil, uuid.New(), 5))
	require.Error(t, adj.ApplyBounded(context.Background(), nil, uuid.New(), 2))
}
