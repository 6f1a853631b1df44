package credit

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/campustrade/campustrade-backend/pkg/errors"
)

// Credit score bounds and the fixed deltas the trade lifecycle applies.
const (
	MinScore = 0
	MaxScore = 150

	CompletionSellerDelta = 5
	CompletionBuyerDelta  = 2
)

// ReviewDelta maps a star rating to its credit adjustment. A three star
// review is neutral.
func ReviewDelta(rating int) int {
	return (rating - 3) * 2
}

// Adjuster applies credit score changes inside an existing transaction.
type Adjuster struct{}

// NewAdjuster exposes the default credit adjuster.
func NewAdjuster() *Adjuster {
	return &Adjuster{}
}

// ApplyClamped adds delta to the user's score, clamping the result into
// [MinScore, MaxScore]. Used for order completion rewards.
func (Adjuster) ApplyClamped(ctx context.Context, tx *gorm.DB, userID uuid.UUID, delta int) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for credit adjustment")
	}
	if delta == 0 {
		return nil
	}

	res := tx.WithContext(ctx).Exec(`
		UPDATE users
		SET credit_score = CASE
			WHEN credit_score + ? > ? THEN ?
			WHEN credit_score + ? < ? THEN ?
			ELSE credit_score + ?
		END,
		updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, delta, MaxScore, MaxScore, delta, MinScore, MinScore, delta, userID)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "adjust credit score")
	}
	return nil
}

// ApplyBounded adds delta only when the unclamped result stays inside
// [MinScore, MaxScore]; otherwise the score is left untouched. Used for
// review adjustments, which skip rather than saturate.
func (Adjuster) ApplyBounded(ctx context.Context, tx *gorm.DB, userID uuid.UUID, delta int) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for credit adjustment")
	}
	if delta == 0 {
		return nil
	}

	res := tx.WithContext(ctx).Exec(`
		UPDATE users
		SET credit_score = credit_score + ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND credit_score + ? BETWEEN ? AND ?
	`, delta, userID, delta, MinScore, MaxScore)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "adjust credit score")
	}
	return nil
}
