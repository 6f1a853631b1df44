package models

import (
	"time"

	"github.com/google/uuid"
)

// Review holds the one-to-one feedback for a completed order.
type Review struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID     uuid.UUID `gorm:"column:order_id;type:uuid;not null;uniqueIndex:reviews_order_id_key"`
	ReviewerID  uuid.UUID `gorm:"column:reviewer_id;type:uuid;not null;index:reviews_reviewer_id_idx"`
	RevieweeID  uuid.UUID `gorm:"column:reviewee_id;type:uuid;not null;index:reviews_reviewee_id_idx"`
	Rating      int       `gorm:"column:rating;not null"`
	Content     *string   `gorm:"column:content"`
	IsAnonymous bool      `gorm:"column:is_anonymous;not null;default:false"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime;index:reviews_created_at_idx"`
}
