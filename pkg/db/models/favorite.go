package models

import (
	"time"

	"github.com/google/uuid"
)

// Favorite links a user to a listing they bookmarked.
type Favorite struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index:favorites_user_id_idx;uniqueIndex:favorites_user_product_key"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;index:favorites_product_id_idx;uniqueIndex:favorites_user_product_key"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
