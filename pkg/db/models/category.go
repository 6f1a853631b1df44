package models

import (
	"time"

	"github.com/google/uuid"
)

// Category groups listings for browsing. Rows are seeded by migration.
type Category struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string    `gorm:"column:name;not null;uniqueIndex:categories_name_key"`
	Description *string   `gorm:"column:description"`
	Icon        *string   `gorm:"column:icon"`
	SortOrder   int       `gorm:"column:sort_order;not null;default:0"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}
