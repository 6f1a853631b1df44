package models

import (
	"time"

	"github.com/google/uuid"
)

// Message is a private note between two users, optionally tied to a listing.
type Message struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SenderID   uuid.UUID  `gorm:"column:sender_id;type:uuid;not null;index:messages_sender_id_idx"`
	ReceiverID uuid.UUID  `gorm:"column:receiver_id;type:uuid;not null;index:messages_receiver_id_idx"`
	ProductID  *uuid.UUID `gorm:"column:product_id;type:uuid"`
	Content    string     `gorm:"column:content;not null"`
	IsRead     bool       `gorm:"column:is_read;not null;default:false"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime;index:messages_created_at_idx"`
}
