package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// User represents the canonical identity entity. Accounts are never
// hard-deleted; IsActive gates login instead.
type User struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StudentID    string          `gorm:"column:student_id;not null;uniqueIndex:users_student_id_key"`
	Username     string          `gorm:"column:username;not null;uniqueIndex:users_username_key"`
	Email        string          `gorm:"column:email;not null;uniqueIndex:users_email_key"`
	PasswordHash string          `gorm:"column:password_hash;not null"`
	RealName     string          `gorm:"column:real_name;not null"`
	Phone        *string         `gorm:"column:phone"`
	Campus       *string         `gorm:"column:campus"`
	Dormitory    *string         `gorm:"column:dormitory"`
	AvatarPath   string          `gorm:"column:avatar_path;not null;default:'default.jpg'"`
	Balance      decimal.Decimal `gorm:"column:balance;type:numeric(10,2);not null;default:0"`
	CreditScore  int             `gorm:"column:credit_score;not null;default:100"`
	IsActive     bool            `gorm:"column:is_active;not null;default:true"`
	LastLoginAt  *time.Time      `gorm:"column:last_login_at"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
