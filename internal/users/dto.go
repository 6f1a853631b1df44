package users

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/campustrade/campustrade-backend/pkg/db/models"
)

// Profile is the authenticated user's own view of their account.
type Profile struct {
	ID          uuid.UUID       `json:"id"`
	StudentID   string          `json:"student_id"`
	Username    string          `json:"username"`
	Email       string          `json:"email"`
	RealName    string          `json:"real_name"`
	Phone       *string         `json:"phone,omitempty"`
	Campus      *string         `json:"campus,omitempty"`
	Dormitory   *string         `json:"dormitory,omitempty"`
	AvatarPath  string          `json:"avatar_path"`
	Balance     decimal.Decimal `json:"balance"`
	CreditScore int             `json:"credit_score"`
	CreatedAt   time.Time       `json:"created_at"`
	LastLoginAt *time.Time      `json:"last_login_at,omitempty"`
}

// PublicProfile is what other users see.
type PublicProfile struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	AvatarPath   string    `json:"avatar_path"`
	Campus       *string   `json:"campus,omitempty"`
	CreditScore  int       `json:"credit_score"`
	MemberSince  time.Time `json:"member_since"`
	SellingCount int64     `json:"selling_count"`
	SoldCount    int64     `json:"sold_count"`
}

// UpdateProfileInput carries the mutable profile fields. Nil means keep.
type UpdateProfileInput struct {
	Phone      *string
	Campus     *string
	Dormitory  *string
	AvatarPath *string
}

// ProfileFromModel projects the full DB row into the owner-facing view.
func ProfileFromModel(u *models.User) Profile {
	return Profile{
		ID:          u.ID,
		StudentID:   u.StudentID,
		Username:    u.Username,
		Email:       u.Email,
		RealName:    u.RealName,
		Phone:       u.Phone,
		Campus:      u.Campus,
		Dormitory:   u.Dormitory,
		AvatarPath:  u.AvatarPath,
		Balance:     u.Balance,
		CreditScore: u.CreditScore,
		CreatedAt:   u.CreatedAt,
		LastLoginAt: u.LastLoginAt,
	}
}
