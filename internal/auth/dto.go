package auth

import (
	"time"

	"github.com/google/uuid"
)

// RegisterRequest contains the payload for creating an account.
type RegisterRequest struct {
	StudentID string  `json:"student_id" validate:"required,min=5,max=20"`
	Username  string  `json:"username" validate:"required,min=3,max=30"`
	Email     string  `json:"email" validate:"required,email"`
	Password  string  `json:"password" validate:"required,min=8,max=72"`
	RealName  string  `json:"real_name" validate:"required,min=2,max=50"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,min=5,max=20"`
	Campus    *string `json:"campus,omitempty"`
	Dormitory *string `json:"dormitory,omitempty"`
}

// RegisterResponse echoes the created identity.
type RegisterResponse struct {
	ID        uuid.UUID `json:"id"`
	StudentID string    `json:"student_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginRequest carries a username/password attempt.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Remember bool   `json:"remember"`
}

// LoginResponse returns the token pair plus the basic identity.
type LoginResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	UserID       uuid.UUID `json:"user_id"`
	Username     string    `json:"username"`
	CreditScore  int       `json:"credit_score"`
}

// RefreshRequest rotates an expired or near-expiry token pair.
type RefreshRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshResponse returns the replacement token pair.
type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
