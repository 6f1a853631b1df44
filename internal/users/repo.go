package users

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campustrade/campustrade-backend/pkg/db/models"
	"github.com/campustrade/campustrade-backend/pkg/enums"
)

// Repository exposes user persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new user and returns the persisted model.
func (r *Repository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// FindByID loads a user by their UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername retrieves the user matching the provided username.
func (r *Repository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ExistsByStudentID reports whether a user already claimed the student id.
func (r *Repository) ExistsByStudentID(ctx context.Context, studentID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("student_id = ?", studentID).
		Count(&count).Error
	return count > 0, err
}

// ExistsByUsername reports whether the username is taken.
func (r *Repository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("username = ?", username).
		Count(&count).Error
	return count > 0, err
}

// ExistsByEmail reports whether the email is taken.
func (r *Repository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("email = ?", email).
		Count(&count).Error
	return count > 0, err
}

// UpdateProfile applies the provided column updates to the user row.
func (r *Repository) UpdateProfile(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// UpdateLastLogin refreshes the user's last_login_at timestamp.
func (r *Repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}

// ListingStats aggregates a seller's listing counts for the public profile.
type ListingStats struct {
	Selling int64
	Sold    int64
}

// ListingStatsFor counts the user's live and sold listings.
func (r *Repository) ListingStatsFor(ctx context.Context, sellerID uuid.UUID) (ListingStats, error) {
	var stats ListingStats
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("seller_id = ? AND is_deleted = ? AND status = ?", sellerID, false, enums.ProductStatusAvailable).
		Count(&stats.Selling).Error
	if err != nil {
		return stats, err
	}
	err = r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("seller_id = ? AND status = ?", sellerID, enums.ProductStatusSold).
		Count(&stats.Sold).Error
	return stats, err
}
