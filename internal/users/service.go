package users

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campustrade/campustrade-backend/pkg/db/models"
	pkgerrors "github.com/campustrade/campustrade-backend/pkg/errors"
)

type repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, updates map[string]any) error
	ListingStatsFor(ctx context.Context, sellerID uuid.UUID) (ListingStats, error)
}

// Service exposes profile reads and updates.
type Service struct {
	repo repository
}

// NewService builds the users service.
func NewService(repo repository) *Service {
	return &Service{repo: repo}
}

// Profile returns the authenticated user's own account view.
func (s *Service) Profile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	profile := ProfileFromModel(user)
	return &profile, nil
}

// UpdateProfile applies the caller's mutable profile fields.
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*Profile, error) {
	updates := map[string]any{}
	if input.Phone != nil {
		updates["phone"] = *input.Phone
	}
	if input.Campus != nil {
		updates["campus"] = *input.Campus
	}
	if input.Dormitory != nil {
		updates["dormitory"] = *input.Dormitory
	}
	if input.AvatarPath != nil {
		updates["avatar_path"] = *input.AvatarPath
	}

	if len(updates) > 0 {
		if err := s.repo.UpdateProfile(ctx, userID, updates); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update profile")
		}
	}
	return s.Profile(ctx, userID)
}

// PublicProfile returns the community-visible view of a user.
func (s *Service) PublicProfile(ctx context.Context, userID uuid.UUID) (*PublicProfile, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	stats, err := s.repo.ListingStatsFor(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing stats")
	}

	return &PublicProfile{
		ID:           user.ID,
		Username:     user.Username,
		AvatarPath:   user.AvatarPath,
		Campus:       user.Campus,
		CreditScore:  user.CreditScore,
		MemberSince:  user.CreatedAt,
		SellingCount: stats.Selling,
		SoldCount:    stats.Sold,
	}, nil
}
