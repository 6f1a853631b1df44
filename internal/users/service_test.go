package users

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/campustrade/campustrade-backend/pkg/db/models"
	pkgerrors "github.com/campustrade/campustrade-backend/pkg/errors"
)

type stubRepo struct {
	users   map[uuid.UUID]*models.User
	stats   ListingStats
	updates map[string]any
}

func newStubRepo() *stubRepo {
	return &stubRepo{users: map[uuid.UUID]*models.User{}}
}

func (s *stubRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if user, ok := s.users[id]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) UpdateProfile(_ context.Context, id uuid.UUID, updates map[string]any) error {
	s.updates = updates
	user := s.users[id]
	if phone, ok := updates["phone"].(string); ok {
		user.Phone = &phone
	}
	if campus, ok := updates["campus"].(string); ok {
		user.Campus = &campus
	}
	return nil
}

func (s *stubRepo) ListingStatsFor(_ context.Context, _ uuid.UUID) (ListingStats, error) {
	return s.stats, nil
}

func TestProfileNotFound(t *testing.T) {
	svc := NewService(newStubRepo())

	_, err := svc.Profile(context.Background(), uuid.New())
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestUpdateProfileAppliesOnlyProvidedFields(t *testing.T) {
	repo := newStubRepo()
	userID := uuid.New()
	repo.users[userID] = &models.User{ID: userID, Username: "casey", CreditScore: 100}
	svc := NewService(repo)

	phone := "13800001111"
	profile, err := svc.UpdateProfile(context.Background(), userID, UpdateProfileInput{Phone: &phone})
	require.NoError(t, err)

	require.Equal(t, map[string]any{"phone": "13800001111"}, repo.updates)
	require.Equal(t, "13800001111", *profile.Phone)
	require.Nil(t, profile.Campus)
}

func TestPublicProfileIncludesListingStats(t *testing.T) {
	repo := newStubRepo()
	userID := uuid.New()
	repo.users[userID] = &models.User{ID: userID, Username: "casey", CreditScore: 105}
	repo.stats = ListingStats{Selling: 3, Sold: 7}
	svc := NewService(repo)

	profile, err := svc.PublicProfile(context.Background(), userID)
	require.NoError(t, err)
	require.Equal(t, "casey", profile.Username)
	require.Equal(t, 105, profile.CreditScore)
	require.EqualValues(t, 3, profile.SellingCount)
	require.EqualValues(t, 7, profile.SoldCount)
}
