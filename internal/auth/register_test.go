package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/campustrade/campustrade-backend/pkg/db/models"
	pkgerrors "github.com/campustrade/campustrade-backend/pkg/errors"
	"github.com/campustrade/campustrade-backend/pkg/security"
)

type stubRegisterRepo struct {
	studentIDs map[string]bool
	usernames  map[string]bool
	emails     map[string]bool
	created    []*models.User
}

func newStubRegisterRepo() *stubRegisterRepo {
	return &stubRegisterRepo{
		studentIDs: map[string]bool{},
		usernames:  map[string]bool{},
		emails:     map[string]bool{},
	}
}

func (s *stubRegisterRepo) ExistsByStudentID(_ context.Context, studentID string) (bool, error) {
	return s.studentIDs[studentID], nil
}

func (s *stubRegisterRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	return s.usernames[username], nil
}

func (s *stubRegisterRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	return s.emails[email], nil
}

func (s *stubRegisterRepo) Create(_ context.Context, user *models.User) error {
	s.created = append(s.created, user)
	return nil
}

func newRegisterFixture(t *testing.T) (RegisterService, *stubRegisterRepo) {
	t.Helper()
	repo := newStubRegisterRepo()
	svc, err := NewRegisterService(RegisterServiceParams{
		UserRepo:       repo,
		PasswordConfig: testPasswordConfig,
	})
	require.NoError(t, err)
	return svc, repo
}

func validRequest() RegisterRequest {
	return RegisterRequest{
		StudentID: "20260001",
		Username:  "casey",
		Email:     "Casey@Example.edu",
		Password:  "correct horse battery",
		RealName:  "Casey Jordan",
	}
}

func TestRegisterCreatesUserWithDefaults(t *testing.T) {
	svc, repo := newRegisterFixture(t)

	resp, err := svc.Register(context.Background(), validRequest())
	require.NoError(t, err)
	require.Len(t, repo.created, 1)

	user := repo.created[0]
	require.Equal(t, "20260001", user.StudentID)
	require.Equal(t, "casey@example.edu", user.Email)
	require.Equal(t, "default.jpg", user.AvatarPath)
	require.Equal(t, 100, user.CreditScore)
	require.True(t, user.IsActive)
	require.Equal(t, user.Email, resp.Email)

	ok, err := security.VerifyPassword("correct horse battery", user.PasswordHash)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestRegisterChecksStudentIDFirst(t *testing.T) {
	svc, repo := newRegisterFixture(t)
	repo.studentIDs["20260001"] = true
	repo.usernames["casey"] = true
	repo.emails["casey@example.edu"] = true

	_, err := svc.Register(context.Background(), validRequest())
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
	require.Contains(t, err.Error(), "student id")
}

func TestRegisterChecksUsernameBeforeEmail(t *testing.T) {
	svc, repo := newRegisterFixture(t)
	repo.usernames["casey"] = true
	repo.emails["casey@example.edu"] = true

	_, err := svc.Register(context.Background(), validRequest())
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
	require.Contains(t, err.Error(), "username")
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, repo := newRegisterFixture(t)
	repo.emails["casey@example.edu"] = true

	_, err := svc.Register(context.Background(), validRequest())
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
	require.Contains(t, err.Error(), "email")
}

func TestRegisterRejectsBlankIdentity(t *testing.T) {
	svc, _ := newRegisterFixture(t)
	req := validRequest()
	req.Username = "   "

	_, err := svc.Register(context.Background(), req)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
