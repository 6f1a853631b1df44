package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/campustrade/campustrade-backend/internal/audit"
	pkgAuth "github.com/campustrade/campustrade-backend/pkg/auth"
	"github.com/campustrade/campustrade-backend/pkg/auth/session"
	"github.com/campustrade/campustrade-backend/pkg/config"
	"github.com/campustrade/campustrade-backend/pkg/db/models"
	pkgerrors "github.com/campustrade/campustrade-backend/pkg/errors"
	"github.com/campustrade/campustrade-backend/pkg/security"
)

var testJWTConfig = config.JWTConfig{
	Secret:             "test-secret",
	Issuer:             "campustrade",
	ExpirationMinutes:  30,
	SessionTTLMinutes:  720,
	RememberTTLMinutes: 43200,
}

var testPasswordConfig = config.PasswordConfig{
	ArgonMemoryKB:    8192,
	ArgonTime:        1,
	ArgonParallelism: 1,
	ArgonSaltLen:     16,
	ArgonKeyLen:      32,
}

type stubUserRepo struct {
	byUsername map[string]*models.User
	lastLogin  map[uuid.UUID]time.Time
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{
		byUsername: map[string]*models.User{},
		lastLogin:  map[uuid.UUID]time.Time{},
	}
}

func (s *stubUserRepo) FindByUsername(_ context.Context, username string) (*models.User, error) {
	if u, ok := s.byUsername[username]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	s.lastLogin[id] = at
	return nil
}

type stubSessions struct {
	generated map[string]bool
	revoked   []string
	rotateErr error
}

func newStubSessions() *stubSessions {
	return &stubSessions{generated: map[string]bool{}}
}

func (s *stubSessions) Generate(_ context.Context, accessID string, remember bool) (string, error) {
	s.generated[accessID] = remember
	return "refresh-" + accessID, nil
}

func (s *stubSessions) Rotate(_ context.Context, oldAccessID, provided string) (string, string, error) {
	if s.rotateErr != nil {
		return "", "", s.rotateErr
	}
	if provided != "refresh-"+oldAccessID {
		return "", "", session.ErrInvalidRefreshToken
	}
	next := session.NewAccessID()
	return next, "refresh-" + next, nil
}

func (s *stubSessions) Revoke(_ context.Context, accessID string) error {
	s.revoked = append(s.revoked, accessID)
	return nil
}

type stubAudit struct {
	entries []audit.Entry
}

func (s *stubAudit) Record(_ context.Context, entry audit.Entry) {
	s.entries = append(s.entries, entry)
}

func seedUser(t *testing.T, repo *stubUserRepo, username, password string, active bool) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, testPasswordConfig)
	require.NoError(t, err)
	user := &models.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: hash,
		CreditScore:  100,
		IsActive:     active,
	}
	repo.byUsername[username] = user
	return user
}

func newLoginFixture(t *testing.T) (Service, *stubUserRepo, *stubSessions, *stubAudit) {
	t.Helper()
	repo := newStubUserRepo()
	sessions := newStubSessions()
	auditSink := &stubAudit{}
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: sessions,
		JWTConfig:      testJWTConfig,
		Audit:          auditSink,
	})
	require.NoError(t, err)
	return svc, repo, sessions, auditSink
}

func TestLoginSuccess(t *testing.T) {
	svc, repo, sessions, auditSink := newLoginFixture(t)
	user := seedUser(t, repo, "casey", "correct horse battery", true)

	resp, err := svc.Login(context.Background(), LoginRequest{
		Username: "casey",
		Password: "correct horse battery",
	})
	require.NoError(t, err)
	require.Equal(t, user.ID, resp.UserID)
	require.NotEmpty(t, resp.AccessToken)
	require.NotEmpty(t, resp.RefreshToken)
	require.Contains(t, repo.lastLogin, user.ID)
	require.Len(t, sessions.generated, 1)
	require.Len(t, auditSink.entries, 1)

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig, resp.AccessToken)
	require.NoError(t, err)
	require.Equal(t, user.ID, claims.UserID)
	require.Equal(t, "casey", claims.Username)
	require.True(t, sessions.generated[claims.ID] == false)
}

func TestLoginRememberSelectsLongSession(t *testing.T) {
	svc, repo, sessions, _ := newLoginFixture(t)
	seedUser(t, repo, "casey", "correct horse battery", true)

	resp, err := svc.Login(context.Background(), LoginRequest{
		Username: "casey",
		Password: "correct horse battery",
		Remember: true,
	})
	require.NoError(t, err)

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig, resp.AccessToken)
	require.NoError(t, err)
	require.True(t, sessions.generated[claims.ID])
}

func TestLoginUnknownUserAndWrongPasswordShareMessage(t *testing.T) {
	svc, repo, _, _ := newLoginFixture(t)
	seedUser(t, repo, "casey", "correct horse battery", true)

	_, errUnknown := svc.Login(context.Background(), LoginRequest{
		Username: "nobody",
		Password: "whatever",
	})
	_, errWrong := svc.Login(context.Background(), LoginRequest{
		Username: "casey",
		Password: "wrong password",
	})

	require.True(t, pkgerrors.IsCode(errUnknown, pkgerrors.CodeUnauthorized))
	require.True(t, pkgerrors.IsCode(errWrong, pkgerrors.CodeUnauthorized))
	require.Equal(t, errUnknown.Error(), errWrong.Error())
}

func TestLoginDisabledAccountIsNamed(t *testing.T) {
	svc, repo, _, _ := newLoginFixture(t)
	seedUser(t, repo, "casey", "correct horse battery", false)

	_, err := svc.Login(context.Background(), LoginRequest{
		Username: "casey",
		Password: "correct horse battery",
	})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
	require.Contains(t, err.Error(), "disabled")
}

func TestRefreshRotatesPair(t *testing.T) {
	svc, repo, _, _ := newLoginFixture(t)
	user := seedUser(t, repo, "casey", "correct horse battery", true)

	login, err := svc.Login(context.Background(), LoginRequest{
		Username: "casey",
		Password: "correct horse battery",
	})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	require.NoError(t, err)
	require.NotEqual(t, login.AccessToken, refreshed.AccessToken)
	require.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig, refreshed.AccessToken)
	require.NoError(t, err)
	require.Equal(t, user.ID, claims.UserID)
}

func TestRefreshRejectsMismatchedToken(t *testing.T) {
	svc, repo, _, _ := newLoginFixture(t)
	seedUser(t, repo, "casey", "correct horse battery", true)

	login, err := svc.Login(context.Background(), LoginRequest{
		Username: "casey",
		Password: "correct horse battery",
	})
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: "not-the-refresh-token",
	})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
}

func TestRefreshRejectsGarbageAccessToken(t *testing.T) {
	svc, _, _, _ := newLoginFixture(t)

	_, err := svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  "not.a.jwt",
		RefreshToken: "whatever",
	})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
}

func TestLogoutRevokesSession(t *testing.T) {
	svc, _, sessions, _ := newLoginFixture(t)

	require.NoError(t, svc.Logout(context.Background(), "access-id"))
	require.Equal(t, []string{"access-id"}, sessions.revoked)

	require.NoError(t, svc.Logout(context.Background(), "  "))
	require.Len(t, sessions.revoked, 1)
}
