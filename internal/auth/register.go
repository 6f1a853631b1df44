package auth

import (
	"context"
	"strings"

	"github.com/campustrade/campustrade-backend/internal/audit"
	"github.com/campustrade/campustrade-backend/pkg/config"
	"github.com/campustrade/campustrade-backend/pkg/db"
	"github.com/campustrade/campustrade-backend/pkg/db/models"
	"github.com/campustrade/campustrade-backend/pkg/enums"
	pkgerrors "github.com/campustrade/campustrade-backend/pkg/errors"
	"github.com/campustrade/campustrade-backend/pkg/security"
)

type registerUserRepository interface {
	ExistsByStudentID(ctx context.Context, studentID string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, user *models.User) error
}

// RegisterService handles account creation.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error)
}

// RegisterServiceParams packages the dependencies for the registration flow.
type RegisterServiceParams struct {
	UserRepo       registerUserRepository
	PasswordConfig config.PasswordConfig
	Audit          auditRecorder
}

type registerService struct {
	users       registerUserRepository
	passwordCfg config.PasswordConfig
	audit       auditRecorder
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.UserRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "user repository required")
	}
	return &registerService{
		users:       params.UserRepo,
		passwordCfg: params.PasswordConfig,
		audit:       params.Audit,
	}, nil
}

// Register creates the account after checking each unique identity field.
// The checks run student id first, then username, then email, so the caller
// learns about one collision at a time.
func (s *registerService) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	studentID := strings.TrimSpace(req.StudentID)
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	realName := strings.TrimSpace(req.RealName)

	if studentID == "" || username == "" || email == "" || realName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "student id, username, email and real name are required")
	}

	if taken, err := s.users.ExistsByStudentID(ctx, studentID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check student id")
	} else if taken {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "student id already registered")
	}
	if taken, err := s.users.ExistsByUsername(ctx, username); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check username")
	} else if taken {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "username already taken")
	}
	if taken, err := s.users.ExistsByEmail(ctx, email); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check email")
	} else if taken {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := &models.User{
		StudentID:    studentID,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		RealName:     realName,
		Phone:        req.Phone,
		Campus:       req.Campus,
		Dormitory:    req.Dormitory,
		AvatarPath:   "default.jpg",
		CreditScore:  100,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// Concurrent registration can still slip past the pre-checks.
		switch {
		case db.IsUniqueViolation(err, "users_student_id_key"):
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "student id already registered")
		case db.IsUniqueViolation(err, "users_username_key"):
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "username already taken")
		case db.IsUniqueViolation(err, "users_email_key"):
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}

	if s.audit != nil {
		id := user.ID
		s.audit.Record(ctx, audit.Entry{
			UserID:      &id,
			Action:      enums.AuditActionRegister,
			TableName:   "users",
			RecordID:    &id,
			Description: "user " + username + " registered",
		})
	}

	return &RegisterResponse{
		ID:        user.ID,
		StudentID: user.StudentID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}, nil
}
