package messages

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campustrade/campustrade-backend/pkg/db/models"
	pkgerrors "github.com/campustrade/campustrade-backend/pkg/errors"
	"github.com/campustrade/campustrade-backend/pkg/pagination"
)

const maxMessageLength = 2000

type userChecker interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// SendInput carries one outgoing message.
type SendInput struct {
	ReceiverID uuid.UUID
	ProductID  *uuid.UUID
	Content    string
}

// ConversationResult is one page of a two-party thread.
type ConversationResult struct {
	Items []models.Message `json:"items"`
	Page  pagination.Page  `json:"page"`
}

// Service handles direct messages between users.
type Service struct {
	repo  Repository
	users userChecker
}

// NewService builds the messages service.
func NewService(repo Repository, users userChecker) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("messages repository required")
	}
	if users == nil {
		return nil, fmt.Errorf("user checker required")
	}
	return &Service{repo: repo, users: users}, nil
}

// Send delivers a message to another user.
func (s *Service) Send(ctx context.Context, senderID uuid.UUID, input SendInput) (*models.Message, error) {
	if senderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.ReceiverID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "receiver id required")
	}
	if input.ReceiverID == senderID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot message yourself")
	}
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message content required")
	}
	if len(content) > maxMessageLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message content too long")
	}

	if _, err := s.users.FindByID(ctx, input.ReceiverID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "receiver not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load receiver")
	}

	message := &models.Message{
		SenderID:   senderID,
		ReceiverID: input.ReceiverID,
		ProductID:  input.ProductID,
		Content:    content,
	}
	if err := s.repo.Insert(ctx, message); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert message")
	}
	return message, nil
}

// Conversation returns the thread between the caller and the other user,
// marking the incoming half read.
func (s *Service) Conversation(ctx context.Context, userID, otherID uuid.UUID, page pagination.Params) (*ConversationResult, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	page = page.Normalize()

	rows, total, err := s.repo.Conversation(ctx, userID, otherID, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load conversation")
	}
	if _, err := s.repo.MarkRead(ctx, userID, otherID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark read")
	}
	return &ConversationResult{Items: rows, Page: pagination.Build(page, total)}, nil
}

// UnreadCount reports how many incoming messages the user has not read.
func (s *Service) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	if userID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	count, err := s.repo.UnreadCount(ctx, userID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count unread")
	}
	return count, nil
}
