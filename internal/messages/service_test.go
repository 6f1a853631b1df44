package messages

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/campustrade/campustrade-backend/pkg/db/models"
	pkgerrors "github.com/campustrade/campustrade-backend/pkg/errors"
	"github.com/campustrade/campustrade-backend/pkg/pagination"
)

type stubRepo struct {
	messages []models.Message
	marked   int64
}

func (s *stubRepo) Insert(_ context.Context, message *models.Message) error {
	if message.ID == uuid.Nil {
		message.ID = uuid.New()
	}
	s.messages = append(s.messages, *message)
	return nil
}

func (s *stubRepo) Conversation(_ context.Context, userID, otherID uuid.UUID, _ pagination.Params) ([]models.Message, int64, error) {
	var rows []models.Message
	for _, m := range s.messages {
		if (m.SenderID == userID && m.ReceiverID == otherID) ||
			(m.SenderID == otherID && m.ReceiverID == userID) {
			rows = append(rows, m)
		}
	}
	return rows, int64(len(rows)), nil
}

func (s *stubRepo) MarkRead(_ context.Context, userID, otherID uuid.UUID) (int64, error) {
	var n int64
	for i := range s.messages {
		m := &s.messages[i]
		if m.ReceiverID == userID && m.SenderID == otherID && !m.IsRead {
			m.IsRead = true
			n++
		}
	}
	s.marked += n
	return n, nil
}

func (s *stubRepo) UnreadCount(_ context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	for _, m := range s.messages {
		if m.ReceiverID == userID && !m.IsRead {
			n++
		}
	}
	return n, nil
}

type stubUsers struct {
	known map[uuid.UUID]bool
}

func (s *stubUsers) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if s.known[id] {
		return &models.User{ID: id}, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func newFixture(t *testing.T) (*Service, *stubRepo, *stubUsers) {
	t.Helper()
	repo := &stubRepo{}
	users := &stubUsers{known: map[uuid.UUID]bool{}}
	svc, err := NewService(repo, users)
	require.NoError(t, err)
	return svc, repo, users
}

func TestSendTrimsAndDelivers(t *testing.T) {
	svc, repo, users := newFixture(t)
	senderID := uuid.New()
	receiverID := uuid.New()
	users.known[receiverID] = true

	message, err := svc.Send(context.Background(), senderID, SendInput{
		ReceiverID: receiverID,
		Content:    "  is the bike still available?  ",
	})
	require.NoError(t, err)
	require.Equal(t, "is the bike still available?", message.Content)
	require.Len(t, repo.messages, 1)
}

func TestSendRejectsSelfAndEmpty(t *testing.T) {
	svc, _, users := newFixture(t)
	senderID := uuid.New()
	receiverID := uuid.New()
	users.known[receiverID] = true

	_, err := svc.Send(context.Background(), senderID, SendInput{ReceiverID: senderID, Content: "hi"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.Send(context.Background(), senderID, SendInput{ReceiverID: receiverID, Content: "   "})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.Send(context.Background(), senderID, SendInput{
		ReceiverID: receiverID,
		Content:    strings.Repeat("a", maxMessageLength+1),
	})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestSendUnknownReceiverIsNotFound(t *testing.T) {
	svc, _, _ := newFixture(t)

	_, err := svc.Send(context.Background(), uuid.New(), SendInput{ReceiverID: uuid.New(), Content: "hi"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestConversationMarksIncomingRead(t *testing.T) {
	svc, repo, users := newFixture(t)
	alice := uuid.New()
	bob := uuid.New()
	users.known[alice] = true
	users.known[bob] = true

	_, err := svc.Send(context.Background(), bob, SendInput{ReceiverID: alice, Content: "hello"})
	require.NoError(t, err)

	unread, err := svc.UnreadCount(context.Background(), alice)
	require.NoError(t, err)
	require.EqualValues(t, 1, unread)

	result, err := svc.Conversation(context.Background(), alice, bob, pagination.Params{Page: 1})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	require.EqualValues(t, 1, repo.marked)

	unread, err = svc.UnreadCount(context.Background(), alice)
	require.NoError(t, err)
	require.EqualValues(t, 0, unread)
}
