package audit

import (
	"context"

	"github.com/google/uuid"

	"github.com/campustrade/campustrade-backend/pkg/db/models"
	"github.com/campustrade/campustrade-backend/pkg/enums"
	"github.com/campustrade/campustrade-backend/pkg/logger"
)

type recorder interface {
	Insert(ctx context.Context, entry *models.AuditLog) error
}

// Entry carries the fields callers provide when recording an action.
type Entry struct {
	UserID      *uuid.UUID
	Action      enums.AuditAction
	TableName   string
	RecordID    *uuid.UUID
	Description string
	IPAddress   string
}

// Service records audit entries after the owning transaction commits.
// Recording is best effort; a failed insert never fails the caller.
type Service struct {
	repo recorder
	logg *logger.Logger
}

// NewService builds the audit service.
func NewService(repo recorder, logg *logger.Logger) *Service {
	return &Service{repo: repo, logg: logg}
}

// Record writes the entry, logging and swallowing any insert failure.
func (s *Service) Record(ctx context.Context, entry Entry) {
	row := &models.AuditLog{
		UserID:      entry.UserID,
		Action:      entry.Action,
		Description: entry.Description,
		RecordID:    entry.RecordID,
	}
	if entry.TableName != "" {
		table := entry.TableName
		row.TableName = &table
	}
	if entry.IPAddress != "" {
		ip := entry.IPAddress
		row.IPAddress = &ip
	}

	if err := s.repo.Insert(ctx, row); err != nil && s.logg != nil {
		s.logg.Error(ctx, "audit record failed", err)
	}
}
