package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/campustrade/campustrade-backend/pkg/enums"
)

// AuditLog is an append-only record of security and business relevant
// actions. Rows are never updated or deleted.
type AuditLog struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      *uuid.UUID        `gorm:"column:user_id;type:uuid;index:audit_logs_user_id_idx"`
	Action      enums.AuditAction `gorm:"column:action;type:text;not null"`
	TableName   *string           `gorm:"column:table_name"`
	RecordID    *uuid.UUID        `gorm:"column:record_id;type:uuid"`
	Description string            `gorm:"column:description;not null"`
	IPAddress   *string           `gorm:"column:ip_address"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime;index:audit_logs_created_at_idx"`
}
