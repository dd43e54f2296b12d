package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditAction is the kind of change an audit entry records.
type AuditAction string

const (
	AuditActionCreate  AuditAction = "create"
	AuditActionUpdate  AuditAction = "update"
	AuditActionUpload  AuditAction = "upload"
	AuditActionApprove AuditAction = "approve"
	AuditActionReject  AuditAction = "reject"
	AuditActionSign    AuditAction = "sign"
	AuditActionEdit    AuditAction = "edit"
	AuditActionDelete  AuditAction = "delete"
)

// Entity type values used in audit entries.
const (
	EntityTypeUser      = "user"
	EntityTypeVendor    = "vendor"
	EntityTypeProduct   = "product"
	EntityTypeDocument  = "document"
	EntityTypeSignature = "signature"
)

// AuditLog is one row of the append-only trail. Rows are never updated or
// deleted; the table is the single source of historical truth.
type AuditLog struct {
	ID          uuid.UUID   `json:"id" gorm:"type:char(36);primaryKey"`
	UserID      uuid.UUID   `json:"userId" gorm:"type:char(36);not null;index"`
	Action      AuditAction `json:"action" gorm:"type:varchar(20);not null;index"`
	EntityType  string      `json:"entityType" gorm:"size:50;not null;index:idx_audit_entity"`
	EntityID    uuid.UUID   `json:"entityId" gorm:"type:char(36);not null;index:idx_audit_entity"`
	Description string      `json:"description" gorm:"type:text;not null"`
	Changes     string      `json:"changes,omitempty" gorm:"type:text"` // JSON {before, after} snapshot pair
	Version     string      `json:"version,omitempty" gorm:"size:20"`
	Timestamp   time.Time   `json:"timestamp" gorm:"autoCreateTime;index"`
}

// BeforeCreate sets UUID before creating the record.
func (l *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
