package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AuditRecord is written in the same transaction as every state-changing
// operation. The reason column carries the human-readable justification the
// operation was called with; compliance requires it to survive the request.
type AuditRecord struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `gorm:"not null;index:audit_created_idx"`
	RequestID uuid.UUID `gorm:"not null;index:audit_request_idx"`
	ActorID   uuid.UUID `gorm:"not null"`
	Operation string    `gorm:"type:VARCHAR(60);not null"`
	Reason    *string
}

type AuditRecordList []AuditRecord

func (a AuditRecord) String() string {
	val, _ := json.Marshal(a)
	return string(val)
}
