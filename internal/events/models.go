package events

import (
	"time"

	"github.com/google/uuid"
)

// MutationEvent signals that a state-changing call committed. Hosts use it to
// invalidate cached views of the affected request.
type MutationEvent struct {
	RequestID uuid.UUID `json:"request_id"`
	Operation string    `json:"operation"`
	Status    string    `json:"status"`
	ActorID   uuid.UUID `json:"actor_id"`
}

// AuditEvent mirrors the persisted audit record for external logging and
// analytics consumers.
type AuditEvent struct {
	RequestID uuid.UUID `json:"request_id"`
	ActorID   uuid.UUID `json:"actor_id"`
	Operation string    `json:"operation"`
	Reason    *string   `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
