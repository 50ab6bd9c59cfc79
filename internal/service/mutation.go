package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/educert/pvb-service/internal/events"
	"github.com/educert/pvb-service/internal/store"
	"github.com/educert/pvb-service/internal/store/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// loadForUpdate resolves the aggregate inside the current transaction,
// mapping the store sentinel to the service error.
func loadForUpdate(ctx context.Context, s store.Store, requestID uuid.UUID) (*model.AssessmentRequest, error) {
	request, err := s.Request().GetForUpdate(ctx, requestID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrRequestNotFound(requestID)
		}
		return nil, err
	}
	return request, nil
}

// writeAudit records the actor, operation and reason in the same transaction
// as the mutation it belongs to.
func writeAudit(ctx context.Context, s store.Store, requestID, actorID uuid.UUID, operation string, reason *string) error {
	return s.Audit().Create(ctx, model.AuditRecord{
		RequestID: requestID,
		ActorID:   actorID,
		Operation: operation,
		Reason:    reason,
	})
}

// notifyMutation emits the post-commit signals: a mutation event for cache
// invalidation and an audit event for external consumers. Must only be called
// after the transaction committed.
func notifyMutation(producer *events.EventProducer, request *model.AssessmentRequest, actorID uuid.UUID, operation string, reason *string) {
	if producer == nil {
		return
	}

	mutation := events.MutationEvent{
		RequestID: request.ID,
		Operation: operation,
		Status:    string(request.Status),
		ActorID:   actorID,
	}
	writeEvent(producer, events.MutationMessageKind, mutation)

	audit := events.AuditEvent{
		RequestID: request.ID,
		ActorID:   actorID,
		Operation: operation,
		Reason:    reason,
		Timestamp: time.Now().UTC(),
	}
	writeEvent(producer, events.AuditMessageKind, audit)
}

func writeEvent(producer *events.EventProducer, kind string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		zap.S().Named("service").Errorw("failed to marshal event", "error", err, "event_kind", kind)
		return
	}
	if err := producer.Write(context.TODO(), kind, bytes.NewReader(data)); err != nil {
		zap.S().Named("service").Errorw("failed to write event", "error", err, "event_kind", kind)
	}
}
