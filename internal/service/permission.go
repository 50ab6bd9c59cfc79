package service

import (
	"context"

	"github.com/educert/pvb-service/internal/events"
	"github.com/educert/pvb-service/internal/store"
	"github.com/educert/pvb-service/internal/store/model"
	"github.com/google/uuid"
)

const (
	OpGrantPermission         = "grant_permission"
	OpGrantPermissionOnBehalf = "grant_permission_on_behalf"
	OpDenyPermission          = "deny_permission"
)

// PermissionService is the consent gate. A grant that clears the last
// outstanding precondition also moves the request to ready_for_assessment,
// inside the same transaction; the aggregate never commits with a granted
// permission but a stale status.
type PermissionService struct {
	store       store.Store
	authz       *AuthzService
	eventWriter *events.EventProducer
}

func NewPermissionService(store store.Store, authz *AuthzService, ew *events.EventProducer) *PermissionService {
	return &PermissionService{store: store, authz: authz, eventWriter: ew}
}

// Grant records the configured learning coach's consent.
func (s *PermissionService) Grant(ctx context.Context, actorID, requestID uuid.UUID, reason *string) (*model.AssessmentRequest, error) {
	return s.decide(ctx, actorID, requestID, reason, model.PermissionGranted, false, OpGrantPermission)
}

// GrantOnBehalf lets a location admin consent in the coach's place. The grant
// is flagged for audit but has the same effect.
func (s *PermissionService) GrantOnBehalf(ctx context.Context, actorID, requestID uuid.UUID, reason *string) (*model.AssessmentRequest, error) {
	return s.decide(ctx, actorID, requestID, reason, model.PermissionGranted, true, OpGrantPermissionOnBehalf)
}

// Deny records a refusal. The reason is mandatory.
func (s *PermissionService) Deny(ctx context.Context, actorID, requestID uuid.UUID, reason string) (*model.AssessmentRequest, error) {
	if reason == "" {
		return nil, NewErrValidation("denying permission requires a reason")
	}
	return s.decide(ctx, actorID, requestID, &reason, model.PermissionDenied, false, OpDenyPermission)
}

func (s *PermissionService) decide(ctx context.Context, actorID, requestID uuid.UUID, reason *string, decision model.PermissionStatus, onBehalf bool, operation string) (*model.AssessmentRequest, error) {
	ctx, err := s.store.NewTransactionContext(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_, _ = store.Rollback(ctx)
	}()

	request, err := loadForUpdate(ctx, s.store, requestID)
	if err != nil {
		return nil, err
	}

	if !request.HasCoach() {
		return nil, NewErrValidation("request has no learning coach configured")
	}

	if onBehalf {
		admin, err := s.authz.IsLocationAdmin(ctx, actorID, request.LocationID)
		if err != nil {
			return nil, err
		}
		if !admin {
			return nil, NewErrNotAuthorized(actorID, requestID, "location admin")
		}
	} else if !s.authz.IsLearningCoach(request, actorID) {
		return nil, NewErrNotAuthorized(actorID, requestID, "learning coach")
	}

	// a duplicate grant/deny is reported as AlreadyDecided even though the
	// granted request has long moved on to ready_for_assessment
	if request.PermissionStatus.Decided() {
		return nil, NewErrAlreadyDecided(requestID, request.PermissionStatus)
	}

	if request.Status != model.RequestStatusAwaitingPreconditions {
		return nil, NewErrInvalidTransition(requestID, request.Status, operation)
	}
	if request.PermissionStatus != model.PermissionAwaitingConsent {
		return nil, NewErrInvalidTransition(requestID, request.Status, operation)
	}

	request.PermissionStatus = decision
	request.PermissionReason = reason
	request.GrantedOnBehalf = onBehalf && decision == model.PermissionGranted

	// the permission was the only precondition blocking the request
	if decision == model.PermissionGranted {
		request.Status = model.RequestStatusReadyForAssessment
	}

	updated, err := s.store.Request().Update(ctx, *request)
	if err != nil {
		return nil, err
	}

	if err := writeAudit(ctx, s.store, requestID, actorID, operation, reason); err != nil {
		return nil, err
	}

	if _, err := store.Commit(ctx); err != nil {
		return nil, err
	}

	notifyMutation(s.eventWriter, updated, actorID, operation, reason)
	return updated, nil
}
