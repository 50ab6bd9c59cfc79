package service

import (
	"context"
	"fmt"

	"github.com/educert/pvb-service/internal/events"
	"github.com/educert/pvb-service/internal/store"
	"github.com/educert/pvb-service/internal/store/model"
	"github.com/educert/pvb-service/pkg/metrics"
	"github.com/google/uuid"
)

const (
	OpSubmit          = "submit"
	OpStartAssessment = "start_assessment"
	OpAbort           = "abort"
	OpFinalize        = "finalize"
	OpWithdraw        = "withdraw"
	OpCancel          = "cancel"
)

// LifecycleService owns the request status machine. Every transition is a
// single read-validate-write unit: the stored status is re-read under lock
// inside the transaction, so concurrent duplicate calls resolve to one
// success and one InvalidTransition.
type LifecycleService struct {
	store       store.Store
	authz       *AuthzService
	eventWriter *events.EventProducer
}

func NewLifecycleService(store store.Store, authz *AuthzService, ew *events.EventProducer) *LifecycleService {
	return &LifecycleService{store: store, authz: authz, eventWriter: ew}
}

// Submit moves a draft into the active flow. With a coach whose consent is
// still outstanding the request parks in awaiting_preconditions; otherwise it
// goes straight to ready_for_assessment.
func (s *LifecycleService) Submit(ctx context.Context, actorID, requestID uuid.UUID) (*model.AssessmentRequest, error) {
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

	if !s.authz.IsCandidate(request, actorID) {
		admin, err := s.authz.IsLocationAdmin(ctx, actorID, request.LocationID)
		if err != nil {
			return nil, err
		}
		if !admin {
			return nil, NewErrNotAuthorized(actorID, requestID, "candidate or location admin")
		}
	}

	if request.Status != model.RequestStatusDraft {
		return nil, NewErrInvalidTransition(requestID, request.Status, OpSubmit)
	}

	request.Status = model.RequestStatusReadyForAssessment
	if request.HasCoach() && request.PermissionStatus != model.PermissionGranted {
		request.Status = model.RequestStatusAwaitingPreconditions
		if request.PermissionStatus == model.PermissionNotRequested {
			request.PermissionStatus = model.PermissionAwaitingConsent
		}
	}

	return s.commit(ctx, request, actorID, OpSubmit, nil)
}

// StartAssessment moves ready_for_assessment into in_assessment. From here on
// every component must have an assessor.
func (s *LifecycleService) StartAssessment(ctx context.Context, actorID, requestID uuid.UUID) (*model.AssessmentRequest, error) {
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

	if !s.authz.IsAssignedAssessor(request, actorID) {
		return nil, NewErrNotAuthorized(actorID, requestID, "assigned assessor")
	}

	if request.Status != model.RequestStatusReadyForAssessment {
		return nil, NewErrInvalidTransition(requestID, request.Status, OpStartAssessment)
	}

	for i := range request.Components {
		if request.Components[i].AssessorID == nil {
			return nil, NewErrValidation(fmt.Sprintf("component %s has no assessor assigned", request.Components[i].ID))
		}
	}

	request.Status = model.RequestStatusInAssessment

	return s.commit(ctx, request, actorID, OpStartAssessment, nil)
}

// Abort terminates a running assessment. The reason is mandatory and kept for
// audit.
func (s *LifecycleService) Abort(ctx context.Context, actorID, requestID uuid.UUID, reason string) (*model.AssessmentRequest, error) {
	if reason == "" {
		return nil, NewErrValidation("abort requires a reason")
	}

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

	if !s.authz.IsAssignedAssessor(request, actorID) {
		return nil, NewErrNotAuthorized(actorID, requestID, "assigned assessor")
	}

	if request.Status != model.RequestStatusInAssessment {
		return nil, NewErrInvalidTransition(requestID, request.Status, OpAbort)
	}

	request.Status = model.RequestStatusAborted
	request.StatusReason = &reason

	return s.commit(ctx, request, actorID, OpAbort, &reason)
}

// Finalize closes the success path. It fails with IncompleteAssessment while
// any component outcome is still undetermined; the request status is left
// untouched in that case.
func (s *LifecycleService) Finalize(ctx context.Context, actorID, requestID uuid.UUID) (*model.AssessmentRequest, error) {
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

	if !s.authz.IsAssignedAssessor(request, actorID) {
		return nil, NewErrNotAuthorized(actorID, requestID, "assigned assessor")
	}

	if request.Status != model.RequestStatusInAssessment {
		return nil, NewErrInvalidTransition(requestID, request.Status, OpFinalize)
	}

	for i := range request.Components {
		if request.Components[i].Outcome == model.OutcomeUndetermined {
			return nil, NewErrIncompleteAssessment(requestID, request.Components[i].ID)
		}
	}

	request.Status = model.RequestStatusFinalized

	return s.commit(ctx, request, actorID, OpFinalize, nil)
}

// Withdraw takes the request out of any non-terminal state on behalf of the
// candidate, the coach, or a location admin.
func (s *LifecycleService) Withdraw(ctx context.Context, actorID, requestID uuid.UUID, reason string) (*model.AssessmentRequest, error) {
	return s.terminate(ctx, actorID, requestID, reason, OpWithdraw, model.RequestStatusWithdrawn)
}

// Cancel is the bulk-path counterpart of Withdraw and lands in its own
// terminal state.
func (s *LifecycleService) Cancel(ctx context.Context, actorID, requestID uuid.UUID, reason string) (*model.AssessmentRequest, error) {
	return s.terminate(ctx, actorID, requestID, reason, OpCancel, model.RequestStatusCancelled)
}

func (s *LifecycleService) terminate(ctx context.Context, actorID, requestID uuid.UUID, reason, operation string, terminal model.RequestStatus) (*model.AssessmentRequest, error) {
	if reason == "" {
		return nil, NewErrValidation(operation + " requires a reason")
	}

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

	allowed, err := s.authz.CanWithdraw(ctx, request, actorID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, NewErrNotAuthorized(actorID, requestID, "candidate, learning coach or location admin")
	}

	if request.Status.IsTerminal() {
		return nil, NewErrInvalidTransition(requestID, request.Status, operation)
	}

	request.Status = terminal
	request.StatusReason = &reason

	return s.commit(ctx, request, actorID, operation, &reason)
}

func (s *LifecycleService) commit(ctx context.Context, request *model.AssessmentRequest, actorID uuid.UUID, operation string, reason *string) (*model.AssessmentRequest, error) {
	updated, err := s.store.Request().Update(ctx, *request)
	if err != nil {
		return nil, err
	}

	if err := writeAudit(ctx, s.store, request.ID, actorID, operation, reason); err != nil {
		return nil, err
	}

	if _, err := store.Commit(ctx); err != nil {
		return nil, err
	}

	metrics.IncreaseLifecycleTransitionMetric(operation, "success")
	notifyMutation(s.eventWriter, updated, actorID, operation, reason)
	return updated, nil
}
