package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/educert/pvb-service/internal/events"
	"github.com/educert/pvb-service/internal/store"
	"github.com/educert/pvb-service/internal/store/model"
	"github.com/google/uuid"
)

const (
	OpSetCriterionResult = "set_criterion_result"
	OpSetCriteriaResults = "set_criteria_results"
	OpSetOutcome         = "set_outcome"
)

// CriterionWrite is one criterion judgment within a batch. Achieved nil
// explicitly resets the criterion to unset.
type CriterionWrite struct {
	CriterionID uuid.UUID
	Achieved    *bool
	Comment     *string
}

// CriteriaService records per-criterion judgments and the component outcome.
// The outcome is an explicit write: it is never derived from the criteria, so
// the assessor's overall judgment can differ from the mechanical aggregate.
type CriteriaService struct {
	store       store.Store
	authz       *AuthzService
	eventWriter *events.EventProducer
}

func NewCriteriaService(store store.Store, authz *AuthzService, ew *events.EventProducer) *CriteriaService {
	return &CriteriaService{store: store, authz: authz, eventWriter: ew}
}

func (s *CriteriaService) SetCriterionResult(ctx context.Context, actorID, componentID, criterionID uuid.UUID, achieved *bool, comment *string) (*model.AssessmentRequest, error) {
	return s.SetCriteriaResults(ctx, actorID, componentID, []CriterionWrite{{
		CriterionID: criterionID,
		Achieved:    achieved,
		Comment:     comment,
	}})
}

// SetCriteriaResults applies the batch as a single unit: either every listed
// criterion is written or none is.
func (s *CriteriaService) SetCriteriaResults(ctx context.Context, actorID, componentID uuid.UUID, results []CriterionWrite) (*model.AssessmentRequest, error) {
	if len(results) == 0 {
		return nil, NewErrValidation("empty criteria result set")
	}

	ctx, err := s.store.NewTransactionContext(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_, _ = store.Rollback(ctx)
	}()

	request, component, err := s.loadComponent(ctx, actorID, componentID, OpSetCriteriaResults)
	if err != nil {
		return nil, err
	}

	for _, write := range results {
		if err := s.store.Request().SaveCriterion(ctx, model.CriterionResult{
			ComponentID: component.ID,
			CriterionID: write.CriterionID,
			Achieved:    write.Achieved,
			Comment:     write.Comment,
		}); err != nil {
			return nil, err
		}
	}

	if err := writeAudit(ctx, s.store, request.ID, actorID, OpSetCriteriaResults, nil); err != nil {
		return nil, err
	}

	if _, err := store.Commit(ctx); err != nil {
		return nil, err
	}

	notifyMutation(s.eventWriter, request, actorID, OpSetCriteriaResults, nil)
	return s.reload(ctx, request.ID)
}

// SetOutcome records the component's overall outcome, independent of how many
// criteria already carry a judgment.
func (s *CriteriaService) SetOutcome(ctx context.Context, actorID, componentID uuid.UUID, outcome model.ComponentOutcome, comment *string) (*model.AssessmentRequest, error) {
	switch outcome {
	case model.OutcomePassed, model.OutcomeFailed, model.OutcomeUndetermined:
	default:
		return nil, NewErrValidation(fmt.Sprintf("unknown outcome %q", outcome))
	}

	ctx, err := s.store.NewTransactionContext(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_, _ = store.Rollback(ctx)
	}()

	request, component, err := s.loadComponent(ctx, actorID, componentID, OpSetOutcome)
	if err != nil {
		return nil, err
	}

	component.Outcome = outcome
	component.OutcomeComment = comment
	if err := s.store.Request().UpdateComponent(ctx, *component); err != nil {
		return nil, err
	}

	if err := writeAudit(ctx, s.store, request.ID, actorID, OpSetOutcome, comment); err != nil {
		return nil, err
	}

	if _, err := store.Commit(ctx); err != nil {
		return nil, err
	}

	notifyMutation(s.eventWriter, request, actorID, OpSetOutcome, comment)
	return s.reload(ctx, request.ID)
}

// loadComponent resolves the owning aggregate under lock and applies the two
// checks shared by all criteria writes: the actor is the component's assigned
// assessor and the request is in_assessment.
func (s *CriteriaService) loadComponent(ctx context.Context, actorID, componentID uuid.UUID, operation string) (*model.AssessmentRequest, *model.AssessmentComponent, error) {
	request, err := s.store.Request().GetByComponentForUpdate(ctx, componentID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, nil, NewErrRequestNotFound(componentID)
		}
		return nil, nil, err
	}

	component := request.ComponentByID(componentID)
	if component == nil {
		return nil, nil, NewErrRequestNotFound(componentID)
	}

	if component.AssessorID == nil || *component.AssessorID != actorID {
		return nil, nil, NewErrNotAuthorized(actorID, request.ID, "assigned assessor")
	}

	if request.Status != model.RequestStatusInAssessment {
		return nil, nil, NewErrInvalidTransition(request.ID, request.Status, operation)
	}

	return request, component, nil
}

func (s *CriteriaService) reload(ctx context.Context, requestID uuid.UUID) (*model.AssessmentRequest, error) {
	request, err := s.store.Request().Get(ctx, requestID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrRequestNotFound(requestID)
		}
		return nil, err
	}
	return request, nil
}
