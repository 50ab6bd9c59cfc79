package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/educert/pvb-service/internal/events"
	"github.com/educert/pvb-service/internal/store"
	"github.com/educert/pvb-service/internal/store/model"
	"github.com/google/uuid"
)

const OpCreateRequest = "create_request"

// RequestService creates aggregates and serves the read side. A request is
// created with all its courses and components in one transaction; it is never
// partially persisted.
type RequestService struct {
	store       store.Store
	authz       *AuthzService
	eventWriter *events.EventProducer
}

func NewRequestService(store store.Store, authz *AuthzService, ew *events.EventProducer) *RequestService {
	return &RequestService{store: store, authz: authz, eventWriter: ew}
}

type ComponentForm struct {
	CoreTaskComponentID uuid.UUID
	AssessorID          *uuid.UUID
	CriterionIDs        []uuid.UUID
}

type RequestCreateForm struct {
	Kind            model.RequestKind
	LocationID      uuid.UUID
	CandidateID     uuid.UUID
	LearningCoachID *uuid.UUID
	StartTime       *time.Time
	Courses         []CourseForm
	Components      []ComponentForm
}

func (f *RequestCreateForm) validate() error {
	if len(f.Courses) == 0 {
		return NewErrValidation("a request needs at least one course")
	}
	if len(f.Components) == 0 {
		return NewErrValidation("a request needs at least one assessment component")
	}
	mains := 0
	for _, c := range f.Courses {
		if c.IsMain {
			mains++
		}
	}
	if mains != 1 {
		return NewErrValidation(fmt.Sprintf("exactly one course must be flagged main, got %d", mains))
	}
	switch f.Kind {
	case model.RequestKindInternal, model.RequestKindExternal:
	default:
		return NewErrValidation(fmt.Sprintf("unknown request kind %q", f.Kind))
	}
	return nil
}

func (f *RequestCreateForm) toModel() model.AssessmentRequest {
	id := uuid.New()

	request := model.AssessmentRequest{
		ID:               id,
		Handle:           newHandle(id),
		Kind:             f.Kind,
		LocationID:       f.LocationID,
		CandidateID:      f.CandidateID,
		LearningCoachID:  f.LearningCoachID,
		PermissionStatus: model.PermissionNotRequested,
		Status:           model.RequestStatusDraft,
		StartTime:        f.StartTime,
	}

	for _, c := range f.Courses {
		request.Courses = append(request.Courses, model.CourseEnrollment{
			RequestID:          id,
			CourseID:           c.CourseID,
			InstructionGroupID: c.InstructionGroupID,
			IsMain:             c.IsMain,
			Comment:            c.Comment,
		})
	}

	for _, c := range f.Components {
		component := model.AssessmentComponent{
			ID:                  uuid.New(),
			RequestID:           id,
			CoreTaskComponentID: c.CoreTaskComponentID,
			AssessorID:          c.AssessorID,
			Outcome:             model.OutcomeUndetermined,
		}
		for _, criterionID := range c.CriterionIDs {
			component.Criteria = append(component.Criteria, model.CriterionResult{
				ComponentID: component.ID,
				CriterionID: criterionID,
			})
		}
		request.Components = append(request.Components, component)
	}

	return request
}

// newHandle derives the stable human-readable handle used in external links.
func newHandle(id uuid.UUID) string {
	short := strings.ToUpper(strings.ReplaceAll(id.String(), "-", ""))[:8]
	return fmt.Sprintf("PVB-%d-%s", time.Now().Year(), short)
}

func (s *RequestService) CreateRequest(ctx context.Context, actorID uuid.UUID, form RequestCreateForm) (*model.AssessmentRequest, error) {
	if err := form.validate(); err != nil {
		return nil, err
	}

	ctx, err := s.store.NewTransactionContext(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_, _ = store.Rollback(ctx)
	}()

	admin, err := s.authz.IsLocationAdmin(ctx, actorID, form.LocationID)
	if err != nil {
		return nil, err
	}
	if !admin {
		return nil, NewErrNotAuthorized(actorID, form.LocationID, "location admin")
	}

	request := form.toModel()
	created, err := s.store.Request().Create(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("failed to create assessment request: %w", err)
	}

	if err := writeAudit(ctx, s.store, created.ID, actorID, OpCreateRequest, nil); err != nil {
		return nil, err
	}

	if _, err := store.Commit(ctx); err != nil {
		return nil, err
	}

	notifyMutation(s.eventWriter, created, actorID, OpCreateRequest, nil)
	return created, nil
}

func (s *RequestService) GetRequest(ctx context.Context, id uuid.UUID) (*model.AssessmentRequest, error) {
	request, err := s.store.Request().Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrRequestNotFound(id)
		}
		return nil, err
	}
	return request, nil
}

func (s *RequestService) GetRequestByHandle(ctx context.Context, handle string) (*model.AssessmentRequest, error) {
	request, err := s.store.Request().GetByHandle(ctx, handle)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrValidation(fmt.Sprintf("no request with handle %q", handle))
		}
		return nil, err
	}
	return request, nil
}

type RequestFilter struct {
	LocationID  *uuid.UUID
	CandidateID *uuid.UUID
	Status      *model.RequestStatus
}

func (s *RequestService) ListRequests(ctx context.Context, filter *RequestFilter) (model.AssessmentRequestList, error) {
	storeFilter := store.NewRequestQueryFilter()
	if filter != nil {
		if filter.LocationID != nil {
			storeFilter = storeFilter.ByLocation(*filter.LocationID)
		}
		if filter.CandidateID != nil {
			storeFilter = storeFilter.ByCandidate(*filter.CandidateID)
		}
		if filter.Status != nil {
			storeFilter = storeFilter.ByStatus(*filter.Status)
		}
	}

	requests, err := s.store.Request().List(ctx, storeFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to list assessment requests: %w", err)
	}
	return requests, nil
}

func (s *RequestService) ListAuditTrail(ctx context.Context, requestID uuid.UUID) (model.AuditRecordList, error) {
	if _, err := s.GetRequest(ctx, requestID); err != nil {
		return nil, err
	}
	return s.store.Audit().List(ctx, requestID)
}
