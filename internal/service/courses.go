package service

import (
	"context"
	"errors"
	"time"

	"github.com/educert/pvb-service/internal/events"
	"github.com/educert/pvb-service/internal/store"
	"github.com/educert/pvb-service/internal/store/model"
	"github.com/google/uuid"
)

const (
	OpAddCourse        = "add_course"
	OpRemoveCourse     = "remove_course"
	OpSetMainCourse    = "set_main_course"
	OpSetStartTime     = "set_start_time"
	OpReassignCoach    = "reassign_coach"
	OpReassignAssessor = "reassign_assessor"
)

// CourseService manages a request's course enrollments and the
// administrative reassignments (start time, coach, assessor). Every call
// requires a location admin and a reason; compliance wants the justification
// on record, not just the change.
type CourseService struct {
	store       store.Store
	authz       *AuthzService
	eventWriter *events.EventProducer
}

func NewCourseService(store store.Store, authz *AuthzService, ew *events.EventProducer) *CourseService {
	return &CourseService{store: store, authz: authz, eventWriter: ew}
}

type CourseForm struct {
	CourseID           uuid.UUID
	InstructionGroupID uuid.UUID
	IsMain             bool
	Comment            *string
}

// AddCourse appends an enrollment. When the new course is flagged main, the
// previous main course is unflagged in the same transaction.
func (s *CourseService) AddCourse(ctx context.Context, actorID, requestID uuid.UUID, form CourseForm, reason string) (*model.AssessmentRequest, error) {
	return s.adminMutation(ctx, actorID, requestID, OpAddCourse, reason, func(ctx context.Context, request *model.AssessmentRequest) error {
		if form.IsMain {
			if err := s.unsetMain(ctx, request); err != nil {
				return err
			}
		}
		err := s.store.Request().AddCourse(ctx, model.CourseEnrollment{
			RequestID:          request.ID,
			CourseID:           form.CourseID,
			InstructionGroupID: form.InstructionGroupID,
			IsMain:             form.IsMain,
			Comment:            form.Comment,
		})
		if errors.Is(err, store.ErrDuplicateKey) {
			return NewErrValidation("course is already enrolled on the request")
		}
		return err
	})
}

// RemoveCourse drops an enrollment, refusing to leave the request without
// courses. Removing the main course promotes the first remaining enrollment.
func (s *CourseService) RemoveCourse(ctx context.Context, actorID, requestID, courseID, instructionGroupID uuid.UUID, reason string) (*model.AssessmentRequest, error) {
	return s.adminMutation(ctx, actorID, requestID, OpRemoveCourse, reason, func(ctx context.Context, request *model.AssessmentRequest) error {
		if len(request.Courses) <= 1 {
			return NewErrLastCourse(request.ID)
		}

		var removed *model.CourseEnrollment
		for i := range request.Courses {
			if request.Courses[i].CourseID == courseID && request.Courses[i].InstructionGroupID == instructionGroupID {
				removed = &request.Courses[i]
				break
			}
		}
		if removed == nil {
			return NewErrValidation("course is not enrolled on the request")
		}

		if err := s.store.Request().DeleteCourse(ctx, request.ID, courseID, instructionGroupID); err != nil {
			return err
		}

		if removed.IsMain {
			for i := range request.Courses {
				course := request.Courses[i]
				if course.CourseID == courseID && course.InstructionGroupID == instructionGroupID {
					continue
				}
				course.IsMain = true
				return s.store.Request().UpdateCourse(ctx, course)
			}
		}
		return nil
	})
}

// SetMainCourse re-flags the main course. Flagging the current main course
// changes nothing but is still audited with the given reason.
func (s *CourseService) SetMainCourse(ctx context.Context, actorID, requestID, courseID, instructionGroupID uuid.UUID, reason string) (*model.AssessmentRequest, error) {
	return s.adminMutation(ctx, actorID, requestID, OpSetMainCourse, reason, func(ctx context.Context, request *model.AssessmentRequest) error {
		var target *model.CourseEnrollment
		for i := range request.Courses {
			if request.Courses[i].CourseID == courseID && request.Courses[i].InstructionGroupID == instructionGroupID {
				target = &request.Courses[i]
				break
			}
		}
		if target == nil {
			return NewErrValidation("course is not enrolled on the request")
		}
		if target.IsMain {
			return nil
		}

		if err := s.unsetMain(ctx, request); err != nil {
			return err
		}
		target.IsMain = true
		return s.store.Request().UpdateCourse(ctx, *target)
	})
}

// SetStartTime schedules or reschedules the assessment. Only allowed before
// the assessment started.
func (s *CourseService) SetStartTime(ctx context.Context, actorID, requestID uuid.UUID, startTime time.Time, reason string) (*model.AssessmentRequest, error) {
	return s.adminMutation(ctx, actorID, requestID, OpSetStartTime, reason, func(ctx context.Context, request *model.AssessmentRequest) error {
		switch request.Status {
		case model.RequestStatusDraft, model.RequestStatusAwaitingPreconditions, model.RequestStatusReadyForAssessment:
		default:
			return NewErrInvalidTransition(request.ID, request.Status, OpSetStartTime)
		}
		request.StartTime = &startTime
		_, err := s.store.Request().Update(ctx, *request)
		return err
	})
}

// ReassignCoach replaces the learning coach. The new coach's consent is
// outstanding again: a request already past the consent gate drops back to
// awaiting_preconditions so it cannot stay ready without a granted
// permission.
func (s *CourseService) ReassignCoach(ctx context.Context, actorID, requestID, coachID uuid.UUID, reason string) (*model.AssessmentRequest, error) {
	return s.adminMutation(ctx, actorID, requestID, OpReassignCoach, reason, func(ctx context.Context, request *model.AssessmentRequest) error {
		switch request.Status {
		case model.RequestStatusDraft, model.RequestStatusAwaitingPreconditions, model.RequestStatusReadyForAssessment:
		default:
			return NewErrInvalidTransition(request.ID, request.Status, OpReassignCoach)
		}

		request.LearningCoachID = &coachID
		request.GrantedOnBehalf = false
		request.PermissionReason = nil

		switch request.Status {
		case model.RequestStatusDraft:
			request.PermissionStatus = model.PermissionNotRequested
		case model.RequestStatusAwaitingPreconditions:
			request.PermissionStatus = model.PermissionAwaitingConsent
		case model.RequestStatusReadyForAssessment:
			request.PermissionStatus = model.PermissionAwaitingConsent
			request.Status = model.RequestStatusAwaitingPreconditions
		}

		_, err := s.store.Request().Update(ctx, *request)
		return err
	})
}

// ReassignAssessor assigns the assessor on every component of the request.
// Allowed until the assessment starts.
func (s *CourseService) ReassignAssessor(ctx context.Context, actorID, requestID, assessorID uuid.UUID, reason string) (*model.AssessmentRequest, error) {
	return s.adminMutation(ctx, actorID, requestID, OpReassignAssessor, reason, func(ctx context.Context, request *model.AssessmentRequest) error {
		switch request.Status {
		case model.RequestStatusDraft, model.RequestStatusAwaitingPreconditions, model.RequestStatusReadyForAssessment:
		default:
			return NewErrInvalidTransition(request.ID, request.Status, OpReassignAssessor)
		}

		for i := range request.Components {
			request.Components[i].AssessorID = &assessorID
			if err := s.store.Request().UpdateComponent(ctx, request.Components[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// adminMutation wraps the shared skeleton: location admin check, mandatory
// reason, read-validate-write in one transaction, audit, post-commit event.
func (s *CourseService) adminMutation(ctx context.Context, actorID, requestID uuid.UUID, operation, reason string, mutate func(ctx context.Context, request *model.AssessmentRequest) error) (*model.AssessmentRequest, error) {
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

	admin, err := s.authz.IsLocationAdmin(ctx, actorID, request.LocationID)
	if err != nil {
		return nil, err
	}
	if !admin {
		return nil, NewErrNotAuthorized(actorID, requestID, "location admin")
	}

	if err := mutate(ctx, request); err != nil {
		return nil, err
	}

	if err := writeAudit(ctx, s.store, requestID, actorID, operation, &reason); err != nil {
		return nil, err
	}

	if _, err := store.Commit(ctx); err != nil {
		return nil, err
	}

	notifyMutation(s.eventWriter, request, actorID, operation, &reason)

	updated, err := s.store.Request().Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *CourseService) unsetMain(ctx context.Context, request *model.AssessmentRequest) error {
	for i := range request.Courses {
		if request.Courses[i].IsMain {
			request.Courses[i].IsMain = false
			return s.store.Request().UpdateCourse(ctx, request.Courses[i])
		}
	}
	return nil
}
