package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RequestStatus is the lifecycle status of an assessment request.
type RequestStatus string

const (
	RequestStatusDraft                 RequestStatus = "draft"
	RequestStatusAwaitingPreconditions RequestStatus = "awaiting_preconditions"
	RequestStatusReadyForAssessment    RequestStatus = "ready_for_assessment"
	RequestStatusInAssessment          RequestStatus = "in_assessment"
	RequestStatusFinalized             RequestStatus = "finalized"
	RequestStatusAborted               RequestStatus = "aborted"
	RequestStatusWithdrawn             RequestStatus = "withdrawn"
	RequestStatusCancelled             RequestStatus = "cancelled"
)

// IsTerminal reports whether no further lifecycle transition is possible.
func (s RequestStatus) IsTerminal() bool {
	switch s {
	case RequestStatusFinalized, RequestStatusAborted, RequestStatusWithdrawn, RequestStatusCancelled:
		return true
	}
	return false
}

type RequestKind string

const (
	RequestKindInternal RequestKind = "internal"
	RequestKindExternal RequestKind = "external"
)

// PermissionStatus tracks the learning coach consent sub-state.
type PermissionStatus string

const (
	PermissionNotRequested    PermissionStatus = "not_requested"
	PermissionAwaitingConsent PermissionStatus = "awaiting_consent"
	PermissionGranted         PermissionStatus = "granted"
	PermissionDenied          PermissionStatus = "denied"
)

// Decided reports whether the coach consent has already been granted or denied.
func (p PermissionStatus) Decided() bool {
	return p == PermissionGranted || p == PermissionDenied
}

type ComponentOutcome string

const (
	OutcomeUndetermined ComponentOutcome = "undetermined"
	OutcomePassed       ComponentOutcome = "passed"
	OutcomeFailed       ComponentOutcome = "failed"
)

// AssessmentRequest is the aggregate root. Courses and components are loaded
// and persisted with it; nothing mutates them outside the owning request.
type AssessmentRequest struct {
	gorm.Model
	ID         uuid.UUID   `gorm:"primaryKey;"`
	Handle     string      `gorm:"uniqueIndex;not null"`
	Kind       RequestKind `gorm:"type:VARCHAR(20);not null;default:'internal'"`
	LocationID uuid.UUID   `gorm:"not null;index:requests_location_idx"`

	CandidateID uuid.UUID `gorm:"not null"`

	// Coach consent. LearningCoachID is nil when no coach is configured, in
	// which case the permission columns are not meaningful.
	LearningCoachID  *uuid.UUID
	PermissionStatus PermissionStatus `gorm:"type:VARCHAR(30);not null;default:'not_requested'"`
	PermissionReason *string
	GrantedOnBehalf  bool `gorm:"not null;default:false"`

	Status       RequestStatus `gorm:"type:VARCHAR(30);not null;default:'draft';index:requests_status_idx"`
	StatusReason *string
	StartTime    *time.Time

	Courses    []CourseEnrollment    `gorm:"foreignKey:RequestID;references:ID;constraint:OnDelete:CASCADE;"`
	Components []AssessmentComponent `gorm:"foreignKey:RequestID;references:ID;constraint:OnDelete:CASCADE;"`
}

type AssessmentRequestList []AssessmentRequest

func (r AssessmentRequest) String() string {
	val, _ := json.Marshal(r)
	return string(val)
}

// HasCoach reports whether a learning coach is configured on the request.
func (r *AssessmentRequest) HasCoach() bool {
	return r.LearningCoachID != nil
}

// MainCourse returns the enrollment flagged as main, or nil when the
// exactly-one-main invariant is broken.
func (r *AssessmentRequest) MainCourse() *CourseEnrollment {
	for i := range r.Courses {
		if r.Courses[i].IsMain {
			return &r.Courses[i]
		}
	}
	return nil
}

// ComponentByID returns the component with the given id, or nil.
func (r *AssessmentRequest) ComponentByID(id uuid.UUID) *AssessmentComponent {
	for i := range r.Components {
		if r.Components[i].ID == id {
			return &r.Components[i]
		}
	}
	return nil
}

// CourseEnrollment ties a request to a course within an instruction group.
type CourseEnrollment struct {
	ID                 uint      `gorm:"primaryKey;autoIncrement"`
	RequestID          uuid.UUID `gorm:"not null;uniqueIndex:enrollments_request_course"`
	CourseID           uuid.UUID `gorm:"not null;uniqueIndex:enrollments_request_course"`
	InstructionGroupID uuid.UUID `gorm:"not null;uniqueIndex:enrollments_request_course"`
	IsMain             bool      `gorm:"not null;default:false"`
	Comment            *string
}

// AssessmentComponent is one gradable unit of a request, tied to a single
// core-task component.
type AssessmentComponent struct {
	ID                  uuid.UUID `gorm:"primaryKey;"`
	RequestID           uuid.UUID `gorm:"not null;index:components_request_idx"`
	CoreTaskComponentID uuid.UUID `gorm:"not null"`
	AssessorID          *uuid.UUID
	Outcome             ComponentOutcome  `gorm:"type:VARCHAR(20);not null;default:'undetermined'"`
	OutcomeComment      *string
	Criteria            []CriterionResult `gorm:"foreignKey:ComponentID;references:ID;constraint:OnDelete:CASCADE;"`
}

func (c AssessmentComponent) String() string {
	val, _ := json.Marshal(c)
	return string(val)
}

// CriterionResult holds the tri-state judgment for one criterion. Achieved is
// nil while the assessor has not recorded a judgment yet.
type CriterionResult struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"`
	ComponentID uuid.UUID `gorm:"not null;uniqueIndex:criteria_component_criterion"`
	CriterionID uuid.UUID `gorm:"not null;uniqueIndex:criteria_component_criterion"`
	Achieved    *bool
	Comment     *string
}
