// Package v1alpha1 defines the JSON types of the assessment request API.
package v1alpha1

import (
	"time"

	"github.com/google/uuid"
)

type AssessmentRequest struct {
	Id            uuid.UUID             `json:"id"`
	Handle        string                `json:"handle"`
	Kind          string                `json:"kind"`
	LocationId    uuid.UUID             `json:"location_id"`
	CandidateId   uuid.UUID             `json:"candidate_id"`
	LearningCoach *LearningCoach        `json:"learning_coach,omitempty"`
	Status        string                `json:"status"`
	StatusReason  *string               `json:"status_reason,omitempty"`
	StartTime     *time.Time            `json:"start_time,omitempty"`
	Courses       []CourseEnrollment    `json:"courses"`
	Components    []AssessmentComponent `json:"components"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

type LearningCoach struct {
	PersonId         uuid.UUID `json:"person_id"`
	PermissionStatus string    `json:"permission_status"`
	PermissionReason *string   `json:"permission_reason,omitempty"`
	GrantedOnBehalf  bool      `json:"granted_on_behalf"`
}

type CourseEnrollment struct {
	CourseId           uuid.UUID `json:"course_id"`
	InstructionGroupId uuid.UUID `json:"instruction_group_id"`
	IsMain             bool      `json:"is_main"`
	Comment            *string   `json:"comment,omitempty"`
}

type AssessmentComponent struct {
	Id                  uuid.UUID         `json:"id"`
	CoreTaskComponentId uuid.UUID         `json:"core_task_component_id"`
	AssessorId          *uuid.UUID        `json:"assessor_id,omitempty"`
	Outcome             string            `json:"outcome"`
	OutcomeComment      *string           `json:"outcome_comment,omitempty"`
	Criteria            []CriterionResult `json:"criteria"`
}

type CriterionResult struct {
	CriterionId uuid.UUID `json:"criterion_id"`
	Achieved    *bool     `json:"achieved,omitempty"`
	Comment     *string   `json:"comment,omitempty"`
}

type AuditRecord struct {
	RequestId uuid.UUID `json:"request_id"`
	ActorId   uuid.UUID `json:"actor_id"`
	Operation string    `json:"operation"`
	Reason    *string   `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type RequestCreateForm struct {
	Kind            string                `json:"kind" validate:"required,oneof=internal external"`
	LocationId      uuid.UUID             `json:"location_id" validate:"required"`
	CandidateId     uuid.UUID             `json:"candidate_id" validate:"required"`
	LearningCoachId *uuid.UUID            `json:"learning_coach_id,omitempty"`
	StartTime       *time.Time            `json:"start_time,omitempty"`
	Courses         []CourseForm          `json:"courses" validate:"required,min=1,dive"`
	Components      []ComponentCreateForm `json:"components" validate:"required,min=1,dive"`
}

type CourseForm struct {
	CourseId           uuid.UUID `json:"course_id" validate:"required"`
	InstructionGroupId uuid.UUID `json:"instruction_group_id" validate:"required"`
	IsMain             bool      `json:"is_main"`
	Comment            *string   `json:"comment,omitempty"`
}

type ComponentCreateForm struct {
	CoreTaskComponentId uuid.UUID   `json:"core_task_component_id" validate:"required"`
	AssessorId          *uuid.UUID  `json:"assessor_id,omitempty"`
	CriterionIds        []uuid.UUID `json:"criterion_ids,omitempty"`
}

// ReasonForm carries the mandatory justification for transitions and
// administrative changes.
type ReasonForm struct {
	Reason string `json:"reason" validate:"required"`
}

// PermissionForm carries the optional justification of a consent decision.
type PermissionForm struct {
	Reason *string `json:"reason,omitempty"`
}

type AddCourseForm struct {
	CourseForm
	Reason string `json:"reason" validate:"required"`
}

type RemoveCourseForm struct {
	CourseId           uuid.UUID `json:"course_id" validate:"required"`
	InstructionGroupId uuid.UUID `json:"instruction_group_id" validate:"required"`
	Reason             string    `json:"reason" validate:"required"`
}

type SetMainCourseForm struct {
	CourseId           uuid.UUID `json:"course_id" validate:"required"`
	InstructionGroupId uuid.UUID `json:"instruction_group_id" validate:"required"`
	Reason             string    `json:"reason" validate:"required"`
}

type SetStartTimeForm struct {
	StartTime time.Time `json:"start_time" validate:"required"`
	Reason    string    `json:"reason" validate:"required"`
}

type ReassignCoachForm struct {
	CoachId uuid.UUID `json:"coach_id" validate:"required"`
	Reason  string    `json:"reason" validate:"required"`
}

type ReassignAssessorForm struct {
	AssessorId uuid.UUID `json:"assessor_id" validate:"required"`
	Reason     string    `json:"reason" validate:"required"`
}

type CriterionWriteForm struct {
	CriterionId uuid.UUID `json:"criterion_id" validate:"required"`
	Achieved    *bool     `json:"achieved"`
	Comment     *string   `json:"comment,omitempty"`
}

type SetCriteriaForm struct {
	Results []CriterionWriteForm `json:"results" validate:"required,min=1,dive"`
}

type SetOutcomeForm struct {
	Outcome string  `json:"outcome" validate:"required,oneof=passed failed undetermined"`
	Comment *string `json:"comment,omitempty"`
}

// Bulk forms. RequestIds must be non-empty; everything else is operation
// specific.
type BulkSubmitForm struct {
	RequestIds []uuid.UUID `json:"request_ids" validate:"required,min=1"`
}

type BulkCancelForm struct {
	RequestIds []uuid.UUID `json:"request_ids" validate:"required,min=1"`
	Reason     string      `json:"reason" validate:"required"`
}

type BulkGrantOnBehalfForm struct {
	RequestIds []uuid.UUID `json:"request_ids" validate:"required,min=1"`
	Reason     *string     `json:"reason,omitempty"`
}

type BulkSetStartTimeForm struct {
	RequestIds []uuid.UUID `json:"request_ids" validate:"required,min=1"`
	StartTime  time.Time   `json:"start_time" validate:"required"`
	Reason     string      `json:"reason" validate:"required"`
}

type BulkReassignCoachForm struct {
	RequestIds []uuid.UUID `json:"request_ids" validate:"required,min=1"`
	CoachId    uuid.UUID   `json:"coach_id" validate:"required"`
	Reason     string      `json:"reason" validate:"required"`
}

type BulkReassignAssessorForm struct {
	RequestIds []uuid.UUID `json:"request_ids" validate:"required,min=1"`
	AssessorId uuid.UUID   `json:"assessor_id" validate:"required"`
	Reason     string      `json:"reason" validate:"required"`
}

type BulkItemResult struct {
	RequestId uuid.UUID `json:"request_id"`
	Success   bool      `json:"success"`
	Error     *string   `json:"error,omitempty"`
	Message   *string   `json:"message,omitempty"`
}

type BulkResult struct {
	Total        int              `json:"total"`
	SuccessCount int              `json:"success_count"`
	Results      []BulkItemResult `json:"results"`
}

type Error struct {
	Message   string  `json:"message"`
	Kind      string  `json:"kind,omitempty"`
	RequestId *string `json:"request_id,omitempty"`
}
