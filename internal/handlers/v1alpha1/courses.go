package v1alpha1

import (
	"net/http"

	api "github.com/educert/pvb-service/api/v1alpha1"
	"github.com/educert/pvb-service/internal/auth"
	"github.com/educert/pvb-service/internal/handlers/v1alpha1/mappers"
	"github.com/educert/pvb-service/internal/service"
	"github.com/educert/pvb-service/internal/store/model"
	"github.com/google/uuid"
)

// (POST /api/v1alpha1/requests/{id}/courses)
func (h *ServiceHandler) AddCourse(w http.ResponseWriter, r *http.Request) {
	h.courseMutation(w, r, func(actorID, requestID uuid.UUID) (*model.AssessmentRequest, error) {
		var form api.AddCourseForm
		if err := h.decode(r, &form); err != nil {
			return nil, err
		}
		return h.courses.AddCourse(r.Context(), actorID, requestID, service.CourseForm{
			CourseID:           form.CourseId,
			InstructionGroupID: form.InstructionGroupId,
			IsMain:             form.IsMain,
			Comment:            form.Comment,
		}, form.Reason)
	})
}

// (DELETE /api/v1alpha1/requests/{id}/courses)
func (h *ServiceHandler) RemoveCourse(w http.ResponseWriter, r *http.Request) {
	h.courseMutation(w, r, func(actorID, requestID uuid.UUID) (*model.AssessmentRequest, error) {
		var form api.RemoveCourseForm
		if err := h.decode(r, &form); err != nil {
			return nil, err
		}
		return h.courses.RemoveCourse(r.Context(), actorID, requestID, form.CourseId, form.InstructionGroupId, form.Reason)
	})
}

// (PUT /api/v1alpha1/requests/{id}/courses/main)
func (h *ServiceHandler) SetMainCourse(w http.ResponseWriter, r *http.Request) {
	h.courseMutation(w, r, func(actorID, requestID uuid.UUID) (*model.AssessmentRequest, error) {
		var form api.SetMainCourseForm
		if err := h.decode(r, &form); err != nil {
			return nil, err
		}
		return h.courses.SetMainCourse(r.Context(), actorID, requestID, form.CourseId, form.InstructionGroupId, form.Reason)
	})
}

// (PUT /api/v1alpha1/requests/{id}/start-time)
func (h *ServiceHandler) SetStartTime(w http.ResponseWriter, r *http.Request) {
	h.courseMutation(w, r, func(actorID, requestID uuid.UUID) (*model.AssessmentRequest, error) {
		var form api.SetStartTimeForm
		if err := h.decode(r, &form); err != nil {
			return nil, err
		}
		return h.courses.SetStartTime(r.Context(), actorID, requestID, form.StartTime, form.Reason)
	})
}

// (PUT /api/v1alpha1/requests/{id}/coach)
func (h *ServiceHandler) ReassignCoach(w http.ResponseWriter, r *http.Request) {
	h.courseMutation(w, r, func(actorID, requestID uuid.UUID) (*model.AssessmentRequest, error) {
		var form api.ReassignCoachForm
		if err := h.decode(r, &form); err != nil {
			return nil, err
		}
		return h.courses.ReassignCoach(r.Context(), actorID, requestID, form.CoachId, form.Reason)
	})
}

// (PUT /api/v1alpha1/requests/{id}/assessor)
func (h *ServiceHandler) ReassignAssessor(w http.ResponseWriter, r *http.Request) {
	h.courseMutation(w, r, func(actorID, requestID uuid.UUID) (*model.AssessmentRequest, error) {
		var form api.ReassignAssessorForm
		if err := h.decode(r, &form); err != nil {
			return nil, err
		}
		return h.courses.ReassignAssessor(r.Context(), actorID, requestID, form.AssessorId, form.Reason)
	})
}

func (h *ServiceHandler) courseMutation(w http.ResponseWriter, r *http.Request, fn func(actorID, requestID uuid.UUID) (*model.AssessmentRequest, error)) {
	actor := auth.MustHaveActor(r.Context())

	id, err := h.requestID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	request, err := fn(actor.PersonID, id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respond(w, http.StatusOK, mappers.RequestToApi(*request))
}
