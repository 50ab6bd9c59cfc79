package v1alpha1

import (
	"net/http"

	api "github.com/educert/pvb-service/api/v1alpha1"
	"github.com/educert/pvb-service/internal/auth"
	"github.com/educert/pvb-service/internal/handlers/v1alpha1/mappers"
	"github.com/educert/pvb-service/internal/store/model"
	"github.com/google/uuid"
)

// (POST /api/v1alpha1/requests/{id}/submit)
func (h *ServiceHandler) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(actorID, requestID uuid.UUID) (*model.AssessmentRequest, error) {
		return h.lifecycle.Submit(r.Context(), actorID, requestID)
	})
}

// (POST /api/v1alpha1/requests/{id}/start)
func (h *ServiceHandler) StartAssessment(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(actorID, requestID uuid.UUID) (*model.AssessmentRequest, error) {
		return h.lifecycle.StartAssessment(r.Context(), actorID, requestID)
	})
}

// (POST /api/v1alpha1/requests/{id}/finalize)
func (h *ServiceHandler) FinalizeRequest(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(actorID, requestID uuid.UUID) (*model.AssessmentRequest, error) {
		return h.lifecycle.Finalize(r.Context(), actorID, requestID)
	})
}

// (POST /api/v1alpha1/requests/{id}/abort)
func (h *ServiceHandler) AbortRequest(w http.ResponseWriter, r *http.Request) {
	h.transitionWithReason(w, r, func(actorID, requestID uuid.UUID, reason string) (*model.AssessmentRequest, error) {
		return h.lifecycle.Abort(r.Context(), actorID, requestID, reason)
	})
}

// (POST /api/v1alpha1/requests/{id}/withdraw)
func (h *ServiceHandler) WithdrawRequest(w http.ResponseWriter, r *http.Request) {
	h.transitionWithReason(w, r, func(actorID, requestID uuid.UUID, reason string) (*model.AssessmentRequest, error) {
		return h.lifecycle.Withdraw(r.Context(), actorID, requestID, reason)
	})
}

// (POST /api/v1alpha1/requests/{id}/cancel)
func (h *ServiceHandler) CancelRequest(w http.ResponseWriter, r *http.Request) {
	h.transitionWithReason(w, r, func(actorID, requestID uuid.UUID, reason string) (*model.AssessmentRequest, error) {
		return h.lifecycle.Cancel(r.Context(), actorID, requestID, reason)
	})
}

func (h *ServiceHandler) transition(w http.ResponseWriter, r *http.Request, fn func(actorID, requestID uuid.UUID) (*model.AssessmentRequest, error)) {
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

func (h *ServiceHandler) transitionWithReason(w http.ResponseWriter, r *http.Request, fn func(actorID, requestID uuid.UUID, reason string) (*model.AssessmentRequest, error)) {
	actor := auth.MustHaveActor(r.Context())

	id, err := h.requestID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var form api.ReasonForm
	if err := h.decode(r, &form); err != nil {
		h.respondError(w, r, err)
		return
	}

	request, err := fn(actor.PersonID, id, form.Reason)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respond(w, http.StatusOK, mappers.RequestToApi(*request))
}
