package v1alpha1

import (
	"net/http"

	api "github.com/educert/pvb-service/api/v1alpha1"
	"github.com/educert/pvb-service/internal/auth"
	"github.com/educert/pvb-service/internal/handlers/v1alpha1/mappers"
	"github.com/educert/pvb-service/internal/service"
	"github.com/educert/pvb-service/internal/store/model"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// (PUT /api/v1alpha1/components/{componentId}/criteria/{criterionId})
func (h *ServiceHandler) SetCriterionResult(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustHaveActor(r.Context())

	componentID, err := h.componentID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	criterionID, err := uuid.Parse(chi.URLParam(r, "criterionId"))
	if err != nil {
		h.respondError(w, r, service.NewErrValidation("malformed criterion id"))
		return
	}

	var form api.CriterionWriteForm
	if err := h.decode(r, &form); err != nil {
		h.respondError(w, r, err)
		return
	}

	request, err := h.criteria.SetCriterionResult(r.Context(), actor.PersonID, componentID, criterionID, form.Achieved, form.Comment)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respond(w, http.StatusOK, mappers.RequestToApi(*request))
}

// (PUT /api/v1alpha1/components/{componentId}/criteria)
func (h *ServiceHandler) SetCriteriaResults(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustHaveActor(r.Context())

	componentID, err := h.componentID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var form api.SetCriteriaForm
	if err := h.decode(r, &form); err != nil {
		h.respondError(w, r, err)
		return
	}

	request, err := h.criteria.SetCriteriaResults(r.Context(), actor.PersonID, componentID, mappers.CriteriaWritesFromApi(form))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respond(w, http.StatusOK, mappers.RequestToApi(*request))
}

// (PUT /api/v1alpha1/components/{componentId}/outcome)
func (h *ServiceHandler) SetOutcome(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustHaveActor(r.Context())

	componentID, err := h.componentID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var form api.SetOutcomeForm
	if err := h.decode(r, &form); err != nil {
		h.respondError(w, r, err)
		return
	}

	request, err := h.criteria.SetOutcome(r.Context(), actor.PersonID, componentID, model.ComponentOutcome(form.Outcome), form.Comment)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respond(w, http.StatusOK, mappers.RequestToApi(*request))
}

func (h *ServiceHandler) componentID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "componentId"))
	if err != nil {
		return uuid.UUID{}, service.NewErrValidation("malformed component id")
	}
	return id, nil
}
