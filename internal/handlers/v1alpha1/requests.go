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

// (POST /api/v1alpha1/requests)
func (h *ServiceHandler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustHaveActor(r.Context())

	var form api.RequestCreateForm
	if err := h.decode(r, &form); err != nil {
		h.respondError(w, r, err)
		return
	}

	request, err := h.requests.CreateRequest(r.Context(), actor.PersonID, mappers.CreateFormFromApi(form))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respond(w, http.StatusCreated, mappers.RequestToApi(*request))
}

// (GET /api/v1alpha1/requests)
func (h *ServiceHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	filter := &service.RequestFilter{}

	if raw := r.URL.Query().Get("location_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.respondError(w, r, service.NewErrValidation("malformed location_id"))
			return
		}
		filter.LocationID = &id
	}
	if raw := r.URL.Query().Get("candidate_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.respondError(w, r, service.NewErrValidation("malformed candidate_id"))
			return
		}
		filter.CandidateID = &id
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := model.RequestStatus(raw)
		filter.Status = &status
	}

	requests, err := h.requests.ListRequests(r.Context(), filter)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respond(w, http.StatusOK, mappers.RequestListToApi(requests))
}

// (GET /api/v1alpha1/requests/{id})
func (h *ServiceHandler) GetRequest(w http.ResponseWriter, r *http.Request) {
	id, err := h.requestID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	request, err := h.requests.GetRequest(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respond(w, http.StatusOK, mappers.RequestToApi(*request))
}

// (GET /api/v1alpha1/requests/handle/{handle})
func (h *ServiceHandler) GetRequestByHandle(w http.ResponseWriter, r *http.Request) {
	request, err := h.requests.GetRequestByHandle(r.Context(), chi.URLParam(r, "handle"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respond(w, http.StatusOK, mappers.RequestToApi(*request))
}

// (GET /api/v1alpha1/requests/{id}/audit)
func (h *ServiceHandler) ListAuditTrail(w http.ResponseWriter, r *http.Request) {
	id, err := h.requestID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	records, err := h.requests.ListAuditTrail(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respond(w, http.StatusOK, mappers.AuditListToApi(records))
}

func (h *ServiceHandler) requestID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.UUID{}, service.NewErrValidation("malformed request id")
	}
	return id, nil
}
