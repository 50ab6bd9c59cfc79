package v1alpha1

import (
	"net/http"

	api "github.com/educert/pvb-service/api/v1alpha1"
	"github.com/educert/pvb-service/internal/auth"
	"github.com/educert/pvb-service/internal/handlers/v1alpha1/mappers"
)

// (POST /api/v1alpha1/requests/{id}/permission/grant)
func (h *ServiceHandler) GrantPermission(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustHaveActor(r.Context())

	id, err := h.requestID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var form api.PermissionForm
	if err := h.decode(r, &form); err != nil {
		h.respondError(w, r, err)
		return
	}

	request, err := h.permission.Grant(r.Context(), actor.PersonID, id, form.Reason)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respond(w, http.StatusOK, mappers.RequestToApi(*request))
}

// (POST /api/v1alpha1/requests/{id}/permission/grant-on-behalf)
func (h *ServiceHandler) GrantPermissionOnBehalf(w http.ResponseWriter, r *http.Request) {
	actor := auth.MustHaveActor(r.Context())

	id, err := h.requestID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var form api.PermissionForm
	if err := h.decode(r, &form); err != nil {
		h.respondError(w, r, err)
		return
	}

	request, err := h.permission.GrantOnBehalf(r.Context(), actor.PersonID, id, form.Reason)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respond(w, http.StatusOK, mappers.RequestToApi(*request))
}

// (POST /api/v1alpha1/requests/{id}/permission/deny)
func (h *ServiceHandler) DenyPermission(w http.ResponseWriter, r *http.Request) {
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

	request, err := h.permission.Deny(r.Context(), actor.PersonID, id, form.Reason)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respond(w, http.StatusOK, mappers.RequestToApi(*request))
}
