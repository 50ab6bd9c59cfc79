package v1alpha1

import (
	"net/http"

	api "github.com/educert/pvb-service/api/v1alpha1"
	"github.com/educert/pvb-service/internal/auth"
	"github.com/educert/pvb-service/internal/handlers/v1alpha1/mappers"
	"github.com/educert/pvb-service/internal/service"
)

// Bulk endpoints return 200 even when individual items fail; the per-item
// outcome is in the result body.

// (POST /api/v1alpha1/bulk/submit)
func (h *ServiceHandler) BulkSubmit(w http.ResponseWriter, r *http.Request) {
	h.bulkOperation(w, r, func() (*service.BulkResult, error) {
		var form api.BulkSubmitForm
		if err := h.decode(r, &form); err != nil {
			return nil, err
		}
		actor := auth.MustHaveActor(r.Context())
		return h.bulk.Submit(r.Context(), actor.PersonID, form.RequestIds)
	})
}

// (POST /api/v1alpha1/bulk/cancel)
func (h *ServiceHandler) BulkCancel(w http.ResponseWriter, r *http.Request) {
	h.bulkOperation(w, r, func() (*service.BulkResult, error) {
		var form api.BulkCancelForm
		if err := h.decode(r, &form); err != nil {
			return nil, err
		}
		actor := auth.MustHaveActor(r.Context())
		return h.bulk.Cancel(r.Context(), actor.PersonID, form.RequestIds, form.Reason)
	})
}

// (POST /api/v1alpha1/bulk/grant-on-behalf)
func (h *ServiceHandler) BulkGrantOnBehalf(w http.ResponseWriter, r *http.Request) {
	h.bulkOperation(w, r, func() (*service.BulkResult, error) {
		var form api.BulkGrantOnBehalfForm
		if err := h.decode(r, &form); err != nil {
			return nil, err
		}
		actor := auth.MustHaveActor(r.Context())
		return h.bulk.GrantOnBehalf(r.Context(), actor.PersonID, form.RequestIds, form.Reason)
	})
}

// (POST /api/v1alpha1/bulk/start-time)
func (h *ServiceHandler) BulkSetStartTime(w http.ResponseWriter, r *http.Request) {
	h.bulkOperation(w, r, func() (*service.BulkResult, error) {
		var form api.BulkSetStartTimeForm
		if err := h.decode(r, &form); err != nil {
			return nil, err
		}
		actor := auth.MustHaveActor(r.Context())
		return h.bulk.SetStartTime(r.Context(), actor.PersonID, form.RequestIds, form.StartTime, form.Reason)
	})
}

// (POST /api/v1alpha1/bulk/coach)
func (h *ServiceHandler) BulkReassignCoach(w http.ResponseWriter, r *http.Request) {
	h.bulkOperation(w, r, func() (*service.BulkResult, error) {
		var form api.BulkReassignCoachForm
		if err := h.decode(r, &form); err != nil {
			return nil, err
		}
		actor := auth.MustHaveActor(r.Context())
		return h.bulk.ReassignCoach(r.Context(), actor.PersonID, form.RequestIds, form.CoachId, form.Reason)
	})
}

// (POST /api/v1alpha1/bulk/assessor)
func (h *ServiceHandler) BulkReassignAssessor(w http.ResponseWriter, r *http.Request) {
	h.bulkOperation(w, r, func() (*service.BulkResult, error) {
		var form api.BulkReassignAssessorForm
		if err := h.decode(r, &form); err != nil {
			return nil, err
		}
		actor := auth.MustHaveActor(r.Context())
		return h.bulk.ReassignAssessor(r.Context(), actor.PersonID, form.RequestIds, form.AssessorId, form.Reason)
	})
}

func (h *ServiceHandler) bulkOperation(w http.ResponseWriter, r *http.Request, fn func() (*service.BulkResult, error)) {
	result, err := fn()
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respond(w, http.StatusOK, mappers.BulkResultToApi(result))
}
