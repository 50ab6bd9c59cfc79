package v1alpha1

import (
	"encoding/json"
	"net/http"

	api "github.com/educert/pvb-service/api/v1alpha1"
	"github.com/educert/pvb-service/internal/service"
	"github.com/educert/pvb-service/pkg/requestid"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ServiceHandler wires the HTTP surface to the lifecycle core. Each handler
// resolves the acting person from the request context and passes it into the
// services explicitly.
type ServiceHandler struct {
	requests   *service.RequestService
	lifecycle  *service.LifecycleService
	permission *service.PermissionService
	criteria   *service.CriteriaService
	courses    *service.CourseService
	bulk       *service.BulkService
	validate   *validator.Validate
}

func NewServiceHandler(
	requests *service.RequestService,
	lifecycle *service.LifecycleService,
	permission *service.PermissionService,
	criteria *service.CriteriaService,
	courses *service.CourseService,
	bulk *service.BulkService,
) *ServiceHandler {
	return &ServiceHandler{
		requests:   requests,
		lifecycle:  lifecycle,
		permission: permission,
		criteria:   criteria,
		courses:    courses,
		bulk:       bulk,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
	}
}

// decode parses and validates a JSON body into form.
func (h *ServiceHandler) decode(r *http.Request, form any) error {
	if err := json.NewDecoder(r.Body).Decode(form); err != nil {
		return service.NewErrValidation("malformed json body: " + err.Error())
	}
	if err := h.validate.Struct(form); err != nil {
		return service.NewErrValidation(err.Error())
	}
	return nil
}

func (h *ServiceHandler) respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.S().Named("handlers").Errorw("failed to encode response", "error", err)
	}
}

// respondError maps the service error taxonomy to HTTP status codes.
func (h *ServiceHandler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch err.(type) {
	case *service.ErrNotAuthorized:
		status = http.StatusForbidden
	case *service.ErrRequestNotFound:
		status = http.StatusNotFound
	case *service.ErrInvalidTransition, *service.ErrIncompleteAssessment, *service.ErrAlreadyDecided, *service.ErrLastCourse:
		status = http.StatusConflict
	case *service.ErrValidation:
		status = http.StatusBadRequest
	default:
		zap.S().Named("handlers").Errorw("internal error", "error", err, "path", r.URL.Path)
	}

	h.respond(w, status, api.Error{
		Message:   err.Error(),
		Kind:      service.ErrorKind(err),
		RequestId: requestid.FromContextPtr(r.Context()),
	})
}
