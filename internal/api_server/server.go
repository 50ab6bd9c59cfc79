package apiserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/educert/pvb-service/internal/auth"
	"github.com/educert/pvb-service/internal/config"
	"github.com/educert/pvb-service/internal/events"
	handlers "github.com/educert/pvb-service/internal/handlers/v1alpha1"
	"github.com/educert/pvb-service/internal/service"
	"github.com/educert/pvb-service/internal/store"
	"github.com/educert/pvb-service/pkg/metrics"
	"github.com/educert/pvb-service/pkg/middleware"
	"github.com/educert/pvb-service/pkg/requestid"
)

const (
	gracefulShutdownTimeout = 5 * time.Second
)

type Server struct {
	cfg         *config.Config
	store       store.Store
	listener    net.Listener
	eventWriter *events.EventProducer
}

// New returns a new instance of the assessment request API server.
func New(
	cfg *config.Config,
	store store.Store,
	listener net.Listener,
	eventWriter *events.EventProducer,
) *Server {
	return &Server{
		cfg:         cfg,
		store:       store,
		listener:    listener,
		eventWriter: eventWriter,
	}
}

func (s *Server) Run(ctx context.Context) error {
	zap.S().Named("api_server").Info("Initializing API server")

	authenticator, err := auth.NewAuthenticator(s.cfg.Service.Auth)
	if err != nil {
		return err
	}

	router := chi.NewRouter()

	metricMiddleware := metrics.NewMiddleware("api_server")
	metricMiddleware.MustRegisterDefault()

	router.Use(
		metricMiddleware.Handler,
		cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "PUT", "POST", "DELETE", "HEAD", "OPTIONS"},
			AllowedHeaders:   []string{"*"},
			AllowCredentials: false,
			MaxAge:           300,
		}),
		requestid.Middleware(),
		middleware.Logger(),
		chiMiddleware.Recoverer,
	)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	authz := service.NewAuthzService(s.store)
	lifecycle := service.NewLifecycleService(s.store, authz, s.eventWriter)
	permission := service.NewPermissionService(s.store, authz, s.eventWriter)
	criteria := service.NewCriteriaService(s.store, authz, s.eventWriter)
	courses := service.NewCourseService(s.store, authz, s.eventWriter)
	h := handlers.NewServiceHandler(
		service.NewRequestService(s.store, authz, s.eventWriter),
		lifecycle,
		permission,
		criteria,
		courses,
		service.NewBulkService(lifecycle, permission, courses, s.cfg.Service.BulkWorkers),
	)

	router.Route("/api/v1alpha1", func(r chi.Router) {
		r.Use(authenticator.Authenticator)

		r.Route("/requests", func(r chi.Router) {
			r.Post("/", h.CreateRequest)
			r.Get("/", h.ListRequests)
			r.Get("/handle/{handle}", h.GetRequestByHandle)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetRequest)
				r.Get("/audit", h.ListAuditTrail)

				r.Post("/submit", h.SubmitRequest)
				r.Post("/start", h.StartAssessment)
				r.Post("/finalize", h.FinalizeRequest)
				r.Post("/abort", h.AbortRequest)
				r.Post("/withdraw", h.WithdrawRequest)
				r.Post("/cancel", h.CancelRequest)

				r.Post("/permission/grant", h.GrantPermission)
				r.Post("/permission/grant-on-behalf", h.GrantPermissionOnBehalf)
				r.Post("/permission/deny", h.DenyPermission)

				r.Post("/courses", h.AddCourse)
				r.Delete("/courses", h.RemoveCourse)
				r.Put("/courses/main", h.SetMainCourse)
				r.Put("/start-time", h.SetStartTime)
				r.Put("/coach", h.ReassignCoach)
				r.Put("/assessor", h.ReassignAssessor)
			})
		})

		r.Route("/components/{componentId}", func(r chi.Router) {
			r.Put("/criteria", h.SetCriteriaResults)
			r.Put("/criteria/{criterionId}", h.SetCriterionResult)
			r.Put("/outcome", h.SetOutcome)
		})

		r.Route("/bulk", func(r chi.Router) {
			r.Post("/submit", h.BulkSubmit)
			r.Post("/cancel", h.BulkCancel)
			r.Post("/grant-on-behalf", h.BulkGrantOnBehalf)
			r.Post("/start-time", h.BulkSetStartTime)
			r.Post("/coach", h.BulkReassignCoach)
			r.Post("/assessor", h.BulkReassignAssessor)
		})
	})

	srv := http.Server{Addr: s.cfg.Service.Address, Handler: router}

	go func() {
		<-ctx.Done()
		zap.S().Named("api_server").Infof("Shutdown signal received: %s", ctx.Err())
		ctxTimeout, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
		defer cancel()

		srv.SetKeepAlivesEnabled(false)
		_ = srv.Shutdown(ctxTimeout)
		zap.S().Named("api_server").Info("api server terminated")
	}()

	zap.S().Named("api_server").Infof("Listening on %s...", s.listener.Addr().String())
	if err := srv.Serve(s.listener); err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}

	return nil
}
