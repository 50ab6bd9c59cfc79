package service_test

import (
	"context"

	"github.com/educert/pvb-service/internal/config"
	"github.com/educert/pvb-service/internal/events"
	"github.com/educert/pvb-service/internal/service"
	"github.com/educert/pvb-service/internal/store"
	"github.com/educert/pvb-service/internal/store/model"
	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var _ = Describe("permission service", Ordered, func() {
	var (
		s      store.Store
		gormdb *gorm.DB
	)

	newService := func() *service.PermissionService {
		return service.NewPermissionService(s, service.NewAuthzService(s), events.NewEventProducer(newTestWriter()))
	}

	awaiting := func(coach uuid.UUID) *model.AssessmentRequest {
		return seedRequest(gormdb, requestSeed{
			CoachID:    &coach,
			Status:     model.RequestStatusAwaitingPreconditions,
			Permission: model.PermissionAwaitingConsent,
		})
	}

	BeforeAll(func() {
		db, err := store.InitDB(config.NewDefault())
		Expect(err).To(BeNil())

		s = store.NewStore(db)
		gormdb = db
		Expect(s.InitialMigration()).To(BeNil())
	})

	AfterAll(func() {
		s.Close()
	})

	AfterEach(func() {
		cleanupTables(gormdb)
	})

	Context("grant", func() {
		It("grants consent and moves the request to ready_for_assessment", func() {
			coach := uuid.New()
			request := awaiting(coach)

			updated, err := newService().Grant(context.TODO(), coach, request.ID, nil)
			Expect(err).To(BeNil())
			Expect(updated.PermissionStatus).To(Equal(model.PermissionGranted))
			Expect(updated.Status).To(Equal(model.RequestStatusReadyForAssessment))
			Expect(updated.GrantedOnBehalf).To(BeFalse())
		})

		It("refuses anyone but the configured coach", func() {
			coach := uuid.New()
			request := awaiting(coach)

			_, err := newService().Grant(context.TODO(), uuid.New(), request.ID, nil)
			Expect(err).To(BeAssignableToTypeOf(&service.ErrNotAuthorized{}))
		})

		It("refuses when no coach is configured", func() {
			request := seedRequest(gormdb, requestSeed{Status: model.RequestStatusAwaitingPreconditions})

			_, err := newService().Grant(context.TODO(), uuid.New(), request.ID, nil)
			Expect(err).To(BeAssignableToTypeOf(&service.ErrValidation{}))
		})

		It("refuses outside awaiting_preconditions", func() {
			coach := uuid.New()
			request := seedRequest(gormdb, requestSeed{CoachID: &coach, Permission: model.PermissionAwaitingConsent})

			_, err := newService().Grant(context.TODO(), coach, request.ID, nil)
			Expect(err).To(BeAssignableToTypeOf(&service.ErrInvalidTransition{}))
		})

		It("refuses a second decision even after the status moved on", func() {
			coach := uuid.New()
			request := awaiting(coach)
			srv := newService()

			_, err := srv.Grant(context.TODO(), coach, request.ID, nil)
			Expect(err).To(BeNil())

			// the grant moved the request to ready_for_assessment, but the
			// duplicate is still a consent problem, not a lifecycle one
			_, err = srv.Grant(context.TODO(), coach, request.ID, nil)
			Expect(err).To(BeAssignableToTypeOf(&service.ErrAlreadyDecided{}))

			_, err = srv.Deny(context.TODO(), coach, request.ID, "changed my mind")
			Expect(err).To(BeAssignableToTypeOf(&service.ErrAlreadyDecided{}))
		})

		It("refuses to overturn a denial", func() {
			coach := uuid.New()
			request := seedRequest(gormdb, requestSeed{
				CoachID:    &coach,
				Status:     model.RequestStatusAwaitingPreconditions,
				Permission: model.PermissionDenied,
			})

			_, err := newService().Grant(context.TODO(), coach, request.ID, nil)
			Expect(err).To(BeAssignableToTypeOf(&service.ErrAlreadyDecided{}))
		})
	})

	Context("grant on behalf", func() {
		It("lets a location admin consent in the coach's place and flags it", func() {
			coach := uuid.New()
			request := awaiting(coach)
			admin := uuid.New()
			seedLocationAdmin(gormdb, admin, request.LocationID)

			reason := "coach unreachable for two weeks"
			updated, err := newService().GrantOnBehalf(context.TODO(), admin, request.ID, &reason)
			Expect(err).To(BeNil())
			Expect(updated.PermissionStatus).To(Equal(model.PermissionGranted))
			Expect(updated.GrantedOnBehalf).To(BeTrue())
			Expect(updated.Status).To(Equal(model.RequestStatusReadyForAssessment))
		})

		It("refuses the coach itself without the admin role", func() {
			coach := uuid.New()
			request := awaiting(coach)

			_, err := newService().GrantOnBehalf(context.TODO(), coach, request.ID, nil)
			Expect(err).To(BeAssignableToTypeOf(&service.ErrNotAuthorized{}))
		})
	})

	Context("deny", func() {
		It("records the refusal and keeps the request parked", func() {
			coach := uuid.New()
			request := awaiting(coach)

			updated, err := newService().Deny(context.TODO(), coach, request.ID, "candidate is not ready")
			Expect(err).To(BeNil())
			Expect(updated.PermissionStatus).To(Equal(model.PermissionDenied))
			Expect(*updated.PermissionReason).To(Equal("candidate is not ready"))
			Expect(updated.Status).To(Equal(model.RequestStatusAwaitingPreconditions))
		})

		It("requires a reason", func() {
			coach := uuid.New()
			request := awaiting(coach)

			_, err := newService().Deny(context.TODO(), coach, request.ID, "")
			Expect(err).To(BeAssignableToTypeOf(&service.ErrValidation{}))
		})
	})
})
