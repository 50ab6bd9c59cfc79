package service_test

import (
	"context"
	"strings"

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

var _ = Describe("request service", Ordered, func() {
	var (
		s      store.Store
		gormdb *gorm.DB
	)

	newService := func() *service.RequestService {
		return service.NewRequestService(s, service.NewAuthzService(s), events.NewEventProducer(newTestWriter()))
	}

	validForm := func(locationID uuid.UUID) service.RequestCreateForm {
		return service.RequestCreateForm{
			Kind:        model.RequestKindInternal,
			LocationID:  locationID,
			CandidateID: uuid.New(),
			Courses: []service.CourseForm{
				{CourseID: uuid.New(), InstructionGroupID: uuid.New(), IsMain: true},
				{CourseID: uuid.New(), InstructionGroupID: uuid.New()},
			},
			Components: []service.ComponentForm{
				{CoreTaskComponentID: uuid.New(), CriterionIDs: []uuid.UUID{uuid.New(), uuid.New()}},
			},
		}
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

	Context("create", func() {
		It("creates a draft with its courses, components and criteria", func() {
			locationID := uuid.New()
			admin := uuid.New()
			seedLocationAdmin(gormdb, admin, locationID)

			created, err := newService().CreateRequest(context.TODO(), admin, validForm(locationID))
			Expect(err).To(BeNil())
			Expect(created.Status).To(Equal(model.RequestStatusDraft))
			Expect(created.PermissionStatus).To(Equal(model.PermissionNotRequested))
			Expect(created.Courses).To(HaveLen(2))
			Expect(created.Components).To(HaveLen(1))
			Expect(created.Components[0].Criteria).To(HaveLen(2))
			Expect(strings.HasPrefix(created.Handle, "PVB-")).To(BeTrue())
		})

		It("refuses a non-admin", func() {
			_, err := newService().CreateRequest(context.TODO(), uuid.New(), validForm(uuid.New()))
			Expect(err).To(BeAssignableToTypeOf(&service.ErrNotAuthorized{}))
		})

		It("refuses a form without courses", func() {
			form := validForm(uuid.New())
			form.Courses = nil

			_, err := newService().CreateRequest(context.TODO(), uuid.New(), form)
			Expect(err).To(BeAssignableToTypeOf(&service.ErrValidation{}))
		})

		It("refuses a form without a main course", func() {
			form := validForm(uuid.New())
			form.Courses[0].IsMain = false

			_, err := newService().CreateRequest(context.TODO(), uuid.New(), form)
			Expect(err).To(BeAssignableToTypeOf(&service.ErrValidation{}))
		})

		It("refuses a form with two main courses", func() {
			form := validForm(uuid.New())
			form.Courses[1].IsMain = true

			_, err := newService().CreateRequest(context.TODO(), uuid.New(), form)
			Expect(err).To(BeAssignableToTypeOf(&service.ErrValidation{}))
		})

		It("refuses an unknown kind", func() {
			form := validForm(uuid.New())
			form.Kind = model.RequestKind("hybrid")

			_, err := newService().CreateRequest(context.TODO(), uuid.New(), form)
			Expect(err).To(BeAssignableToTypeOf(&service.ErrValidation{}))
		})
	})

	Context("read", func() {
		It("gets a request by id", func() {
			request := seedRequest(gormdb, requestSeed{})

			found, err := newService().GetRequest(context.TODO(), request.ID)
			Expect(err).To(BeNil())
			Expect(found.ID).To(Equal(request.ID))
			Expect(found.Courses).To(HaveLen(2))
		})

		It("gets a request by handle", func() {
			request := seedRequest(gormdb, requestSeed{})

			found, err := newService().GetRequestByHandle(context.TODO(), request.Handle)
			Expect(err).To(BeNil())
			Expect(found.ID).To(Equal(request.ID))
		})

		It("fails with not found for an unknown id", func() {
			_, err := newService().GetRequest(context.TODO(), uuid.New())
			Expect(err).To(BeAssignableToTypeOf(&service.ErrRequestNotFound{}))
		})

		It("lists requests filtered by location and status", func() {
			locationID := uuid.New()
			seedRequest(gormdb, requestSeed{LocationID: locationID})
			seedRequest(gormdb, requestSeed{LocationID: locationID, Status: model.RequestStatusInAssessment})
			seedRequest(gormdb, requestSeed{})

			filter := &service.RequestFilter{LocationID: &locationID}
			requests, err := newService().ListRequests(context.TODO(), filter)
			Expect(err).To(BeNil())
			Expect(requests).To(HaveLen(2))

			status := model.RequestStatusInAssessment
			filter.Status = &status
			requests, err = newService().ListRequests(context.TODO(), filter)
			Expect(err).To(BeNil())
			Expect(requests).To(HaveLen(1))
		})

		It("lists the audit trail of a request", func() {
			request := seedRequest(gormdb, requestSeed{})
			lifecycle := service.NewLifecycleService(s, service.NewAuthzService(s), events.NewEventProducer(newTestWriter()))

			_, err := lifecycle.Submit(context.TODO(), request.CandidateID, request.ID)
			Expect(err).To(BeNil())
			_, err = lifecycle.Withdraw(context.TODO(), request.CandidateID, request.ID, "changed plans")
			Expect(err).To(BeNil())

			records, err := newService().ListAuditTrail(context.TODO(), request.ID)
			Expect(err).To(BeNil())
			Expect(records).To(HaveLen(2))
			Expect(records[0].Operation).To(Equal(service.OpSubmit))
			Expect(records[1].Operation).To(Equal(service.OpWithdraw))
		})
	})
})
