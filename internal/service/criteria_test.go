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

func boolPtr(b bool) *bool { return &b }

var _ = Describe("criteria service", Ordered, func() {
	var (
		s      store.Store
		gormdb *gorm.DB
	)

	newService := func() *service.CriteriaService {
		return service.NewCriteriaService(s, service.NewAuthzService(s), events.NewEventProducer(newTestWriter()))
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

	Context("criterion results", func() {
		It("records a judgment for a criterion", func() {
			assessor := uuid.New()
			request := seedRequest(gormdb, requestSeed{AssessorID: &assessor, Status: model.RequestStatusInAssessment})
			component := request.Components[0]
			criterion := uuid.New()

			updated, err := newService().SetCriterionResult(context.TODO(), assessor, component.ID, criterion, boolPtr(true), nil)
			Expect(err).To(BeNil())

			stored := updated.ComponentByID(component.ID)
			Expect(stored).ToNot(BeNil())
			Expect(stored.Criteria).To(HaveLen(1))
			Expect(stored.Criteria[0].CriterionID).To(Equal(criterion))
			Expect(*stored.Criteria[0].Achieved).To(BeTrue())
		})

		It("overwrites an earlier judgment instead of duplicating it", func() {
			assessor := uuid.New()
			request := seedRequest(gormdb, requestSeed{AssessorID: &assessor, Status: model.RequestStatusInAssessment})
			component := request.Components[0]
			criterion := uuid.New()
			srv := newService()

			_, err := srv.SetCriterionResult(context.TODO(), assessor, component.ID, criterion, boolPtr(true), nil)
			Expect(err).To(BeNil())

			comment := "not demonstrated after all"
			updated, err := srv.SetCriterionResult(context.TODO(), assessor, component.ID, criterion, boolPtr(false), &comment)
			Expect(err).To(BeNil())

			stored := updated.ComponentByID(component.ID)
			Expect(stored.Criteria).To(HaveLen(1))
			Expect(*stored.Criteria[0].Achieved).To(BeFalse())
			Expect(*stored.Criteria[0].Comment).To(Equal(comment))
		})

		It("resets a judgment back to unset", func() {
			assessor := uuid.New()
			request := seedRequest(gormdb, requestSeed{AssessorID: &assessor, Status: model.RequestStatusInAssessment})
			component := request.Components[0]
			criterion := uuid.New()
			srv := newService()

			_, err := srv.SetCriterionResult(context.TODO(), assessor, component.ID, criterion, boolPtr(true), nil)
			Expect(err).To(BeNil())

			updated, err := srv.SetCriterionResult(context.TODO(), assessor, component.ID, criterion, nil, nil)
			Expect(err).To(BeNil())

			stored := updated.ComponentByID(component.ID)
			Expect(stored.Criteria).To(HaveLen(1))
			Expect(stored.Criteria[0].Achieved).To(BeNil())
		})

		It("writes a batch as a unit", func() {
			assessor := uuid.New()
			request := seedRequest(gormdb, requestSeed{AssessorID: &assessor, Status: model.RequestStatusInAssessment})
			component := request.Components[0]

			updated, err := newService().SetCriteriaResults(context.TODO(), assessor, component.ID, []service.CriterionWrite{
				{CriterionID: uuid.New(), Achieved: boolPtr(true)},
				{CriterionID: uuid.New(), Achieved: boolPtr(false)},
				{CriterionID: uuid.New()},
			})
			Expect(err).To(BeNil())
			Expect(updated.ComponentByID(component.ID).Criteria).To(HaveLen(3))
		})

		It("rejects an empty batch", func() {
			assessor := uuid.New()
			request := seedRequest(gormdb, requestSeed{AssessorID: &assessor, Status: model.RequestStatusInAssessment})

			_, err := newService().SetCriteriaResults(context.TODO(), assessor, request.Components[0].ID, nil)
			Expect(err).To(BeAssignableToTypeOf(&service.ErrValidation{}))
		})

		It("refuses anyone but the component's assessor", func() {
			assessor := uuid.New()
			request := seedRequest(gormdb, requestSeed{AssessorID: &assessor, Status: model.RequestStatusInAssessment})

			_, err := newService().SetCriterionResult(context.TODO(), uuid.New(), request.Components[0].ID, uuid.New(), boolPtr(true), nil)
			Expect(err).To(BeAssignableToTypeOf(&service.ErrNotAuthorized{}))
		})

		It("refuses outside in_assessment", func() {
			assessor := uuid.New()
			request := seedRequest(gormdb, requestSeed{AssessorID: &assessor, Status: model.RequestStatusReadyForAssessment})

			_, err := newService().SetCriterionResult(context.TODO(), assessor, request.Components[0].ID, uuid.New(), boolPtr(true), nil)
			Expect(err).To(BeAssignableToTypeOf(&service.ErrInvalidTransition{}))
		})

		It("fails with not found for an unknown component", func() {
			_, err := newService().SetCriterionResult(context.TODO(), uuid.New(), uuid.New(), uuid.New(), boolPtr(true), nil)
			Expect(err).To(BeAssignableToTypeOf(&service.ErrRequestNotFound{}))
		})
	})

	Context("outcome", func() {
		It("records the outcome independent of the criteria", func() {
			assessor := uuid.New()
			request := seedRequest(gormdb, requestSeed{AssessorID: &assessor, Status: model.RequestStatusInAssessment})
			component := request.Components[0]

			comment := "overall judgment outweighs single misses"
			updated, err := newService().SetOutcome(context.TODO(), assessor, component.ID, model.OutcomePassed, &comment)
			Expect(err).To(BeNil())

			stored := updated.ComponentByID(component.ID)
			Expect(stored.Outcome).To(Equal(model.OutcomePassed))
			Expect(*stored.OutcomeComment).To(Equal(comment))
		})

		It("allows resetting the outcome to undetermined", func() {
			assessor := uuid.New()
			request := seedRequest(gormdb, requestSeed{AssessorID: &assessor, Status: model.RequestStatusInAssessment})
			component := request.Components[0]
			srv := newService()

			_, err := srv.SetOutcome(context.TODO(), assessor, component.ID, model.OutcomeFailed, nil)
			Expect(err).To(BeNil())

			updated, err := srv.SetOutcome(context.TODO(), assessor, component.ID, model.OutcomeUndetermined, nil)
			Expect(err).To(BeNil())
			Expect(updated.ComponentByID(component.ID).Outcome).To(Equal(model.OutcomeUndetermined))
		})

		It("rejects an unknown outcome", func() {
			assessor := uuid.New()
			request := seedRequest(gormdb, requestSeed{AssessorID: &assessor, Status: model.RequestStatusInAssessment})

			_, err := newService().SetOutcome(context.TODO(), assessor, request.Components[0].ID, model.ComponentOutcome("perfect"), nil)
			Expect(err).To(BeAssignableToTypeOf(&service.ErrValidation{}))
		})
	})
})
