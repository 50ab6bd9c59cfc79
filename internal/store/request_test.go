package store_test

import (
	"context"
	"fmt"

	"github.com/educert/pvb-service/internal/config"
	"github.com/educert/pvb-service/internal/store"
	"github.com/educert/pvb-service/internal/store/model"
	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var _ = Describe("request store", Ordered, func() {
	var (
		s      store.Store
		gormdb *gorm.DB
	)

	newRequest := func(locationID uuid.UUID, status model.RequestStatus) model.AssessmentRequest {
		id := uuid.New()
		return model.AssessmentRequest{
			ID:          id,
			Handle:      fmt.Sprintf("PVB-2026-%.8s", id),
			Kind:        model.RequestKindInternal,
			LocationID:  locationID,
			CandidateID: uuid.New(),
			Status:      status,
			Courses: []model.CourseEnrollment{
				{RequestID: id, CourseID: uuid.New(), InstructionGroupID: uuid.New(), IsMain: true},
			},
			Components: []model.AssessmentComponent{
				{ID: uuid.New(), RequestID: id, CoreTaskComponentID: uuid.New(), Outcome: model.OutcomeUndetermined},
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
		gormdb.Exec("DELETE FROM criterion_results;")
		gormdb.Exec("DELETE FROM assessment_components;")
		gormdb.Exec("DELETE FROM course_enrollments;")
		gormdb.Exec("DELETE FROM assessment_requests;")
	})

	Context("create and get", func() {
		It("persists the aggregate with its children", func() {
			created, err := s.Request().Create(context.TODO(), newRequest(uuid.New(), model.RequestStatusDraft))
			Expect(err).To(BeNil())

			found, err := s.Request().Get(context.TODO(), created.ID)
			Expect(err).To(BeNil())
			Expect(found.Courses).To(HaveLen(1))
			Expect(found.Components).To(HaveLen(1))
		})

		It("refuses a duplicate handle", func() {
			first := newRequest(uuid.New(), model.RequestStatusDraft)
			_, err := s.Request().Create(context.TODO(), first)
			Expect(err).To(BeNil())

			second := newRequest(uuid.New(), model.RequestStatusDraft)
			second.Handle = first.Handle
			_, err = s.Request().Create(context.TODO(), second)
			Expect(err).To(Equal(store.ErrDuplicateKey))
		})

		It("finds a request by handle", func() {
			created, err := s.Request().Create(context.TODO(), newRequest(uuid.New(), model.RequestStatusDraft))
			Expect(err).To(BeNil())

			found, err := s.Request().GetByHandle(context.TODO(), created.Handle)
			Expect(err).To(BeNil())
			Expect(found.ID).To(Equal(created.ID))
		})

		It("returns the sentinel for an unknown id", func() {
			_, err := s.Request().Get(context.TODO(), uuid.New())
			Expect(err).To(Equal(store.ErrRecordNotFound))
		})

		It("resolves the owning aggregate from a component id", func() {
			created, err := s.Request().Create(context.TODO(), newRequest(uuid.New(), model.RequestStatusDraft))
			Expect(err).To(BeNil())

			found, err := s.Request().GetByComponentForUpdate(context.TODO(), created.Components[0].ID)
			Expect(err).To(BeNil())
			Expect(found.ID).To(Equal(created.ID))
		})
	})

	Context("list", func() {
		It("filters by location, candidate and status", func() {
			locationID := uuid.New()

			first, err := s.Request().Create(context.TODO(), newRequest(locationID, model.RequestStatusDraft))
			Expect(err).To(BeNil())
			_, err = s.Request().Create(context.TODO(), newRequest(locationID, model.RequestStatusInAssessment))
			Expect(err).To(BeNil())
			_, err = s.Request().Create(context.TODO(), newRequest(uuid.New(), model.RequestStatusDraft))
			Expect(err).To(BeNil())

			requests, err := s.Request().List(context.TODO(), store.NewRequestQueryFilter().ByLocation(locationID))
			Expect(err).To(BeNil())
			Expect(requests).To(HaveLen(2))

			requests, err = s.Request().List(context.TODO(), store.NewRequestQueryFilter().ByLocation(locationID).ByStatus(model.RequestStatusDraft))
			Expect(err).To(BeNil())
			Expect(requests).To(HaveLen(1))

			requests, err = s.Request().List(context.TODO(), store.NewRequestQueryFilter().ByCandidate(first.CandidateID))
			Expect(err).To(BeNil())
			Expect(requests).To(HaveLen(1))
			Expect(requests[0].ID).To(Equal(first.ID))
		})
	})

	Context("update", func() {
		It("persists status changes without touching the children", func() {
			created, err := s.Request().Create(context.TODO(), newRequest(uuid.New(), model.RequestStatusDraft))
			Expect(err).To(BeNil())

			created.Status = model.RequestStatusReadyForAssessment
			_, err = s.Request().Update(context.TODO(), *created)
			Expect(err).To(BeNil())

			found, err := s.Request().Get(context.TODO(), created.ID)
			Expect(err).To(BeNil())
			Expect(found.Status).To(Equal(model.RequestStatusReadyForAssessment))
			Expect(found.Courses).To(HaveLen(1))
		})
	})

	Context("criteria", func() {
		It("upserts a criterion judgment", func() {
			created, err := s.Request().Create(context.TODO(), newRequest(uuid.New(), model.RequestStatusInAssessment))
			Expect(err).To(BeNil())

			componentID := created.Components[0].ID
			criterionID := uuid.New()
			achieved := true

			err = s.Request().SaveCriterion(context.TODO(), model.CriterionResult{
				ComponentID: componentID,
				CriterionID: criterionID,
				Achieved:    &achieved,
			})
			Expect(err).To(BeNil())

			achieved = false
			err = s.Request().SaveCriterion(context.TODO(), model.CriterionResult{
				ComponentID: componentID,
				CriterionID: criterionID,
				Achieved:    &achieved,
			})
			Expect(err).To(BeNil())

			found, err := s.Request().Get(context.TODO(), created.ID)
			Expect(err).To(BeNil())
			Expect(found.Components[0].Criteria).To(HaveLen(1))
			Expect(*found.Components[0].Criteria[0].Achieved).To(BeFalse())
		})
	})

	Context("courses", func() {
		It("adds and deletes enrollments", func() {
			created, err := s.Request().Create(context.TODO(), newRequest(uuid.New(), model.RequestStatusDraft))
			Expect(err).To(BeNil())

			courseID := uuid.New()
			groupID := uuid.New()
			err = s.Request().AddCourse(context.TODO(), model.CourseEnrollment{
				RequestID:          created.ID,
				CourseID:           courseID,
				InstructionGroupID: groupID,
			})
			Expect(err).To(BeNil())

			found, err := s.Request().Get(context.TODO(), created.ID)
			Expect(err).To(BeNil())
			Expect(found.Courses).To(HaveLen(2))

			err = s.Request().DeleteCourse(context.TODO(), created.ID, courseID, groupID)
			Expect(err).To(BeNil())

			err = s.Request().DeleteCourse(context.TODO(), created.ID, courseID, groupID)
			Expect(err).To(Equal(store.ErrRecordNotFound))
		})
	})
})
