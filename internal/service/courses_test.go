package service_test

import (
	"context"
	"time"

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

var _ = Describe("course service", Ordered, func() {
	var (
		s      store.Store
		gormdb *gorm.DB
	)

	newService := func() *service.CourseService {
		return service.NewCourseService(s, service.NewAuthzService(s), events.NewEventProducer(newTestWriter()))
	}

	seedWithAdmin := func(seed requestSeed) (*model.AssessmentRequest, uuid.UUID) {
		request := seedRequest(gormdb, seed)
		admin := uuid.New()
		seedLocationAdmin(gormdb, admin, request.LocationID)
		return request, admin
	}

	mainCount := func(requestID uuid.UUID) int {
		count := 0
		tx := gormdb.Raw("SELECT COUNT(*) FROM course_enrollments WHERE request_id = ? AND is_main;", requestID).Scan(&count)
		Expect(tx.Error).To(BeNil())
		return count
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

	Context("add course", func() {
		It("appends an enrollment", func() {
			request, admin := seedWithAdmin(requestSeed{})

			updated, err := newService().AddCourse(context.TODO(), admin, request.ID, service.CourseForm{
				CourseID:           uuid.New(),
				InstructionGroupID: uuid.New(),
			}, "late enrollment")
			Expect(err).To(BeNil())
			Expect(updated.Courses).To(HaveLen(3))
			Expect(mainCount(request.ID)).To(Equal(1))
		})

		It("demotes the previous main when the new course is main", func() {
			request, admin := seedWithAdmin(requestSeed{})
			newCourse := uuid.New()

			updated, err := newService().AddCourse(context.TODO(), admin, request.ID, service.CourseForm{
				CourseID:           newCourse,
				InstructionGroupID: uuid.New(),
				IsMain:             true,
			}, "program switch")
			Expect(err).To(BeNil())
			Expect(mainCount(request.ID)).To(Equal(1))
			Expect(updated.MainCourse().CourseID).To(Equal(newCourse))
		})

		It("refuses a duplicate enrollment as a validation error", func() {
			request, admin := seedWithAdmin(requestSeed{})
			existing := request.Courses[0]

			_, err := newService().AddCourse(context.TODO(), admin, request.ID, service.CourseForm{
				CourseID:           existing.CourseID,
				InstructionGroupID: existing.InstructionGroupID,
			}, "again")
			Expect(err).To(BeAssignableToTypeOf(&service.ErrValidation{}))
			Expect(err.Error()).To(ContainSubstring("already enrolled"))
		})

		It("requires a reason", func() {
			request, admin := seedWithAdmin(requestSeed{})

			_, err := newService().AddCourse(context.TODO(), admin, request.ID, service.CourseForm{
				CourseID:           uuid.New(),
				InstructionGroupID: uuid.New(),
			}, "")
			Expect(err).To(BeAssignableToTypeOf(&service.ErrValidation{}))
		})

		It("refuses a non-admin", func() {
			request := seedRequest(gormdb, requestSeed{})

			_, err := newService().AddCourse(context.TODO(), request.CandidateID, request.ID, service.CourseForm{
				CourseID:           uuid.New(),
				InstructionGroupID: uuid.New(),
			}, "sneaky")
			Expect(err).To(BeAssignableToTypeOf(&service.ErrNotAuthorized{}))
		})
	})

	Context("remove course", func() {
		It("drops an enrollment", func() {
			request, admin := seedWithAdmin(requestSeed{})
			extra := request.Courses[1]

			updated, err := newService().RemoveCourse(context.TODO(), admin, request.ID, extra.CourseID, extra.InstructionGroupID, "wrong group")
			Expect(err).To(BeNil())
			Expect(updated.Courses).To(HaveLen(1))
		})

		It("promotes another enrollment when the main course is removed", func() {
			request, admin := seedWithAdmin(requestSeed{})
			main := request.Courses[0]

			updated, err := newService().RemoveCourse(context.TODO(), admin, request.ID, main.CourseID, main.InstructionGroupID, "main dropped")
			Expect(err).To(BeNil())
			Expect(updated.Courses).To(HaveLen(1))
			Expect(updated.Courses[0].IsMain).To(BeTrue())
			Expect(mainCount(request.ID)).To(Equal(1))
		})

		It("refuses to remove the last course", func() {
			request, admin := seedWithAdmin(requestSeed{})
			srv := newService()

			extra := request.Courses[1]
			_, err := srv.RemoveCourse(context.TODO(), admin, request.ID, extra.CourseID, extra.InstructionGroupID, "first removal")
			Expect(err).To(BeNil())

			main := request.Courses[0]
			_, err = srv.RemoveCourse(context.TODO(), admin, request.ID, main.CourseID, main.InstructionGroupID, "second removal")
			Expect(err).To(BeAssignableToTypeOf(&service.ErrLastCourse{}))
		})

		It("refuses a course that is not enrolled", func() {
			request, admin := seedWithAdmin(requestSeed{})

			_, err := newService().RemoveCourse(context.TODO(), admin, request.ID, uuid.New(), uuid.New(), "never enrolled")
			Expect(err).To(BeAssignableToTypeOf(&service.ErrValidation{}))
		})
	})

	Context("set main course", func() {
		It("re-flags the main course", func() {
			request, admin := seedWithAdmin(requestSeed{})
			extra := request.Courses[1]

			updated, err := newService().SetMainCourse(context.TODO(), admin, request.ID, extra.CourseID, extra.InstructionGroupID, "priority change")
			Expect(err).To(BeNil())
			Expect(updated.MainCourse().CourseID).To(Equal(extra.CourseID))
			Expect(mainCount(request.ID)).To(Equal(1))
		})

		It("audits flagging the current main even though nothing changes", func() {
			request, admin := seedWithAdmin(requestSeed{})
			main := request.Courses[0]

			_, err := newService().SetMainCourse(context.TODO(), admin, request.ID, main.CourseID, main.InstructionGroupID, "confirming main")
			Expect(err).To(BeNil())

			records, err := s.Audit().List(context.TODO(), request.ID)
			Expect(err).To(BeNil())
			Expect(records).To(HaveLen(1))
			Expect(records[0].Operation).To(Equal(service.OpSetMainCourse))
		})
	})

	Context("set start time", func() {
		It("schedules the assessment", func() {
			request, admin := seedWithAdmin(requestSeed{Status: model.RequestStatusReadyForAssessment})
			startTime := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

			updated, err := newService().SetStartTime(context.TODO(), admin, request.ID, startTime, "planned")
			Expect(err).To(BeNil())
			Expect(updated.StartTime).ToNot(BeNil())
			Expect(updated.StartTime.Equal(startTime)).To(BeTrue())
		})

		It("refuses once the assessment started", func() {
			request, admin := seedWithAdmin(requestSeed{Status: model.RequestStatusInAssessment})

			_, err := newService().SetStartTime(context.TODO(), admin, request.ID, time.Now(), "too late")
			Expect(err).To(BeAssignableToTypeOf(&service.ErrInvalidTransition{}))
		})
	})

	Context("reassign coach", func() {
		It("replaces the coach and resets consent on a draft", func() {
			coach := uuid.New()
			request, admin := seedWithAdmin(requestSeed{CoachID: &coach})
			newCoach := uuid.New()

			updated, err := newService().ReassignCoach(context.TODO(), admin, request.ID, newCoach, "coach left")
			Expect(err).To(BeNil())
			Expect(*updated.LearningCoachID).To(Equal(newCoach))
			Expect(updated.PermissionStatus).To(Equal(model.PermissionNotRequested))
		})

		It("drops a ready request back behind the consent gate", func() {
			coach := uuid.New()
			request, admin := seedWithAdmin(requestSeed{
				CoachID:    &coach,
				Status:     model.RequestStatusReadyForAssessment,
				Permission: model.PermissionGranted,
			})

			updated, err := newService().ReassignCoach(context.TODO(), admin, request.ID, uuid.New(), "coach left")
			Expect(err).To(BeNil())
			Expect(updated.Status).To(Equal(model.RequestStatusAwaitingPreconditions))
			Expect(updated.PermissionStatus).To(Equal(model.PermissionAwaitingConsent))
			Expect(updated.GrantedOnBehalf).To(BeFalse())
		})

		It("refuses once the assessment started", func() {
			coach := uuid.New()
			request, admin := seedWithAdmin(requestSeed{CoachID: &coach, Status: model.RequestStatusInAssessment})

			_, err := newService().ReassignCoach(context.TODO(), admin, request.ID, uuid.New(), "too late")
			Expect(err).To(BeAssignableToTypeOf(&service.ErrInvalidTransition{}))
		})
	})

	Context("reassign assessor", func() {
		It("assigns the assessor on every component", func() {
			request, admin := seedWithAdmin(requestSeed{Status: model.RequestStatusReadyForAssessment})
			assessor := uuid.New()

			updated, err := newService().ReassignAssessor(context.TODO(), admin, request.ID, assessor, "rebalancing load")
			Expect(err).To(BeNil())
			for _, component := range updated.Components {
				Expect(component.AssessorID).ToNot(BeNil())
				Expect(*component.AssessorID).To(Equal(assessor))
			}
		})
	})
})
