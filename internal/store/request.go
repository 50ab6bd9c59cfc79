package store

import (
	"context"

	"github.com/educert/pvb-service/internal/store/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Request interface {
	List(ctx context.Context, filter *RequestQueryFilter) (model.AssessmentRequestList, error)
	Get(ctx context.Context, id uuid.UUID) (*model.AssessmentRequest, error)
	GetByHandle(ctx context.Context, handle string) (*model.AssessmentRequest, error)
	// GetForUpdate loads the aggregate with a row lock on the request so a
	// concurrent transition observes the committed status, not a stale one.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*model.AssessmentRequest, error)
	// GetByComponentForUpdate resolves the aggregate owning the component and
	// locks it the same way GetForUpdate does.
	GetByComponentForUpdate(ctx context.Context, componentID uuid.UUID) (*model.AssessmentRequest, error)
	Create(ctx context.Context, request model.AssessmentRequest) (*model.AssessmentRequest, error)
	Update(ctx context.Context, request model.AssessmentRequest) (*model.AssessmentRequest, error)
	UpdateComponent(ctx context.Context, component model.AssessmentComponent) error
	SaveCriterion(ctx context.Context, criterion model.CriterionResult) error
	AddCourse(ctx context.Context, course model.CourseEnrollment) error
	UpdateCourse(ctx context.Context, course model.CourseEnrollment) error
	DeleteCourse(ctx context.Context, requestID, courseID, instructionGroupID uuid.UUID) error
}

type RequestStore struct {
	db *gorm.DB
}

// Make sure we conform to Request interface
var _ Request = (*RequestStore)(nil)

func NewRequestStore(db *gorm.DB) Request {
	return &RequestStore{db: db}
}

func (r *RequestStore) List(ctx context.Context, filter *RequestQueryFilter) (model.AssessmentRequestList, error) {
	var requests model.AssessmentRequestList
	tx := r.preloaded(r.getDB(ctx)).Model(&requests).Order("created_at DESC")

	if filter != nil {
		for _, fn := range filter.QueryFn {
			tx = fn(tx)
		}
	}

	result := tx.Find(&requests)
	if result.Error != nil {
		return nil, result.Error
	}
	return requests, nil
}

func (r *RequestStore) Get(ctx context.Context, id uuid.UUID) (*model.AssessmentRequest, error) {
	return r.first(r.preloaded(r.getDB(ctx)), "id = ?", id)
}

func (r *RequestStore) GetByHandle(ctx context.Context, handle string) (*model.AssessmentRequest, error) {
	return r.first(r.preloaded(r.getDB(ctx)), "handle = ?", handle)
}

func (r *RequestStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.AssessmentRequest, error) {
	tx := r.preloaded(r.getDB(ctx))
	// sqlite has no row locks; the in-memory db is single-writer anyway
	if r.db.Dialector.Name() == "postgres" {
		tx = tx.Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: clause.CurrentTable}})
	}
	return r.first(tx, "id = ?", id)
}

func (r *RequestStore) GetByComponentForUpdate(ctx context.Context, componentID uuid.UUID) (*model.AssessmentRequest, error) {
	var component model.AssessmentComponent
	if err := r.getDB(ctx).First(&component, "id = ?", componentID).Error; err != nil {
		return nil, translateError(err)
	}
	return r.GetForUpdate(ctx, component.RequestID)
}

func (r *RequestStore) Create(ctx context.Context, request model.AssessmentRequest) (*model.AssessmentRequest, error) {
	// children are created with the aggregate, never separately
	result := r.getDB(ctx).Clauses(clause.Returning{}).Create(&request)
	if result.Error != nil {
		return nil, translateError(result.Error)
	}
	return &request, nil
}

func (r *RequestStore) Update(ctx context.Context, request model.AssessmentRequest) (*model.AssessmentRequest, error) {
	result := r.getDB(ctx).Omit(clause.Associations).Save(&request)
	if result.Error != nil {
		return nil, result.Error
	}
	return &request, nil
}

func (r *RequestStore) UpdateComponent(ctx context.Context, component model.AssessmentComponent) error {
	return r.getDB(ctx).Omit(clause.Associations).Save(&component).Error
}

func (r *RequestStore) SaveCriterion(ctx context.Context, criterion model.CriterionResult) error {
	return r.getDB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "component_id"}, {Name: "criterion_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"achieved", "comment"}),
	}).Create(&criterion).Error
}

func (r *RequestStore) AddCourse(ctx context.Context, course model.CourseEnrollment) error {
	if err := r.getDB(ctx).Create(&course).Error; err != nil {
		return translateError(err)
	}
	return nil
}

func (r *RequestStore) UpdateCourse(ctx context.Context, course model.CourseEnrollment) error {
	return r.getDB(ctx).Save(&course).Error
}

func (r *RequestStore) DeleteCourse(ctx context.Context, requestID, courseID, instructionGroupID uuid.UUID) error {
	result := r.getDB(ctx).
		Where("request_id = ? AND course_id = ? AND instruction_group_id = ?", requestID, courseID, instructionGroupID).
		Delete(&model.CourseEnrollment{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (r *RequestStore) first(tx *gorm.DB, query string, arg any) (*model.AssessmentRequest, error) {
	var request model.AssessmentRequest
	result := tx.First(&request, query, arg)
	if result.Error != nil {
		return nil, translateError(result.Error)
	}
	return &request, nil
}

func (r *RequestStore) preloaded(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("Courses", func(db *gorm.DB) *gorm.DB {
			return db.Order("course_enrollments.id")
		}).
		Preload("Components", func(db *gorm.DB) *gorm.DB {
			return db.Order("assessment_components.core_task_component_id")
		}).
		Preload("Components.Criteria")
}

func (r *RequestStore) getDB(ctx context.Context) *gorm.DB {
	tx := FromContext(ctx)
	if tx != nil {
		return tx
	}
	return r.db
}
