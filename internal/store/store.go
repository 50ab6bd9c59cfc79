package store

import (
	"context"

	"github.com/educert/pvb-service/internal/store/model"
	"gorm.io/gorm"
)

type Store interface {
	NewTransactionContext(ctx context.Context) (context.Context, error)
	Request() Request
	Role() Role
	Audit() Audit
	InitialMigration() error
	Close() error
}

type DataStore struct {
	db      *gorm.DB
	request Request
	role    Role
	audit   Audit
}

func NewStore(db *gorm.DB) Store {
	return &DataStore{
		db:      db,
		request: NewRequestStore(db),
		role:    NewRoleStore(db),
		audit:   NewAuditStore(db),
	}
}

func (s *DataStore) NewTransactionContext(ctx context.Context) (context.Context, error) {
	return newTransactionContext(ctx, s.db)
}

func (s *DataStore) Request() Request {
	return s.request
}

func (s *DataStore) Role() Role {
	return s.role
}

func (s *DataStore) Audit() Audit {
	return s.audit
}

// InitialMigration creates the schema from the models. Production deployments
// run the goose migrations instead; this is used by sqlite-backed tests.
func (s *DataStore) InitialMigration() error {
	return s.db.AutoMigrate(
		&model.AssessmentRequest{},
		&model.CourseEnrollment{},
		&model.AssessmentComponent{},
		&model.CriterionResult{},
		&model.RoleAssignment{},
		&model.AuditRecord{},
	)
}

func (s *DataStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
