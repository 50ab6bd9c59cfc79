package store

import (
	"context"

	"github.com/educert/pvb-service/internal/store/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role interface {
	HasRole(ctx context.Context, personID, locationID uuid.UUID, role model.Role) (bool, error)
	Assign(ctx context.Context, assignment model.RoleAssignment) error
}

type RoleStore struct {
	db *gorm.DB
}

// Make sure we conform to Role interface
var _ Role = (*RoleStore)(nil)

func NewRoleStore(db *gorm.DB) Role {
	return &RoleStore{db: db}
}

func (r *RoleStore) HasRole(ctx context.Context, personID, locationID uuid.UUID, role model.Role) (bool, error) {
	var count int64
	result := r.getDB(ctx).Model(&model.RoleAssignment{}).
		Where("person_id = ? AND location_id = ? AND role = ?", personID, locationID, role).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}
	return count > 0, nil
}

func (r *RoleStore) Assign(ctx context.Context, assignment model.RoleAssignment) error {
	return r.getDB(ctx).Create(&assignment).Error
}

func (r *RoleStore) getDB(ctx context.Context) *gorm.DB {
	tx := FromContext(ctx)
	if tx != nil {
		return tx
	}
	return r.db
}
