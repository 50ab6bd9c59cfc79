package model

import (
	"github.com/google/uuid"
)

// Role names a capability a person holds at a location.
type Role string

const (
	RoleLocationAdmin Role = "location_admin"
	RoleAssessor      Role = "assessor"
	RoleLearningCoach Role = "learning_coach"
)

// RoleAssignment backs the identity/role lookup: "does person P hold role R
// at location L". It is reference data for the authorization guard, never
// mutated by the lifecycle core.
type RoleAssignment struct {
	ID         uint      `gorm:"primaryKey;autoIncrement"`
	PersonID   uuid.UUID `gorm:"not null;uniqueIndex:roles_person_location_role"`
	LocationID uuid.UUID `gorm:"not null;uniqueIndex:roles_person_location_role"`
	Role       Role      `gorm:"type:VARCHAR(30);not null;uniqueIndex:roles_person_location_role"`
}
