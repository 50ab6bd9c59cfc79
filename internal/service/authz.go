package service

import (
	"context"

	"github.com/educert/pvb-service/internal/store"
	"github.com/educert/pvb-service/internal/store/model"
	"github.com/google/uuid"
)

// AuthzService answers the role predicates every mutating operation checks
// before trusting any state it read. Candidate, coach and assessor membership
// live on the aggregate itself; location admin is a role lookup.
type AuthzService struct {
	store store.Store
}

func NewAuthzService(store store.Store) *AuthzService {
	return &AuthzService{store: store}
}

func (a *AuthzService) IsCandidate(request *model.AssessmentRequest, personID uuid.UUID) bool {
	return request.CandidateID == personID
}

func (a *AuthzService) IsLearningCoach(request *model.AssessmentRequest, personID uuid.UUID) bool {
	return request.LearningCoachID != nil && *request.LearningCoachID == personID
}

// IsAssignedAssessor reports whether the person is the assigned assessor of
// at least one component of the request.
func (a *AuthzService) IsAssignedAssessor(request *model.AssessmentRequest, personID uuid.UUID) bool {
	for i := range request.Components {
		if request.Components[i].AssessorID != nil && *request.Components[i].AssessorID == personID {
			return true
		}
	}
	return false
}

func (a *AuthzService) IsLocationAdmin(ctx context.Context, personID, locationID uuid.UUID) (bool, error) {
	return a.store.Role().HasRole(ctx, personID, locationID, model.RoleLocationAdmin)
}

// CanWithdraw covers the withdraw/cancel rule: candidate, learning coach, or
// an admin of the owning location.
func (a *AuthzService) CanWithdraw(ctx context.Context, request *model.AssessmentRequest, personID uuid.UUID) (bool, error) {
	if a.IsCandidate(request, personID) || a.IsLearningCoach(request, personID) {
		return true, nil
	}
	return a.IsLocationAdmin(ctx, personID, request.LocationID)
}
