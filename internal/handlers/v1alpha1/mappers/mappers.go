package mappers

import (
	api "github.com/educert/pvb-service/api/v1alpha1"
	"github.com/educert/pvb-service/internal/service"
	"github.com/educert/pvb-service/internal/store/model"
)

func RequestToApi(r model.AssessmentRequest) api.AssessmentRequest {
	out := api.AssessmentRequest{
		Id:           r.ID,
		Handle:       r.Handle,
		Kind:         string(r.Kind),
		LocationId:   r.LocationID,
		CandidateId:  r.CandidateID,
		Status:       string(r.Status),
		StatusReason: r.StatusReason,
		StartTime:    r.StartTime,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}

	if r.LearningCoachID != nil {
		out.LearningCoach = &api.LearningCoach{
			PersonId:         *r.LearningCoachID,
			PermissionStatus: string(r.PermissionStatus),
			PermissionReason: r.PermissionReason,
			GrantedOnBehalf:  r.GrantedOnBehalf,
		}
	}

	for _, c := range r.Courses {
		out.Courses = append(out.Courses, api.CourseEnrollment{
			CourseId:           c.CourseID,
			InstructionGroupId: c.InstructionGroupID,
			IsMain:             c.IsMain,
			Comment:            c.Comment,
		})
	}

	for _, c := range r.Components {
		component := api.AssessmentComponent{
			Id:                  c.ID,
			CoreTaskComponentId: c.CoreTaskComponentID,
			AssessorId:          c.AssessorID,
			Outcome:             string(c.Outcome),
			OutcomeComment:      c.OutcomeComment,
		}
		for _, cr := range c.Criteria {
			component.Criteria = append(component.Criteria, api.CriterionResult{
				CriterionId: cr.CriterionID,
				Achieved:    cr.Achieved,
				Comment:     cr.Comment,
			})
		}
		out.Components = append(out.Components, component)
	}

	return out
}

func RequestListToApi(requests model.AssessmentRequestList) []api.AssessmentRequest {
	out := make([]api.AssessmentRequest, 0, len(requests))
	for _, r := range requests {
		out = append(out, RequestToApi(r))
	}
	return out
}

func AuditListToApi(records model.AuditRecordList) []api.AuditRecord {
	out := make([]api.AuditRecord, 0, len(records))
	for _, r := range records {
		out = append(out, api.AuditRecord{
			RequestId: r.RequestID,
			ActorId:   r.ActorID,
			Operation: r.Operation,
			Reason:    r.Reason,
			Timestamp: r.CreatedAt,
		})
	}
	return out
}

func BulkResultToApi(result *service.BulkResult) api.BulkResult {
	out := api.BulkResult{
		Total:        result.Total,
		SuccessCount: result.SuccessCount,
		Results:      make([]api.BulkItemResult, 0, len(result.Items)),
	}
	for _, item := range result.Items {
		apiItem := api.BulkItemResult{
			RequestId: item.RequestID,
			Success:   item.Success,
		}
		if !item.Success {
			kind := item.Error
			message := item.Message
			apiItem.Error = &kind
			apiItem.Message = &message
		}
		out.Results = append(out.Results, apiItem)
	}
	return out
}

func CreateFormFromApi(form api.RequestCreateForm) service.RequestCreateForm {
	out := service.RequestCreateForm{
		Kind:            model.RequestKind(form.Kind),
		LocationID:      form.LocationId,
		CandidateID:     form.CandidateId,
		LearningCoachID: form.LearningCoachId,
		StartTime:       form.StartTime,
	}
	for _, c := range form.Courses {
		out.Courses = append(out.Courses, service.CourseForm{
			CourseID:           c.CourseId,
			InstructionGroupID: c.InstructionGroupId,
			IsMain:             c.IsMain,
			Comment:            c.Comment,
		})
	}
	for _, c := range form.Components {
		out.Components = append(out.Components, service.ComponentForm{
			CoreTaskComponentID: c.CoreTaskComponentId,
			AssessorID:          c.AssessorId,
			CriterionIDs:        c.CriterionIds,
		})
	}
	return out
}

func CriteriaWritesFromApi(form api.SetCriteriaForm) []service.CriterionWrite {
	out := make([]service.CriterionWrite, 0, len(form.Results))
	for _, r := range form.Results {
		out = append(out, service.CriterionWrite{
			CriterionID: r.CriterionId,
			Achieved:    r.Achieved,
			Comment:     r.Comment,
		})
	}
	return out
}
