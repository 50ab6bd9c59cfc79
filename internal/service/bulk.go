package service

import (
	"context"
	"time"

	"github.com/educert/pvb-service/pkg/metrics"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const defaultBulkWorkers = 4

// BulkItemResult is the outcome of one request within a bulk call. Error
// carries the error kind ("InvalidTransition", ...) and Message the detail.
type BulkItemResult struct {
	RequestID uuid.UUID `json:"request_id"`
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
	Message   string    `json:"message,omitempty"`
}

type BulkResult struct {
	Total        int              `json:"total"`
	SuccessCount int              `json:"success_count"`
	Items        []BulkItemResult `json:"results"`
}

// BulkService fans a single logical operation out over a set of requests.
// Items are independent: they run on a small worker pool and one item's
// failure never aborts the rest.
type BulkService struct {
	lifecycle  *LifecycleService
	permission *PermissionService
	courses    *CourseService
	workers    int
}

func NewBulkService(lifecycle *LifecycleService, permission *PermissionService, courses *CourseService, workers int) *BulkService {
	if workers <= 0 {
		workers = defaultBulkWorkers
	}
	return &BulkService{
		lifecycle:  lifecycle,
		permission: permission,
		courses:    courses,
		workers:    workers,
	}
}

func (s *BulkService) Submit(ctx context.Context, actorID uuid.UUID, requestIDs []uuid.UUID) (*BulkResult, error) {
	return s.run(ctx, "submit", requestIDs, func(ctx context.Context, id uuid.UUID) error {
		_, err := s.lifecycle.Submit(ctx, actorID, id)
		return err
	})
}

func (s *BulkService) Cancel(ctx context.Context, actorID uuid.UUID, requestIDs []uuid.UUID, reason string) (*BulkResult, error) {
	if reason == "" {
		return nil, NewErrValidation("cancel requires a reason")
	}
	return s.run(ctx, "cancel", requestIDs, func(ctx context.Context, id uuid.UUID) error {
		_, err := s.lifecycle.Cancel(ctx, actorID, id, reason)
		return err
	})
}

func (s *BulkService) GrantOnBehalf(ctx context.Context, actorID uuid.UUID, requestIDs []uuid.UUID, reason *string) (*BulkResult, error) {
	return s.run(ctx, "grant_on_behalf", requestIDs, func(ctx context.Context, id uuid.UUID) error {
		_, err := s.permission.GrantOnBehalf(ctx, actorID, id, reason)
		return err
	})
}

func (s *BulkService) SetStartTime(ctx context.Context, actorID uuid.UUID, requestIDs []uuid.UUID, startTime time.Time, reason string) (*BulkResult, error) {
	return s.run(ctx, "set_start_time", requestIDs, func(ctx context.Context, id uuid.UUID) error {
		_, err := s.courses.SetStartTime(ctx, actorID, id, startTime, reason)
		return err
	})
}

func (s *BulkService) ReassignCoach(ctx context.Context, actorID uuid.UUID, requestIDs []uuid.UUID, coachID uuid.UUID, reason string) (*BulkResult, error) {
	return s.run(ctx, "reassign_coach", requestIDs, func(ctx context.Context, id uuid.UUID) error {
		_, err := s.courses.ReassignCoach(ctx, actorID, id, coachID, reason)
		return err
	})
}

func (s *BulkService) ReassignAssessor(ctx context.Context, actorID uuid.UUID, requestIDs []uuid.UUID, assessorID uuid.UUID, reason string) (*BulkResult, error) {
	return s.run(ctx, "reassign_assessor", requestIDs, func(ctx context.Context, id uuid.UUID) error {
		_, err := s.courses.ReassignAssessor(ctx, actorID, id, assessorID, reason)
		return err
	})
}

// run validates the id set, then applies fn per id with bounded parallelism.
// Only structural input problems fail the call itself; per-item errors are
// captured in the result list.
func (s *BulkService) run(ctx context.Context, operation string, requestIDs []uuid.UUID, fn func(ctx context.Context, id uuid.UUID) error) (*BulkResult, error) {
	if len(requestIDs) == 0 {
		return nil, NewErrValidation("empty request id set")
	}

	ids := dedupe(requestIDs)
	items := make([]BulkItemResult, len(ids))

	var g errgroup.Group
	g.SetLimit(s.workers)

	for i, id := range ids {
		g.Go(func() error {
			if err := fn(ctx, id); err != nil {
				items[i] = BulkItemResult{
					RequestID: id,
					Success:   false,
					Error:     ErrorKind(err),
					Message:   err.Error(),
				}
				metrics.IncreaseBulkItemMetric(operation, "failure")
				return nil
			}
			items[i] = BulkItemResult{RequestID: id, Success: true}
			metrics.IncreaseBulkItemMetric(operation, "success")
			return nil
		})
	}

	// per-item errors are recorded, never returned
	_ = g.Wait()

	result := &BulkResult{
		Total: len(ids),
		Items: items,
	}
	for _, item := range items {
		if item.Success {
			result.SuccessCount++
		}
	}
	return result, nil
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, found := seen[id]; found {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
