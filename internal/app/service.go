package app

import (
	"context"
	"fmt"
	"time"

	"github.com/evanschultz/ticklist/internal/domain"
)

// DefaultPageSize is the number of tasks returned per list page.
const DefaultPageSize = 50

// ServiceConfig holds configuration for service.
type ServiceConfig struct {
	PageSize int
}

// Clock returns the current time.
type Clock func() time.Time

// Service implements the task API on top of a Repository. The reference
// server transports call it.
type Service struct {
	repo     Repository
	clock    Clock
	pageSize int
}

// NewService constructs a new value for this package.
func NewService(repo Repository, clock Clock, cfg ServiceConfig) *Service {
	if clock == nil {
		clock = time.Now
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	return &Service{
		repo:     repo,
		clock:    clock,
		pageSize: cfg.PageSize,
	}
}

// PageSize reports the configured list page size.
func (s *Service) PageSize() int {
	return s.pageSize
}

// ListTasks returns one page of tasks matching filter. Pages start at 1.
func (s *Service) ListTasks(ctx context.Context, page int, filter domain.TaskFilter) ([]domain.Task, error) {
	if page < 1 {
		return nil, ErrInvalidPage
	}
	if filter == "" {
		filter = domain.TaskFilterAll
	}
	if _, err := domain.ParseTaskFilter(string(filter)); err != nil {
		return nil, err
	}
	return s.repo.ListTasks(ctx, filter, s.pageSize, (page-1)*s.pageSize)
}

// CreateTask validates and stores a new task.
func (s *Service) CreateTask(ctx context.Context, in domain.TaskInput) (domain.Task, error) {
	task, err := domain.NewTask(in, s.clock())
	if err != nil {
		return domain.Task{}, err
	}
	created, err := s.repo.CreateTask(ctx, task)
	if err != nil {
		return domain.Task{}, fmt.Errorf("create task: %w", err)
	}
	return created, nil
}

// GetTask returns one task by id.
func (s *Service) GetTask(ctx context.Context, id int64) (domain.Task, error) {
	if id <= 0 {
		return domain.Task{}, domain.ErrInvalidID
	}
	return s.repo.GetTask(ctx, id)
}

// SetTaskCompleted updates only the completion flag.
func (s *Service) SetTaskCompleted(ctx context.Context, id int64, completed bool) (domain.Task, error) {
	task, err := s.GetTask(ctx, id)
	if err != nil {
		return domain.Task{}, err
	}
	task.SetCompleted(completed, s.clock())
	if err := s.repo.UpdateTask(ctx, task); err != nil {
		return domain.Task{}, fmt.Errorf("set task completed: %w", err)
	}
	return task, nil
}

// UpdateTask replaces name and description. A zero UpdatedAt is stamped with
// the service clock.
func (s *Service) UpdateTask(ctx context.Context, id int64, in domain.TaskUpdate) (domain.Task, error) {
	task, err := s.GetTask(ctx, id)
	if err != nil {
		return domain.Task{}, err
	}
	if in.UpdatedAt.IsZero() {
		in.UpdatedAt = s.clock()
	}
	if err := task.UpdateDetails(in); err != nil {
		return domain.Task{}, err
	}
	if err := s.repo.UpdateTask(ctx, task); err != nil {
		return domain.Task{}, fmt.Errorf("update task: %w", err)
	}
	return task, nil
}

// DeleteTask removes one task by id.
func (s *Service) DeleteTask(ctx context.Context, id int64) error {
	if id <= 0 {
		return domain.ErrInvalidID
	}
	return s.repo.DeleteTask(ctx, id)
}
