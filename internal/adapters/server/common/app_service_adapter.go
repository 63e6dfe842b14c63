package common

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/evanschultz/ticklist/internal/app"
	"github.com/evanschultz/ticklist/internal/domain"
)

// AppServiceAdapter maps transport contracts onto app.Service task APIs.
type AppServiceAdapter struct {
	service *app.Service
}

// NewAppServiceAdapter builds one common adapter over an app.Service instance.
func NewAppServiceAdapter(service *app.Service) *AppServiceAdapter {
	return &AppServiceAdapter{service: service}
}

// ListTasks lists one page of tasks. Page 0 means the first page.
func (a *AppServiceAdapter) ListTasks(ctx context.Context, in ListTasksRequest) ([]domain.Task, error) {
	if a == nil || a.service == nil {
		return nil, fmt.Errorf("app service adapter is not configured: %w", ErrUnavailable)
	}
	if in.Page == 0 {
		in.Page = 1
	}
	filter, err := domain.ParseTaskFilter(in.Type)
	if err != nil {
		return nil, mapAppError("list tasks", err)
	}
	tasks, err := a.service.ListTasks(ctx, in.Page, filter)
	if err != nil {
		return nil, mapAppError("list tasks", err)
	}
	return tasks, nil
}

// CreateTask creates one task.
func (a *AppServiceAdapter) CreateTask(ctx context.Context, in CreateTaskRequest) (domain.Task, error) {
	if a == nil || a.service == nil {
		return domain.Task{}, fmt.Errorf("app service adapter is not configured: %w", ErrUnavailable)
	}
	task, err := a.service.CreateTask(ctx, domain.TaskInput{
		Name:        in.Name,
		Description: in.Description,
	})
	if err != nil {
		return domain.Task{}, mapAppError("create task", err)
	}
	return task, nil
}

// SetTaskCompleted updates one task's completion flag.
func (a *AppServiceAdapter) SetTaskCompleted(ctx context.Context, in SetTaskCompletedRequest) (domain.Task, error) {
	if a == nil || a.service == nil {
		return domain.Task{}, fmt.Errorf("app service adapter is not configured: %w", ErrUnavailable)
	}
	task, err := a.service.SetTaskCompleted(ctx, in.ID, in.IsCompleted)
	if err != nil {
		return domain.Task{}, mapAppError("set task completed", err)
	}
	return task, nil
}

// UpdateTask replaces one task's name and description.
func (a *AppServiceAdapter) UpdateTask(ctx context.Context, in UpdateTaskRequest) (domain.Task, error) {
	if a == nil || a.service == nil {
		return domain.Task{}, fmt.Errorf("app service adapter is not configured: %w", ErrUnavailable)
	}
	updatedAt, err := parseOptionalTS(in.UpdatedAt)
	if err != nil {
		return domain.Task{}, fmt.Errorf("update task: updated_at: %w", errors.Join(ErrInvalidRequest, err))
	}
	task, err := a.service.UpdateTask(ctx, in.ID, domain.TaskUpdate{
		Name:        in.Name,
		Description: in.Description,
		UpdatedAt:   updatedAt,
	})
	if err != nil {
		return domain.Task{}, mapAppError("update task", err)
	}
	return task, nil
}

// DeleteTask deletes one task.
func (a *AppServiceAdapter) DeleteTask(ctx context.Context, id int64) error {
	if a == nil || a.service == nil {
		return fmt.Errorf("app service adapter is not configured: %w", ErrUnavailable)
	}
	return mapAppError("delete task", a.service.DeleteTask(ctx, id))
}

// parseOptionalTS parses RFC3339 input; empty input yields the zero time.
func parseOptionalTS(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	ts, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, err
	}
	return ts.UTC(), nil
}

// mapAppError maps app and domain errors onto transport sentinels.
func mapAppError(operation string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrNotFound, err))
	case errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidName),
		errors.Is(err, domain.ErrNameTooLong),
		errors.Is(err, domain.ErrDescriptionTooLong),
		errors.Is(err, domain.ErrInvalidFilter),
		errors.Is(err, app.ErrInvalidPage):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrInvalidRequest, err))
	default:
		return fmt.Errorf("%s: %w", operation, err)
	}
}
