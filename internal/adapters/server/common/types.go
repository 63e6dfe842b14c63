// Package common provides transport-agnostic server contracts used by HTTP and MCP adapters.
package common

import (
	"context"
	"errors"

	"github.com/evanschultz/ticklist/internal/domain"
)

// ErrNotFound reports missing transport-visible resources.
var ErrNotFound = errors.New("not found")

// ErrInvalidRequest reports malformed or invalid transport input.
var ErrInvalidRequest = errors.New("invalid request")

// ErrUnavailable reports a missing backing service.
var ErrUnavailable = errors.New("service unavailable")

// SupportedListTypes returns all canonical list `type` values accepted by transport adapters.
func SupportedListTypes() []string {
	return []string{
		string(domain.TaskFilterAll),
		string(domain.TaskFilterCompleted),
		string(domain.TaskFilterIncomplete),
	}
}

// ListTasksRequest captures list query parameters.
type ListTasksRequest struct {
	Page int
	Type string
}

// CreateTaskRequest captures one create payload.
type CreateTaskRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// SetTaskCompletedRequest captures one partial completion update.
type SetTaskCompletedRequest struct {
	ID          int64
	IsCompleted bool
}

// UpdateTaskRequest captures one full name/description replace. UpdatedAt is
// an optional client-supplied timestamp.
type UpdateTaskRequest struct {
	ID          int64
	Name        string
	Description string
	UpdatedAt   string
}

// TaskService is the task surface shared by the REST and MCP transports.
type TaskService interface {
	ListTasks(context.Context, ListTasksRequest) ([]domain.Task, error)
	CreateTask(context.Context, CreateTaskRequest) (domain.Task, error)
	SetTaskCompleted(context.Context, SetTaskCompletedRequest) (domain.Task, error)
	UpdateTask(context.Context, UpdateTaskRequest) (domain.Task, error)
	DeleteTask(context.Context, int64) error
}
