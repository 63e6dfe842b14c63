package app

import (
	"context"

	"github.com/evanschultz/ticklist/internal/domain"
)

// TaskAPI is the remote task API the controller mediates.
type TaskAPI interface {
	ListTasks(ctx context.Context, page int, filter domain.TaskFilter) ([]domain.Task, error)
	CreateTask(ctx context.Context, in domain.TaskInput) (domain.Task, error)
	SetTaskCompleted(ctx context.Context, id int64, completed bool) error
	UpdateTask(ctx context.Context, id int64, in domain.TaskUpdate) (domain.Task, error)
	DeleteTask(ctx context.Context, id int64) error
}

// Repository represents task storage for the reference server.
type Repository interface {
	CreateTask(context.Context, domain.Task) (domain.Task, error)
	GetTask(context.Context, int64) (domain.Task, error)
	ListTasks(ctx context.Context, filter domain.TaskFilter, limit, offset int) ([]domain.Task, error)
	UpdateTask(context.Context, domain.Task) error
	DeleteTask(context.Context, int64) error
	// UpsertTasks writes every task under its own id, all or nothing.
	UpsertTasks(context.Context, []domain.Task) error
}

// Logger receives controller and service diagnostics.
type Logger interface {
	Debug(msg string, keyvals ...any)
	Info(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
