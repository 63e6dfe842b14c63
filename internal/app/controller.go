package app

import (
	"context"
	"strings"
	"time"

	"github.com/evanschultz/ticklist/internal/domain"
)

// ControllerConfig selects which list page the controller loads.
type ControllerConfig struct {
	Page   int
	Filter domain.TaskFilter
}

// Controller performs the remote half of every task-list action. Each method
// blocks on the API and returns a result value; State applies it.
type Controller struct {
	api    TaskAPI
	logger Logger
	clock  Clock
	page   int
	filter domain.TaskFilter
}

// LoadResult carries the outcome of Load.
type LoadResult struct {
	Tasks []domain.Task
	At    time.Time
	Err   error
}

// CreateResult carries the outcome of Create.
type CreateResult struct {
	Task domain.Task
	At   time.Time
	Err  error
}

// ToggleResult carries the completion value computed before the call.
type ToggleResult struct {
	ID        int64
	Completed bool
	Err       error
}

// ConfirmResult carries the server's record for a confirmed edit.
type ConfirmResult struct {
	ID   int64
	Task domain.Task
	Err  error
}

// DeleteResult carries the outcome of Delete.
type DeleteResult struct {
	ID  int64
	Err error
}

// NewController constructs a controller over api.
func NewController(api TaskAPI, logger Logger, clock Clock, cfg ControllerConfig) *Controller {
	if logger == nil {
		logger = nopLogger{}
	}
	if clock == nil {
		clock = time.Now
	}
	if cfg.Page < 1 {
		cfg.Page = 1
	}
	if cfg.Filter == "" {
		cfg.Filter = domain.TaskFilterAll
	}
	return &Controller{
		api:    api,
		logger: logger,
		clock:  clock,
		page:   cfg.Page,
		filter: cfg.Filter,
	}
}

// Load fetches the configured page. Reload uses the same call.
func (c *Controller) Load(ctx context.Context) LoadResult {
	tasks, err := c.api.ListTasks(ctx, c.page, c.filter)
	if err != nil {
		c.logFailure("load", 0, err)
		return LoadResult{Err: err}
	}
	c.logger.Debug("tasks loaded", "count", len(tasks), "page", c.page, "type", c.filter)
	return LoadResult{Tasks: tasks, At: c.clock()}
}

// Create sends a new task. Blank names are rejected without a call.
func (c *Controller) Create(ctx context.Context, name, description string) CreateResult {
	if strings.TrimSpace(name) == "" {
		return CreateResult{Err: ErrBlankName}
	}
	task, err := c.api.CreateTask(ctx, domain.TaskInput{Name: name, Description: description})
	if err != nil {
		c.logFailure("create", 0, err)
		return CreateResult{Err: err}
	}
	c.logger.Debug("task created", "task_id", task.ID)
	return CreateResult{Task: task, At: c.clock()}
}

// ToggleCompleted sends the inverse of row's completion flag.
func (c *Controller) ToggleCompleted(ctx context.Context, row domain.ViewTask) ToggleResult {
	completed := !row.IsCompleted
	if err := c.api.SetTaskCompleted(ctx, row.ID, completed); err != nil {
		c.logFailure("toggle", row.ID, err)
		return ToggleResult{ID: row.ID, Completed: row.IsCompleted, Err: err}
	}
	return ToggleResult{ID: row.ID, Completed: completed}
}

// ConfirmEdit sends row's current name and description as a full replace.
func (c *Controller) ConfirmEdit(ctx context.Context, row domain.ViewTask) ConfirmResult {
	task, err := c.api.UpdateTask(ctx, row.ID, domain.TaskUpdate{
		Name:        row.Name,
		Description: row.Description,
		UpdatedAt:   c.clock().UTC(),
	})
	if err != nil {
		c.logFailure("confirm", row.ID, err)
		return ConfirmResult{ID: row.ID, Err: err}
	}
	return ConfirmResult{ID: row.ID, Task: task}
}

// Delete removes id remotely.
func (c *Controller) Delete(ctx context.Context, id int64) DeleteResult {
	if err := c.api.DeleteTask(ctx, id); err != nil {
		c.logFailure("delete", id, err)
		return DeleteResult{ID: id, Err: err}
	}
	c.logger.Debug("task deleted", "task_id", id)
	return DeleteResult{ID: id}
}

func (c *Controller) logFailure(op string, id int64, err error) {
	if id == 0 {
		c.logger.Warn("task api call failed", "op", op, "err", err)
		return
	}
	c.logger.Warn("task api call failed", "op", op, "task_id", id, "err", err)
}
