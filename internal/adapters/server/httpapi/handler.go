// Package httpapi provides the REST HTTP adapter for the task API.
package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/evanschultz/ticklist/internal/adapters/server/common"
	"github.com/evanschultz/ticklist/internal/app"
)

// DefaultBasePath is where the task routes are mounted.
const DefaultBasePath = "/api/task"

// maxRequestBodyBytes limits decoded JSON payload size for fail-closed request handling.
const maxRequestBodyBytes int64 = 1 << 20

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Envelope wraps every JSON response body.
type Envelope struct {
	Status  string `json:"status"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// Handler serves the task REST routes.
type Handler struct {
	engine *gin.Engine
	tasks  common.TaskService
	logger app.Logger
}

type completedBody struct {
	IsCompleted *bool `json:"is_completed"`
}

type updateBody struct {
	Name        *string `json:"name"`
	Description string  `json:"description"`
	UpdatedAt   string  `json:"updated_at"`
}

// NewHandler builds the gin engine for tasks mounted at basePath.
func NewHandler(basePath string, tasks common.TaskService, logger app.Logger) *Handler {
	if logger == nil {
		logger = discardLogger{}
	}
	basePath = "/" + strings.Trim(strings.TrimSpace(basePath), "/")
	if basePath == "/" {
		basePath = DefaultBasePath
	}

	h := &Handler{
		engine: gin.New(),
		tasks:  tasks,
		logger: logger,
	}
	h.engine.Use(gin.Recovery(), h.requestLog)
	h.engine.NoRoute(func(c *gin.Context) {
		writeError(c, http.StatusNotFound, "endpoint not found")
	})

	group := h.engine.Group(basePath)
	group.GET("", h.handleList)
	group.POST("", h.handleCreate)
	group.PATCH("/:id", h.handleSetCompleted)
	group.PUT("/:id", h.handleUpdate)
	group.DELETE("/:id", h.handleDelete)
	return h
}

// ServeHTTP routes one request through the gin engine.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.engine.ServeHTTP(w, r)
}

// requestLog tags the request with an id and logs its outcome.
func (h *Handler) requestLog(c *gin.Context) {
	requestID := strings.TrimSpace(c.GetHeader("X-Request-ID"))
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Header("X-Request-ID", requestID)

	started := time.Now()
	c.Next()
	h.logger.Debug(
		"http request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", c.Writer.Status(),
		"request_id", requestID,
		"duration", time.Since(started),
	)
}

// handleList serves GET `?page=&type=`.
func (h *Handler) handleList(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		writeError(c, http.StatusBadRequest, "invalid page value")
		return
	}
	tasks, err := h.tasks.ListTasks(c.Request.Context(), common.ListTasksRequest{
		Page: page,
		Type: c.DefaultQuery("type", "all"),
	})
	if err != nil {
		h.writeErrorFrom(c, err)
		return
	}
	writeSuccess(c, http.StatusOK, tasks)
}

// handleCreate serves POST with `{name, description}`.
func (h *Handler) handleCreate(c *gin.Context) {
	var req common.CreateTaskRequest
	if !bindJSON(c, &req) {
		return
	}
	task, err := h.tasks.CreateTask(c.Request.Context(), req)
	if err != nil {
		h.writeErrorFrom(c, err)
		return
	}
	writeSuccess(c, http.StatusCreated, task)
}

// handleSetCompleted serves PATCH `/:id` with `{is_completed}`.
func (h *Handler) handleSetCompleted(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}
	var body completedBody
	if !bindJSON(c, &body) {
		return
	}
	if body.IsCompleted == nil {
		writeError(c, http.StatusBadRequest, "is_completed is required")
		return
	}
	task, err := h.tasks.SetTaskCompleted(c.Request.Context(), common.SetTaskCompletedRequest{
		ID:          id,
		IsCompleted: *body.IsCompleted,
	})
	if err != nil {
		h.writeErrorFrom(c, err)
		return
	}
	writeSuccess(c, http.StatusOK, task)
}

// handleUpdate serves PUT `/:id` with `{name, description, updated_at}`.
func (h *Handler) handleUpdate(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}
	var body updateBody
	if !bindJSON(c, &body) {
		return
	}
	if body.Name == nil {
		writeError(c, http.StatusBadRequest, "name is required")
		return
	}
	task, err := h.tasks.UpdateTask(c.Request.Context(), common.UpdateTaskRequest{
		ID:          id,
		Name:        *body.Name,
		Description: body.Description,
		UpdatedAt:   body.UpdatedAt,
	})
	if err != nil {
		h.writeErrorFrom(c, err)
		return
	}
	writeSuccess(c, http.StatusOK, task)
}

// handleDelete serves DELETE `/:id` and answers 204 with no body.
func (h *Handler) handleDelete(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}
	if err := h.tasks.DeleteTask(c.Request.Context(), id); err != nil {
		h.writeErrorFrom(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func taskID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(c, http.StatusBadRequest, "invalid task id")
		return 0, false
	}
	return id, true
}

func bindJSON(c *gin.Context, out any) bool {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxRequestBodyBytes)
	if err := c.ShouldBindJSON(out); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// writeErrorFrom maps adapter errors into envelope responses.
func (h *Handler) writeErrorFrom(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrNotFound):
		writeError(c, http.StatusNotFound, "task not found")
	case errors.Is(err, common.ErrInvalidRequest):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrUnavailable):
		writeError(c, http.StatusServiceUnavailable, err.Error())
	default:
		h.logger.Error("task request failed", "path", c.Request.URL.Path, "err", err)
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

func writeSuccess(c *gin.Context, statusCode int, data any) {
	c.JSON(statusCode, Envelope{Status: statusSuccess, Data: data})
}

func writeError(c *gin.Context, statusCode int, message string) {
	c.AbortWithStatusJSON(statusCode, Envelope{Status: statusError, Message: message})
}

type discardLogger struct{}

func (discardLogger) Debug(string, ...any) {}
func (discardLogger) Info(string, ...any)  {}
func (discardLogger) Warn(string, ...any)  {}
func (discardLogger) Error(string, ...any) {}
