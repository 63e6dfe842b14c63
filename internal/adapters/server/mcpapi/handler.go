// Package mcpapi provides a stateless MCP streamable-HTTP adapter.
package mcpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/evanschultz/ticklist/internal/adapters/server/common"
	"github.com/evanschultz/ticklist/internal/domain"
)

// Config captures MCP transport configuration.
type Config struct {
	ServerName    string
	ServerVersion string
	EndpointPath  string
}

// Handler wraps one stateless MCP streamable HTTP handler.
type Handler struct {
	httpHandler http.Handler
}

// NewHandler builds one stateless MCP adapter exposing the task tools.
func NewHandler(cfg Config, tasks common.TaskService) (*Handler, error) {
	if tasks == nil {
		return nil, fmt.Errorf("task service is required")
	}
	cfg = normalizeConfig(cfg)

	mcpSrv := mcpserver.NewMCPServer(
		cfg.ServerName,
		cfg.ServerVersion,
		mcpserver.WithToolCapabilities(false),
	)
	registerTaskTools(mcpSrv, tasks)

	streamable := mcpserver.NewStreamableHTTPServer(
		mcpSrv,
		mcpserver.WithEndpointPath(cfg.EndpointPath),
		mcpserver.WithStateLess(true),
	)
	return &Handler{httpHandler: streamable}, nil
}

// ServeHTTP handles one MCP streamable HTTP request.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.httpHandler == nil {
		http.Error(w, "mcp handler unavailable", http.StatusServiceUnavailable)
		return
	}
	h.httpHandler.ServeHTTP(w, r)
}

// normalizeConfig applies deterministic defaults to MCP adapter config.
func normalizeConfig(cfg Config) Config {
	cfg.ServerName = strings.TrimSpace(cfg.ServerName)
	if cfg.ServerName == "" {
		cfg.ServerName = "ticklist"
	}
	cfg.ServerVersion = strings.TrimSpace(cfg.ServerVersion)
	if cfg.ServerVersion == "" {
		cfg.ServerVersion = "dev"
	}
	cfg.EndpointPath = strings.TrimSpace(cfg.EndpointPath)
	if cfg.EndpointPath == "" {
		cfg.EndpointPath = "/mcp"
	}
	return cfg
}

// registerTaskTools registers the list/create/complete/update/delete task tools.
func registerTaskTools(srv *mcpserver.MCPServer, tasks common.TaskService) {
	srv.AddTool(
		mcp.NewTool(
			"ticklist.list_tasks",
			mcp.WithDescription("List one page of tasks."),
			mcp.WithNumber("page", mcp.Description("Page number starting at 1")),
			mcp.WithString("type", mcp.Description("all|completed|incomplete"), mcp.Enum(common.SupportedListTypes()...)),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			rows, err := tasks.ListTasks(ctx, common.ListTasksRequest{
				Page: req.GetInt("page", 1),
				Type: req.GetString("type", string(domain.TaskFilterAll)),
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(map[string]any{"tasks": rows})
			if err != nil {
				return nil, fmt.Errorf("encode list_tasks result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"ticklist.create_task",
			mcp.WithDescription("Create one task."),
			mcp.WithString("name", mcp.Required(), mcp.Description("Task name (max 10 characters)")),
			mcp.WithString("description", mcp.Description("Task description (max 30 characters)")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			name, err := req.RequireString("name")
			if err != nil {
				return invalidRequestToolResult(err), nil
			}
			task, err := tasks.CreateTask(ctx, common.CreateTaskRequest{
				Name:        name,
				Description: req.GetString("description", ""),
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			return taskResult("create_task", task)
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"ticklist.set_task_completed",
			mcp.WithDescription("Mark one task completed or not completed."),
			mcp.WithNumber("id", mcp.Required(), mcp.Description("Task id")),
			mcp.WithBoolean("is_completed", mcp.Required(), mcp.Description("New completion flag")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := req.RequireInt("id")
			if err != nil {
				return invalidRequestToolResult(err), nil
			}
			completed, err := req.RequireBool("is_completed")
			if err != nil {
				return invalidRequestToolResult(err), nil
			}
			task, err := tasks.SetTaskCompleted(ctx, common.SetTaskCompletedRequest{
				ID:          int64(id),
				IsCompleted: completed,
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			return taskResult("set_task_completed", task)
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"ticklist.update_task",
			mcp.WithDescription("Replace one task's name and description."),
			mcp.WithNumber("id", mcp.Required(), mcp.Description("Task id")),
			mcp.WithString("name", mcp.Required(), mcp.Description("Task name (max 10 characters)")),
			mcp.WithString("description", mcp.Description("Task description (max 30 characters)")),
			mcp.WithString("updated_at", mcp.Description("Optional RFC3339 timestamp")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := req.RequireInt("id")
			if err != nil {
				return invalidRequestToolResult(err), nil
			}
			name, err := req.RequireString("name")
			if err != nil {
				return invalidRequestToolResult(err), nil
			}
			task, err := tasks.UpdateTask(ctx, common.UpdateTaskRequest{
				ID:          int64(id),
				Name:        name,
				Description: req.GetString("description", ""),
				UpdatedAt:   req.GetString("updated_at", ""),
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			return taskResult("update_task", task)
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"ticklist.delete_task",
			mcp.WithDescription("Delete one task."),
			mcp.WithNumber("id", mcp.Required(), mcp.Description("Task id")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := req.RequireInt("id")
			if err != nil {
				return invalidRequestToolResult(err), nil
			}
			if err := tasks.DeleteTask(ctx, int64(id)); err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(map[string]any{"deleted": true, "id": id})
			if err != nil {
				return nil, fmt.Errorf("encode delete_task result: %w", err)
			}
			return result, nil
		},
	)
}

func taskResult(tool string, task domain.Task) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(map[string]any{"task": task})
	if err != nil {
		return nil, fmt.Errorf("encode %s result: %w", tool, err)
	}
	return result, nil
}

// toolResultFromError maps service errors into MCP-visible tool errors.
func toolResultFromError(err error) *mcp.CallToolResult {
	switch {
	case err == nil:
		return mcp.NewToolResultError("unknown error")
	case errors.Is(err, common.ErrInvalidRequest):
		return mcp.NewToolResultError("invalid_request: " + err.Error())
	case errors.Is(err, common.ErrNotFound):
		return mcp.NewToolResultError("not_found: " + err.Error())
	case errors.Is(err, common.ErrUnavailable):
		return mcp.NewToolResultError("unavailable: " + err.Error())
	default:
		return mcp.NewToolResultError("internal_error: " + err.Error())
	}
}

// invalidRequestToolResult wraps argument-binding failures as deterministic tool errors.
func invalidRequestToolResult(err error) *mcp.CallToolResult {
	if err == nil {
		return mcp.NewToolResultError("invalid_request: malformed arguments")
	}
	return mcp.NewToolResultError("invalid_request: " + err.Error())
}
