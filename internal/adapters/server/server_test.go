package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/evanschultz/ticklist/internal/adapters/server/common"
	"github.com/evanschultz/ticklist/internal/adapters/storage/sqlite"
	"github.com/evanschultz/ticklist/internal/adapters/taskapi"
	"github.com/evanschultz/ticklist/internal/app"
	"github.com/evanschultz/ticklist/internal/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestDeps(t *testing.T) Dependencies {
	t.Helper()
	repo, err := sqlite.OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() {
		_ = repo.Close()
	})
	svc := app.NewService(repo, nil, app.ServiceConfig{})
	return Dependencies{
		Tasks: common.NewAppServiceAdapter(svc),
		Ready: repo.Ping,
	}
}

// TestClientRoundTrip drives the reference server through the remote API client.
func TestClientRoundTrip(t *testing.T) {
	handler, _, err := NewHandler(Config{}, newTestDeps(t))
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := taskapi.New(taskapi.Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("taskapi.New() error = %v", err)
	}
	ctx := context.Background()

	created, err := client.CreateTask(ctx, domain.TaskInput{Name: "milk", Description: "2L"})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	if created.ID <= 0 || created.CreatedAt.IsZero() {
		t.Fatalf("unexpected created task %#v", created)
	}
	if err := client.SetTaskCompleted(ctx, created.ID, true); err != nil {
		t.Fatalf("SetTaskCompleted() error = %v", err)
	}
	stamp := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	updated, err := client.UpdateTask(ctx, created.ID, domain.TaskUpdate{Name: "oat", Description: "1L", UpdatedAt: stamp})
	if err != nil {
		t.Fatalf("UpdateTask() error = %v", err)
	}
	if updated.Name != "oat" || !updated.UpdatedAt.Equal(stamp) || !updated.IsCompleted {
		t.Fatalf("unexpected updated task %#v", updated)
	}

	tasks, err := client.ListTasks(ctx, 1, domain.TaskFilterCompleted)
	if err != nil {
		t.Fatalf("ListTasks() error = %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != created.ID {
		t.Fatalf("unexpected completed tasks %#v", tasks)
	}

	if err := client.DeleteTask(ctx, created.ID); err != nil {
		t.Fatalf("DeleteTask() error = %v", err)
	}
	if err := client.DeleteTask(ctx, created.ID); !errors.Is(err, taskapi.ErrUnexpectedStatus) {
		t.Fatalf("expected ErrUnexpectedStatus on second delete, got %v", err)
	}
	if err := client.SetTaskCompleted(ctx, created.ID, false); !errors.Is(err, taskapi.ErrRejected) {
		t.Fatalf("expected ErrRejected for unknown id, got %v", err)
	}
	if _, err := client.CreateTask(ctx, domain.TaskInput{Name: "far too long"}); !errors.Is(err, taskapi.ErrRejected) {
		t.Fatalf("expected ErrRejected for long name, got %v", err)
	}
}

func TestHealthAndReadiness(t *testing.T) {
	deps := newTestDeps(t)
	deps.Ready = func(context.Context) error { return errors.New("db down") }
	handler, _, err := NewHandler(Config{}, deps)
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d", rec.Code)
	}
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz status = %d, want 503", rec.Code)
	}
}

func TestNormalizeConfig(t *testing.T) {
	cfg, err := normalizeConfig(Config{MCPEndpoint: "tools/"})
	if err != nil {
		t.Fatalf("normalizeConfig() error = %v", err)
	}
	if cfg.HTTPBind != defaultBindAddress || cfg.APIEndpoint != "/api/task" || cfg.MCPEndpoint != "/tools" {
		t.Fatalf("unexpected config %#v", cfg)
	}
	if _, err := normalizeConfig(Config{APIEndpoint: "/x", MCPEndpoint: "x/"}); err == nil {
		t.Fatal("expected collision error")
	}
	if _, err := normalizeConfig(Config{MCPEndpoint: "/healthz"}); err == nil {
		t.Fatal("expected reserved endpoint error")
	}
}

func TestNewHandlerRequiresTasks(t *testing.T) {
	if _, _, err := NewHandler(Config{}, Dependencies{}); err == nil {
		t.Fatal("expected error without task service")
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	handler, _, err := NewHandler(Config{}, newTestDeps(t))
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- serve(ctx, listener, handler, nil)
	}()

	resp, err := http.Get("http://" + listener.Addr().String() + "/healthz")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	_ = resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve() error = %v", err)
		}
	case <-time.After(defaultShutdownTimeout + time.Second):
		t.Fatal("serve() did not stop after cancel")
	}
}
