package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/evanschultz/ticklist/internal/domain"
)

func TestRepository_TaskLifecycle(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "ticklist.db")
	repo, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		_ = repo.Close()
	})

	now := time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)
	task, err := domain.NewTask(domain.TaskInput{Name: "milk", Description: "2L"}, now)
	if err != nil {
		t.Fatalf("NewTask() error = %v", err)
	}
	created, err := repo.CreateTask(ctx, task)
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	if created.ID <= 0 {
		t.Fatalf("expected assigned id, got %d", created.ID)
	}

	loaded, err := repo.GetTask(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetTask() error = %v", err)
	}
	if loaded.Name != "milk" || loaded.Description != "2L" || loaded.IsCompleted {
		t.Fatalf("unexpected task %#v", loaded)
	}
	if !loaded.CreatedAt.Equal(now) {
		t.Fatalf("unexpected created_at %v", loaded.CreatedAt)
	}

	later := now.Add(time.Hour)
	loaded.SetCompleted(true, later)
	if err := loaded.UpdateDetails(domain.TaskUpdate{Name: "oat", Description: "1L", UpdatedAt: later}); err != nil {
		t.Fatalf("UpdateDetails() error = %v", err)
	}
	if err := repo.UpdateTask(ctx, loaded); err != nil {
		t.Fatalf("UpdateTask() error = %v", err)
	}
	updated, err := repo.GetTask(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetTask() error = %v", err)
	}
	if updated.Name != "oat" || !updated.IsCompleted || !updated.UpdatedAt.Equal(later) {
		t.Fatalf("unexpected updated task %#v", updated)
	}

	if err := repo.DeleteTask(ctx, created.ID); err != nil {
		t.Fatalf("DeleteTask() error = %v", err)
	}
	if _, err := repo.GetTask(ctx, created.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.DeleteTask(ctx, created.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
	if err := repo.UpdateTask(ctx, created); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on update, got %v", err)
	}
}

func TestRepository_ListTasksFilterAndPage(t *testing.T) {
	ctx := context.Background()
	repo, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() {
		_ = repo.Close()
	})

	now := time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)
	for i, name := range []string{"a", "b", "c", "d"} {
		task, err := domain.NewTask(domain.TaskInput{Name: name}, now)
		if err != nil {
			t.Fatalf("NewTask() error = %v", err)
		}
		task.IsCompleted = i%2 == 1
		if _, err := repo.CreateTask(ctx, task); err != nil {
			t.Fatalf("CreateTask() error = %v", err)
		}
	}

	all, err := repo.ListTasks(ctx, domain.TaskFilterAll, 10, 0)
	if err != nil {
		t.Fatalf("ListTasks() error = %v", err)
	}
	if len(all) != 4 || all[0].Name != "a" || all[3].Name != "d" {
		t.Fatalf("unexpected tasks %#v", all)
	}

	completed, err := repo.ListTasks(ctx, domain.TaskFilterCompleted, 10, 0)
	if err != nil {
		t.Fatalf("ListTasks() error = %v", err)
	}
	if len(completed) != 2 || completed[0].Name != "b" {
		t.Fatalf("unexpected completed tasks %#v", completed)
	}

	incomplete, err := repo.ListTasks(ctx, domain.TaskFilterIncomplete, 1, 1)
	if err != nil {
		t.Fatalf("ListTasks() error = %v", err)
	}
	if len(incomplete) != 1 || incomplete[0].Name != "c" {
		t.Fatalf("unexpected incomplete page %#v", incomplete)
	}
}

func TestRepository_CreateTaskKeepsExplicitID(t *testing.T) {
	ctx := context.Background()
	repo, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() {
		_ = repo.Close()
	})

	now := time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)
	created, err := repo.CreateTask(ctx, domain.Task{ID: 42, Name: "imported", CreatedAt: now, UpdatedAt: now})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	if created.ID != 42 {
		t.Fatalf("expected id 42, got %d", created.ID)
	}
	next, err := repo.CreateTask(ctx, domain.Task{Name: "next", CreatedAt: now, UpdatedAt: now})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	if next.ID != 43 {
		t.Fatalf("expected autoincrement after 42, got %d", next.ID)
	}
	if _, err := repo.CreateTask(ctx, domain.Task{ID: 42, Name: "dup", CreatedAt: now}); err == nil {
		t.Fatal("expected primary key conflict")
	}
}

func TestRepository_UpsertTasks(t *testing.T) {
	ctx := context.Background()
	repo, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() {
		_ = repo.Close()
	})

	now := time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)
	existing, err := repo.CreateTask(ctx, domain.Task{Name: "old", CreatedAt: now, UpdatedAt: now})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}

	earlier := now.Add(-48 * time.Hour)
	err = repo.UpsertTasks(ctx, []domain.Task{
		{ID: existing.ID, Name: "renamed", IsCompleted: true, CreatedAt: earlier, UpdatedAt: now},
		{ID: 9, Name: "new", CreatedAt: earlier, UpdatedAt: earlier},
	})
	if err != nil {
		t.Fatalf("UpsertTasks() error = %v", err)
	}
	got, err := repo.GetTask(ctx, existing.ID)
	if err != nil {
		t.Fatalf("GetTask() error = %v", err)
	}
	if got.Name != "renamed" || !got.IsCompleted || !got.CreatedAt.Equal(earlier) {
		t.Fatalf("expected full overwrite including created_at, got %#v", got)
	}
	if _, err := repo.GetTask(ctx, 9); err != nil {
		t.Fatalf("GetTask(9) error = %v", err)
	}

	// a bad task rolls back the ones written before it
	err = repo.UpsertTasks(ctx, []domain.Task{
		{ID: 20, Name: "first", CreatedAt: now, UpdatedAt: now},
		{ID: 0, Name: "bad", CreatedAt: now, UpdatedAt: now},
	})
	if !errors.Is(err, domain.ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
	if _, err := repo.GetTask(ctx, 20); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected task 20 rolled back, got %v", err)
	}
}
