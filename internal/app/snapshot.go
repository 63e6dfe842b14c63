package app

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/evanschultz/ticklist/internal/domain"
)

const SnapshotVersion = "ticklist.snapshot.v1"

// Snapshot is a portable dump of the reference server's tasks.
type Snapshot struct {
	Version    string         `json:"version"`
	ExportedAt time.Time      `json:"exported_at"`
	Tasks      []SnapshotTask `json:"tasks"`
}

type SnapshotTask struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsCompleted bool      `json:"is_completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at,omitzero"`
}

// ExportSnapshot returns every stored task, ordered by id.
func (s *Service) ExportSnapshot(ctx context.Context) (Snapshot, error) {
	tasks, err := s.repo.ListTasks(ctx, domain.TaskFilterAll, 0, 0)
	if err != nil {
		return Snapshot{}, err
	}
	snap := Snapshot{
		Version:    SnapshotVersion,
		ExportedAt: s.clock().UTC(),
		Tasks:      make([]SnapshotTask, 0, len(tasks)),
	}
	for _, task := range tasks {
		snap.Tasks = append(snap.Tasks, snapshotTaskFromDomain(task))
	}
	snap.sort()
	return snap, nil
}

// ImportSnapshot upserts every task in snap, keeping its id and timestamps.
// Tasks already stored but absent from snap are left alone. Nothing is
// written unless every task is.
func (s *Service) ImportSnapshot(ctx context.Context, snap Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}
	snap.sort()

	tasks := make([]domain.Task, 0, len(snap.Tasks))
	for _, task := range snap.Tasks {
		tasks = append(tasks, task.toDomain())
	}
	if err := s.repo.UpsertTasks(ctx, tasks); err != nil {
		return fmt.Errorf("import snapshot: %w", err)
	}
	return nil
}

// Validate checks ids, caps, and timestamps before anything is written.
func (s *Snapshot) Validate() error {
	if s.Version != "" && s.Version != SnapshotVersion {
		return fmt.Errorf("unsupported snapshot version: %q", s.Version)
	}
	ids := map[int64]struct{}{}
	for i, t := range s.Tasks {
		if t.ID <= 0 {
			return fmt.Errorf("tasks[%d].id must be > 0", i)
		}
		if _, exists := ids[t.ID]; exists {
			return fmt.Errorf("duplicate task id: %d", t.ID)
		}
		ids[t.ID] = struct{}{}
		if strings.TrimSpace(t.Name) == "" {
			return fmt.Errorf("tasks[%d].name is required", i)
		}
		if err := domain.ValidateName(t.Name); err != nil {
			return fmt.Errorf("tasks[%d].name: %w", i, err)
		}
		if err := domain.ValidateDescription(t.Description); err != nil {
			return fmt.Errorf("tasks[%d].description: %w", i, err)
		}
		if t.CreatedAt.IsZero() {
			return fmt.Errorf("tasks[%d].created_at is required", i)
		}
	}
	return nil
}

func (s *Snapshot) sort() {
	sort.Slice(s.Tasks, func(i, j int) bool {
		return s.Tasks[i].ID < s.Tasks[j].ID
	})
}

func snapshotTaskFromDomain(t domain.Task) SnapshotTask {
	return SnapshotTask{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		IsCompleted: t.IsCompleted,
		CreatedAt:   t.CreatedAt.UTC(),
		UpdatedAt:   t.UpdatedAt.UTC(),
	}
}

func (t SnapshotTask) toDomain() domain.Task {
	return domain.Task{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		IsCompleted: t.IsCompleted,
		CreatedAt:   t.CreatedAt.UTC(),
		UpdatedAt:   t.UpdatedAt.UTC(),
	}
}
