package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/evanschultz/ticklist/internal/domain"
)

var errRemote = errors.New("remote rejected")

type fakeAPI struct {
	tasks     []domain.Task
	nextID    int64
	listErr   error
	createErr error
	toggleErr error
	updateErr error
	deleteErr error
	echo      func(domain.TaskUpdate) domain.Task

	listCalls   int
	createCalls int
	toggles     []bool
	updates     []domain.TaskUpdate
	deletes     []int64
}

func (f *fakeAPI) ListTasks(_ context.Context, page int, filter domain.TaskFilter) ([]domain.Task, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	if page != 1 || filter != domain.TaskFilterAll {
		return nil, fmt.Errorf("unexpected page %d type %q", page, filter)
	}
	return append([]domain.Task(nil), f.tasks...), nil
}

func (f *fakeAPI) CreateTask(_ context.Context, in domain.TaskInput) (domain.Task, error) {
	f.createCalls++
	if f.createErr != nil {
		return domain.Task{}, f.createErr
	}
	f.nextID++
	task := domain.Task{ID: 100 + f.nextID, Name: in.Name, Description: in.Description}
	f.tasks = append(f.tasks, task)
	return task, nil
}

func (f *fakeAPI) SetTaskCompleted(_ context.Context, _ int64, completed bool) error {
	f.toggles = append(f.toggles, completed)
	return f.toggleErr
}

func (f *fakeAPI) UpdateTask(_ context.Context, id int64, in domain.TaskUpdate) (domain.Task, error) {
	f.updates = append(f.updates, in)
	if f.updateErr != nil {
		return domain.Task{}, f.updateErr
	}
	if f.echo != nil {
		return f.echo(in), nil
	}
	return domain.Task{ID: id, Name: in.Name, Description: in.Description, UpdatedAt: in.UpdatedAt}, nil
}

func (f *fakeAPI) DeleteTask(_ context.Context, id int64) error {
	f.deletes = append(f.deletes, id)
	return f.deleteErr
}

type logRecord struct {
	level   string
	msg     string
	keyvals []any
}

type recordingLogger struct {
	records []logRecord
}

func (l *recordingLogger) add(level, msg string, keyvals []any) {
	l.records = append(l.records, logRecord{level: level, msg: msg, keyvals: keyvals})
}

func (l *recordingLogger) Debug(msg string, keyvals ...any) { l.add("debug", msg, keyvals) }
func (l *recordingLogger) Info(msg string, keyvals ...any)  { l.add("info", msg, keyvals) }
func (l *recordingLogger) Warn(msg string, keyvals ...any)  { l.add("warn", msg, keyvals) }
func (l *recordingLogger) Error(msg string, keyvals ...any) { l.add("error", msg, keyvals) }

func (l *recordingLogger) warnings() []logRecord {
	out := make([]logRecord, 0)
	for _, rec := range l.records {
		if rec.level == "warn" {
			out = append(out, rec)
		}
	}
	return out
}

func keyval(rec logRecord, key string) (any, bool) {
	for i := 0; i+1 < len(rec.keyvals); i += 2 {
		if rec.keyvals[i] == key {
			return rec.keyvals[i+1], true
		}
	}
	return nil, false
}

func fixedClock() Clock {
	now := time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return now }
}

func newTestController(api *fakeAPI) (*Controller, *recordingLogger) {
	logger := &recordingLogger{}
	return NewController(api, logger, fixedClock(), ControllerConfig{}), logger
}

func TestControllerLoadFailureLogsAndReturnsError(t *testing.T) {
	api := &fakeAPI{listErr: errRemote}
	ctrl, logger := newTestController(api)
	res := ctrl.Load(context.Background())
	if !errors.Is(res.Err, errRemote) {
		t.Fatalf("expected remote error, got %v", res.Err)
	}
	warnings := logger.warnings()
	if len(warnings) != 1 {
		t.Fatalf("expected one warning, got %#v", logger.records)
	}
	if op, _ := keyval(warnings[0], "op"); op != "load" {
		t.Fatalf("expected op=load, got %v", op)
	}
}

func TestControllerCreateBlankNameSkipsCall(t *testing.T) {
	api := &fakeAPI{}
	ctrl, _ := newTestController(api)
	for _, name := range []string{"", "   ", "\t"} {
		res := ctrl.Create(context.Background(), name, "desc")
		if !errors.Is(res.Err, ErrBlankName) {
			t.Fatalf("Create(%q) error = %v, want ErrBlankName", name, res.Err)
		}
	}
	if api.createCalls != 0 {
		t.Fatalf("expected no create calls, got %d", api.createCalls)
	}
}

func TestControllerToggleComputesFromSnapshot(t *testing.T) {
	api := &fakeAPI{}
	ctrl, _ := newTestController(api)
	row := domain.NewViewTask(domain.Task{ID: 7, Name: "a"}, time.Now())

	res := ctrl.ToggleCompleted(context.Background(), row)
	if res.Err != nil {
		t.Fatalf("ToggleCompleted() error = %v", res.Err)
	}
	if !res.Completed || len(api.toggles) != 1 || !api.toggles[0] {
		t.Fatalf("unexpected toggle result %#v sent %#v", res, api.toggles)
	}

	api.toggleErr = errRemote
	res = ctrl.ToggleCompleted(context.Background(), row)
	if !errors.Is(res.Err, errRemote) {
		t.Fatalf("expected remote error, got %v", res.Err)
	}
}

func TestControllerConfirmSendsFreshUpdatedAt(t *testing.T) {
	api := &fakeAPI{}
	ctrl, _ := newTestController(api)
	row := domain.NewViewTask(domain.Task{ID: 3, Name: "a", Description: "d"}, time.Now())
	row.Name = "b"

	res := ctrl.ConfirmEdit(context.Background(), row)
	if res.Err != nil {
		t.Fatalf("ConfirmEdit() error = %v", res.Err)
	}
	if len(api.updates) != 1 {
		t.Fatalf("expected one update, got %d", len(api.updates))
	}
	sent := api.updates[0]
	if sent.Name != "b" || sent.Description != "d" || !sent.UpdatedAt.Equal(fixedClock()()) {
		t.Fatalf("unexpected update payload %#v", sent)
	}
	if res.Task.Name != "b" {
		t.Fatalf("unexpected confirm task %#v", res.Task)
	}
}

func TestControllerDeleteFailureLogsTaskID(t *testing.T) {
	api := &fakeAPI{deleteErr: fmt.Errorf("status %d: %w", http.StatusNotFound, errRemote)}
	ctrl, logger := newTestController(api)
	res := ctrl.Delete(context.Background(), 42)
	if res.Err == nil || res.ID != 42 {
		t.Fatalf("unexpected delete result %#v", res)
	}
	warnings := logger.warnings()
	if len(warnings) != 1 {
		t.Fatalf("expected one warning, got %#v", logger.records)
	}
	if id, _ := keyval(warnings[0], "task_id"); id != int64(42) {
		t.Fatalf("expected task_id=42, got %v", id)
	}
	if op, _ := keyval(warnings[0], "op"); op != "delete" {
		t.Fatalf("expected op=delete, got %v", op)
	}
}
