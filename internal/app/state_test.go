package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/evanschultz/ticklist/internal/domain"
)

func loadedState(t *testing.T, ctrl *Controller) State {
	t.Helper()
	res := ctrl.Load(context.Background())
	if res.Err != nil {
		t.Fatalf("Load() error = %v", res.Err)
	}
	return State{}.ApplyLoad(res)
}

func TestApplyLoadSnapshotsEveryRow(t *testing.T) {
	now := time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)
	api := &fakeAPI{tasks: []domain.Task{
		{ID: 1, Name: "A", Description: "d", CreatedAt: now},
		{ID: 2, Name: "B", Description: "e", IsCompleted: true, CreatedAt: now},
	}}
	ctrl, _ := newTestController(api)
	state := loadedState(t, ctrl)
	if !state.Loaded || len(state.Tasks) != 2 {
		t.Fatalf("unexpected state %#v", state)
	}
	for i, row := range state.Tasks {
		want := api.tasks[i]
		if row.Name != want.Name || row.PreviousName != want.Name || row.PreviousDescription != want.Description {
			t.Fatalf("row %d not snapshotted: %#v", i, row)
		}
		if row.IsEditing {
			t.Fatalf("row %d unexpectedly editing", i)
		}
	}
}

func TestApplyLoadFailureKeepsList(t *testing.T) {
	api := &fakeAPI{tasks: []domain.Task{{ID: 1, Name: "A"}}}
	ctrl, _ := newTestController(api)
	state := loadedState(t, ctrl)

	api.listErr = errRemote
	reloaded := state.ApplyLoad(ctrl.Load(context.Background()))
	if len(reloaded.Tasks) != 1 || reloaded.Tasks[0].Name != "A" {
		t.Fatalf("expected list untouched, got %#v", reloaded.Tasks)
	}

	empty := State{}.ApplyLoad(ctrl.Load(context.Background()))
	if empty.Loaded || len(empty.Tasks) != 0 {
		t.Fatalf("expected empty unloaded state, got %#v", empty)
	}
}

func TestCreateBlankNameLeavesListUnchanged(t *testing.T) {
	api := &fakeAPI{tasks: []domain.Task{{ID: 1, Name: "A"}}}
	ctrl, _ := newTestController(api)
	state := loadedState(t, ctrl)
	state, err := state.SetDraftName("   ")
	if err != nil {
		t.Fatalf("SetDraftName() error = %v", err)
	}
	if _, ok := state.PendingCreate(); ok {
		t.Fatal("expected blank draft to be ignored")
	}
	next := state.ApplyCreate(ctrl.Create(context.Background(), state.DraftName, state.DraftDescription))
	if len(next.Tasks) != 1 {
		t.Fatalf("expected list length 1, got %d", len(next.Tasks))
	}
}

func TestCreateAppendsAndClearsDrafts(t *testing.T) {
	api := &fakeAPI{}
	ctrl, _ := newTestController(api)
	state := loadedState(t, ctrl)
	state, _ = state.SetDraftName("milk")
	state, _ = state.SetDraftDescription("2L")
	in, ok := state.PendingCreate()
	if !ok {
		t.Fatal("expected pending create")
	}
	next := state.ApplyCreate(ctrl.Create(context.Background(), in.Name, in.Description))
	if len(next.Tasks) != 1 || next.Tasks[0].Name != "milk" || next.Tasks[0].PreviousDescription != "2L" {
		t.Fatalf("unexpected tasks %#v", next.Tasks)
	}
	if next.DraftName != "" || next.DraftDescription != "" {
		t.Fatalf("expected drafts cleared, got %q/%q", next.DraftName, next.DraftDescription)
	}
	if next.Tasks[0].CreatedAt.IsZero() {
		t.Fatal("expected created_at defaulted")
	}

	api.createErr = errRemote
	state, _ = next.SetDraftName("rent")
	failed := state.ApplyCreate(ctrl.Create(context.Background(), state.DraftName, ""))
	if len(failed.Tasks) != 1 || failed.DraftName != "rent" {
		t.Fatalf("expected failed create to leave state, got %#v", failed)
	}
}

func TestDraftCaps(t *testing.T) {
	state := State{}
	if _, err := state.SetDraftName("abcdefghijk"); err != domain.ErrNameTooLong {
		t.Fatalf("expected ErrNameTooLong, got %v", err)
	}
	if _, err := state.SetDraftDescription("0123456789012345678901234567890"); err != domain.ErrDescriptionTooLong {
		t.Fatalf("expected ErrDescriptionTooLong, got %v", err)
	}
}

func TestToggleTwiceRestoresFlag(t *testing.T) {
	api := &fakeAPI{tasks: []domain.Task{{ID: 1, Name: "A"}}}
	ctrl, _ := newTestController(api)
	state := loadedState(t, ctrl)

	for range 2 {
		row, _ := state.Tasks.Find(1)
		state = state.ApplyToggle(ctrl.ToggleCompleted(context.Background(), row))
	}
	row, _ := state.Tasks.Find(1)
	if row.IsCompleted {
		t.Fatal("expected is_completed back to false")
	}
	if len(api.toggles) != 2 || !api.toggles[0] || api.toggles[1] {
		t.Fatalf("unexpected toggle payloads %#v", api.toggles)
	}

	api.toggleErr = errRemote
	state = state.ApplyToggle(ctrl.ToggleCompleted(context.Background(), row))
	if row, _ := state.Tasks.Find(1); row.IsCompleted {
		t.Fatal("expected failed toggle to leave flag")
	}
}

func TestToggleIgnoresServerEcho(t *testing.T) {
	state := State{Tasks: domain.NewTaskList([]domain.Task{{ID: 1, Name: "A"}}, time.Now())}
	state = state.ApplyToggle(ToggleResult{ID: 1, Completed: true})
	if row, _ := state.Tasks.Find(1); !row.IsCompleted {
		t.Fatal("expected completed flag from toggle result")
	}
	state = state.ApplyToggle(ToggleResult{ID: 99, Completed: true})
	if len(state.Tasks) != 1 {
		t.Fatal("expected unknown id toggle to be ignored")
	}
}

func TestEditCancelConfirmScenario(t *testing.T) {
	api := &fakeAPI{tasks: []domain.Task{{ID: 1, Name: "A", Description: "d"}}}
	ctrl, _ := newTestController(api)
	state := loadedState(t, ctrl)
	if len(state.Tasks) != 1 || state.Tasks[0].IsEditing {
		t.Fatalf("unexpected loaded state %#v", state.Tasks)
	}

	var err error
	if state, err = state.ToggleEdit(1); err != nil {
		t.Fatalf("ToggleEdit() error = %v", err)
	}
	if state, err = state.EditName(1, "B"); err != nil {
		t.Fatalf("EditName() error = %v", err)
	}
	if state, err = state.CancelEdit(1); err != nil {
		t.Fatalf("CancelEdit() error = %v", err)
	}
	if row, _ := state.Tasks.Find(1); row.Name != "A" || row.IsEditing {
		t.Fatalf("expected cancel to restore A, got %#v", row)
	}

	state, _ = state.ToggleEdit(1)
	state, _ = state.EditName(1, "B")
	row, _ := state.Tasks.Find(1)
	state = state.ApplyConfirm(ctrl.ConfirmEdit(context.Background(), row))
	if row, _ := state.Tasks.Find(1); row.Name != "B" || row.PreviousName != "B" || row.IsEditing {
		t.Fatalf("expected confirmed B, got %#v", row)
	}

	state, _ = state.CancelEdit(1)
	if row, _ := state.Tasks.Find(1); row.Name != "B" {
		t.Fatalf("expected cancel after confirm to keep B, got %#v", row)
	}
}

func TestConfirmUsesServerValues(t *testing.T) {
	api := &fakeAPI{
		tasks: []domain.Task{{ID: 1, Name: "A"}},
		echo: func(in domain.TaskUpdate) domain.Task {
			return domain.Task{ID: 1, Name: "Server", Description: in.Description, UpdatedAt: in.UpdatedAt}
		},
	}
	ctrl, _ := newTestController(api)
	state := loadedState(t, ctrl)
	state, _ = state.ToggleEdit(1)
	state, _ = state.EditName(1, "mine")
	row, _ := state.Tasks.Find(1)
	state = state.ApplyConfirm(ctrl.ConfirmEdit(context.Background(), row))
	row, _ = state.Tasks.Find(1)
	if row.Name != "Server" || row.PreviousName != "Server" {
		t.Fatalf("expected server values, got %#v", row)
	}
	if !row.UpdatedAt.Equal(fixedClock()()) {
		t.Fatalf("expected updated_at from server, got %v", row.UpdatedAt)
	}
}

func TestConfirmFailureStaysEditing(t *testing.T) {
	api := &fakeAPI{tasks: []domain.Task{{ID: 1, Name: "A"}}, updateErr: errRemote}
	ctrl, _ := newTestController(api)
	state := loadedState(t, ctrl)
	state, _ = state.ToggleEdit(1)
	state, _ = state.EditName(1, "B")
	row, _ := state.Tasks.Find(1)
	state = state.ApplyConfirm(ctrl.ConfirmEdit(context.Background(), row))
	row, _ = state.Tasks.Find(1)
	if !row.IsEditing || row.Name != "B" || row.PreviousName != "A" {
		t.Fatalf("expected unsaved edit kept in edit mode, got %#v", row)
	}
}

func TestEditRejections(t *testing.T) {
	state := State{Tasks: domain.NewTaskList([]domain.Task{{ID: 1, Name: "A"}}, time.Now())}
	if _, err := state.EditName(1, "B"); err != domain.ErrNotEditing {
		t.Fatalf("expected ErrNotEditing, got %v", err)
	}
	state, _ = state.ToggleEdit(1)
	next, err := state.EditName(1, "abcdefghijk")
	if err != domain.ErrNameTooLong {
		t.Fatalf("expected ErrNameTooLong, got %v", err)
	}
	if row, _ := next.Tasks.Find(1); row.Name != "A" {
		t.Fatalf("expected rejected edit to leave name, got %q", row.Name)
	}
	if _, err := state.EditName(5, "x"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteMissingIDLeavesList(t *testing.T) {
	api := &fakeAPI{tasks: []domain.Task{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}}}
	ctrl, _ := newTestController(api)
	state := loadedState(t, ctrl)

	api.deleteErr = errRemote
	state = state.ApplyDelete(ctrl.Delete(context.Background(), 9))
	if len(state.Tasks) != 2 {
		t.Fatalf("expected list untouched, got %d rows", len(state.Tasks))
	}

	api.deleteErr = nil
	state = state.ApplyDelete(ctrl.Delete(context.Background(), 1))
	if len(state.Tasks) != 1 || state.Tasks[0].ID != 2 {
		t.Fatalf("unexpected rows after delete %#v", state.Tasks)
	}
}

func TestHideCompletedFiltersRenderedRows(t *testing.T) {
	state := State{}.SetHideCompleted(true)
	if state.HideCompleted {
		t.Fatal("expected hide toggle to be a no-op on an empty list")
	}
	state = State{Tasks: domain.NewTaskList([]domain.Task{
		{ID: 1, Name: "open"},
		{ID: 2, Name: "done", IsCompleted: true},
	}, time.Now())}
	state = state.SetHideCompleted(true)
	visible := state.Visible()
	if len(visible) != 1 || visible[0].ID != 1 {
		t.Fatalf("expected only the incomplete row, got %#v", visible)
	}
	if len(state.Tasks) != 2 {
		t.Fatalf("expected data untouched, got %d rows", len(state.Tasks))
	}
	if len(state.SetHideCompleted(false).Visible()) != 2 {
		t.Fatal("expected both rows visible again")
	}
}
