package app

import (
	"errors"
	"strings"

	"github.com/evanschultz/ticklist/internal/domain"
)

// State is the task-list view state. Every method returns a new value.
type State struct {
	Tasks            domain.TaskList
	DraftName        string
	DraftDescription string
	HideCompleted    bool
	Loaded           bool
}

// ApplyLoad replaces the list on success. Failed loads leave state as it was.
func (s State) ApplyLoad(r LoadResult) State {
	if r.Err != nil {
		return s
	}
	s.Tasks = domain.NewTaskList(r.Tasks, r.At)
	s.Loaded = true
	return s
}

// ApplyCreate appends the created row and clears the drafts.
func (s State) ApplyCreate(r CreateResult) State {
	if r.Err != nil {
		return s
	}
	s.Tasks = s.Tasks.Append(domain.NewViewTask(r.Task, r.At))
	s.DraftName = ""
	s.DraftDescription = ""
	return s
}

// ApplyToggle sets the flag computed at call time. A row deleted while the
// call was in flight is ignored.
func (s State) ApplyToggle(r ToggleResult) State {
	if r.Err != nil {
		return s
	}
	return s.replaceIgnoringMissing(r.ID, func(v domain.ViewTask) (domain.ViewTask, error) {
		return v.WithCompleted(r.Completed), nil
	})
}

// ApplyConfirm adopts the server's record. On failure the row keeps its
// unsaved edits and stays in edit mode.
func (s State) ApplyConfirm(r ConfirmResult) State {
	if r.Err != nil {
		return s
	}
	return s.replaceIgnoringMissing(r.ID, func(v domain.ViewTask) (domain.ViewTask, error) {
		return v.Confirmed(r.Task), nil
	})
}

func (s State) ApplyDelete(r DeleteResult) State {
	if r.Err != nil {
		return s
	}
	s.Tasks = s.Tasks.Remove(r.ID)
	return s
}

func (s State) ToggleEdit(id int64) (State, error) {
	return s.replace(id, func(v domain.ViewTask) (domain.ViewTask, error) {
		return v.WithEditToggled(), nil
	})
}

func (s State) EditName(id int64, name string) (State, error) {
	return s.replace(id, func(v domain.ViewTask) (domain.ViewTask, error) {
		return v.WithName(name)
	})
}

func (s State) EditDescription(id int64, description string) (State, error) {
	return s.replace(id, func(v domain.ViewTask) (domain.ViewTask, error) {
		return v.WithDescription(description)
	})
}

func (s State) CancelEdit(id int64) (State, error) {
	return s.replace(id, func(v domain.ViewTask) (domain.ViewTask, error) {
		return v.Cancelled(), nil
	})
}

func (s State) SetDraftName(name string) (State, error) {
	if err := domain.ValidateName(name); err != nil {
		return s, err
	}
	s.DraftName = name
	return s, nil
}

func (s State) SetDraftDescription(description string) (State, error) {
	if err := domain.ValidateDescription(description); err != nil {
		return s, err
	}
	s.DraftDescription = description
	return s, nil
}

// SetHideCompleted is a no-op while the list is empty.
func (s State) SetHideCompleted(hide bool) State {
	if len(s.Tasks) == 0 {
		return s
	}
	s.HideCompleted = hide
	return s
}

// Visible returns the rows to render.
func (s State) Visible() domain.TaskList {
	return s.Tasks.Visible(s.HideCompleted)
}

// PendingCreate reports the draft to submit, or false when the name is blank.
func (s State) PendingCreate() (domain.TaskInput, bool) {
	if strings.TrimSpace(s.DraftName) == "" {
		return domain.TaskInput{}, false
	}
	return domain.TaskInput{Name: s.DraftName, Description: s.DraftDescription}, true
}

func (s State) replace(id int64, fn func(domain.ViewTask) (domain.ViewTask, error)) (State, error) {
	tasks, err := s.Tasks.Replace(id, fn)
	if err != nil {
		return s, err
	}
	s.Tasks = tasks
	return s, nil
}

func (s State) replaceIgnoringMissing(id int64, fn func(domain.ViewTask) (domain.ViewTask, error)) State {
	next, err := s.replace(id, fn)
	if errors.Is(err, domain.ErrNotFound) {
		return s
	}
	return next
}
