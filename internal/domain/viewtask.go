package domain

import "time"

// ViewTask is the client-side row for a Task. PreviousName and
// PreviousDescription hold the last confirmed values and are restored on cancel.
type ViewTask struct {
	Task
	PreviousName        string
	PreviousDescription string
	IsEditing           bool
}

// NewViewTask snapshots t as the confirmed state of a new row.
func NewViewTask(t Task, now time.Time) ViewTask {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now.UTC()
	}
	return ViewTask{
		Task:                t,
		PreviousName:        t.Name,
		PreviousDescription: t.Description,
	}
}

func (v ViewTask) WithEditToggled() ViewTask {
	v.IsEditing = !v.IsEditing
	return v
}

func (v ViewTask) WithName(name string) (ViewTask, error) {
	if !v.IsEditing {
		return v, ErrNotEditing
	}
	if err := ValidateName(name); err != nil {
		return v, err
	}
	v.Name = name
	return v, nil
}

func (v ViewTask) WithDescription(description string) (ViewTask, error) {
	if !v.IsEditing {
		return v, ErrNotEditing
	}
	if err := ValidateDescription(description); err != nil {
		return v, err
	}
	v.Description = description
	return v, nil
}

// Cancelled restores the confirmed snapshot and leaves edit mode.
func (v ViewTask) Cancelled() ViewTask {
	v.Name = v.PreviousName
	v.Description = v.PreviousDescription
	v.IsEditing = false
	return v
}

// Confirmed adopts the server's record as the new snapshot.
func (v ViewTask) Confirmed(server Task) ViewTask {
	v.Name = server.Name
	v.Description = server.Description
	v.PreviousName = server.Name
	v.PreviousDescription = server.Description
	v.UpdatedAt = server.UpdatedAt
	v.IsEditing = false
	return v
}

func (v ViewTask) WithCompleted(completed bool) ViewTask {
	v.IsCompleted = completed
	return v
}

// TaskList is an ordered set of rows keyed by task id. Its methods never
// modify the receiver.
type TaskList []ViewTask

func NewTaskList(tasks []Task, now time.Time) TaskList {
	out := make(TaskList, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, NewViewTask(t, now))
	}
	return out
}

func (l TaskList) Find(id int64) (ViewTask, bool) {
	for _, v := range l {
		if v.ID == id {
			return v, true
		}
	}
	return ViewTask{}, false
}

// Replace applies fn to the row with the given id. A missing id returns
// ErrNotFound and the list unchanged.
func (l TaskList) Replace(id int64, fn func(ViewTask) (ViewTask, error)) (TaskList, error) {
	for i, v := range l {
		if v.ID != id {
			continue
		}
		next, err := fn(v)
		if err != nil {
			return l, err
		}
		out := make(TaskList, len(l))
		copy(out, l)
		out[i] = next
		return out, nil
	}
	return l, ErrNotFound
}

func (l TaskList) Remove(id int64) TaskList {
	out := make(TaskList, 0, len(l))
	for _, v := range l {
		if v.ID == id {
			continue
		}
		out = append(out, v)
	}
	return out
}

func (l TaskList) Append(v ViewTask) TaskList {
	out := make(TaskList, len(l), len(l)+1)
	copy(out, l)
	return append(out, v)
}

func (l TaskList) Visible(hideCompleted bool) TaskList {
	if !hideCompleted {
		return l
	}
	out := make(TaskList, 0, len(l))
	for _, v := range l {
		if v.IsCompleted {
			continue
		}
		out = append(out, v)
	}
	return out
}
