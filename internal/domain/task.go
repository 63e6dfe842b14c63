package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Field caps shared by the client inputs and the reference server.
const (
	MaxNameRunes        = 10
	MaxDescriptionRunes = 30
)

type Task struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsCompleted bool      `json:"is_completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type TaskInput struct {
	Name        string
	Description string
}

// TaskUpdate is the full replace payload for name and description.
type TaskUpdate struct {
	Name        string
	Description string
	UpdatedAt   time.Time
}

type TaskFilter string

const (
	TaskFilterAll        TaskFilter = "all"
	TaskFilterCompleted  TaskFilter = "completed"
	TaskFilterIncomplete TaskFilter = "incomplete"
)

func ParseTaskFilter(raw string) (TaskFilter, error) {
	switch TaskFilter(strings.ToLower(strings.TrimSpace(raw))) {
	case "", TaskFilterAll:
		return TaskFilterAll, nil
	case TaskFilterCompleted:
		return TaskFilterCompleted, nil
	case TaskFilterIncomplete:
		return TaskFilterIncomplete, nil
	default:
		return "", ErrInvalidFilter
	}
}

// NewTask validates a server-side task record. The id is assigned by storage.
func NewTask(in TaskInput, now time.Time) (Task, error) {
	if strings.TrimSpace(in.Name) == "" {
		return Task{}, ErrInvalidName
	}
	if err := ValidateName(in.Name); err != nil {
		return Task{}, err
	}
	if err := ValidateDescription(in.Description); err != nil {
		return Task{}, err
	}
	return Task{
		Name:        in.Name,
		Description: in.Description,
		CreatedAt:   now.UTC(),
		UpdatedAt:   now.UTC(),
	}, nil
}

func (t *Task) UpdateDetails(in TaskUpdate) error {
	if strings.TrimSpace(in.Name) == "" {
		return ErrInvalidName
	}
	if err := ValidateName(in.Name); err != nil {
		return err
	}
	if err := ValidateDescription(in.Description); err != nil {
		return err
	}
	t.Name = in.Name
	t.Description = in.Description
	t.UpdatedAt = in.UpdatedAt.UTC()
	return nil
}

func (t *Task) SetCompleted(completed bool, now time.Time) {
	t.IsCompleted = completed
	t.UpdatedAt = now.UTC()
}

func ValidateName(name string) error {
	if utf8.RuneCountInString(name) > MaxNameRunes {
		return ErrNameTooLong
	}
	return nil
}

func ValidateDescription(description string) error {
	if utf8.RuneCountInString(description) > MaxDescriptionRunes {
		return ErrDescriptionTooLong
	}
	return nil
}
