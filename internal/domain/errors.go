package domain

import "errors"

var (
	ErrInvalidID          = errors.New("invalid id")
	ErrInvalidName        = errors.New("invalid name")
	ErrNameTooLong        = errors.New("name too long")
	ErrDescriptionTooLong = errors.New("description too long")
	ErrInvalidFilter      = errors.New("invalid task filter")
	ErrNotEditing         = errors.New("task is not in edit mode")
	ErrNotFound           = errors.New("not found")
)
