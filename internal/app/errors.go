package app

import "errors"

// ErrInvalidPage and related errors describe validation failures.
var (
	ErrInvalidPage = errors.New("invalid page")
	ErrBlankName   = errors.New("blank task name")
)
