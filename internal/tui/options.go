package tui

import "time"

type Option func(*Model)

// WithClipboard replaces the clipboard writer used by the copy key.
func WithClipboard(write func(string) error) Option {
	return func(m *Model) {
		if write != nil {
			m.copyText = write
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(m *Model) {
		if now != nil {
			m.now = now
		}
	}
}

// WithHideCompleted starts the list with completed rows hidden once loaded.
func WithHideCompleted(hide bool) Option {
	return func(m *Model) {
		m.hideOnLoad = hide
	}
}

func WithDoubleClickWindow(d time.Duration) Option {
	return func(m *Model) {
		if d > 0 {
			m.doubleClick = d
		}
	}
}
