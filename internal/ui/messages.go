package ui

import (
	"binfind/internal/eventbus"
	"binfind/internal/progress"
)

// EventMsg wraps a domain event for the UI
type EventMsg struct {
	Event eventbus.DomainEvent
}

// mergeTickMsg asks for one merge of generation gen
type mergeTickMsg struct {
	gen uint64
}

// progressMsg is sent by producer goroutines when the progress bar of gen should repaint
type progressMsg struct {
	gen  uint64
	snap progress.Snapshot
}

// spinnerMsg drives the title spinner while a search runs
type spinnerMsg struct{}

// pagerMsg contains the result of a pager command
type pagerMsg struct {
	what string
	err  error
}

// clearStatusMsg clears the status message once it timed out
type clearStatusMsg struct {
	seq int
}

// pauseRenderingMsg signals to pause Bubble Tea rendering
type pauseRenderingMsg struct{}

// resumeRenderingMsg signals to resume Bubble Tea rendering
type resumeRenderingMsg struct{}
