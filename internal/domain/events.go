package domain

import "time"

// DomainEvent is the base interface for all lifecycle events
type DomainEvent interface {
	Type() EventType
}

// EventType identifies the type of event
type EventType string

// Event type constants
const (
	EventSearchStarted   EventType = "search.started"
	EventSearchCompleted EventType = "search.completed"
	EventSearchCancelled EventType = "search.cancelled"
	EventResultsMerged   EventType = "results.merged"
	EventError           EventType = "error"
	EventConfigLoaded    EventType = "config.loaded"
	EventConfigSaved     EventType = "config.saved"
	EventConfigChanged   EventType = "config.changed"
	EventThemeChanged    EventType = "theme.changed"
)

// SearchStartedEvent is published when a new search generation begins
type SearchStartedEvent struct {
	Generation uint64
	Params     SearchParameters
	StartedAt  time.Time
}

func (e SearchStartedEvent) Type() EventType { return EventSearchStarted }

// SearchCompletedEvent is published once the producer of a generation has returned
type SearchCompletedEvent struct {
	Generation uint64
	Matches    int64
	Cancelled  bool
	Err        error
	Duration   time.Duration
}

func (e SearchCompletedEvent) Type() EventType { return EventSearchCompleted }

// SearchCancelledEvent is published when the user requests cancellation
type SearchCancelledEvent struct {
	Generation uint64
}

func (e SearchCancelledEvent) Type() EventType { return EventSearchCancelled }

// ResultsMergedEvent is published for merge ticks that changed the store.
// High frequency: the bus does not log it.
type ResultsMergedEvent struct {
	Generation uint64
	From, To   int
	Reset      bool
}

func (e ResultsMergedEvent) Type() EventType { return EventResultsMerged }

// ErrorEvent is published when an error occurs
type ErrorEvent struct {
	Source  string
	Message string
	Err     error
}

func (e ErrorEvent) Type() EventType { return EventError }

// ConfigLoadedEvent is published when configuration is loaded
type ConfigLoadedEvent struct {
	Path string
}

func (e ConfigLoadedEvent) Type() EventType { return EventConfigLoaded }

// ConfigSavedEvent is published when configuration is saved
type ConfigSavedEvent struct {
	Path string
}

func (e ConfigSavedEvent) Type() EventType { return EventConfigSaved }

// ConfigChangedEvent is published when a configuration value changes at runtime
type ConfigChangedEvent struct {
	Key   string
	Value string
}

func (e ConfigChangedEvent) Type() EventType { return EventConfigChanged }

// ThemeChangedEvent is published when the user switches the colour theme
type ThemeChangedEvent struct {
	Theme string
}

func (e ThemeChangedEvent) Type() EventType { return EventThemeChanged }
