package transcode

import (
	"errors"
	"fmt"
	"time"
)

// State is the lifecycle of a transcode task.
type State int

const (
	StatePending State = iota
	StateRunning
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// ErrInvalidTransition is returned when a task is moved outside
// Pending -> Running -> {Succeeded, Failed}.
var ErrInvalidTransition = errors.New("invalid transcode state transition")

// CanTransition reports whether moving from s to next is allowed.
func (s State) CanTransition(next State) bool {
	switch s {
	case StatePending:
		return next == StateRunning || next == StateFailed
	case StateRunning:
		return next == StateSucceeded || next == StateFailed
	default:
		return false
	}
}

// EventKind enumerates what a task reports to observers, in order: one
// EventStart, any number of EventStderr, then exactly one of EventEnd or
// EventError.
type EventKind int

const (
	EventStart EventKind = iota
	EventStderr
	EventEnd
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventStart:
		return "start"
	case EventStderr:
		return "stderr"
	case EventEnd:
		return "end"
	case EventError:
		return "error"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// Event is a single notification from a running task. Line holds the command
// line for EventStart and the diagnostic text for EventStderr.
type Event struct {
	Kind EventKind
	At   time.Time
	Line string
	Err  error
}

// Observer receives task events. Observers are called sequentially from the
// task goroutine and must not block for long.
type Observer func(Event)
