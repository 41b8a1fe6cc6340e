package transcode

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Task is a single asynchronous transcode. Its state only moves forward along
// Pending -> Running -> {Succeeded, Failed}.
type Task struct {
	mu        sync.Mutex
	state     State
	result    Result
	err       error
	observers []Observer
	done      chan struct{}
}

func newTask(observers []Observer) *Task {
	return &Task{
		state:     StatePending,
		observers: observers,
		done:      make(chan struct{}),
	}
}

// State returns the task's current state.
func (t *Task) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Done is closed once the task reaches a terminal state.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task finishes or ctx is cancelled. Cancelling ctx
// does not stop the underlying process.
func (t *Task) Wait(ctx context.Context) (Result, error) {
	select {
	case <-t.done:
		t.mu.Lock()
		defer t.mu.Unlock()
		return t.result, t.err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

func (t *Task) transition(next State) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.state.CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, t.state, next)
	}
	t.state = next
	return nil
}

func (t *Task) emit(evt Event) {
	if evt.At.IsZero() {
		evt.At = time.Now()
	}
	for _, observer := range t.observers {
		if observer != nil {
			observer(evt)
		}
	}
}

// finish records the outcome, emits the terminal event, then releases waiters.
func (t *Task) finish(state State, result Result, err error) {
	if transErr := t.transition(state); transErr != nil {
		return
	}
	t.mu.Lock()
	t.result = result
	t.err = err
	t.mu.Unlock()

	if state == StateSucceeded {
		t.emit(Event{Kind: EventEnd})
	} else {
		t.emit(Event{Kind: EventError, Err: err})
	}
	close(t.done)
}
