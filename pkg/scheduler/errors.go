package scheduler

import "errors"

var (
	// ErrAlreadyRunning is returned by Run when the scheduler is running.
	ErrAlreadyRunning = errors.New("scheduler already running")
	// ErrNoTicks is returned by Run when no tick stream is given.
	ErrNoTicks = errors.New("no tick streams")
)
