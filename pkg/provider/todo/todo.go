// Package todo defines the Client interface for to-do list backends.
//
// Implementations must be safe for concurrent use.
package todo

import (
	"context"
	"errors"
)

// ErrInvalidKey means the configured API token was rejected by the backend.
var ErrInvalidKey = errors.New("todo: invalid api token")

// Client is the abstraction over any to-do list backend.
type Client interface {
	// TasksToday returns the tasks due today or overdue, ordered by
	// priority, most urgent first.
	TasksToday(ctx context.Context) ([]string, error)

	// AddTask adds a task to the default list and returns its content as
	// stored by the backend.
	AddTask(ctx context.Context, content string) (string, error)
}
