// Package mock provides a test double for the todo.Client interface.
package mock

import (
	"context"
	"sync"

	"github.com/aidekit/aide/pkg/provider/todo"
)

// Client is a mock implementation of todo.Client.
type Client struct {
	mu sync.Mutex

	// Tasks and TasksErr are returned by TasksToday.
	Tasks    []string
	TasksErr error

	// AddResult and AddErr are returned by AddTask. If AddResult is empty
	// the submitted content is echoed back.
	AddResult string
	AddErr    error

	// TasksCallCount counts TasksToday calls.
	TasksCallCount int

	// AddCalls records the content passed to AddTask, in order.
	AddCalls []string
}

var _ todo.Client = (*Client)(nil)

// TasksToday records the call and returns the configured tasks and error.
func (c *Client) TasksToday(_ context.Context) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.TasksCallCount++
	return c.Tasks, c.TasksErr
}

// AddTask records the call and returns the configured result and error.
func (c *Client) AddTask(_ context.Context, content string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.AddCalls = append(c.AddCalls, content)
	if c.AddErr != nil {
		return "", c.AddErr
	}
	if c.AddResult != "" {
		return c.AddResult, nil
	}
	return content, nil
}

// Reset clears all recorded calls. Thread-safe.
func (c *Client) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.TasksCallCount = 0
	c.AddCalls = nil
}
