// Package mock provides a test double for the weather.Client interface.
package mock

import (
	"context"
	"sync"

	"github.com/aidekit/aide/pkg/provider/weather"
)

// Client is a mock implementation of weather.Client.
type Client struct {
	mu sync.Mutex

	// CurrentReport and CurrentErr are returned by Current.
	CurrentReport weather.Report
	CurrentErr    error

	// TomorrowReport and TomorrowErr are returned by Tomorrow.
	TomorrowReport weather.Report
	TomorrowErr    error

	// CurrentCalls and TomorrowCalls record the locations passed in, in order.
	CurrentCalls  []string
	TomorrowCalls []string
}

var _ weather.Client = (*Client)(nil)

// Current records the call and returns the configured report and error.
func (c *Client) Current(_ context.Context, location string) (weather.Report, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.CurrentCalls = append(c.CurrentCalls, location)
	return c.CurrentReport, c.CurrentErr
}

// Tomorrow records the call and returns the configured report and error.
func (c *Client) Tomorrow(_ context.Context, location string) (weather.Report, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.TomorrowCalls = append(c.TomorrowCalls, location)
	return c.TomorrowReport, c.TomorrowErr
}

// Reset clears all recorded calls. Thread-safe.
func (c *Client) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.CurrentCalls = nil
	c.TomorrowCalls = nil
}
