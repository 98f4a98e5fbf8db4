// Package weather defines the Client interface for weather lookup backends.
//
// Failure modes the handler layer phrases differently are exposed as sentinel
// errors; anything else (connectivity, malformed responses) surfaces as a
// generic wrapped error.
//
// Implementations must be safe for concurrent use.
package weather

import (
	"context"
	"errors"
)

// Sentinel errors mapped from backend failure modes.
var (
	// ErrInvalidKey means the configured API key was rejected.
	ErrInvalidKey = errors.New("weather: invalid api key")

	// ErrLocationNotFound means the backend has no data for the location.
	ErrLocationNotFound = errors.New("weather: location not found")

	// ErrRateLimited means the API key has exhausted its quota.
	ErrRateLimited = errors.New("weather: rate limited")
)

// Report is a single weather observation or forecast.
type Report struct {
	// Location is the resolved location name, title-cased for display.
	Location string

	// Condition is a short description ("clear sky", "light rain").
	Condition string

	// Temp is the temperature in Units.
	Temp float64

	// Units is "C" or "F".
	Units string
}

// Client is the abstraction over any weather backend.
type Client interface {
	// Current returns the current weather for location.
	Current(ctx context.Context, location string) (Report, error)

	// Tomorrow returns the aggregate forecast for tomorrow at location.
	Tomorrow(ctx context.Context, location string) (Report, error)
}
