// Package mock provides a test double for the extract.Extractor interface.
package mock

import (
	"sync"

	"github.com/aidekit/aide/pkg/extract"
)

// Extractor is a mock implementation of extract.Extractor.
type Extractor struct {
	mu sync.Mutex

	// Result is returned by Entities. EntitiesFunc, when set, takes
	// precedence.
	Result []extract.Entity

	// EntitiesFunc computes the result per call.
	EntitiesFunc func(text string) []extract.Entity

	// Calls records the texts passed to Entities, in order.
	Calls []string
}

var _ extract.Extractor = (*Extractor)(nil)

// Entities records the call and returns the configured entities.
func (e *Extractor) Entities(text string) []extract.Entity {
	e.mu.Lock()
	e.Calls = append(e.Calls, text)
	e.mu.Unlock()

	if e.EntitiesFunc != nil {
		return e.EntitiesFunc(text)
	}
	return e.Result
}

// Reset clears all recorded calls. Thread-safe.
func (e *Extractor) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Calls = nil
}
