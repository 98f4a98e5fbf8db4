// Package dispatch maps intent labels to handler functions.
//
// A [Table] is populated at startup via [Table.Register] and consulted once
// per classified utterance. Every table starts with the "unknown" entry
// installed, so dispatch always has a safe landing spot: labels without a
// registered entry fall back to it.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aidekit/aide/internal/intent"
)

// Handler produces the assistant's spoken response for one intent. text is
// the user's utterance when the entry requires it, "" otherwise. Handlers
// phrase their own failures; they never return errors.
type Handler func(ctx context.Context, text string) string

// Entry describes how one intent is executed.
type Entry struct {
	// Handler produces the response.
	Handler Handler

	// ShouldExit stops the assistant loop after the response.
	ShouldExit bool

	// RequiresText passes the utterance to the handler.
	RequiresText bool
}

// Recorder receives handler timing for each dispatch. Implemented by the
// observe metrics layer; a nil recorder disables recording.
type Recorder interface {
	RecordHandler(ctx context.Context, label string, elapsed time.Duration)
}

// Option is a functional option for configuring a [Table].
type Option func(*Table)

// WithRecorder attaches a handler timing recorder.
func WithRecorder(r Recorder) Option {
	return func(t *Table) {
		t.recorder = r
	}
}

// Table is the intent dispatch table. Register all entries before the first
// Run; afterwards the table is read-only and safe for concurrent use.
type Table struct {
	entries  map[string]Entry
	recorder Recorder
}

// NewTable creates a Table with the given "unknown" fallback entry already
// registered.
func NewTable(unknown Entry, opts ...Option) *Table {
	t := &Table{entries: map[string]Entry{intent.Unknown: unknown}}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Register adds an entry under label. Registering a label twice is a wiring
// fault and fails; the "unknown" entry may be replaced explicitly via
// NewTable only.
func (t *Table) Register(label string, e Entry) error {
	if label == "" {
		return fmt.Errorf("dispatch: label must not be empty")
	}
	if e.Handler == nil {
		return fmt.Errorf("dispatch: handler for %q must not be nil", label)
	}
	if _, dup := t.entries[label]; dup {
		return fmt.Errorf("dispatch: label %q is already registered", label)
	}
	t.entries[label] = e
	return nil
}

// Labels returns every registered label, including "unknown".
func (t *Table) Labels() []string {
	labels := make([]string, 0, len(t.entries))
	for l := range t.entries {
		labels = append(labels, l)
	}
	return labels
}

// Run executes the entry for label, falling back to the "unknown" entry when
// the label has none. It returns the handler's response and whether the
// assistant should exit afterwards.
func (t *Table) Run(ctx context.Context, label, text string) (response string, shouldExit bool) {
	entry, ok := t.entries[label]
	if !ok {
		slog.Debug("dispatch: no entry for label, running unknown", "label", label)
		label = intent.Unknown
		entry = t.entries[label]
	}

	if !entry.RequiresText {
		text = ""
	}

	start := time.Now()
	response = entry.Handler(ctx, text)
	if t.recorder != nil {
		t.recorder.RecordHandler(ctx, label, time.Since(start))
	}
	return response, entry.ShouldExit
}
