// Package assistant runs the interaction loop: read an utterance, classify
// it, execute the handler, and broadcast the response.
//
// Input and Output are small interfaces so the loop is agnostic to where
// utterances come from; terminal implementations live in this package, and
// tests drive the loop with in-memory fakes.
package assistant

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/aidekit/aide/internal/dispatch"
	"github.com/aidekit/aide/internal/intent"
)

// Input is a source of user utterances. Read blocks until the next utterance
// is available, ctx is cancelled, or the source is exhausted ([io.EOF]).
type Input interface {
	Read(ctx context.Context) (string, error)
}

// Output receives assistant responses.
type Output interface {
	Write(ctx context.Context, text string) error
}

// Assistant owns the read-classify-dispatch-respond loop.
type Assistant struct {
	engine  *intent.Engine
	table   *dispatch.Table
	input   Input
	outputs []Output
}

// New wires the loop together. Engine, table, input, and at least one output
// are required.
func New(engine *intent.Engine, table *dispatch.Table, in Input, outs ...Output) (*Assistant, error) {
	if engine == nil {
		return nil, errors.New("assistant: engine must not be nil")
	}
	if table == nil {
		return nil, errors.New("assistant: dispatch table must not be nil")
	}
	if in == nil {
		return nil, errors.New("assistant: input must not be nil")
	}
	if len(outs) == 0 {
		return nil, errors.New("assistant: at least one output is required")
	}
	return &Assistant{engine: engine, table: table, input: in, outputs: outs}, nil
}

// Run executes the loop until the handler for a classified intent requests
// exit, the input is exhausted, or ctx is cancelled. Classification failures
// do not stop the loop: the utterance degrades to the unknown response.
func (a *Assistant) Run(ctx context.Context) error {
	for {
		text, err := a.input.Read(ctx)
		switch {
		case errors.Is(err, io.EOF):
			slog.Info("assistant: input exhausted")
			return nil
		case err != nil:
			return fmt.Errorf("assistant: read input: %w", err)
		}

		label, err := a.engine.Predict(ctx, text)
		if err != nil {
			slog.Error("assistant: prediction failed", "error", err)
			label = intent.Unknown
		}

		response, shouldExit := a.table.Run(ctx, label, text)
		if err := a.broadcast(ctx, response); err != nil {
			return err
		}
		if shouldExit {
			slog.Info("assistant: exit requested", "label", label)
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
}

// broadcast writes response to every output. The first write failure aborts
// the loop; a response the user cannot see is a dead assistant.
func (a *Assistant) broadcast(ctx context.Context, response string) error {
	for _, out := range a.outputs {
		if err := out.Write(ctx, response); err != nil {
			return fmt.Errorf("assistant: write response: %w", err)
		}
	}
	return nil
}

// TerminalInput reads newline-delimited utterances from r, writing a prompt
// to w before each read. A single pump goroutine owns the scanner so Read can
// honour context cancellation.
type TerminalInput struct {
	w      io.Writer
	prompt string

	once  sync.Once
	lines chan string

	scanner *bufio.Scanner
}

// NewTerminalInput creates a TerminalInput over r that prompts on w.
func NewTerminalInput(r io.Reader, w io.Writer, prompt string) *TerminalInput {
	return &TerminalInput{
		w:       w,
		prompt:  prompt,
		lines:   make(chan string),
		scanner: bufio.NewScanner(r),
	}
}

// Read returns the next line. Returns [io.EOF] when the underlying reader is
// exhausted and ctx.Err() when the context is cancelled first.
func (t *TerminalInput) Read(ctx context.Context) (string, error) {
	t.once.Do(func() {
		go func() {
			defer close(t.lines)
			for t.scanner.Scan() {
				t.lines <- t.scanner.Text()
			}
		}()
	})

	if t.prompt != "" {
		fmt.Fprint(t.w, t.prompt)
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-t.lines:
		if !ok {
			return "", io.EOF
		}
		return line, nil
	}
}

// TerminalOutput writes each response as its own line on w.
type TerminalOutput struct {
	mu sync.Mutex
	w  io.Writer
}

// NewTerminalOutput creates a TerminalOutput over w.
func NewTerminalOutput(w io.Writer) *TerminalOutput {
	return &TerminalOutput{w: w}
}

// Write prints text followed by a newline.
func (t *TerminalOutput) Write(_ context.Context, text string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := fmt.Fprintln(t.w, text)
	return err
}

var (
	_ Input  = (*TerminalInput)(nil)
	_ Output = (*TerminalOutput)(nil)
)
