// Package apps manages launching and closing desktop applications from a
// YAML catalog.
//
// The catalog lists every application the assistant may control, with the
// launch command and the process name used to close it. Spoken names are
// resolved against catalog names and aliases, case-insensitively with a
// Jaro-Winkler fuzzy fallback, so "fire fox" still finds "Firefox".
package apps

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/antzucaro/matchr"
	"gopkg.in/yaml.v3"
)

const defaultFuzzyThreshold = 0.84

// Sentinel errors for app resolution and control.
var (
	// ErrUnknownApp means no catalog entry matched the spoken name.
	ErrUnknownApp = errors.New("apps: unknown application")

	// ErrNoProcess means the catalog entry has no process name to close.
	ErrNoProcess = errors.New("apps: no process name configured")

	// ErrNotRunning means the close command found no matching process.
	ErrNotRunning = errors.New("apps: application is not running")
)

// App is one catalog entry.
type App struct {
	// Name is the canonical application name.
	Name string `yaml:"name"`

	// Aliases are alternative spoken names.
	Aliases []string `yaml:"aliases"`

	// Command is the executable to launch, resolved via PATH.
	Command string `yaml:"command"`

	// Args are passed to Command on launch.
	Args []string `yaml:"args"`

	// Process is the process name handed to pkill on close. Empty means
	// the app cannot be closed by the assistant.
	Process string `yaml:"process"`
}

// Catalog is the root of the apps YAML file.
type Catalog struct {
	Apps []App `yaml:"apps"`
}

// LoadCatalog reads the YAML catalog file at path.
func LoadCatalog(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("apps: open %q: %w", path, err)
	}
	defer f.Close()

	cat, err := LoadCatalogFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("apps: parse %q: %w", path, err)
	}
	return cat, nil
}

// LoadCatalogFromReader decodes a YAML catalog from r with strict fields.
func LoadCatalogFromReader(r io.Reader) (*Catalog, error) {
	cat := &Catalog{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cat); err != nil {
		return nil, fmt.Errorf("apps: decode yaml: %w", err)
	}

	var errs []error
	for i, a := range cat.Apps {
		if a.Name == "" {
			errs = append(errs, fmt.Errorf("apps[%d].name is required", i))
		}
		if a.Command == "" {
			errs = append(errs, fmt.Errorf("apps[%d].command is required", i))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cat, nil
}

// runner abstracts command execution so tests can intercept it.
type runner interface {
	// Start launches name with args without waiting for it to exit.
	Start(ctx context.Context, name string, args ...string) error

	// Run executes name with args and returns the process exit code.
	Run(ctx context.Context, name string, args ...string) (int, error)
}

// execRunner is the production runner backed by os/exec.
type execRunner struct{}

func (execRunner) Start(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Start()
}

func (execRunner) Run(ctx context.Context, name string, args ...string) (int, error) {
	err := exec.CommandContext(ctx, name, args...).Run()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, err
}

// Option is a functional option for configuring a [Manager].
type Option func(*Manager)

// WithFuzzyThreshold sets the minimum Jaro-Winkler score for a fuzzy name
// match. Default: 0.84.
func WithFuzzyThreshold(threshold float64) Option {
	return func(m *Manager) {
		m.fuzzyThreshold = threshold
	}
}

// withRunner replaces the command runner. Used in tests.
func withRunner(r runner) Option {
	return func(m *Manager) {
		m.run = r
	}
}

// Manager opens and closes catalog applications. Read-only after
// construction and safe for concurrent use.
type Manager struct {
	catalog        *Catalog
	run            runner
	fuzzyThreshold float64
}

// NewManager creates a Manager over the given catalog.
func NewManager(catalog *Catalog, opts ...Option) *Manager {
	m := &Manager{
		catalog:        catalog,
		run:            execRunner{},
		fuzzyThreshold: defaultFuzzyThreshold,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Resolve finds the catalog entry for a spoken name. Exact name and alias
// matches (case-insensitive) win; otherwise the best Jaro-Winkler match above
// the threshold is taken.
func (m *Manager) Resolve(name string) (App, error) {
	spoken := strings.ToLower(strings.TrimSpace(name))
	if spoken == "" {
		return App{}, fmt.Errorf("%w: empty name", ErrUnknownApp)
	}

	var (
		best    App
		bestSim float64
		found   bool
	)
	for _, a := range m.catalog.Apps {
		for _, candidate := range append([]string{a.Name}, a.Aliases...) {
			lower := strings.ToLower(candidate)
			if lower == spoken {
				return a, nil
			}
			sim := matchr.JaroWinkler(spoken, lower, false)
			if sim >= m.fuzzyThreshold && (!found || sim > bestSim) {
				best, bestSim, found = a, sim, true
			}
		}
	}
	if !found {
		return App{}, fmt.Errorf("%w: %q", ErrUnknownApp, name)
	}
	return best, nil
}

// Open resolves name and launches the application without waiting for it.
func (m *Manager) Open(ctx context.Context, name string) (App, error) {
	app, err := m.Resolve(name)
	if err != nil {
		return App{}, err
	}
	if err := m.run.Start(ctx, app.Command, app.Args...); err != nil {
		return app, fmt.Errorf("apps: start %q: %w", app.Name, err)
	}
	return app, nil
}

// Close resolves name and terminates the application via pkill on its
// configured process name.
func (m *Manager) Close(ctx context.Context, name string) (App, error) {
	app, err := m.Resolve(name)
	if err != nil {
		return App{}, err
	}
	if app.Process == "" {
		return app, fmt.Errorf("%w: %q", ErrNoProcess, app.Name)
	}

	code, err := m.run.Run(ctx, "pkill", "-x", app.Process)
	if err != nil {
		return app, fmt.Errorf("apps: close %q: %w", app.Name, err)
	}
	switch code {
	case 0:
		return app, nil
	case 1:
		return app, fmt.Errorf("%w: %q", ErrNotRunning, app.Name)
	default:
		return app, fmt.Errorf("apps: close %q: pkill exited with %d", app.Name, code)
	}
}
