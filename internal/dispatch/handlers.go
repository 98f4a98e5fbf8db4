package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/aidekit/aide/internal/apps"
	"github.com/aidekit/aide/pkg/extract"
	"github.com/aidekit/aide/pkg/provider/todo"
	"github.com/aidekit/aide/pkg/provider/weather"
)

const degrees = "°"

// addTodoPatterns capture the task item from the many ways people phrase an
// add-to-list request. Ordered most specific first; the first match wins.
var addTodoPatterns = []*regexp.Regexp{
	regexp.MustCompile(`add the task (?P<task>.+) to my (todo|to-do|to do|task|tasks)`),
	regexp.MustCompile(`(add todo|add to-do|add to do|add task|add tasks) (?P<task>.+) to (todo|to-do|to do|task|tasks)`),
	regexp.MustCompile(`add to my (todo|to-do|to do|task|tasks) list (?P<task>.+)`),
	regexp.MustCompile(`add to my (todo|to-do|to do|task|tasks) (?P<task>.+)`),
	regexp.MustCompile(`add to (todo|to-do|to do|task|tasks) list (?P<task>.+)`),
	regexp.MustCompile(`add (?P<task>.+) to my (todo|to-do|to do|task|tasks) list`),
	regexp.MustCompile(`add (?P<task>.+) to the (todo|to-do|to do|task|tasks) list`),
	regexp.MustCompile(`add (?P<task>.+) to my (todo|to-do|to do|task|tasks)`),
	regexp.MustCompile(`add (?P<task>.+) to (todo|to-do|to do|task|tasks)`),
}

// Deps carries every collaborator the builtin handlers need. All fields are
// optional; handlers missing a collaborator respond with their connectivity
// phrasing instead of panicking.
type Deps struct {
	// Extractor finds the location entity in weather requests.
	Extractor extract.Extractor

	// Weather serves the weather intents.
	Weather weather.Client

	// Todo serves the to-do intents.
	Todo todo.Client

	// Apps serves the open/close intents.
	Apps *apps.Manager

	// HomeLocation is the fallback location when an utterance names none.
	HomeLocation string
}

// Builtin returns a Table with the full builtin handler set registered.
func Builtin(deps Deps, opts ...Option) *Table {
	t := NewTable(Entry{Handler: unknown}, opts...)

	register := func(label string, e Entry) {
		// Labels are compile-time constants here; a duplicate is a bug.
		if err := t.Register(label, e); err != nil {
			panic(err)
		}
	}

	register("greeting", Entry{Handler: greeting})
	register("goodbye", Entry{Handler: goodbye, ShouldExit: true})
	register("open_app", Entry{Handler: deps.openApp, RequiresText: true})
	register("close_app", Entry{Handler: deps.closeApp, RequiresText: true})
	register("current_weather", Entry{Handler: deps.currentWeather, RequiresText: true})
	register("tomorrow_weather", Entry{Handler: deps.tomorrowWeather, RequiresText: true})
	register("show_todo_list", Entry{Handler: deps.showTodoList})
	register("add_todo", Entry{Handler: deps.addTodo, RequiresText: true})

	return t
}

func unknown(context.Context, string) string {
	return "Sorry, I don't know what you mean."
}

func greeting(context.Context, string) string {
	return "Hello!"
}

func goodbye(context.Context, string) string {
	return "Goodbye!"
}

// appName strips the leading verb from an open/close utterance.
func appName(text string) string {
	_, rest, _ := strings.Cut(strings.TrimSpace(text), " ")
	return rest
}

func (d Deps) openApp(ctx context.Context, text string) string {
	name := appName(text)
	if d.Apps == nil {
		return "Sorry, I don't know how to open apps here."
	}

	app, err := d.Apps.Open(ctx, name)
	if errors.Is(err, apps.ErrUnknownApp) {
		return fmt.Sprintf("Sorry, I can't open %q. Is it installed?", name)
	}
	if err != nil {
		slog.Warn("dispatch: open app failed", "app", name, "error", err)
		return fmt.Sprintf("Sorry, I am having trouble opening %q.", name)
	}
	return fmt.Sprintf("Opening %q...", app.Name)
}

func (d Deps) closeApp(ctx context.Context, text string) string {
	name := appName(text)
	if d.Apps == nil {
		return "Sorry, I don't know how to close apps here."
	}

	app, err := d.Apps.Close(ctx, name)
	switch {
	case err == nil:
		return fmt.Sprintf("Closing %q...", app.Name)
	case errors.Is(err, apps.ErrUnknownApp):
		return fmt.Sprintf("Sorry, I can't close %q. Is it installed?", name)
	case errors.Is(err, apps.ErrNoProcess):
		return fmt.Sprintf("I was unable to find the executable for %q. Is it defined in the app catalog?", app.Name)
	case errors.Is(err, apps.ErrNotRunning):
		return fmt.Sprintf("Sorry, I can't close %q. Is it running?", app.Name)
	default:
		slog.Warn("dispatch: close app failed", "app", name, "error", err)
		return fmt.Sprintf("Sorry, I am having trouble closing %q.", name)
	}
}

// location picks the utterance's GPE entity, falling back to the configured
// home location.
func (d Deps) location(text string) string {
	if d.Extractor != nil {
		if loc, ok := extract.First(d.Extractor.Entities(text), extract.LabelLocation); ok {
			return loc
		}
	}
	return d.HomeLocation
}

func (d Deps) currentWeather(ctx context.Context, text string) string {
	location := d.location(text)
	if d.Weather == nil {
		return weatherFailure(errors.New("no weather client configured"), location)
	}

	report, err := d.Weather.Current(ctx, location)
	if err != nil {
		return weatherFailure(err, location)
	}
	return fmt.Sprintf("The weather in %s is %g%s%s and %s.",
		report.Location, report.Temp, degrees, report.Units, report.Condition)
}

func (d Deps) tomorrowWeather(ctx context.Context, text string) string {
	location := d.location(text)
	if d.Weather == nil {
		return weatherFailure(errors.New("no weather client configured"), location)
	}

	report, err := d.Weather.Tomorrow(ctx, location)
	if err != nil {
		return weatherFailure(err, location)
	}
	return fmt.Sprintf("The weather tomorrow in %s will be %g%s%s and %s.",
		report.Location, report.Temp, degrees, report.Units, report.Condition)
}

// weatherFailure phrases the typed weather errors for the user.
func weatherFailure(err error, location string) string {
	switch {
	case errors.Is(err, weather.ErrInvalidKey):
		return "The configured weather API key is invalid. Please check the weather provider configuration."
	case errors.Is(err, weather.ErrLocationNotFound):
		return fmt.Sprintf("Couldn't find weather data for that location (%s). Check the spelling and try again.", location)
	case errors.Is(err, weather.ErrRateLimited):
		return "The configured weather API key has been used too many times. Please wait and try again."
	default:
		slog.Warn("dispatch: weather lookup failed", "location", location, "error", err)
		return "Sorry, I couldn't get the weather for you. Check your connection and try again."
	}
}

func (d Deps) showTodoList(ctx context.Context, _ string) string {
	if d.Todo == nil {
		return "Sorry, I couldn't get your tasks. Check your connection and try again."
	}

	tasks, err := d.Todo.TasksToday(ctx)
	if err != nil {
		slog.Warn("dispatch: task list failed", "error", err)
		if errors.Is(err, todo.ErrInvalidKey) {
			return "Sorry, I couldn't get your tasks. Check your API token is set up correctly."
		}
		return "Sorry, I couldn't get your tasks. Check your connection and try again."
	}

	switch len(tasks) {
	case 0:
		return "You have no tasks today."
	case 1:
		return fmt.Sprintf("You have 1 task today. The task is %q.", tasks[0])
	default:
		return fmt.Sprintf("You have %d tasks today. The first one is %q.", len(tasks), tasks[0])
	}
}

func (d Deps) addTodo(ctx context.Context, text string) string {
	task, ok := findTask(text)
	if !ok {
		return "Sorry, I can't understand which task you wanted to add."
	}
	if d.Todo == nil {
		return "Sorry, I couldn't add your task. Check your connection and try again."
	}

	content, err := d.Todo.AddTask(ctx, task)
	if err != nil {
		slog.Warn("dispatch: add task failed", "task", task, "error", err)
		if errors.Is(err, todo.ErrInvalidKey) {
			return "Sorry, I couldn't add your task. Check your API token is set up correctly."
		}
		return "Sorry, I couldn't add your task. Check your connection and try again."
	}
	return fmt.Sprintf("Added %q to your to-do list.", content)
}

// findTask extracts the task item from an add-to-list utterance. A leading
// "add" inside the captured group is dropped so nested phrasings ("add to my
// list add eggs") do not leak the verb.
func findTask(text string) (string, bool) {
	for _, p := range addTodoPatterns {
		m := p.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		task := m[p.SubexpIndex("task")]
		task = strings.TrimSpace(strings.TrimPrefix(task, "add"))
		if task == "" {
			continue
		}
		return task, true
	}
	return "", false
}
