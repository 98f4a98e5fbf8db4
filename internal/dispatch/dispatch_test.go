package dispatch_test

import (
	"context"
	"strings"
	"testing"

	"github.com/aidekit/aide/internal/dispatch"
	"github.com/aidekit/aide/pkg/extract"
	"github.com/aidekit/aide/pkg/provider/todo"
	todomock "github.com/aidekit/aide/pkg/provider/todo/mock"
	"github.com/aidekit/aide/pkg/provider/weather"
	weathermock "github.com/aidekit/aide/pkg/provider/weather/mock"
)

// staticExtractor returns a fixed entity list.
type staticExtractor struct {
	entities []extract.Entity
}

func (s staticExtractor) Entities(string) []extract.Entity { return s.entities }

func TestRun_FallsBackToUnknown(t *testing.T) {
	t.Parallel()

	table := dispatch.Builtin(dispatch.Deps{})
	resp, exit := table.Run(context.Background(), "order_pizza", "large pepperoni")
	if resp != "Sorry, I don't know what you mean." {
		t.Errorf("response = %q", resp)
	}
	if exit {
		t.Error("unknown must not exit")
	}
}

func TestRun_GreetingAndGoodbye(t *testing.T) {
	t.Parallel()

	table := dispatch.Builtin(dispatch.Deps{})

	resp, exit := table.Run(context.Background(), "greeting", "hello")
	if resp != "Hello!" || exit {
		t.Errorf("greeting = (%q, %v)", resp, exit)
	}

	resp, exit = table.Run(context.Background(), "goodbye", "bye")
	if resp != "Goodbye!" || !exit {
		t.Errorf("goodbye = (%q, %v), want exit", resp, exit)
	}
}

func TestRegister_Duplicate(t *testing.T) {
	t.Parallel()

	table := dispatch.NewTable(dispatch.Entry{Handler: func(context.Context, string) string { return "?" }})
	entry := dispatch.Entry{Handler: func(context.Context, string) string { return "hi" }}
	if err := table.Register("greeting", entry); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := table.Register("greeting", entry); err == nil {
		t.Fatal("expected error for duplicate label")
	}
}

func TestCurrentWeather(t *testing.T) {
	t.Parallel()

	wc := &weathermock.Client{CurrentReport: weather.Report{
		Location: "London", Condition: "light rain", Temp: 11.5, Units: "C",
	}}
	table := dispatch.Builtin(dispatch.Deps{
		Weather: wc,
		Extractor: staticExtractor{entities: []extract.Entity{
			{Text: "London", Label: extract.LabelLocation},
		}},
	})

	resp, _ := table.Run(context.Background(), "current_weather", "weather in london")
	want := "The weather in London is 11.5°C and light rain."
	if resp != want {
		t.Errorf("response = %q, want %q", resp, want)
	}
	if len(wc.CurrentCalls) != 1 || wc.CurrentCalls[0] != "London" {
		t.Errorf("weather queried with %v, want [London]", wc.CurrentCalls)
	}
}

func TestCurrentWeather_HomeFallback(t *testing.T) {
	t.Parallel()

	wc := &weathermock.Client{CurrentReport: weather.Report{
		Location: "Oslo", Condition: "clear sky", Temp: 3, Units: "C",
	}}
	table := dispatch.Builtin(dispatch.Deps{
		Weather:      wc,
		Extractor:    staticExtractor{},
		HomeLocation: "oslo",
	})

	table.Run(context.Background(), "current_weather", "what's the weather like")
	if len(wc.CurrentCalls) != 1 || wc.CurrentCalls[0] != "oslo" {
		t.Errorf("weather queried with %v, want home fallback [oslo]", wc.CurrentCalls)
	}
}

func TestWeather_TypedErrorPhrasing(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want string
	}{
		{"invalid key", weather.ErrInvalidKey, "The configured weather API key is invalid."},
		{"not found", weather.ErrLocationNotFound, "Couldn't find weather data for that location"},
		{"rate limited", weather.ErrRateLimited, "used too many times"},
		{"connectivity", context.DeadlineExceeded, "Check your connection and try again."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			table := dispatch.Builtin(dispatch.Deps{
				Weather:   &weathermock.Client{CurrentErr: tc.err},
				Extractor: staticExtractor{},
			})
			resp, _ := table.Run(context.Background(), "current_weather", "weather please")
			if !strings.Contains(resp, tc.want) {
				t.Errorf("response = %q, want substring %q", resp, tc.want)
			}
		})
	}
}

func TestTomorrowWeather(t *testing.T) {
	t.Parallel()

	wc := &weathermock.Client{TomorrowReport: weather.Report{
		Location: "Berlin", Condition: "scattered clouds", Temp: 18, Units: "C",
	}}
	table := dispatch.Builtin(dispatch.Deps{
		Weather: wc,
		Extractor: staticExtractor{entities: []extract.Entity{
			{Text: "Berlin", Label: extract.LabelLocation},
		}},
	})

	resp, _ := table.Run(context.Background(), "tomorrow_weather", "weather in berlin tomorrow")
	want := "The weather tomorrow in Berlin will be 18°C and scattered clouds."
	if resp != want {
		t.Errorf("response = %q, want %q", resp, want)
	}
}

func TestShowTodoList(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		tasks []string
		err   error
		want  string
	}{
		{"no tasks", nil, nil, "You have no tasks today."},
		{"one task", []string{"buy milk"}, nil, `You have 1 task today. The task is "buy milk".`},
		{"many tasks", []string{"buy milk", "file taxes"}, nil, `You have 2 tasks today. The first one is "buy milk".`},
		{"bad token", nil, todo.ErrInvalidKey, "Check your API token is set up correctly."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			table := dispatch.Builtin(dispatch.Deps{
				Todo: &todomock.Client{Tasks: tc.tasks, TasksErr: tc.err},
			})
			resp, _ := table.Run(context.Background(), "show_todo_list", "")
			if !strings.Contains(resp, tc.want) {
				t.Errorf("response = %q, want substring %q", resp, tc.want)
			}
		})
	}
}

func TestAddTodo(t *testing.T) {
	t.Parallel()

	tm := &todomock.Client{}
	table := dispatch.Builtin(dispatch.Deps{Todo: tm})

	resp, _ := table.Run(context.Background(), "add_todo", "add buy milk to my todo list")
	if resp != `Added "buy milk" to your to-do list.` {
		t.Errorf("response = %q", resp)
	}
	if len(tm.AddCalls) != 1 || tm.AddCalls[0] != "buy milk" {
		t.Errorf("AddTask called with %v, want [buy milk]", tm.AddCalls)
	}
}

func TestAddTodo_PatternVariants(t *testing.T) {
	t.Parallel()

	cases := []struct {
		text string
		task string
	}{
		{"add the task water the plants to my todo", "water the plants"},
		{"add to my tasks list call the dentist", "call the dentist"},
		{"add eggs to the to-do list", "eggs"},
		{"add todo feed the cat to tasks", "feed the cat"},
	}
	for _, tc := range cases {
		tm := &todomock.Client{}
		table := dispatch.Builtin(dispatch.Deps{Todo: tm})
		table.Run(context.Background(), "add_todo", tc.text)
		if len(tm.AddCalls) != 1 || tm.AddCalls[0] != tc.task {
			t.Errorf("%q: AddTask called with %v, want [%q]", tc.text, tm.AddCalls, tc.task)
		}
	}
}

func TestAddTodo_NoMatch(t *testing.T) {
	t.Parallel()

	tm := &todomock.Client{}
	table := dispatch.Builtin(dispatch.Deps{Todo: tm})

	resp, _ := table.Run(context.Background(), "add_todo", "put bread on the shopping list")
	if resp != "Sorry, I can't understand which task you wanted to add." {
		t.Errorf("response = %q", resp)
	}
	if len(tm.AddCalls) != 0 {
		t.Errorf("AddTask must not be called, got %v", tm.AddCalls)
	}
}

func TestRequiresText(t *testing.T) {
	t.Parallel()

	// show_todo_list does not require text; the handler must not see it.
	var saw string
	table := dispatch.NewTable(dispatch.Entry{Handler: func(context.Context, string) string { return "?" }})
	err := table.Register("echo", dispatch.Entry{
		Handler: func(_ context.Context, text string) string {
			saw = text
			return "ok"
		},
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	table.Run(context.Background(), "echo", "secret words")
	if saw != "" {
		t.Errorf("handler saw %q despite RequiresText=false", saw)
	}
}
