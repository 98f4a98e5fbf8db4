package gazetteer_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aidekit/aide/internal/gazetteer"
)

// writeFile creates a file under dir with the given name and content.
func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoadEntities(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "location.entity", "london\nparis\n\nnew york\n")
	writeFile(t, dir, "name.entity", "Alice\nBob\n")
	writeFile(t, dir, "notes.txt", "ignored — wrong extension\n")

	gaz, err := gazetteer.LoadEntities(dir)
	if err != nil {
		t.Fatalf("LoadEntities: %v", err)
	}

	if len(gaz) != 2 {
		t.Fatalf("expected 2 entities, got %d: %v", len(gaz), gaz)
	}
	wantLocations := []string{"london", "paris", "new york"}
	got := gaz["location"]
	if len(got) != len(wantLocations) {
		t.Fatalf("location surface forms: expected %v, got %v", wantLocations, got)
	}
	for i, w := range wantLocations {
		if got[i] != w {
			t.Errorf("location[%d]: expected %q, got %q", i, w, got[i])
		}
	}
}

func TestLoadEntities_SkipsEmptyFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "empty.entity", "\n  \n")
	writeFile(t, dir, "name.entity", "Alice\n")

	gaz, err := gazetteer.LoadEntities(dir)
	if err != nil {
		t.Fatalf("LoadEntities: %v", err)
	}
	if _, ok := gaz["empty"]; ok {
		t.Error("empty gazetteer file should be skipped, not loaded")
	}
	if _, ok := gaz["name"]; !ok {
		t.Error("non-empty gazetteer file missing from result")
	}
}

func TestLoadEntities_EmptyDir(t *testing.T) {
	t.Parallel()

	_, err := gazetteer.LoadEntities(t.TempDir())
	if !errors.Is(err, gazetteer.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLoadEntities_OnlyEmptyFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "a.entity", "")
	writeFile(t, dir, "b.entity", "\n\n")

	_, err := gazetteer.LoadEntities(dir)
	if !errors.Is(err, gazetteer.ErrNotFound) {
		t.Fatalf("expected ErrNotFound when all files are empty, got %v", err)
	}
}

func TestLoadEntities_MissingDir(t *testing.T) {
	t.Parallel()

	_, err := gazetteer.LoadEntities(filepath.Join(t.TempDir(), "nope"))
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestLoadIntents(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "greeting.intent", "hello {name}\nhi there\n")
	writeFile(t, dir, "goodbye.intent", "bye {name}\n")
	writeFile(t, dir, "location.entity", "london\n")

	ts, err := gazetteer.LoadIntents(dir)
	if err != nil {
		t.Fatalf("LoadIntents: %v", err)
	}
	if len(ts) != 2 {
		t.Fatalf("expected 2 intents, got %d: %v", len(ts), ts)
	}
	if len(ts["greeting"]) != 2 || ts["greeting"][0] != "hello {name}" {
		t.Errorf("greeting templates: got %v", ts["greeting"])
	}
}

func TestLoadIntents_EmptyDir(t *testing.T) {
	t.Parallel()

	_, err := gazetteer.LoadIntents(t.TempDir())
	if !errors.Is(err, gazetteer.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
