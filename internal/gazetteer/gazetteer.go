// Package gazetteer loads the flat-file inputs of the training-data pipeline:
// entity gazetteers (surface-form lists) and intent template sets.
//
// Both loaders scan a directory non-recursively for files with a fixed
// extension (".entity" or ".intent"), use the file's base name as the map key,
// and the file's non-empty lines as the value list. Files with zero usable
// lines are skipped with a warning; a directory that yields an empty map is a
// fatal [ErrNotFound] because there is nothing to generate from.
//
// Loaded maps are never mutated after load.
package gazetteer

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// EntityExt is the file extension for entity gazetteer files.
const EntityExt = ".entity"

// IntentExt is the file extension for intent template files.
const IntentExt = ".intent"

// ErrNotFound is returned when a directory scan yields no usable files.
var ErrNotFound = errors.New("gazetteer: no usable files found")

// Gazetteer maps an entity name to its ordered list of surface forms.
type Gazetteer map[string][]string

// TemplateSet maps an intent label to its ordered list of utterance templates.
// A template is free text with zero or more {entity_name} placeholders.
type TemplateSet map[string][]string

// LoadEntities scans dir for .entity files and returns the resulting
// [Gazetteer]. Returns [ErrNotFound] (wrapped with the directory name) when no
// file contributes at least one surface form.
func LoadEntities(dir string) (Gazetteer, error) {
	m, err := loadDir(dir, EntityExt)
	if err != nil {
		return nil, err
	}
	return Gazetteer(m), nil
}

// LoadIntents scans dir for .intent files and returns the resulting
// [TemplateSet]. Returns [ErrNotFound] (wrapped with the directory name) when
// no file contributes at least one template.
func LoadIntents(dir string) (TemplateSet, error) {
	m, err := loadDir(dir, IntentExt)
	if err != nil {
		return nil, err
	}
	return TemplateSet(m), nil
}

// loadDir scans dir (non-recursively) for files with the given extension and
// returns base-name → non-empty-lines. Empty files are warned and skipped.
func loadDir(dir, ext string) (map[string][]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("gazetteer: read dir %q: %w", dir, err)
	}

	out := make(map[string][]string)
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ext {
			continue
		}

		path := filepath.Join(dir, e.Name())
		lines, err := readLines(path)
		if err != nil {
			return nil, fmt.Errorf("gazetteer: read %q: %w", path, err)
		}
		if len(lines) == 0 {
			slog.Warn("gazetteer: file has no usable lines, skipping", "path", path)
			continue
		}

		name := strings.TrimSuffix(e.Name(), ext)
		out[name] = lines
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %q (%s)", ErrNotFound, dir, ext)
	}
	return out, nil
}

// readLines returns the trimmed, non-empty lines of the file at path.
func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
