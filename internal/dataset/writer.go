package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// header is the first row of every serialized dataset.
var header = []string{"phrase", "intent"}

// ErrUnsupportedFormat is returned by [Save] for any filename whose extension
// is not a supported serialization format.
var ErrUnsupportedFormat = errors.New("dataset: unsupported output format")

// Save serializes ds to dir/filename, creating dir (including parents) if it
// does not exist. The serialization is chosen strictly from the filename's
// extension; only ".csv" is supported. Unsupported extensions return
// [ErrUnsupportedFormat] naming the rejected extension, before any file or
// directory is created.
//
// The output has a "phrase,intent" header followed by one row per example,
// intents in sorted key order, examples in stored order. Field quoting is
// handled entirely by the CSV writer; values are written verbatim.
func Save(ds Dataset, dir, filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".csv" {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("dataset: create dir %q: %w", dir, err)
	}

	path := filepath.Join(dir, filename)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("dataset: create %q: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("dataset: write header: %w", err)
	}
	for _, ex := range ds.Examples() {
		if err := w.Write([]string{ex.Phrase, ex.Intent}); err != nil {
			return fmt.Errorf("dataset: write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("dataset: flush %q: %w", path, err)
	}
	return nil
}
