package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// Load reads a dataset previously written by [Save] from path. The header row
// is validated; rows are grouped back into per-intent example lists in file
// order. Used by trainable scorers and round-trip tests.
func Load(path string) (Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: open %q: %w", path, err)
	}
	defer f.Close()

	return LoadFromReader(f)
}

// LoadFromReader reads a serialized dataset from r.
func LoadFromReader(r io.Reader) (Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2

	first, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("dataset: read header: %w", err)
	}
	if first[0] != header[0] || first[1] != header[1] {
		return nil, fmt.Errorf("dataset: unexpected header %v, want %v", first, header)
	}

	ds := make(Dataset)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("dataset: read row: %w", err)
		}
		phrase, intent := rec[0], rec[1]
		ds[intent] = append(ds[intent], phrase)
	}
	return ds, nil
}
