// Package jsonxas reads XAS spectra stored as JSON: the simulated VASP
// collection, where each property is an object keyed by spectrum index,
// and the ELI measurement files, lists of metadata objects followed by one
// columnar spectrum object.
package jsonxas

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
)

var (
	// ErrNoSpectrum is returned for a spectrum file with no Energy object.
	ErrNoSpectrum = errors.New("no spectrum object")

	// ErrMissingField is wrapped when a required metadata field is absent.
	ErrMissingField = errors.New("missing field")
)

// Spectrum is one table read from a JSON file.
type Spectrum struct {
	Columns []string
	Rows    [][]float64
	Meta    map[string]interface{}
	Specs   []string
}

func readFile(path string, read func(r io.Reader, fname string) error) (rerr error) {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); rerr == nil {
			rerr = cerr
		}
	}()
	return read(f, filepath.Base(path))
}

// object is a JSON object decoded with its key order preserved.
type object struct {
	keys   []string
	values map[string]json.RawMessage
}

func (o *object) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("want an object, got %v", tok)
	}
	o.keys = o.keys[:0]
	o.values = make(map[string]json.RawMessage)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key := tok.(string)
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("%q: %w", key, err)
		}
		if _, dup := o.values[key]; !dup {
			o.keys = append(o.keys, key)
		}
		o.values[key] = v
	}
	_, err = dec.Token()
	return err
}

func (o *object) has(key string) bool {
	_, ok := o.values[key]
	return ok
}

// columnar transposes an object of equal length numeric arrays into rows.
func columnar(o *object) (rows [][]float64, err error) {
	var n int
	cols := make([][]float64, len(o.keys))
	for i, key := range o.keys {
		if err := json.Unmarshal(o.values[key], &cols[i]); err != nil {
			return nil, fmt.Errorf("column %q: %w", key, err)
		}
		if i == 0 {
			n = len(cols[i])
		} else if len(cols[i]) != n {
			return nil, fmt.Errorf("column %q has %d values, want %d", key, len(cols[i]), n)
		}
	}
	rows = make([][]float64, n)
	for r := range rows {
		row := make([]float64, len(cols))
		for c, col := range cols {
			row[c] = col[r]
		}
		rows[r] = row
	}
	return rows, nil
}

// KeyCount is how many objects carried a key.
type KeyCount struct {
	Key   string
	Count int
}

// KeywordCounts counts the object keys of every list-shaped .json file in
// paths, most frequent first. Files with other extensions or top-level
// shapes are ignored.
func KeywordCounts(paths []string) ([]KeyCount, error) {
	counts := make(map[string]int)
	for _, path := range paths {
		if filepath.Ext(path) != ".json" {
			continue
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		var items []map[string]json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			var ute *json.UnmarshalTypeError
			if errors.As(err, &ute) {
				continue
			}
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		for _, item := range items {
			for key := range item {
				counts[key]++
			}
		}
	}
	out := make([]KeyCount, 0, len(counts))
	for key, n := range counts {
		out = append(out, KeyCount{key, n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out, nil
}

// number reads a JSON number or numeric string.
func number(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case string:
		f, err := strconv.ParseFloat(x, 64)
		return f, err == nil
	}
	return 0, false
}
