// Package datfile reads whitespace separated ".dat" tables whose comment
// header holds "group.key: value" metadata lines and a column name line.
package datfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/AI-multimodal/aimm-adapteres/labview"
)

// Ext is the extension ReadDir picks up.
const Ext = ".dat"

var lower = cases.Lower(language.Und)

// ErrMetaConflict is wrapped by the FormatError for a metadata line that
// would replace a value of another shape, or the dataset and fname tags.
var ErrMetaConflict = errors.New("conflicting metadata key")

// File is one parsed .dat file.
type File struct {
	Columns []string
	Rows    [][]float64
	// Meta holds "dataset" and "fname" strings, plus one
	// map[string]string per metadata group.
	Meta map[string]interface{}
}

// Read parses a .dat file named fname, tagging it with dataset.
func Read(r io.Reader, fname, dataset string) (*File, error) {
	f := &File{Meta: map[string]interface{}{
		"dataset": dataset,
		"fname":   fname,
	}}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineno := 0
	fail := func(format string, args ...interface{}) error {
		return &labview.FormatError{File: fname, Line: lineno, Msg: fmt.Sprintf(format, args...)}
	}

	for sc.Scan() {
		lineno++
		line := strings.TrimRight(sc.Text(), " \t\r")
		switch {
		case line == "":
			continue

		case line[0] == '#':
			if len(line) < 3 {
				continue
			}
			body := line[2:]
			if key, value, ok := strings.Cut(body, ": "); ok {
				if err := f.setMeta(key, value); err != nil {
					return nil, &labview.FormatError{File: fname, Line: lineno, Msg: "metadata", Err: err}
				}
			} else {
				f.Columns = strings.Fields(body)
			}

		default:
			fields := strings.Fields(line)
			if f.Columns == nil {
				return nil, fail("data before column names")
			}
			if len(fields) != len(f.Columns) {
				return nil, fail("row has %d values, want %d columns", len(fields), len(f.Columns))
			}
			row := make([]float64, len(fields))
			for i, field := range fields {
				v, err := strconv.ParseFloat(field, 64)
				if err != nil {
					return nil, &labview.FormatError{File: fname, Line: lineno, Msg: "bad value", Err: err}
				}
				row[i] = v
			}
			f.Rows = append(f.Rows, row)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return f, nil
}

// setMeta stores value under the lower-cased "group.key"; a key with no
// group is stored at the top level. A key may not change shape between a
// value and a group, nor replace the dataset or fname tags.
func (f *File) setMeta(key, value string) error {
	group, name, ok := strings.Cut(key, ".")
	group = lower.String(group)
	if group == "dataset" || group == "fname" {
		return fmt.Errorf("%w: %q is set by the reader", ErrMetaConflict, group)
	}
	if !ok {
		if _, isGroup := f.Meta[group].(map[string]string); isGroup {
			return fmt.Errorf("%w: %q is already a group", ErrMetaConflict, group)
		}
		f.Meta[group] = value
		return nil
	}
	var m map[string]string
	switch v := f.Meta[group].(type) {
	case nil:
		m = make(map[string]string)
		f.Meta[group] = m
	case map[string]string:
		m = v
	default:
		return fmt.Errorf("%w: %q is already a value", ErrMetaConflict, group)
	}
	m[lower.String(name)] = value
	return nil
}

// ReadFile reads the .dat file at path.
func ReadFile(path, dataset string) (_ *File, rerr error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := fh.Close(); rerr == nil {
			rerr = cerr
		}
	}()
	return Read(fh, filepath.Base(path), dataset)
}

// ReadDir reads every .dat file directly inside dir, keyed by file stem.
func ReadDir(dir, dataset string) (map[string]*File, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(ents))
	for _, ent := range ents {
		if !ent.IsDir() && filepath.Ext(ent.Name()) == Ext {
			names = append(names, ent.Name())
		}
	}
	sort.Strings(names)

	files := make(map[string]*File, len(names))
	for _, name := range names {
		f, err := ReadFile(filepath.Join(dir, name), dataset)
		if err != nil {
			return nil, err
		}
		files[strings.TrimSuffix(name, Ext)] = f
	}
	return files, nil
}
