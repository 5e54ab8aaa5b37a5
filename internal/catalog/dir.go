package catalog

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/google/renameio"
)

const (
	metaExt  = ".json"
	tableExt = ".csv"
)

// Dir is a Catalog kept under a filesystem root. Each entry is a pair of
// files, KEY.json holding metadata and KEY.csv holding the table, inside
// a subdirectory per container. Files are written atomically; the
// metadata file is written last and marks the entry as present.
type Dir struct {
	Root string

	mu sync.Mutex
}

func (d *Dir) path(container, key, ext string) string {
	return filepath.Join(d.Root, container, key+ext)
}

// Put implements Catalog.
func (d *Dir) Put(ctx context.Context, e Entry) (string, error) {
	if err := prepare(&e); err != nil {
		return "", err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	metaPath := d.path(e.Container, e.Key, metaExt)
	if _, err := os.Stat(metaPath); err == nil {
		return "", fmt.Errorf("%s/%s: %w", e.Container, e.Key, ErrExists)
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(metaPath), 0755); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := writeAtomic(d.path(e.Container, e.Key, tableExt), func(w io.Writer) error {
		return writeTable(w, e.Table)
	}); err != nil {
		return "", err
	}
	if err := writeAtomic(metaPath, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(dirMeta{Entry: e, Columns: e.Table.Columns})
	}); err != nil {
		return "", err
	}
	return e.Key, nil
}

// writeAtomic replaces path with whatever fill writes, leaving no partial
// file behind on failure.
func writeAtomic(path string, fill func(w io.Writer) error) (rerr error) {
	pf, err := renameio.TempFile("", path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := pf.Cleanup(); rerr == nil {
			rerr = cerr
		}
	}()
	if err := fill(pf); err != nil {
		return err
	}
	return pf.CloseAtomicallyReplace()
}

type dirMeta struct {
	Entry
	Columns []string `json:"columns"`
}

// Get implements Catalog.
func (d *Dir) Get(_ context.Context, container, key string) (Entry, error) {
	if err := checkName("key", key, false); err != nil {
		return Entry{}, err
	}
	if err := checkName("container", container, true); err != nil {
		return Entry{}, err
	}

	raw, err := os.ReadFile(d.path(container, key, metaExt))
	if errors.Is(err, os.ErrNotExist) {
		return Entry{}, fmt.Errorf("%s/%s: %w", container, key, ErrNotExist)
	} else if err != nil {
		return Entry{}, err
	}
	var dm dirMeta
	if err := json.Unmarshal(raw, &dm); err != nil {
		return Entry{}, fmt.Errorf("%s/%s%s: %w", container, key, metaExt, err)
	}

	f, err := os.Open(d.path(container, key, tableExt))
	if err != nil {
		return Entry{}, err
	}
	defer f.Close()
	table, err := readTable(f)
	if err != nil {
		return Entry{}, fmt.Errorf("%s/%s%s: %w", container, key, tableExt, err)
	}

	e := dm.Entry
	e.Table = table
	return e, nil
}

// Keys implements Catalog.
func (d *Dir) Keys(_ context.Context, container string) ([]string, error) {
	if err := checkName("container", container, true); err != nil {
		return nil, err
	}
	ents, err := os.ReadDir(filepath.Join(d.Root, container))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	var keys []string
	for _, ent := range ents {
		name := ent.Name()
		if ent.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != metaExt {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, metaExt))
	}
	sort.Strings(keys)
	return keys, nil
}

func writeTable(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, v := range row {
			record[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func readTable(r io.Reader) (Table, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return Table{}, err
	}
	if len(records) == 0 {
		return Table{}, nil
	}
	t := Table{Columns: records[0]}
	for i, rec := range records[1:] {
		row := make([]float64, len(rec))
		for j, s := range rec {
			if row[j], err = strconv.ParseFloat(s, 64); err != nil {
				return Table{}, fmt.Errorf("row %d: %w", i+1, err)
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}
