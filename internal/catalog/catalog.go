// Package catalog stores ingested tables with their metadata.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

var (
	// ErrExists is wrapped by Put for a key already in its container.
	ErrExists = errors.New("catalog entry already exists")

	// ErrNotExist is wrapped by Get for an unknown entry.
	ErrNotExist = errors.New("catalog entry does not exist")

	// ErrBadName is wrapped for keys and containers that are not plain
	// file names.
	ErrBadName = errors.New("invalid catalog name")

	errRowLength = errors.New("row length does not match columns")
)

// Table is a column-named numeric table.
type Table struct {
	Columns []string
	Rows    [][]float64
}

// Validate checks that every row is as wide as the column list.
func (t Table) Validate() error {
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("row %d has %d values for %d columns: %w", i, len(row), len(t.Columns), errRowLength)
		}
	}
	return nil
}

// Entry is one stored table. Container groups entries, like a dataset
// node; an empty Key is assigned on Put.
type Entry struct {
	Container string                 `json:"container,omitempty"`
	Key       string                 `json:"key"`
	Specs     []string               `json:"specs,omitempty"`
	Metadata  map[string]interface{} `json:"metadata"`
	Table     Table                  `json:"-"`
}

// Catalog is the sink adapters write their results into.
type Catalog interface {
	// Put stores a new entry, returning its key; it fails with ErrExists
	// rather than replacing an entry.
	Put(ctx context.Context, e Entry) (string, error)
	Get(ctx context.Context, container, key string) (Entry, error)
	Keys(ctx context.Context, container string) ([]string, error)
}

// NewKey returns a fresh random entry key.
func NewKey() string { return uuid.NewString() }

func checkName(kind, name string, allowEmpty bool) error {
	if name == "" {
		if allowEmpty {
			return nil
		}
		return fmt.Errorf("empty %s: %w", kind, ErrBadName)
	}
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("%s %q: %w", kind, name, ErrBadName)
	}
	return nil
}

func prepare(e *Entry) error {
	if e.Key == "" {
		e.Key = NewKey()
	}
	if err := checkName("key", e.Key, false); err != nil {
		return err
	}
	if err := checkName("container", e.Container, true); err != nil {
		return err
	}
	return e.Table.Validate()
}

// Mem is an in-memory Catalog.
type Mem struct {
	mu      sync.Mutex
	entries map[string]map[string]Entry
}

// Put implements Catalog.
func (m *Mem) Put(ctx context.Context, e Entry) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := prepare(&e); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entries == nil {
		m.entries = make(map[string]map[string]Entry)
	}
	c := m.entries[e.Container]
	if c == nil {
		c = make(map[string]Entry)
		m.entries[e.Container] = c
	}
	if _, exists := c[e.Key]; exists {
		return "", fmt.Errorf("%s/%s: %w", e.Container, e.Key, ErrExists)
	}
	c[e.Key] = e
	return e.Key, nil
}

// Get implements Catalog.
func (m *Mem) Get(_ context.Context, container, key string) (Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[container][key]
	if !ok {
		return Entry{}, fmt.Errorf("%s/%s: %w", container, key, ErrNotExist)
	}
	return e, nil
}

// Keys implements Catalog.
func (m *Mem) Keys(_ context.Context, container string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.entries[container]))
	for key := range m.entries[container] {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}
