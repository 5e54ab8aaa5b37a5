package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMem(t *testing.T) {
	catalogTest{Catalog: &Mem{}}.run(t)
}

func TestDir(t *testing.T) {
	root := t.TempDir()
	catalogTest{
		Catalog: &Dir{Root: root},
		post: func(t *testing.T, e Entry) {
			b, err := os.ReadFile(filepath.Join(root, e.Container, e.Key+".csv"))
			if assert.NoError(t, err, "unexpected read error") {
				assert.Equal(t, "energy,mu\n7000,0.5\n7001.5,0.25\n", string(b), "expected table file")
			}
			matches, err := filepath.Glob(filepath.Join(root, e.Container, ".*"))
			require.NoError(t, err)
			assert.Empty(t, matches, "no temp files left behind")
		},
	}.run(t)
}

func TestDir_missingRoot(t *testing.T) {
	d := &Dir{Root: filepath.Join(t.TempDir(), "nothing")}
	keys, err := d.Keys(context.Background(), "")
	assert.NoError(t, err)
	assert.Empty(t, keys)
}

type catalogTest struct {
	Catalog
	post func(t *testing.T, e Entry)
}

var testEntry = Entry{
	Container: "fe_foil",
	Key:       "Fe_foil-001",
	Specs:     []string{"XAS_TX"},
	Metadata: map[string]interface{}{
		"element": "Fe",
		"edge":    "K",
	},
	Table: Table{
		Columns: []string{"energy", "mu"},
		Rows:    [][]float64{{7000, 0.5}, {7001.5, 0.25}},
	},
}

func (ct catalogTest) run(t *testing.T) {
	ctx := context.Background()
	for _, step := range []struct {
		name string
		fn   func(t *testing.T)
	}{
		{"initial get fails", ct.getFails(ctx, testEntry.Container, testEntry.Key, ErrNotExist)},
		{"initially no keys", ct.expectKeys(ctx, testEntry.Container)},
		{"put", ct.put(ctx, testEntry)},
		{"put again fails", ct.putFails(ctx, testEntry, ErrExists)},
		{"read back", ct.expect(ctx, testEntry)},
		{"keys", ct.expectKeys(ctx, testEntry.Container, testEntry.Key)},
		{"other container is empty", ct.expectKeys(ctx, "other")},
		{"ragged table", ct.putFails(ctx, Entry{Key: "ragged", Table: Table{
			Columns: []string{"a", "b"},
			Rows:    [][]float64{{1}},
		}}, errRowLength)},
		{"bad key", ct.putFails(ctx, Entry{Key: "../escape"}, ErrBadName)},
		{"bad container", ct.putFails(ctx, Entry{Container: ".hidden"}, ErrBadName)},
		{"assigned key", ct.assignsKey(ctx)},
	} {
		if !t.Run(step.name, step.fn) {
			break
		}
	}
}

func (ct catalogTest) getFails(ctx context.Context, container, key string, want error) func(t *testing.T) {
	return func(t *testing.T) {
		_, err := ct.Get(ctx, container, key)
		assert.True(t, errors.Is(err, want), "expected %v, got %v", want, err)
	}
}

func (ct catalogTest) put(ctx context.Context, e Entry) func(t *testing.T) {
	return func(t *testing.T) {
		key, err := ct.Put(ctx, e)
		require.NoError(t, err, "must put")
		assert.Equal(t, e.Key, key)
	}
}

func (ct catalogTest) putFails(ctx context.Context, e Entry, want error) func(t *testing.T) {
	return func(t *testing.T) {
		_, err := ct.Put(ctx, e)
		assert.True(t, errors.Is(err, want), "expected %v, got %v", want, err)
	}
}

func (ct catalogTest) expect(ctx context.Context, want Entry) func(t *testing.T) {
	return func(t *testing.T) {
		got, err := ct.Get(ctx, want.Container, want.Key)
		require.NoError(t, err, "must get")
		assert.Equal(t, want.Key, got.Key)
		assert.Equal(t, want.Container, got.Container)
		assert.Equal(t, want.Specs, got.Specs)
		assert.Equal(t, want.Metadata, got.Metadata)
		assert.Equal(t, want.Table, got.Table)
		if ct.post != nil {
			t.Run("post", func(t *testing.T) { ct.post(t, want) })
		}
	}
}

func (ct catalogTest) expectKeys(ctx context.Context, container string, want ...string) func(t *testing.T) {
	return func(t *testing.T) {
		keys, err := ct.Keys(ctx, container)
		require.NoError(t, err)
		if len(want) == 0 {
			assert.Empty(t, keys)
		} else {
			assert.Equal(t, want, keys)
		}
	}
}

func (ct catalogTest) assignsKey(ctx context.Context) func(t *testing.T) {
	return func(t *testing.T) {
		key, err := ct.Put(ctx, Entry{Container: "assigned"})
		require.NoError(t, err)
		assert.Len(t, key, 36)
		_, err = ct.Get(ctx, "assigned", key)
		assert.NoError(t, err)
	}
}
