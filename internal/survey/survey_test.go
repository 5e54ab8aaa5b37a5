package survey

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func surveyDir(t *testing.T) string {
	root := t.TempDir()
	for name, content := range map[string]string{
		"Fe.001":     "# Column Headings:\n#Mono Energy  I0  pncaux:IT\n1 2 3\n",
		"Fe.002":     "# Column Headings:\n#Mono Energy  I0  pncaux:IT  IF\n1 2 3 4\n",
		".x.001":     "# Column Headings:\n#IF\n1\n",
		"readme.txt": "IF",
		"sub/Cu.001": "# Column Headings:\n#Time  I0\n1 2\n",
		"sub/Cu.002": "# Column Headings:\n#Mono Energy  I0\n",
	} {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}

func TestCountKeyword(t *testing.T) {
	root := surveyDir(t)
	var s Surveyor
	for _, tc := range []struct {
		kw           string
		count, total int
	}{
		{"I0", 4, 4},
		{"IF", 1, 4},
		{"IT", 0, 4},
		{"pncaux:IT", 2, 4},
	} {
		t.Run(tc.kw, func(t *testing.T) {
			count, total, err := s.CountKeyword(root, tc.kw)
			require.NoError(t, err)
			assert.Equal(t, tc.count, count)
			assert.Equal(t, tc.total, total)
		})
	}

	_, _, err := s.CountKeyword(filepath.Join(root, "missing"), "I0")
	assert.Error(t, err)
}

func TestColumnCounts(t *testing.T) {
	var s Surveyor
	counts, err := s.ColumnCounts(surveyDir(t))
	require.NoError(t, err)
	assert.Equal(t, []Count{
		{"I0", 2},
		{"IT", 2},
		{"Mono Energy", 2},
		{"IF", 1},
	}, counts)
}

func TestUniqueColumns(t *testing.T) {
	var s Surveyor
	names, err := s.UniqueColumns(surveyDir(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"I0", "IF", "IT", "Mono Energy"}, names)
}

func render(t *testing.T, n *Node) string {
	var sb strings.Builder
	require.NoError(t, RenderTree(&sb, n))
	return sb.String()
}

func TestKeywordTree(t *testing.T) {
	var s Surveyor
	n, err := s.KeywordTree(surveyDir(t), "IF")
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"|-- Fe:",
		"    |-- IF:[Fe.002]",
		"    |-- None:[Fe.001]",
		"|-- sub:",
		"    |-- Cu:",
		"        |-- IF:[]",
		"        |-- None:[Cu.001, Cu.002]",
		"",
	}, "\n"), render(t, n))
}

func TestGroupByColumns(t *testing.T) {
	var s Surveyor
	n, err := s.GroupByColumns(surveyDir(t))
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"|-- Fe:",
		"    |-- (Mono Energy, I0, pncaux:IT):[Fe.001]",
		"    |-- (Mono Energy, I0, pncaux:IT, IF):[Fe.002]",
		"|-- sub:",
		"    |-- Cu:",
		"        |-- (Time, I0):[Cu.001]",
		"        |-- (Mono Energy, I0):[Cu.002]",
		"",
	}, "\n"), render(t, n))
}

func TestMarkdown(t *testing.T) {
	counts := []Count{{"Mono Energy", 2}, {"a|b", 1}}
	var sb strings.Builder
	require.NoError(t, CountsMarkdown(&sb, "Columns", counts))
	assert.Equal(t, "# Columns\n\n| Column | Files |\n| --- | ---: |\n| Mono Energy | 2 |\n| a\\|b | 1 |\n", sb.String())

	var html strings.Builder
	require.NoError(t, WriteHTML(&html, func(w io.Writer) error {
		return CountsMarkdown(w, "Columns", counts)
	}))
	assert.Contains(t, html.String(), "<h1>Columns</h1>")
	assert.Contains(t, html.String(), "<table>")
	assert.Contains(t, html.String(), "Mono Energy")

	tree := &Node{Branch: true, Children: []*Node{
		{Key: "Fe", Branch: true, Children: []*Node{{Key: "IF", Value: "[Fe.002]"}}},
	}}
	sb.Reset()
	require.NoError(t, TreeMarkdown(&sb, "Files", tree))
	assert.Equal(t, "# Files\n\n- **Fe**\n  - `IF`: [Fe.002]\n", sb.String())
}
