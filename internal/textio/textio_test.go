package textio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitArgs(t *testing.T) {
	for _, tc := range []struct {
		in  string
		out []string
	}{
		{"", nil},
		{"parse a.001", []string{"parse", "a.001"}},
		{"  identify   -json  x.001 ", []string{"identify", "-json", "x.001"}},
		{`count "Mono Energy" data`, []string{"count", "Mono Energy", "data"}},
		{`count 'Cal Diode' data`, []string{"count", "Cal Diode", "data"}},
		{`say "a \"quoted\" word"`, []string{"say", `a "quoted" word`}},
	} {
		t.Run(tc.in, func(t *testing.T) {
			args, err := SplitArgs(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.out, args)
		})
	}
}

func TestQuoteArgs(t *testing.T) {
	args := []string{"count", "Mono Energy", "", "data/dir"}
	line := QuoteArgs(args)
	assert.Equal(t, `count "Mono Energy" "" data/dir`, line)
	back, err := SplitArgs(line)
	require.NoError(t, err)
	assert.Equal(t, args, back)
}

func TestIndent(t *testing.T) {
	var sb strings.Builder
	w := Indent("    ", &sb)
	fmt.Fprint(w, "a\nb")
	fmt.Fprint(w, "c\n\nd")
	assert.Equal(t, "    a\n    bc\n    \n", sb.String(), "partial lines are held back")
	require.NoError(t, w.Close())
	assert.Equal(t, "    a\n    bc\n    \n    d", sb.String())
}

type failWriter struct{ n int }

func (fw *failWriter) Write(p []byte) (int, error) {
	fw.n++
	return 0, errors.New("disk full")
}

func TestErrWriter(t *testing.T) {
	fw := &failWriter{}
	ew := &ErrWriter{Writer: fw}
	_, err := ew.WriteString("a")
	assert.EqualError(t, err, "disk full")
	_, err = ew.Write([]byte("b"))
	assert.EqualError(t, err, "disk full")
	assert.Equal(t, 1, fw.n, "no writes after the first error")
}

func TestFindUp(t *testing.T) {
	root := t.TempDir()
	deep := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(deep, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "aimm.yaml"), nil, 0644))

	path, err := FindUp(deep, "aimm.yaml")
	require.NoError(t, err)
	want, _ := filepath.Abs(filepath.Join(root, "aimm.yaml"))
	assert.Equal(t, want, path)

	path, err = FindUp(deep, "no-such-file-anywhere.yaml")
	require.NoError(t, err)
	assert.Empty(t, path)
}
