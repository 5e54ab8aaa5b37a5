package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AI-multimodal/aimm-adapteres/internal/config"
	"github.com/AI-multimodal/aimm-adapteres/internal/logging"
	"github.com/AI-multimodal/aimm-adapteres/internal/metrics"
	"github.com/AI-multimodal/aimm-adapteres/internal/tree"
)

const feScan = `# User Comment:
# Fe foil
#
# Column Headings:
#Time  Mono Energy  I0  IT
1  7000  10  5
1  7100  11  6
1  7200  12  7
`

const timeScan = `# Column Headings:
#Time  Counts
1  2
`

func writeFiles(t *testing.T, files map[string]string) string {
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}

type cliTest struct {
	t    *testing.T
	root string
}

func newCLITest(t *testing.T, files map[string]string) *cliTest {
	root := writeFiles(t, files)
	require.NoError(t, os.WriteFile(filepath.Join(root, "aimm.yaml"), []byte("log_level: warn\nworkers: 2\n"), 0644))
	return &cliTest{t: t, root: root}
}

func (ct *cliTest) path(name string) string {
	return filepath.Join(ct.root, filepath.FromSlash(name))
}

// run runs aimm with the test's config and no dotenv file.
func (ct *cliTest) run(args ...string) (code int, stdout, stderr string) {
	var out, errOut bytes.Buffer
	args = append([]string{
		"-config", ct.path("aimm.yaml"),
		"-env", ct.path("missing.env"),
	}, args...)
	code = run(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestHelp(t *testing.T) {
	ct := newCLITest(t, nil)

	code, out, _ := ct.run()
	assert.Equal(t, 0, code)
	assert.True(t, strings.HasPrefix(out, "# Usage\n> aimm [flags] command [args...]\n\n## Available Commands\n"), out)
	for _, name := range builtins.Commands() {
		assert.Contains(t, out, fmt.Sprintf("- %-11s: %s\n", name, builtins.Describe(name)))
	}

	code, out, _ = ct.run("help", "parse")
	assert.Equal(t, 0, code)
	assert.Equal(t, ""+
		"# Usage\n"+
		"> aimm parse [-json] [-no-device] FILE...\n"+
		"\n"+
		"parse LabVIEW scan files, printing a summary of each\n"+
		"\n"+
		"## Flags\n"+
		"- -json: print each record as JSON\n"+
		"- -no-device: strip device prefixes from column names\n",
		out)

	code, out, _ = ct.run("help", "nope")
	assert.Equal(t, 0, code)
	assert.Equal(t, "> aimm help nope\nno help available\n", out)
}

func TestUsageErrors(t *testing.T) {
	ct := newCLITest(t, nil)
	for _, tc := range []struct {
		name string
		args []string
		msg  string
	}{
		{"unknown command", []string{"frob"}, `unrecognized command "frob"`},
		{"missing args", []string{"parse"}, "expected at least one FILE"},
		{"extra args", []string{"tree", "a", "b"}, "expected one DIR"},
		{"bad flag", []string{"tree", "-bogus", "a"}, "tree: flag provided but not defined: -bogus"},
		{"bad mode", []string{"tree", "-mode", "sideways", "a"}, `unknown tree mode "sideways"`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			code, _, stderr := ct.run(tc.args...)
			assert.Equal(t, 2, code)
			assert.Contains(t, stderr, tc.msg)
		})
	}
}

func TestBadConfig(t *testing.T) {
	ct := newCLITest(t, nil)
	require.NoError(t, os.WriteFile(ct.path("aimm.yaml"), []byte("wokers: 2\n"), 0644))
	code, _, stderr := ct.run("help")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "wokers")
}

func TestParseAndIdentify(t *testing.T) {
	ct := newCLITest(t, map[string]string{
		"Fe_foil.001": feScan,
		"time.001":    timeScan,
	})

	code, out, _ := ct.run("parse", ct.path("Fe_foil.001"))
	require.Equal(t, 0, code)
	assert.Contains(t, out, `3×4 ["Time" "Mono Energy" "I0" "IT"]`)
	assert.Contains(t, out, "user_comment: [Fe foil]")

	code, out, _ = ct.run("parse", "-json", ct.path("time.001"))
	require.Equal(t, 0, code)
	assert.Contains(t, out, `"columns": [`)
	assert.Contains(t, out, `"Counts"`)

	code, out, _ = ct.run("identify", ct.path("Fe_foil.001"), ct.path("time.001"))
	require.Equal(t, 0, code)
	assert.Equal(t, ""+
		ct.path("Fe_foil.001")+": Fe K (7112 eV)\n"+
		ct.path("time.001")+": no match\n",
		out)

	code, _, stderr := ct.run("parse", ct.path("missing.001"))
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "command failed")
}

func TestParseFile_countsOnce(t *testing.T) {
	ct := newCLITest(t, map[string]string{
		"loose.001": "# Column Headings:\n#a b\n1 2\n",
	})
	env := &env{
		cfg:     config.Default(),
		log:     logging.Logger(),
		metrics: metrics.New(),
		memo:    &tree.Memo{},
	}
	for i := 0; i < 3; i++ {
		rec, err := env.parseFile(ct.path("loose.001"), false)
		require.NoError(t, err)
		require.Len(t, rec.Diagnostics, 1)
	}
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.FilesParsed.WithLabelValues("labview")))
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.Diagnostics.WithLabelValues("Column")))

	_, err := env.parseFile(ct.path("loose.001"), true)
	require.NoError(t, err)
	assert.Equal(t, 2.0, testutil.ToFloat64(env.metrics.FilesParsed.WithLabelValues("labview")), "no-device parses are memoized apart")
}

func TestTreeAndIngest(t *testing.T) {
	ct := newCLITest(t, map[string]string{
		"scans/Fe_foil.001": feScan,
		"scans/time.001":    timeScan,
	})

	code, out, _ := ct.run("tree", "-mode", "normalized", ct.path("scans"))
	require.Equal(t, 0, code)
	assert.Equal(t, "Fe_foil/\n  Fe_foil.001 3×3 [\"energy\" \"i0\" \"itrans\"]\n", out, "groups with no energy scan are left out")

	cat := ct.path("catalog")
	code, out, _ = ct.run("-metrics-file", ct.path("metrics.prom"), "ingest", "-catalog", cat, "-dataset", "heald", ct.path("scans"))
	require.Equal(t, 0, code)
	assert.Equal(t, "heald: wrote 1 of 1 entries\n", out)
	assert.FileExists(t, filepath.Join(cat, "heald", "Fe_foil-Fe_foil.001.json"))
	assert.FileExists(t, filepath.Join(cat, "heald", "Fe_foil-Fe_foil.001.csv"))

	prom, err := os.ReadFile(ct.path("metrics.prom"))
	require.NoError(t, err)
	assert.Contains(t, string(prom), `aimm_catalog_writes_total{container="heald"} 1`)

	code, out, _ = ct.run("ingest", "-catalog", cat, "-dataset", "heald", ct.path("scans"))
	require.Equal(t, 0, code)
	assert.Equal(t, "heald: wrote 0 of 1 entries\n", out, "existing entries are kept")
}

func TestSurveyCommands(t *testing.T) {
	ct := newCLITest(t, map[string]string{
		"scans/Fe_foil.001": feScan,
		"scans/Fe_foil.002": timeScan,
	})

	code, out, _ := ct.run("count", "I0", ct.path("scans"))
	require.Equal(t, 0, code)
	assert.Equal(t, "\"I0\": 1 of 2 files\n", out)

	code, out, _ = ct.run("columns", ct.path("scans"))
	require.Equal(t, 0, code)
	assert.Equal(t, "I0\nIT\nMono Energy\nTime\n", out)

	code, out, _ = ct.run("columns", "-format", "html", ct.path("scans"))
	require.Equal(t, 0, code)
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<td>Mono Energy</td>")

	code, out, _ = ct.run("filetree", "I0", ct.path("scans"))
	require.Equal(t, 0, code)
	assert.Equal(t, ""+
		"|-- Fe_foil:\n"+
		"    |-- I0:[Fe_foil.001]\n"+
		"    |-- None:[Fe_foil.002]\n",
		out)

	code, _, stderr := ct.run("columns", "-format", "pdf", ct.path("scans"))
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, `unknown format "pdf"`)
}

func TestBatch(t *testing.T) {
	ct := newCLITest(t, map[string]string{
		"scans/Fe_foil.001": feScan,
	})
	batch := fmt.Sprintf("# survey\n\ncount I0 %q\ncount Time %q\n", ct.path("scans"), ct.path("scans"))
	require.NoError(t, os.WriteFile(ct.path("run.batch"), []byte(batch), 0644))

	code, out, _ := ct.run("batch", ct.path("run.batch"))
	require.Equal(t, 0, code)
	assert.Equal(t, "\"I0\": 1 of 1 files\n\"Time\": 1 of 1 files\n", out)

	require.NoError(t, os.WriteFile(ct.path("bad.batch"), []byte("count I0\nhelp\n"), 0644))
	code, out, stderr := ct.run("batch", "-keep-going", ct.path("bad.batch"))
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "## Available Commands", "later commands still run")
	assert.Contains(t, stderr, "batch command failed")
	assert.Contains(t, stderr, "1 commands failed")
}
