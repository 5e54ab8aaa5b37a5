package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	m := New()
	m.Parsed("labview", nil)
	m.Parsed("labview", nil)
	m.Parsed("labview", errors.New("bad row"))
	m.Diagnosed("Amplifier")
	m.Identified(true)
	m.Identified(false)
	m.Identified(false)
	m.Wrote("")
	m.Wrote("heald")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.FilesParsed.WithLabelValues("labview")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ParseFailures.WithLabelValues("labview")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Diagnostics.WithLabelValues("Amplifier")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Identification.WithLabelValues("matched")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Identification.WithLabelValues("unmatched")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CatalogWrites.WithLabelValues("root")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CatalogWrites.WithLabelValues("heald")))

	expected := `
# HELP aimm_xray_identifications_total Element identifications, by outcome (matched or unmatched)
# TYPE aimm_xray_identifications_total counter
aimm_xray_identifications_total{outcome="matched"} 1
aimm_xray_identifications_total{outcome="unmatched"} 2
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "aimm_xray_identifications_total"))
}

func TestMetrics_nil(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Parsed("dat", nil)
		m.Diagnosed("Column")
		m.Identified(true)
		m.Wrote("x")
	})
}

func TestMetrics_WriteFile(t *testing.T) {
	m := New()
	m.Parsed("dat", nil)
	path := filepath.Join(t.TempDir(), "aimm.prom")
	require.NoError(t, m.WriteFile(path))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `aimm_files_parsed_total{format="dat"} 1`)
}
