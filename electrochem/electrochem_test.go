package electrochem_test

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/AI-multimodal/aimm-adapteres/electrochem"
	"github.com/AI-multimodal/aimm-adapteres/internal/logging"
)

const export = `Capacity (mAh/g),Voltage (V),Capacity (mAh/g),Voltage (V)
1C,1C,1DC,1DC
0,3.0,0,4.3
10.5,3.6,12,4.0
20,4.3,,
`

func TestParseCharge(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want Charge
		err  bool
	}{
		{in: "1C", want: Charge{Cycle: 1, State: "C"}},
		{in: "12DC", want: Charge{Cycle: 12, State: "DC"}},
		{in: "C", err: true},
		{in: "3", err: true},
		{in: "xDC", err: true},
		{in: "", err: true},
	} {
		t.Run(tc.in, func(t *testing.T) {
			c, err := ParseCharge(tc.in)
			if tc.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, c)
			assert.Equal(t, tc.in, c.String())
		})
	}
}

func TestSampleName(t *testing.T) {
	assert.Equal(t, "NCMA", SampleName("811-Al"))
	assert.Equal(t, "NCM622", SampleName("622"))
	assert.Equal(t, "NCM712-Al", SampleName("712-Al"))
}

func TestRead(t *testing.T) {
	var rd Reader
	curves, err := rd.Read(strings.NewReader(export), "622.csv")
	require.NoError(t, err)
	require.Len(t, curves, 2)

	charge := curves[0]
	assert.Equal(t, []string{"capacity", "voltage"}, charge.Columns)
	assert.Equal(t, [][]float64{{0, 3.0}, {10.5, 3.6}, {20, 4.3}}, charge.Rows)
	assert.Equal(t, Charge{Cycle: 1, State: "C"}, charge.Charge)
	assert.Equal(t, map[string]interface{}{
		"dataset":      "nmc_electrochem",
		"fname":        "622.csv",
		"facility":     map[string]interface{}{"name": "ALS"},
		"beamline":     map[string]interface{}{"name": "8.0.1"},
		"sample":       map[string]interface{}{"name": "NCM622"},
		"charge":       map[string]interface{}{"cycle": 1, "state": "C"},
		"loading_mass": 0.1638,
		"current":      30.0,
		"units": map[string]string{
			"loading_mass": "g",
			"current":      "mA/g",
			"capacity":     "mAh/g",
			"voltage":      "V",
		},
	}, charge.Meta)

	discharge := curves[1]
	assert.Equal(t, [][]float64{{0, 4.3}, {12, 4.0}}, discharge.Rows, "empty cells are dropped")
	assert.Equal(t, Charge{Cycle: 1, State: "DC"}, discharge.Charge)
}

func TestRead_unknownSample(t *testing.T) {
	h := logging.NewBufferedHandler(slog.LevelWarn)
	rd := Reader{Logger: slog.New(h)}
	curves, err := rd.Read(strings.NewReader(export), "999.csv")
	require.NoError(t, err)
	require.Len(t, curves, 2)
	assert.NotContains(t, curves[0].Meta, "loading_mass")
	assert.Equal(t, map[string]string{"capacity": "mAh/g", "voltage": "V"}, curves[0].Meta["units"])
	assert.True(t, h.Contains("sample=NCM999"))
}

func TestRead_errors(t *testing.T) {
	for _, tc := range []struct {
		name string
		in   string
		is   error
	}{
		{"one header row", "Capacity (mAh/g),Voltage (V)\n", ErrBadHeader},
		{"odd columns", "Capacity (mAh/g)\n1C\n1\n", ErrBadHeader},
		{"no unit", "Capacity,Voltage (V)\n1C,1C\n1,2\n", ErrBadHeader},
		{"bad charge", "Capacity (mAh/g),Voltage (V)\nfirst,first\n1,2\n", nil},
		{"bad value", "Capacity (mAh/g),Voltage (V)\n1C,1C\n1,volts\n", nil},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := new(Reader).Read(strings.NewReader(tc.in), "622.csv")
			require.Error(t, err)
			assert.True(t, strings.HasPrefix(err.Error(), "622.csv: "), "error names the file: %v", err)
			if tc.is != nil {
				assert.True(t, errors.Is(err, tc.is))
			}
		})
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "811-Al.csv")
	require.NoError(t, os.WriteFile(path, []byte(export), 0644))
	curves, err := new(Reader).ReadFile(path)
	require.NoError(t, err)
	require.Len(t, curves, 2)
	assert.Equal(t, map[string]interface{}{"name": "NCMA"}, curves[0].Meta["sample"])
	assert.Equal(t, 0.1671, curves[0].Meta["loading_mass"])
}
