package labview_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/AI-multimodal/aimm-adapteres/labview"
)

func TestMangleDuplicates(t *testing.T) {
	for _, tc := range []struct {
		name string
		in   []string
		out  []string
	}{
		{"empty", nil, []string{}},
		{"unique", []string{"a", "b"}, []string{"a", "b"}},
		{"pair", []string{"x", "x"}, []string{"x", "x.1"}},
		{"interleaved", []string{"x", "y", "x", "y", "x"}, []string{"x", "y", "x.1", "y.1", "x.2"}},
		{"suffix already present", []string{"x", "x.1", "x"}, []string{"x", "x.1", "x.2"}},
		{"suffix produced twice", []string{"x", "x", "x.1"}, []string{"x", "x.1", "x.1.1"}},
		{"suffix taken later", []string{"x", "x", "x.1", "x"}, []string{"x", "x.1", "x.1.1", "x.2"}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.out, MangleDuplicates(tc.in))
		})
	}
}

func TestSplitColumns(t *testing.T) {
	for _, tc := range []struct {
		name     string
		line     string
		noDevice bool
		out      []string
	}{
		{
			name: "double space",
			line: "Time  Mono Energy   I0",
			out:  []string{"Time", "Mono Energy", "I0"},
		},
		{
			name: "single space fallback",
			line: "Time Energy I0",
			out:  []string{"Time", "Energy", "I0"},
		},
		{
			name: "stars",
			line: "I0*  IT*  IF",
			out:  []string{"I0", "IT", "IF"},
		},
		{
			name: "glued device names",
			line: "tempeXMAP4:x  scatter_Sum XMAP4:y",
			out:  []string{"tempe", "XMAP4:x", "scatter_Sum", "XMAP4:y"},
		},
		{
			name: "alt energy",
			line: "Mono Energy (alt)  I0",
			out:  []string{"Mono Energy", "I0"},
		},
		{
			name:     "device prefixes",
			line:     "XMAP12:DT Corr I0  pncaux:Mono Energy  s20ptc10:temp:val  cal:diode:raw  Time",
			noDevice: true,
			out:      []string{"DT_Corr_I0", "Mono Energy", "temp:val", "cal:diode", "Time"},
		},
		{
			name:     "numeric prefix is not a device",
			line:     "12:ab:cd  x",
			noDevice: true,
			out:      []string{"12:ab", "x"},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.out, SplitColumns(tc.line, WithNoDevice(tc.noDevice)))
		})
	}
}

func TestGrammar_Match(t *testing.T) {
	for _, tc := range []struct {
		text string
		want Section
		ok   bool
	}{
		{"Column Headings:", Column, true},
		{"Column Headings: extra", None, false},
		{"Analog Input Voltages (V):", Analog, true},
		{"LabVIEW Control Panel: Beamline 20-BM", Panel, true},
		{"Beamline 20-BM", Beamline, true},
		{"XIA Shutter Unit: open", Shutter, true},
		{"something else", None, false},
	} {
		t.Run(tc.text, func(t *testing.T) {
			r, ok := DefaultGrammar.Match(tc.text)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, r.Section)
		})
	}
}
