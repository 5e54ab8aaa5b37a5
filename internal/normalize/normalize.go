// Package normalize renames beamline columns to the channel names used by
// the catalog: energy, i0, itrans, ifluor and irefer.
package normalize

import "github.com/AI-multimodal/aimm-adapteres/labview"

// EnergyColumn is the monochromator energy column every normalizable scan
// must have.
const EnergyColumn = "Mono Energy"

// Channel is a normalized channel name and the column names it may appear
// under, in order of preference.
type Channel struct {
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases"`
}

// DefaultChannels are the aliases seen across the beamline's files.
var DefaultChannels = []Channel{
	{"i0", []string{"I0", "IO", "I-0"}},
	{"itrans", []string{"IT", "I1", "I", "It", "Trans"}},
	{"ifluor", []string{"Ifluor", "IF", "If", "Cal Diode", "Cal-diode", "CalDiode", "Cal_Diode", "Cal_diode", "Canberra"}},
	{"irefer", []string{"Iref", "IRef", "I2", "IR", "IREF", "DiodeRef", "Cal(Iref)", "Ref"}},
}

// Normalizer maps columns onto normalized channels.
type Normalizer struct {
	Energy   string
	Channels []Channel
}

// Default returns a Normalizer with the default energy column and channels.
func Default() *Normalizer {
	return &Normalizer{Energy: EnergyColumn, Channels: DefaultChannels}
}

// Result describes a normalization: output column names, the input column
// each is read from, and which input column each channel was found as.
type Result struct {
	Columns     []string
	Source      []int
	Translation map[string]string
}

// Columns normalizes a column list. When standardize is set every column is
// kept, with the energy and channel columns renamed; otherwise only the
// energy and found channels are kept. It returns false when there is no
// energy column.
func (n *Normalizer) Columns(cols []string, standardize bool) (Result, bool) {
	index := make(map[string]int, len(cols))
	for i, col := range cols {
		if _, dup := index[col]; !dup {
			index[col] = i
		}
	}
	ei, ok := index[n.Energy]
	if !ok {
		return Result{}, false
	}

	res := Result{Translation: make(map[string]string)}
	if standardize {
		res.Columns = append([]string(nil), cols...)
		res.Source = make([]int, len(cols))
		for i := range cols {
			res.Source[i] = i
		}
		res.Columns[ei] = "energy"
	} else {
		res.Columns = []string{"energy"}
		res.Source = []int{ei}
	}

	for _, ch := range n.Channels {
		for _, alias := range ch.Aliases {
			i, ok := index[alias]
			if !ok {
				continue
			}
			res.Translation[ch.Name] = alias
			if standardize {
				res.Columns[i] = ch.Name
			} else {
				res.Columns = append(res.Columns, ch.Name)
				res.Source = append(res.Source, i)
			}
			break
		}
	}
	return res, true
}

// Rows projects rows through the receiver's Source indices.
func (res Result) Rows(rows [][]float64) [][]float64 {
	out := make([][]float64, len(rows))
	for j, row := range rows {
		nr := make([]float64, len(res.Source))
		for i, src := range res.Source {
			nr[i] = row[src]
		}
		out[j] = nr
	}
	return out
}

// Record normalizes a parsed record, returning a new record sharing the
// input's metadata map and the normalization result.
func (n *Normalizer) Record(rec *labview.Record, standardize bool) (*labview.Record, Result, bool) {
	res, ok := n.Columns(rec.Columns, standardize)
	if !ok {
		return nil, Result{}, false
	}
	return &labview.Record{
		Columns:     res.Columns,
		Rows:        res.Rows(rec.Rows),
		Meta:        rec.Meta,
		Diagnostics: rec.Diagnostics,
	}, res, true
}
