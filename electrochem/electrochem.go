// Package electrochem reads cycling exports from the electrochemistry
// station: CSV files with a two row header, where each pair of columns
// holds one charge or discharge curve.
package electrochem

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/AI-multimodal/aimm-adapteres/internal/logging"
)

// Dataset is the catalog container electrochem curves are written to.
const Dataset = "nmc_electrochem"

// Spec tags catalog entries produced by this package.
const Spec = "electrochemistry"

// ErrBadHeader is wrapped by errors for export header rows that can not be
// read as column names and charge labels.
var ErrBadHeader = errors.New("malformed header")

// Charge identifies a half cycle, as written in the second header row:
// "3C" is the third charge, "3DC" the third discharge.
type Charge struct {
	Cycle int    `json:"cycle" yaml:"cycle"`
	State string `json:"state" yaml:"state"`
}

func (c Charge) String() string { return strconv.Itoa(c.Cycle) + c.State }

// ParseCharge parses a "<cycle>C" or "<cycle>DC" label.
func ParseCharge(s string) (Charge, error) {
	var c Charge
	num := s
	switch {
	case strings.HasSuffix(s, "DC"):
		c.State, num = "DC", s[:len(s)-2]
	case strings.HasSuffix(s, "C"):
		c.State, num = "C", s[:len(s)-1]
	default:
		return Charge{}, fmt.Errorf("charge %q: missing C or DC suffix", s)
	}
	n, err := strconv.Atoi(num)
	if err != nil || n < 0 {
		return Charge{}, fmt.Errorf("charge %q: bad cycle number", s)
	}
	c.Cycle = n
	return c, nil
}

// Sample carries per-sample cell parameters.
type Sample struct {
	LoadingMass float64 `yaml:"loading_mass"` // g
	Current     float64 `yaml:"current"`      // mA/g
}

// DefaultSamples are the cells of the NMC cathode campaign.
var DefaultSamples = map[string]Sample{
	"NCM622":    {LoadingMass: 0.1638, Current: 30},
	"NCM712":    {LoadingMass: 0.1661, Current: 30},
	"NCM712-Al": {LoadingMass: 0.1568, Current: 30},
	"NCM811":    {LoadingMass: 0.1675, Current: 30},
	"NCMA":      {LoadingMass: 0.1671, Current: 30},
}

// SampleName maps an export's file stem to its sample name.
func SampleName(stem string) string {
	if stem == "811-Al" {
		return "NCMA"
	}
	return "NCM" + stem
}

// Curve is one column pair of an export.
type Curve struct {
	Columns []string
	Rows    [][]float64
	Charge  Charge
	Meta    map[string]interface{}
}

// Reader reads exports. Its zero value uses DefaultSamples and the package
// logger.
type Reader struct {
	Samples map[string]Sample
	Logger  *slog.Logger
}

// ReadFile reads the export at path.
func (rd *Reader) ReadFile(path string) (_ []Curve, rerr error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := f.Close(); rerr == nil {
			rerr = cerr
		}
	}()
	return rd.Read(f, filepath.Base(path))
}

// Read reads an export named fname from r, returning one curve per column
// pair in file order.
func (rd *Reader) Read(r io.Reader, fname string) ([]Curve, error) {
	samples := rd.Samples
	if samples == nil {
		samples = DefaultSamples
	}
	log := rd.Logger
	if log == nil {
		log = logging.Logger()
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fname, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%s: %w: want two header rows", fname, ErrBadHeader)
	}
	names, labels := records[0], records[1]
	if len(names)%2 != 0 || len(labels) != len(names) {
		return nil, fmt.Errorf("%s: %w: %d names and %d charge labels, want an even count of each", fname, ErrBadHeader, len(names), len(labels))
	}

	stem := strings.TrimSuffix(fname, filepath.Ext(fname))
	sample := SampleName(stem)
	extra, known := samples[sample]
	if !known {
		log.Warn("no cell parameters for sample", "file", fname, "sample", sample)
	}

	var curves []Curve
	for i := 0; i < len(names); i += 2 {
		charge, err := ParseCharge(strings.TrimSpace(labels[i]))
		if err != nil {
			return nil, fmt.Errorf("%s: column %d: %w", fname, i+1, err)
		}

		units := map[string]string{}
		if known {
			units["loading_mass"] = "g"
			units["current"] = "mA/g"
		}
		var cols [2]string
		for j := range cols {
			name, unit, err := splitName(names[i+j])
			if err != nil {
				return nil, fmt.Errorf("%s: column %d: %w", fname, i+j+1, err)
			}
			cols[j], units[name] = name, unit
		}

		rows, err := pairRows(records[2:], i)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", fname, err)
		}

		meta := map[string]interface{}{
			"dataset":  Dataset,
			"fname":    fname,
			"facility": map[string]interface{}{"name": "ALS"},
			"beamline": map[string]interface{}{"name": "8.0.1"},
			"sample":   map[string]interface{}{"name": sample},
			"charge":   map[string]interface{}{"cycle": charge.Cycle, "state": charge.State},
			"units":    units,
		}
		if known {
			meta["loading_mass"] = extra.LoadingMass
			meta["current"] = extra.Current
		}

		curves = append(curves, Curve{
			Columns: cols[:],
			Rows:    rows,
			Charge:  charge,
			Meta:    meta,
		})
	}
	log.Debug("read electrochem export", "file", fname, "sample", sample, "curves", len(curves))
	return curves, nil
}

// splitName splits "Capacity (mAh/g)" into "capacity" and "mAh/g".
func splitName(s string) (name, unit string, _ error) {
	fields := strings.Fields(s)
	if len(fields) < 2 {
		return "", "", fmt.Errorf("%w: column %q has no unit", ErrBadHeader, s)
	}
	name = strings.ToLower(fields[0])
	unit = strings.NewReplacer("(", "", ")", "").Replace(fields[1])
	return name, unit, nil
}

// pairRows extracts the rows of columns i and i+1, dropping rows where
// either cell is empty.
func pairRows(records [][]string, i int) ([][]float64, error) {
	var rows [][]float64
	for n, rec := range records {
		if i+1 >= len(rec) {
			continue
		}
		a, b := strings.TrimSpace(rec[i]), strings.TrimSpace(rec[i+1])
		if a == "" || b == "" {
			continue
		}
		x, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", n+3, err)
		}
		y, err := strconv.ParseFloat(b, 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", n+3, err)
		}
		rows = append(rows, []float64{x, y})
	}
	return rows, nil
}
