package jsonxas

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// VASP names the simulated NMC collection, both as its catalog container
// and its dataset.
const VASP = "nmc_sim_vasp"

// VASPFile is the file name the collection is distributed as.
const VASPFile = "nmc_vasp_xas.json"

const vaspSchema = `{
  "type": "object",
  "required": ["energy", "intensity", "composition"],
  "properties": {
    "energy":    {"$ref": "#/definitions/series"},
    "intensity": {"$ref": "#/definitions/series"},
    "composition": {
      "type": "object",
      "additionalProperties": {"type": "string"}
    },
    "absorbing_atom_idx": {"type": "object"},
    "bond_length":        {"type": "object"},
    "oxidation_state":    {"type": "object"},
    "structure":          {"type": "object"}
  },
  "definitions": {
    "series": {
      "type": "object",
      "additionalProperties": {"type": "array", "items": {"type": "number"}}
    }
  }
}`

var vaspMetaKeys = []string{"absorbing_atom_idx", "bond_length", "oxidation_state", "structure"}

// SchemaError reports a document that does not have the collection's shape.
type SchemaError struct {
	File    string
	Reasons []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: not a VASP collection: %s", e.File, strings.Join(e.Reasons, "; "))
}

// ReadVASPFile reads the simulated collection at path.
func ReadVASPFile(path string) (sps []Spectrum, err error) {
	err = readFile(path, func(r io.Reader, fname string) error {
		sps, err = ReadVASP(r, fname)
		return err
	})
	return sps, err
}

// ReadVASP reads the simulated collection, one spectrum per index in
// numeric index order.
func ReadVASP(r io.Reader, fname string) ([]Spectrum, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	res, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(vaspSchema),
		gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fname, err)
	}
	if !res.Valid() {
		se := &SchemaError{File: fname}
		for _, re := range res.Errors() {
			se.Reasons = append(se.Reasons, re.String())
		}
		return nil, se
	}

	var doc map[string]map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%s: %w", fname, err)
	}

	indices := make([]int, 0, len(doc["energy"]))
	for key := range doc["energy"] {
		i, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("%s: energy index %q is not a number", fname, key)
		}
		indices = append(indices, i)
	}
	sort.Ints(indices)

	sps := make([]Spectrum, 0, len(indices))
	for _, i := range indices {
		key := strconv.Itoa(i)
		var energy, intensity []float64
		if err := json.Unmarshal(doc["energy"][key], &energy); err != nil {
			return nil, fmt.Errorf("%s: energy[%s]: %w", fname, key, err)
		}
		if err := json.Unmarshal(doc["intensity"][key], &intensity); err != nil {
			return nil, fmt.Errorf("%s: intensity[%s]: %w", fname, key, err)
		}
		if len(energy) != len(intensity) {
			return nil, fmt.Errorf("%s: spectrum %s has %d energies and %d intensities", fname, key, len(energy), len(intensity))
		}
		var composition string
		if err := json.Unmarshal(doc["composition"][key], &composition); err != nil {
			return nil, fmt.Errorf("%s: %w: composition[%s]", fname, ErrMissingField, key)
		}

		meta := map[string]interface{}{
			"dataset":  VASP,
			"fname":    fname,
			"facility": map[string]interface{}{"name": "CNM"},
			"beamline": map[string]interface{}{"name": "Simulation"},
			"sample":   map[string]interface{}{"name": composition},
		}
		for _, name := range vaspMetaKeys {
			v, ok := doc[name][key]
			if !ok {
				continue
			}
			var x interface{}
			if err := json.Unmarshal(v, &x); err != nil {
				return nil, fmt.Errorf("%s: %s[%s]: %w", fname, name, key, err)
			}
			meta[name] = x
		}

		rows := make([][]float64, len(energy))
		for j := range energy {
			rows[j] = []float64{energy[j], intensity[j]}
		}
		sps = append(sps, Spectrum{
			Columns: []string{"energy", "intensity"},
			Rows:    rows,
			Meta:    meta,
			Specs:   []string{"simulation"},
		})
	}
	return sps, nil
}
