package jsonxas

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
)

// ELI is the provenance source id of ELI measurement spectra.
const ELI = "aimm_ncm_eli"

var eliRenames = map[string]string{
	"Energy":  "energy",
	"mu_flat": "mutrans",
}

// ReadSpectrumFile reads an ELI measurement file.
func ReadSpectrumFile(path string) (sp Spectrum, err error) {
	err = readFile(path, func(r io.Reader, fname string) error {
		sp, err = ReadSpectrum(r, fname)
		return err
	})
	return sp, err
}

// ReadSpectrum reads an ELI measurement file named fname. Objects without
// an Energy key are merged into the metadata in order; the object with one
// is the spectrum, its keys being the columns.
func ReadSpectrum(r io.Reader, fname string) (Spectrum, error) {
	var items []object
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return Spectrum{}, fmt.Errorf("%s: %w", fname, err)
	}

	sp := Spectrum{Meta: make(map[string]interface{}), Specs: []string{"XAS"}}
	found := false
	for i := range items {
		item := &items[i]
		if !item.has("Energy") {
			for _, key := range item.keys {
				var v interface{}
				if err := json.Unmarshal(item.values[key], &v); err != nil {
					return Spectrum{}, fmt.Errorf("%s: %q: %w", fname, key, err)
				}
				sp.Meta[key] = v
			}
			continue
		}

		rows, err := columnar(item)
		if err != nil {
			return Spectrum{}, fmt.Errorf("%s: %w", fname, err)
		}
		found = true
		sp.Rows = rows
		sp.Columns = make([]string, len(item.keys))
		translation := make(map[string]string)
		for j, key := range item.keys {
			sp.Columns[j] = key
			if to, ok := eliRenames[key]; ok {
				sp.Columns[j] = to
				translation[to] = key
			}
		}
		sp.Meta["columns"] = append([]string(nil), item.keys...)
		sp.Meta["translation"] = translation
	}
	if !found {
		return Spectrum{}, fmt.Errorf("%s: %w", fname, ErrNoSpectrum)
	}

	voltage, ok := sp.Meta["Voltage"]
	if !ok {
		return Spectrum{}, fmt.Errorf("%s: %w: Voltage", fname, ErrMissingField)
	}
	delete(sp.Meta, "Voltage")
	sp.Meta["voltage"] = voltage
	sp.Meta["fname"] = fname
	sp.Meta["provenance"] = map[string]interface{}{"source_id": ELI}

	name, err := spectrumName(sp.Meta)
	if err != nil {
		return Spectrum{}, fmt.Errorf("%s: %w", fname, err)
	}
	sp.Meta["name"] = name
	return sp, nil
}

// spectrumName formats "<element>-<edge>-cycle<N>-<V.V>V".
func spectrumName(meta map[string]interface{}) (string, error) {
	for _, key := range []string{"element", "edge", "cycle"} {
		if _, ok := meta[key]; !ok {
			return "", fmt.Errorf("%w: %s", ErrMissingField, key)
		}
	}
	cycle, ok := number(meta["cycle"])
	if !ok {
		return "", fmt.Errorf("cycle %v is not a number", meta["cycle"])
	}
	volts, ok := number(meta["voltage"])
	if !ok {
		return "", fmt.Errorf("voltage %v is not a number", meta["voltage"])
	}
	return fmt.Sprintf("%v-%v-cycle%d-%.1fV", meta["element"], meta["edge"], int(math.Trunc(cycle)), volts), nil
}
