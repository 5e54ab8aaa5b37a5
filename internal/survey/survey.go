// Package survey holds exploratory reports over a directory of LabVIEW
// scans: which column names occur, how often, and which files share them.
package survey

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/AI-multimodal/aimm-adapteres/internal/normalize"
	"github.com/AI-multimodal/aimm-adapteres/internal/tree"
	"github.com/AI-multimodal/aimm-adapteres/labview"
)

// Surveyor reads column headings under a directory.
type Surveyor struct {
	Options []labview.Option
}

func (s *Surveyor) columns(path string, noDevice bool) (cols []string, width int, rerr error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer func() {
		if cerr := f.Close(); rerr == nil {
			rerr = cerr
		}
	}()
	opts := append(append([]labview.Option(nil), s.Options...), labview.WithNoDevice(noDevice))
	return labview.ParseColumns(f, opts...)
}

// walk calls fn for each scan file under dir, depth first in name order,
// skipping dot files.
func walk(dir string, fn func(path string) error) error {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, ent := range ents {
		name := ent.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		path := filepath.Join(dir, name)
		if ent.IsDir() {
			err = walk(path, fn)
		} else if tree.IsScanFile(name) {
			err = fn(path)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func hasColumn(cols []string, name string) bool {
	for _, col := range cols {
		if col == name {
			return true
		}
	}
	return false
}

// CountKeyword returns how many scan files have a column named kw, out of
// the total number of scan files.
func (s *Surveyor) CountKeyword(dir, kw string) (count, total int, err error) {
	err = walk(dir, func(path string) error {
		cols, _, err := s.columns(path, false)
		if err != nil {
			return err
		}
		if hasColumn(cols, kw) {
			count++
		}
		total++
		return nil
	})
	return count, total, err
}

// Count is a column name and the number of files using it.
type Count struct {
	Name  string
	Files int
}

// ColumnCounts counts, over scans with an energy column and at least one
// data row, the files using each device-stripped column name. The most
// used come first.
func (s *Surveyor) ColumnCounts(dir string) ([]Count, error) {
	files := make(map[string]int)
	err := walk(dir, func(path string) error {
		cols, width, err := s.columns(path, true)
		if err != nil {
			return err
		}
		if width == 0 || !hasColumn(cols, normalize.EnergyColumn) {
			return nil
		}
		seen := make(map[string]bool, len(cols))
		for _, col := range cols {
			if !seen[col] {
				seen[col] = true
				files[col]++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	counts := make([]Count, 0, len(files))
	for name, n := range files {
		counts = append(counts, Count{name, n})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Files != counts[j].Files {
			return counts[i].Files > counts[j].Files
		}
		return counts[i].Name < counts[j].Name
	})
	return counts, nil
}

// UniqueColumns returns the sorted column names ColumnCounts would count.
func (s *Surveyor) UniqueColumns(dir string) ([]string, error) {
	counts, err := s.ColumnCounts(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(counts))
	for i, c := range counts {
		names[i] = c.Name
	}
	sort.Strings(names)
	return names, nil
}
