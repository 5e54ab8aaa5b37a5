package xray

import (
	"path/filepath"
	"strings"
)

// Query is what is known about one scan.
type Query struct {
	Energy   []float64
	Comments []string
	Filename string
}

// Match is an identified element and edge. Its zero value means no match.
type Match struct {
	Z      int
	Symbol string
	Edge   string
	Energy float64
}

// Found reports whether the receiver identifies an element.
func (m Match) Found() bool { return m.Symbol != "" }

func (m Match) String() string {
	if !m.Found() {
		return "no match"
	}
	return m.Symbol + " " + m.Edge
}

// Identify runs Query against the embedded table.
func Identify(q Query) Match { return DefaultTable().Identify(q) }

// Candidates returns, in table order, each element having an edge within
// [lo, hi]: its K edge when that is in range, otherwise its first edge that
// is.
func (t Table) Candidates(lo, hi float64) []Match {
	var out []Match
	inRange := func(e Edge) bool { return e.Energy >= lo && e.Energy <= hi }
	for _, el := range t {
		if k, ok := el.Edge("K"); ok && inRange(k) {
			out = append(out, Match{el.Z, el.Symbol, k.Name, k.Energy})
			continue
		}
		for _, e := range el.Edges {
			if inRange(e) {
				out = append(out, Match{el.Z, el.Symbol, e.Name, e.Energy})
				break
			}
		}
	}
	return out
}

// Identify picks the scanned element among the candidates for the scan's
// energy range.
//
// Each comment line names at most one new candidate: the first, in table
// order, whose symbol it contains. A line also containing "iref" marks the
// candidate it names as the reference channel. When no comment names a
// candidate, candidates whose symbol occurs in the file stem are taken
// instead. Several picks are resolved by dropping the reference channel,
// then by keeping those named in the file stem; anything other than a
// single survivor is no match.
func (t Table) Identify(q Query) Match {
	if len(q.Energy) < 2 {
		return Match{}
	}
	lo, hi := q.Energy[0], q.Energy[0]
	for _, e := range q.Energy[1:] {
		if e < lo {
			lo = e
		}
		if e > hi {
			hi = e
		}
	}

	cands := t.Candidates(lo, hi)
	if len(cands) == 0 {
		return Match{}
	}

	var (
		picked = make([]bool, len(cands))
		picks  []int
		ref    = -1
	)
	for _, line := range q.Comments {
		for i, c := range cands {
			if !strings.Contains(line, c.Symbol) {
				continue
			}
			if strings.Contains(line, "iref") {
				ref = i
			}
			if !picked[i] {
				picked[i] = true
				picks = append(picks, i)
				break
			}
		}
	}

	stem := Stem(q.Filename)
	if len(picks) == 0 {
		for i, c := range cands {
			if strings.Contains(stem, c.Symbol) {
				picks = append(picks, i)
			}
		}
	}
	if len(picks) == 1 {
		return cands[picks[0]]
	}
	if len(picks) == 0 {
		return Match{}
	}

	if ref >= 0 && picked[ref] {
		rest := picks[:0:0]
		for _, i := range picks {
			if i != ref {
				rest = append(rest, i)
			}
		}
		if len(rest) == 1 {
			return cands[rest[0]]
		}
		picks = rest
	}

	var named []int
	for _, i := range picks {
		if strings.Contains(stem, cands[i].Symbol) {
			named = append(named, i)
		}
	}
	if len(named) == 1 {
		return cands[named[0]]
	}
	return Match{}
}

// Stem returns the base name of path without its final extension, so
// "runs/Fe_foil.001" has stem "Fe_foil".
func Stem(path string) string {
	base := filepath.Base(path)
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}
