// Package xray identifies the element and absorption edge targeted by an
// XAS energy scan.
package xray

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed edges.yaml
var edgesYAML []byte

// Edge is an absorption edge, named by its IUPAC symbol (K, L1, ...), with
// its energy in eV.
type Edge struct {
	Name   string
	Energy float64
}

// Edges is an element's edge list, in search order.
type Edges []Edge

// UnmarshalYAML reads a mapping of edge name to energy, keeping the
// document order.
func (es *Edges) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: edges must be a mapping", node.Line)
	}
	out := make(Edges, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var e Edge
		if err := node.Content[i].Decode(&e.Name); err != nil {
			return err
		}
		if err := node.Content[i+1].Decode(&e.Energy); err != nil {
			return fmt.Errorf("edge %s: %w", e.Name, err)
		}
		out = append(out, e)
	}
	*es = out
	return nil
}

// Element is one row of the reference table.
type Element struct {
	Z      int    `yaml:"z"`
	Symbol string `yaml:"symbol"`
	Edges  Edges  `yaml:"edges"`
}

// Edge returns the named edge, if the element has it.
func (el Element) Edge(name string) (Edge, bool) {
	for _, e := range el.Edges {
		if e.Name == name {
			return e, true
		}
	}
	return Edge{}, false
}

// Table is a reference table ordered by atomic number.
type Table []Element

// LoadTable decodes a YAML edge table, checking that atomic numbers
// increase and symbols are unique.
func LoadTable(r io.Reader) (Table, error) {
	var t Table
	if err := yaml.NewDecoder(r).Decode(&t); err != nil {
		return nil, fmt.Errorf("decoding edge table: %w", err)
	}
	seen := make(map[string]bool, len(t))
	for i, el := range t {
		if el.Symbol == "" {
			return nil, fmt.Errorf("element %d has no symbol", el.Z)
		}
		if seen[el.Symbol] {
			return nil, fmt.Errorf("duplicate element %s", el.Symbol)
		}
		seen[el.Symbol] = true
		if i > 0 && el.Z <= t[i-1].Z {
			return nil, fmt.Errorf("element %s (Z=%d) out of order", el.Symbol, el.Z)
		}
	}
	return t, nil
}

var defaultTable = sync.OnceValues(func() (Table, error) {
	return LoadTable(bytes.NewReader(edgesYAML))
})

// DefaultTable returns the embedded table for Z = 1..98.
func DefaultTable() Table {
	t, err := defaultTable()
	if err != nil {
		panic(err)
	}
	return t
}

// Lookup returns the element with the given symbol.
func (t Table) Lookup(symbol string) (Element, bool) {
	for _, el := range t {
		if el.Symbol == symbol {
			return el, true
		}
	}
	return Element{}, false
}
