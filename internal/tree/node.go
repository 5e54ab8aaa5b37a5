// Package tree presents a directory of LabVIEW scans as a tree of nodes:
// directories, then experiment groups of files sharing a stem, then one
// leaf per scan file.
package tree

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/AI-multimodal/aimm-adapteres/labview"
)

// Mode selects what a leaf holds.
type Mode int

const (
	// Raw leaves hold the parsed record and its header metadata.
	Raw Mode = iota
	// Normalized leaves hold the energy and channel columns only, with
	// element and translation metadata. Files lacking an energy column
	// are left out.
	Normalized
	// Complete leaves hold every column under standardized names plus the
	// header, element and translation metadata, falling back to the raw
	// record when there is no energy column.
	Complete
)

var modeNames = map[Mode]string{
	Raw:        "raw",
	Normalized: "normalized",
	Complete:   "complete",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode maps a mode name to its Mode.
func ParseMode(name string) (Mode, error) {
	for m, n := range modeNames {
		if n == name {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown tree mode %q", name)
}

// Node is a tree node. Containers have Children; leaves have a Record.
type Node struct {
	Name     string
	Children []*Node
	Record   *labview.Record
	Meta     map[string]interface{}
}

// IsLeaf reports whether n holds a record.
func (n *Node) IsLeaf() bool { return n.Record != nil }

// Child returns the named child, if any.
func (n *Node) Child(name string) *Node {
	i := sort.Search(len(n.Children), func(i int) bool { return n.Children[i].Name >= name })
	if i < len(n.Children) && n.Children[i].Name == name {
		return n.Children[i]
	}
	return nil
}

// Lookup follows a path of child names.
func (n *Node) Lookup(path ...string) *Node {
	for _, name := range path {
		if n = n.Child(name); n == nil {
			return nil
		}
	}
	return n
}

// Walk calls fn for every leaf below n, in name order, with the path of
// names leading to it from n.
func (n *Node) Walk(fn func(path []string, leaf *Node) error) error {
	return n.walk(nil, fn)
}

func (n *Node) walk(path []string, fn func([]string, *Node) error) error {
	for _, c := range n.Children {
		p := append(path[:len(path):len(path)], c.Name)
		if c.IsLeaf() {
			if err := fn(p, c); err != nil {
				return err
			}
			continue
		}
		if err := c.walk(p, fn); err != nil {
			return err
		}
	}
	return nil
}

// Print writes an indented outline of n: containers by name, leaves by
// name and record summary.
func (n *Node) Print(w io.Writer) error {
	return n.print(w, 0)
}

func (n *Node) print(w io.Writer, depth int) error {
	for _, c := range n.Children {
		indent := strings.Repeat("  ", depth)
		var err error
		if c.IsLeaf() {
			_, err = fmt.Fprintf(w, "%s%s %v\n", indent, c.Name, c.Record)
		} else {
			_, err = fmt.Fprintf(w, "%s%s/\n", indent, c.Name)
		}
		if err != nil {
			return err
		}
		if err := c.print(w, depth+1); err != nil {
			return err
		}
	}
	return nil
}
