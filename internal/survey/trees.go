package survey

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/AI-multimodal/aimm-adapteres/internal/tree"
)

// Node is a report tree node: a branch holding children, or a leaf holding
// a value.
type Node struct {
	Key      string
	Value    string
	Branch   bool
	Children []*Node
}

func (n *Node) child(key string) *Node {
	for _, c := range n.Children {
		if c.Key == key {
			return c
		}
	}
	c := &Node{Key: key, Branch: true}
	n.Children = append(n.Children, c)
	return c
}

func leaf(key string, files []string) *Node {
	return &Node{Key: key, Value: "[" + strings.Join(files, ", ") + "]"}
}

// groupTree mirrors dir: one branch per sub-directory and per experiment
// stem, with group called for each scan to add it to its stem's branch.
func groupTree(dir string, group func(stem *Node, path string) error) (*Node, error) {
	root := &Node{Key: filepath.Base(dir), Branch: true}
	var visit func(dir string, n *Node) error
	visit = func(dir string, n *Node) error {
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
				sub := &Node{Key: name, Branch: true}
				if err := visit(path, sub); err != nil {
					return err
				}
				n.Children = append(n.Children, sub)
				continue
			}
			if !tree.IsScanFile(name) {
				continue
			}
			stem := n.child(strings.TrimSuffix(name, filepath.Ext(name)))
			if err := group(stem, path); err != nil {
				return err
			}
		}
		return nil
	}
	return root, visit(dir, root)
}

// KeywordTree groups each experiment's files by whether they have a column
// named kw: under kw if so, under "None" if not.
func (s *Surveyor) KeywordTree(dir, kw string) (*Node, error) {
	files := make(map[*Node][2][]string)
	root, err := groupTree(dir, func(stem *Node, path string) error {
		cols, _, err := s.columns(path, false)
		if err != nil {
			return err
		}
		fs := files[stem]
		i := 1
		if hasColumn(cols, kw) {
			i = 0
		}
		fs[i] = append(fs[i], filepath.Base(path))
		files[stem] = fs
		return nil
	})
	if err != nil {
		return nil, err
	}
	for stem, fs := range files {
		stem.Children = []*Node{leaf(kw, fs[0]), leaf("None", fs[1])}
	}
	return root, nil
}

// GroupByColumns groups each experiment's files by their column list, so
// that files whose headings changed mid-experiment stand out.
func (s *Surveyor) GroupByColumns(dir string) (*Node, error) {
	type group struct {
		key   string
		files []string
	}
	groups := make(map[*Node][]*group)
	root, err := groupTree(dir, func(stem *Node, path string) error {
		cols, _, err := s.columns(path, false)
		if err != nil {
			return err
		}
		key := "(" + strings.Join(cols, ", ") + ")"
		name := filepath.Base(path)
		for _, g := range groups[stem] {
			if g.key == key {
				g.files = append(g.files, name)
				return nil
			}
		}
		groups[stem] = append(groups[stem], &group{key, []string{name}})
		return nil
	})
	if err != nil {
		return nil, err
	}
	for stem, gs := range groups {
		for _, g := range gs {
			stem.Children = append(stem.Children, leaf(g.key, g.files))
		}
	}
	return root, nil
}
