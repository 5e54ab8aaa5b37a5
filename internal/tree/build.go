package tree

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/sync/errgroup"

	"github.com/AI-multimodal/aimm-adapteres/internal/logging"
	"github.com/AI-multimodal/aimm-adapteres/internal/metrics"
	"github.com/AI-multimodal/aimm-adapteres/internal/normalize"
	"github.com/AI-multimodal/aimm-adapteres/labview"
	"github.com/AI-multimodal/aimm-adapteres/xray"
)

// Builder builds trees. Its zero value builds raw trees with default
// parsing, normalization and edge table, parsing one file at a time.
type Builder struct {
	Mode       Mode
	NoDevice   bool
	Options    []labview.Option
	Normalizer *normalize.Normalizer
	Table      xray.Table
	Workers    int
	Memo       *Memo
	Logger     *slog.Logger
	Metrics    *metrics.Metrics

	// Strict makes a file that fails to parse fail the build, rather than
	// being logged and left out.
	Strict bool
}

// IsScanFile reports whether name has a numeric extension, like "Fe.001".
func IsScanFile(name string) bool {
	i := strings.LastIndexByte(name, '.')
	if i < 0 || i == len(name)-1 {
		return false
	}
	for _, r := range name[i+1:] {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// Build reads dir into a tree rooted at a node named for dir.
func (b *Builder) Build(ctx context.Context, dir string) (*Node, error) {
	if b.Memo == nil {
		b.Memo = &Memo{}
	}
	if b.Normalizer == nil {
		b.Normalizer = normalize.Default()
	}
	if b.Table == nil {
		b.Table = xray.DefaultTable()
	}
	if b.Logger == nil {
		b.Logger = logging.Logger()
	}
	root := &Node{Name: filepath.Base(dir)}
	if err := b.dir(ctx, dir, root); err != nil {
		return nil, err
	}
	return root, nil
}

func (b *Builder) dir(ctx context.Context, dir string, node *Node) error {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	type scan struct {
		name, stem, path string
		leaf             *Node
	}
	var scans []scan
	var subdirs []*Node
	for _, ent := range ents {
		name := ent.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		path := filepath.Join(dir, name)
		if ent.IsDir() {
			sub := &Node{Name: name}
			if err := b.dir(ctx, path, sub); err != nil {
				return err
			}
			if len(sub.Children) > 0 {
				subdirs = append(subdirs, sub)
			}
			continue
		}
		if IsScanFile(name) {
			scans = append(scans, scan{name: name, stem: strings.TrimSuffix(name, filepath.Ext(name)), path: path})
		}
	}

	eg, ctx := errgroup.WithContext(ctx)
	workers := b.Workers
	if workers < 1 {
		workers = 1
	}
	eg.SetLimit(workers)
	for i := range scans {
		s := &scans[i]
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			leaf, err := b.leaf(s.path)
			if err != nil {
				return err
			}
			if leaf != nil {
				leaf.Name = s.name
				s.leaf = leaf
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	groups := make(map[string]*Node)
	children := subdirs
	for _, s := range scans {
		g := groups[s.stem]
		if g == nil {
			g = &Node{Name: s.stem}
			groups[s.stem] = g
			children = append(children, g)
		}
		if s.leaf != nil {
			g.Children = append(g.Children, s.leaf)
		}
	}

	node.Children = children[:0]
	for _, c := range children {
		if len(c.Children) > 0 {
			node.Children = append(node.Children, c)
		}
	}
	sort.SliceStable(node.Children, func(i, j int) bool {
		return node.Children[i].Name < node.Children[j].Name
	})
	return nil
}

// leaf builds the leaf for one scan file; a nil leaf is left out.
func (b *Builder) leaf(path string) (*Node, error) {
	noDevice := b.NoDevice || b.Mode == Normalized
	rec, err := b.Memo.Parse(path, noDevice, func() (*labview.Record, error) {
		opts := append(append([]labview.Option(nil), b.Options...), labview.WithNoDevice(noDevice), labview.WithLogger(b.Logger))
		rec, err := labview.ParseFile(path, opts...)
		b.Metrics.Parsed("labview", err)
		if err == nil {
			for _, d := range rec.Diagnostics {
				b.Metrics.Diagnosed(d.Section.String())
			}
		}
		return rec, err
	})
	if err != nil {
		if b.Strict {
			return nil, fmt.Errorf("tree: %w", err)
		}
		b.Logger.Warn("skipping unreadable scan", "file", path, "err", err)
		return nil, nil
	}

	switch b.Mode {
	case Normalized:
		norm, res, ok := b.Normalizer.Record(rec, false)
		if !ok {
			b.Logger.Debug("no energy column", "file", path)
			return nil, nil
		}
		m := b.identify(path, rec, norm)
		return &Node{
			Record: norm,
			Meta: map[string]interface{}{
				"element":     elementMeta(m),
				"common":      map[string]interface{}{"element": elementMeta(m)},
				"translation": res.Translation,
			},
		}, nil

	case Complete:
		std, res, ok := b.Normalizer.Record(rec, true)
		if !ok {
			return &Node{Record: rec, Meta: rec.Meta}, nil
		}
		m := b.identify(path, rec, std)
		meta := make(map[string]interface{}, len(rec.Meta)+4)
		for k, v := range rec.Meta {
			meta[k] = v
		}
		meta["columns"] = std.Columns
		meta["element"] = elementMeta(m)
		meta["common"] = map[string]interface{}{"element": elementMeta(m)}
		meta["translation"] = res.Translation
		return &Node{Record: std, Meta: meta}, nil

	default:
		return &Node{Record: rec, Meta: rec.Meta}, nil
	}
}

func (b *Builder) identify(path string, rec, norm *labview.Record) xray.Match {
	energy, _ := norm.Column("energy")
	m := b.Table.Identify(xray.Query{
		Energy:   energy,
		Comments: rec.Comments(),
		Filename: path,
	})
	b.Metrics.Identified(m.Found())
	b.Logger.Debug("identified", "file", path, "match", m.String())
	return m
}

// elementMeta describes a match, with nil symbol and edge for no match.
func elementMeta(m xray.Match) map[string]interface{} {
	if !m.Found() {
		return map[string]interface{}{"symbol": nil, "edge": nil}
	}
	return map[string]interface{}{"symbol": m.Symbol, "edge": m.Edge}
}
