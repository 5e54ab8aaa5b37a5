package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"

	"github.com/AI-multimodal/aimm-adapteres/internal/catalog"
	"github.com/AI-multimodal/aimm-adapteres/internal/normalize"
	"github.com/AI-multimodal/aimm-adapteres/internal/tree"
	"github.com/AI-multimodal/aimm-adapteres/labview"
	"github.com/AI-multimodal/aimm-adapteres/xray"
)

func init() {
	builtinCommand("parse", &command{
		desc:  "parse LabVIEW scan files, printing a summary of each",
		usage: "[-json] [-no-device] FILE...",
		flags: func(fs *flag.FlagSet) {
			fs.Bool("json", false, "print each record as JSON")
			fs.Bool("no-device", false, "strip device prefixes from column names")
		},
		run: runParse,
	})
	builtinCommand("identify", &command{
		desc:  "identify the element and absorption edge each scan measured",
		usage: "FILE...",
		run:   runIdentify,
	})
	builtinCommand("tree", &command{
		desc:  "print the scan tree of a directory",
		usage: "[-mode raw|normalized|complete] DIR",
		flags: func(fs *flag.FlagSet) {
			fs.String("mode", tree.Raw.String(), "leaf mode")
		},
		run: runTree,
	})
	builtinCommand("ingest", &command{
		desc:  "write the identified scans of a directory into the catalog",
		usage: "[-catalog DIR] [-dataset NAME] DIR",
		flags: catalogFlags,
		run:   runIngest,
	})
}

func catalogFlags(fs *flag.FlagSet) {
	fs.String("catalog", "", "catalog directory (default from config)")
	fs.String("dataset", "", "dataset container name (default from config)")
}

func flagString(fs *flag.FlagSet, name string) string {
	if f := fs.Lookup(name); f != nil {
		return f.Value.String()
	}
	return ""
}

func flagBool(fs *flag.FlagSet, name string) bool {
	return flagString(fs, name) == "true"
}

func (env *env) parseOptions(noDevice bool) []labview.Option {
	opts := env.cfg.Parse.Options()
	if noDevice {
		opts = append(opts, labview.WithNoDevice(true))
	}
	return append(opts, labview.WithLogger(env.log))
}

// parseFile parses path through the memo; metrics count each file once,
// however often it is asked for.
func (env *env) parseFile(path string, noDevice bool) (*labview.Record, error) {
	return env.memo.Parse(path, noDevice || env.cfg.Parse.NoDevice, func() (*labview.Record, error) {
		rec, err := labview.ParseFile(path, env.parseOptions(noDevice)...)
		env.metrics.Parsed("labview", err)
		if err == nil {
			for _, d := range rec.Diagnostics {
				env.metrics.Diagnosed(d.Section.String())
			}
		}
		return rec, err
	})
}

type recordJSON struct {
	File        string                 `json:"file"`
	Columns     []string               `json:"columns"`
	Rows        [][]float64            `json:"rows"`
	Metadata    map[string]interface{} `json:"metadata"`
	Diagnostics []diagnosticJSON       `json:"diagnostics,omitempty"`
}

type diagnosticJSON struct {
	Line     int    `json:"line"`
	Section  string `json:"section"`
	Fragment string `json:"fragment"`
	Message  string `json:"message"`
}

func runParse(env *env, fs *flag.FlagSet, args []string) error {
	if err := needArgs(args, 1, -1, "at least one FILE"); err != nil {
		return err
	}
	asJSON := flagBool(fs, "json")
	enc := json.NewEncoder(env.out)
	enc.SetIndent("", "  ")
	for _, path := range args {
		rec, err := env.parseFile(path, flagBool(fs, "no-device"))
		if err != nil {
			return err
		}
		if !asJSON {
			fmt.Fprintf(env.out, "%s: %+v\n", path, rec)
			continue
		}
		out := recordJSON{
			File:     path,
			Columns:  rec.Columns,
			Rows:     rec.Rows,
			Metadata: rec.Meta,
		}
		for _, d := range rec.Diagnostics {
			out.Diagnostics = append(out.Diagnostics, diagnosticJSON{d.Line, d.Section.String(), d.Fragment, d.Message})
		}
		if err := enc.Encode(out); err != nil {
			return err
		}
	}
	return nil
}

func runIdentify(env *env, _ *flag.FlagSet, args []string) error {
	if err := needArgs(args, 1, -1, "at least one FILE"); err != nil {
		return err
	}
	for _, path := range args {
		rec, err := env.parseFile(path, true)
		if err != nil {
			return err
		}
		energy, _ := rec.Column(normalize.EnergyColumn)
		m := xray.Identify(xray.Query{
			Energy:   energy,
			Comments: rec.Comments(),
			Filename: path,
		})
		env.metrics.Identified(m.Found())
		if m.Found() {
			fmt.Fprintf(env.out, "%s: %v (%g eV)\n", path, m, m.Energy)
		} else {
			fmt.Fprintf(env.out, "%s: %v\n", path, m)
		}
	}
	return nil
}

func (env *env) builder(mode tree.Mode) *tree.Builder {
	return &tree.Builder{
		Mode:       mode,
		NoDevice:   env.cfg.Parse.NoDevice,
		Options:    env.cfg.Parse.Options(),
		Normalizer: env.cfg.Normalizer(),
		Workers:    env.cfg.Workers,
		Memo:       env.memo,
		Logger:     env.log,
		Metrics:    env.metrics,
	}
}

func runTree(env *env, fs *flag.FlagSet, args []string) error {
	if err := needArgs(args, 1, 1, "one DIR"); err != nil {
		return err
	}
	mode, err := tree.ParseMode(flagString(fs, "mode"))
	if err != nil {
		return usageErrorf("tree: %v", err)
	}
	root, err := env.builder(mode).Build(context.Background(), args[0])
	if err != nil {
		return err
	}
	return root.Print(env.out)
}

// catalog returns the catalog named by the -catalog flag or the config,
// and the dataset container to write into.
func (env *env) catalog(fs *flag.FlagSet, dataset string) (*catalog.Dir, string) {
	root := flagString(fs, "catalog")
	if root == "" {
		root = env.cfg.CatalogDir
	}
	if ds := flagString(fs, "dataset"); ds != "" {
		dataset = ds
	}
	return &catalog.Dir{Root: root}, dataset
}

// put writes entries, skipping those already present. It returns how many
// were written.
func (env *env) put(ctx context.Context, cat catalog.Catalog, entries []catalog.Entry) (int, error) {
	n := 0
	for _, e := range entries {
		key, err := cat.Put(ctx, e)
		if errors.Is(err, catalog.ErrExists) {
			env.log.Info("already in catalog", "container", e.Container, "key", e.Key)
			continue
		}
		if err != nil {
			return n, err
		}
		env.metrics.Wrote(e.Container)
		env.log.Debug("wrote", "container", e.Container, "key", key)
		n++
	}
	return n, nil
}

func (env *env) report(dataset string, written, total int) {
	fmt.Fprintf(env.out, "%s: wrote %d of %d entries\n", dataset, written, total)
}

func runIngest(env *env, fs *flag.FlagSet, args []string) error {
	if err := needArgs(args, 1, 1, "one DIR"); err != nil {
		return err
	}
	cat, dataset := env.catalog(fs, env.cfg.Dataset)
	ctx := context.Background()
	root, err := env.builder(tree.Complete).Build(ctx, args[0])
	if err != nil {
		return err
	}
	entries := tree.Collect(root, dataset)
	n, err := env.put(ctx, cat, entries)
	if err != nil {
		return err
	}
	env.report(dataset, n, len(entries))
	return nil
}
