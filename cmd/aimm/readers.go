package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/AI-multimodal/aimm-adapteres/datfile"
	"github.com/AI-multimodal/aimm-adapteres/electrochem"
	"github.com/AI-multimodal/aimm-adapteres/internal/catalog"
	"github.com/AI-multimodal/aimm-adapteres/jsonxas"
	"github.com/AI-multimodal/aimm-adapteres/xray"
)

func ingestFlags(fs *flag.FlagSet) {
	fs.Bool("ingest", false, "write what was read into the catalog")
	catalogFlags(fs)
}

func init() {
	builtinCommand("electrochem", &command{
		desc:  "read electrochemistry CSV exports",
		usage: "[-ingest] [-catalog DIR] [-dataset NAME] DIR",
		flags: ingestFlags,
		run:   runElectrochem,
	})
	builtinCommand("vasp", &command{
		desc:  "read a VASP simulation collection",
		usage: "[-ingest] [-catalog DIR] [-dataset NAME] DIR|FILE",
		flags: ingestFlags,
		run:   runVASP,
	})
	builtinCommand("eli", &command{
		desc:  "read ELI spectrum JSON files",
		usage: "[-ingest] [-catalog DIR] [-dataset NAME] DIR",
		flags: ingestFlags,
		run:   runELI,
	})
	builtinCommand("dat", &command{
		desc:  "read .dat files",
		usage: "[-ingest] [-catalog DIR] [-dataset NAME] DIR",
		flags: ingestFlags,
		run:   runDat,
	})
}

// listFiles returns the sorted paths of the regular, non-hidden files in
// dir having extension ext.
func listFiles(dir, ext string) ([]string, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, ent := range ents {
		name := ent.Name()
		if ent.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != ext {
			continue
		}
		paths = append(paths, filepath.Join(dir, name))
	}
	sort.Strings(paths)
	return paths, nil
}

// finish prints entries and, under -ingest, writes them into the catalog.
func (env *env) finish(fs *flag.FlagSet, dataset string, entries []catalog.Entry) error {
	for _, e := range entries {
		fmt.Fprintf(env.out, "%s: %d×%d %q\n", e.Key, len(e.Table.Rows), len(e.Table.Columns), e.Table.Columns)
	}
	if !flagBool(fs, "ingest") {
		return nil
	}
	cat, _ := env.catalog(fs, dataset)
	n, err := env.put(context.Background(), cat, entries)
	if err != nil {
		return err
	}
	env.report(dataset, n, len(entries))
	return nil
}

func runElectrochem(env *env, fs *flag.FlagSet, args []string) error {
	if err := needArgs(args, 1, 1, "one DIR"); err != nil {
		return err
	}
	paths, err := listFiles(args[0], ".csv")
	if err != nil {
		return err
	}
	_, dataset := env.catalog(fs, electrochem.Dataset)
	rd := &electrochem.Reader{Samples: env.cfg.Samples, Logger: env.log}
	var entries []catalog.Entry
	for _, path := range paths {
		curves, err := rd.ReadFile(path)
		env.metrics.Parsed("electrochem", err)
		if err != nil {
			return err
		}
		stem := xray.Stem(path)
		for _, c := range curves {
			entries = append(entries, catalog.Entry{
				Container: dataset,
				Key:       stem + "-" + c.Charge.String(),
				Specs:     []string{electrochem.Spec},
				Metadata:  c.Meta,
				Table:     catalog.Table{Columns: c.Columns, Rows: c.Rows},
			})
		}
	}
	return env.finish(fs, dataset, entries)
}

func spectrumEntry(container, key string, sp jsonxas.Spectrum) catalog.Entry {
	return catalog.Entry{
		Container: container,
		Key:       key,
		Specs:     sp.Specs,
		Metadata:  sp.Meta,
		Table:     catalog.Table{Columns: sp.Columns, Rows: sp.Rows},
	}
}

func runVASP(env *env, fs *flag.FlagSet, args []string) error {
	if err := needArgs(args, 1, 1, "one DIR or FILE"); err != nil {
		return err
	}
	path := args[0]
	if info, err := os.Stat(path); err != nil {
		return err
	} else if info.IsDir() {
		path = filepath.Join(path, jsonxas.VASPFile)
	}
	sps, err := jsonxas.ReadVASPFile(path)
	env.metrics.Parsed("vasp", err)
	if err != nil {
		return err
	}
	_, dataset := env.catalog(fs, jsonxas.VASP)
	entries := make([]catalog.Entry, len(sps))
	for i, sp := range sps {
		// simulated spectra have no natural name
		entries[i] = spectrumEntry(dataset, catalog.NewKey(), sp)
	}
	return env.finish(fs, dataset, entries)
}

func runELI(env *env, fs *flag.FlagSet, args []string) error {
	if err := needArgs(args, 1, 1, "one DIR"); err != nil {
		return err
	}
	paths, err := listFiles(args[0], ".json")
	if err != nil {
		return err
	}
	_, dataset := env.catalog(fs, jsonxas.ELI)
	var entries []catalog.Entry
	for _, path := range paths {
		sp, err := jsonxas.ReadSpectrumFile(path)
		env.metrics.Parsed("eli", err)
		if err != nil {
			return err
		}
		entries = append(entries, spectrumEntry(dataset, xray.Stem(path), sp))
	}
	return env.finish(fs, dataset, entries)
}

func runDat(env *env, fs *flag.FlagSet, args []string) error {
	if err := needArgs(args, 1, 1, "one DIR"); err != nil {
		return err
	}
	_, dataset := env.catalog(fs, env.cfg.Dataset)
	files, err := datfile.ReadDir(args[0], dataset)
	env.metrics.Parsed("dat", err)
	if err != nil {
		return err
	}
	stems := make([]string, 0, len(files))
	for stem := range files {
		stems = append(stems, stem)
	}
	sort.Strings(stems)
	entries := make([]catalog.Entry, len(stems))
	for i, stem := range stems {
		f := files[stem]
		entries[i] = catalog.Entry{
			Container: dataset,
			Key:       stem,
			Metadata:  f.Meta,
			Table:     catalog.Table{Columns: f.Columns, Rows: f.Rows},
		}
	}
	return env.finish(fs, dataset, entries)
}
