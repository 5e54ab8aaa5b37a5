package main

import (
	"flag"
	"fmt"
	"io"
	"path/filepath"

	"github.com/AI-multimodal/aimm-adapteres/internal/survey"
	"github.com/AI-multimodal/aimm-adapteres/jsonxas"
)

func formatFlag(fs *flag.FlagSet) {
	fs.String("format", "text", "output format: text, md or html")
}

func init() {
	builtinCommand("count", &command{
		desc:  "count the scans having a column named KEYWORD",
		usage: "KEYWORD DIR",
		run:   runCount,
	})
	builtinCommand("columns", &command{
		desc:  "list the column names used by energy scans",
		usage: "[-counts] [-format text|md|html] DIR",
		flags: func(fs *flag.FlagSet) {
			fs.Bool("counts", false, "include how many files use each column")
			formatFlag(fs)
		},
		run: runColumns,
	})
	builtinCommand("keywords", &command{
		desc:  "count the object keys of list-shaped JSON files",
		usage: "DIR",
		run:   runKeywords,
	})
	builtinCommand("filetree", &command{
		desc:  "show which scans of each experiment have a KEYWORD column, or group them by column list",
		usage: "[-by-columns] [-format text|md|html] [KEYWORD] DIR",
		flags: func(fs *flag.FlagSet) {
			fs.Bool("by-columns", false, "group by column list instead of by KEYWORD")
			formatFlag(fs)
		},
		run: runFiletree,
	})
}

func (env *env) surveyor() *survey.Surveyor {
	return &survey.Surveyor{Options: env.cfg.Parse.Options()}
}

// render writes a markdown report in the -format asked for; text output
// is written by text.
func (env *env) render(fs *flag.FlagSet, md, text func(io.Writer) error) error {
	switch format := flagString(fs, "format"); format {
	case "text":
		return text(env.out)
	case "md":
		return md(env.out)
	case "html":
		return survey.WriteHTML(env.out, md)
	default:
		return usageErrorf("unknown format %q", format)
	}
}

func runCount(env *env, _ *flag.FlagSet, args []string) error {
	if err := needArgs(args, 2, 2, "KEYWORD and DIR"); err != nil {
		return err
	}
	kw, dir := args[0], args[1]
	count, total, err := env.surveyor().CountKeyword(dir, kw)
	if err != nil {
		return err
	}
	fmt.Fprintf(env.out, "%q: %d of %d files\n", kw, count, total)
	return nil
}

func runColumns(env *env, fs *flag.FlagSet, args []string) error {
	if err := needArgs(args, 1, 1, "one DIR"); err != nil {
		return err
	}
	counts, err := env.surveyor().ColumnCounts(args[0])
	if err != nil {
		return err
	}
	withCounts := flagBool(fs, "counts")
	return env.render(fs,
		func(w io.Writer) error {
			return survey.CountsMarkdown(w, "Columns of "+filepath.Base(args[0]), counts)
		},
		func(w io.Writer) error {
			if !withCounts {
				names, err := env.surveyor().UniqueColumns(args[0])
				if err != nil {
					return err
				}
				for _, name := range names {
					fmt.Fprintln(w, name)
				}
				return nil
			}
			for _, c := range counts {
				fmt.Fprintf(w, "%d\t%s\n", c.Files, c.Name)
			}
			return nil
		})
}

func runKeywords(env *env, _ *flag.FlagSet, args []string) error {
	if err := needArgs(args, 1, 1, "one DIR"); err != nil {
		return err
	}
	paths, err := listFiles(args[0], ".json")
	if err != nil {
		return err
	}
	counts, err := jsonxas.KeywordCounts(paths)
	if err != nil {
		return err
	}
	for _, c := range counts {
		fmt.Fprintf(env.out, "%d\t%s\n", c.Count, c.Key)
	}
	return nil
}

func runFiletree(env *env, fs *flag.FlagSet, args []string) error {
	var (
		root  *survey.Node
		title string
		err   error
	)
	if flagBool(fs, "by-columns") {
		if err := needArgs(args, 1, 1, "one DIR"); err != nil {
			return err
		}
		title = "Column groups of " + filepath.Base(args[0])
		root, err = env.surveyor().GroupByColumns(args[0])
	} else {
		if err := needArgs(args, 2, 2, "KEYWORD and DIR"); err != nil {
			return err
		}
		title = fmt.Sprintf("%q scans of %s", args[0], filepath.Base(args[1]))
		root, err = env.surveyor().KeywordTree(args[1], args[0])
	}
	if err != nil {
		return err
	}
	return env.render(fs,
		func(w io.Writer) error { return survey.TreeMarkdown(w, title, root) },
		func(w io.Writer) error { return survey.RenderTree(w, root) })
}
