// Command lvscan prints how the LabVIEW header scanner reads each line of
// its input files: line number, governing section, line kind and text.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/fatih/color"

	"github.com/AI-multimodal/aimm-adapteres/internal/textio"
	"github.com/AI-multimodal/aimm-adapteres/labview"
)

var kindColors = map[labview.LineKind]*color.Color{
	labview.Tag:     color.New(color.FgCyan, color.Bold),
	labview.Content: color.New(color.FgGreen),
	labview.Comment: color.New(color.FgYellow),
	labview.Reset:   color.New(color.FgMagenta),
	labview.Data:    color.New(color.Faint),
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "lvscan: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, in io.Reader, out io.Writer) error {
	fs := flag.NewFlagSet("lvscan", flag.ContinueOnError)
	var (
		verbose bool
		mode    string
	)
	fs.BoolVar(&verbose, "v", false, "also print the grammar rule read for tag and content lines")
	fs.StringVar(&mode, "color", "auto", "color output: auto, always or never")
	if err := fs.Parse(args); err != nil {
		return err
	}
	switch mode {
	case "auto":
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	default:
		return fmt.Errorf("invalid -color %q", mode)
	}

	ew := &textio.ErrWriter{Writer: out}
	if fs.NArg() == 0 {
		if err := scan(ew, in, verbose); err != nil {
			return err
		}
		return ew.Err
	}
	for _, path := range fs.Args() {
		fmt.Fprintf(ew, "# %s\n", path)
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		err = scan(ew, f, verbose)
		f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return ew.Err
}

func scan(w io.Writer, r io.Reader, verbose bool) error {
	sc := labview.NewScanner(r, nil)
	for sc.Scan() {
		label := fmt.Sprintf("%v %v", sc.Section(), sc.Kind())
		if c := kindColors[sc.Kind()]; c != nil {
			label = c.Sprint(label)
		}
		fmt.Fprintf(w, "%d. %s %q\n", sc.Line(), label, sc.Text())

		if !verbose || (sc.Kind() != labview.Tag && sc.Kind() != labview.Content) {
			continue
		}
		width := len(strconv.Itoa(sc.Line())) + 2
		iw := textio.Indent(fmt.Sprintf("%*s", width, ""), w)
		rule := sc.Rule()
		fmt.Fprintf(iw, "rule: %q key=%q kind=%v", rule.Title, rule.Key, rule.Kind)
		if rule.Sep != "" {
			fmt.Fprintf(iw, " sep=%q", rule.Sep)
		}
		fmt.Fprintf(iw, "\nbody: %q\n", sc.Body())
		iw.Close()
	}
	return sc.Err()
}
