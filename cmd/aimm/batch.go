package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/AI-multimodal/aimm-adapteres/internal/textio"
)

func init() {
	builtinCommand("batch", &command{
		desc:  "run the commands listed in FILE, one per line",
		usage: "[-keep-going] FILE",
		flags: func(fs *flag.FlagSet) {
			fs.Bool("keep-going", false, "run later commands after one fails")
		},
		run: runBatch,
	})
}

func runBatch(env *env, fs *flag.FlagSet, args []string) (rerr error) {
	if err := needArgs(args, 1, 1, "one FILE"); err != nil {
		return err
	}
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); rerr == nil {
			rerr = cerr
		}
	}()

	keepGoing := flagBool(fs, "keep-going")
	failed := 0
	sc := bufio.NewScanner(f)
	for lineno := 1; sc.Scan(); lineno++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		cmdArgs, err := textio.SplitArgs(line)
		if err != nil {
			return fmt.Errorf("%s:%d: %w", args[0], lineno, err)
		}
		if cmdArgs[0] == "batch" {
			return fmt.Errorf("%s:%d: batch files may not run batch", args[0], lineno)
		}
		env.log.Info("batch", "line", lineno, "cmd", textio.QuoteArgs(cmdArgs))
		if err := env.mux.serve(env, cmdArgs); err != nil {
			if !keepGoing {
				return fmt.Errorf("%s:%d: %w", args[0], lineno, err)
			}
			env.log.Error("batch command failed", "line", lineno, "err", err)
			failed++
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%s: %d commands failed", args[0], failed)
	}
	return nil
}
