package main

import (
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"
)

// command is one aimm subcommand.
type command struct {
	desc  string
	usage string // argument synopsis
	run   func(env *env, fs *flag.FlagSet, args []string) error
	flags func(fs *flag.FlagSet)
}

type commandMux map[string]*command

var builtins = commandMux{}

// builtinCommand registers a subcommand; it panics on a repeated name.
func builtinCommand(name string, cmd *command) {
	if builtins[name] != nil {
		panic(fmt.Sprintf("%q command already defined", name))
	}
	builtins[name] = cmd
}

func (mux commandMux) Commands() []string {
	names := make([]string, 0, len(mux)+1)
	for name := range mux {
		names = append(names, name)
	}
	if mux["help"] == nil {
		names = append(names, "help")
	}
	sort.Strings(names)
	return names
}

func (mux commandMux) Describe(name string) string {
	if cmd := mux[name]; cmd != nil {
		return cmd.desc
	}
	if name == "help" {
		return "show the command overview, or help on one command"
	}
	return ""
}

// errUsage marks an error caused by how a command was invoked.
type errUsage struct{ msg string }

func (e errUsage) Error() string { return e.msg }

func usageErrorf(format string, args ...interface{}) error {
	return errUsage{fmt.Sprintf(format, args...)}
}

func (mux commandMux) serve(env *env, args []string) error {
	if len(args) == 0 {
		return mux.serveHelp(env, nil)
	}
	name, args := args[0], args[1:]
	if name == "help" {
		return mux.serveHelp(env, args)
	}
	cmd := mux[name]
	if cmd == nil {
		return usageErrorf("unrecognized command %q", name)
	}

	fs := flag.NewFlagSet(env.prog+" "+name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	if cmd.flags != nil {
		cmd.flags(fs)
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return mux.serveHelp(env, []string{name})
		}
		return usageErrorf("%s: %v", name, err)
	}
	return cmd.run(env, fs, fs.Args())
}

func (mux commandMux) serveHelp(env *env, args []string) error {
	w := env.out
	if len(args) > 0 {
		name := args[0]
		cmd := mux[name]
		if cmd == nil {
			fmt.Fprintf(w, "> %s help %s\nno help available\n", env.prog, name)
			return nil
		}
		fmt.Fprintf(w, "# Usage\n> %s %s", env.prog, name)
		if cmd.usage != "" {
			fmt.Fprintf(w, " %s", cmd.usage)
		}
		fmt.Fprintf(w, "\n\n%s\n", cmd.desc)
		if cmd.flags != nil {
			fs := flag.NewFlagSet(name, flag.ContinueOnError)
			cmd.flags(fs)
			fmt.Fprintf(w, "\n## Flags\n")
			fs.VisitAll(func(f *flag.Flag) {
				fmt.Fprintf(w, "- -%s: %s", f.Name, f.Usage)
				if f.DefValue != "" && f.DefValue != "false" {
					fmt.Fprintf(w, " (default %s)", f.DefValue)
				}
				io.WriteString(w, "\n")
			})
		}
		return nil
	}

	fmt.Fprintf(w, "# Usage\n> %s [flags] command [args...]\n", env.prog)
	fmt.Fprintf(w, "\n## Available Commands\n")
	printAvail(w, mux)
	return nil
}

type commandList interface {
	Commands() []string
	Describe(string) string
}

func printAvail(w io.Writer, cl commandList) bool {
	names := cl.Commands()
	if len(names) == 0 {
		return false
	}
	width := 0
	for _, name := range names {
		if width < len(name) {
			width = len(name)
		}
	}
	for _, name := range names {
		if desc := cl.Describe(name); desc != "" {
			fmt.Fprintf(w, "- % -*s: %s\n", width, name, desc)
		} else {
			fmt.Fprintf(w, "- %s\n", name)
		}
	}
	return true
}

// needArgs checks a command got between min and max arguments; max < 0
// means no upper bound.
func needArgs(args []string, min, max int, what string) error {
	if len(args) < min || (max >= 0 && len(args) > max) {
		return usageErrorf("expected %s, got %q", what, strings.Join(args, " "))
	}
	return nil
}
