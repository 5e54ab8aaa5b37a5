// Command aimm reads beamline, simulation and electrochemistry exports,
// identifies what was measured, and writes the results into a catalog.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/AI-multimodal/aimm-adapteres/internal/config"
	"github.com/AI-multimodal/aimm-adapteres/internal/logging"
	"github.com/AI-multimodal/aimm-adapteres/internal/metrics"
	"github.com/AI-multimodal/aimm-adapteres/internal/textio"
	"github.com/AI-multimodal/aimm-adapteres/internal/tree"
)

// configName is looked for in the working directory and its parents when
// no -config is given.
const configName = "aimm.yaml"

type env struct {
	prog    string
	cfg     *config.Config
	log     *slog.Logger
	metrics *metrics.Metrics
	memo    *tree.Memo
	mux     commandMux
	out     io.Writer
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	var (
		configPath  string
		envPath     string
		logLevel    string
		metricsFile string
	)
	fs := flag.NewFlagSet("aimm", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&configPath, "config", "", "YAML configuration file (default: nearest "+configName+")")
	fs.StringVar(&envPath, "env", ".env", "dotenv file of AIMM_* overrides")
	fs.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")
	fs.StringVar(&metricsFile, "metrics-file", "", "write prometheus metrics to this file on exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := loadConfig(configPath, envPath)
	if err == nil && logLevel != "" {
		cfg.LogLevel = logLevel
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintf(stderr, "aimm: %v\n", err)
		return 2
	}
	level, _ := logging.ParseLevel(cfg.LogLevel)
	log := logging.New(stderr, level)
	logging.SetLogger(log)

	env := &env{
		prog:    "aimm",
		cfg:     cfg,
		log:     log,
		metrics: metrics.New(),
		memo:    &tree.Memo{},
		mux:     builtins,
		out:     stdout,
	}

	err = env.mux.serve(env, fs.Args())
	if metricsFile != "" {
		if merr := env.metrics.WriteFile(metricsFile); merr != nil {
			log.Error("writing metrics", "file", metricsFile, "err", merr)
		}
	}

	var ue errUsage
	switch {
	case err == nil:
		return 0
	case errors.As(err, &ue):
		fmt.Fprintf(stderr, "aimm: %v (see %q)\n", err, "aimm help")
		return 2
	default:
		log.Error("command failed", "cmd", textio.QuoteArgs(fs.Args()), "err", err)
		return 1
	}
}

func loadConfig(path, envPath string) (*config.Config, error) {
	if path == "" {
		found, err := textio.FindUp(".", configName)
		if err != nil {
			return nil, err
		}
		path = found
	}
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}
	getenv, err := config.LoadEnvFile(envPath)
	if err != nil {
		return nil, err
	}
	return cfg, cfg.ApplyEnv(getenv)
}
