// Package config loads the adapters' YAML configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/AI-multimodal/aimm-adapteres/electrochem"
	"github.com/AI-multimodal/aimm-adapteres/internal/logging"
	"github.com/AI-multimodal/aimm-adapteres/internal/normalize"
	"github.com/AI-multimodal/aimm-adapteres/labview"
)

// Fixup is a column heading substitution.
type Fixup struct {
	Old string `yaml:"old"`
	New string `yaml:"new"`
}

// Parse configures LabVIEW parsing.
type Parse struct {
	NoDevice    bool     `yaml:"no_device"`
	DeviceNames []string `yaml:"device_names"`
	Fixups      []Fixup  `yaml:"fixups"`
}

// Options returns the parse options the receiver describes.
func (p Parse) Options() []labview.Option {
	fixups := make([]labview.Fixup, len(p.Fixups))
	for i, f := range p.Fixups {
		fixups[i] = labview.Fixup{Old: f.Old, New: f.New}
	}
	return []labview.Option{
		labview.WithNoDevice(p.NoDevice),
		labview.WithDeviceNames(p.DeviceNames),
		labview.WithFixups(fixups),
	}
}

// Config is the adapters' configuration.
type Config struct {
	Dataset    string `yaml:"dataset"`
	SourceDir  string `yaml:"source_dir"`
	CatalogDir string `yaml:"catalog_dir"`
	LogLevel   string `yaml:"log_level"`
	Workers    int    `yaml:"workers"`

	Parse    Parse                         `yaml:"parse"`
	Channels []normalize.Channel           `yaml:"channels"`
	Samples  map[string]electrochem.Sample `yaml:"samples"`
}

// Default returns the built in configuration.
func Default() *Config {
	fixups := make([]Fixup, len(labview.DefaultFixups))
	for i, f := range labview.DefaultFixups {
		fixups[i] = Fixup{Old: f.Old, New: f.New}
	}
	samples := make(map[string]electrochem.Sample, len(electrochem.DefaultSamples))
	for name, s := range electrochem.DefaultSamples {
		samples[name] = s
	}
	return &Config{
		Dataset:    "heald",
		SourceDir:  ".",
		CatalogDir: "catalog",
		LogLevel:   "info",
		Workers:    runtime.GOMAXPROCS(0),
		Parse: Parse{
			DeviceNames: append([]string(nil), labview.DefaultDeviceNames...),
			Fixups:      fixups,
		},
		Channels: append([]normalize.Channel(nil), normalize.DefaultChannels...),
		Samples:  samples,
	}
}

// Load reads the YAML file at path over the defaults. Unknown keys are an
// error.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode reads YAML from r over the defaults.
func Decode(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// Validate checks the receiver for values no command could use.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	for _, ch := range c.Channels {
		if ch.Name == "" || len(ch.Aliases) == 0 {
			return fmt.Errorf("channel %q needs a name and at least one alias", ch.Name)
		}
	}
	return nil
}

// Normalizer returns a normalizer over the configured channels.
func (c *Config) Normalizer() *normalize.Normalizer {
	n := normalize.Default()
	n.Channels = c.Channels
	return n
}

// Environment variables read by ApplyEnv.
const (
	EnvDataset    = "AIMM_DATASET"
	EnvCatalogDir = "AIMM_CATALOG_DIR"
	EnvLogLevel   = "AIMM_LOG_LEVEL"
	EnvWorkers    = "AIMM_WORKERS"
)

// ApplyEnv overrides settings from the environment, as seen through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv(EnvDataset); v != "" {
		c.Dataset = v
	}
	if v := getenv(EnvCatalogDir); v != "" {
		c.CatalogDir = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := getenv(EnvWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvWorkers, err)
		}
		c.Workers = n
	}
	return c.Validate()
}

// LoadEnvFile reads a dotenv file for use with ApplyEnv, values already set
// in the process environment taking precedence. A missing file yields an
// empty environment.
func LoadEnvFile(path string) (func(string) string, error) {
	vars, err := godotenv.Read(path)
	if errors.Is(err, os.ErrNotExist) {
		vars = nil
	} else if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return vars[key]
	}, nil
}
