package driver

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/gnoswap-labs/litmus/internal/alloy"
	"github.com/gnoswap-labs/litmus/internal/emitter"
)

// DefaultConfigFile is looked up in the working directory when no
// configuration path is given.
const DefaultConfigFile = ".litmus.yaml"

// Config is the project configuration read from .litmus.yaml.
type Config struct {
	Name string `yaml:"name"`
	// Model is the path of the Alloy memory model every test is emitted
	// against.
	Model string `yaml:"model"`
	// Checker is the shell-style command line of the checker wrapper.
	// The LITMUS_CHECKER environment variable overrides it.
	Checker  string `yaml:"checker"`
	Marker   string `yaml:"marker"`
	Bound    Bound  `yaml:"bound"`
	CacheDir string `yaml:"cache_dir,omitempty"`
	Jobs     int    `yaml:"jobs"`
}

// Bound is the search bound shared by every emitted query.
type Bound struct {
	Scope   int `yaml:"scope"`
	IntBits int `yaml:"int_bits"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		Name:    "litmus",
		Model:   "alloy/ptx.als",
		Checker: alloy.DefaultChecker,
		Marker:  emitter.DefaultMarker,
		Bound: Bound{
			Scope:   emitter.DefaultScope,
			IntBits: emitter.DefaultIntBits,
		},
		Jobs: runtime.NumCPU(),
	}
}

// ParseConfigurationFile reads path over the defaults. A missing file
// yields the defaults; fields absent from the file keep theirs.
func ParseConfigurationFile(path string) (Config, error) {
	config := DefaultConfig()
	if path == "" {
		path = DefaultConfigFile
	}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return config, err
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(&config); err != nil {
		return config, fmt.Errorf("error parsing %s: %w", path, err)
	}
	if err := config.validate(); err != nil {
		return config, fmt.Errorf("error in %s: %w", path, err)
	}
	return config, nil
}

func (c Config) validate() error {
	switch {
	case c.Bound.Scope < 1:
		return fmt.Errorf("bound.scope must be at least 1, got %d", c.Bound.Scope)
	case c.Bound.IntBits < 2:
		return fmt.Errorf("bound.int_bits must be at least 2, got %d", c.Bound.IntBits)
	case c.Jobs < 0:
		return fmt.Errorf("jobs must not be negative, got %d", c.Jobs)
	}
	return nil
}

// WriteConfigurationFile writes config to path as YAML.
func WriteConfigurationFile(path string, config Config) error {
	if path == "" {
		path = DefaultConfigFile
	}

	d, err := yaml.Marshal(config)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(d)
	return err
}
