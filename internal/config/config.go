// Package config loads the vixc.yaml configuration file: target descriptor
// overrides, the C compiler to drive, and the diagnostic engine's error
// budget. Kept deliberately small — most of the pipeline's behavior is
// driven by CLI flags and the input AST, not a config file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the decoded shape of a vixc.yaml file. Every field is optional;
// zero values mean "use the built-in default."
type Config struct {
	Target      string   `yaml:"target"`
	CC          string   `yaml:"cc"`
	MaxErrors   int      `yaml:"max_errors"`
	ExtraLibs   []string `yaml:"extra_libs"`
	OutputName  string   `yaml:"output_name"`
	ManifestDir string   `yaml:"manifest_dir"`
}

// Default returns the configuration used when no vixc.yaml is present.
func Default() Config {
	return Config{
		Target:     "x86_64",
		CC:         "clang",
		MaxErrors:  100,
		OutputName: "a.out",
	}
}

// Load reads and decodes the YAML config at path, filling in defaults for
// any field the file leaves zero.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.MaxErrors <= 0 {
		cfg.MaxErrors = 100
	}
	if cfg.CC == "" {
		cfg.CC = "clang"
	}
	if cfg.Target == "" {
		cfg.Target = "x86_64"
	}
	if cfg.OutputName == "" {
		cfg.OutputName = "a.out"
	}
	return cfg, nil
}
