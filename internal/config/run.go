package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"rejar/internal/spec"
)

const SupportedSchema = "v1"

// LoadRunSpec parses a run YAML, validates schema_version and makes every
// path in it absolute relative to the config file's directory.
func LoadRunSpec(path string) (spec.File, error) {
	var cfg spec.File
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.SchemaVersion == "" {
		cfg.SchemaVersion = SupportedSchema
	}
	if cfg.SchemaVersion != SupportedSchema {
		return cfg, fmt.Errorf("run schema_version %q not supported (want %q)", cfg.SchemaVersion, SupportedSchema)
	}
	Resolve(&cfg, filepath.Dir(path))
	return cfg, nil
}

// Resolve makes the relative paths of cfg absolute against base.
func Resolve(cfg *spec.File, base string) {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}
	for i := range cfg.Sources {
		cfg.Sources[i] = abs(cfg.Sources[i])
	}
	for i := range cfg.Classpath {
		cfg.Classpath[i] = abs(cfg.Classpath[i])
	}
	for i := range cfg.Resources.Pre {
		cfg.Resources.Pre[i].File = abs(cfg.Resources.Pre[i].File)
	}
	for i := range cfg.Resources.Post {
		cfg.Resources.Post[i].File = abs(cfg.Resources.Post[i].File)
	}
	cfg.Destination = abs(cfg.Destination)
	cfg.Report.Kafka = abs(cfg.Report.Kafka)
	cfg.Metrics.Textfile = abs(cfg.Metrics.Textfile)
}

// Validate checks a spec after flags have been merged into it.
func Validate(cfg spec.File) error {
	var errs []error
	if len(cfg.Sources) == 0 {
		errs = append(errs, errors.New("no source archives"))
	}
	switch {
	case cfg.Replace && len(cfg.Sources) != 1:
		errs = append(errs, errors.New("replace needs exactly one source"))
	case cfg.Replace && cfg.Destination != "":
		errs = append(errs, errors.New("replace and destination are mutually exclusive"))
	case !cfg.Replace && cfg.Destination == "":
		errs = append(errs, errors.New("no destination"))
	}
	for i, t := range cfg.Transformers {
		if t.Type == "" {
			errs = append(errs, fmt.Errorf("transformer %d (%s): missing type", i, t.Name))
		}
	}
	for _, r := range append(append([]spec.ResourceSpec(nil), cfg.Resources.Pre...), cfg.Resources.Post...) {
		if r.Name == "" || r.File == "" {
			errs = append(errs, fmt.Errorf("resource %q: name and file are required", r.Name))
		}
	}
	return errors.Join(errs...)
}
