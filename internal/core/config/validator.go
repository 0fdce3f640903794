package config

import (
	"strings"
	"time"

	"cppuml/internal/core/errors"

	"github.com/gobwas/glob"
)

var supportedFormats = map[string]bool{
	"svg": true, "png": true, "pdf": true, "dot": true, "gv": true, "jpg": true,
}

var supportedLayouts = map[string]bool{
	"dot": true, "neato": true, "fdp": true, "sfdp": true, "circo": true, "twopi": true,
}

// Validate checks cfg after defaults have been applied.
func Validate(cfg *Config) error {
	for _, check := range []func(*Config) error{
		validateVersion,
		validatePaths,
		validateOutput,
		validateExclude,
		validateHistory,
		validateWatch,
	} {
		if err := check(cfg); err != nil {
			return err
		}
	}
	return nil
}

func invalid(format string, args ...interface{}) error {
	return errors.Newf(errors.CodeValidationError, format, args...)
}

func validateVersion(cfg *Config) error {
	if cfg.Version != 1 {
		return invalid("unsupported config version %d; supported version is 1", cfg.Version)
	}
	return nil
}

func validatePaths(cfg *Config) error {
	if strings.TrimSpace(cfg.Paths.OutputDir) == "" {
		return invalid("paths.output_dir must not be empty")
	}
	for i, root := range cfg.Paths.IncludeRoots {
		if strings.TrimSpace(root) == "" {
			return invalid("paths.include_roots[%d] must not be empty", i)
		}
	}
	return nil
}

func validateOutput(cfg *Config) error {
	format := strings.ToLower(strings.TrimSpace(cfg.Output.Format))
	if !supportedFormats[format] {
		return invalid("output.format %q is not supported", cfg.Output.Format)
	}
	cfg.Output.Format = format
	if !supportedLayouts[cfg.Output.Layout] {
		return invalid("output.layout %q is not a graphviz layout engine", cfg.Output.Layout)
	}
	if !cfg.Output.TextEnabled() && !cfg.Output.ImagesEnabled() {
		return invalid("output.write_text and output.write_images cannot both be false")
	}
	if strings.ContainsAny(cfg.Output.MetricsFile, `/\`) {
		return invalid("output.metrics_file must be a file name inside the output directory")
	}
	return nil
}

func validateExclude(cfg *Config) error {
	for _, p := range cfg.Exclude.Dirs {
		if _, err := glob.Compile(p); err != nil {
			return invalid("exclude.dirs pattern %q: %v", p, err)
		}
	}
	for _, p := range cfg.Exclude.Files {
		if _, err := glob.Compile(p); err != nil {
			return invalid("exclude.files pattern %q: %v", p, err)
		}
	}
	return nil
}

func validateHistory(cfg *Config) error {
	if cfg.History.Enabled && strings.TrimSpace(cfg.History.Path) == "" {
		return invalid("history.path must not be empty when history is enabled")
	}
	return nil
}

func validateWatch(cfg *Config) error {
	if cfg.Watch.Debounce < 0 || cfg.Watch.Debounce > time.Minute {
		return invalid("watch.debounce must be between 0 and 1m")
	}
	if cfg.Watch.MinInterval < 0 {
		return invalid("watch.min_interval must not be negative")
	}
	return nil
}
