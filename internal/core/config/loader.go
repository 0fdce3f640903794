package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cppuml/internal/core/errors"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = "cppuml.toml"

// Load reads path as TOML, or as YAML when the extension is .yaml or .yml.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Newf(errors.CodeIOFailed, "read config: %v", err).
			WithContext(errors.CtxPath, path)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && err != io.EOF {
			return nil, errors.Newf(errors.CodeValidationError, "decode yaml config: %v", err).
				WithContext(errors.CtxPath, path)
		}
	default:
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return nil, errors.Newf(errors.CodeValidationError, "decode toml config: %v", err).
				WithContext(errors.CtxPath, path)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errors.Newf(errors.CodeValidationError, "unknown config key %q", undecoded[0].String()).
				WithContext(errors.CtxPath, path)
		}
	}

	applyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, errors.AddContext(err, errors.CtxPath, path)
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}
	if strings.TrimSpace(cfg.Project) == "" {
		cfg.Project = "default"
	}
	if strings.TrimSpace(cfg.Paths.SourceRoot) == "" {
		cfg.Paths.SourceRoot = "."
	}
	if strings.TrimSpace(cfg.Paths.OutputDir) == "" {
		cfg.Paths.OutputDir = "uml"
	}

	if strings.TrimSpace(cfg.Output.Format) == "" {
		cfg.Output.Format = "svg"
	}
	if strings.TrimSpace(cfg.Output.Layout) == "" {
		cfg.Output.Layout = "dot"
	}
	if strings.TrimSpace(cfg.Output.DotBinary) == "" {
		cfg.Output.DotBinary = "dot"
	}

	if strings.TrimSpace(cfg.History.Path) == "" {
		cfg.History.Path = ".cppuml/history.db"
	}

	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
	if cfg.Watch.MinInterval == 0 {
		cfg.Watch.MinInterval = 2 * time.Second
	}

	if strings.TrimSpace(cfg.Observability.ServiceName) == "" {
		cfg.Observability.ServiceName = "cppuml"
	}
}
