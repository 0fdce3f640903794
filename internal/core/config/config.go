// Package config loads cppuml settings from TOML or YAML files, applies
// defaults and environment overrides, and validates the result.
package config

import "time"

type Config struct {
	Version       int           `toml:"version" yaml:"version"`
	Project       string        `toml:"project" yaml:"project"`
	Paths         Paths         `toml:"paths" yaml:"paths"`
	Output        Output        `toml:"output" yaml:"output"`
	Exclude       Exclude       `toml:"exclude" yaml:"exclude"`
	History       History       `toml:"history" yaml:"history"`
	Watch         Watch         `toml:"watch" yaml:"watch"`
	Observability Observability `toml:"observability" yaml:"observability"`
}

type Paths struct {
	// CompileDB is a compile_commands.json file or the build directory
	// holding it. Empty means sources are discovered under SourceRoot.
	CompileDB    string   `toml:"compile_db" yaml:"compile_db"`
	SourceRoot   string   `toml:"source_root" yaml:"source_root"`
	IncludeRoots []string `toml:"include_roots" yaml:"include_roots"`
	OutputDir    string   `toml:"output_dir" yaml:"output_dir"`
}

type Output struct {
	// Format is the Graphviz output format: svg, png, pdf or dot.
	Format      string `toml:"format" yaml:"format"`
	Layout      string `toml:"layout" yaml:"layout"`
	DotBinary   string `toml:"dot_binary" yaml:"dot_binary"`
	WriteText   *bool  `toml:"write_text" yaml:"write_text"`
	WriteImages *bool  `toml:"write_images" yaml:"write_images"`
	// MetricsFile is written in Prometheus text format, relative to OutputDir.
	MetricsFile string `toml:"metrics_file" yaml:"metrics_file"`
}

type Exclude struct {
	Dirs  []string `toml:"dirs" yaml:"dirs"`
	Files []string `toml:"files" yaml:"files"`
}

type History struct {
	Enabled bool   `toml:"enabled" yaml:"enabled"`
	Path    string `toml:"path" yaml:"path"`
}

type Watch struct {
	Debounce    time.Duration `toml:"debounce" yaml:"debounce"`
	MinInterval time.Duration `toml:"min_interval" yaml:"min_interval"`
}

type Observability struct {
	OTLPEndpoint string `toml:"otlp_endpoint" yaml:"otlp_endpoint"`
	ServiceName  string `toml:"service_name" yaml:"service_name"`
}

func (o Output) TextEnabled() bool {
	return o.WriteText == nil || *o.WriteText
}

func (o Output) ImagesEnabled() bool {
	return o.WriteImages == nil || *o.WriteImages
}

func (o Observability) TracingEnabled() bool {
	return o.OTLPEndpoint != ""
}

// DefaultConfig returns a configuration with every default applied.
func DefaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}
