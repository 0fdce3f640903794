package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

type ResolvedPaths struct {
	CompileDB    string
	SourceRoot   string
	IncludeRoots []string
	OutputDir    string
	HistoryPath  string
	MetricsPath  string
}

// ResolvePaths makes every configured path absolute against base, normally
// the directory of the config file or the working directory.
func ResolvePaths(cfg *Config, base string) (ResolvedPaths, error) {
	if strings.TrimSpace(base) == "" {
		return ResolvedPaths{}, fmt.Errorf("base directory must not be empty")
	}
	base, err := filepath.Abs(base)
	if err != nil {
		return ResolvedPaths{}, err
	}

	out := ResolvedPaths{
		SourceRoot:  ResolveRelative(base, cfg.Paths.SourceRoot),
		OutputDir:   ResolveRelative(base, cfg.Paths.OutputDir),
		HistoryPath: ResolveRelative(base, cfg.History.Path),
	}
	if strings.TrimSpace(cfg.Paths.CompileDB) != "" {
		out.CompileDB = ResolveRelative(base, cfg.Paths.CompileDB)
	}
	for _, inc := range cfg.Paths.IncludeRoots {
		out.IncludeRoots = append(out.IncludeRoots, ResolveRelative(base, inc))
	}
	if name := strings.TrimSpace(cfg.Output.MetricsFile); name != "" {
		out.MetricsPath = filepath.Join(out.OutputDir, name)
	}
	return out, nil
}

// ScopeRoots are the directories whose declarations are modelled.
func (p ResolvedPaths) ScopeRoots() []string {
	return append([]string{p.SourceRoot}, p.IncludeRoots...)
}

func ResolveRelative(base, value string) string {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return filepath.Clean(base)
	}
	if filepath.IsAbs(raw) {
		return filepath.Clean(raw)
	}
	return filepath.Clean(filepath.Join(base, raw))
}
