package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Pattern: CPPUML_[SECTION]_[KEY] (e.g., CPPUML_OUTPUT_FORMAT).
func ApplyEnvOverrides(cfg *Config) {
	setEnvString(&cfg.Project, "CPPUML_PROJECT")

	// Paths
	setEnvString(&cfg.Paths.CompileDB, "CPPUML_PATHS_COMPILE_DB")
	setEnvString(&cfg.Paths.SourceRoot, "CPPUML_PATHS_SOURCE_ROOT")
	setEnvString(&cfg.Paths.OutputDir, "CPPUML_PATHS_OUTPUT_DIR")

	// Output
	setEnvString(&cfg.Output.Format, "CPPUML_OUTPUT_FORMAT")
	setEnvString(&cfg.Output.Layout, "CPPUML_OUTPUT_LAYOUT")
	setEnvString(&cfg.Output.DotBinary, "CPPUML_OUTPUT_DOT_BINARY")

	// History
	setEnvBool(&cfg.History.Enabled, "CPPUML_HISTORY_ENABLED")
	setEnvString(&cfg.History.Path, "CPPUML_HISTORY_PATH")

	// Watch
	setEnvDuration(&cfg.Watch.Debounce, "CPPUML_WATCH_DEBOUNCE")
	setEnvDuration(&cfg.Watch.MinInterval, "CPPUML_WATCH_MIN_INTERVAL")

	// Observability
	setEnvString(&cfg.Observability.OTLPEndpoint, "CPPUML_OBSERVABILITY_OTLP_ENDPOINT")
	setEnvString(&cfg.Observability.ServiceName, "CPPUML_OBSERVABILITY_SERVICE_NAME")
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		*target = val
	}
}

func setEnvBool(target *bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(strings.ToLower(val)); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = b
		}
	}
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = d
		}
	}
}
