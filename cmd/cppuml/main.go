// Package main is the cppuml command: it builds a class model from C++
// sources and writes PlantUML and Graphviz diagrams of it.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"cppuml/internal/core/app"
	"cppuml/internal/core/config"
	"cppuml/internal/core/ports"
	"cppuml/internal/shared/observability"

	"github.com/spf13/cobra"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "cppuml"
)

type options struct {
	configPath   string
	compileDB    string
	sourceRoot   string
	includeRoots []string
	outDir       string
	format       string
	watch        bool
	verbose      bool
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Generate UML class diagrams from C++ sources",
		Long: `cppuml parses the translation units of a C++ project, builds a class
model grouped by namespace and writes:

- one PlantUML file per namespace
- a compact namespace overview graph
- one detailed graph per namespace
- a global graph with one cluster per namespace`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "Config file (TOML, or YAML by extension); defaults to ./"+config.DefaultFile+" when present")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging")

	f := cmd.Flags()
	f.StringVar(&opts.compileDB, "compile-db", "", "compile_commands.json or the build directory containing it")
	f.StringVar(&opts.sourceRoot, "source-root", "", "Root of the analysed sources")
	f.StringArrayVarP(&opts.includeRoots, "include-root", "I", nil, "Additional root whose declarations are modelled (repeatable)")
	f.StringVarP(&opts.outDir, "out", "o", "", "Output directory")
	f.StringVarP(&opts.format, "format", "f", "", "Graphviz output format: svg, png, pdf or dot")
	f.BoolVarP(&opts.watch, "watch", "w", false, "Regenerate when sources change")

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})
	cmd.AddCommand(historyCmd(&opts))

	return cmd
}

func setupLogging(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// loadConfig reads the config file, then environment overrides, then flags.
// It returns the directory relative config paths are resolved against.
func loadConfig(cmd *cobra.Command, opts options) (*config.Config, string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, "", err
	}

	path := opts.configPath
	if path == "" {
		if _, err := os.Stat(config.DefaultFile); err == nil {
			path = config.DefaultFile
		}
	}

	cfg := config.DefaultConfig()
	base := cwd
	if path != "" {
		cfg, err = config.Load(path)
		if err != nil {
			return nil, "", err
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, "", err
		}
		base = filepath.Dir(abs)
		slog.Debug("config loaded", "path", abs)
	}
	config.ApplyEnvOverrides(cfg)

	applyFlags(cmd, opts, cfg, cwd)
	if err := config.Validate(cfg); err != nil {
		return nil, "", err
	}
	return cfg, base, nil
}

// applyFlags copies explicitly set flags over cfg. Flag paths are relative to
// the working directory, so they are made absolute here.
func applyFlags(cmd *cobra.Command, opts options, cfg *config.Config, cwd string) {
	flags := cmd.Flags()
	if flags.Changed("compile-db") {
		cfg.Paths.CompileDB = config.ResolveRelative(cwd, opts.compileDB)
	}
	if flags.Changed("source-root") {
		cfg.Paths.SourceRoot = config.ResolveRelative(cwd, opts.sourceRoot)
	}
	if flags.Changed("include-root") {
		roots := make([]string, 0, len(opts.includeRoots))
		for _, r := range opts.includeRoots {
			roots = append(roots, config.ResolveRelative(cwd, r))
		}
		cfg.Paths.IncludeRoots = roots
	}
	if flags.Changed("out") {
		cfg.Paths.OutputDir = config.ResolveRelative(cwd, opts.outDir)
	}
	if flags.Changed("format") {
		cfg.Output.Format = opts.format
	}
}

func run(cmd *cobra.Command, opts options) error {
	logger := setupLogging(opts.verbose)

	cfg, base, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Observability.TracingEnabled() {
		shutdown, err := observability.SetupTracing(ctx, observability.TracingOptions{
			Endpoint:    cfg.Observability.OTLPEndpoint,
			ServiceName: cfg.Observability.ServiceName,
			Insecure:    true,
		})
		if err != nil {
			logger.Warn("tracing disabled", "endpoint", cfg.Observability.OTLPEndpoint, "error", err)
		} else {
			logger.Debug("tracing enabled", "endpoint", cfg.Observability.OTLPEndpoint)
			defer func() {
				flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(flushCtx); err != nil {
					logger.Warn("trace flush failed", "error", err)
				}
			}()
		}
	}

	a, err := app.New(cfg, base, app.WithLogger(logger))
	if err != nil {
		return err
	}
	generator := a.Generator()
	defer generator.Close(context.Background())

	out := cmd.OutOrStdout()
	if opts.watch {
		return a.Watch(ctx, app.WatchOptions{
			ConfigPath: opts.configPath,
			OnRun: func(res ports.GenerateResult, err error) {
				if err == nil {
					fmt.Fprint(out, renderSummary(res, a.Paths.OutputDir))
				}
			},
		})
	}

	res, err := generator.Generate(ctx, ports.GenerateRequest{})
	if err != nil {
		return err
	}
	fmt.Fprint(out, renderSummary(res, a.Paths.OutputDir))
	return nil
}
