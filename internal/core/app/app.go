// Package app wires configuration, the C++ front-end, the class model and the
// diagram writer into one generation run.
package app

import (
	"context"
	"log/slog"

	"cppuml/internal/core/config"
	"cppuml/internal/core/errors"
	"cppuml/internal/core/ports"
	"cppuml/internal/data/compiledb"
	"cppuml/internal/data/history"
	"cppuml/internal/engine/ast"
	"cppuml/internal/engine/parser"
	"cppuml/internal/output"
	"cppuml/internal/output/graphviz"
)

type App struct {
	Config *config.Config
	Paths  config.ResolvedPaths

	base        string
	parser      ports.UnitParser
	writer      ports.DiagramWriter
	ownedWriter bool
	history     ports.HistoryStore
	excluder    *compiledb.Excluder
	logger      *slog.Logger
}

// Option replaces one of the collaborators New builds from the config.
type Option func(*App)

func WithParser(p ports.UnitParser) Option {
	return func(a *App) { a.parser = p }
}

func WithWriter(w ports.DiagramWriter) Option {
	return func(a *App) { a.writer = w }
}

func WithHistory(h ports.HistoryStore) Option {
	return func(a *App) { a.history = h }
}

func WithLogger(l *slog.Logger) Option {
	return func(a *App) { a.logger = l }
}

// New resolves paths against base and builds the parser, writer and, when
// enabled, the history store.
func New(cfg *config.Config, base string, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, errors.New(errors.CodeValidationError, "config is required")
	}
	paths, err := config.ResolvePaths(cfg, base)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeValidationError, "resolve paths")
	}
	excluder, err := compiledb.NewExcluder(cfg.Exclude.Dirs, cfg.Exclude.Files)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:   cfg,
		Paths:    paths,
		base:     base,
		excluder: excluder,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.parser == nil {
		a.parser = parser.NewParser(a.logger)
	}
	if a.writer == nil {
		a.writer = a.newWriter()
		a.ownedWriter = true
	}
	if a.history == nil && cfg.History.Enabled {
		store, err := history.Open(paths.HistoryPath)
		if err != nil {
			return nil, errors.AddContext(err, errors.CtxOperation, "open_history")
		}
		a.history = store
	}
	return a, nil
}

func (a *App) newWriter() *output.Writer {
	renderer, missing := graphviz.NewRenderer(graphviz.Options{
		Binary: a.Config.Output.DotBinary,
		Layout: a.Config.Output.Layout,
		Format: a.Config.Output.Format,
	})
	if missing && a.Config.Output.ImagesEnabled() {
		a.logger.Warn("graphviz not found, writing DOT source instead",
			"binary", a.Config.Output.DotBinary, "format", a.Config.Output.Format)
	}
	a.logger.Debug("renderer selected", "renderer", graphviz.Describe(renderer))
	return output.NewWriter(output.WriterOptions{
		Dir:         a.Paths.OutputDir,
		WriteText:   a.Config.Output.TextEnabled(),
		WriteImages: a.Config.Output.ImagesEnabled(),
		Renderer:    renderer,
		Logger:      a.logger,
	})
}

// Generator returns the driving port for this app.
func (a *App) Generator() ports.GeneratorService {
	return NewGeneratorService(a)
}

// inScope keeps top-level declarations whose file lies under a source or
// include root. Cursors without a file are kept.
func (a *App) inScope(c ast.Cursor) bool {
	file := c.Location().File
	if file == "" {
		return true
	}
	return compiledb.InRoots(file, a.Paths.ScopeRoots())
}

func (a *App) Close(ctx context.Context) error {
	if a.history == nil {
		return nil
	}
	return a.history.Close()
}
