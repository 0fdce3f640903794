package app

import (
	"context"
	"path/filepath"

	"cppuml/internal/data/compiledb"
	"cppuml/internal/engine/parser"
	"cppuml/internal/shared/observability"
)

// LoadUnits returns the translation units of one run: the compile database
// entries under the source root in database order, or discovered sources
// when no database is configured. Database entries that cannot be read are
// logged and left out.
func (a *App) LoadUnits(ctx context.Context) ([]parser.Unit, error) {
	units, _, err := a.loadUnits(ctx)
	return units, err
}

// loadUnits also returns one PARSE_FAILED error per skipped database entry
// in scope, so a run can count them as failed units.
func (a *App) loadUnits(ctx context.Context) ([]parser.Unit, []error, error) {
	_, span := observability.Tracer.Start(ctx, "app.LoadUnits")
	defer span.End()

	if a.Paths.CompileDB == "" {
		units, err := compiledb.Discover(compiledb.DiscoverOptions{
			Root:         a.Paths.SourceRoot,
			IncludeRoots: a.Paths.IncludeRoots,
			ExcludeDirs:  a.Config.Exclude.Dirs,
			ExcludeFiles: a.Config.Exclude.Files,
		})
		if err != nil {
			return nil, nil, err
		}
		a.logger.Info("discovered sources", "root", a.Paths.SourceRoot, "units", len(units))
		return units, nil, nil
	}

	all, skipped, err := compiledb.Load(a.Paths.CompileDB)
	if err != nil {
		return nil, nil, err
	}
	units := make([]parser.Unit, 0, len(all))
	for _, u := range compiledb.FilterRoot(all, a.Paths.SourceRoot) {
		if a.excluded(u.Path()) {
			continue
		}
		units = append(units, u)
	}

	var failed []error
	for _, s := range skipped {
		if s.Path != "" && (!compiledb.InRoots(s.Path, []string{a.Paths.SourceRoot}) || a.excluded(s.Path)) {
			continue
		}
		a.logger.Warn("compile database entry skipped", "entry", s.Index, "unit", s.Path, "error", s.Err)
		failed = append(failed, s.Err)
	}

	a.logger.Info("loaded compile database",
		"path", a.Paths.CompileDB, "entries", len(all)+len(skipped),
		"units", len(units), "skipped", len(failed))
	return units, failed, nil
}

func (a *App) excluded(path string) bool {
	if a.excluder.ExcludesFile(path) {
		return true
	}
	rel, err := filepath.Rel(a.Paths.SourceRoot, filepath.Dir(path))
	if err != nil {
		return false
	}
	return a.excluder.ExcludesDir(filepath.ToSlash(rel))
}
