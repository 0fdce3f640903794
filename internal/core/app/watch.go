package app

import (
	"context"
	"os"
	"slices"
	"sync"

	"cppuml/internal/core/config"
	"cppuml/internal/core/errors"
	"cppuml/internal/core/ports"
	"cppuml/internal/core/watcher"
	"cppuml/internal/data/compiledb"
	"cppuml/internal/shared/util"
)

type WatchOptions struct {
	// ConfigPath, when set, is reloaded on change and triggers a rerun.
	ConfigPath string
	// OnRun receives the outcome of every run, including the initial one.
	OnRun func(ports.GenerateResult, error)
}

// Watch runs the pipeline once, then again after each debounced burst of
// source changes until ctx is done. Reruns are serialised and at most one
// starts per watch.min_interval; changes arriving during a run coalesce into
// a single follow-up run.
func (a *App) Watch(ctx context.Context, opts WatchOptions) error {
	triggers := make(chan struct{}, 1)
	trigger := func() {
		select {
		case triggers <- struct{}{}:
		default:
		}
	}

	w, err := watcher.NewWatcher(a.Config.Watch.Debounce, a.Config.Exclude.Dirs, a.Config.Exclude.Files, func(paths []string) {
		a.logger.Info("sources changed", "files", len(paths))
		a.logger.Debug("changed files", "paths", paths)
		trigger()
	})
	if err != nil {
		return err
	}
	defer w.Close()
	roots := a.watchRoots()
	if err := w.Watch(roots); err != nil {
		return errors.Wrap(err, errors.CodeIOFailed, "watch sources")
	}
	a.logger.Info("watching sources", "roots", roots)

	var mu sync.Mutex
	var pending *config.Config
	if opts.ConfigPath != "" {
		cw := config.NewWatcher(opts.ConfigPath, func(cfg *config.Config) {
			mu.Lock()
			pending = cfg
			mu.Unlock()
			trigger()
		})
		if err := cw.Start(ctx); err != nil {
			a.logger.Warn("config watcher not started", "path", opts.ConfigPath, "error", err)
		} else {
			defer cw.Stop()
		}
	}

	limiter := util.NewRerunLimiter(a.Config.Watch.MinInterval)
	trigger()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-triggers:
		}
		if !limiter.Ready() {
			a.logger.Debug("rerun throttled", "min_interval", a.Config.Watch.MinInterval)
		}
		if err := limiter.Wait(ctx); err != nil {
			return nil
		}

		mu.Lock()
		cfg := pending
		pending = nil
		mu.Unlock()
		if cfg != nil {
			if err := a.reconfigure(cfg); err != nil {
				a.logger.Warn("reloaded config rejected", "error", err)
			} else {
				w.SetDebounce(a.Config.Watch.Debounce)
				limiter = util.NewRerunLimiter(a.Config.Watch.MinInterval)
			}
		}

		res, err := a.Generate(ctx, ports.GenerateRequest{})
		if err != nil && ctx.Err() != nil {
			return nil
		}
		if err != nil {
			a.logger.Error("run failed", "run_id", res.Run.ID, "error", err)
		}
		if opts.OnRun != nil {
			opts.OnRun(res, err)
		}
	}
}

// watchRoots are the existing scope roots.
func (a *App) watchRoots() []string {
	var roots []string
	for _, root := range a.Paths.ScopeRoots() {
		if info, err := os.Stat(root); err == nil && info.IsDir() {
			roots = append(roots, root)
		}
	}
	return roots
}

// reconfigure swaps in a reloaded cfg for the next run. Environment overrides
// win over the file, and the result must validate like a startup config.
// Watched roots and exclude rules of the file watcher stay as they were started.
func (a *App) reconfigure(cfg *config.Config) error {
	config.ApplyEnvOverrides(cfg)
	if err := config.Validate(cfg); err != nil {
		return err
	}
	paths, err := config.ResolvePaths(cfg, a.base)
	if err != nil {
		return err
	}
	excluder, err := compiledb.NewExcluder(cfg.Exclude.Dirs, cfg.Exclude.Files)
	if err != nil {
		return err
	}
	if !slices.Equal(paths.ScopeRoots(), a.Paths.ScopeRoots()) {
		a.logger.Warn("source roots changed, restart to watch the new roots")
	}
	a.Config = cfg
	a.Paths = paths
	a.excluder = excluder
	if a.ownedWriter {
		a.writer = a.newWriter()
	}
	a.logger.Info("config applied", "project", cfg.Project)
	return nil
}
