package app

import (
	"context"
	"fmt"
	"time"

	"cppuml/internal/core/errors"
	"cppuml/internal/core/ports"
	"cppuml/internal/data/history"
	"cppuml/internal/engine/extract"
	"cppuml/internal/engine/model"
	"cppuml/internal/output"
	"cppuml/internal/shared/observability"
	"cppuml/internal/shared/util"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type generatorService struct {
	app *App
}

var _ ports.GeneratorService = (*generatorService)(nil)

func NewGeneratorService(app *App) ports.GeneratorService {
	return &generatorService{app: app}
}

func (s *generatorService) Unwrap() *App {
	return s.app
}

func (s *generatorService) Close(ctx context.Context) error {
	if s == nil || s.app == nil {
		return nil
	}
	return s.app.Close(ctx)
}

func (s *generatorService) Generate(ctx context.Context, req ports.GenerateRequest) (ports.GenerateResult, error) {
	ctx, span := observability.Tracer.Start(ctx, "generatorService.Generate")
	defer span.End()

	if s.app == nil {
		return ports.GenerateResult{}, fmt.Errorf("app is required")
	}
	res, err := s.app.Generate(ctx, req)
	span.SetAttributes(
		attribute.String("run.id", res.Run.ID),
		attribute.Int("run.units", res.Run.Units),
		attribute.Int("run.classes", res.Run.Classes),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return res, err
}

// Generate runs the whole pipeline once with a fresh registry: units are
// parsed and walked in order, the frozen model is synthesized into diagrams
// and the diagrams are written. A unit that cannot be parsed is skipped; a
// malformed cursor tree aborts the run.
func (a *App) Generate(ctx context.Context, req ports.GenerateRequest) (ports.GenerateResult, error) {
	start := time.Now()
	run := history.Run{
		ID:         uuid.NewString(),
		ProjectKey: a.Config.Project,
		StartedAt:  start.UTC(),
		Status:     history.StatusOK,
	}
	logger := a.logger.With("run_id", run.ID)
	result := ports.GenerateResult{Run: run}

	units := req.Units
	var skipped []error
	if len(units) == 0 {
		loaded, bad, err := a.loadUnits(ctx)
		if err != nil {
			return a.fail(result, err)
		}
		units, skipped = loaded, bad
	}
	if len(units) == 0 {
		logger.Warn("no translation units to process")
	}
	result.Run.Units = len(units) + len(skipped)
	for _, err := range skipped {
		result.Run.FailedUnits++
		observability.UnitsTotal.WithLabelValues("failed").Inc()
		result.Warnings = append(result.Warnings, fmt.Sprintf("compile database: %v", err))
	}

	registry := model.NewRegistry()
	walker := extract.NewWalker(registry, logger)

	parseStart := time.Now()
	for _, unit := range units {
		if err := ctx.Err(); err != nil {
			return a.fail(result, err)
		}
		path := unit.Path()
		unitCtx, unitSpan := observability.Tracer.Start(ctx, "app.ParseUnit", trace.WithAttributes(attribute.String("unit", path)))

		unitStart := time.Now()
		parsed, err := a.parser.ParseUnit(unitCtx, unit)
		observability.ParsingDuration.Observe(time.Since(unitStart).Seconds())
		if err != nil {
			unitSpan.RecordError(err)
			unitSpan.End()
			if ctx.Err() != nil {
				return a.fail(result, ctx.Err())
			}
			result.Run.FailedUnits++
			observability.UnitsTotal.WithLabelValues("failed").Inc()
			logger.Warn("translation unit skipped", "unit", path, "error", err)
			result.Warnings = append(result.Warnings, fmt.Sprintf("parse %s: %v", path, err))
			continue
		}
		if parsed.SyntaxErrors > 0 {
			result.Run.SyntaxErrors++
			observability.SyntaxErrorsTotal.Inc()
			logger.Warn("translation unit has syntax errors, walking recovered tree",
				"unit", path, "files", parsed.SyntaxErrors)
		}
		observability.UnitsTotal.WithLabelValues("parsed").Inc()

		if err := walker.WalkUnit(parsed.Root, a.inScope); err != nil {
			unitSpan.RecordError(err)
			unitSpan.End()
			return a.fail(result, errors.AddContext(err, errors.CtxUnit, path))
		}
		unitSpan.End()
		logger.Debug("translation unit walked", "unit", path, "headers", len(parsed.Files)-1)
	}
	observability.AnalysisDuration.WithLabelValues("extract").Observe(time.Since(parseStart).Seconds())

	unresolved := walker.Unresolved()
	for _, ref := range unresolved {
		logger.Debug("member type not linked to a class", "type", ref.Spelling, "identity", ref.Identity)
	}

	snapshot := registry.Snapshot()
	stats := snapshot.Stats()
	result.Run.Classes = stats.Classes
	result.Run.Namespaces = stats.Namespaces
	result.Run.Attributes = stats.Attributes
	result.Run.Methods = stats.Methods
	result.Run.ResolvedParents = stats.ResolvedParents
	result.Run.DistantParents = stats.DistantParents
	observability.ModelClasses.Set(float64(stats.Classes))
	observability.ModelNamespaces.Set(float64(stats.Namespaces))
	logger.Info("model built",
		"units", result.Run.Units, "failed_units", result.Run.FailedUnits,
		"classes", stats.Classes, "namespaces", stats.Namespaces,
		"skipped_out_of_scope", walker.Stats().SkippedOutScope,
		"unresolved_types", len(unresolved))

	synthStart := time.Now()
	diagrams := output.Synthesize(snapshot)
	observability.AnalysisDuration.WithLabelValues("synthesize").Observe(time.Since(synthStart).Seconds())

	writeStart := time.Now()
	artifacts, writeErr := a.writer.Write(ctx, diagrams)
	observability.AnalysisDuration.WithLabelValues("write").Observe(time.Since(writeStart).Seconds())
	result.Artifacts = artifacts
	result.Run.Artifacts = len(artifacts)
	for _, art := range artifacts {
		observability.ArtifactsTotal.WithLabelValues(string(art.Kind), "written").Inc()
	}
	if writeErr != nil {
		if ctx.Err() != nil {
			return a.fail(result, ctx.Err())
		}
		failures := joinedLen(writeErr)
		result.Run.FailedArtifacts = failures
		observability.ArtifactsTotal.WithLabelValues("any", "failed").Add(float64(failures))
		result.Warnings = append(result.Warnings, writeErr.Error())
	}

	switch {
	case result.Run.Units > 0 && result.Run.FailedUnits == result.Run.Units:
		result.Run.Status = history.StatusFailed
	case result.Run.FailedUnits > 0 || result.Run.FailedArtifacts > 0:
		result.Run.Status = history.StatusPartial
	}
	result.Run.Duration = time.Since(start)

	a.record(&result)
	a.writeMetrics(result.Run)

	logger.Info("run finished",
		"status", result.Run.Status, "artifacts", result.Run.Artifacts,
		"failed_artifacts", result.Run.FailedArtifacts,
		"duration", result.Run.Duration.Round(time.Millisecond),
		"memory", util.ReadMemoryUsage())
	return result, nil
}

// fail marks the run failed and still records it.
func (a *App) fail(result ports.GenerateResult, err error) (ports.GenerateResult, error) {
	result.Run.Status = history.StatusFailed
	result.Run.Duration = time.Since(result.Run.StartedAt)
	observability.RunsTotal.WithLabelValues(string(history.StatusFailed)).Inc()
	if a.history != nil {
		if _, herr := a.history.SaveRun(result.Run); herr != nil {
			a.logger.Warn("run not recorded", "run_id", result.Run.ID, "error", herr)
		}
	}
	return result, err
}

func (a *App) record(result *ports.GenerateResult) {
	observability.RunsTotal.WithLabelValues(string(result.Run.Status)).Inc()
	if a.history == nil {
		return
	}
	if prev, ok, err := a.history.Latest(result.Run.ProjectKey); err != nil {
		a.logger.Warn("previous run not loaded", "error", err)
	} else if ok {
		result.Previous = &prev
	}
	saved, err := a.history.SaveRun(result.Run)
	if err != nil {
		a.logger.Warn("run not recorded", "run_id", result.Run.ID, "error", err)
		return
	}
	result.Run = saved
}

func (a *App) writeMetrics(run history.Run) {
	if a.Paths.MetricsPath == "" {
		return
	}
	if err := observability.WriteTextfile(a.Paths.MetricsPath); err != nil {
		a.logger.Warn("metrics not written", "path", a.Paths.MetricsPath, "run_id", run.ID, "error", err)
	}
}

func joinedLen(err error) int {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return len(j.Unwrap())
	}
	return 1
}
