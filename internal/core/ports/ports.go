package ports

import (
	"context"
	"time"

	"cppuml/internal/data/history"
	"cppuml/internal/engine/parser"
	"cppuml/internal/output"
)

// UnitParser turns one compile command into a cursor tree.
type UnitParser interface {
	ParseUnit(ctx context.Context, unit parser.Unit) (*parser.Result, error)
}

// DiagramWriter puts synthesized diagrams on disk.
type DiagramWriter interface {
	Write(ctx context.Context, d *output.Diagrams) ([]output.Artifact, error)
}

// HistoryStore abstracts run persistence for trend reporting.
type HistoryStore interface {
	SaveRun(run history.Run) (history.Run, error)
	Latest(projectKey string) (history.Run, bool, error)
	LoadRuns(projectKey string, since time.Time) ([]history.Run, error)
	Close() error
}

// GenerateRequest selects what a run processes. Empty fields fall back to the
// configured values.
type GenerateRequest struct {
	// Units replaces compile database loading and source discovery.
	Units []parser.Unit
}

// GenerateResult summarises a completed run.
type GenerateResult struct {
	Run       history.Run
	Artifacts []output.Artifact
	// Previous is the last recorded run for the project, if history is on.
	Previous *history.Run
	Warnings []string
}

// GeneratorService is the driving port used by the CLI and the watcher.
type GeneratorService interface {
	Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error)
	Close(ctx context.Context) error
}
