package output

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"cppuml/internal/core/errors"
	"cppuml/internal/engine/model"
	"cppuml/internal/output/graphviz"
	"cppuml/internal/shared/util"
)

const (
	compactStem = "compact"
	mainStem    = "main"
	globalStem  = "_global"
)

// Diagrams is everything synthesised from one snapshot, before any I/O.
type Diagrams struct {
	Texts   []NamespaceText
	Compact *graphviz.Graph
	Details []NamespaceGraph
	Global  *graphviz.Graph
}

type NamespaceText struct {
	Namespace model.Namespace
	Stem      string
	Content   string
}

type NamespaceGraph struct {
	Namespace model.Namespace
	Stem      string
	Graph     *graphviz.Graph
}

// Synthesize builds every view of s.
func Synthesize(s *model.Snapshot) *Diagrams {
	gen := NewPlantUMLGenerator()
	d := &Diagrams{
		Compact: CompactView(s),
		Global:  GlobalView(s),
	}
	groups := Group(s)
	namespaces := make([]model.Namespace, len(groups))
	for i, group := range groups {
		namespaces[i] = group.Namespace
	}
	stems := Stems(namespaces)
	for i, group := range groups {
		d.Texts = append(d.Texts, NamespaceText{Namespace: group.Namespace, Stem: stems[i], Content: gen.Generate(group)})
		d.Details = append(d.Details, NamespaceGraph{Namespace: group.Namespace, Stem: stems[i], Graph: DetailedView(group)})
	}
	return d
}

// Stem is the preferred file name, without extension, for a namespace's
// artifacts.
func Stem(ns model.Namespace) string {
	if ns.IsGlobal() {
		return globalStem
	}
	stem := ns.Key()
	switch stem {
	case compactStem, mainStem, globalStem:
		return stem + "_ns"
	}
	return stem
}

// Stems returns one distinct stem per namespace, in order. A preferred stem
// already taken by a fixed artifact or an earlier namespace gets the first
// free numeric suffix.
func Stems(namespaces []model.Namespace) []string {
	taken := map[string]bool{compactStem: true, mainStem: true}
	out := make([]string, len(namespaces))
	for i, ns := range namespaces {
		stem := Stem(ns)
		for n := 2; taken[stem]; n++ {
			stem = fmt.Sprintf("%s_%d", Stem(ns), n)
		}
		taken[stem] = true
		out[i] = stem
	}
	return out
}

type ArtifactKind string

const (
	ArtifactText    ArtifactKind = "text"
	ArtifactCompact ArtifactKind = "compact"
	ArtifactDetail  ArtifactKind = "namespace"
	ArtifactGlobal  ArtifactKind = "global"
)

type Artifact struct {
	Kind      ArtifactKind
	Namespace string
	Path      string
}

type renderJob struct {
	artifact Artifact
	graph    *graphviz.Graph
}

type WriterOptions struct {
	Dir         string
	WriteText   bool
	WriteImages bool
	Renderer    graphviz.Renderer
	Logger      *slog.Logger
}

// Writer puts diagrams on disk. A failing artifact does not stop the others.
type Writer struct {
	dir         string
	writeText   bool
	writeImages bool
	renderer    graphviz.Renderer
	logger      *slog.Logger
}

func NewWriter(opts WriterOptions) *Writer {
	if opts.Renderer == nil {
		opts.Renderer = graphviz.SourceRenderer{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Writer{
		dir:         opts.Dir,
		writeText:   opts.WriteText,
		writeImages: opts.WriteImages,
		renderer:    opts.Renderer,
		logger:      opts.Logger,
	}
}

// Write writes d and returns the artifacts that were written. The error joins
// every per-artifact failure; a cancelled context stops before the next one.
func (w *Writer) Write(ctx context.Context, d *Diagrams) ([]Artifact, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, errors.Newf(errors.CodeIOFailed, "create output directory: %v", err).
			WithContext(errors.CtxPath, w.dir)
	}

	var written []Artifact
	var errs []error

	emit := func(a Artifact, write func() error) bool {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			return false
		}
		if err := write(); err != nil {
			w.logger.Warn("artifact not written", "path", a.Path, "kind", a.Kind, "error", err)
			errs = append(errs, err)
			return true
		}
		w.logger.Debug("artifact written", "path", a.Path, "kind", a.Kind)
		written = append(written, a)
		return true
	}

	if w.writeText {
		for _, t := range d.Texts {
			path := filepath.Join(w.dir, t.Stem+".puml")
			content := t.Content
			a := Artifact{Kind: ArtifactText, Namespace: t.Namespace.Key(), Path: path}
			if !emit(a, func() error { return writeText(path, content) }) {
				return written, stderrors.Join(errs...)
			}
		}
	}

	if w.writeImages {
		ext := "." + w.renderer.Extension()
		jobs := []renderJob{{Artifact{Kind: ArtifactCompact, Path: filepath.Join(w.dir, compactStem+ext)}, d.Compact}}
		for _, ng := range d.Details {
			a := Artifact{Kind: ArtifactDetail, Namespace: ng.Namespace.Key(), Path: filepath.Join(w.dir, ng.Stem+ext)}
			jobs = append(jobs, renderJob{a, ng.Graph})
		}
		jobs = append(jobs, renderJob{Artifact{Kind: ArtifactGlobal, Path: filepath.Join(w.dir, mainStem+ext)}, d.Global})

		for _, job := range jobs {
			if !emit(job.artifact, func() error { return w.renderer.Render(ctx, job.graph, job.artifact.Path) }) {
				break
			}
		}
	}
	return written, stderrors.Join(errs...)
}

func writeText(path, content string) error {
	if err := util.WriteFileAtomic(path, content); err != nil {
		return errors.Newf(errors.CodeIOFailed, "write diagram text: %v", err).
			WithContext(errors.CtxPath, path)
	}
	return nil
}
