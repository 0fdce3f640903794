package graphviz

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"cppuml/internal/core/errors"
	"cppuml/internal/shared/util"
)

const (
	DefaultBinary = "dot"
	DefaultLayout = "dot"
	DefaultFormat = "svg"
)

// Renderer lays out g and writes the result to path.
type Renderer interface {
	Render(ctx context.Context, g *Graph, path string) error
	// Extension is the file extension of rendered artifacts, without the dot.
	Extension() string
}

// DotRenderer runs the Graphviz executable with the DOT text on stdin.
type DotRenderer struct {
	Binary string
	Layout string
	Format string
}

func (r DotRenderer) Extension() string {
	return r.Format
}

func (r DotRenderer) Render(ctx context.Context, g *Graph, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Newf(errors.CodeIOFailed, "create output directory: %v", err).
			WithContext(errors.CtxPath, path)
	}
	args := []string{"-K" + r.Layout, "-T" + r.Format, "-o", path}
	cmd := exec.CommandContext(ctx, r.Binary, args...)
	cmd.Stdin = strings.NewReader(g.String())
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return errors.Newf(errors.CodeIOFailed, "%s -T%s: %s", r.Binary, r.Format, msg).
			WithContext(errors.CtxPath, path)
	}
	return nil
}

// SourceRenderer writes the DOT text itself.
type SourceRenderer struct{}

func (SourceRenderer) Extension() string {
	return "dot"
}

func (SourceRenderer) Render(ctx context.Context, g *Graph, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := util.WriteFileAtomic(path, g.String()); err != nil {
		return errors.Newf(errors.CodeIOFailed, "write dot source: %v", err).
			WithContext(errors.CtxPath, path)
	}
	return nil
}

type Options struct {
	Binary string
	Layout string
	Format string
}

// NewRenderer returns a DotRenderer for opts, or a SourceRenderer when the
// format is "dot" or the binary cannot be found. The bool reports whether the
// fallback was taken for a missing binary.
func NewRenderer(opts Options) (Renderer, bool) {
	if opts.Binary == "" {
		opts.Binary = DefaultBinary
	}
	if opts.Layout == "" {
		opts.Layout = DefaultLayout
	}
	if opts.Format == "" {
		opts.Format = DefaultFormat
	}
	if opts.Format == "dot" || opts.Format == "gv" {
		return SourceRenderer{}, false
	}
	bin, err := exec.LookPath(opts.Binary)
	if err != nil {
		return SourceRenderer{}, true
	}
	return DotRenderer{Binary: bin, Layout: opts.Layout, Format: opts.Format}, false
}

// Describe names r for logs.
func Describe(r Renderer) string {
	switch v := r.(type) {
	case DotRenderer:
		return fmt.Sprintf("%s -K%s -T%s", v.Binary, v.Layout, v.Format)
	default:
		return "dot source"
	}
}
