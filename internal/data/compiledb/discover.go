package compiledb

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"cppuml/internal/core/errors"
	"cppuml/internal/engine/parser"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gobwas/glob"
	ignore "github.com/sabhiram/go-gitignore"
)

// DiscoverOptions controls source discovery when no database is available.
type DiscoverOptions struct {
	Root         string
	IncludeRoots []string
	ExcludeDirs  []string
	ExcludeFiles []string
	// Arguments are appended to every discovered unit after the include flags.
	Arguments []string
}

// Excluder matches directory and file base names against exclude globs.
type Excluder struct {
	dirs  []glob.Glob
	files []glob.Glob
}

func NewExcluder(dirs, files []string) (*Excluder, error) {
	e := &Excluder{}
	for _, p := range dirs {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, errors.Newf(errors.CodeValidationError, "invalid exclude dir pattern %q: %v", p, err)
		}
		e.dirs = append(e.dirs, g)
	}
	for _, p := range files {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, errors.Newf(errors.CodeValidationError, "invalid exclude file pattern %q: %v", p, err)
		}
		e.files = append(e.files, g)
	}
	return e, nil
}

// ExcludesDir reports whether any segment of the slash-separated relative
// directory matches a directory pattern.
func (e *Excluder) ExcludesDir(rel string) bool {
	for _, seg := range strings.Split(rel, "/") {
		for _, g := range e.dirs {
			if g.Match(seg) {
				return true
			}
		}
	}
	return false
}

func (e *Excluder) ExcludesFile(name string) bool {
	base := path.Base(filepath.ToSlash(name))
	for _, g := range e.files {
		if g.Match(base) {
			return true
		}
	}
	return false
}

// Discover lists the C++ source files under opts.Root in sorted order, each as
// a unit compiled with -I<root> and -I<include root>. Files ignored by the
// root's .gitignore or matched by an exclude pattern are skipped.
func Discover(opts DiscoverOptions) ([]parser.Unit, error) {
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, errors.Newf(errors.CodeValidationError, "source root: %v", err)
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return nil, errors.Newf(errors.CodeNotFound, "source root is not a directory").
			WithContext(errors.CtxPath, root)
	}

	excl, err := NewExcluder(opts.ExcludeDirs, opts.ExcludeFiles)
	if err != nil {
		return nil, err
	}
	gi := loadGitignore(root)

	pattern := "**/*.{" + strings.Join(trimDots(parser.SourceExtensions), ",") + "}"
	matches, err := doublestar.Glob(os.DirFS(root), pattern)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, fmt.Sprintf("glob %s", pattern))
	}
	sort.Strings(matches)

	args := []string{"-I" + root}
	for _, inc := range opts.IncludeRoots {
		if inc == "" {
			continue
		}
		abs, err := filepath.Abs(inc)
		if err != nil {
			continue
		}
		args = append(args, "-I"+abs)
	}
	args = append(args, opts.Arguments...)

	var units []parser.Unit
	for _, rel := range matches {
		if gi != nil && gi.MatchesPath(rel) {
			continue
		}
		if dir := path.Dir(rel); dir != "." && excl.ExcludesDir(dir) {
			continue
		}
		if excl.ExcludesFile(rel) {
			continue
		}
		units = append(units, parser.Unit{
			File:      filepath.FromSlash(rel),
			Directory: root,
			Arguments: append([]string(nil), args...),
		})
	}
	return units, nil
}

func loadGitignore(root string) *ignore.GitIgnore {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	return gi
}

func trimDots(exts []string) []string {
	out := make([]string, len(exts))
	for i, e := range exts {
		out[i] = strings.TrimPrefix(e, ".")
	}
	return out
}
