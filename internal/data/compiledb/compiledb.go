// Package compiledb lists the translation units of a build, either from a
// compile_commands.json database or by discovering sources on disk.
package compiledb

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"cppuml/internal/core/errors"
	"cppuml/internal/engine/parser"
	"cppuml/internal/shared/util"

	"github.com/google/shlex"
)

// FileName is the conventional name of a compile-command database.
const FileName = "compile_commands.json"

// entry is one object of compile_commands.json. Exactly one of Arguments and
// Command is normally set.
type entry struct {
	Directory string   `json:"directory"`
	File      string   `json:"file"`
	Arguments []string `json:"arguments"`
	Command   string   `json:"command"`
	Output    string   `json:"output"`
}

// Locate returns the database path for path, which may name the file itself
// or a build directory that contains it.
func Locate(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", errors.Newf(errors.CodeNotFound, "compile database: %v", err).
			WithContext(errors.CtxPath, path)
	}
	if info.IsDir() {
		path = filepath.Join(path, FileName)
		if _, err := os.Stat(path); err != nil {
			return "", errors.Newf(errors.CodeNotFound, "no %s in build directory", FileName).
				WithContext(errors.CtxPath, path)
		}
	}
	return path, nil
}

// Skipped is a database entry that could not be turned into a unit.
type Skipped struct {
	Index int
	// Path is the entry's main file, empty when the entry names none.
	Path string
	Err  error
}

// Load reads the database at path (file or build directory) and returns its
// units in database order, plus the entries that were skipped.
func Load(path string) ([]parser.Unit, []Skipped, error) {
	dbPath, err := Locate(path)
	if err != nil {
		return nil, nil, err
	}
	data, err := os.ReadFile(dbPath)
	if err != nil {
		return nil, nil, errors.Newf(errors.CodeIOFailed, "read compile database: %v", err).
			WithContext(errors.CtxPath, dbPath)
	}
	return Parse(data, filepath.Dir(dbPath))
}

// Parse decodes database JSON. Relative directories are resolved against
// base, the directory holding the database. An entry without a file or with
// a command that cannot be split is skipped with a PARSE_FAILED error; only
// undecodable JSON fails the whole database.
func Parse(data []byte, base string) ([]parser.Unit, []Skipped, error) {
	var entries []entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, nil, errors.Wrap(err, errors.CodeValidationError, "decode compile database")
	}
	units := make([]parser.Unit, 0, len(entries))
	var skipped []Skipped
	for i, e := range entries {
		u, err := unitFor(e, base)
		if err != nil {
			var path string
			if u.File != "" {
				path = u.Path()
			}
			skipped = append(skipped, Skipped{
				Index: i,
				Path:  path,
				Err:   errors.AddContext(err, errors.CtxOperation, fmt.Sprintf("entry %d", i)),
			})
			continue
		}
		units = append(units, u)
	}
	return units, skipped, nil
}

func unitFor(e entry, base string) (parser.Unit, error) {
	dir := e.Directory
	if dir == "" {
		dir = base
	} else if !filepath.IsAbs(dir) {
		dir = filepath.Join(base, dir)
	}
	if e.File == "" {
		return parser.Unit{}, errors.New(errors.CodeParseFailed, "compile command without file")
	}
	u := parser.Unit{File: e.File, Directory: filepath.Clean(dir)}

	args := e.Arguments
	if len(args) == 0 && e.Command != "" {
		split, err := shlex.Split(e.Command)
		if err != nil {
			return u, errors.Newf(errors.CodeParseFailed, "split compile command: %v", err).
				WithContext(errors.CtxUnit, e.File)
		}
		args = split
	}

	u.Arguments = compilerArgs(args, u, e.Output)
	return u, nil
}

// compilerArgs drops the compiler executable, the main file and the object
// output from a command line.
func compilerArgs(args []string, u parser.Unit, output string) []string {
	if len(args) == 0 {
		return nil
	}
	main := u.Path()
	out := make([]string, 0, len(args)-1)
	for i := 1; i < len(args); i++ {
		a := args[i]
		switch {
		case a == u.File || resolve(a, u.Directory) == main:
			continue
		case a == "-c":
			continue
		case a == "-o" && i+1 < len(args):
			i++
			continue
		case output != "" && a == "-o"+output:
			continue
		}
		out = append(out, a)
	}
	return out
}

func resolve(path, dir string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(dir, path)
}

// FilterRoot keeps the units whose main file lies under root, preserving order.
func FilterRoot(units []parser.Unit, root string) []parser.Unit {
	if root == "" {
		return units
	}
	var out []parser.Unit
	for _, u := range units {
		if InRoots(u.Path(), []string{root}) {
			out = append(out, u)
		}
	}
	return out
}

// InRoots reports whether path lies under any of roots.
func InRoots(path string, roots []string) bool {
	for _, r := range roots {
		if r != "" && util.WithinDir(path, r) {
			return true
		}
	}
	return false
}
