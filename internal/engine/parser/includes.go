package parser

import (
	"os"
	"path/filepath"
	"strings"
)

// IncludePaths are the header search roots of one translation unit.
type IncludePaths struct {
	Quote  []string // -iquote
	Angled []string // -I
	System []string // -isystem
}

// IncludePathsFromArgs collects -I, -iquote and -isystem roots from compiler
// arguments. Both the joined ("-Idir") and separate ("-I dir") forms are
// accepted; relative roots are resolved against dir.
func IncludePathsFromArgs(args []string, dir string) IncludePaths {
	var paths IncludePaths
	for i := 0; i < len(args); i++ {
		arg := args[i]
		for _, opt := range []struct {
			flag string
			dst  *[]string
		}{
			{"-iquote", &paths.Quote},
			{"-isystem", &paths.System},
			{"-I", &paths.Angled},
		} {
			if !strings.HasPrefix(arg, opt.flag) {
				continue
			}
			value := strings.TrimPrefix(arg, opt.flag)
			if value == "" && i+1 < len(args) {
				i++
				value = args[i]
			}
			if value != "" {
				*opt.dst = append(*opt.dst, absPath(value, dir))
			}
			break
		}
	}
	return paths
}

// Roots returns every search root, quote roots first.
func (p IncludePaths) Roots() []string {
	out := make([]string, 0, len(p.Quote)+len(p.Angled)+len(p.System))
	out = append(out, p.Quote...)
	out = append(out, p.Angled...)
	return append(out, p.System...)
}

// resolve finds the file an #include directive names. Quoted includes search
// the including file's directory first.
func (p IncludePaths) resolve(name string, quoted bool, includer string) (string, bool) {
	var candidates []string
	if filepath.IsAbs(name) {
		candidates = []string{name}
	} else {
		if quoted {
			candidates = append(candidates, filepath.Dir(includer))
			candidates = append(candidates, p.Quote...)
		}
		candidates = append(candidates, p.Angled...)
		candidates = append(candidates, p.System...)
		for i, root := range candidates {
			candidates[i] = filepath.Join(root, name)
		}
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && info.Mode().IsRegular() {
			return filepath.Clean(c), true
		}
	}
	return "", false
}

func absPath(path, dir string) string {
	if filepath.IsAbs(path) || dir == "" {
		return filepath.Clean(path)
	}
	return filepath.Clean(filepath.Join(dir, path))
}

// includeTarget splits an #include operand into its name and form.
func includeTarget(raw string) (string, bool, bool) {
	raw = strings.TrimSpace(raw)
	switch {
	case len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"':
		return raw[1 : len(raw)-1], true, true
	case len(raw) >= 2 && raw[0] == '<' && raw[len(raw)-1] == '>':
		return raw[1 : len(raw)-1], false, true
	}
	return "", false, false
}
