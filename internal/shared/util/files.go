// Package util holds small helpers shared by the compile-database, output and
// app packages.
package util

import (
	"os"
	"path/filepath"
	"strings"
)

// WithinDir reports whether path is dir or lies below it. Paths are cleaned
// first, so "src" does not contain "srcgen".
func WithinDir(path, dir string) bool {
	p, d := cleanSlash(path), cleanSlash(dir)
	if p == "" || d == "" {
		return p == d
	}
	if p == d {
		return true
	}
	if !strings.HasSuffix(d, "/") {
		d += "/"
	}
	return strings.HasPrefix(p, d)
}

func cleanSlash(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	return filepath.ToSlash(filepath.Clean(p))
}

// WriteFileAtomic writes content next to path under a temporary name and
// renames it into place, creating parent directories. A reader of path sees
// the old diagram or the new one, never a partial file.
func WriteFileAtomic(path, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(name)
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return err
	}
	return nil
}
