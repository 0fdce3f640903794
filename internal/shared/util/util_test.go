package util

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithinDir(t *testing.T) {
	cases := []struct {
		name string
		path string
		dir  string
		want bool
	}{
		{"same dir", "/repo/src", "/repo/src", true},
		{"header below root", "/repo/src/geo/shape.hpp", "/repo/src", true},
		{"trailing slash root", "/repo/src/a.cpp", "/repo/src/", true},
		{"sibling with shared prefix", "/repo/srcgen/a.cpp", "/repo/src", false},
		{"system header", "/usr/include/vector", "/repo/src", false},
		{"unclean path", "/repo/src/../src/a.cpp", "/repo/src", true},
		{"escapes root", "/repo/src/../vendor/a.hpp", "/repo/src", false},
		{"filesystem root", "/usr/include/vector", "/", true},
		{"empty root", "/repo/src/a.cpp", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, WithinDir(tc.path, tc.dir))
		})
	}
}

func TestWriteFileAtomicReplacesDiagram(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "uml", "A.puml")

	require.NoError(t, WriteFileAtomic(path, "@startuml\n@enduml\n"))
	require.NoError(t, WriteFileAtomic(path, "@startuml\nclass X {\n}\n@enduml\n"))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "@startuml\nclass X {\n}\n@enduml\n", string(got))

	entries, err := os.ReadDir(filepath.Join(dir, "uml"))
	require.NoError(t, err)
	require.Len(t, entries, 1, "no temporary files are left behind")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestWriteFileAtomicFailsOnFileAsDirectory(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "uml")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	assert.Error(t, WriteFileAtomic(filepath.Join(blocker, "A.puml"), "text"))
}

func TestMemoryUsageLogsAsGroup(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	logger.Info("run finished", "memory", MemoryUsage{HeapMB: 12.5, NumGC: 3})
	assert.Contains(t, buf.String(), "memory.heap_mb=12.5 memory.gc_cycles=3")

	assert.GreaterOrEqual(t, ReadMemoryUsage().HeapMB, 0.0)
}
