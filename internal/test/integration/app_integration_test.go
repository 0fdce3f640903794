package integration

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"cppuml/internal/core/app"
	"cppuml/internal/core/config"
	"cppuml/internal/core/ports"
	"cppuml/internal/data/history"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shapesHeader = `#pragma once
namespace A {
class Shape {
public:
  virtual float area() const = 0;
};
}
`

const circleSource = `#include "shapes.hpp"

namespace A {
namespace B {
class Circle : public Shape {
public:
  float area() const;
private:
  float radius;
};

class Ring : public Circle {
private:
  Circle inner;
};
}
}
`

const widgetSource = `#include "shapes.hpp"

class Widget {
  A::Shape *shape;
};
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// createProject lays out a small C++ tree with a compile database in build/
// and a TOML config at the project root.
func createProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	writeFile(t, filepath.Join(src, "shapes.hpp"), shapesHeader)
	writeFile(t, filepath.Join(src, "circle.cpp"), circleSource)
	writeFile(t, filepath.Join(src, "widget.cpp"), widgetSource)
	writeFile(t, filepath.Join(src, "gen", "skip.cpp"), "class Generated {};\n")

	db := `[
  {"directory": "` + src + `", "file": "circle.cpp", "arguments": ["c++", "-std=c++17", "-c", "circle.cpp"]},
  {"directory": "` + src + `", "file": "widget.cpp", "command": "c++ -std=c++17 -c widget.cpp"},
  {"directory": "` + src + `", "file": "gen/skip.cpp", "command": "c++ -c gen/skip.cpp"}
]`
	writeFile(t, filepath.Join(dir, "build", "compile_commands.json"), db)

	cfg := `project = "shapes"

[paths]
source_root = "src"
compile_db = "build"
output_dir = "docs/uml"

[output]
format = "dot"

[exclude]
dirs = ["gen"]

[history]
enabled = true
`
	writeFile(t, filepath.Join(dir, config.DefaultFile), cfg)
	return dir
}

func TestFullGenerationWorkflow(t *testing.T) {
	dir := createProject(t)
	cfg, err := config.Load(filepath.Join(dir, config.DefaultFile))
	require.NoError(t, err)

	a, err := app.New(cfg, dir)
	require.NoError(t, err)
	defer a.Close(context.Background())

	units, err := a.LoadUnits(context.Background())
	require.NoError(t, err)
	require.Len(t, units, 2, "gen/ is excluded")

	res, err := a.Generator().Generate(context.Background(), ports.GenerateRequest{})
	require.NoError(t, err)

	assert.Equal(t, history.StatusOK, res.Run.Status)
	assert.Equal(t, 2, res.Run.Units)
	assert.Equal(t, 4, res.Run.Classes, "Shape is registered once across both units")
	assert.Equal(t, 3, res.Run.Namespaces)
	assert.Equal(t, 2, res.Run.ResolvedParents)

	out := filepath.Join(dir, "docs", "uml")
	for _, name := range []string{"A.puml", "A::B.puml", "_global.puml", "compact.dot", "main.dot"} {
		assert.FileExists(t, filepath.Join(out, name))
	}

	nested, err := os.ReadFile(filepath.Join(out, "A::B.puml"))
	require.NoError(t, err)
	text := string(nested)
	assert.True(t, strings.HasPrefix(text, "@startuml\nset namespaceSeparator ::\n"))
	assert.Contains(t, text, "class Circle<<A::Shape>> {")
	assert.Contains(t, text, "\t-radius : float\n")
	assert.Contains(t, text, "A::B::Circle <|-- A::B::Ring\n")
	assert.Contains(t, text, "A::B::Ring *-- A::B::Circle\n")
	assert.NotContains(t, text, "Generated")

	compact, err := os.ReadFile(filepath.Join(out, "compact.dot"))
	require.NoError(t, err)
	assert.Contains(t, string(compact), `"A" -> "A::B"`)
}

func TestRepeatedRunsAreRecorded(t *testing.T) {
	dir := createProject(t)
	cfg, err := config.Load(filepath.Join(dir, config.DefaultFile))
	require.NoError(t, err)

	a, err := app.New(cfg, dir)
	require.NoError(t, err)
	gen := a.Generator()

	first, err := gen.Generate(context.Background(), ports.GenerateRequest{})
	require.NoError(t, err)

	writeFile(t, filepath.Join(dir, "src", "circle.cpp"),
		circleSource+"\nnamespace A {\nclass Square : public Shape {};\n}\n")
	second, err := gen.Generate(context.Background(), ports.GenerateRequest{})
	require.NoError(t, err)
	require.NotNil(t, second.Previous)
	assert.Equal(t, first.Run.ID, second.Previous.ID)
	assert.Equal(t, 1, history.Compare(*second.Previous, second.Run).Classes)
	require.NoError(t, gen.Close(context.Background()))

	store, err := history.Open(filepath.Join(dir, ".cppuml", "history.db"))
	require.NoError(t, err)
	defer store.Close()
	runs, err := store.LoadRuns("shapes", time.Time{})
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, first.Run.ID, runs[0].ID)
	assert.Equal(t, 5, runs[1].Classes)
}
