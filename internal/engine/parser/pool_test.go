package parser

import (
	"sync"
	"testing"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cppLanguage() *sitter.Language {
	return sitter.NewLanguage(tree_sitter_cpp.Language())
}

func TestPoolTracksCheckedOutParsers(t *testing.T) {
	pool := NewParserPool(cppLanguage())

	sp, err := pool.Get()
	require.NoError(t, err)
	assert.Equal(t, PoolStats{Created: 1, InUse: 1}, pool.Stats())

	pool.Put(sp)
	assert.Equal(t, int64(0), pool.Stats().InUse)

	pool.Put(nil)
	assert.Equal(t, int64(0), pool.Stats().InUse)
}

func TestPoolNestedLeasesForIncludes(t *testing.T) {
	pool := NewParserPool(cppLanguage())

	outer, err := pool.Get()
	require.NoError(t, err)
	outerTree := outer.Parse([]byte("#include \"inner.hpp\"\nnamespace a { class B {}; }\n"), nil)
	require.NotNil(t, outerTree)
	defer outerTree.Close()

	inner, err := pool.Get()
	require.NoError(t, err)
	assert.NotSame(t, outer, inner)
	innerTree := inner.Parse([]byte("struct S { int x; };\n"), nil)
	require.NotNil(t, innerTree)
	defer innerTree.Close()
	pool.Put(inner)
	pool.Put(outer)

	assert.False(t, outerTree.RootNode().HasError())
	assert.False(t, innerTree.RootNode().HasError())
	assert.Equal(t, int64(2), pool.Stats().Created)
}

func TestPoolParserReusableAfterPut(t *testing.T) {
	pool := NewParserPool(cppLanguage())

	sp, err := pool.Get()
	require.NoError(t, err)
	pool.Put(sp)

	sp, err = pool.Get()
	require.NoError(t, err)
	defer pool.Put(sp)
	tree := sp.Parse([]byte("class Ok {};\n"), nil)
	require.NotNil(t, tree)
	defer tree.Close()
	assert.Equal(t, "translation_unit", tree.RootNode().Kind())
}

func TestPoolConcurrentUnits(t *testing.T) {
	pool := NewParserPool(cppLanguage())
	src := []byte("namespace geo { struct Point { int x; int y; }; }\n")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				sp, err := pool.Get()
				if !assert.NoError(t, err) {
					return
				}
				if tree := sp.Parse(src, nil); assert.NotNil(t, tree) {
					tree.Close()
				}
				pool.Put(sp)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(0), pool.Stats().InUse)
}
