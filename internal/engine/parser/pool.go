package parser

import (
	"sync"
	"sync/atomic"

	"cppuml/internal/core/errors"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// ParserPool hands out C++ parsers. Include expansion parses headers while the
// including file's tree is still being read, so one unit holds a parser per
// open include level.
type ParserPool struct {
	lang *sitter.Language
	idle sync.Pool

	created atomic.Int64
	inUse   atomic.Int64
}

// PoolStats counts parsers built by the pool and parsers currently checked out.
type PoolStats struct {
	Created int64
	InUse   int64
}

func NewParserPool(lang *sitter.Language) *ParserPool {
	return &ParserPool{lang: lang}
}

// Get returns a parser bound to the pool's grammar. It fails when the grammar
// was built for an ABI the runtime does not accept.
func (p *ParserPool) Get() (*sitter.Parser, error) {
	sp, ok := p.idle.Get().(*sitter.Parser)
	if !ok {
		sp = sitter.NewParser()
		p.created.Add(1)
	}
	if err := sp.SetLanguage(p.lang); err != nil {
		sp.Close()
		return nil, errors.Wrap(err, errors.CodeInternal, "bind C++ grammar")
	}
	p.inUse.Add(1)
	return sp, nil
}

// Put returns sp for reuse. Trees it produced stay valid.
func (p *ParserPool) Put(sp *sitter.Parser) {
	if sp == nil {
		return
	}
	p.inUse.Add(-1)
	sp.Reset()
	p.idle.Put(sp)
}

func (p *ParserPool) Stats() PoolStats {
	return PoolStats{Created: p.created.Load(), InUse: p.inUse.Load()}
}
