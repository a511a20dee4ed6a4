package flow

import "codan/internal/ast"

// Cache memoizes function facts for one checker pass.
// It is not safe for concurrent use; every pass owns its cache.
type Cache struct {
	b *ast.Builder
	m map[ast.DeclID]*Facts
}

func NewCache(b *ast.Builder) *Cache {
	return &Cache{b: b, m: make(map[ast.DeclID]*Facts)}
}

// Function returns the facts of fn, analyzing it on first use.
func (c *Cache) Function(fn ast.DeclID) *Facts {
	if f, ok := c.m[fn]; ok {
		return f
	}
	f := AnalyzeFunction(c.b, fn)
	c.m[fn] = f
	return f
}

// Enclosing returns the facts of the function containing ref, if any.
func (c *Cache) Enclosing(ref ast.NodeRef) (*Facts, bool) {
	fn := c.b.EnclosingFunction(ref)
	if !fn.IsValid() {
		return nil, false
	}
	return c.Function(fn), true
}
