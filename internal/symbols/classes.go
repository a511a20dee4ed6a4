package symbols

import (
	"fmt"
	"slices"
	"strconv"

	"fortio.org/safecast"

	"codan/internal/ast"
)

// BaseEdge is one resolved base-specifier.
type BaseEdge struct {
	Class   ClassID
	Binding ast.BindingID
	Virtual bool
}

// ClassNode is a class with a definition in the unit.
type ClassNode struct {
	Binding ast.BindingID
	Decl    ast.DeclID
	Bases   []BaseEdge
	Methods []ast.DeclID
	// Unresolved is set when a base has no definition in the unit.
	Unresolved bool
}

// Classes is the base-class graph: an arena of class nodes and their base
// edges. Every traversal uses an explicit visited set and respects the depth
// and visit caps; a truncated walk reports itself as incomplete.
type Classes struct {
	b         *ast.Builder
	nodes     []ClassNode
	byBinding map[ast.BindingID]ClassID
	keys      map[ast.DeclID]string
	maxDepth  int
	maxVisits int
}

func newClasses(t *Table, opts Options) *Classes {
	c := &Classes{
		b:         t.B,
		nodes:     make([]ClassNode, 1, len(t.classDecls)+1), // index 0 reserved for NoClassID
		byBinding: make(map[ast.BindingID]ClassID, len(t.classDecls)),
		keys:      make(map[ast.DeclID]string),
		maxDepth:  opts.MaxBaseDepth,
		maxVisits: opts.MaxBaseVisits,
	}
	for _, decl := range t.classDecls {
		d := t.B.Decls.Get(decl)
		if !d.Binding.IsValid() {
			continue
		}
		if _, dup := c.byBinding[d.Binding]; dup {
			continue
		}
		value, err := safecast.Conv[uint32](len(c.nodes))
		if err != nil {
			panic(fmt.Errorf("class graph overflow: %w", err))
		}
		node := ClassNode{Binding: d.Binding, Decl: decl}
		cls, _ := t.B.Decls.Class(decl)
		for _, m := range cls.Members {
			if md := t.B.Decls.Get(m); md != nil && md.Kind == ast.DeclFunction {
				node.Methods = append(node.Methods, m)
				c.keys[m] = t.B.OverrideKey(m)
			}
		}
		c.byBinding[d.Binding] = ClassID(value)
		c.nodes = append(c.nodes, node)
	}
	for i := 1; i < len(c.nodes); i++ {
		node := &c.nodes[i]
		cls, _ := t.B.Decls.Class(node.Decl)
		for _, spec := range cls.Bases {
			base, ok := c.resolveBase(spec.Class)
			if !ok {
				node.Unresolved = true
				continue
			}
			node.Bases = append(node.Bases, BaseEdge{Class: base, Binding: c.nodes[base].Binding, Virtual: spec.Virtual})
		}
	}
	return c
}

// resolveBase follows a typedef naming the base class.
func (c *Classes) resolveBase(b ast.BindingID) (ClassID, bool) {
	bn := c.b.Bindings.Get(b)
	if bn == nil {
		return NoClassID, false
	}
	if bn.Kind == ast.BindTypedef {
		cls, ok := c.b.ClassOf(bn.Type, false)
		if !ok {
			return NoClassID, false
		}
		b = cls
	}
	id, ok := c.byBinding[b]
	return id, ok
}

// Len reports the number of classes excluding the sentinel.
func (c *Classes) Len() int { return len(c.nodes) - 1 }

// Lookup returns the graph node of a class binding.
func (c *Classes) Lookup(b ast.BindingID) (ClassID, bool) {
	id, ok := c.byBinding[b]
	return id, ok
}

// Node returns the class node or nil if ID is invalid.
func (c *Classes) Node(id ClassID) *ClassNode {
	if !id.IsValid() || int(id) >= len(c.nodes) {
		return nil
	}
	return &c.nodes[id]
}

// Ancestors lists every direct and indirect base of id once, nearest first.
// complete is false when a base is undefined or a cap cut the walk short.
func (c *Classes) Ancestors(id ClassID) (out []ClassID, complete bool) {
	node := c.Node(id)
	if node == nil {
		return nil, false
	}
	complete = true
	visited := map[ClassID]bool{id: true}
	type item struct {
		class ClassID
		depth int
	}
	queue := []item{{id, 0}}
	visits := 0
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		n := c.Node(cur.class)
		if n.Unresolved {
			complete = false
		}
		if cur.depth >= c.maxDepth {
			if len(n.Bases) > 0 {
				complete = false
			}
			continue
		}
		for _, e := range n.Bases {
			if visited[e.Class] {
				continue
			}
			if visits >= c.maxVisits {
				return out, false
			}
			visits++
			visited[e.Class] = true
			out = append(out, e.Class)
			queue = append(queue, item{e.Class, cur.depth + 1})
		}
	}
	return out, complete
}

// IsBaseOf reports whether base is a direct or indirect base of derived.
func (c *Classes) IsBaseOf(base, derived ClassID) bool {
	ancestors, _ := c.Ancestors(derived)
	return slices.Contains(ancestors, base)
}

// declares reports whether the class declares a method with the override key.
func (c *Classes) declares(id ClassID, key string) bool {
	for _, m := range c.nodes[id].Methods {
		if c.keys[m] == key {
			return true
		}
	}
	return false
}

// Overridden returns the base-class methods the given in-class method overrides.
func (c *Classes) Overridden(method ast.DeclID) []ast.DeclID {
	key, ok := c.keys[method]
	if !ok {
		return nil
	}
	owner, ok := c.ownerOf(method)
	if !ok {
		return nil
	}
	ancestors, _ := c.Ancestors(owner)
	var out []ast.DeclID
	for _, a := range ancestors {
		for _, m := range c.nodes[a].Methods {
			if c.keys[m] == key {
				out = append(out, m)
			}
		}
	}
	return out
}

func (c *Classes) ownerOf(method ast.DeclID) (ClassID, bool) {
	fn, ok := c.b.Decls.Function(method)
	if !ok {
		return NoClassID, false
	}
	return c.Lookup(fn.Owner)
}

// IsVirtual reports a method declared virtual or overriding a virtual method
// of some base.
func (c *Classes) IsVirtual(method ast.BindingID) bool {
	bn := c.b.Bindings.Get(method)
	if bn == nil || bn.Kind != ast.BindMethod {
		return false
	}
	if bn.Has(ast.FlagVirtual) || bn.Has(ast.FlagOverride) || bn.Has(ast.FlagPure) {
		return true
	}
	for _, m := range c.Overridden(bn.Decl) {
		if b := c.b.Bindings.Get(c.b.Decls.Get(m).Binding); b != nil && b.Has(ast.FlagVirtual) {
			return true
		}
	}
	return false
}

// Destructor returns the in-class destructor declaration, if any.
func (c *Classes) Destructor(id ClassID) (ast.DeclID, bool) {
	node := c.Node(id)
	if node == nil {
		return ast.NoDeclID, false
	}
	for _, m := range node.Methods {
		if fn, _ := c.b.Decls.Function(m); fn.Special == ast.FnDestructor {
			return m, true
		}
	}
	return ast.NoDeclID, false
}

// HasVirtualMethods reports whether the class or any base declares a virtual method.
func (c *Classes) HasVirtualMethods(id ClassID) bool {
	ancestors, _ := c.Ancestors(id)
	for _, cls := range append([]ClassID{id}, ancestors...) {
		for _, m := range c.nodes[cls].Methods {
			if fn, _ := c.b.Decls.Function(m); fn.Has(ast.FnVirtual) || fn.Has(ast.FnPure) || fn.Has(ast.FnOverride) {
				return true
			}
		}
	}
	return false
}

// subobject is one base-class subobject of a most-derived class together
// with every inheritance path reaching it. Each path starts at the most
// derived class and ends at the subobject class.
type subobject struct {
	class ClassID
	paths [][]ClassID
}

// subobjects enumerates base subobjects depth-first. Virtual bases are shared
// across paths; non-virtual ones are distinct per path.
func (c *Classes) subobjects(root ClassID) ([]*subobject, bool) {
	complete := true
	byKey := make(map[string]*subobject)
	var order []*subobject
	visits := 0
	var walk func(cls ClassID, key string, path []ClassID)
	walk = func(cls ClassID, key string, path []ClassID) {
		if visits >= c.maxVisits {
			complete = false
			return
		}
		visits++
		so := byKey[key]
		if so == nil {
			so = &subobject{class: cls}
			byKey[key] = so
			order = append(order, so)
		}
		so.paths = append(so.paths, path)
		node := &c.nodes[cls]
		if node.Unresolved {
			complete = false
		}
		if len(path) > c.maxDepth {
			if len(node.Bases) > 0 {
				complete = false
			}
			return
		}
		for _, e := range node.Bases {
			if slices.Contains(path, e.Class) {
				continue // inheritance cycle
			}
			next := key + "/" + strconv.FormatUint(uint64(e.Class), 10)
			if e.Virtual {
				next = "v" + strconv.FormatUint(uint64(e.Class), 10)
			}
			walk(e.Class, next, append(path[:len(path):len(path)], e.Class))
		}
	}
	walk(root, "", []ClassID{root})
	return order, complete
}

// PureVirtuals returns the pure virtual methods a class leaves unimplemented.
// A pure method of a subobject counts only if no class on any path from the
// most derived class down to that subobject declares an overrider, so an
// implementation in one branch of a diamond is enough. Pure destructors are
// never reported. complete is false when the hierarchy could not be fully
// explored; callers should not report on incomplete results.
func (c *Classes) PureVirtuals(id ClassID) (methods []ast.DeclID, complete bool) {
	if c.Node(id) == nil {
		return nil, false
	}
	subs, complete := c.subobjects(id)
	seen := make(map[ast.DeclID]bool)
	for _, so := range subs {
		for _, m := range c.nodes[so.class].Methods {
			fn, _ := c.b.Decls.Function(m)
			if !fn.Has(ast.FnPure) || fn.Special == ast.FnDestructor || seen[m] {
				continue
			}
			if c.overriddenOnSomePath(so, c.keys[m]) {
				continue
			}
			seen[m] = true
			methods = append(methods, m)
		}
	}
	return methods, complete
}

func (c *Classes) overriddenOnSomePath(so *subobject, key string) bool {
	for _, path := range so.paths {
		for _, cls := range path[:len(path)-1] {
			if c.declares(cls, key) {
				return true
			}
		}
	}
	return false
}
