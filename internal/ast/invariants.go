package ast

import (
	"fmt"
)

// CheckSpans verifies the structural span invariants of a linked file:
// every child range lies inside its parent range and sibling ranges do not
// overlap. Nodes produced by macro expansion share the invocation range and
// are exempt.
func (b *Builder) CheckSpans(file FileID) error {
	f := b.Files.Get(file)
	if f == nil {
		return fmt.Errorf("file %d not found", file)
	}
	var check func(ref NodeRef) error
	check = func(ref NodeRef) error {
		sp := b.SpanOf(ref)
		if sp.End < sp.Start {
			return fmt.Errorf("node %v has inverted span %v", ref, sp)
		}
		children := b.Children(ref)
		var prevEnd uint32
		var havePrev bool
		for _, child := range children {
			if b.MacroOf(child).IsValid() {
				continue
			}
			csp := b.SpanOf(child)
			if !sp.Contains(csp) && !b.MacroOf(ref).IsValid() {
				return fmt.Errorf("child %v span %v escapes parent %v span %v", child, csp, ref, sp)
			}
			if havePrev && csp.Start < prevEnd {
				return fmt.Errorf("child %v span %v overlaps previous sibling (end %d)", child, csp, prevEnd)
			}
			prevEnd, havePrev = csp.End, true
			if err := check(child); err != nil {
				return err
			}
		}
		return nil
	}
	for _, d := range f.Decls {
		sp := b.SpanOf(DeclRef(d))
		if !f.Span.Contains(sp) {
			return fmt.Errorf("declaration %d span %v outside file span %v", d, sp, f.Span)
		}
		if err := check(DeclRef(d)); err != nil {
			return err
		}
	}
	return nil
}
