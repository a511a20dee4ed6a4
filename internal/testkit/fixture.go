// Package testkit builds resolved C/C++ ASTs for tests: the source text is
// real, node spans are located by substring search in it.
package testkit

import (
	"fmt"
	"strings"

	"fortio.org/safecast"

	"codan/internal/ast"
	"codan/internal/source"
)

// Fixture accumulates one translation unit.
type Fixture struct {
	Src   string
	Files *source.FileSet
	File  source.FileID
	B     *ast.Builder
	Unit  ast.FileID

	group uint32
	built bool
}

// New creates a fixture for src stored under path.
func New(path, src string) *Fixture {
	fs := source.NewFileSet()
	fid := fs.AddVirtual(path, []byte(src))
	b := ast.NewBuilder(ast.Hints{})
	lang := ast.LangCXX
	if strings.HasSuffix(path, ".c") {
		lang = ast.LangC
	}
	unit := b.NewFile(path, source.Span{File: fid, Start: 0, End: off(len(src))}, lang)
	return &Fixture{Src: src, Files: fs, File: fid, B: b, Unit: unit}
}

func off(n int) uint32 {
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("offset overflow: %w", err))
	}
	return v
}

// At returns the span of the only occurrence of text.
func (f *Fixture) At(text string) source.Span {
	first := strings.Index(f.Src, text)
	if first < 0 {
		panic(fmt.Sprintf("testkit: %q not found", text))
	}
	if strings.Contains(f.Src[first+1:], text) {
		panic(fmt.Sprintf("testkit: %q is ambiguous, use AtN or In", text))
	}
	return f.span(first, len(text))
}

// AtN returns the span of the n-th (0-based) occurrence of text.
func (f *Fixture) AtN(text string, n int) source.Span {
	pos := -1
	for i := 0; i <= n; i++ {
		next := strings.Index(f.Src[pos+1:], text)
		if next < 0 {
			panic(fmt.Sprintf("testkit: occurrence %d of %q not found", n, text))
		}
		pos += next + 1
	}
	return f.span(pos, len(text))
}

// In returns the span of the first occurrence of text inside outer.
func (f *Fixture) In(outer source.Span, text string) source.Span {
	idx := strings.Index(f.Src[outer.Start:outer.End], text)
	if idx < 0 {
		panic(fmt.Sprintf("testkit: %q not found inside %q", text, f.Src[outer.Start:outer.End]))
	}
	return f.span(int(outer.Start)+idx, len(text))
}

func (f *Fixture) span(start, n int) source.Span {
	return source.Span{File: f.File, Start: off(start), End: off(start + n)}
}

// Text returns the source text of a span.
func (f *Fixture) Text(sp source.Span) string {
	return f.Src[sp.Start:sp.End]
}

// Build links parents and records comments. It may be called once.
func (f *Fixture) Build() *ast.Builder {
	if !f.built {
		f.built = true
		unit := f.B.Files.Get(f.Unit)
		unit.Comments = source.ScanComments(f.File, []byte(f.Src))
		f.B.Link(f.Unit)
	}
	return f.B
}

// AnalysisUnit builds the fixture and wraps it for the engine.
func (f *Fixture) AnalysisUnit() *ast.Unit {
	return &ast.Unit{AST: f.Build(), Sources: f.Files, File: f.Unit}
}

// NextGroup returns a fresh declarator group id for `int a, b;` style declarations.
func (f *Fixture) NextGroup() uint32 {
	f.group++
	return f.group
}

// Top appends declarations to the translation unit.
func (f *Fixture) Top(decls ...ast.DeclID) {
	for _, d := range decls {
		f.B.PushDecl(f.Unit, d)
	}
}

// Macro records an expansion at invocation and marks nodes as expanded from it.
func (f *Fixture) Macro(name string, invocation, body source.Span, nodes ...ast.NodeRef) ast.MacroID {
	m := f.B.NewMacro(f.Unit, ast.MacroExpansion{Name: name, Span: invocation, Body: body})
	for _, n := range nodes {
		f.B.MarkMacro(n, m)
	}
	return m
}

// Word returns the first whole-word occurrence of name inside outer.
func (f *Fixture) Word(outer source.Span, name string) source.Span {
	text := f.Src[outer.Start:outer.End]
	for from := 0; from <= len(text); {
		idx := strings.Index(text[from:], name)
		if idx < 0 {
			break
		}
		start := from + idx
		end := start + len(name)
		if (start == 0 || !isIdent(text[start-1])) && (end == len(text) || !isIdent(text[end])) {
			return f.span(int(outer.Start)+start, len(name))
		}
		from = start + 1
	}
	panic(fmt.Sprintf("testkit: word %q not found inside %q", name, text))
}

func isIdent(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
