package ast

import "codan/internal/source"

// Lang is the language of a translation unit.
type Lang uint8

const (
	LangCXX Lang = iota
	LangC
)

func (l Lang) String() string {
	if l == LangC {
		return "c"
	}
	return "c++"
}

// File is one translation unit: its top-level declarations, the comments of
// its main source file and the macro expansions recorded by the parser.
type File struct {
	Span     source.Span
	Path     string
	Lang     Lang
	Decls    []DeclID
	Comments []source.Comment
	Macros   []MacroID
}

// IsHeader reports whether the unit's main file is a header.
func (f *File) IsHeader() bool {
	return source.IsHeaderPath(f.Path)
}

type Files struct {
	Arena *Arena[File]
}

func NewFiles(capHint uint) *Files {
	return &Files{Arena: NewArena[File](capHint)}
}

func (f *Files) New(path string, span source.Span, lang Lang) FileID {
	return FileID(f.Arena.Allocate(File{Span: span, Path: path, Lang: lang}))
}

func (f *Files) Get(id FileID) *File {
	return f.Arena.Get(uint32(id))
}

// MacroExpansion records one macro invocation. Span is the invocation in the
// unit's text, Body the replacement list in the macro definition (may be empty).
type MacroExpansion struct {
	Name string
	Span source.Span
	Body source.Span
}

type Macros struct {
	Arena *Arena[MacroExpansion]
}

func NewMacros(capHint uint) *Macros {
	return &Macros{Arena: NewArena[MacroExpansion](capHint)}
}

func (m *Macros) Get(id MacroID) *MacroExpansion {
	return m.Arena.Get(uint32(id))
}

// Unit is the input of one analysis run: a linked AST, the source texts its
// spans point into and the translation unit to analyze.
type Unit struct {
	AST     *Builder
	Sources *source.FileSet
	File    FileID
}

// Main returns the analyzed translation unit.
func (u *Unit) Main() *File {
	return u.AST.Files.Get(u.File)
}

// Text returns the source text of a span, empty when Sources is unset.
func (u *Unit) Text(sp source.Span) string {
	if u.Sources == nil {
		return ""
	}
	return u.Sources.Text(sp)
}
