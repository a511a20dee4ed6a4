package diag

import (
	"testing"

	"codan/internal/source"
)

func TestFormatGolden(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.AddVirtual("./src/sample.cpp", []byte("a\nb\n"))

	problems := []Problem{
		New("SymbolShadowing", SevWarning, source.Span{File: file, Start: 2, End: 3}, "another"),
		New("NoReturn", SevError, source.Span{File: file, Start: 0, End: 1}, "first line\nsecond").
			WithNote(source.Span{File: file, Start: 2, End: 3}, "note line"),
	}

	expected := "error NoReturn src/sample.cpp:1:1 first line second\n" +
		"note NoReturn src/sample.cpp:2:1 note line\n" +
		"warning SymbolShadowing src/sample.cpp:2:1 another"

	if got := FormatGolden(problems, fs, true); got != expected {
		t.Fatalf("unexpected golden output:\nwant:\n%s\n\ngot:\n%s", expected, got)
	}
}
