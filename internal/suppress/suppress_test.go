package suppress

import (
	"strings"
	"testing"

	"codan/internal/diag"
	"codan/internal/source"
)

const sample = `void f() {
  int x = 1; // @suppress("Symbol shadowing")
  int y = 2;
  /* @suppress("Magic number") @suppress("C-style cast") */ int z = 3;
  if (a) {
    // @suppress("Unreachable code")
    foo();
  }
  int w = 4; // @suppress("Caf` + "\u00e9" + `")
}
#define M(v) v /* @suppress("Assignment to itself") */
int q = M(q);
`

type fixture struct {
	fs   *source.FileSet
	file source.FileID
	idx  *Index
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fs := source.NewFileSet()
	file := fs.AddVirtual("s.cpp", []byte(sample))
	comments := source.ScanComments(file, []byte(sample))
	fx := &fixture{fs: fs, file: file}
	macroBody := fx.at("v /* @suppress(\"Assignment to itself\") */")
	fx.idx = Build(fs, comments, []source.Span{macroBody})
	return fx
}

func (fx *fixture) at(text string) source.Span {
	i := strings.Index(sample, text)
	if i < 0 {
		panic("missing " + text)
	}
	return source.Span{File: fx.file, Start: uint32(i), End: uint32(i + len(text))} //nolint:gosec // small test input
}

func (fx *fixture) problem(text string) *diag.Problem {
	p := diag.New("Rule", diag.SevWarning, fx.at(text), "msg")
	return &p
}

func TestParseComment(t *testing.T) {
	got := ParseComment(` @suppress("A") text @suppress ( "B c" ) @suppress("unterminated`)
	if len(got) != 2 || got[0] != "A" || got[1] != "B c" {
		t.Fatalf("ParseComment = %q", got)
	}
	if got := ParseComment(" @suppress(A) "); len(got) != 0 {
		t.Fatalf("unquoted name accepted: %q", got)
	}
}

func TestIsSuppressed(t *testing.T) {
	fx := newFixture(t)
	tests := []struct {
		name    string
		problem string
		rule    string
		stmt    string
		want    bool
	}{
		{"same line", "x = 1", "Symbol shadowing", "int x = 1;", true},
		{"case sensitive", "x = 1", "symbol shadowing", "int x = 1;", false},
		{"next line", "y = 2", "Symbol shadowing", "int y = 2;", false},
		{"first of two names", "3", "Magic number", "int z = 3;", true},
		{"second of two names", "3", "C-style cast", "int z = 3;", true},
		{"inside enclosing statement", "foo();", "Unreachable code", "if (a) {\n    // @suppress(\"Unreachable code\")\n    foo();\n  }", true},
		{"line above is not enough", "foo();", "Unreachable code", "foo();", false},
		{"nfc normalized", "w = 4", "Cafe\u0301", "int w = 4;", true},
		{"macro body comment ignored", "v /*", "Assignment to itself", "v /*", false},
	}
	for _, tt := range tests {
		got := fx.idx.IsSuppressed(fx.problem(tt.problem), tt.rule, fx.at(tt.stmt))
		if got != tt.want {
			t.Fatalf("%s: IsSuppressed = %v, want %v", tt.name, got, tt.want)
		}
	}
}
