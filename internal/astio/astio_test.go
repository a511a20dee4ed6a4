package astio

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"codan/internal/ast"
	"codan/internal/checkers"
	"codan/internal/config"
	"codan/internal/diag"
	"codan/internal/engine"
	"codan/internal/testkit"
)

const src = `struct A { virtual void f() = 0; };
void g() {
  A a; // the abstract class is instantiated here
  goto out;
out: ;
}`

func fixture() *testkit.Fixture {
	f := testkit.New("dump.cpp", src)
	a := f.Class("A", f.At("struct A { virtual void f() = 0; };"), ast.KeyStruct)
	a.Method("f", f.At("virtual void f() = 0;"), f.TVoid(), ast.FnVirtual|ast.FnPure, nil, ast.NoStmtID)
	fn := f.At(src[strings.Index(src, "void g"):])
	local := f.Local("a", f.At("A a;"), f.TClass(a), ast.NoExprID)
	label := f.At("out: ;")
	f.Func("g", fn, f.TVoid(), 0, nil, f.Block(f.At(src[strings.Index(src, "{\n"):]),
		f.DeclStmt(f.At("A a;"), local),
		f.Goto(f.At("goto out;"), "out"),
		f.Label(label, "out", f.Null(f.In(label, ";"))),
	))
	return f
}

func problems(t *testing.T, unit *ast.Unit) string {
	t.Helper()
	reg := checkers.Registry()
	cfg := config.Default(reg.Specs())
	res, err := engine.Run(context.Background(), unit, reg, cfg, engine.Options{Jobs: 1})
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	return diag.FormatGolden(res.Problems, unit.Sources, false)
}

func TestRoundTrip(t *testing.T) {
	for _, format := range []Format{FormatMsgpack, FormatJSON} {
		t.Run(format.String(), func(t *testing.T) {
			unit := fixture().AnalysisUnit()
			want := problems(t, unit)
			if !strings.Contains(want, "AbstractClassCreation") {
				t.Fatalf("fixture produced no abstract class problem:\n%s", want)
			}

			var buf bytes.Buffer
			if err := Encode(&buf, unit, format); err != nil {
				t.Fatalf("Encode: %v", err)
			}
			back, err := Decode(&buf, format)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if got := problems(t, back); got != want {
				t.Fatalf("problems after round trip:\n%s\nwant:\n%s", got, want)
			}
			if n := len(back.Main().Comments); n != 1 {
				t.Fatalf("comments after round trip = %d, want 1", n)
			}
			if back.Text(back.Main().Span) != src {
				t.Fatalf("source text lost")
			}
		})
	}
}

func TestHashIsStable(t *testing.T) {
	h1, err := Hash(fixture().AnalysisUnit())
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	h2, _ := Hash(fixture().AnalysisUnit())
	if h1 != h2 {
		t.Fatalf("hash differs between identical units")
	}
	other := testkit.New("dump.cpp", src+"\n")
	other.Func("g", other.At("void g()"), other.TVoid(), 0, nil, ast.NoStmtID)
	h3, _ := Hash(other.AnalysisUnit())
	if h3 == h1 {
		t.Fatalf("different units share a hash")
	}
}

func TestFiles(t *testing.T) {
	dir := t.TempDir()
	unit := fixture().AnalysisUnit()
	for _, name := range []string{"u.cast", "u.json"} {
		path := filepath.Join(dir, name)
		if err := WriteFile(path, unit); err != nil {
			t.Fatalf("WriteFile %s: %v", name, err)
		}
		back, err := ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile %s: %v", name, err)
		}
		if back.Main().Path != "dump.cpp" {
			t.Fatalf("%s: main path = %q", name, back.Main().Path)
		}
	}
	if err := WriteFile(filepath.Join(dir, "u.txt"), unit); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("unknown extension: %v", err)
	}
}

func TestDecodeErrors(t *testing.T) {
	if _, err := Decode(strings.NewReader("{"), FormatJSON); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("truncated json: %v", err)
	}
	if _, err := Decode(strings.NewReader(`{"schema": 99}`), FormatJSON); !errors.Is(err, ErrSchema) {
		t.Fatalf("schema: %v", err)
	}
	if _, err := Decode(strings.NewReader(`{"schema": 1}`), FormatJSON); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("missing tables: %v", err)
	}

	doc, err := FromUnit(fixture().AnalysisUnit())
	if err != nil {
		t.Fatalf("FromUnit: %v", err)
	}
	doc.Main = 42
	raw, err := msgpack.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if _, err := Decode(bytes.NewReader(raw), FormatMsgpack); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("missing main file: %v", err)
	}
	if _, err := Decode(bytes.NewReader(raw), Format(9)); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("unknown format: %v", err)
	}
}
