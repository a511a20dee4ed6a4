package flow_test

import (
	"slices"
	"testing"

	"codan/internal/ast"
	"codan/internal/flow"
	"codan/internal/testkit"
)

func TestNeedsReturn(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		build func(f *testkit.Fixture) ast.DeclID
		want  bool
	}{
		{
			name: "one branch returns",
			src:  "int f(int c) { if (c) return 0; }",
			build: func(f *testkit.Fixture) ast.DeclID {
				c := f.Param("c", f.At("int c"), f.TInt())
				ret := f.Return(f.At("return 0;"), f.Int(f.At("0")))
				ifs := f.If(f.At("if (c) return 0;"), f.Ident(f.In(f.At("if (c)"), "c"), f.Binding(c)), ret, ast.NoStmtID)
				return f.Func("f", f.At(f.Src), f.TInt(), 0, []ast.DeclID{c}, f.Block(f.At("{ if (c) return 0; }"), ifs))
			},
			want: true,
		},
		{
			name: "both branches return",
			src:  "int f(int c) { if (c) return 0; else return 1; }",
			build: func(f *testkit.Fixture) ast.DeclID {
				c := f.Param("c", f.At("int c"), f.TInt())
				r0 := f.Return(f.At("return 0;"), f.Int(f.At("0")))
				r1 := f.Return(f.At("return 1;"), f.Int(f.At("1")))
				ifs := f.If(f.At("if (c) return 0; else return 1;"), f.Ident(f.In(f.At("if (c)"), "c"), f.Binding(c)), r0, r1)
				return f.Func("f", f.At(f.Src), f.TInt(), 0, []ast.DeclID{c}, f.Block(f.At("{ if (c) return 0; else return 1; }"), ifs))
			},
			want: false,
		},
		{
			name: "infinite loop",
			src:  "int h() { while (1) { work(); } }",
			build: func(f *testkit.Fixture) ast.DeclID {
				work := f.ExternFunc("work", f.TVoid(), 0)
				call := f.ExprStmt(f.At("work();"), f.Call(f.At("work()"), f.Ident(f.At("work"), work)))
				loop := f.While(f.At("while (1) { work(); }"), f.Int(f.At("1")), f.Block(f.At("{ work(); }"), call))
				return f.Func("h", f.At(f.Src), f.TInt(), 0, nil, f.Block(f.At("{ while (1) { work(); } }"), loop))
			},
			want: false,
		},
		{
			name: "loop with break",
			src:  "int h() { for (;;) { break; } }",
			build: func(f *testkit.Fixture) ast.DeclID {
				loop := f.For(f.At("for (;;) { break; }"), ast.NoStmtID, ast.NoExprID, ast.NoExprID, f.Block(f.At("{ break; }"), f.Break(f.At("break;"))))
				return f.Func("h", f.At(f.Src), f.TInt(), 0, nil, f.Block(f.At("{ for (;;) { break; } }"), loop))
			},
			want: true,
		},
		{
			name: "noreturn call",
			src:  "int e() { fail(); }",
			build: func(f *testkit.Fixture) ast.DeclID {
				fail := f.ExternFunc("fail", f.TVoid(), ast.FlagNoreturn)
				call := f.ExprStmt(f.At("fail();"), f.Call(f.At("fail()"), f.Ident(f.At("fail"), fail)))
				return f.Func("e", f.At(f.Src), f.TInt(), 0, nil, f.Block(f.At("{ fail(); }"), call))
			},
			want: false,
		},
		{
			name: "main is exempt",
			src:  "int main() { }",
			build: func(f *testkit.Fixture) ast.DeclID {
				return f.Func("main", f.At(f.Src), f.TInt(), 0, nil, f.Block(f.At("{ }")))
			},
			want: false,
		},
		{
			name: "deduced auto is exempt",
			src:  "auto d() { }",
			build: func(f *testkit.Fixture) ast.DeclID {
				return f.Func("d", f.At(f.Src), f.TAuto(), ast.FnDeduced, nil, f.Block(f.At("{ }")))
			},
			want: false,
		},
	}
	for _, tt := range tests {
		f := testkit.New("ret.cpp", tt.src)
		fn := tt.build(f)
		f.Build()
		if got := flow.AnalyzeFunction(f.B, fn).NeedsReturn(); got != tt.want {
			t.Fatalf("%s: NeedsReturn = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestDeadRunsEndAtLabels(t *testing.T) {
	src := "void g() { return; foo(); bar(); L: baz(); }"
	f := testkit.New("dead.cpp", src)
	call := func(name string) ast.StmtID {
		bn := f.ExternFunc(name, f.TVoid(), 0)
		return f.ExprStmt(f.At(name+"();"), f.Call(f.At(name+"()"), f.Ident(f.At(name), bn)))
	}
	ret := f.Return(f.At("return;"), ast.NoExprID)
	foo, bar, baz := call("foo"), call("bar"), call("baz")
	label := f.Label(f.At("L: baz();"), "L", baz)
	g := f.Func("g", f.At(src), f.TVoid(), 0, nil, f.Block(f.At("{ return; foo(); bar(); L: baz(); }"), ret, foo, bar, label))
	f.Build()

	facts := flow.AnalyzeFunction(f.B, g)
	runs := facts.DeadRuns()
	if len(runs) != 1 || !slices.Equal(runs[0], []ast.StmtID{foo, bar}) {
		t.Fatalf("DeadRuns = %v, want [[%d %d]]", runs, foo, bar)
	}
	if !facts.Reachable(baz) || facts.Reachable(foo) {
		t.Fatalf("reachability: baz=%v foo=%v", facts.Reachable(baz), facts.Reachable(foo))
	}
	fact := facts.Fact(ret)
	if !fact.AlwaysReturns || fact.Last != flow.LastReturn || fact.FallsThrough {
		t.Fatalf("return fact = %+v", fact)
	}
	if !facts.FallsOffEnd() || facts.NeedsReturn() {
		t.Fatalf("void function falls off its end without needing a return")
	}
}

const switchSrc = `void s(int x, int b) {
  switch (x) {
  case 1:
  case 2:
    b = 2;
    break;
  case 3:
    b = 3;
    [[fallthrough]];
  case 4:
    b = 4;
  }
}`

func TestSwitchSections(t *testing.T) {
	f := testkit.New("switch.cpp", switchSrc)
	x := f.Param("x", f.At("int x"), f.TInt())
	b := f.Param("b", f.At("int b"), f.TInt())
	assign := func(text, val string) ast.StmtID {
		sp := f.At(text)
		lhs := f.Ident(f.In(sp, "b"), f.Binding(b))
		return f.ExprStmt(sp, f.Assign(f.In(sp, text[:len(text)-1]), lhs, f.Int(f.In(sp, val))))
	}
	label := func(text, val string) ast.StmtID {
		sp := f.At(text)
		return f.Case(sp, f.Int(f.In(sp, val)))
	}
	c1, c2 := label("case 1:", "1"), label("case 2:", "2")
	a2, brk := assign("b = 2;", "2"), f.Break(f.At("break;"))
	c3, a3 := label("case 3:", "3"), assign("b = 3;", "3")
	ft := f.Null(f.At("[[fallthrough]];"), "fallthrough")
	c4, a4 := label("case 4:", "4"), assign("b = 4;", "4")

	swSpan := f.At("switch (x) {\n  case 1:\n  case 2:\n    b = 2;\n    break;\n  case 3:\n    b = 3;\n    [[fallthrough]];\n  case 4:\n    b = 4;\n  }")
	bodySpan := swSpan
	bodySpan.Start = f.In(swSpan, "{").Start
	sw := f.Switch(swSpan, f.Ident(f.Word(swSpan, "x"), f.Binding(x)), f.Block(bodySpan, c1, c2, a2, brk, c3, a3, ft, c4, a4))
	fnBody := f.At(switchSrc)
	fnBody.Start = f.In(fnBody, "{").Start
	fn := f.Func("s", f.At(switchSrc), f.TVoid(), 0, []ast.DeclID{x, b}, f.Block(fnBody, sw))
	f.Build()

	secs := flow.AnalyzeFunction(f.B, fn).Sections(sw)
	if len(secs) != 4 {
		t.Fatalf("expected 4 sections, got %d", len(secs))
	}
	want := []struct {
		label    ast.StmtID
		last     ast.StmtID
		empty    bool
		complete bool
	}{
		{c1, ast.NoStmtID, true, false},
		{c2, brk, false, true},
		{c3, ft, false, true},
		{c4, a4, false, false},
	}
	for i, w := range want {
		got := secs[i]
		if got.Label != w.label || got.Last != w.last || got.Empty() != w.empty || got.Complete != w.complete {
			t.Fatalf("section %d = %+v, want %+v", i, got, w)
		}
	}
	if flow.HasDefault(f.B, sw) {
		t.Fatalf("switch has no default")
	}
}

const pickSrc = `enum Color { Red, Green };
int pick(Color c) {
  switch (c) {
  case Red: return 1;
  case Green: return 2;
  }
}`

func buildPick(t *testing.T, withGreen bool) (*testkit.Fixture, ast.DeclID, ast.StmtID, *testkit.Enum) {
	t.Helper()
	f := testkit.New("pick.cpp", pickSrc)
	e := f.Enum("Color", f.At("enum Color { Red, Green }"), false).Add("Red", "Green")
	c := f.Param("c", f.At("Color c"), f.B.Bindings.Get(e.Binding).Type)
	section := func(label, name, ret, val string, bn ast.BindingID) []ast.StmtID {
		lsp := f.At(label)
		rsp := f.At(ret)
		return []ast.StmtID{
			f.Case(lsp, f.Ident(f.In(lsp, name), bn)),
			f.Return(rsp, f.Int(f.In(rsp, val))),
		}
	}
	stmts := section("case Red:", "Red", "return 1;", "1", e.Enumerators[0])
	if withGreen {
		stmts = append(stmts, section("case Green:", "Green", "return 2;", "2", e.Enumerators[1])...)
	}
	swSpan := f.At("switch (c) {\n  case Red: return 1;\n  case Green: return 2;\n  }")
	bodySpan := swSpan
	bodySpan.Start = f.In(swSpan, "{").Start
	sw := f.Switch(swSpan, f.Ident(f.Word(swSpan, "c"), f.Binding(c)), f.Block(bodySpan, stmts...))
	fnSpan := f.At(pickSrc)
	fnSpan.Start = f.At("int pick").Start
	fnBody := fnSpan
	fnBody.Start = f.In(fnSpan, "{").Start
	fn := f.Func("pick", fnSpan, f.TInt(), 0, []ast.DeclID{c}, f.Block(fnBody, sw))
	f.Build()
	return f, fn, sw, e
}

func TestEnumSwitchCoverage(t *testing.T) {
	f, fn, sw, e := buildPick(t, true)
	if missing, isEnum := flow.EnumCoverage(f.B, sw); !isEnum || len(missing) != 0 {
		t.Fatalf("full coverage: missing=%v isEnum=%v", missing, isEnum)
	}
	facts := flow.AnalyzeFunction(f.B, fn)
	if facts.NeedsReturn() {
		t.Fatalf("switch covering every enumerator always returns")
	}
	if !facts.Fact(sw).AlwaysReturns {
		t.Fatalf("switch fact should always return")
	}

	f, fn, sw, e = buildPick(t, false)
	missing, _ := flow.EnumCoverage(f.B, sw)
	if !slices.Equal(missing, []ast.BindingID{e.Enumerators[1]}) {
		t.Fatalf("missing = %v, want Green", missing)
	}
	if !flow.AnalyzeFunction(f.B, fn).NeedsReturn() {
		t.Fatalf("uncovered enumerator lets control fall off")
	}
}

func TestConstInt(t *testing.T) {
	src := "enum E { A, B = 5, C }; int use = C + A;"
	f := testkit.New("const.cpp", src)
	e := f.Enum("E", f.At("enum E { A, B = 5, C }"), false)
	e.Add("A")
	e.AddValue("B", f.Int(f.At("5")))
	e.Add("C")
	useSpan := f.At("C + A")
	sum := f.Binary(useSpan, ast.BinAdd, f.Ident(f.In(useSpan, "C"), e.Enumerators[2]), f.Ident(f.In(useSpan, "A"), e.Enumerators[0]))
	f.Build()
	if v, ok := flow.ConstInt(f.B, sum); !ok || v != 6 {
		t.Fatalf("C + A = %d (%v), want 6", v, ok)
	}

	literals := []struct {
		text string
		want int64
		ok   bool
	}{
		{"42", 42, true},
		{"0x10", 16, true},
		{"017", 15, true},
		{"0b101", 5, true},
		{"1'000", 1000, true},
		{"10ul", 10, true},
		{"08", 0, false},
	}
	for _, lit := range literals {
		v, ok := flow.ParseIntLiteral(lit.text)
		if ok != lit.ok || v != lit.want {
			t.Fatalf("ParseIntLiteral(%q) = %d, %v", lit.text, v, ok)
		}
	}
}
