package checkers

import (
	"testing"

	"codan/internal/ast"
	"codan/internal/config"
	"codan/internal/testkit"
)

// fn declares `src` as one function whose body starts at its first '{'.
func fn(f *testkit.Fixture, name string, ret ast.TypeID, params []ast.DeclID, stmts ...ast.StmtID) ast.DeclID {
	sp := f.At(f.Src)
	return f.Func(name, sp, ret, 0, params, f.Block(body(f, sp), stmts...))
}

func TestAssignmentInCondition(t *testing.T) {
	f := testkit.New("cond.cpp", "void a(int x, int y) { if (x = y) { } if ((x = y)) { } }")
	x := f.Param("x", f.At("int x"), f.TInt())
	y := f.Param("y", f.At("int y"), f.TInt())
	assign := func(outer string) ast.ExprID {
		sp := f.In(f.At(outer), "x = y")
		return f.Assign(sp, f.Ident(f.In(sp, "x"), f.Binding(x)), f.Ident(f.In(sp, "y"), f.Binding(y)))
	}
	plain := f.At("if (x = y) { }")
	if1 := f.If(plain, assign("if (x = y) { }"), f.Block(f.In(plain, "{ }")), ast.NoStmtID)
	doubled := f.At("if ((x = y)) { }")
	if2 := f.If(doubled, f.Paren(f.In(doubled, "(x = y)"), assign("if ((x = y)) { }")), f.Block(f.In(doubled, "{ }")), ast.NoStmtID)
	fn(f, "a", f.TVoid(), []ast.DeclID{x, y}, if1, if2)

	got := run(t, f, AssignmentInCondition{}, nil)
	expect(t, "assignment in condition", got, "warning AssignmentInCondition cond.cpp:1:28 Possible assignment in condition 'x = y'")
}

func TestSuspiciousSemicolon(t *testing.T) {
	f := testkit.New("semi.cpp", "void s(int c) { if (c); }")
	c := f.Param("c", f.At("int c"), f.TInt())
	ifs := f.At("if (c);")
	fn(f, "s", f.TVoid(), []ast.DeclID{c},
		f.If(ifs, f.Ident(f.In(ifs, "c"), f.Binding(c)), f.Null(f.In(ifs, ";")), ast.NoStmtID))

	got := run(t, f, SuspiciousSemicolon{}, nil)
	expect(t, "suspicious semicolon", got, "warning SuspiciousSemicolon semi.cpp:1:23 Suspicious semicolon")
}

func TestSuggestedParenthesis(t *testing.T) {
	f := testkit.New("par.cpp", "bool s(bool a, bool b, bool c) { return a || b && c; }")
	var params []ast.DeclID
	for _, name := range []string{"a", "b", "c"} {
		params = append(params, f.Param(name, f.At("bool "+name), f.TBool()))
	}
	outer := f.At("a || b && c")
	inner := f.At("b && c")
	id := func(sp string, i int) ast.ExprID { return f.Ident(f.In(outer, sp), f.Binding(params[i])) }
	and := f.Binary(inner, ast.BinLogAnd, id("b", 1), id("c", 2))
	or := f.Binary(outer, ast.BinLogOr, id("a", 0), and)
	fn(f, "s", f.TBool(), params, f.Return(f.At("return a || b && c;"), or))

	got := run(t, f, SuggestedParenthesis{}, nil)
	expect(t, "parenthesis", got, "warning SuggestedParenthesis par.cpp:1:41 Suggested parenthesis around expression 'a || b && c'")
}

func TestAssignmentToItself(t *testing.T) {
	f := testkit.New("self.cpp", "void t(int x) { x = x; }")
	x := f.Param("x", f.At("int x"), f.TInt())
	asg := f.Assign(f.At("x = x"), f.Ident(f.AtN("x", 1), f.Binding(x)), f.Ident(f.AtN("x", 2), f.Binding(x)))
	fn(f, "t", f.TVoid(), []ast.DeclID{x}, f.ExprStmt(f.At("x = x;"), asg))

	got := run(t, f, AssignmentToItself{}, nil)
	expect(t, "assign to itself", got, "error AssignmentToItself self.cpp:1:17 Assignment to itself 'x = x'")
}

func TestStatementHasNoEffect(t *testing.T) {
	build := func() *testkit.Fixture {
		f := testkit.New("noeff.cpp", "void e(int x) { x + 1; }")
		x := f.Param("x", f.At("int x"), f.TInt())
		sum := f.Binary(f.At("x + 1"), ast.BinAdd, f.Ident(f.AtN("x", 1), f.Binding(x)), f.Int(f.At("1")))
		fn(f, "e", f.TVoid(), []ast.DeclID{x}, f.ExprStmt(f.At("x + 1;"), sum))
		return f
	}
	got := run(t, build(), NoEffect{}, nil)
	expect(t, "no effect", got, "warning StatementHasNoEffect noeff.cpp:1:17 Statement has no effect 'x + 1'")

	got = run(t, build(), NoEffect{}, func(o *config.Overrides) {
		o.Set(RuleNoEffect, ParamExceptions, []string{"x + 1"})
	})
	expect(t, "no effect exception", got, "")
}

func TestFloatCompare(t *testing.T) {
	f := testkit.New("float.cpp", "bool q(double d) { return d == 1.0; }")
	d := f.Param("d", f.At("double d"), f.TDouble())
	cmp := f.At("d == 1.0")
	eq := f.Binary(cmp, ast.BinEq, f.Ident(f.In(cmp, "d"), f.Binding(d)), f.Lit(f.At("1.0"), ast.LitFloat))
	fn(f, "q", f.TBool(), []ast.DeclID{d}, f.Return(f.At("return d == 1.0;"), eq))

	got := run(t, f, FloatCompare{}, nil)
	expect(t, "float compare", got, "warning FloatCompare float.cpp:1:27 Floating point values compared with '=='")
}

func TestCStyleCast(t *testing.T) {
	build := func(path string) *testkit.Fixture {
		f := testkit.New(path, "long w(int x) { return (long)x; }")
		x := f.Param("x", f.At("int x"), f.TInt())
		cast := f.At("(long)x")
		long := f.TBuiltin(ast.BuiltinLong)
		fn(f, "w", long, []ast.DeclID{x},
			f.Return(f.At("return (long)x;"), f.Cast(cast, ast.CastCStyle, long, f.Ident(f.In(cast, "x"), f.Binding(x)))))
		return f
	}
	got := run(t, build("cast.cpp"), CStyleCast{}, nil)
	expect(t, "c++ cast", got, "info CStyleCast cast.cpp:1:24 C-style cast instead of a C++ cast")

	got = run(t, build("cast.c"), CStyleCast{}, nil)
	expect(t, "c cast", got, "")
}

func TestCatchByValue(t *testing.T) {
	src := "struct X {};\nvoid c() { try { } catch (X e) { } }"
	f := testkit.New("catch.cpp", src)
	x := f.Class("X", f.At("struct X {};"), ast.KeyStruct)
	e := f.Param("e", f.At("X e"), f.TClass(x))
	handler := f.At("catch (X e) { }")
	try := f.At("try { } catch (X e) { }")
	stmt := f.Try(try, f.Block(f.In(try, "{ }")), f.Catch(handler, e, f.Block(f.In(handler, "{ }"))))
	sp := f.At("void c() { try { } catch (X e) { } }")
	f.Func("c", sp, f.TVoid(), 0, nil, f.Block(body(f, sp), stmt))

	got := run(t, f, CatchByReference{}, nil)
	expect(t, "catch by value", got, "warning CatchByValue catch.cpp:2:27 Catching by value is not recommended, catch by reference instead")
}

func TestGoto(t *testing.T) {
	f := testkit.New("goto.cpp", "void g() { goto out; out: ; }")
	label := f.At("out: ;")
	fn(f, "g", f.TVoid(), nil, f.Goto(f.At("goto out;"), "out"), f.Label(label, "out", f.Null(f.In(label, ";"))))

	got := run(t, f, Goto{}, nil)
	expect(t, "goto", got, "info GotoStatement goto.cpp:1:12 Goto statement used")
}

func TestMultipleDeclarations(t *testing.T) {
	src := "int a, *b;\nvoid f() { for (int i = 0, j = 0; ; ) { } }"
	f := testkit.New("multi.cpp", src)
	group := f.At("int a, *b;")
	a := f.Global("a", group, ast.VarData{Type: f.TInt()})
	b := f.Global("b", group, ast.VarData{Type: f.TPtr(f.TInt())})
	f.Group(a, b)

	decl := f.At("int i = 0, j = 0;")
	i := f.Local("i", decl, f.TInt(), f.Int(f.AtN("0", 0)))
	j := f.Local("j", decl, f.TInt(), f.Int(f.AtN("0", 1)))
	f.Group(i, j)
	loop := f.At("for (int i = 0, j = 0; ; ) { }")
	sp := f.At("void f() { for (int i = 0, j = 0; ; ) { } }")
	f.Func("f", sp, f.TVoid(), 0, nil,
		f.Block(body(f, sp), f.For(loop, f.DeclStmt(decl, i, j), ast.NoExprID, ast.NoExprID, f.Block(f.In(loop, "{ }")))))

	got := run(t, f, MultipleDeclarations{}, nil)
	expect(t, "multiple declarations", got, "info MultipleDeclarations multi.cpp:1:1 Multiple variable declaration: a, b")
}

func TestMagicNumbers(t *testing.T) {
	build := func() *testkit.Fixture {
		f := testkit.New("magic.cpp", "int m(int x) { const int k = 42; return x * 7 + k; }")
		x := f.Param("x", f.At("int x"), f.TInt())
		decl := f.At("const int k = 42;")
		k := f.Local("k", decl, f.TConst(f.TInt()), f.Int(f.At("42")))
		ret := f.At("return x * 7 + k;")
		mul := f.Binary(f.At("x * 7"), ast.BinMul, f.Ident(f.In(ret, "x"), f.Binding(x)), f.Int(f.At("7")))
		sum := f.Binary(f.At("x * 7 + k"), ast.BinAdd, mul, f.Ident(f.Word(ret, "k"), f.Binding(k)))
		fn(f, "m", f.TInt(), []ast.DeclID{x}, f.DeclStmt(decl, k), f.Return(ret, sum))
		return f
	}
	got := run(t, build(), MagicNumbers{}, nil)
	expect(t, "magic", got, "info MagicNumber magic.cpp:1:45 Avoid magic numbers like '7'")

	got = run(t, build(), MagicNumbers{}, func(o *config.Overrides) {
		o.Set(RuleMagicNumber, ParamExceptions, []string{"0", "7"})
	})
	expect(t, "magic exception", got, "")
}

func TestProblemBindings(t *testing.T) {
	src := "void u() { missing(); goto out; }\nFoo y;"
	f := testkit.New("pb.cpp", src)
	call := f.Call(f.At("missing()"), f.Unresolved(f.At("missing"), ast.ProblemFunctionResolution))
	sp := f.At("void u() { missing(); goto out; }")
	f.Func("u", sp, f.TVoid(), 0, nil,
		f.Block(body(f, sp), f.ExprStmt(f.At("missing();"), call), f.Goto(f.At("goto out;"), "out")))
	foo := f.B.Types.New(ast.Type{Kind: ast.TypeUnresolved, Name: "Foo"})
	f.Global("y", f.At("Foo y;"), ast.VarData{Type: foo})

	got := run(t, f, ProblemBinding{}, nil)
	want := "error FunctionResolutionProblem pb.cpp:1:12 Function 'missing' could not be resolved\n" +
		"error LabelStatementNotFoundProblem pb.cpp:1:23 Label 'out' could not be found\n" +
		"error TypeResolutionProblem pb.cpp:2:1 Type 'Foo' could not be resolved"
	expect(t, "problem bindings", got, want)
}

func TestUnusedSymbols(t *testing.T) {
	src := "static void helper() { }\nextern int ext;\nvoid proto();\nint main() { return 0; }"
	f := testkit.New("unused.cpp", src)
	helper := f.At("static void helper() { }")
	f.Func("helper", helper, f.TVoid(), ast.FnStatic, nil, f.Block(f.In(helper, "{ }")))
	f.Global("ext", f.At("extern int ext;"), ast.VarData{Type: f.TInt(), Storage: ast.StorageExtern})
	f.Func("proto", f.At("void proto();"), f.TVoid(), 0, nil, ast.NoStmtID)
	main := f.At("int main() { return 0; }")
	f.Func("main", main, f.TInt(), 0, nil, f.Block(body(f, main), f.Return(f.In(main, "return 0;"), f.Int(f.In(main, "0")))))

	got := run(t, f, UnusedSymbol{}, nil)
	want := "warning UnusedStaticFunction unused.cpp:1:13 Unused static function 'helper'\n" +
		"warning UnusedVariableDeclaration unused.cpp:2:12 Unused variable declaration in file scope 'ext'\n" +
		"warning UnusedFunctionDeclaration unused.cpp:3:6 Unused function declaration 'proto'"
	expect(t, "unused", got, want)
}

func TestBlacklist(t *testing.T) {
	build := func() *testkit.Fixture {
		f := testkit.New("bl.cpp", "void b() { gets(); }")
		gets := f.ExternFunc("gets", f.TPtr(f.TChar()), 0)
		fn(f, "b", f.TVoid(), nil, f.ExprStmt(f.At("gets();"), f.Call(f.At("gets()"), f.Ident(f.At("gets"), gets))))
		return f
	}
	expect(t, "empty blacklist", run(t, build(), Blacklist{}, nil), "")

	got := run(t, build(), Blacklist{}, func(o *config.Overrides) {
		o.Set(RuleBlacklist, ParamBlacklist, []string{"gets"})
	})
	expect(t, "blacklist", got, "warning BlacklistProblem bl.cpp:1:12 Function or method 'gets' is blacklisted")
}

func TestCopyright(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"void f() { }", "info CopyrightProblem c.cpp:1:1 Lack of copyright information"},
		{"// Copyright 2026 ACME\nvoid f() { }", ""},
		{"// TODO\nvoid f() { }", "info CopyrightProblem c.cpp:1:1 Lack of copyright information"},
	}
	for _, tt := range tests {
		f := testkit.New("c.cpp", tt.src)
		sp := f.At("void f() { }")
		f.Func("f", sp, f.TVoid(), 0, nil, f.Block(f.In(sp, "{ }")))
		expect(t, tt.src, run(t, f, Copyright{}, nil), tt.want)
	}
}

func TestHeaderRules(t *testing.T) {
	build := func(path string) *testkit.Fixture {
		f := testkit.New(path, "using namespace std;\nstatic int counter;\nstatic const int limit = 4;\n")
		f.UsingNamespace("std", f.At("using namespace std;"), ast.NoBindingID)
		f.Global("counter", f.At("static int counter;"), ast.VarData{Type: f.TInt(), Storage: ast.StorageStatic})
		f.Global("limit", f.At("static const int limit = 4;"), ast.VarData{Type: f.TConst(f.TInt()), Storage: ast.StorageStatic, Init: f.Int(f.At("4"))})
		return f
	}
	got := run(t, build("h.h"), Header{}, nil)
	want := "warning UsingInHeader h.h:1:1 Using directive in header file\n" +
		"warning StaticVariableInHeader h.h:2:12 Static variable 'counter' in header file"
	expect(t, "header", got, want)

	expect(t, "source file", run(t, build("h.cpp"), Header{}, nil), "")
}

func TestNamingConvention(t *testing.T) {
	src := "void Bad() { }\nvoid good() { }"
	f := testkit.New("n.cpp", src)
	for _, name := range []string{"Bad", "good"} {
		sp := f.At("void " + name + "() { }")
		f.Func(name, sp, f.TVoid(), 0, nil, f.Block(f.In(sp, "{ }")))
	}
	got := run(t, f, NamingConvention{}, nil)
	expect(t, "naming", got, "info NamingConventionFunction n.cpp:1:6 Bad function name 'Bad' (pattern /^[a-z]/)")
}
