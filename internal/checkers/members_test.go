package checkers

import (
	"strings"
	"testing"

	"codan/internal/ast"
	"codan/internal/config"
	"codan/internal/testkit"
)

const memberSrc = `struct K {
  int v;
  int get() { return v; }
  void set(int n) const { v = n; }
  static int bad() { return v; }
  int zero() { return 0; }
};`

func TestMemberConst(t *testing.T) {
	f := testkit.New("k.cpp", memberSrc)
	k := f.Class("K", f.At(memberSrc), ast.KeyStruct)
	v := f.Binding(k.Field("v", f.At("int v;"), f.TInt()))

	reader := func(name, text string, flags ast.FnFlags) {
		sp := f.At(text)
		ret := f.In(sp, "return v;")
		k.Method(name, sp, f.TInt(), flags, nil,
			f.Block(f.In(sp, "{ return v; }"), f.Return(ret, f.Ident(f.Word(ret, "v"), v))))
	}
	reader("get", "int get() { return v; }", 0)
	reader("bad", "static int bad() { return v; }", ast.FnStatic)

	setSpan := f.At("void set(int n) const { v = n; }")
	n := f.Param("n", f.In(setSpan, "int n"), f.TInt())
	asg := f.In(setSpan, "v = n")
	write := f.Assign(asg, f.Ident(f.In(asg, "v"), v), f.Ident(f.In(asg, "n"), f.Binding(n)))
	k.Method("set", setSpan, f.TVoid(), ast.FnConst, []ast.DeclID{n},
		f.Block(f.In(setSpan, "{ v = n; }"), f.ExprStmt(f.In(setSpan, "v = n;"), write)))

	zeroSpan := f.At("int zero() { return 0; }")
	k.Method("zero", zeroSpan, f.TInt(), 0, nil,
		f.Block(f.In(zeroSpan, "{ return 0; }"), f.Return(f.In(zeroSpan, "return 0;"), f.Int(f.In(zeroSpan, "0")))))

	got := run(t, f, MemberConst{}, nil)
	want := "info MethodShouldBeConst k.cpp:3:7 Method 'K::get()' does not modify the object and could be const\n" +
		"error MemberWrittenInConstMethod k.cpp:4:27 Const method modifies member 'v'\n" +
		"error MemberUsedInStaticMethod k.cpp:5:29 Static method cannot use non-static member 'v'\n" +
		"info MethodShouldBeStatic k.cpp:6:7 Method 'K::zero()' does not use the object and could be static"
	expect(t, "member const", got, want)
}

func TestMembersInitialization(t *testing.T) {
	src := "struct P { int a; int *b; double c = 0; P() : a(1) { } };"
	f := testkit.New("p.cpp", src)
	p := f.Class("P", f.At(src), ast.KeyStruct)
	a := p.Field("a", f.At("int a;"), f.TInt())
	p.Field("b", f.At("int *b;"), f.TPtr(f.TInt()))
	p.FieldWith("c", f.At("double c = 0;"), ast.VarData{Type: f.TDouble(), Init: f.Int(f.At("0"))})
	ctor := f.At("P() : a(1) { }")
	inits := []ast.CtorInit{{Kind: ast.InitMember, Span: f.At("a(1)"), Name: "a", Target: f.Binding(a), Args: []ast.ExprID{f.Int(f.At("1"))}}}
	p.Ctor(ctor, 0, nil, inits, f.Block(f.In(ctor, "{ }")))

	got := run(t, f, MemberInit{}, nil)
	expect(t, "member init", got, "warning ClassMembersInitialization p.cpp:1:41 Member 'b' was not initialized in this constructor")
}

func TestMembersInitializationThroughCalls(t *testing.T) {
	build := func() *testkit.Fixture {
		src := "struct Q { int *b; void init() { } Q() { init(); } };"
		f := testkit.New("q.cpp", src)
		q := f.Class("Q", f.At(src), ast.KeyStruct)
		q.Field("b", f.At("int *b;"), f.TPtr(f.TInt()))
		initSpan := f.At("void init() { }")
		setup := q.Method("init", initSpan, f.TVoid(), 0, nil, f.Block(f.In(initSpan, "{ }")))
		ctor := f.At("Q() { init(); }")
		call := f.Call(f.In(ctor, "init()"), f.Ident(f.In(ctor, "init"), f.Binding(setup)))
		q.Ctor(ctor, 0, nil, nil, f.Block(f.In(ctor, "{ init(); }"), f.ExprStmt(f.In(ctor, "init();"), call)))
		return f
	}

	tests := []struct {
		skipCalls bool
		want      string
	}{
		{true, ""},
		{false, "warning ClassMembersInitialization q.cpp:1:36 Member 'b' was not initialized in this constructor"},
	}
	for _, tt := range tests {
		got := run(t, build(), MemberInit{}, func(o *config.Overrides) {
			o.Set(RuleMembersInit, ParamSkipCalls, tt.skipCalls)
		})
		expect(t, "skip_calls", got, tt.want)
	}
}

func TestMembersInitializationDelegating(t *testing.T) {
	src := "struct P { int a; int b; P(int n) : a(n) { } P() : P(0) { b = 2; } };"
	f := testkit.New("d.cpp", src)
	p := f.Class("P", f.At(src), ast.KeyStruct)
	a := f.Binding(p.Field("a", f.At("int a;"), f.TInt()))
	b := f.Binding(p.Field("b", f.At("int b;"), f.TInt()))

	target := f.At("P(int n) : a(n) { }")
	n := f.Param("n", f.In(target, "int n"), f.TInt())
	ainit := f.In(target, "a(n)")
	toA := []ast.CtorInit{{Kind: ast.InitMember, Span: ainit, Name: "a", Target: a, Args: []ast.ExprID{f.Ident(f.In(ainit, "n"), f.Binding(n))}}}
	withN := p.Ctor(target, 0, []ast.DeclID{n}, toA, f.Block(f.In(target, "{ }")))

	deleg := f.At("P() : P(0) { b = 2; }")
	call := f.In(deleg, "P(0)")
	toP := []ast.CtorInit{{Kind: ast.InitDelegating, Span: call, Name: "P", Target: f.Binding(withN), Args: []ast.ExprID{f.Int(f.In(call, "0"))}}}
	asg := f.In(deleg, "b = 2")
	write := f.Assign(asg, f.Ident(f.In(asg, "b"), b), f.Int(f.In(asg, "2")))
	p.Ctor(deleg, 0, nil, toP, f.Block(f.In(deleg, "{ b = 2; }"), f.ExprStmt(f.In(deleg, "b = 2;"), write)))

	got := run(t, f, MemberInit{}, nil)
	expect(t, "delegating", got, "warning ClassMembersInitialization d.cpp:1:26 Member 'b' was not initialized in this constructor")
}

func TestMembersInitializationDeletedCtor(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"plain", "struct D { int a; D() { } };", "warning ClassMembersInitialization del.cpp:1:19 Member 'a' was not initialized in this constructor"},
		{"deleted sibling", "struct D { int a; D() { } D(int) = delete; };", ""},
	}
	for _, tt := range tests {
		f := testkit.New("del.cpp", tt.src)
		d := f.Class("D", f.At(tt.src), ast.KeyStruct)
		d.Field("a", f.At("int a;"), f.TInt())
		ctor := f.At("D() { }")
		d.Ctor(ctor, 0, nil, nil, f.Block(f.In(ctor, "{ }")))
		if strings.Contains(tt.src, "delete") {
			d.Ctor(f.At("D(int) = delete;"), ast.FnDeleted, nil, nil, ast.NoStmtID)
		}
		expect(t, tt.name, run(t, f, MemberInit{}, nil), tt.want)
	}
}

func TestVirtualCallInConstructor(t *testing.T) {
	src := "struct V {\n  virtual void hook();\n  V() { hook(); }\n  V(int n) { V::hook(); }\n};"
	f := testkit.New("v.cpp", src)
	v := f.Class("V", f.At(src), ast.KeyStruct)
	hook := f.Binding(v.Method("hook", f.At("virtual void hook();"), f.TVoid(), ast.FnVirtual, nil, ast.NoStmtID))

	plain := f.At("V() { hook(); }")
	call := f.Call(f.In(plain, "hook()"), f.Ident(f.In(plain, "hook"), hook))
	v.Ctor(plain, 0, nil, nil, f.Block(f.In(plain, "{ hook(); }"), f.ExprStmt(f.In(plain, "hook();"), call)))

	qual := f.At("V(int n) { V::hook(); }")
	n := f.Param("n", f.In(qual, "int n"), f.TInt())
	qcall := f.Call(f.In(qual, "V::hook()"), f.QualifiedIdent(f.In(qual, "V::hook"), hook))
	v.Ctor(qual, 0, []ast.DeclID{n}, nil, f.Block(f.In(qual, "{ V::hook(); }"), f.ExprStmt(f.In(qual, "V::hook();"), qcall)))

	got := run(t, f, VirtualCall{}, nil)
	expect(t, "virtual call", got, "warning VirtualMethodCallInCtorDtor v.cpp:3:9 Calling virtual method 'hook' in constructor or destructor")
}

func TestNonVirtualDestructor(t *testing.T) {
	src := "struct B { virtual void f(); };\nstruct D { virtual void g(); virtual ~D(); };"
	f := testkit.New("dtor.cpp", src)
	b := f.Class("B", f.At("struct B { virtual void f(); };"), ast.KeyStruct)
	b.Method("f", f.At("virtual void f();"), f.TVoid(), ast.FnVirtual, nil, ast.NoStmtID)
	d := f.Class("D", f.At("struct D { virtual void g(); virtual ~D(); };"), ast.KeyStruct)
	d.Method("g", f.At("virtual void g();"), f.TVoid(), ast.FnVirtual, nil, ast.NoStmtID)
	d.Dtor(f.At("virtual ~D();"), ast.FnVirtual, ast.NoStmtID)

	got := run(t, f, NonVirtualDestructor{}, nil)
	expect(t, "non-virtual dtor", got, "warning NonVirtualDestructor dtor.cpp:1:8 Class 'B' has virtual methods but a public non-virtual destructor")
}

const shadowSrc = `int x;
void f(int x) {
  {
    double x;
  }
}
struct S {};
void g() {
  int S;
}`

func buildShadowing() *testkit.Fixture {
	f := testkit.New("hide.cpp", shadowSrc)
	f.Global("x", f.At("int x;"), ast.VarData{Type: f.TInt()})
	fSpan := f.At("void f(int x) {\n  {\n    double x;\n  }\n}")
	px := f.Param("x", f.In(fSpan, "int x"), f.TInt())
	lx := f.Local("x", f.At("double x;"), f.TDouble(), ast.NoExprID)
	inner := f.Block(f.At("{\n    double x;\n  }"), f.DeclStmt(f.At("double x;"), lx))
	f.Func("f", fSpan, f.TVoid(), 0, []ast.DeclID{px}, f.Block(body(f, fSpan), inner))
	f.Class("S", f.At("struct S {};"), ast.KeyStruct)
	gSpan := f.At("void g() {\n  int S;\n}")
	ls := f.Local("S", f.At("int S;"), f.TInt(), ast.NoExprID)
	f.Func("g", gSpan, f.TVoid(), 0, nil, f.Block(body(f, gSpan), f.DeclStmt(f.At("int S;"), ls)))
	return f
}

func TestShadowing(t *testing.T) {
	tests := []struct {
		name   string
		params bool
		want   string
	}{
		{"with parameters", true, "warning SymbolShadowing hide.cpp:2:12 Symbol 'x' hides a declaration in an outer scope\n" +
			"warning SymbolShadowing hide.cpp:4:12 Symbol 'x' hides a declaration in an outer scope\n" +
			"warning SymbolShadowing hide.cpp:9:7 Symbol 'S' hides a declaration in an outer scope"},
		{"locals only", false, "warning SymbolShadowing hide.cpp:4:12 Symbol 'x' hides a declaration in an outer scope\n" +
			"warning SymbolShadowing hide.cpp:9:7 Symbol 'S' hides a declaration in an outer scope"},
	}
	for _, tt := range tests {
		got := run(t, buildShadowing(), Shadowing{}, func(o *config.Overrides) {
			o.Set(RuleShadowing, ParamCheckParams, tt.params)
		})
		expect(t, tt.name, got, tt.want)
	}
}
