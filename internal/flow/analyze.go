package flow

import "codan/internal/ast"

// AnalyzeFunction computes facts for every statement of fn's body.
func AnalyzeFunction(b *ast.Builder, fn ast.DeclID) *Facts {
	f := &Facts{
		b:        b,
		Func:     fn,
		facts:    make(map[ast.StmtID]Fact),
		outcomes: make(map[ast.StmtID]outcome),
	}
	data, ok := b.Decls.Function(fn)
	if !ok || !data.Body.IsValid() {
		return f
	}
	f.body = f.stmt(data.Body, true)
	return f
}

// NeedsReturn reports a reachable fall-off point at the end of a function
// that has to return a value.
func (f *Facts) NeedsReturn() bool {
	data, ok := f.b.Decls.Function(f.Func)
	if !ok || !data.Body.IsValid() || !f.body.normal {
		return false
	}
	return MustReturnValue(f.b, f.Func)
}

// MustReturnValue reports functions whose fall-off is an error: non-void and
// not deduced, excluding noreturn functions, constructors, destructors and main.
func MustReturnValue(b *ast.Builder, fn ast.DeclID) bool {
	decl := b.Decls.Get(fn)
	data, ok := b.Decls.Function(fn)
	if !ok {
		return false
	}
	switch data.Special {
	case ast.FnConstructor, ast.FnDestructor:
		return false
	}
	if data.Has(ast.FnNoreturn) || data.Has(ast.FnDeduced) || decl.HasAttr("noreturn") {
		return false
	}
	if bn := b.Bindings.Get(decl.Binding); bn != nil && bn.Has(ast.FlagNoreturn) {
		return false
	}
	typ := b.CanonicalType(data.Return)
	if typ == nil || typ.Kind == ast.TypeUnresolved {
		return false
	}
	if typ.Kind == ast.TypeAuto && !data.Has(ast.FnTrailingReturn) {
		return false
	}
	if b.IsVoid(data.Return) {
		return false
	}
	if decl.Name == "main" && !data.Owner.IsValid() {
		return false
	}
	return true
}

func (f *Facts) stmt(id ast.StmtID, reach bool) outcome {
	s := f.b.Stmts.Get(id)
	if s == nil {
		return outcome{normal: true}
	}
	var out outcome
	last := LastOther
	switch s.Kind {
	case ast.StmtCompound:
		blk, _ := f.b.Stmts.Block(id)
		out, last = f.sequence(blk.Stmts, reach, true)
	case ast.StmtExpr:
		last = f.exprStmtKind(id)
		out.normal = last != LastThrow && last != LastNoreturn
	case ast.StmtReturn:
		last = LastReturn
	case ast.StmtBreak:
		out.brk = true
		last = LastBreak
	case ast.StmtContinue:
		out.cont = true
		last = LastContinue
	case ast.StmtGoto:
		out.jump = true
		last = LastGoto
	case ast.StmtNull:
		out.normal = true
		if s.HasAttr("fallthrough") {
			last = LastFallthrough
		}
	case ast.StmtIf:
		ifs, _ := f.b.Stmts.If(id)
		if ifs.Init.IsValid() {
			f.stmt(ifs.Init, reach)
		}
		then := f.stmt(ifs.Then, reach)
		out.merge(then)
		out.normal = true
		if ifs.Else.IsValid() {
			els := f.stmt(ifs.Else, reach)
			out.merge(els)
			out.normal = then.normal || els.normal
			if tl := f.facts[ifs.Then].Last; tl == f.facts[ifs.Else].Last {
				last = tl
			}
		}
	case ast.StmtWhile:
		loop, _ := f.b.Stmts.Loop(id)
		v, known := f.constCond(loop.Cond, loop.CondDecl)
		body := f.stmt(loop.Body, reach && !(known && v == 0))
		out = loopOutcome(body, known && v != 0)
	case ast.StmtDo:
		loop, _ := f.b.Stmts.Loop(id)
		body := f.stmt(loop.Body, reach)
		v, known := f.constCond(loop.Cond, ast.NoDeclID)
		infinite := known && v != 0
		out.normal = ((body.normal || body.cont) && !infinite) || body.brk
		out.jump = body.jump
	case ast.StmtFor:
		fd, _ := f.b.Stmts.For(id)
		if fd.Init.IsValid() {
			f.stmt(fd.Init, reach)
		}
		infinite, never := !fd.Cond.IsValid(), false
		if fd.Cond.IsValid() {
			v, known := f.constCond(fd.Cond, ast.NoDeclID)
			infinite, never = known && v != 0, known && v == 0
		}
		body := f.stmt(fd.Body, reach && !never)
		out = loopOutcome(body, infinite)
	case ast.StmtRangeFor:
		rf, _ := f.b.Stmts.RangeFor(id)
		out = loopOutcome(f.stmt(rf.Body, reach), false)
	case ast.StmtSwitch:
		sw, _ := f.b.Stmts.Switch(id)
		if sw.Init.IsValid() {
			f.stmt(sw.Init, reach)
		}
		var body outcome
		if blk, ok := f.b.Stmts.Block(sw.Body); ok {
			body, _ = f.sequence(blk.Stmts, reach, false)
			f.record(sw.Body, reach, body, LastOther)
		} else {
			body = f.stmt(sw.Body, reach)
		}
		out.normal = body.normal || body.brk || !f.exhaustive(id)
		out.cont = body.cont
		out.jump = body.jump
	case ast.StmtLabel:
		l, _ := f.b.Stmts.Label(id)
		out = outcome{normal: true}
		if l.Body.IsValid() {
			out = f.stmt(l.Body, reach)
			last = f.facts[l.Body].Last
		}
	case ast.StmtTry:
		t, _ := f.b.Stmts.Try(id)
		out = f.stmt(t.Body, reach)
		for _, h := range t.Handlers {
			ho := f.stmt(h, reach)
			out.merge(ho)
			out.normal = out.normal || ho.normal
		}
	case ast.StmtCatch:
		c, _ := f.b.Stmts.Catch(id)
		out = f.stmt(c.Body, reach)
	case ast.StmtCase, ast.StmtDefault, ast.StmtDecl, ast.StmtProblem:
		out.normal = true
	}
	f.record(id, reach, out, last)
	return out
}

func (f *Facts) record(id ast.StmtID, reach bool, out outcome, last LastKind) {
	f.outcomes[id] = out
	f.facts[id] = Fact{
		Reachable:     reach,
		AlwaysReturns: out.alwaysReturns(),
		FallsThrough:  reach && out.normal,
		Last:          last,
	}
}

// sequence walks the statements of a block. open tells whether control enters
// the first statement; a switch body is entered only through its labels.
func (f *Facts) sequence(stmts []ast.StmtID, reach, open bool) (outcome, LastKind) {
	var out outcome
	var run []ast.StmtID
	flush := func() {
		if len(run) > 0 && reach {
			f.dead = append(f.dead, run)
		}
		run = nil
	}
	for _, s := range stmts {
		if f.opensSequence(s) {
			flush()
			open = true
		}
		if !open {
			run = append(run, s)
			f.stmt(s, false)
			continue
		}
		o := f.stmt(s, reach)
		out.merge(o)
		open = o.normal
	}
	flush()
	out.normal = open
	last := LastOther
	if n := len(stmts); n > 0 {
		last = f.facts[stmts[n-1]].Last
	}
	return out, last
}

func (f *Facts) opensSequence(s ast.StmtID) bool {
	switch f.b.Stmts.Get(s).Kind {
	case ast.StmtLabel, ast.StmtCase, ast.StmtDefault:
		return true
	}
	return false
}

func loopOutcome(body outcome, infinite bool) outcome {
	return outcome{normal: !infinite || body.brk, jump: body.jump}
}

func (f *Facts) exprStmtKind(id ast.StmtID) LastKind {
	es, _ := f.b.Stmts.Expr(id)
	e := f.b.StripParens(es.Expr)
	if ex := f.b.Exprs.Get(e); ex != nil && ex.Kind == ast.ExprThrow {
		return LastThrow
	}
	if bn := f.b.Bindings.Get(f.b.Callee(e)); bn != nil && bn.Has(ast.FlagNoreturn) {
		return LastNoreturn
	}
	return LastOther
}

// constCond evaluates a loop condition; a declaration condition is never constant.
func (f *Facts) constCond(cond ast.ExprID, decl ast.DeclID) (int64, bool) {
	if decl.IsValid() || !cond.IsValid() {
		return 0, false
	}
	return ConstInt(f.b, cond)
}

// exhaustive reports a switch that always enters one of its sections.
func (f *Facts) exhaustive(sw ast.StmtID) bool {
	if HasDefault(f.b, sw) {
		return true
	}
	missing, isEnum := EnumCoverage(f.b, sw)
	return isEnum && len(missing) == 0
}
