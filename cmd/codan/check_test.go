package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"codan/internal/ast"
	"codan/internal/astio"
	"codan/internal/checkers"
	"codan/internal/config"
	"codan/internal/diag"
	"codan/internal/diagfmt"
	"codan/internal/engine"
	"codan/internal/testkit"
)

const unitSrc = `struct A { virtual void f() = 0; };
void g() {
  A a;
  goto out;
out: ;
}`

func buildUnit(path string) *ast.Unit {
	f := testkit.New(path, unitSrc)
	a := f.Class("A", f.At("struct A { virtual void f() = 0; };"), ast.KeyStruct)
	a.Method("f", f.At("virtual void f() = 0;"), f.TVoid(), ast.FnVirtual|ast.FnPure, nil, ast.NoStmtID)
	fn := f.At(unitSrc[strings.Index(unitSrc, "void g"):])
	local := f.Local("a", f.At("A a;"), f.TClass(a), ast.NoExprID)
	label := f.At("out: ;")
	f.Func("g", fn, f.TVoid(), 0, nil, f.Block(f.At(unitSrc[strings.Index(unitSrc, "{\n"):]),
		f.DeclStmt(f.At("A a;"), local),
		f.Goto(f.At("goto out;"), "out"),
		f.Label(label, "out", f.Null(f.In(label, ";"))),
	))
	return f.AnalysisUnit()
}

func writeUnit(t *testing.T, dir, name, srcPath string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := astio.WriteFile(p, buildUnit(srcPath)); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return p
}

func baseOptions(format string) checkOptions {
	return checkOptions{format: format, noConfig: true, progress: uiModeOff, jobs: 1}
}

func runJSON(t *testing.T, target string, opts checkOptions) (diagfmt.ProblemsOutput, int) {
	t.Helper()
	var out, errOut bytes.Buffer
	code, err := check(context.Background(), &out, &errOut, target, opts)
	if err != nil {
		t.Fatalf("check: %v (stderr %q)", err, errOut.String())
	}
	var doc diagfmt.ProblemsOutput
	if err := json.Unmarshal(out.Bytes(), &doc); err != nil {
		t.Fatalf("bad JSON output: %v\n%s", err, out.String())
	}
	return doc, code
}

func rules(doc diagfmt.ProblemsOutput) map[string]int {
	out := make(map[string]int)
	for _, p := range doc.Problems {
		out[p.Rule]++
	}
	return out
}

func TestCheckSingleUnit(t *testing.T) {
	dir := t.TempDir()
	unit := writeUnit(t, dir, "dump.cast", "dump.cpp")

	doc, code := runJSON(t, unit, baseOptions("json"))
	got := rules(doc)
	if got[checkers.RuleAbstractClassCreation] != 1 || got[checkers.RuleGoto] != 1 {
		t.Fatalf("unexpected problems %v", got)
	}
	if code != 2 {
		t.Fatalf("exit code = %d, want 2 for error-severity problems", code)
	}

	opts := baseOptions("json")
	opts.severities = []string{checkers.RuleAbstractClassCreation + "=warning"}
	if _, code := runJSON(t, unit, opts); code != 0 {
		t.Fatalf("exit code = %d after downgrading the error", code)
	}

	opts = baseOptions("json")
	opts.disable = []string{checkers.RuleGoto}
	doc, _ = runJSON(t, unit, opts)
	if rules(doc)[checkers.RuleGoto] != 0 {
		t.Fatalf("disabled rule still reported: %v", rules(doc))
	}
}

func TestCheckTextFormats(t *testing.T) {
	dir := t.TempDir()
	unit := writeUnit(t, dir, "dump.json", "dump.cpp")

	var out, errOut bytes.Buffer
	if _, err := check(context.Background(), &out, &errOut, unit, baseOptions("short")); err != nil {
		t.Fatalf("check: %v", err)
	}
	short := out.String()
	for _, want := range []string{"dump.cpp:", "error: ", "[AbstractClassCreation]", "info: ", "[GotoStatement]"} {
		if !strings.Contains(short, want) {
			t.Fatalf("short output lacks %q:\n%s", want, short)
		}
	}

	out.Reset()
	if _, err := check(context.Background(), &out, &errOut, unit, baseOptions("pretty")); err != nil {
		t.Fatalf("check: %v", err)
	}
	if !strings.Contains(out.String(), "  A a;") || !strings.Contains(out.String(), "1 error") {
		t.Fatalf("pretty output:\n%s", out.String())
	}

	out.Reset()
	if _, err := check(context.Background(), &out, &errOut, unit, baseOptions("sarif")); err != nil {
		t.Fatalf("check: %v", err)
	}
	var sarif struct {
		Version string `json:"version"`
		Runs    []struct {
			Results []struct {
				RuleID string `json:"ruleId"`
			} `json:"results"`
		} `json:"runs"`
	}
	if err := json.Unmarshal(out.Bytes(), &sarif); err != nil {
		t.Fatalf("bad SARIF: %v", err)
	}
	if sarif.Version != "2.1.0" || len(sarif.Runs) != 1 || len(sarif.Runs[0].Results) < 2 {
		t.Fatalf("unexpected SARIF document %+v", sarif)
	}

	if _, err := check(context.Background(), &out, &errOut, unit, baseOptions("xml")); err == nil {
		t.Fatalf("expected an error for an unknown format")
	}
}

func TestCheckDirectoryWithConfig(t *testing.T) {
	dir := t.TempDir()
	writeUnit(t, dir, "a.cast", "a.cpp")
	writeUnit(t, dir, "sub/b.json", "b.cpp")
	writeUnit(t, dir, "skip/c.cast", "c.cpp")
	writeUnit(t, dir, ".hidden/d.cast", "d.cpp")

	doc, _ := runJSON(t, dir, baseOptions("json"))
	if got := rules(doc)[checkers.RuleGoto]; got != 3 {
		t.Fatalf("goto problems over the directory = %d, want 3", got)
	}

	conf := "[run]\nexclude = [\"skip/*\"]\nformat = \"json\"\n\n[rules.GotoStatement]\nenabled = false\n"
	if err := os.WriteFile(filepath.Join(dir, config.FileName), []byte(conf), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	opts := baseOptions("")
	opts.noConfig = false
	doc, _ = runJSON(t, dir, opts)
	got := rules(doc)
	if got[checkers.RuleGoto] != 0 || got[checkers.RuleAbstractClassCreation] != 2 {
		t.Fatalf("config not applied: %v", got)
	}
	files := make(map[string]bool)
	for _, p := range doc.Problems {
		files[filepath.Base(p.Location.File)] = true
	}
	if !files["a.cpp"] || !files["b.cpp"] || files["c.cpp"] {
		t.Fatalf("unexpected files %v", files)
	}
}

func TestCheckCache(t *testing.T) {
	dir := t.TempDir()
	unit := writeUnit(t, dir, "dump.cast", "dump.cpp")
	reg := checkers.Registry()
	cfg, err := buildConfig(reg, nil, baseOptions("json"))
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	opts := baseOptions("json")
	opts.useCache = true
	opts.cacheDir = filepath.Join(dir, "cache")

	first, err := analyze(context.Background(), []string{unit}, reg, cfg, opts)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	second, err := analyze(context.Background(), []string{unit}, reg, cfg, opts)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if first[0].cached || !second[0].cached {
		t.Fatalf("cached flags: first=%v second=%v", first[0].cached, second[0].cached)
	}
	if len(first[0].result.Problems) != len(second[0].result.Problems) {
		t.Fatalf("cached problems differ: %v vs %v", first[0].result.Problems, second[0].result.Problems)
	}

	opts.maxProblems = 1
	third, _ := analyze(context.Background(), []string{unit}, reg, cfg, opts)
	if third[0].cached {
		t.Fatalf("a different problem cap must not hit the cache")
	}
}

func TestBuildConfigErrors(t *testing.T) {
	reg := checkers.Registry()
	tests := []struct {
		name string
		opts checkOptions
	}{
		{"bad severity", checkOptions{severities: []string{"GotoStatement=fatal"}}},
		{"severity without rule", checkOptions{severities: []string{"warning"}}},
		{"set without param", checkOptions{params: []string{"GotoStatement=1"}}},
		{"unknown rule", checkOptions{enable: []string{"NoSuchRule"}}},
		{"wrong param type", checkOptions{params: []string{"GotoStatement.macro=maybe"}}},
	}
	for _, tt := range tests {
		if _, err := buildConfig(reg, nil, tt.opts); err == nil {
			t.Fatalf("%s: expected an error", tt.name)
		}
	}

	cfg, err := buildConfig(reg, nil, checkOptions{params: []string{"GotoStatement.macro=false"}})
	if err != nil {
		t.Fatalf("buildConfig: %v", err)
	}
	if cfg.ReportMacros(checkers.RuleGoto) {
		t.Fatalf("--set did not reach the configuration")
	}
}

func TestCheckReportsUnreadableUnits(t *testing.T) {
	dir := t.TempDir()
	writeUnit(t, dir, "good.cast", "good.cpp")
	if err := os.WriteFile(filepath.Join(dir, "bad.cast"), []byte("not msgpack"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	var out, errOut bytes.Buffer
	code, err := check(context.Background(), &out, &errOut, dir, baseOptions("short"))
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if code != 1 || !strings.Contains(errOut.String(), "bad.cast") {
		t.Fatalf("code=%d stderr=%q", code, errOut.String())
	}
	if !strings.Contains(out.String(), "good.cpp") {
		t.Fatalf("healthy unit not reported:\n%s", out.String())
	}
}

func TestCollectRules(t *testing.T) {
	reg := checkers.Registry()
	all, err := collectRules(reg, nil)
	if err != nil || len(all) != len(reg.Rules()) {
		t.Fatalf("collectRules: %d rules, err %v", len(all), err)
	}
	one, err := collectRules(reg, []string{checkers.RuleGoto})
	if err != nil || len(one) != 1 || one[0].Name != "Goto statement used" || one[0].Checker != "Goto" {
		t.Fatalf("collectRules(GotoStatement) = %+v, %v", one, err)
	}
	if _, err := collectRules(reg, []string{"Nope"}); !errors.Is(err, config.ErrUnknownRule) {
		t.Fatalf("unknown rule: %v", err)
	}

	var buf bytes.Buffer
	if err := writeRules(&buf, one, true); err != nil {
		t.Fatalf("writeRules: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "GotoStatement  on   info     Goto statement used\n") {
		t.Fatalf("rules listing:\n%s", buf.String())
	}
}

func TestMergerSharesFiles(t *testing.T) {
	reg := checkers.Registry()
	cfg := config.Default(reg.Specs())
	m := newMerger()
	var merged []diag.Problem
	for _, u := range []*ast.Unit{buildUnit("same.cpp"), buildUnit("same.cpp"), buildUnit("other.cpp")} {
		res, err := engine.Run(context.Background(), u, reg, cfg, engine.Options{Jobs: 1})
		if err != nil {
			t.Fatalf("engine: %v", err)
		}
		merged = append(merged, m.add(u, res.Problems)...)
	}
	if m.fs.Len() != 2 {
		t.Fatalf("merged file set holds %d files, want 2", m.fs.Len())
	}
	for _, p := range merged {
		f := m.fs.Get(p.Span.File)
		if f == nil || !strings.HasSuffix(f.Path, ".cpp") {
			t.Fatalf("problem %v points outside the merged set", p)
		}
	}
	last := merged[len(merged)-1]
	if m.fs.Get(last.Span.File).Path != "other.cpp" {
		t.Fatalf("last problem belongs to %s", m.fs.Get(last.Span.File).Path)
	}
}
