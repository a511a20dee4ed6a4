package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"codan/internal/diag"
	"codan/internal/source"
)

const sample = "int main() {\n\tgoto end;\n  s = \"日本\"; x;\n}\n"

func sampleProblems(t *testing.T) (*source.FileSet, []diag.Problem) {
	t.Helper()
	fs := source.NewFileSet()
	file := fs.AddVirtual("/work/src/t.cpp", []byte(sample))
	at := func(text string) source.Span {
		i := strings.Index(sample, text)
		if i < 0 {
			t.Fatalf("missing %q", text)
		}
		return source.Span{File: file, Start: uint32(i), End: uint32(i + len(text))} //nolint:gosec // small test input
	}
	x := at("x;")
	x.End = x.Start + 1
	return fs, []diag.Problem{
		diag.New("GotoStatement", diag.SevInfo, at("goto end;"), "Goto statement used").WithNote(at("main"), "in function"),
		diag.New("StatementHasNoEffect", diag.SevWarning, x, "Statement has no effect 'x'", "x"),
	}
}

func TestPretty(t *testing.T) {
	fs, problems := sampleProblems(t)
	var buf bytes.Buffer
	if err := Pretty(&buf, problems[:1], fs, PrettyOpts{PathMode: PathModeBasename}); err != nil {
		t.Fatalf("Pretty: %v", err)
	}
	want := "t.cpp:2:2: INFO GotoStatement: Goto statement used\n" +
		"2 | \tgoto end;\n" +
		"  | \t^~~~~~~~\n" +
		"\n" +
		"1 problem (1 info)\n"
	if got := buf.String(); got != want {
		t.Fatalf("Pretty output:\n%q\nwant:\n%q", got, want)
	}
}

func TestPrettyWideRunesAndContext(t *testing.T) {
	fs, problems := sampleProblems(t)
	var buf bytes.Buffer
	opts := PrettyOpts{Context: 1, PathMode: PathModeAbsolute, ShowNotes: true}
	if err := Pretty(&buf, problems, fs, opts); err != nil {
		t.Fatalf("Pretty: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"/work/src/t.cpp:3:17: WARNING StatementHasNoEffect: Statement has no effect 'x'\n",
		"2 | \tgoto end;\n3 |   s = \"日本\"; x;\n",
		"  | " + strings.Repeat(" ", 14) + "^\n4 | }\n",
		"note: /work/src/t.cpp:1:5: in function\n",
		"2 problems (1 warning, 1 info)\n",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output lacks %q:\n%s", want, out)
		}
	}
}

func TestPrettyColor(t *testing.T) {
	fs, problems := sampleProblems(t)
	var plain, colored bytes.Buffer
	_ = Pretty(&plain, problems, fs, PrettyOpts{})
	_ = Pretty(&colored, problems, fs, PrettyOpts{Color: true})
	if strings.Contains(plain.String(), "\x1b[") {
		t.Fatalf("escape codes without Color")
	}
	if !strings.Contains(colored.String(), "\x1b[") {
		t.Fatalf("no escape codes with Color")
	}
}

func TestShortAndSummary(t *testing.T) {
	fs, problems := sampleProblems(t)
	var buf bytes.Buffer
	if err := Short(&buf, problems, fs, PathModeRelative, "/work"); err != nil {
		t.Fatalf("Short: %v", err)
	}
	want := "src/t.cpp:2:2: info: Goto statement used [GotoStatement]\n" +
		"src/t.cpp:3:17: warning: Statement has no effect 'x' [StatementHasNoEffect]\n"
	if buf.String() != want {
		t.Fatalf("Short:\n%q\nwant:\n%q", buf.String(), want)
	}
	if got := Summary(nil); got != "no problems" {
		t.Fatalf("Summary(nil) = %q", got)
	}
}

func TestPathModes(t *testing.T) {
	tests := []struct {
		mode PathMode
		base string
		want string
	}{
		{PathModeAbsolute, "", "/home/user/project/src/test.cpp"},
		{PathModeRelative, "/home/user/project", "src/test.cpp"},
		{PathModeBasename, "", "test.cpp"},
		{PathModeAuto, "/home/user/project", "src/test.cpp"},
		{PathModeAuto, "/elsewhere", "/home/user/project/src/test.cpp"},
		{PathModeAuto, "", "/home/user/project/src/test.cpp"},
	}
	for _, tt := range tests {
		if got := formatPath("/home/user/project/src/test.cpp", tt.mode, tt.base); got != tt.want {
			t.Fatalf("formatPath(mode=%d, base=%q) = %q, want %q", tt.mode, tt.base, got, tt.want)
		}
	}
	if m, ok := ParsePathMode("basename"); !ok || m != PathModeBasename {
		t.Fatalf("ParsePathMode(basename) = %v %v", m, ok)
	}
	if _, ok := ParsePathMode("weird"); ok {
		t.Fatalf("ParsePathMode accepted an unknown mode")
	}
}

func TestJSON(t *testing.T) {
	fs, problems := sampleProblems(t)
	var buf bytes.Buffer
	if err := JSON(&buf, problems, fs, JSONOpts{IncludePositions: true, PathMode: PathModeBasename, Max: 1, IncludeNotes: true}); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	var out ProblemsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v\n%s", err, buf.String())
	}
	if out.Count != 1 || out.Total != 2 || len(out.Problems) != 1 {
		t.Fatalf("count=%d total=%d", out.Count, out.Total)
	}
	p := out.Problems[0]
	if p.Rule != "GotoStatement" || p.Severity != "info" || p.Location.File != "t.cpp" ||
		p.Location.StartLine != 2 || p.Location.StartCol != 2 || p.Location.EndCol != 11 {
		t.Fatalf("unexpected problem %+v", p)
	}
	if len(p.Notes) != 1 || p.Notes[0].Message != "in function" {
		t.Fatalf("notes = %+v", p.Notes)
	}
}

func TestSarif(t *testing.T) {
	fs, problems := sampleProblems(t)
	var buf bytes.Buffer
	meta := SarifRunMeta{
		ToolName:    "codan",
		ToolVersion: "1.0.0",
		PathMode:    PathModeBasename,
		Rules: []SarifRule{
			{ID: "StatementHasNoEffect", Name: "Statement has no effect", Level: "warning"},
			{ID: "GotoStatement", Name: "Goto statement used", Level: "note"},
		},
	}
	if err := Sarif(&buf, problems, fs, meta); err != nil {
		t.Fatalf("Sarif: %v", err)
	}
	var doc sarifDocument
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.Version != "2.1.0" || len(doc.Runs) != 1 {
		t.Fatalf("unexpected document %+v", doc)
	}
	run := doc.Runs[0]
	if run.Tool.Driver.Name != "codan" || len(run.Tool.Driver.Rules) != 2 || len(run.Results) != 2 {
		t.Fatalf("unexpected run %+v", run)
	}
	r := run.Results[0]
	if r.RuleID != "GotoStatement" || r.Level != "note" || r.RuleIndex == nil || *r.RuleIndex != 1 {
		t.Fatalf("unexpected result %+v", r)
	}
	region := r.Locations[0].PhysicalLocation.Region
	if r.Locations[0].PhysicalLocation.ArtifactLocation.URI != "t.cpp" || region.StartLine != 2 || region.StartColumn != 2 {
		t.Fatalf("unexpected location %+v", r.Locations[0])
	}
	if len(r.Related) != 1 || r.Related[0].Message.Text != "in function" {
		t.Fatalf("notes not mapped to related locations: %+v", r.Related)
	}
}
