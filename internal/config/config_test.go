package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"codan/internal/diag"
)

func testSpecs() []RuleSpec {
	return []RuleSpec{
		{
			ID: "CaseBreakProblem", Name: "Missing break in switch", Severity: diag.SevWarning, DefaultEnabled: true,
			Params: []ParamSpec{
				{ID: "no_break_comment", Kind: KindString, Default: String("no break"), Regex: true},
				{ID: "empty_case_param", Kind: KindBool, Default: Bool(false)},
			},
		},
		{
			ID: "MagicNumber", Name: "Magic number", Severity: diag.SevInfo,
			Params: []ParamSpec{{ID: "exceptions", Kind: KindStringList, Default: Strings("0", "1")}},
		},
	}
}

func TestDefaults(t *testing.T) {
	cfg := Default(testSpecs())
	if !cfg.Enabled("CaseBreakProblem") || cfg.Enabled("MagicNumber") {
		t.Fatalf("default enablement is wrong")
	}
	if !cfg.ReportMacros("MagicNumber") {
		t.Fatalf("macro defaults to true")
	}
	if re := cfg.Regexp("CaseBreakProblem", "no_break_comment"); re == nil || !re.MatchString("// no break here") {
		t.Fatalf("regex parameter not compiled")
	}
	if got := cfg.Strings("MagicNumber", "exceptions"); len(got) != 2 || got[1] != "1" {
		t.Fatalf("exceptions = %v", got)
	}
}

func TestBuildRejectsInvalidOverrides(t *testing.T) {
	tests := []struct {
		name string
		set  func(o *Overrides)
		want error
	}{
		{"unknown rule", func(o *Overrides) { o.Enable("Nope") }, ErrUnknownRule},
		{"unknown param", func(o *Overrides) { o.Set("MagicNumber", "check", true) }, ErrUnknownParam},
		{"wrong type", func(o *Overrides) { o.Set("CaseBreakProblem", "empty_case_param", int64(3)) }, ErrParamType},
		{"bad regex", func(o *Overrides) { o.Set("CaseBreakProblem", "no_break_comment", "(") }, ErrBadRegex},
	}
	for _, tt := range tests {
		var o Overrides
		tt.set(&o)
		if _, err := Build(testSpecs(), &o); !errors.Is(err, tt.want) {
			t.Fatalf("%s: expected %v, got %v", tt.name, tt.want, err)
		}
	}
}

func TestLoadFileWalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "src", "lib")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	content := `
[run]
jobs = 2

[rules.MagicNumber]
enabled = true
severity = "error"
exceptions = ["0", "42"]
exclude = ["*_test.cpp"]
`
	if err := os.WriteFile(filepath.Join(root, FileName), []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	path, ok, err := Find(nested)
	if err != nil || !ok {
		t.Fatalf("Find: ok=%v err=%v", ok, err)
	}
	file, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if file.Run.Jobs != 2 {
		t.Fatalf("jobs = %d", file.Run.Jobs)
	}
	var o Overrides
	file.Apply(&o)
	cfg, err := Build(testSpecs(), &o)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !cfg.Enabled("MagicNumber") || cfg.Severity("MagicNumber") != diag.SevError {
		t.Fatalf("rule table not applied")
	}
	if got := cfg.Strings("MagicNumber", "exceptions"); len(got) != 2 || got[1] != "42" {
		t.Fatalf("exceptions = %v", got)
	}
	if !cfg.Excluded("MagicNumber", "src/lib/a_test.cpp") || cfg.Excluded("MagicNumber", "src/lib/a.cpp") {
		t.Fatalf("exclude globs mismatch")
	}
}

func TestLoadFileRejectsUnknownSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte("[runn]\njobs = 1\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatalf("expected error for unknown section")
	}
}

func TestFingerprintTracksChanges(t *testing.T) {
	base := Default(testSpecs()).Fingerprint()
	if again := Default(testSpecs()).Fingerprint(); again != base {
		t.Fatalf("fingerprint is not deterministic:\n%s\n%s", base, again)
	}
	o := &Overrides{}
	o.Set("MagicNumber", "exceptions", []string{"0", "1", "2"})
	cfg, err := Build(testSpecs(), o)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if cfg.Fingerprint() == base {
		t.Fatalf("parameter change not reflected in fingerprint")
	}
}
